package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetmind/rentalhub/internal/domain/job"
	"github.com/fleetmind/rentalhub/internal/jobs"
	"github.com/fleetmind/rentalhub/internal/mailer"
)

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	switch j.Type {
	case jobs.TypeRentalConfirmation:
		return w.sendRentalConfirmation(ctx, j)
	default:
		return fmt.Errorf("%w: %s", jobs.ErrInvalidJobType, j.Type)
	}
}

func (w *Worker) sendRentalConfirmation(ctx context.Context, j job.Job) error {
	p, err := jobs.DecodeRentalConfirmation(j.Payload)

	if err != nil {
		return err
	}

	msg := confirmationEmail(p)

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	send := func() error {
		return w.mailer.Send(sendCtx, msg)
	}

	if w.prom != nil {
		return w.prom.ObserveMail("rental_confirmation", send)
	}
	return send()
}

func confirmationEmail(p jobs.RentalConfirmationPayload) mailer.Message {
	const dateLayout = "02 Jan 2006"

	html := fmt.Sprintf(`
		<h1>Rental confirmed</h1>
		<p>Hi %s,</p>
		<p>Your rental of the <strong>%s</strong> is confirmed.</p>
		<ul>
			<li>From: %s</li>
			<li>To: %s</li>
			<li>Total: $%.2f</li>
		</ul>
		<p>Reference: %s</p>
	`, p.ClientName, p.CarModel, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout), p.Total, p.RentalID)

	return mailer.Message{
		To:      p.Email,
		Subject: "Your rental is confirmed",
		HTML:    html,
	}
}
