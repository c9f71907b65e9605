package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetmind/rentalhub/internal/auth"
	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/domain/user"
	"github.com/fleetmind/rentalhub/internal/http/middlewares"
	"github.com/fleetmind/rentalhub/internal/mailer"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/fleetmind/rentalhub/internal/resettoken"
	"github.com/fleetmind/rentalhub/internal/security"
	"github.com/gin-gonic/gin"
)

// Small interfaces so tests can fake the store.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

type AuthHandler struct {
	users     UserReader
	passwords PasswordUpdater
	jwt       *auth.Manager
	resets    *resettoken.Registry
	mail      mailer.Mailer
	prom      *observability.Prom
	cfg       config.Config
}

func NewAuthHandler(users UserReader, passwords PasswordUpdater, jwtManager *auth.Manager, resets *resettoken.Registry, mail mailer.Mailer, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:     users,
		passwords: passwords,
		jwt:       jwtManager,
		resets:    resets,
		mail:      mail,
		prom:      prom,
		cfg:       cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	ID       string `json:"id" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type sanitizedUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func sanitize(u user.User) sanitizedUser {
	return sanitizedUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		RespondUnauthorized(ctx, "Email or password is incorrect")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Email or password is incorrect")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    sanitize(foundUser),
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load user")
		return
	}

	RespondData(ctx, http.StatusOK, sanitize(u))
}

// ForgotPassword issues a reset token and mails the link synchronously, so
// the caller learns immediately when delivery fails.

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		RespondBadRequest(ctx, "No account with that email", nil)
		return
	}

	raw, err := h.resets.Request(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create reset token")
		return
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", h.cfg.FrontendURL, u.ID, raw)

	sendCtx, sendCancel := config.WithTimeout(10 * time.Second)
	defer sendCancel()

	send := func() error {
		return h.mail.Send(sendCtx, resetEmail(u.Name, req.Email, link))
	}

	if h.prom != nil {
		err = h.prom.ObserveMail("password_reset", send)
	} else {
		err = send()
	}

	if err != nil {
		RespondInternal(ctx, "Could not send reset email")
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Password reset email sent")
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.resets.Consume(cctx, req.ID, req.Token)

	if err != nil {
		switch {
		case errors.Is(err, resettoken.ErrNoPendingToken):
			RespondBadRequest(ctx, "No pending password reset", nil)
		case errors.Is(err, resettoken.ErrTokenExpired):
			RespondBadRequest(ctx, "Reset token expired", nil)
		case errors.Is(err, resettoken.ErrTokenMismatch):
			RespondBadRequest(ctx, "Invalid reset token", nil)
		default:
			RespondInternal(ctx, "Could not verify reset token")
		}
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not update password")
		return
	}

	err = h.passwords.UpdatePassword(cctx, req.ID, hash)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not update password")
		return
	}

	RespondMessage(ctx, http.StatusCreated, "Password updated")
}

func resetEmail(name, to, link string) mailer.Message {
	html := fmt.Sprintf(`
		<h1>Password reset</h1>
		<p>Hi %s,</p>
		<p>We received a request to reset your password. The link below is valid
		for 15 minutes and can be used once.</p>
		<p><a href="%s">Reset your password</a></p>
		<p>If you did not ask for this, you can ignore this email.</p>
	`, name, link)

	return mailer.Message{
		To:      to,
		Subject: "Reset your password",
		HTML:    html,
	}
}
