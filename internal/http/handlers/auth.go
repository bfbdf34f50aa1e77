package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/eventdesk/internal/auth"
	"github.com/geocoder89/eventdesk/internal/config"
	"github.com/geocoder89/eventdesk/internal/domain/user"
	"github.com/geocoder89/eventdesk/internal/http/middlewares"
	"github.com/geocoder89/eventdesk/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, row user.RefreshToken) error
	Get(ctx context.Context, id string) (user.RefreshToken, error)
	// Revoke only succeeds on a live token; a second concurrent rotation
	// of the same token loses and gets ErrRefreshTokenNotFound.
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type AuthHandler struct {
	users        UserReader
	userWriter   UserWriter
	jwt          *auth.Manager
	refreshStore RefreshTokenStore
	cfg          config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager, refreshStore RefreshTokenStore, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:        users,
		userWriter:   userWriter,
		jwt:          jwtManager,
		refreshStore: refreshStore,
		cfg:          cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	// default role for new users

	role := "user"

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.Name, role)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
			return
		}

		slog.ErrorContext(ctx.Request.Context(), "signup failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(u.ID.Hex(), u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	rawRefreshToken, jti, expiresAt, err := h.jwt.GenerateRefreshToken(u.ID.Hex(), u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate refresh token")
		return
	}

	err = h.storeRefreshToken(cctx, u.ID.Hex(), jti, rawRefreshToken, expiresAt)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, rawRefreshToken, expiresAt)

	ctx.JSON(http.StatusCreated, gin.H{
		"accessToken": accessToken,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(foundUser.ID.Hex(), foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	rawRefreshToken, jti, expiresAt, err := h.jwt.GenerateRefreshToken(foundUser.ID.Hex(), foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate refresh token")
		return
	}

	if err := h.storeRefreshToken(cctx, foundUser.ID.Hex(), jti, rawRefreshToken, expiresAt); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, rawRefreshToken, expiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
	})
}

// Refresh rotates the presented refresh token and mints a fresh access token.

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	row, err := h.refreshStore.Get(cctx, claims.JTI)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	// a revoked token being replayed means the raw token leaked somewhere;
	// kill every live session for the user
	if row.RevokedAt != nil {
		_ = h.refreshStore.RevokeAllForUser(cctx, row.UserID)
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	if time.Now().UTC().After(row.ExpiresAt) {
		RespondUnAuthorized(ctx, "expired_refresh", "Refresh token expired.")
		return
	}

	// verify hash matches the presented token (prevents token substitution)

	if row.TokenHash != h.jwt.HashRefreshToken(raw) {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token.")
		return
	}

	// if these checks pass issue a new refresh token

	newRaw, newJTI, newExpiresAt, err := h.jwt.GenerateRefreshToken(row.UserID, claims.Email, claims.Role)
	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	// revoke old, insert new; the filtered revoke is atomic so a concurrent
	// rotation of the same token cannot double-spend it

	err = h.refreshStore.Revoke(cctx, row.ID, &newJTI)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	newRow := user.RefreshToken{
		ID:        newJTI,
		UserID:    row.UserID,
		TokenHash: h.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	err = h.refreshStore.Create(cctx, newRow)

	if err != nil {
		slog.ErrorContext(ctx.Request.Context(), "refresh token store failed", "err", err)
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	// Generate a new access token
	accessToken, err := h.jwt.GenerateAccessToken(row.UserID, claims.Email, claims.Role)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.setRefreshCookie(ctx, newRaw, newExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
	})
}

// Logout revokes the presented token and clears the cookie.

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		// still clear cookie to be safe
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	// verify the token and then clear
	claims, err := h.jwt.VerifyRefreshToken(raw)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	// revoke that one token (idempotent)
	_ = h.refreshStore.Revoke(cctx, claims.JTI, nil)

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Me echoes the identity carried by the access token.

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, _ := middlewares.UserIDFromContext(ctx)
	email, _ := middlewares.EmailFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"id":    id,
		"email": email,
		"role":  role,
	})
}

// Helper functions

func (h *AuthHandler) storeRefreshToken(ctx context.Context, userID, jti, raw string, expiresAt time.Time) error {
	row := user.RefreshToken{
		ID:        jti,
		UserID:    userID,
		TokenHash: h.jwt.HashRefreshToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	return h.refreshStore.Create(ctx, row)
}

func (h *AuthHandler) refreshCookieName() string {
	return "refresh_token"
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		h.refreshCookieName(),
		raw,
		maxAge,
		"/auth",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		h.refreshCookieName(),
		"",
		-1,
		"/auth",
		"",
		secure,
		true,
	)
}
