package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jinstore-backend/auth"
	"jinstore-backend/controllers"
	"jinstore-backend/models"
	"jinstore-backend/services/users"
)

const (
	mergeNone   = "none"
	mergeDone   = "merged"
	mergeFailed = "failed"
)

type MergeStatus struct {
	Cart      string `json:"cart"`
	Favorites string `json:"favorites"`
}

type sessionResponse struct {
	User        models.User  `json:"user"`
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	MergeStatus *MergeStatus `json:"mergeStatus,omitempty"`
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		users.RegisterInput
		GuestToken string `json:"guestToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	u, err := h.Accounts.Register(c.Request.Context(), req.RegisterInput)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, u, req.GuestToken)
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email      string `json:"email" binding:"required"`
		Password   string `json:"password" binding:"required"`
		GuestToken string `json:"guestToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}
	u, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	h.startSession(c, http.StatusOK, u, req.GuestToken)
}

// POST /api/auth/firebase exchanges a Firebase ID token for a session.
func (h *Handler) FirebaseLogin(c *gin.Context) {
	var req struct {
		IDToken    string `json:"idToken" binding:"required"`
		GuestToken string `json:"guestToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	id, err := h.Firebase.Verify(ctx, req.IDToken)
	switch {
	case errors.Is(err, auth.ErrFirebaseDisabled):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.Log.Warn("firebase token rejected", slog.Any("err", err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid firebase token"})
		return
	}

	u, err := h.Accounts.LoginWithFirebase(ctx, id)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	h.startSession(c, http.StatusOK, u, req.GuestToken)
}

// POST /api/auth/guest hands out an anonymous identity for cart and favorites.
func (h *Handler) Guest(c *gin.Context) {
	guestID := uuid.NewString()
	token, exp, err := h.GuestTokens.Issue(guestID, "guest", auth.KindGuest)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guestId": guestID, "token": token, "expiresAt": exp})
}

func (h *Handler) startSession(c *gin.Context, status int, u models.User, guestToken string) {
	token, exp, err := h.UserTokens.Issue(u.ID.Hex(), string(u.Role), auth.KindUser)
	if err != nil {
		controllers.Fail(c, err)
		return
	}
	resp := sessionResponse{User: u, Token: token, ExpiresAt: exp}
	if guestToken != "" {
		ms := h.mergeGuest(c.Request.Context(), guestToken, models.UserOwner(u.ID))
		resp.MergeStatus = &ms
	}
	c.JSON(status, resp)
}

// mergeGuest never fails the login; problems show up in the status.
func (h *Handler) mergeGuest(ctx context.Context, guestToken string, user models.Owner) MergeStatus {
	claims, err := h.Parser.Parse(guestToken)
	if err != nil || claims.Kind != auth.KindGuest {
		h.Log.Warn("guest merge skipped: bad guest token", slog.Any("err", err))
		return MergeStatus{Cart: mergeFailed, Favorites: mergeFailed}
	}
	guest := models.GuestOwner(claims.Subject)

	run := func(what string, m Merger) string {
		if m == nil {
			return mergeNone
		}
		merged, err := m.Merge(ctx, guest, user)
		if err != nil {
			h.Log.Error("guest merge failed", slog.String("what", what), slog.String("user", string(user)), slog.Any("err", err))
			return mergeFailed
		}
		if !merged {
			return mergeNone
		}
		return mergeDone
	}
	return MergeStatus{Cart: run("cart", h.Cart), Favorites: run("favorites", h.Favorites)}
}
