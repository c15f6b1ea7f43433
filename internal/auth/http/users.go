package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/paperbark/journal/internal/auth/domain"
	"github.com/paperbark/journal/internal/auth/store"
	"github.com/paperbark/journal/pkg/httpx"
	"github.com/paperbark/journal/pkg/slogx"
)

// userProfile is the outward shape of a user record. The password hash never
// leaves the store layer.
type userProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

func profileOf(u domain.User) userProfile {
	return userProfile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt,
	}
}

// MeHandler serves GET /v1/users/me for the authenticated caller.
type MeHandler struct {
	Store store.Store
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ident, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		errInvalidToken.WriteError(w)
		return
	}

	u, err := h.Store.Users().GetUserByID(ctx, ident.UserID)
	if err != nil {
		// A valid token for a deleted user; treat like any stale token.
		if errors.Is(err, store.ErrNotFound) {
			errInvalidToken.WriteError(w)
			return
		}
		log.Error("load current user", "err", err, "user_id", ident.UserID)
		errServerError.WriteError(w)
		return
	}

	resp := struct {
		userProfile
		Preferences *preferencesBody `json:"preferences,omitempty"`
	}{userProfile: profileOf(u)}

	if prefs, err := h.Store.Preferences().GetPreferences(ctx, u.ID); err == nil {
		resp.Preferences = &preferencesBody{
			TemperatureUnit: string(prefs.TemperatureUnit),
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Warn("load preferences", "err", err, "user_id", u.ID)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

type preferencesBody struct {
	TemperatureUnit string `json:"temperature_unit"`
}

// AdminUsersHandler serves GET /v1/admin/users. Access is gated by the admin
// role guard on the route, not here.
type AdminUsersHandler struct {
	Store store.Store
}

func (h *AdminUsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Store.Users().ListUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("list users", "err", err)
		errServerError.WriteError(w)
		return
	}

	profiles := make([]userProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, profileOf(u))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": profiles})
}
