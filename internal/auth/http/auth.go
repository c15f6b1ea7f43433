package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/paperbark/journal/internal/auth/service"
	"github.com/paperbark/journal/pkg/httpx"
	"github.com/paperbark/journal/pkg/slogx"
)

// RefreshTokenCookie carries the refresh token for browser clients, scoped
// tight by SameSite=Strict alongside the access cookie.
const RefreshTokenCookie = "refresh_token"

// CookieConfig controls the token cookies set on successful login/refresh.
type CookieConfig struct {
	Secure     bool // off only in dev, where there is no TLS terminator
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// tokenResponse is the JSON body for successful login and registration.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// LoginHandler serves POST /auth/login.
type LoginHandler struct {
	Sessions *service.SessionService
	Cookies  CookieConfig
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		errInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Sessions.Login(ctx, body.Username, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			errInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		errServerError.WriteError(w)
		return
	}

	setTokenCookies(w, h.Cookies, pair.AccessToken, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}

// RegisterHandler serves POST /auth/register.
type RegisterHandler struct {
	Sessions *service.SessionService
	Cookies  CookieConfig
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		errInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Sessions.Register(ctx, service.RegisterParams{
		Username:  body.Username,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			errDuplicateUsername.WriteError(w)
			return
		}
		log.Error("registration failed", "err", err)
		errServerError.WriteError(w)
		return
	}

	setTokenCookies(w, h.Cookies, pair.AccessToken, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusCreated, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}

// RefreshHandler serves POST /auth/refresh. The refresh token comes from the
// JSON body when present, otherwise from the refresh cookie.
type RefreshHandler struct {
	Sessions *service.SessionService
	Cookies  CookieConfig
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional; decode errors on an empty body are fine.
	_ = json.NewDecoder(r.Body).Decode(&body)

	refreshToken := body.RefreshToken
	if refreshToken == "" {
		if c, err := r.Cookie(RefreshTokenCookie); err == nil {
			refreshToken = c.Value
		}
	}
	if refreshToken == "" {
		errInvalidToken.WriteError(w)
		return
	}

	access, err := h.Sessions.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			errInvalidToken.WriteError(w)
			return
		}
		log.Error("refresh failed", "err", err)
		errServerError.WriteError(w)
		return
	}

	setCookie(w, httpx.AccessTokenCookie, access, h.Cookies.Secure, h.Cookies.AccessTTL)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

// LogoutHandler serves POST /auth/logout. Sessions are stateless, so the only
// server-side action is clearing the cookies.
type LogoutHandler struct {
	Cookies CookieConfig
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, httpx.AccessTokenCookie, h.Cookies.Secure)
	clearCookie(w, RefreshTokenCookie, h.Cookies.Secure)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

func setTokenCookies(w http.ResponseWriter, cfg CookieConfig, access, refresh string) {
	setCookie(w, httpx.AccessTokenCookie, access, cfg.Secure, cfg.AccessTTL)
	setCookie(w, RefreshTokenCookie, refresh, cfg.Secure, cfg.RefreshTTL)
}

func setCookie(w http.ResponseWriter, name, value string, secure bool, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
