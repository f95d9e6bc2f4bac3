package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/logger"
	"github.com/iliyamo/apparel-studio/internal/middleware"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/service"
)

// RefreshCookie carries the raw refresh token.
const RefreshCookie = "refresh"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// SetupGoogle registers the Google provider and the session store gothic
// keeps the OAuth state in.  It is a no-op when Google is not configured.
func SetupGoogle(cfg config.Config) {
	if !cfg.Google.Enabled() {
		return
	}
	store := sessions.NewCookieStore([]byte(cfg.JWTSecret))
	store.MaxAge(600)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	gothic.Store = store

	goth.UseProviders(google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL, "email", "profile"))
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID         uint64 `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, IsVerified: u.IsVerified, AvatarURL: u.AvatarURL}
}

// Signup: create a customer and sign it in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, pair, err := h.Auth.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return fail(c, err, "user")
	}
	return h.respond(c, http.StatusCreated, u, pair)
}

// Login: verify and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err, "user")
	}
	return h.respond(c, http.StatusOK, u, pair)
}

// Refresh rotates the refresh token taken from the cookie or the body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.refreshFromRequest(c)
	if raw == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, pair, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		h.clearCookies(c)
		return fail(c, err, "session")
	}
	return h.respond(c, http.StatusOK, u, pair)
}

// Logout revokes the presented refresh token, or every token of the
// access-token user when none is presented.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := h.refreshFromRequest(c)
	uid, _ := getUserID(c)
	if raw == "" && uid == 0 {
		return badRequest(c, "provide a session cookie, Authorization header or refresh_token")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, raw, uid); err != nil {
		return fail(c, err, "session")
	}
	h.clearCookies(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the stored profile of the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Auth.Me(ctx, uid)
	if err != nil {
		return fail(c, err, "user")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// GoogleBegin redirects to Google's consent screen.
func (h *AuthHandler) GoogleBegin(c echo.Context) error {
	if !h.Cfg.Google.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "google sign-in is not configured"})
	}
	withProvider(c.Request())
	gothic.BeginAuthHandler(c.Response(), c.Request())
	return nil
}

// GoogleCallback finishes the OAuth flow, signs the user in through cookies
// and redirects to the frontend.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if !h.Cfg.Google.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "google sign-in is not configured"})
	}
	withProvider(c.Request())
	gu, err := gothic.CompleteUserAuth(c.Response(), c.Request())
	if err != nil {
		logger.FromEcho(c).Warn("google callback failed", zap.Error(err))
		return c.Redirect(http.StatusTemporaryRedirect, h.Cfg.Google.SuccessRedirect+"?error=oauth_failed")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	u, pair, err := h.Auth.GoogleLogin(ctx, service.GoogleIdentity{
		ID: gu.UserID, Email: gu.Email, Name: gu.Name, AvatarURL: gu.AvatarURL,
	})
	if err != nil {
		logger.FromEcho(c).Error("google sign-in failed", zap.String("email", gu.Email), zap.Error(err))
		return c.Redirect(http.StatusTemporaryRedirect, h.Cfg.Google.SuccessRedirect+"?error=oauth_failed")
	}
	h.setCookies(c, pair)
	logger.FromEcho(c).Info("google sign-in", zap.Uint64("user_id", u.ID))
	return c.Redirect(http.StatusTemporaryRedirect, h.Cfg.Google.SuccessRedirect)
}

// withProvider tells gothic which provider handles the request without
// dropping the OAuth code and state parameters.
func withProvider(r *http.Request) {
	q := r.URL.Query()
	q.Set("provider", "google")
	r.URL.RawQuery = q.Encode()
}

func (h *AuthHandler) respond(c echo.Context, status int, u *model.User, pair service.TokenPair) error {
	h.setCookies(c, pair)
	return c.JSON(status, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: pair.Access.Token, Expires: pair.Access.Exp},
		Refresh: tokenPart{Token: pair.Refresh.Raw, Expires: pair.Refresh.Exp},
	})
}

func (h *AuthHandler) refreshFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var req refreshReq
	_ = c.Bind(&req)
	return strings.TrimSpace(req.RefreshToken)
}

func (h *AuthHandler) setCookies(c echo.Context, pair service.TokenPair) {
	c.SetCookie(h.cookie(middleware.AccessCookie, pair.Access.Token, "/", h.Auth.AccessMaxAge()))
	c.SetCookie(h.cookie(RefreshCookie, pair.Refresh.Raw, "/auth", h.Auth.RefreshMaxAge()))
}

func (h *AuthHandler) clearCookies(c echo.Context) {
	gone := h.cookie(middleware.AccessCookie, "", "/", 0)
	gone.MaxAge = -1
	c.SetCookie(gone)
	gone = h.cookie(RefreshCookie, "", "/auth", 0)
	gone.MaxAge = -1
	c.SetCookie(gone)
}

func (h *AuthHandler) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
