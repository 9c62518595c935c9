package server

import (
	"errors"
	"log/slog"
	"net/url"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

var errOAuthDisabled = errors.New("google sign-in is not configured")

func (s *Server) frontendURL() string {
	if s.config != nil && s.config.FrontendURL != "" {
		return s.config.FrontendURL
	}
	return defaultFrontendURL
}

// oauthFailed logs the cause and sends the browser to the frontend login page.
// The cause never reaches the client.
func (s *Server) oauthFailed(c *fiber.Ctx, stage string, err error) error {
	observability.RecordAuthEvent("oauth", "failed")
	middleware.Logger.WarnContext(c.UserContext(), "google sign-in failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	return c.Redirect(s.frontendURL()+"/login?error=oauth_failed", fiber.StatusFound)
}

// GoogleLogin handles GET /auth/google
// @Summary Start Google sign-in
// @Tags auth
// @Success 302
// @Router /auth/google [get]
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	if s.oauthProvider == nil {
		return s.oauthFailed(c, "start", errOAuthDisabled)
	}

	state, err := s.stateStore.Issue(c.UserContext())
	if err != nil {
		return s.oauthFailed(c, "state", err)
	}

	return c.Redirect(s.oauthProvider.AuthCodeURL(state), fiber.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback
// @Summary Complete Google sign-in
// @Description Redirects to FRONTEND_URL/oauth/callback?token=... on success
// @Description and FRONTEND_URL/login?error=oauth_failed otherwise.
// @Tags auth
// @Param code query string false "Authorization code"
// @Param state query string true "State issued by /auth/google"
// @Success 302
// @Router /auth/google/callback [get]
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	if s.oauthProvider == nil {
		return s.oauthFailed(c, "callback", errOAuthDisabled)
	}

	ctx := c.UserContext()

	if err := s.stateStore.Consume(ctx, c.Query("state")); err != nil {
		return s.oauthFailed(c, "state", err)
	}

	if providerErr := c.Query("error"); providerErr != "" {
		return s.oauthFailed(c, "consent", errors.New(providerErr))
	}

	profile, err := s.oauthProvider.Exchange(ctx, c.Query("code"))
	if err != nil {
		return s.oauthFailed(c, "exchange", err)
	}

	res, err := s.authService.OAuthLogin(ctx, profile)
	if err != nil {
		return s.oauthFailed(c, "login", err)
	}

	target := s.frontendURL() + "/oauth/callback?token=" + url.QueryEscape(res.Token)
	return c.Redirect(target, fiber.StatusFound)
}
