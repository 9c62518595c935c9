// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/oauth"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// Messages returned to clients by the auth flows.
const (
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgOAuthOnlyAccount   = "This account uses Google sign-in. Please log in with Google."
	MsgUserNotFound       = "User not found"
	MsgEmailNotVerified   = "Google account email is not verified"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID uint, email string) (string, error)
}

// AuthResult is returned by every flow that logs a user in.
type AuthResult struct {
	Token string
	User  *models.User
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a credential account and logs it in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		observability.RecordAuthEvent("signup", "error")
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		observability.RecordAuthEvent("signup", "duplicate")
		return nil, models.NewValidationError(MsgUserExists)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		observability.RecordAuthEvent("signup", "error")
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: &hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			observability.RecordAuthEvent("signup", "duplicate")
			return nil, models.NewValidationError(MsgUserExists)
		}
		observability.RecordAuthEvent("signup", "error")
		return nil, models.NewInternalError(err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		observability.RecordAuthEvent("signup", "error")
		return nil, models.NewInternalError(err)
	}

	observability.RecordAuthEvent("signup", "success")
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials. Unknown email and wrong password are reported identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		observability.RecordAuthEvent("login", "error")
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		observability.RecordAuthEvent("login", "invalid_credentials")
		return nil, models.NewUnauthorizedError(MsgInvalidCredentials)
	}
	if !user.HasPassword() {
		observability.RecordAuthEvent("login", "oauth_only")
		return nil, models.NewUnauthorizedError(MsgOAuthOnlyAccount)
	}

	if err := auth.ComparePassword(*user.Password, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			observability.RecordAuthEvent("login", "invalid_credentials")
			return nil, models.NewUnauthorizedError(MsgInvalidCredentials)
		}
		observability.RecordAuthEvent("login", "error")
		return nil, models.NewInternalError(err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		observability.RecordAuthEvent("login", "error")
		return nil, models.NewInternalError(err)
	}

	observability.RecordAuthEvent("login", "success")
	return &AuthResult{Token: token, User: user}, nil
}

// Profile returns the stored user for an authenticated id.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFoundError(MsgUserNotFound)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// OAuthLogin finds or creates the account for a provider profile and logs it in.
// Accounts created here have no password.
func (s *AuthService) OAuthLogin(ctx context.Context, profile *oauth.Profile) (*AuthResult, error) {
	email := normalizeEmail(profile.Email)
	if email == "" {
		observability.RecordAuthEvent("oauth", "error")
		return nil, models.NewValidationError("OAuth profile has no email")
	}
	if !profile.EmailVerified {
		observability.RecordAuthEvent("oauth", "unverified")
		return nil, models.NewUnauthorizedError(MsgEmailNotVerified)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		observability.RecordAuthEvent("oauth", "error")
		return nil, models.NewInternalError(err)
	}

	if user == nil {
		user = &models.User{
			Name:  displayName(profile.Name, email),
			Email: email,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				observability.RecordAuthEvent("oauth", "error")
				return nil, models.NewInternalError(err)
			}
			// A concurrent first login created the row; use it.
			middleware.Logger.InfoContext(ctx, "oauth user created concurrently", slog.String("email", email))
			user, err = s.userRepo.GetByEmail(ctx, email)
			if err != nil || user == nil {
				observability.RecordAuthEvent("oauth", "error")
				return nil, models.NewInternalError(errors.Join(repository.ErrDuplicate, err))
			}
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		observability.RecordAuthEvent("oauth", "error")
		return nil, models.NewInternalError(err)
	}

	observability.RecordAuthEvent("oauth", "success")
	return &AuthResult{Token: token, User: user}, nil
}

func displayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return email
}
