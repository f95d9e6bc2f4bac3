package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
	"github.com/iliyamo/apparel-studio/internal/utils"
)

// AuthConfig carries the token and hashing settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// TokenPair is what a successful sign-in hands back.
type TokenPair struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// GoogleIdentity is the subset of the OAuth profile used to find or create
// an account.
type GoogleIdentity struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

type AuthService struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Cfg    AuthConfig
	Log    *zap.Logger
}

func NewAuthService(users *repository.UserRepo, tokens *repository.TokenRepo, cfg AuthConfig, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{Users: users, Tokens: tokens, Cfg: cfg, Log: log}
}

// Signup creates a customer account and signs it in.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*model.User, TokenPair, error) {
	email = repository.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, TokenPair{}, invalid("a valid email is required")
	}
	if len(password) < utils.MinPasswordLen {
		return nil, TokenPair{}, invalid("password must be at least %d characters", utils.MinPasswordLen)
	}
	hash, err := utils.HashPassword(password, s.Cfg.BcryptCost)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &model.User{Email: email, PasswordHash: &hash, Name: strings.TrimSpace(name), Role: model.RoleCustomer}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Login verifies the password.  Accounts created through Google have no
// password and cannot log in this way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if u.PasswordHash == nil || !utils.VerifyPassword(*u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the refresh token and issues a new access token.  A
// replayed token revokes every session of its owner.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*model.User, TokenPair, error) {
	if raw == "" {
		return nil, TokenPair{}, repository.ErrTokenInvalid
	}
	next, err := utils.NewRefreshToken(s.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, TokenPair{}, err
	}
	row, err := s.Tokens.Rotate(ctx, utils.HashRefreshRaw(raw), utils.HashRefreshRaw(next.Raw), next.Exp)
	if errors.Is(err, repository.ErrTokenReused) {
		s.Log.Warn("refresh token reuse detected; revoking all sessions", zap.Uint64("user_id", row.UserID))
		if rErr := s.Tokens.RevokeAllForUser(ctx, row.UserID); rErr != nil {
			return nil, TokenPair{}, rErr
		}
		return nil, TokenPair{}, ErrSessionRevoked
	}
	if err != nil {
		return nil, TokenPair{}, err
	}

	u, err := s.Users.GetByID(ctx, row.UserID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	access, err := utils.NewAccessToken(s.Cfg.JWTSecret, u.ID, u.Role, s.Cfg.AccessTTLMin)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, TokenPair{Access: access, Refresh: next}, nil
}

// Logout revokes the presented refresh token, or every token of userID
// when no refresh token is available.
func (s *AuthService) Logout(ctx context.Context, raw string, userID uint64) error {
	if raw != "" {
		return s.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	}
	if userID != 0 {
		return s.Tokens.RevokeAllForUser(ctx, userID)
	}
	return nil
}

// Me loads the current account.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*model.User, error) {
	return s.Users.GetByID(ctx, userID)
}

// GoogleLogin resolves an OAuth identity: by Google id, then by email
// (linking the Google id), else a new verified customer without password.
func (s *AuthService) GoogleLogin(ctx context.Context, id GoogleIdentity) (*model.User, TokenPair, error) {
	if id.ID == "" || id.Email == "" {
		return nil, TokenPair{}, invalid("google profile is missing id or email")
	}
	u, err := s.Users.GetByGoogleID(ctx, id.ID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		u, err = s.Users.GetByEmail(ctx, id.Email)
		switch {
		case err == nil:
			if err := s.Users.LinkGoogle(ctx, u.ID, id.ID, id.AvatarURL); err != nil {
				return nil, TokenPair{}, err
			}
			if u, err = s.Users.GetByID(ctx, u.ID); err != nil {
				return nil, TokenPair{}, err
			}
		case errors.Is(err, repository.ErrNotFound):
			gid := id.ID
			u = &model.User{
				Email:      id.Email,
				Name:       id.Name,
				Role:       model.RoleCustomer,
				IsVerified: true,
				GoogleID:   &gid,
				AvatarURL:  id.AvatarURL,
			}
			if err := s.Users.Create(ctx, u); err != nil {
				return nil, TokenPair{}, err
			}
		default:
			return nil, TokenPair{}, err
		}
	default:
		return nil, TokenPair{}, err
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.Cfg.JWTSecret, u.ID, u.Role, s.Cfg.AccessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.Cfg.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// AccessMaxAge and RefreshMaxAge are the cookie lifetimes.
func (s *AuthService) AccessMaxAge() time.Duration {
	return time.Duration(s.Cfg.AccessTTLMin) * time.Minute
}

func (s *AuthService) RefreshMaxAge() time.Duration {
	return time.Duration(s.Cfg.RefreshTTLDays) * 24 * time.Hour
}
