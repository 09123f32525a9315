package service

import (
	"context"
	"strings"

	"storefront/internal/model"
	"storefront/internal/session"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	backend  AuthBackend
	sessions Sessions
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(authBackend AuthBackend, sessions Sessions, logger zerolog.Logger) AuthService {
	return &authService{
		backend:  authBackend,
		sessions: sessions,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account. It does not open a session.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.backend.Register(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", req.Email).Msg("registration failed")
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*Login, error) {
	resp, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, resp)
}

// AdminLogin refuses accounts without the admin role; no session is created
// for them.
func (s *authService) AdminLogin(ctx context.Context, req model.LoginRequest) (*Login, error) {
	resp, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	role := resp.User.Role
	if role == "" {
		if claims, ok := session.ParseClaims(resp.Token); ok {
			role = claims.Role
		}
	}
	if role != model.RoleAdmin {
		s.logger.Warn().Str("email", req.Email).Str("role", role).Msg("admin login refused")
		return nil, model.ErrForbidden
	}

	login, err := s.open(ctx, resp)
	if err != nil {
		return nil, err
	}

	// The admin profile is cached with the identity resolved from the token.
	sess, err := s.sessions.CacheProfile(ctx, login.Session.ID, login.User)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", login.Session.ID.String()).Msg("failed to cache admin profile")
		return login, nil
	}
	login.Session = sess
	return login, nil
}

func (s *authService) Logout(ctx context.Context, sess *session.Session) error {
	return s.sessions.Logout(ctx, sess.ID)
}

func (s *authService) open(ctx context.Context, resp *model.LoginResponse) (*Login, error) {
	sess, err := s.sessions.Create(ctx, resp.Token, resp.User)
	if err != nil {
		return nil, err
	}

	user := resp.User
	user.ID = sess.UserID
	user.Role = sess.Role
	return &Login{Session: sess, User: user}, nil
}

func (s *authService) authenticate(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	resp, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", req.Email).Msg("login failed")
		return nil, err
	}
	return resp, nil
}
