package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/accessly/rbac-service/internal/api/metrics"
	"github.com/accessly/rbac-service/internal/core/domain"
	"github.com/accessly/rbac-service/internal/core/ports"
)

// AuthService implements signup and login with HS256 session tokens.
type AuthService struct {
	users     ports.UserRepository
	roles     ports.RoleRepository
	limiter   ports.LoginLimiter
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, roles ports.RoleRepository, limiter ports.LoginLimiter, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		users:     users,
		roles:     roles,
		limiter:   limiter,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) error {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	if _, err := s.roles.FindByID(ctx, input.RoleID); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		RoleID:       input.RoleID,
		Active:       input.Active,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Str("email", input.Email).Msg("user registered")
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if err := s.limiter.Allow(ctx, email); err != nil {
		metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if lerr := s.limiter.RecordFailure(ctx, email); lerr != nil {
			s.logger.Warn().Err(lerr).Msg("failed to record login failure")
		}
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to reset login limiter")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")
	return token, nil
}

// generateToken signs a session token bound to the user's id.
func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"id":  user.ID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
