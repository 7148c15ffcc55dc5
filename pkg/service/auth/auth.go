package auth

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain/user"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/repository"
	repouser "github.com/amirasaad/finshare/pkg/repository/user"
	"github.com/amirasaad/finshare/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// dummyHash is compared against when the identity is unknown.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

type Strategy interface {
	Login(ctx context.Context, identity, password string) (*dto.UserRead, error)
	GetCurrentUserID(ctx context.Context) (uuid.UUID, error)
	GenerateToken(ctx context.Context, u *dto.UserRead) (string, error)
}

type Service struct {
	uow      repository.UnitOfWork
	strategy Strategy
	logger   *slog.Logger
}

func New(
	uow repository.UnitOfWork,
	strategy Strategy,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, strategy: strategy, logger: logger}
}

func NewWithBasic(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *Service {
	return New(uow, NewBasicAuthStrategy(uow, logger), logger)
}

func NewWithJWT(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return New(uow, NewJWTStrategy(uow, cfg, logger), logger)
}

func (s *Service) GetCurrentUserId(
	token *jwt.Token,
) (userID uuid.UUID, err error) {
	log := s.logger.With("context", "GetCurrentUserId")
	userID, err = s.strategy.GetCurrentUserID(
		context.WithValue(
			context.Background(),
			userContextKey,
			token,
		),
	)
	if err != nil {
		log.Error("GetCurrentUserId failed", "error", err)
		return
	}
	log.Debug("GetCurrentUserId successful", "userID", userID)
	return
}

func (s *Service) Login(
	ctx context.Context,
	identity, password string,
) (u *dto.UserRead, err error) {
	log := s.logger.With("context", "Login")
	u, err = s.strategy.Login(ctx, identity, password)
	if err != nil {
		log.Error("Login failed", "identity", identity, "error", err)
		return
	}
	log.Info("Login successful", "userID", u.ID)
	return
}

func (s *Service) GenerateToken(
	ctx context.Context,
	u *dto.UserRead,
) (string, error) {
	log := s.logger.With("userID", u.ID)
	token, err := s.strategy.GenerateToken(ctx, u)
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Info("GenerateToken successful")
	return token, nil
}

// JWTStrategy authenticates with a password and issues HS256 tokens
// carrying the user_id claim.
type JWTStrategy struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

func NewJWTStrategy(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *JWTStrategy {
	return &JWTStrategy{uow: uow, cfg: cfg, logger: logger}
}

func (s *JWTStrategy) GenerateToken(
	ctx context.Context,
	u *dto.UserRead) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["username"] = u.Username
	claims["email"] = u.Email
	claims["user_id"] = u.ID.String()
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *JWTStrategy) Login(
	ctx context.Context,
	identity, password string,
) (*dto.UserRead, error) {
	return verify(ctx, s.uow, identity, password)
}

func (s *JWTStrategy) GetCurrentUserID(
	ctx context.Context,
) (uuid.UUID, error) {
	token, ok := ctx.Value(userContextKey).(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return userID, nil
}

// BasicAuthStrategy checks a password without issuing tokens. The CLI uses
// it; the last successful login is the current user.
type BasicAuthStrategy struct {
	uow    repository.UnitOfWork
	logger *slog.Logger

	mu      sync.RWMutex
	current uuid.UUID
}

func NewBasicAuthStrategy(
	uow repository.UnitOfWork,
	logger *slog.Logger,
) *BasicAuthStrategy {
	return &BasicAuthStrategy{uow: uow, logger: logger}
}

func (s *BasicAuthStrategy) Login(
	ctx context.Context,
	identity, password string,
) (*dto.UserRead, error) {
	u, err := verify(ctx, s.uow, identity, password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = u.ID
	s.mu.Unlock()
	return u, nil
}

func (s *BasicAuthStrategy) GetCurrentUserID(ctx context.Context) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == uuid.Nil {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return s.current, nil
}

func (s *BasicAuthStrategy) GenerateToken(ctx context.Context, u *dto.UserRead) (string, error) {
	return "", nil
}

// verify looks identity up by email or username and checks password
// against the stored bcrypt hash.
func verify(
	ctx context.Context,
	uow repository.UnitOfWork,
	identity, password string,
) (*dto.UserRead, error) {
	repo, err := repository.Get[repouser.Repository](uow)
	if err != nil {
		return nil, err
	}
	identity = strings.TrimSpace(identity)
	var u *dto.UserRead
	if utils.IsEmail(identity) {
		u, err = repo.GetByEmail(ctx, strings.ToLower(identity))
	} else {
		u, err = repo.GetByUsername(ctx, identity)
	}
	if err != nil || u == nil {
		_ = utils.CheckPasswordHash(password, dummyHash)
		return nil, user.ErrUserUnauthorized
	}
	if !utils.CheckPasswordHash(password, u.HashedPassword) {
		return nil, user.ErrUserUnauthorized
	}
	return u, nil
}
