package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/libs/password"
	"xpointconnect/backend/services/auth-service/internal/models"
	"xpointconnect/backend/services/auth-service/internal/repository"
)

// UserRepository defines storage contract for staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type rehasher interface {
	NeedsRehash(hash string) bool
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateToken(id auth.Identity) (string, time.Time, error)
}

// CreateUserInput describes a new staff account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     auth.Role
}

// UpdateUserInput carries a partial staff account update.
type UpdateUserInput struct {
	Username optional.Value[string]
	Email    optional.Value[string]
	Password optional.Value[string]
	IsActive optional.Value[bool]
}

// UserService manages staff accounts and their logins.
type UserService struct {
	repo    UserRepository
	hasher  password.Hasher
	tokens  TokenIssuer
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewUserService builds UserService.
func NewUserService(repo UserRepository, hasher password.Hasher, tokens TokenIssuer, metrics *Metrics, logger *zap.Logger) *UserService {
	return &UserService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Login authenticates an active staff user and produces a JWT.
func (s *UserService) Login(ctx context.Context, username, pw string) (*models.LoginResult, error) {
	res, err := s.login(ctx, strings.TrimSpace(username), pw)
	s.metrics.login("staff", err)
	return res, err
}

func (s *UserService) login(ctx context.Context, username, pw string) (*models.LoginResult, error) {
	if username == "" || pw == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, pw); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	s.upgradeHash(ctx, user, pw)

	token, expiresAt, err := s.tokens.GenerateToken(auth.Identity{Subject: user.ID, Role: user.Role, Name: user.Username})
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{
		Token:     token,
		TokenType: "Bearer",
		Subject:   user.ID,
		Name:      user.Username,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}, nil
}

// upgradeHash re-hashes a verified password stored at a stale bcrypt cost. Failures only log.
func (s *UserService) upgradeHash(ctx context.Context, user *models.User, pw string) {
	r, ok := s.hasher.(rehasher)
	if !ok || !r.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(pw)
	if err != nil {
		s.logger.Warn("password rehash failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	user.PasswordHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Warn("password rehash not stored", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// Create registers a staff account.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := required("username", in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if !in.Role.IsStaff() {
		return nil, validationf("role must be %s or %s", auth.RoleBackOffice, auth.RoleStationOperator)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storeError(err, "username", in.Username)
	}

	s.logger.Info("staff user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// List returns all staff accounts.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// Get returns a staff account by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}
	return user, nil
}

// Update applies the supplied fields. Role is fixed at creation.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}

	if v, ok := in.Username.Get(); ok {
		v = strings.TrimSpace(v)
		if err := required("username", v); err != nil {
			return nil, err
		}
		user.Username = v
	}
	if v, ok := in.Email.Get(); ok {
		if err := validateEmail(v); err != nil {
			return nil, err
		}
		user.Email = strings.TrimSpace(v)
	}
	if v, ok := in.Password.Get(); ok {
		if err := validatePassword(v); err != nil {
			return nil, err
		}
		if user.PasswordHash, err = s.hasher.Hash(v); err != nil {
			return nil, err
		}
	}
	if v, ok := in.IsActive.Get(); ok {
		user.IsActive = v
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", id)
	}
	return user, nil
}

// Delete removes a staff account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "user", id)
	}
	s.logger.Info("staff user deleted", zap.String("user_id", id))
	return nil
}
