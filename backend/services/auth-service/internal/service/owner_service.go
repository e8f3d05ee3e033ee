package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/libs/password"
	"xpointconnect/backend/services/auth-service/internal/models"
	"xpointconnect/backend/services/auth-service/internal/repository"
)

// OwnerRepository defines storage contract for EV owner accounts.
type OwnerRepository interface {
	Create(ctx context.Context, o *models.EVOwner) error
	GetByNIC(ctx context.Context, nic string) (*models.EVOwner, error)
	List(ctx context.Context, awaitingReactivation bool) ([]models.EVOwner, error)
	Update(ctx context.Context, o *models.EVOwner) error
	SetActivation(ctx context.Context, nic string, active bool, at time.Time) error
	Delete(ctx context.Context, nic string) error
}

// RegisterOwnerInput describes a self-registration.
type RegisterOwnerInput struct {
	NIC         string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
	Password    string
}

// UpdateOwnerInput carries a partial owner update. IsActive and RequiresReactivation are
// back-office fields.
type UpdateOwnerInput struct {
	FirstName            optional.Value[string]
	LastName             optional.Value[string]
	Email                optional.Value[string]
	PhoneNumber          optional.Value[string]
	Address              optional.Value[string]
	Password             optional.Value[string]
	IsActive             optional.Value[bool]
	RequiresReactivation optional.Value[bool]
}

// OwnerService manages EV owner accounts.
type OwnerService struct {
	repo    OwnerRepository
	hasher  password.Hasher
	tokens  TokenIssuer
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewOwnerService builds OwnerService.
func NewOwnerService(repo OwnerRepository, hasher password.Hasher, tokens TokenIssuer, metrics *Metrics, logger *zap.Logger) *OwnerService {
	return &OwnerService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates an active owner account.
func (s *OwnerService) Register(ctx context.Context, in RegisterOwnerInput) (*models.EVOwner, error) {
	in.NIC = strings.TrimSpace(in.NIC)
	if !ValidNIC(in.NIC) {
		return nil, validationf("invalid NIC format")
	}
	if err := required("firstName", in.FirstName); err != nil {
		return nil, err
	}
	if err := required("lastName", in.LastName); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePhone(in.PhoneNumber); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	owner := &models.EVOwner{
		NIC:          in.NIC,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, owner); err != nil {
		return nil, storeError(err, "ev owner", in.NIC)
	}

	s.logger.Info("ev owner registered", zap.String("nic", owner.NIC))
	return owner, nil
}

// Login authenticates an owner that is active and not awaiting reactivation.
func (s *OwnerService) Login(ctx context.Context, nic, pw string) (*models.LoginResult, error) {
	res, err := s.login(ctx, strings.TrimSpace(nic), pw)
	s.metrics.login("ev_owner", err)
	return res, err
}

func (s *OwnerService) login(ctx context.Context, nic, pw string) (*models.LoginResult, error) {
	if nic == "" || pw == "" {
		return nil, ErrInvalidCredentials
	}

	owner, err := s.repo.GetByNIC(ctx, nic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !owner.CanLogin() {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(owner.PasswordHash, pw); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	name := owner.FullName()
	token, expiresAt, err := s.tokens.GenerateToken(auth.Identity{Subject: owner.NIC, Role: auth.RoleEVOwner, Name: name})
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{
		Token:     token,
		TokenType: "Bearer",
		Subject:   owner.NIC,
		Name:      name,
		Role:      auth.RoleEVOwner,
		ExpiresAt: expiresAt,
	}, nil
}

// Get returns an owner by NIC.
func (s *OwnerService) Get(ctx context.Context, nic string) (*models.EVOwner, error) {
	owner, err := s.repo.GetByNIC(ctx, nic)
	if err != nil {
		return nil, storeError(err, "ev owner", nic)
	}
	return owner, nil
}

// List returns every owner, newest first.
func (s *OwnerService) List(ctx context.Context) ([]models.EVOwner, error) {
	return s.repo.List(ctx, false)
}

// ReactivationRequests returns owners who deactivated themselves and wait for back-office.
func (s *OwnerService) ReactivationRequests(ctx context.Context) ([]models.EVOwner, error) {
	return s.repo.List(ctx, true)
}

// Update applies the supplied fields. A new password is re-hashed.
func (s *OwnerService) Update(ctx context.Context, nic string, in UpdateOwnerInput) (*models.EVOwner, error) {
	owner, err := s.repo.GetByNIC(ctx, nic)
	if err != nil {
		return nil, storeError(err, "ev owner", nic)
	}

	if v, ok := in.FirstName.Get(); ok {
		if err := required("firstName", v); err != nil {
			return nil, err
		}
		owner.FirstName = strings.TrimSpace(v)
	}
	if v, ok := in.LastName.Get(); ok {
		if err := required("lastName", v); err != nil {
			return nil, err
		}
		owner.LastName = strings.TrimSpace(v)
	}
	if v, ok := in.Email.Get(); ok {
		if err := validateEmail(v); err != nil {
			return nil, err
		}
		owner.Email = strings.TrimSpace(v)
	}
	if v, ok := in.PhoneNumber.Get(); ok {
		if err := validatePhone(v); err != nil {
			return nil, err
		}
		owner.PhoneNumber = strings.TrimSpace(v)
	}
	if v, ok := in.Address.Get(); ok {
		owner.Address = strings.TrimSpace(v)
	}
	if v, ok := in.Password.Get(); ok {
		if err := validatePassword(v); err != nil {
			return nil, err
		}
		if owner.PasswordHash, err = s.hasher.Hash(v); err != nil {
			return nil, err
		}
	}
	if v, ok := in.IsActive.Get(); ok {
		owner.IsActive = v
	}
	if v, ok := in.RequiresReactivation.Get(); ok {
		owner.RequiresReactivation = v
	}

	owner.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, owner); err != nil {
		return nil, storeError(err, "ev owner", nic)
	}
	return owner, nil
}

// Delete removes an owner account.
func (s *OwnerService) Delete(ctx context.Context, nic string) error {
	if err := s.repo.Delete(ctx, nic); err != nil {
		return storeError(err, "ev owner", nic)
	}
	s.logger.Info("ev owner deleted", zap.String("nic", nic))
	return nil
}

// Deactivate disables the account and flags it for back-office reactivation.
func (s *OwnerService) Deactivate(ctx context.Context, nic string) error {
	return s.setActivation(ctx, nic, false)
}

// Activate re-enables the account and clears the reactivation flag.
func (s *OwnerService) Activate(ctx context.Context, nic string) error {
	return s.setActivation(ctx, nic, true)
}

func (s *OwnerService) setActivation(ctx context.Context, nic string, active bool) error {
	if err := s.repo.SetActivation(ctx, nic, active, s.now().UTC()); err != nil {
		return storeError(err, "ev owner", nic)
	}
	s.logger.Info("ev owner activation changed", zap.String("nic", nic), zap.Bool("active", active))
	return nil
}
