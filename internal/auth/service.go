package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/internal/customers"
	pkgauth "github.com/pasofino/tienda-backend/pkg/auth"
	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/db"
	"github.com/pasofino/tienda-backend/pkg/db/models"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/logger"
	"github.com/pasofino/tienda-backend/pkg/security"
)

// Service exposes customer registration and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*SessionDTO, error)
	Login(ctx context.Context, input LoginInput) (*SessionDTO, error)
}

// RegisterInput holds the validated registration payload.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput holds the validated login payload.
type LoginInput struct {
	Email    string
	Password string
}

// SessionDTO bundles the access token with the profile it belongs to.
type SessionDTO struct {
	AccessToken string                `json:"access_token"`
	TokenType   string                `json:"token_type"`
	Customer    *customers.ProfileDTO `json:"customer"`
}

type service struct {
	repo        *customers.Repository
	dbClient    *db.Client
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs an auth service instance.
func NewService(repo *customers.Repository, dbClient *db.Client, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Register creates the customer profile explicitly, never as a side effect
// of another save. Guest profiles left behind by an earlier checkout with
// the same email are claimed and upgraded to a real account.
func (s *service) Register(ctx context.Context, input RegisterInput) (*SessionDTO, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var customer *models.Customer
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup username")
		}

		existing, err := txRepo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.Guest:
			existing.Username = username
			existing.PasswordHash = hash
			existing.Guest = false
			existing.FirstName = strings.TrimSpace(input.FirstName)
			existing.LastName = strings.TrimSpace(input.LastName)
			customer, err = txRepo.Save(ctx, existing)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim guest profile")
			}
			return nil
		case err == nil:
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
		}

		customer, err = txRepo.Create(ctx, &models.Customer{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username or email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register customer")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithCustomerID(ctx, customer.ID.String()), "customer registered")
	}
	return s.session(customer)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*SessionDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	// Guests have an empty hash, which never verifies.
	if !customer.CanLogin() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	ok, err := security.VerifyPassword(input.Password, customer.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.session(customer)
}

func (s *service) session(customer *models.Customer) (*SessionDTO, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		CustomerID: customer.ID,
		Username:   customer.Username,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &SessionDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		Customer:    customers.NewProfileDTO(customer),
	}, nil
}
