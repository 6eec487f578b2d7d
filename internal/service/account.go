package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	minPasswordLen   = 6
	defaultAccessTTL = 24 * time.Hour
)

type AccountService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	AccessTTL time.Duration
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	Shopper     *models.Shopper
}

type Profile struct {
	Shopper   *models.Shopper          `json:"shopper"`
	Addresses []models.ShippingAddress `json:"addresses"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Signup(ctx context.Context, email, password string) (*models.Shopper, error) {
	l := logging.FromContext(ctx).With("svc", "account.signup")

	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must have at least %d characters: %w", minPasswordLen, ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.Shopper{Email: email, PasswordHash: pwHash, Role: "user"}
	if err := s.Repo.CreateShopperIfNotExists(ctx, u); err != nil {
		if errors.Is(err, repo.ErrShopperAlreadyExist) {
			return nil, fmt.Errorf("email %q: %w", email, ErrConflict)
		}
		return nil, err
	}
	l.Info("shopper registered", "user_id", u.ID)
	return u, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "account.login", "email", email)

	u, err := s.Repo.GetShopperByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	exp := time.Now().Add(ttl)
	token, err := tokens.NewAccessToken(u.ID.String(), u.Role, exp, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, AccessExp: exp, Shopper: u}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	u, err := s.Repo.GetShopperByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shopper %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	addrs, err := s.Repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{Shopper: u, Addresses: addrs}, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName string) (*Profile, error) {
	if _, err := s.Repo.UpdateProfile(ctx, userID, strings.TrimSpace(firstName), strings.TrimSpace(lastName)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shopper %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

func (s *AccountService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.Repo.SetDefaultAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("address %s: %w", addressID, ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.Repo.DeleteAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("address %s: %w", addressID, ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *AccountService) Orders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrderedLines(ctx, userID)
}
