package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gaston-app/budget-service/internal/config"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrForbidden is returned when a user touches an entity they do not own
var ErrForbidden = errors.New("entity does not belong to user")

// ErrValidation wraps input errors so handlers can map them to 400
var ErrValidation = errors.New("validation")

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Notifier sends user-facing notifications. The email sender implements
// it; tests plug in fakes.
type Notifier interface {
	SendGoalReached(to string, goal models.FinancialGoal) error
	SendPaymentReminder(to string, debt models.Debt, dueDate time.Time) error
}

// Service handles business logic
type Service struct {
	repo     repository.Store
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier
}

// NewService initializes a new service. notifier may be nil when no SMTP
// credentials are configured.
func NewService(repo repository.Store, log *logrus.Logger, cfg *config.Config, notifier Notifier) *Service {
	return &Service{repo: repo, log: log, config: cfg, notifier: notifier}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, email, name, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, validationErr("invalid email")
	}
	if len(password) < 8 {
		return models.User{}, validationErr("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, name, string(hashedPassword))
	if err != nil {
		return models.User{}, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreateEntity creates a budget entity seeded from the kind's starter
// template, and snapshots the template as the current month's config
// history.
func (s *Service) CreateEntity(ctx context.Context, userID int64, name string, kind models.EntityKind) (models.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Entity{}, validationErr("entity name required")
	}
	if !models.ValidKind(kind) {
		return models.Entity{}, validationErr("unknown entity kind %q", kind)
	}

	entity, err := s.repo.CreateEntity(ctx, userID, name, kind)
	if err != nil {
		return models.Entity{}, err
	}

	cfg := models.TemplateConfig(kind)
	if _, err := s.repo.SaveConfig(ctx, entity.ID, cfg, 0); err != nil {
		return models.Entity{}, fmt.Errorf("seed entity config: %w", err)
	}
	ym := models.YearMonthOf(time.Now().UTC())
	if err := s.repo.SaveConfigSnapshot(ctx, entity.ID, ym, cfg); err != nil {
		return models.Entity{}, fmt.Errorf("seed config snapshot: %w", err)
	}

	s.log.Infof("Entity created: %s (%s) for user %d", entity.Name, entity.Kind, userID)
	return entity, nil
}

// ListEntities returns the user's entities
func (s *Service) ListEntities(ctx context.Context, userID int64) ([]models.Entity, error) {
	return s.repo.ListEntities(ctx, userID)
}

// authorizeEntity loads the entity and checks ownership
func (s *Service) authorizeEntity(ctx context.Context, userID, entityID int64) (models.Entity, error) {
	entity, err := s.repo.GetEntity(ctx, entityID)
	if err != nil {
		return models.Entity{}, err
	}
	if entity.OwnerID != userID {
		return models.Entity{}, ErrForbidden
	}
	return entity, nil
}
