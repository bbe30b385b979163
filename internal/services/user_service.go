package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlexPyslar03/product-selector-backend/internal/apperrors"
	"github.com/AlexPyslar03/product-selector-backend/internal/models"
	"github.com/AlexPyslar03/product-selector-backend/internal/repositories"
	"github.com/AlexPyslar03/product-selector-backend/pkg/rabbitmq"
)

// UserService handles business logic related to users. Passwords are hashed
// here so that no caller can persist a plain-text password.
type UserService struct {
	repo repositories.UserRepository
	mq   *rabbitmq.Client
}

// NewUserService creates a new UserService. mq may be nil, in which case no
// events are published.
func NewUserService(repo repositories.UserRepository, mq *rabbitmq.Client) *UserService {
	return &UserService{
		repo: repo,
		mq:   mq,
	}
}

// UserCreateInput carries the fields for creating a user. Role defaults to
// RoleUser when empty.
type UserCreateInput struct {
	Username  string
	Email     string
	Password  string
	BirthDate time.Time
	Role      models.Role
}

// UserUpdateInput carries the fields for updating a user. An empty Password
// keeps the stored hash; an empty Role keeps the current role.
type UserUpdateInput struct {
	Username  string
	Email     string
	Password  string
	BirthDate time.Time
	Role      models.Role
}

// Create registers a new user. Username and email must be unique; the
// registration date is set to the current time.
func (s *UserService) Create(in UserCreateInput) (*models.User, error) {
	if _, err := s.repo.GetByUsername(in.Username); err == nil {
		return nil, fmt.Errorf("username '%s' is taken: %w", in.Username, apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(in.Email); err == nil {
		return nil, fmt.Errorf("email '%s' is registered: %w", in.Email, apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:         in.Username,
		Email:            in.Email,
		Password:         string(hashedPassword),
		BirthDate:        in.BirthDate,
		RegistrationDate: time.Now(),
		Role:             role,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	s.publishEvent("created", user.ID)
	return user, nil
}

// GetAll retrieves all users.
func (s *UserService) GetAll() ([]models.User, error) {
	return s.repo.GetAll()
}

// GetByID retrieves a single user by ID.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

// GetAllByIDs retrieves the users whose IDs exist among ids. It fails only
// when none of them exist.
func (s *UserService) GetAllByIDs(ids []uint) ([]models.User, error) {
	users, err := s.repo.GetAllByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users for the given IDs: %w", apperrors.ErrNotFound)
	}
	return users, nil
}

// GetByUsername retrieves a user by their unique username.
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.repo.GetByUsername(username)
}

// Update replaces the mutable fields of an existing user. ID and
// registration date never change.
func (s *UserService) Update(id uint, in UserUpdateInput) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if in.Username != user.Username {
		if _, err := s.repo.GetByUsername(in.Username); err == nil {
			return nil, fmt.Errorf("username '%s' is taken: %w", in.Username, apperrors.ErrConflict)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	if in.Email != user.Email {
		if _, err := s.repo.GetByEmail(in.Email); err == nil {
			return nil, fmt.Errorf("email '%s' is registered: %w", in.Email, apperrors.ErrConflict)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	user.Username = in.Username
	user.Email = in.Email
	user.BirthDate = in.BirthDate
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashedPassword)
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}

	s.publishEvent("updated", user.ID)
	return user, nil
}

// Delete removes a user by ID. The existence check makes the not-found case
// deterministic.
func (s *UserService) Delete(id uint) error {
	exists, err := s.repo.ExistsByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user with ID %d: %w", id, apperrors.ErrNotFound)
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.publishEvent("deleted", id)
	return nil
}

func (s *UserService) publishEvent(action string, id uint) {
	if s.mq == nil {
		return
	}
	if err := s.mq.PublishEntityEvent("user", action, id); err != nil {
		log.Printf("Warning: failed to publish user %s event for ID %d: %v", action, id, err)
	}
}
