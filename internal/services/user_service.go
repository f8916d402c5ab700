package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"procurement_tracker/internal/models"
	"procurement_tracker/internal/repository"
)

var ErrInvalidPIN = errors.New("invalid PIN")

// UserService authenticates users. Manager mode, which relaxes the
// same-status constraint on item moves, is granted only to users with
// the manager role after PIN verification.
type UserService interface {
	CreateUser(user *models.User, pin string) error
	GetUserByUsername(username string) (*models.User, error)
	VerifyManagerPIN(username, pin string) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(user *models.User, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PINHash = string(hash)
	return s.userRepo.Create(user)
}

func (s *userService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.GetByUsername(username)
}

func (s *userService) VerifyManagerPIN(username, pin string) (bool, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return false, err
	}
	if !user.IsActive {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		return false, ErrInvalidPIN
	}
	return user.Role == models.Manager, nil
}
