package service

import (
	"fmt"

	"example.com/shop/model"
)

// UserService handles user business logic.
type UserService struct {
	repo model.Repository
}

// NewUserService creates a new UserService.
func NewUserService(repo model.Repository) *UserService {
	return &UserService{repo: repo}
}

// CreateUser creates a new user.
func (s *UserService) CreateUser(name, email string) (*model.User, error) {
	user := model.NewUser(name, email)
	if err := s.repo.Save(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
