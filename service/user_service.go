package service

import (
	"context"

	"github.com/fidena/fidena/core"
	"github.com/fidena/fidena/ports"
)

// UserService exposes the signed-in user's account
type UserService struct {
	storage ports.Storage
}

func NewUserService(storage ports.Storage) *UserService {
	return &UserService{storage: storage}
}

func (s *UserService) Get(ctx context.Context, userID string) (*core.User, error) {
	return s.storage.Users().GetByID(ctx, userID)
}

// CompleteRegistration marks the onboarding wizard as finished
func (s *UserService) CompleteRegistration(ctx context.Context, userID string) error {
	return s.storage.Users().CompleteRegistration(ctx, userID)
}
