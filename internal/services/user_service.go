package services

import (
	"context"
	"strings"

	"github.com/attendance_system/internal/repositories"
)

// UserService backs the admin employee directory.
type UserService interface {
	// ListEmployees returns non-admin accounts, optionally filtered by a
	// case-insensitive match on email or full name.
	ListEmployees(ctx context.Context, q string) ([]MeProfile, error)
}

type userService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) ListEmployees(ctx context.Context, q string) ([]MeProfile, error) {
	users, err := s.users.ListEmployees(ctx, strings.TrimSpace(q), nil)
	if err != nil {
		return nil, err
	}
	out := make([]MeProfile, 0, len(users))
	for i := range users {
		out = append(out, NewMeProfile(&users[i]))
	}
	return out, nil
}
