package app

import (
	"context"
	"errors"
	"fmt"

	"smart-learning-portal/internal/domain"
)

// AccountService handles signup and login. Credentials are stored and
// compared as opaque strings for compatibility with the system this
// replaces; hashing would slot in here.
type AccountService struct {
	users UserStore
	genID func() string
}

func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users, genID: NewID}
}

// SignUp registers a new account. roleID is the student seat number or the
// admin identifier depending on role.
func (s *AccountService) SignUp(ctx context.Context, name, email, password string, role domain.Role, roleID string) (domain.User, error) {
	if name == "" || email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if role != domain.RoleStudent && role != domain.RoleAdmin {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	user := domain.User{
		ID:       s.genID(),
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	}
	switch role {
	case domain.RoleStudent:
		user.USN = roleID
	case domain.RoleAdmin:
		user.AdminID = roleID
	}
	if err := s.users.Save(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// LogIn resolves an account by email and checks password and role equality.
// Lookup misses and mismatches collapse into ErrInvalidCredentials.
func (s *AccountService) LogIn(ctx context.Context, email, password string, role domain.Role) (domain.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.Password != password || user.Role != role {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ByID resolves the acting user for handlers that receive only an ID.
func (s *AccountService) ByID(ctx context.Context, id string) (domain.User, error) {
	return s.users.ByID(ctx, id)
}
