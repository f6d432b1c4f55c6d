package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TokenGenerator issues signed session tokens for authenticated users
type TokenGenerator interface {
	Generate(userID uuid.UUID, username string, capabilities []string) (token string, expiresAt time.Time, err error)
}

// LoginRequest is the payload for authentication
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role,omitempty"`
}

// AuthService authenticates staff and issues tokens
type AuthService struct {
	users  identity.UserRepository
	tokens TokenGenerator
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users identity.UserRepository, tokens TokenGenerator, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Login verifies credentials and returns a signed token. The failure
// message is identical for unknown users and wrong passwords.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	invalid := shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active || !user.CheckPassword(req.Password) {
		return nil, invalid
	}

	var caps []string
	roleName := ""
	if user.Role != nil {
		caps = user.Role.Capabilities
		roleName = user.Role.Name
	}
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username, caps)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      roleName,
	}, nil
}

// UserRequest is the payload for creating a staff account
type UserRequest struct {
	Username string     `json:"username" binding:"required"`
	Password string     `json:"password" binding:"required,min=8"`
	FullName string     `json:"full_name"`
	RoleID   *uuid.UUID `json:"role_id"`
}

// UserService handles staff account administration
type UserService struct {
	users  identity.UserRepository
	roles  identity.RoleRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users identity.UserRepository, roles identity.RoleRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, roles: roles, logger: logger}
}

// CreateUser adds a staff account
func (s *UserService) CreateUser(ctx context.Context, req UserRequest) (*identity.User, error) {
	existing, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_USERNAME", "Username is already taken")
	}

	user, err := identity.NewUser(req.Username, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}
	if req.RoleID != nil {
		role, err := s.roles.FindByID(ctx, *req.RoleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role does not exist")
		}
		user.RoleID = &role.ID
		user.Role = role
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AssignRole changes a user's role
func (s *UserService) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User does not exist")
	}
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return shared.NewDomainError("ROLE_NOT_FOUND", "Role does not exist")
	}
	user.RoleID = &role.ID
	user.Role = role
	return s.users.Save(ctx, user)
}

// ResetPassword sets a new password for a user
func (s *UserService) ResetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User does not exist")
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// SetActive enables or disables a staff account
func (s *UserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User does not exist")
	}
	user.Active = active
	return s.users.Save(ctx, user)
}

// ListUsers returns staff accounts page by page
func (s *UserService) ListUsers(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	filter.Normalize()
	return s.users.FindAll(ctx, filter)
}

// ListRoles returns all roles
func (s *UserService) ListRoles(ctx context.Context) ([]identity.Role, error) {
	return s.roles.FindAll(ctx)
}
