package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is a named bundle of capabilities
type Role struct {
	shared.BaseEntity
	Name         string   `gorm:"type:varchar(50);uniqueIndex;not null"`
	Capabilities []string `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// NewRole creates a role with the given capability tags
func NewRole(name string, caps []Capability) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Role name cannot be empty")
	}
	r := &Role{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}
	for _, c := range caps {
		if !c.IsValid() {
			return nil, shared.NewDomainError("INVALID_CAPABILITY", "Unknown capability: "+string(c))
		}
		r.Capabilities = append(r.Capabilities, string(c))
	}
	return r, nil
}

// Grants checks whether the role carries a capability
func (r *Role) Grants(c Capability) bool {
	for _, have := range r.Capabilities {
		if have == string(c) {
			return true
		}
	}
	return false
}

// User is a staff account
type User struct {
	shared.BaseEntity
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	FullName     string     `gorm:"type:varchar(100)"`
	RoleID       *uuid.UUID `gorm:"type:uuid;index"`
	Role         *Role      `gorm:"foreignKey:RoleID"`
	Active       bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a user with a bcrypt password hash
func NewUser(username, password, fullName string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Active:       true,
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the stored hash
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// HasCapability checks the user's role for a capability. Inactive users
// hold no capabilities.
func (u *User) HasCapability(c Capability) bool {
	if !u.Active || u.Role == nil {
		return false
	}
	return u.Role.Grants(c)
}
