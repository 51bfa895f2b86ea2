package model

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrHandleTaken        = errors.New("handle is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User roles.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "SUPERADMIN"
)

// Membership roles on a workspace.
const (
	MembershipOwner  = "OWNER"
	MembershipMember = "MEMBER"
)

// User is an account. The public profile lives on the workspace the
// account owns.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	Role           string    `json:"role" db:"role"`
	EmailVerified  bool      `json:"email_verified" db:"email_verified"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Membership binds a user to a workspace with a role.
type Membership struct {
	ID          int64  `json:"id" db:"id"`
	UserID      int64  `json:"user_id" db:"user_id"`
	WorkspaceID int64  `json:"workspace_id" db:"workspace_id"`
	Role        string `json:"role" db:"role"`
}
