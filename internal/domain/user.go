package domain

import (
	"fmt"
	"strings"
	"time"
)

type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

func ParseUserRole(raw string) (UserRole, error) {
	return parseEnum("user role", strings.TrimSpace(raw), []UserRole{UserRoleBuyer, UserRoleSeller, UserRoleAdmin})
}

func (r *UserRole) UnmarshalText(text []byte) error {
	v, err := ParseUserRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

func ParseUserStatus(raw string) (UserStatus, error) {
	return parseEnum("user status", strings.TrimSpace(raw), []UserStatus{UserStatusActive, UserStatusSuspended})
}

func (s *UserStatus) UnmarshalText(text []byte) error {
	v, err := ParseUserStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type User struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Role            UserRole            `json:"role"` // informative only
	Status          UserStatus          `json:"status"`
	JoinedAt        time.Time           `json:"joined_at"`
	SuspendedReason Optional[string]    `json:"suspended_reason"`
	SuspendedAt     Optional[time.Time] `json:"suspended_at"`
}

func (u *User) Suspend(reason string, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: suspension reason is required", ErrInvalidArgument)
	}
	if u.Status != UserStatusActive {
		return fmt.Errorf("%w: user %s is %s", ErrInvalidState, u.ID, u.Status)
	}
	u.Status = UserStatusSuspended
	u.SuspendedReason = Some(reason)
	u.SuspendedAt = Some(at)
	return nil
}

func (u *User) Reactivate() error {
	if u.Status != UserStatusSuspended {
		return fmt.Errorf("%w: user %s is %s", ErrInvalidState, u.ID, u.Status)
	}
	u.Status = UserStatusActive
	u.SuspendedReason = None[string]()
	u.SuspendedAt = None[time.Time]()
	return nil
}

// UserFilter narrows the member list. Zero fields match everything.
type UserFilter struct {
	Status Optional[UserStatus]
	Role   Optional[UserRole]
	Query  string
}

func (f UserFilter) Matches(u *User) bool {
	if s, ok := f.Status.Get(); ok && u.Status != s {
		return false
	}
	if r, ok := f.Role.Get(); ok && u.Role != r {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Name), q) ||
		strings.Contains(strings.ToLower(u.Email), q) ||
		strings.Contains(strings.ToLower(u.ID), q)
}
