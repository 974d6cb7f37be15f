package domain

import "time"

// Well-known role names. Roles beyond these can exist, but the core flows
// only ever create or check this vocabulary.
const (
	RoleUser     = "USER"
	RoleAdmin    = "ADMIN"
	RoleNGO      = "NGO"
	RoleRecycler = "RECYCLER"
)

type Role struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// SingleAssignment marks roles at most one account may hold (NGO, ADMIN).
	SingleAssignment bool `json:"single_assignment"`
}

type User struct {
	ID              int32     `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	PhoneNumber     string    `json:"phone_number"`
	PasswordHash    string    `json:"-"`
	IsActive        bool      `json:"is_active"`
	IsEmailVerified bool      `json:"is_email_verified"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	Roles           []Role    `json:"roles,omitempty"` // Populated when needed
	DateJoined      time.Time `json:"date_joined"`
}

// HasRole reports whether the loaded role set contains name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of the loaded role set.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// UserProfile is the companion record created alongside every account.
type UserProfile struct {
	ID           int32     `json:"id"`
	UserID       int32     `json:"user_id"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city,omitempty"`
	Area         string    `json:"area,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
