package models

import "time"

type User struct {
	ID                  string     `json:"id" validate:"required,uuid"`
	Email               string     `json:"email" validate:"required,email"`
	Password            string     `json:"-" validate:"required,min=8"`
	FirstName           string     `json:"first_name" validate:"required"`
	LastName            string     `json:"last_name" validate:"required"`
	Phone               string     `json:"phone,omitempty"`
	CountryCode         string     `json:"country_code,omitempty"`
	PaymentStatus       PaidStatus `json:"payment_status"`
	SplitPaymentEnabled bool       `json:"split_payment_enabled"`
	IsActive            bool       `json:"is_active"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	Roles               []*Role    `json:"roles,omitempty"`
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
