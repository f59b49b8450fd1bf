package user

import (
	"fmt"
	"strings"

	"github.com/zain621/rehmatshipping/internal/domain"
)

// User is one record of the upstream user directory.
type User struct {
	name  string
	email string
	city  string
	phone string
}

// New creates a user. Name and email are required since they drive matching;
// city and phone are display-only and copied verbatim.
func New(name, email, city, phone string) (User, error) {
	if strings.TrimSpace(name) == "" {
		return User{}, fmt.Errorf("%w: user name is required", domain.ErrParse)
	}
	if strings.TrimSpace(email) == "" {
		return User{}, fmt.Errorf("%w: user email is required", domain.ErrParse)
	}
	return User{name: name, email: email, city: city, phone: phone}, nil
}

// Name returns the full name.
func (u User) Name() string { return u.name }

// Email returns the email address.
func (u User) Email() string { return u.email }

// City returns the city from the user's address.
func (u User) City() string { return u.city }

// Phone returns the phone number as supplied upstream.
func (u User) Phone() string { return u.phone }
