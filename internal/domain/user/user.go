package user

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// mirrors the pattern the store enforced historically
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// User is the internal record, hash included. It never serializes the
// hash; the public projection is View, built explicitly via ToView.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View is what the API returns. There is no password field to leak.
type View struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) ToView() View {
	return View{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeEmail lowercases and trims the address the way the store expects it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
