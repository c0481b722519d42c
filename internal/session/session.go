// Package session models the signed-in user: the opaque bearer token,
// its decoded claims, and the key/value capability it is persisted in.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Persisted keys.
const (
	KeyToken           = "token"
	KeyRememberedEmail = "rememberedEmail"
	KeyRememberMe      = "rememberMe"
)

// ErrNotFound is returned by Store.Get for an absent key.
var ErrNotFound = errors.New("session: key not found")

// ErrMalformed is returned by Decode when the token cannot be read.
var ErrMalformed = errors.New("session: malformed token")

// Store is a small persistent key/value capability.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Role is the closed set of account roles.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

// ParseRole maps the API's role string onto Role. Matching is
// case-insensitive.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN":
		return RoleAdmin, nil
	case "USER":
		return RoleUser, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleUser:
		return "USER"
	default:
		return "UNKNOWN"
	}
}

// Claims is the decoded token payload. It is never verified locally;
// the API is the only authority on validity.
type Claims struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	RoleName string `json:"role"`
	jwt.RegisteredClaims

	Role Role `json:"-"`
}

// Initial returns the upper-cased first letter of the full name, used as
// an avatar.
func (c Claims) Initial() string {
	for _, r := range c.FullName {
		return strings.ToUpper(string(r))
	}
	return ""
}

// Session is a token plus the claims decoded from it.
type Session struct {
	Token  string
	Claims Claims
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Claims.Role == RoleAdmin
}

// Decode reads the claims of token without verifying its signature. A
// malformed token or an unknown role is an error; callers treat both as
// "no session".
func Decode(token string) (Claims, error) {
	var claims Claims
	_, _, err := jwt.NewParser().ParseUnverified(stripBearer(token), &claims)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	role, err := ParseRole(claims.RoleName)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims.Role = role

	return claims, nil
}

// New decodes token into a Session.
func New(token string) (*Session, error) {
	claims, err := Decode(token)
	if err != nil {
		return nil, err
	}
	return &Session{Token: stripBearer(token), Claims: claims}, nil
}

func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
