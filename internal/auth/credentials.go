package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is a signed-in identity.
type User struct {
	Email string
	Name  string
}

// Account is a configured user. Password is hashed on load when no
// PasswordHash is given.
type Account struct {
	Email        string
	Name         string
	Password     string
	PasswordHash string
}

// CredentialChecker verifies an email and password pair.
type CredentialChecker interface {
	Check(email, password string) (User, bool)
}

type storedUser struct {
	user User
	hash []byte
}

// StaticUsers checks credentials against a fixed set of bcrypt hashes.
type StaticUsers struct {
	users map[string]storedUser
	// dummy keeps unknown-email checks as slow as wrong-password checks.
	dummy []byte
}

// NewStaticUsers hashes any plain passwords and indexes accounts by
// case-insensitive email.
func NewStaticUsers(accounts []Account) (*StaticUsers, error) {
	s := &StaticUsers{users: make(map[string]storedUser, len(accounts))}
	for _, a := range accounts {
		hash := []byte(a.PasswordHash)
		if len(hash) == 0 {
			var err error
			hash, err = bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", a.Email, err)
			}
		} else if _, err := bcrypt.Cost(hash); err != nil {
			return nil, fmt.Errorf("password hash for %s: %w", a.Email, err)
		}
		name := a.Name
		if name == "" {
			name = a.Email
		}
		s.users[normalize(a.Email)] = storedUser{user: User{Email: a.Email, Name: name}, hash: hash}
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("fleetfusion"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.dummy = dummy
	return s, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check implements CredentialChecker.
func (s *StaticUsers) Check(email, password string) (User, bool) {
	u, ok := s.users[normalize(email)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return User{}, false
	}
	return u.user, true
}
