package services

import (
	"log"
	"os"

	"github.com/schemabase/backend/pkg/auth"
	"github.com/schemabase/backend/pkg/errors"
	"github.com/schemabase/backend/pkg/utils"
)

// The registry is an operator tool, not a multi-tenant product: a single
// admin credential guards the mutating endpoints.
const adminName = "admin"

// Known bcrypt hash of the development password "admin123"
const defaultAdminHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService handles operator authentication for the registry API
type AuthService struct {
	passwordHash string
}

// NewAuthService creates a new AuthService. The admin credential comes
// from ADMIN_PASSWORD_HASH (a bcrypt hash); when unset, a development
// default is used and loudly logged.
func NewAuthService() *AuthService {
	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if hash == "" {
		log.Println("⚠️ ADMIN_PASSWORD_HASH not set, using development default credential")
		hash = defaultAdminHash
	}
	return &AuthService{passwordHash: hash}
}

// Login verifies the admin credential and issues a JWT
func (s *AuthService) Login(name, password string) (string, error) {
	if name != adminName {
		return "", errors.NewUnauthorizedError("invalid credentials")
	}
	if !auth.VerifyPassword(password, s.passwordHash) {
		return "", errors.NewUnauthorizedError("invalid credentials")
	}

	token, err := auth.GenerateToken(auth.Session{
		ID:   utils.GenerateID(),
		Name: adminName,
	})
	if err != nil {
		return "", errors.NewInternalError("failed to generate token", err)
	}

	log.Printf("🔑 Operator session issued for %s", adminName)
	return token, nil
}

// ValidateSession validates a JWT and returns its claims
func (s *AuthService) ValidateSession(tokenString string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}
	return claims, nil
}
