package auth

import (
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// --- Context Keys ---

// contextKey is a custom type used for context keys to avoid collisions.
type contextKey string

const AdminSubjectKey contextKey = "adminSubject"

// --- JWT Claims ---

// AdminClaims are the claims carried by an admin token. The token gates the
// document ingestion endpoint only; there are no user accounts.
type AdminClaims struct {
	jwt.RegisteredClaims
}

// NewAdminToken generates a signed admin token for the ingestion tooling.
func NewAdminToken(subject string, jwtSecret string, expiration time.Duration) (string, error) {
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "portfolio-rag-backend",
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("Error signing admin token for subject %s: %v", subject, err)
		return "", err
	}

	return signedToken, nil
}
