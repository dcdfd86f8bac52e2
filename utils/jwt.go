package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims mirrors the tokens minted by the authentication service. This
// service only validates them; it never issues credentials or handles OTPs.
type UserClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

func userSecret() []byte {
	secret := os.Getenv("JWT_SECRET_USER")
	if secret == "" {
		secret = "default_secret" // Fallback secret, should be changed in production
	}
	return []byte(secret)
}

// GenerateUserToken signs a token the way the auth service does. Used by
// tests and local tooling.
func GenerateUserToken(id, email, fullName string) (string, error) {
	claims := UserClaims{
		ID:       id,
		Email:    email,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   id,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(userSecret())
}

func ParseUserToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return userSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrInvalidKey
	}
	return claims, nil
}
