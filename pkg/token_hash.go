package pkg

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenHashCost is the bcrypt cost used for API tokens.
const DefaultTokenHashCost = 14

var ErrEmptyToken = errors.New("empty token")

// HashToken hashes an API token with DefaultTokenHashCost.
func HashToken(token string) (string, error) {
	return HashTokenWithCost(token, DefaultTokenHashCost)
}

func HashTokenWithCost(token string, cost int) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return BytesToString(hash), nil
}

// TokenMatchesHash reports whether token is the plaintext of the bcrypt hash.
func TokenMatchesHash(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
