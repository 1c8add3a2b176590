package util

import (
	"golang.org/x/crypto/bcrypt"
)

var bcryptCost = 12

// SetHashCost overrides the bcrypt cost. Tests lower it to bcrypt.MinCost.
func SetHashCost(cost int) {
	bcryptCost = cost
}

// HashPassword hashes a plain text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text password matches a hashed password
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
