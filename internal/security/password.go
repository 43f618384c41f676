package security

import "golang.org/x/crypto/bcrypt"

// accountHashCost is the bcrypt work factor applied to account passwords.
const accountHashCost = 12

// HashPassword derives a bcrypt hash suitable for storing an account password.
func HashPassword(password string) (string, error) {
	hash, errHash := bcrypt.GenerateFromPassword([]byte(password), accountHashCost)
	if errHash != nil {
		return "", errHash
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
