package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a username is unknown so that failed logins cost the
// same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bookish-dummy-password"), bcrypt.MinCost)

// HashPassword hashes password with the given bcrypt work factor.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnPasswordCheck performs a throwaway comparison for unknown accounts.
func BurnPasswordCheck(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
