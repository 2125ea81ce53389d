package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher is the narrow interface the session manager depends on.
// The production implementation is bcrypt; tests can lower the cost.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) cost() int {
	if h.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

func (h BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify is constant-time with respect to the password; bcrypt compares
// digests internally with a timing-safe routine.
func (h BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
