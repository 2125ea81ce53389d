package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rohits-web03/robotutor/internal/apperr"
	"github.com/rohits-web03/robotutor/internal/models"
	"github.com/rohits-web03/robotutor/internal/repositories"
	"github.com/rohits-web03/robotutor/internal/utils"
)

const sessionTokenBytes = 32 // 256-bit opaque bearer token

// SessionManager turns credentials into session tokens and bearer tokens
// back into authenticated users. Sessions carry an absolute expiry; there
// is no sliding renewal.
type SessionManager struct {
	store  *repositories.Store
	hasher PasswordHasher
	ttl    time.Duration

	// now is swapped out in tests to advance time past expiry.
	now func() time.Time

	// dummyDigest is compared against when the email is unknown, so the
	// unknown-email and wrong-password paths cost the same.
	dummyDigest string
}

func NewSessionManager(store *repositories.Store, hasher PasswordHasher, ttl time.Duration) *SessionManager {
	dummy, err := hasher.Hash("robotutor-timing-pad")
	if err != nil {
		dummy = ""
	}
	return &SessionManager{
		store:       store,
		hasher:      hasher,
		ttl:         ttl,
		now:         time.Now,
		dummyDigest: dummy,
	}
}

type SignupInput struct {
	Email              string
	Name               string
	Password           string
	SoftwareBackground string
	HardwareBackground string
	OperatingSystem    string
	GPUHardware        string
}

// Signup registers a new user. The user and profile rows are written in
// one transaction; a duplicate email fails with Conflict. The returned
// token is the only plaintext copy of the session credential.
func (m *SessionManager) Signup(ctx context.Context, in SignupInput) (string, *models.User, error) {
	if in.Email == "" || in.Name == "" || in.Password == "" {
		return "", nil, apperr.New(apperr.InvalidArgument, "Email, name and password are required")
	}

	digest, err := m.hasher.Hash(in.Password)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Internal, "Failed to hash password", err)
	}

	user := &models.User{
		Email:         in.Email,
		Name:          in.Name,
		EmailVerified: true,
		Password:      digest,
	}
	profile := &models.UserProfile{
		SoftwareBackground: in.SoftwareBackground,
		HardwareBackground: in.HardwareBackground,
		OperatingSystem:    in.OperatingSystem,
		GPUHardware:        in.GPUHardware,
		ExperienceLevel:    "beginner",
		PreferredLanguage:  "en",
	}
	if err := m.store.CreateUserWithProfile(ctx, user, profile); err != nil {
		return "", nil, err
	}

	token, err := m.createSession(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Signin exchanges email and password for a fresh session token. Unknown
// email and wrong password are indistinguishable to the caller, in both
// response and timing.
func (m *SessionManager) Signin(ctx context.Context, email, password string) (string, *models.User, error) {
	if email == "" || password == "" {
		return "", nil, apperr.New(apperr.InvalidArgument, "Email and password are required")
	}

	user, err := m.store.FindUserByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			m.hasher.Verify(password, m.dummyDigest)
			return "", nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
		}
		return "", nil, err
	}

	if user.Password == "" || !m.hasher.Verify(password, user.Password) {
		return "", nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}

	token, err := m.createSession(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SigninOAuth resolves an external provider identity to a local user,
// creating the user (with a default profile) and account link on first
// signin. Re-linking an identity already owned by another user surfaces
// the store's Conflict.
func (m *SessionManager) SigninOAuth(ctx context.Context, providerID, accountID, email, name, image string) (string, *models.User, error) {
	if acct, err := m.store.FindAccountByProviderIdentity(ctx, providerID, accountID); err == nil {
		user, err := m.store.FindUserByID(ctx, acct.UserID)
		if err != nil {
			return "", nil, err
		}
		token, err := m.createSession(ctx, user)
		return token, user, err
	} else if apperr.KindOf(err) != apperr.NotFound {
		return "", nil, err
	}

	user, err := m.store.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing local user; attach the provider identity.
	case apperr.KindOf(err) == apperr.NotFound:
		user = &models.User{
			Email:         email,
			Name:          name,
			EmailVerified: true,
			Image:         image,
		}
		profile := &models.UserProfile{ExperienceLevel: "beginner", PreferredLanguage: "en"}
		if err := m.store.CreateUserWithProfile(ctx, user, profile); err != nil {
			return "", nil, err
		}
	default:
		return "", nil, err
	}

	if err := m.store.LinkAccount(ctx, &models.Account{
		UserID:     user.ID,
		ProviderID: providerID,
		AccountID:  accountID,
	}); err != nil {
		return "", nil, err
	}

	token, err := m.createSession(ctx, user)
	return token, user, err
}

// Authenticate validates a bearer token: present, known, unexpired, and
// its user still existing. Pure lookup, no mutation.
func (m *SessionManager) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.Unauthorized, "Not authenticated")
	}

	session, err := m.store.FindValidSessionByTokenHash(ctx, HashToken(token), m.now())
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.New(apperr.Unauthorized, "Invalid or expired session")
		}
		return nil, err
	}

	user, err := m.store.FindUserByID(ctx, session.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.New(apperr.Unauthorized, "Invalid or expired session")
		}
		return nil, err
	}
	return user, nil
}

// Signout deletes the session row. Unknown tokens are a no-op.
func (m *SessionManager) Signout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.DeleteSessionByTokenHash(ctx, HashToken(token))
}

// SweepExpired deletes expired session rows. Optional housekeeping;
// validity never depends on it.
func (m *SessionManager) SweepExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx, m.now())
}

func (m *SessionManager) createSession(ctx context.Context, user *models.User) (string, error) {
	token, err := utils.GenerateSecureToken(sessionTokenBytes)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "Failed to create session token", err)
	}
	session := &models.Session{
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

// HashToken is the server-side form of a session token. Lookups go
// through the hash, so the database never holds a usable credential.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
