package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohits-web03/robotutor/internal/apperr"
	"github.com/rohits-web03/robotutor/internal/repositories"
	"github.com/rohits-web03/robotutor/internal/testutil"
)

func newTestManager(t *testing.T, ttl time.Duration) *SessionManager {
	t.Helper()
	store := repositories.NewStore(testutil.OpenTestDB(t))
	return NewSessionManager(store, BcryptHasher{Cost: bcrypt.MinCost}, ttl)
}

func signupInput(email string) SignupInput {
	return SignupInput{
		Email:              email,
		Name:               "Test User",
		Password:           "correct-horse",
		SoftwareBackground: "Python",
		OperatingSystem:    "Ubuntu 22.04",
	}
}

func TestSignupIssuesWorkingToken(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, user, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "a@b.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.Password, "password must never be stored in plaintext")

	authed, err := m.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	_, _, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)

	_, _, err = m.Signup(ctx, signupInput("a@b.com"))
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestSignupMissingFields(t *testing.T) {
	m := newTestManager(t, time.Hour)

	_, _, err := m.Signup(context.Background(), SignupInput{Email: "a@b.com"})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestSigninWrongPassword(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	_, _, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)

	_, _, err = m.Signin(ctx, "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestSigninUnknownEmail(t *testing.T) {
	m := newTestManager(t, time.Hour)

	_, _, err := m.Signin(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

// The unknown-email path must not be measurably faster than the
// wrong-password path: both must pay for a digest comparison.
func TestSigninFailureTiming(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	_, _, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)

	const rounds = 10

	measure := func(email string) time.Duration {
		var total time.Duration
		for i := 0; i < rounds; i++ {
			start := time.Now()
			_, _, _ = m.Signin(ctx, email, "wrong")
			total += time.Since(start)
		}
		return total / rounds
	}

	knownWrong := measure("a@b.com")
	unknown := measure("nobody@example.com")

	digest, err := m.hasher.Hash("reference")
	require.NoError(t, err)
	start := time.Now()
	m.hasher.Verify("other", digest)
	baseline := time.Since(start)

	// Both failure paths should cost at least a meaningful fraction of
	// one bcrypt comparison; a skipped comparison would be far below.
	assert.Greater(t, knownWrong, baseline/8)
	assert.Greater(t, unknown, baseline/8)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, _, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)

	// Advance the manager's clock past the session's expiry.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = m.Authenticate(ctx, token)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-token", "AAAA.BBBB.CCCC"} {
		_, err := m.Authenticate(ctx, token)
		require.Error(t, err)
		assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	}
}

func TestSignoutInvalidatesSession(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, _, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)

	require.NoError(t, m.Signout(ctx, token))

	_, err = m.Authenticate(ctx, token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestAuthenticateAfterUserDeleted(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, user, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)

	require.NoError(t, m.store.DeleteUser(ctx, user.ID))

	_, err = m.Authenticate(ctx, token)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestSweepExpired(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	_, _, err := m.Signup(ctx, signupInput("a@b.com"))
	require.NoError(t, err)
	freshToken, _, err := m.Signin(ctx, "a@b.com", "correct-horse")
	require.NoError(t, err)
	_ = freshToken

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	removed, err := m.SweepExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)
}

func TestSigninOAuthLinksOnce(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	token, user, err := m.SigninOAuth(ctx, "google", "ext-1", "a@b.com", "Test User", "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Second signin resolves the existing link instead of re-creating it.
	_, again, err := m.SigninOAuth(ctx, "google", "ext-1", "a@b.com", "Test User", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	// The created user gets a default profile like a password signup.
	profile, err := m.store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "beginner", profile.ExperienceLevel)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
