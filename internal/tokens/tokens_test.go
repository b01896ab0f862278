package tokens

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *Codec {
	return &Codec{
		ActivationSecret: []byte("test-activation-secret"),
		SessionSecret:    []byte("test-session-secret"),
		ResetSecret:      []byte("test-reset-secret"),
	}
}

func TestIssueActivation_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, err := codec.IssueActivation("Test User", "test@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.VerifyActivation(token)
	require.NoError(t, err)
	assert.Equal(t, "Test User", claims.Name)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "secret1", claims.Password)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(ActivationTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueSession_SubjectIsUserID(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, exp, err := codec.IssueSession(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), exp, 5*time.Second)

	claims, err := codec.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)

	id, err := UserID(claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestVerify_WrongPurposeSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	// a reset token must never validate as a session token even though the
	// claim shapes overlap
	reset, err := codec.IssueReset(7)
	require.NoError(t, err)

	_, err = codec.VerifySession(reset)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	claims, err := codec.VerifyReset(reset)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
}

func TestIssueReset_EachTokenUnique(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	// back-to-back reissues land in the same second; the token id is what
	// keeps a new link from equaling the one it replaces
	first, err := codec.IssueReset(7)
	require.NoError(t, err)
	second, err := codec.IssueReset(7)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	firstClaims, err := codec.VerifyReset(first)
	require.NoError(t, err)
	secondClaims, err := codec.VerifyReset(second)
	require.NoError(t, err)
	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	token, err := expired.SignedString(codec.SessionSecret)
	require.NoError(t, err)

	_, err = codec.VerifySession(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_Tampered(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, _, err := codec.IssueSession(1)
	require.NoError(t, err)

	_, err = codec.VerifySession(token + "x")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = codec.VerifySession("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeActivation_NoVerification(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, err := codec.IssueActivation("n", "e@x.com", "pw")
	require.NoError(t, err)

	claims, err := DecodeActivation(token)
	require.NoError(t, err)
	assert.Equal(t, "e@x.com", claims.Email)
}

func TestUserID_Invalid(t *testing.T) {
	t.Parallel()

	_, err := UserID("not-a-number")
	assert.ErrorIs(t, err, ErrInvalid)

	id, err := UserID(strconv.Itoa(9000))
	require.NoError(t, err)
	assert.Equal(t, uint(9000), id)
}
