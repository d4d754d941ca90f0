package helpers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueDecode(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("super-secret", "", time.Hour)

	for _, id := range []int64{1, 42, 1 << 40} {
		tok, exp, err := m.Issue(id)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

		got, err := m.Decode(tok)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("k", "", 0)
	assert.Equal(t, 60*time.Minute, m.TTL())

	_, exp, err := m.Issue(7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), exp, 5*time.Second)
}

func TestJWTManager_Expired(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", "", time.Hour)
	tok, _, err := m.IssueWithTTL(1, -1*time.Second)
	require.NoError(t, err)

	_, err = m.Decode(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_ShortTTL(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", "", time.Hour)
	for _, ttl := range []time.Duration{50 * time.Millisecond, 500 * time.Millisecond, 999 * time.Millisecond, 1500 * time.Millisecond} {
		before := time.Now()
		tok, exp, err := m.IssueWithTTL(9, ttl)
		require.NoError(t, err, ttl)
		assert.Zero(t, exp.Nanosecond(), ttl)
		assert.False(t, exp.Before(before.Add(ttl)), ttl)

		got, err := m.Decode(tok)
		require.NoError(t, err, ttl)
		assert.Equal(t, int64(9), got)
	}
}

func TestJWTManager_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewJWTManager("right-secret", "", time.Hour).Issue(2)
	require.NoError(t, err)

	_, err = NewJWTManager("wrong-secret", "", time.Hour).Decode(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestJWTManager_Tampered(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", "", time.Hour)
	tok, _, err := m.Issue(3)
	require.NoError(t, err)

	segs := strings.Split(tok, ".")
	require.Len(t, segs, 3)

	// first character of each segment, plus one inside the signature
	positions := []int{
		0,
		len(segs[0]) + 1,
		len(segs[0]) + 1 + len(segs[1]) + 1,
		len(segs[0]) + 1 + len(segs[1]) + 1 + len(segs[2])/2,
	}
	for _, pos := range positions {
		b := []byte(tok)
		if b[pos] == 'A' {
			b[pos] = 'B'
		} else {
			b[pos] = 'A'
		}
		_, err := m.Decode(string(b))
		assert.ErrorIs(t, err, ErrInvalidToken, "position %d", pos)
	}
}

func TestJWTManager_Malformed(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("k", "", time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b"} {
		_, err := m.Decode(tok)
		require.ErrorIs(t, err, ErrInvalidToken, tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, tok)
	}
}

func TestJWTManager_ClaimProblems(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	m := NewJWTManager(string(secret), "", time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sign := func(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{
			name:  "missing subject",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{ExpiresAt: exp}),
			want:  ErrTokenNoSubject,
		},
		{
			name:  "non numeric subject",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}),
			want:  ErrTokenMalformed,
		},
		{
			name:  "negative subject",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "-4", ExpiresAt: exp}),
			want:  ErrTokenMalformed,
		},
		{
			name:  "missing expiry",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "1"}),
			want:  ErrTokenMalformed,
		},
		{
			name:  "other hmac algorithm",
			token: sign(t, jwt.SigningMethodHS512, secret, jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}),
			want:  ErrTokenSignature,
		},
		{
			name:  "unsigned",
			token: sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}),
			want:  ErrTokenSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Decode(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestJWTManager_Issuer(t *testing.T) {
	t.Parallel()

	issuing := NewJWTManager("k", "profile-service", time.Hour)
	tok, _, err := issuing.Issue(9)
	require.NoError(t, err)

	id, err := issuing.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	other := NewJWTManager("k", "someone-else", time.Hour)
	_, err = other.Decode(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
