package helpers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTTL is used when the manager is built without a TTL.
const DefaultAccessTTL = 60 * time.Minute

var (
	// ErrInvalidToken is the single failure every Decode error matches.
	// The wrapped reasons below exist for logging only.
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenNoSubject = fmt.Errorf("%w: missing subject", ErrInvalidToken)
)

// JWTManager issues and decodes HS256 access tokens whose subject is a user id.
// The secret is fixed at construction.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewJWTManager(secret, issuer string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &JWTManager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL returns the default lifetime of issued tokens.
func (m *JWTManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for userID with the default TTL.
func (m *JWTManager) Issue(userID int64) (string, time.Time, error) {
	return m.IssueWithTTL(userID, m.ttl)
}

// IssueWithTTL signs a token for userID expiring ttl from now. A non-positive
// ttl yields a token that is already expired. The exp claim has whole-second
// precision, so a positive ttl is rounded up to the next second boundary.
func (m *JWTManager) IssueWithTTL(userID int64, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	if whole := exp.Truncate(time.Second); ttl > 0 && whole.Before(exp) {
		exp = whole.Add(time.Second)
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    m.issuer,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Decode verifies signature and expiry and returns the subject user id.
// Every failure wraps ErrInvalidToken.
func (m *JWTManager) Decode(tokenStr string) (int64, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return 0, classifyTokenError(err)
	}
	if !tkn.Valid {
		return 0, ErrTokenMalformed
	}
	if claims.Subject == "" {
		return 0, ErrTokenNoSubject
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenMalformed
	}
	return id, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
