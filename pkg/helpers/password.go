package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultPBKDF2Rounds follows the OWASP recommendation for PBKDF2-HMAC-SHA256.
	DefaultPBKDF2Rounds = 600000

	pbkdf2Scheme  = "pbkdf2-sha256"
	pbkdf2SaltLen = 16
	pbkdf2KeyLen  = 32
)

// PasswordHasher hashes passwords with PBKDF2-HMAC-SHA256 and stores them in
// modular crypt form: $pbkdf2-sha256$<rounds>$<salt>$<digest>.
//
// Salt and digest use the "adapted" base64 alphabet ('.' instead of '+', no
// padding), so hashes produced by passlib's pbkdf2_sha256 verify unchanged.
type PasswordHasher struct {
	rounds int
}

func NewPasswordHasher(rounds int) *PasswordHasher {
	if rounds <= 0 {
		rounds = DefaultPBKDF2Rounds
	}
	return &PasswordHasher{rounds: rounds}
}

// Hash returns a freshly salted hash of plain.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	dk := pbkdf2.Key([]byte(plain), salt, h.rounds, pbkdf2KeyLen, sha256.New)
	return "$" + pbkdf2Scheme + "$" + strconv.Itoa(h.rounds) + "$" + ab64Encode(salt) + "$" + ab64Encode(dk), nil
}

// Verify reports whether plain produced hash. Malformed hashes yield false.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	if isBcryptHash(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}
	rounds, salt, want, ok := parsePBKDF2(hash)
	if !ok {
		return false
	}
	got := pbkdf2.Key([]byte(plain), salt, rounds, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func parsePBKDF2(hash string) (rounds int, salt, digest []byte, ok bool) {
	// "", scheme, rounds, salt, digest
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != pbkdf2Scheme {
		return 0, nil, nil, false
	}
	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return 0, nil, nil, false
	}
	salt, err = ab64Decode(parts[3])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, false
	}
	digest, err = ab64Decode(parts[4])
	if err != nil || len(digest) == 0 {
		return 0, nil, nil, false
	}
	return rounds, salt, digest, true
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}
