// Package password turns form passwords into the value kept in a UserRecord
// and checks login candidates against it.
//
// Plain keeps the password as typed, which matches the stored data format
// of existing installations. Argon2 stores an argon2id PHC string instead.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Hasher is implemented by every password storage scheme.
type Hasher interface {
	// Hash returns the value to persist for password.
	Hash(password string) (string, error)
	// Verify reports whether candidate matches a value produced by Hash.
	Verify(stored, candidate string) bool
}

const (
	SchemePlain  = "plain"
	SchemeArgon2 = "argon2"
)

// New returns the Hasher for scheme.
func New(scheme string) (Hasher, error) {
	switch scheme {
	case SchemePlain, "":
		return Plain{}, nil
	case SchemeArgon2:
		return NewArgon2(DefaultArgon2Params), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// Plain stores passwords verbatim and compares them exactly.
type Plain struct{}

func (Plain) Hash(password string) (string, error) {
	return password, nil
}

func (Plain) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

const algorithmID = "argon2id"

// Argon2Params are the argon2id cost settings.
type Argon2Params struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

var DefaultArgon2Params = Argon2Params{
	Time:       1,
	Memory:     64 * 1024,
	Threads:    4,
	SaltLength: 16,
	KeyLength:  32,
}

type Argon2 struct {
	params Argon2Params
	rand   io.Reader
}

func NewArgon2(p Argon2Params) *Argon2 {
	return &Argon2{params: p, rand: rand.Reader}
}

func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.Memory, a.params.Threads, a.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.params.Memory,
		a.params.Time,
		a.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify returns false for anything that is not a well-formed argon2id
// string, including plaintext left over from the Plain scheme.
func (a *Argon2) Verify(stored, candidate string) bool {
	p, salt, key, err := parsePHC(stored)
	if err != nil {
		return false
	}
	computed := argon2.IDKey([]byte(candidate), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1
}

var errInvalidPHC = errors.New("invalid argon2id string")

// maxArgon2Memory caps the memory cost (KiB) accepted from a stored hash.
const maxArgon2Memory = 1 << 20

func parsePHC(s string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return p, nil, nil, errInvalidPHC
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return p, nil, nil, errInvalidPHC
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, errInvalidPHC
	}
	// argon2.IDKey panics on zero time or threads.
	if p.Time == 0 || p.Threads == 0 || p.Memory == 0 || p.Memory > maxArgon2Memory {
		return p, nil, nil, errInvalidPHC
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, errInvalidPHC
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errInvalidPHC
	}

	return p, salt, key, nil
}
