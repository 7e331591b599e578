package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidPasswordHash         = errors.New("invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("incompatible password hash version")
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHasher derives argon2id keys. The stored hash carries the cost
// parameters it was made with, as $argon2id$v=19$m=..,t=..,p=..$key, so
// raising the defaults never locks out existing users. The salt is kept
// apart on the user. Both are base64 encoded.
type PasswordHasher struct {
	params Argon2idParams
}

func NewPasswordHasher(params Argon2idParams) PasswordHasher {
	return PasswordHasher{params: params}
}

func (h PasswordHasher) Hash(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", err
	}
	p := h.params
	key := argon2.IDKey([]byte(password), rawSalt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s"
	hash = fmt.Sprintf(format, argon2.Version, p.Memory, p.Iterations, p.Parallelism, base64.RawStdEncoding.EncodeToString(key))
	return hash, base64.RawStdEncoding.EncodeToString(rawSalt), nil
}

func (h PasswordHasher) Verify(password, hash, salt string) error {
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return ErrInvalidPasswordHash
	}
	params, expected, err := h.decode(hash)
	if err != nil {
		return err
	}

	actual := argon2.IDKey([]byte(password), rawSalt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	if subtle.ConstantTimeCompare(expected, actual) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// decode splits a stored hash into its parameters and key. A bare base64
// key, as written before parameters were recorded, uses the hasher's own.
func (h PasswordHasher) decode(hash string) (Argon2idParams, []byte, error) {
	params := h.params
	encoded := hash
	if strings.HasPrefix(hash, "$") {
		parts := strings.Split(hash, "$")
		if len(parts) != 5 || parts[1] != "argon2id" {
			return Argon2idParams{}, nil, ErrInvalidPasswordHash
		}
		var version int
		if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
			return Argon2idParams{}, nil, ErrInvalidPasswordHash
		}
		if version != argon2.Version {
			return Argon2idParams{}, nil, ErrIncompatiblePasswordVersion
		}
		if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
			return Argon2idParams{}, nil, ErrInvalidPasswordHash
		}
		encoded = parts[4]
	}

	key, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(key) == 0 {
		return Argon2idParams{}, nil, ErrInvalidPasswordHash
	}
	params.KeyLength = uint32(len(key))
	return params, key, nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
