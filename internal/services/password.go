package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// SaltedSHA256 hashes password+salt with SHA-256 and hex-encodes the result.
// The salt is shared by every account and there is no work factor, so this is
// only fit for the demo deployment. BcryptHasher is the alternative.
type SaltedSHA256 struct {
	salt string
}

func NewSaltedSHA256(salt string) *SaltedSHA256 {
	return &SaltedSHA256{salt: salt}
}

func (h *SaltedSHA256) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password + h.salt))
	return hex.EncodeToString(sum[:]), nil
}

func (h *SaltedSHA256) Verify(password, digest string) bool {
	want, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(want), []byte(digest)) == 1
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
