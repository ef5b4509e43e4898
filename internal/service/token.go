package service

import (
	"crypto/rand"
	"encoding/hex"
)

// verificationTokenBytes da 256 bits de entropia por token.
const verificationTokenBytes = 32

// TokenSource genera secretos opacos para verificacion de email.
type TokenSource func() (string, error)

func randomHexToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
