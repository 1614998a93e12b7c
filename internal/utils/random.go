package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex возвращает 2*n hex-символов из crypto/rand.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
