package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"golang.org/x/crypto/hkdf"
)

// CookieKey derives the AES-256 key for encryptcookie from SESSION_SECRET.
func CookieKey(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("session secret is empty")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("dtt-session-cookie"))
	if _, err := io.ReadFull(r, key); err != nil {
		return "", fmt.Errorf("failed to derive cookie key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// EncryptCookies encrypts every cookie the app sets, the session cookie included.
func EncryptCookies(key string) fiber.Handler {
	return encryptcookie.New(encryptcookie.Config{Key: key})
}
