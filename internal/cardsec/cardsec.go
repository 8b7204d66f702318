// Package cardsec is the encryption boundary for card numbers.
// Numbers are stored AES-GCM encrypted alongside a deterministic
// HMAC-SHA256 lookup hash; the hash carries the uniqueness
// constraint because the ciphertext is nonce-randomized. Outside
// this package a number only ever appears masked.
package cardsec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

type Cipher struct {
	key        []byte
	hmacSecret []byte
}

// New derives a 32-byte AES key from the configured secret.
func New(secret, hmacSecret string) *Cipher {
	key := sha256.Sum256([]byte(secret))
	return &Cipher{key: key[:], hmacSecret: []byte(hmacSecret)}
}

// Encrypt returns the base64 AES-GCM ciphertext of a card number.
func (c *Cipher) Encrypt(plain string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(enc string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}
	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}

// LookupHash returns the deterministic hash used for the unique index
// and duplicate checks.
func (c *Cipher) LookupHash(number string) string {
	mac := hmac.New(sha256.New, c.hmacSecret)
	mac.Write([]byte(Normalize(number)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Normalize strips spaces and dashes from a card number.
func Normalize(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	return strings.ReplaceAll(number, "-", "")
}

// Mask hides all but the last four digits.
func Mask(number string) string {
	clean := Normalize(number)
	if len(clean) < 4 {
		return number
	}
	if len(clean) == 16 {
		return "**** **** **** " + clean[12:]
	}
	return "****" + clean[len(clean)-4:]
}

// ValidNumber reports whether the number is 13-19 digits and passes
// the Luhn mod-10 check.
func ValidNumber(number string) bool {
	clean := Normalize(number)
	if len(clean) < 13 || len(clean) > 19 {
		return false
	}
	sum := 0
	alternate := false
	for i := len(clean) - 1; i >= 0; i-- {
		d := clean[i]
		if d < '0' || d > '9' {
			return false
		}
		n := int(d - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
