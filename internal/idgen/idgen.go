// Package idgen generates short hash-based task identifiers.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// DefaultLength is the hash suffix width for generated ids.
const DefaultLength = 4

// EncodeBase36 converts a byte slice to a base36 string of the given
// length, zero-padded, keeping the least significant digits on overflow.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	var result strings.Builder
	for i := len(chars) - 1; i >= 0; i-- {
		result.WriteByte(chars[i])
	}

	str := result.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}
	return str
}

// GenerateID derives a task id from its title and creation instant:
// prefix, dash, base36 hash suffix. The nonce disambiguates collisions;
// bump it and retry when the id is already taken. Output is already in
// canonical lowercase form.
func GenerateID(prefix, title string, timestamp time.Time, nonce int) string {
	content := fmt.Sprintf("%s|%d|%d", title, timestamp.UnixNano(), nonce)
	hash := sha256.Sum256([]byte(content))

	// 3 bytes = 24 bits, comfortably covering the 4-char base36 space.
	suffix := EncodeBase36(hash[:3], DefaultLength)
	return fmt.Sprintf("%s-%s", strings.ToLower(prefix), suffix)
}
