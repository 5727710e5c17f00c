package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// IDLength is the length of a record ID.
const IDLength = 16

const (
	idAlphabet     = "abcdefghijklmnopqrstuvwxyz0123456789"
	alnumAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	symbolAlphabet = alnumAlphabet + "!#$%&()*+,-./:;<=>?@[]^_{|}~"
)

// Charset names accepted by GeneratePassword.
const (
	CharsetAlnum   = "alnum"
	CharsetSymbols = "symbols"
)

// GenerateID returns a random record ID of IDLength characters from [a-z0-9].
func GenerateID() (string, error) {
	return randomString(idAlphabet, IDLength)
}

// IsID reports whether s has the shape of a record ID.
func IsID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// GeneratePassword returns a random password of length characters drawn from
// the named charset.
func GeneratePassword(length int, charset string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}
	switch charset {
	case CharsetAlnum:
		return randomString(alnumAlphabet, length)
	case CharsetSymbols, "":
		return randomString(symbolAlphabet, length)
	default:
		return "", fmt.Errorf("unknown charset %q (expected %s or %s)", charset, CharsetAlnum, CharsetSymbols)
	}
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
