package encoder

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Digits first, then upper case, then lower case.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
const base = uint64(len(alphabet))

var (
	ErrEmptyCode    = errors.New("empty code")
	ErrInvalidChar  = errors.New("invalid base62 character")
	ErrCodeOverflow = errors.New("code overflows uint64")
)

// Encode converts a number to a base62 string
func Encode(num uint64) string {
	if num == 0 {
		return string(alphabet[0])
	}

	// 11 symbols cover math.MaxUint64
	buf := make([]byte, 11)
	i := len(buf)
	for num > 0 {
		i--
		buf[i] = alphabet[num%base]
		num /= base
	}

	return string(buf[i:])
}

// Decode converts a base62 string back to a number
func Decode(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, ErrEmptyCode
	}

	var num uint64
	for i := 0; i < len(encoded); i++ {
		idx := strings.IndexByte(alphabet, encoded[i])
		if idx < 0 {
			return 0, fmt.Errorf("%w %q at position %d", ErrInvalidChar, encoded[i], i)
		}
		if num > (math.MaxUint64-uint64(idx))/base {
			return 0, ErrCodeOverflow
		}
		num = num*base + uint64(idx)
	}

	return num, nil
}

// IsValid reports whether code is non-empty and made only of alphabet symbols.
func IsValid(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
