// Package cardgen generates and validates 16-digit card numbers.
package cardgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const panLen = 16

// GeneratePAN returns a 16-digit card number starting with bin; the last
// digit is the Luhn check digit.
func GeneratePAN(bin string) (string, error) {
	if err := ValidateBIN(bin); err != nil {
		return "", err
	}

	fill := panLen - 1 - len(bin)
	if fill <= 0 {
		return "", fmt.Errorf("bin too long: %s", bin)
	}

	digits, err := RandomDigits(fill)
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}

	body := bin + digits
	return body + luhnCheckDigit(body), nil
}

// RandomDigits returns count uniformly distributed decimal digits. Rejection
// sampling over crypto/rand bytes avoids modulo bias.
func RandomDigits(count int) (string, error) {
	if count <= 0 {
		return "", nil
	}
	const threshold = 250 // 256 - (256 % 10)
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 64)
	for sb.Len() < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			if buf[i] < threshold {
				sb.WriteByte('0' + (buf[i] % 10))
			}
		}
	}
	return sb.String(), nil
}

func luhnCheckDigit(body string) string {
	sum, dbl := 0, true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	cd := (10 - (sum % 10)) % 10
	return string('0' + byte(cd))
}

// ValidatePAN checks length, digits, and the Luhn check digit.
func ValidatePAN(pan string) error {
	if pan == "" {
		return fmt.Errorf("pan is required")
	}
	if !IsDigits(pan) {
		return fmt.Errorf("pan must contain digits only")
	}
	if len(pan) != panLen {
		return fmt.Errorf("pan must be %d digits (got %d)", panLen, len(pan))
	}
	body := pan[:len(pan)-1]
	if cd := luhnCheckDigit(body); pan[len(pan)-1] != cd[0] {
		return fmt.Errorf("invalid luhn check digit")
	}
	return nil
}

// ValidateBIN accepts numeric prefixes of 4 to 9 digits.
func ValidateBIN(bin string) error {
	if bin == "" {
		return fmt.Errorf("bin is required")
	}
	if !IsDigits(bin) {
		return fmt.Errorf("bin must contain digits only")
	}
	if len(bin) < 4 || len(bin) > 9 {
		return fmt.Errorf("bin must be 4..9 digits")
	}
	return nil
}

func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MaskPAN keeps the BIN and last four digits for logging.
func MaskPAN(pan string) string {
	if len(pan) < 10 {
		return strings.Repeat("*", len(pan))
	}
	return pan[:6] + strings.Repeat("*", len(pan)-10) + pan[len(pan)-4:]
}
