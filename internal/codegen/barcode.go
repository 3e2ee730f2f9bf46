package codegen

import (
	"errors"
	"fmt"
	"time"
)

// ErrGenerationExhausted is returned when the barcode retry budget runs out
// without finding a code absent from the existing set. The whole generation
// failed; no duplicate is ever returned.
var ErrGenerationExhausted = errors.New("barcode generation exhausted retry budget")

const (
	// barcodePrefix is the fixed first 3 digits. The 200 range is reserved
	// by GS1 for in-store use, so generated codes never collide with
	// retail-assigned ones.
	barcodePrefix = "200"

	barcodeLength      = 13
	maxBarcodeAttempts = 10
)

// barcodeEntropy feeds the variable digits. Overridable in tests.
var defaultEntropy = func() int64 { return time.Now().UnixNano() }
var barcodeEntropy = defaultEntropy

// GenerateBarcode produces a 13-digit EAN-13 code: fixed prefix, 9 variable
// digits and a checksum digit. Candidates colliding with existingBarcodes
// are regenerated up to the attempt budget.
func GenerateBarcode(existingBarcodes []string) (string, error) {
	used := make(map[string]struct{}, len(existingBarcodes))
	for _, code := range existingBarcodes {
		used[code] = struct{}{}
	}

	for attempt := 0; attempt < maxBarcodeAttempts; attempt++ {
		body := barcodeEntropy() % 1_000_000_000
		if body < 0 {
			body = -body
		}
		partial := fmt.Sprintf("%s%09d", barcodePrefix, body)
		code := partial + string(rune('0'+checksum(partial)))
		if _, taken := used[code]; !taken {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}

// ValidateBarcode reports whether code is 13 digits with a correct EAN-13
// checksum in the last position.
func ValidateBarcode(code string) bool {
	if len(code) != barcodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return checksum(code[:barcodeLength-1]) == int(code[barcodeLength-1]-'0')
}

// checksum computes the EAN-13 check digit for the first 12 digits: weight 1
// on even positions, 3 on odd (0-indexed).
func checksum(digits string) int {
	sum := 0
	for i, r := range digits {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}
