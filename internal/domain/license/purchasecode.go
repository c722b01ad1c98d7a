package license

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	// purchaseCodeAlphabet is the character set for generated purchase codes.
	// Uppercase alphanumerics give 36^16 possible codes, which makes
	// collisions negligible; generation still retries on conflict.
	purchaseCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	purchaseCodeGroups    = 4
	purchaseCodeGroupSize = 4
)

var purchaseCodeRe = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// GeneratePurchaseCode creates a random purchase code in the canonical
// XXXX-XXXX-XXXX-XXXX format.
func GeneratePurchaseCode() (string, error) {
	raw := make([]byte, purchaseCodeGroups*purchaseCodeGroupSize)
	alphabetLen := big.NewInt(int64(len(purchaseCodeAlphabet)))

	for i := range raw {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		raw[i] = purchaseCodeAlphabet[num.Int64()]
	}

	groups := make([]string, purchaseCodeGroups)
	for i := 0; i < purchaseCodeGroups; i++ {
		groups[i] = string(raw[i*purchaseCodeGroupSize : (i+1)*purchaseCodeGroupSize])
	}
	return strings.Join(groups, "-"), nil
}

// NormalizePurchaseCode uppercases and trims a purchase code for lookup.
func NormalizePurchaseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsWellFormedPurchaseCode reports whether code matches the canonical
// XXXX-XXXX-XXXX-XXXX shape. Lookup by arbitrary license keys remains
// permitted at the boundary; this check only gates code generation and
// create-time validation.
func IsWellFormedPurchaseCode(code string) bool {
	return purchaseCodeRe.MatchString(NormalizePurchaseCode(code))
}

// HashPurchaseCode returns the hex sha256 of a purchase code. Verification
// logs store the hash, never the raw code.
func HashPurchaseCode(code string) string {
	sum := sha256.Sum256([]byte(NormalizePurchaseCode(code)))
	return hex.EncodeToString(sum[:])
}
