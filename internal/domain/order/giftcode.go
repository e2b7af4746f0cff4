// internal/domain/order/giftcode.go
package order

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Gift-card codes are GIFT-XXXX-XXXX-XXXX. The fixed prefix and segment
// shape keep them unmistakable next to provider session ids used as order
// numbers. The alphabet drops easily confused characters.
const giftCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	giftCodePrefix   = "GIFT"
	giftCodeSegments = 3
	giftCodeSegLen   = 4
)

// GenerateGiftCardCode produces a random redemption code
func GenerateGiftCardCode() (string, error) {
	raw := make([]byte, giftCodeSegments*giftCodeSegLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate gift card code: %w", err)
	}

	parts := make([]string, 0, giftCodeSegments+1)
	parts = append(parts, giftCodePrefix)
	for i := 0; i < giftCodeSegments; i++ {
		var segment strings.Builder
		for j := 0; j < giftCodeSegLen; j++ {
			b := raw[i*giftCodeSegLen+j]
			segment.WriteByte(giftCodeAlphabet[int(b)%len(giftCodeAlphabet)])
		}
		parts = append(parts, segment.String())
	}
	return strings.Join(parts, "-"), nil
}
