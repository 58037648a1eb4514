// internal/domain/order/otp.go
package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// OTPLength is the length of the pickup code printed on every order
const OTPLength = 6

// generateOTP produces the pickup code the customer reads out to the seller.
// Codes are not unique across orders; the seller verifies them against one
// specific order, so collisions between orders are harmless.
func generateOTP() (string, error) {
	code := make([]byte, OTPLength)
	max := big.NewInt(int64(len(otpAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate pickup code: %w", err)
		}
		code[i] = otpAlphabet[n.Int64()]
	}
	return string(code), nil
}
