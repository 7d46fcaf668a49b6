package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/agencydesk/agency-api/internal/constants"
	"github.com/google/uuid"
)

// GenerateOTP returns a numeric one-time code.
func GenerateOTP() (string, error) {
	var sb strings.Builder
	for i := 0; i < constants.OTPLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		sb.WriteString(n.String())
	}
	return sb.String(), nil
}

// DeletedSuffix returns a short unique suffix appended to email/username on
// soft delete so the identifiers become reusable.
func DeletedSuffix() string {
	return uuid.NewString()[:8]
}
