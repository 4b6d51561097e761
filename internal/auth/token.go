package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// newToken creates a new opaque session token.
func newToken() string {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		// Fallback to timestamp only if crypto/rand fails
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(random)
}
