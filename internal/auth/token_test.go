package auth

import "testing"

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := newToken()
		if token == "" {
			t.Fatal("expected non-empty token")
		}
		if seen[token] {
			t.Fatalf("duplicate token after %d draws: %s", i, token)
		}
		seen[token] = true
	}
}
