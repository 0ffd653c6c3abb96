package passcode

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestVerifyBcryptHash(t *testing.T) {
	// MinCost keeps the test fast
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}

	v := NewVerifier()
	if !v.Verify("1234", string(hash)) {
		t.Fatal("correct passcode rejected")
	}
	if v.Verify("4321", string(hash)) {
		t.Fatal("wrong passcode accepted")
	}
}

func TestVerifyLegacyPlaintext(t *testing.T) {
	v := NewVerifier()

	if !v.Verify("1234", "1234") {
		t.Fatal("legacy plaintext passcode rejected")
	}
	if v.Verify("4321", "1234") {
		t.Fatal("wrong legacy passcode accepted")
	}
}

func TestVerifyEmptyStoredAlwaysFails(t *testing.T) {
	v := NewVerifier()
	if v.Verify("", "") {
		t.Fatal("empty stored secret must never verify")
	}
}

func TestHashRoundTrip(t *testing.T) {
	hash, err := Hash("9999")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !isBcryptHash(hash) {
		t.Fatalf("Hash did not produce a bcrypt hash: %s", hash)
	}
	if !NewVerifier().Verify("9999", hash) {
		t.Fatal("hashed passcode failed to verify")
	}
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("refresh-token")
	b := HashToken("refresh-token")
	if a != b {
		t.Fatal("HashToken must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashToken("other-token") {
		t.Fatal("different tokens must hash differently")
	}
}
