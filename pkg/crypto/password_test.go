package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !ComparePassword(hash, "correct horse") {
		t.Fatalf("expected password to verify against its own hash")
	}
	if ComparePassword(hash, "battery staple") {
		t.Fatalf("expected mismatch for a different password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("expected distinct digests for identical input")
	}
	if !ComparePassword(first, "same-input") || !ComparePassword(second, "same-input") {
		t.Fatalf("expected both digests to verify")
	}
}

func TestComparePasswordMalformedHash(t *testing.T) {
	if ComparePassword([]byte("not-a-bcrypt-hash"), "anything") {
		t.Fatalf("expected malformed hash to report mismatch")
	}
	if ComparePassword(nil, "") {
		t.Fatalf("expected empty hash to report mismatch")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
