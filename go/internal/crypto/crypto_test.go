package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundtrip(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}

	sealed, err := enc.EncryptString("hunter2")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if sealed == "hunter2" {
		t.Fatal("ciphertext equals plaintext")
	}

	plain, err := enc.DecryptString(sealed)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if plain != "hunter2" {
		t.Errorf("plaintext = %q, want hunter2", plain)
	}

	// Fresh nonce per call: sealing twice never repeats ciphertext.
	again, err := enc.EncryptString("hunter2")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if again == sealed {
		t.Error("two encryptions produced identical ciphertext")
	}
}

func TestNewEncryptorRejectsBadKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		if _, err := NewEncryptor(make([]byte, n)); err == nil {
			t.Errorf("NewEncryptor accepted %d-byte key", n)
		}
	}
}

func TestDecryptStringRejectsTampering(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}
	sealed, err := enc.EncryptString("espn api key")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	if _, err := enc.DecryptString(base64.StdEncoding.EncodeToString(raw)); err == nil {
		t.Error("expected error for tampered ciphertext")
	}

	if _, err := enc.DecryptString("not base64!!"); err == nil {
		t.Error("expected error for malformed encoding")
	}
	if _, err := enc.DecryptString(base64.StdEncoding.EncodeToString([]byte("xx"))); err == nil {
		t.Error("expected error for truncated ciphertext")
	}

	other, err := NewEncryptor([]byte(strings.Repeat("k", 32)))
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}
	if _, err := other.DecryptString(sealed); err == nil {
		t.Error("expected error when decrypting with a different key")
	}
}

func TestNewToken(t *testing.T) {
	tok, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if len(tok) != 32 {
		t.Errorf("token length = %d, want 32", len(tok))
	}
	if _, err := hex.DecodeString(tok); err != nil {
		t.Errorf("token %q is not hex: %v", tok, err)
	}

	other, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if other == tok {
		t.Error("two tokens collided")
	}
}
