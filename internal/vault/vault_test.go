package vault

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipher, err := NewCipher("some-passphrase")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	plaintext := "api-key-123456"
	sealed, err := cipher.EncryptString(plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}

	got, err := cipher.DecryptString(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != plaintext {
		t.Errorf("got %q, want %q", got, plaintext)
	}
}

func TestEncryptEmptyPassthrough(t *testing.T) {
	cipher, _ := NewCipher("key")

	sealed, err := cipher.EncryptString("")
	if err != nil || sealed != "" {
		t.Errorf("encrypt empty = %q, %v", sealed, err)
	}
	got, err := cipher.DecryptString("")
	if err != nil || got != "" {
		t.Errorf("decrypt empty = %q, %v", got, err)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	a, _ := NewCipher("key-a")
	b, _ := NewCipher("key-b")

	sealed, err := a.EncryptString("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := b.DecryptString(sealed); err != ErrDecryptionFailed {
		t.Errorf("err = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptGarbageFails(t *testing.T) {
	cipher, _ := NewCipher("key")

	for _, input := range []string{"not-base64!!", "YWJj"} {
		if _, err := cipher.DecryptString(input); err != ErrDecryptionFailed {
			t.Errorf("input %q: err = %v, want ErrDecryptionFailed", input, err)
		}
	}
}

func TestNewCipherHexKey(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	cipher, err := NewCipher(hexKey)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	sealed, err := cipher.EncryptString("x")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if got, err := cipher.DecryptString(sealed); err != nil || got != "x" {
		t.Errorf("round trip = %q, %v", got, err)
	}
}

func TestNewCipherEmptyKey(t *testing.T) {
	if _, err := NewCipher(""); err != ErrInvalidKey {
		t.Errorf("err = %v, want ErrInvalidKey", err)
	}
}
