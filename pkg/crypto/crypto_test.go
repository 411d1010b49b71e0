package crypto

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := "imap-app-password-123"
	passphrase := "correct horse battery staple"

	sealed, err := Encrypt(plaintext, passphrase)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if sealed == plaintext {
		t.Error("ciphertext equals plaintext")
	}

	opened, err := Decrypt(sealed, passphrase)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if opened != plaintext {
		t.Errorf("round trip = %q, want %q", opened, plaintext)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := Encrypt("secret value", "right key")
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if _, err := Decrypt(sealed, "wrong key"); err == nil {
		t.Error("expected authentication failure with wrong passphrase")
	}
}

func TestEmptyPassphraseRejected(t *testing.T) {
	if _, err := Encrypt("x", ""); err == nil {
		t.Error("Encrypt must reject empty passphrase")
	}
	if _, err := Decrypt("x", ""); err == nil {
		t.Error("Decrypt must reject empty passphrase")
	}
}

func TestDecryptGarbage(t *testing.T) {
	if _, err := Decrypt("not base64!!!", "key"); err == nil {
		t.Error("expected error for invalid encoding")
	}
	if _, err := Decrypt("c2hvcnQ=", "key"); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}
