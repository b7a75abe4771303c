package scp

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func writeTestKeyPEM(t *testing.T, key *rsa.PrivateKey, passphrase []byte) string {
	t.Helper()

	der := x509.MarshalPKCS1PrivateKey(key)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}

	if len(passphrase) > 0 {
		//nolint:staticcheck // exercising the legacy encrypted-PEM load path deliberately.
		encrypted, err := x509.EncryptPEMBlock(rand.Reader, block.Type, der, passphrase, x509.PEMCipherAES256)
		if err != nil {
			t.Fatalf("EncryptPEMBlock: %v", err)
		}
		block = encrypted
	}

	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("write pem: %v", err)
	}

	return path
}

func TestRSASignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}

	path := writeTestKeyPEM(t, key, nil)

	loaded, err := ReadRSAPrivateKey(path, nil)
	if err != nil {
		t.Fatalf("ReadRSAPrivateKey: %v", err)
	}

	msg := []byte("secure channel protocol test message")
	sig, err := SignWithRSA(loaded, msg)
	if err != nil {
		t.Fatalf("SignWithRSA: %v", err)
	}

	if err := VerifyRSA(&loaded.PublicKey, msg, sig); err != nil {
		t.Errorf("VerifyRSA: %v", err)
	}

	if err := VerifyRSA(&loaded.PublicKey, []byte("tampered"), sig); err == nil {
		t.Errorf("expected verification to fail against a tampered message")
	}
}

func TestRSAEncryptedPEMRequiresCorrectPassphrase(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}

	passphrase := []byte("correct horse battery staple")
	path := writeTestKeyPEM(t, key, passphrase)

	if _, err := ReadRSAPrivateKey(path, nil); err == nil {
		t.Fatal("expected an error when no passphrase is supplied for an encrypted key")
	}

	_, err = ReadRSAPrivateKey(path, []byte("wrong passphrase"))
	if err == nil {
		t.Fatal("expected an error for an incorrect passphrase")
	}
	scpErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is not *scp.Error: %T", err)
	}
	if scpErr.Kind != KindInvalidPassword {
		t.Errorf("Kind = %v, want KindInvalidPassword", scpErr.Kind)
	}

	loaded, err := ReadRSAPrivateKey(path, passphrase)
	if err != nil {
		t.Fatalf("ReadRSAPrivateKey with correct passphrase: %v", err)
	}
	if loaded.Size() != key.Size() {
		t.Errorf("loaded key size = %d, want %d", loaded.Size(), key.Size())
	}
}

func TestRSAReadPrivateKeyInvalidFilename(t *testing.T) {
	t.Parallel()

	_, err := ReadRSAPrivateKey(filepath.Join(t.TempDir(), "does-not-exist.pem"), nil)
	if err == nil {
		t.Fatal("expected an error for a nonexistent file")
	}
	scpErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is not *scp.Error: %T", err)
	}
	if scpErr.Kind != KindInvalidFilename {
		t.Errorf("Kind = %v, want KindInvalidFilename", scpErr.Kind)
	}
}

func TestRSAModulusCeilingRejectsLargerKey(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}

	path := writeTestKeyPEM(t, key, nil)

	_, err = ReadRSAPrivateKey(path, nil)
	if err == nil {
		t.Fatal("expected an error for a 2048-bit key exceeding the 1024-bit ceiling")
	}
	scpErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is not *scp.Error: %T", err)
	}
	if scpErr.Kind != KindInsufficientBuffer {
		t.Errorf("Kind = %v, want KindInsufficientBuffer", scpErr.Kind)
	}
}
