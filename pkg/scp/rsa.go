package scp

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// maxRSAModulusBytes is the 1024-bit (128-byte) modulus ceiling carried over
// from the original OP_ready implementation, which rejects any key whose
// EVP_PKEY_size exceeds 128 bytes before signing.
const maxRSAModulusBytes = 128

// ReadRSAPrivateKey loads a PEM-encoded RSA private key from path. If the
// PEM block is encrypted, passphrase decrypts it. It accepts PKCS#1
// ("RSA PRIVATE KEY") and PKCS#8 ("PRIVATE KEY") blocks.
func ReadRSAPrivateKey(path string, passphrase []byte) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errInvalidFilename("read rsa private key file", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errInvalidFilename("no PEM block found in "+path, nil)
	}

	der := block.Bytes
	//nolint:staticcheck // x509.IsEncryptedPEMBlock/DecryptPEMBlock are deprecated but this
	// is the only stdlib path for the legacy encrypted-PEM format GlobalPlatform tooling ships.
	if x509.IsEncryptedPEMBlock(block) {
		if len(passphrase) == 0 {
			return nil, errInvalidPassword("pem block is encrypted but no passphrase was supplied")
		}
		decrypted, err := x509.DecryptPEMBlock(block, passphrase)
		if err != nil {
			return nil, errInvalidPassword("incorrect passphrase for rsa private key")
		}
		der = decrypted
	}

	key, err := parseRSAPrivateKeyDER(der)
	if err != nil {
		return nil, errInvalidFilename("parse rsa private key", err)
	}

	if key.Size() > maxRSAModulusBytes {
		return nil, errInsufficientBuffer(
			fmt.Sprintf("rsa modulus %d bytes exceeds the 1024-bit ceiling", key.Size()),
		)
	}

	log.Debug().Str("event", "rsa_key_loaded").Str("path", path).Int("modulus_bytes", key.Size()).
		Msg("loaded rsa private key")

	return key, nil
}

func parseRSAPrivateKeyDER(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("pkcs8 key is not an RSA key")
	}

	return key, nil
}

// ReadRSAPublicKey loads a PEM-encoded RSA public key ("PUBLIC KEY" or
// "RSA PUBLIC KEY" block) from path.
func ReadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errInvalidFilename("read rsa public key file", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errInvalidFilename("no PEM block found in "+path, nil)
	}

	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errInvalidFilename("parse rsa public key", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errInvalidFilename("pem block does not hold an RSA public key", nil)
	}

	return pub, nil
}

// SignWithRSA SHA-1-digests msg and signs it with key using PKCS#1 v1.5
// padding, matching the original's calculate_rsa_signature.
func SignWithRSA(key *rsa.PrivateKey, msg []byte) ([]byte, error) {
	if key.Size() > maxRSAModulusBytes {
		return nil, errInsufficientBuffer(
			fmt.Sprintf("rsa modulus %d bytes exceeds the 1024-bit ceiling", key.Size()),
		)
	}

	digest := SHA1(msg)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, digest)
	if err != nil {
		return nil, errCrypt("rsa sign", err)
	}

	return sig, nil
}

// VerifyRSA verifies a PKCS#1 v1.5 RSA-SHA1 signature produced by SignWithRSA.
func VerifyRSA(pub *rsa.PublicKey, msg, sig []byte) error {
	digest := SHA1(msg)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest, sig); err != nil {
		return errCrypt("rsa verify", err)
	}

	return nil
}
