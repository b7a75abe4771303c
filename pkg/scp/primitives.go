package scp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	crand "crypto/rand"
	"crypto/sha1" //nolint:gosec // required by the GlobalPlatform RSA signature scheme
	"crypto/subtle"
)

// padIfNeeded appends the ISO/IEC 9797-1 method 2 padding (0x80 then 0x00...)
// only when msg is not already a multiple of bs. Used by the ECB/CBC
// encryption primitives; the MAC primitives and SCP02-CBC use padAlways.
func padIfNeeded(msg []byte, bs int) []byte {
	if len(msg)%bs == 0 {
		return msg
	}

	return padAlways(msg, bs)
}

// padAlways unconditionally appends 0x80 followed by zero bytes until the
// result is a multiple of bs, even when msg is already aligned.
func padAlways(msg []byte, bs int) []byte {
	out := make([]byte, len(msg), len(msg)+bs)
	copy(out, msg)
	out = append(out, padMethod2Prefix)
	for len(out)%bs != 0 {
		out = append(out, 0x00)
	}

	return out
}

// prepareTripleDESKey extends an 8-byte (single) or 16-byte (double) DES key
// to a 24-byte triple-length key (K1K1K1 or K1K2K1 respectively), the form
// crypto/des.NewTripleDESCipher expects. A 24-byte key passes through.
func prepareTripleDESKey(key []byte) []byte {
	switch len(key) {
	case 8:
		key24 := make([]byte, 24)
		copy(key24, key)
		copy(key24[8:], key)
		copy(key24[16:], key)

		return key24
	case 16:
		key24 := make([]byte, 24)
		copy(key24, key)
		copy(key24[16:], key[:8])

		return key24
	default:
		return key
	}
}

func ecbEncrypt(block cipher.Block, src []byte) []byte {
	bs := block.BlockSize()
	dst := make([]byte, len(src))
	for i := 0; i < len(src); i += bs {
		block.Encrypt(dst[i:i+bs], src[i:i+bs])
	}

	return dst
}

func ecbDecrypt(block cipher.Block, src []byte) []byte {
	bs := block.BlockSize()
	dst := make([]byte, len(src))
	for i := 0; i < len(src); i += bs {
		block.Decrypt(dst[i:i+bs], src[i:i+bs])
	}

	return dst
}

func cbcEncrypt(block cipher.Block, iv, src []byte) []byte {
	dst := make([]byte, len(src))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(dst, src)

	return dst
}

func cbcDecrypt(block cipher.Block, iv, src []byte) []byte {
	dst := make([]byte, len(src))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(dst, src)

	return dst
}

// DESECBEncrypt is the single-key DES-ECB primitive: pads only if msg is not
// block-aligned, then encrypts block by block.
func DESECBEncrypt(key, msg []byte) ([]byte, error) {
	if len(key) != 8 {
		return nil, errCrypt("des-ecb: key must be 8 bytes", nil)
	}
	block, err := des.NewCipher(key)
	if err != nil {
		return nil, errCrypt("des-ecb: new cipher", err)
	}

	return ecbEncrypt(block, padIfNeeded(msg, des.BlockSize)), nil
}

// TwoKey3DESECBEncrypt is the 2-key-3DES-ECB primitive: key is 16 bytes
// (K1||K2), extended to K1K2K1 internally.
func TwoKey3DESECBEncrypt(key, msg []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("2key-3des-ecb: key must be 16 bytes", nil)
	}
	block, err := des.NewTripleDESCipher(prepareTripleDESKey(key))
	if err != nil {
		return nil, errCrypt("2key-3des-ecb: new cipher", err)
	}

	return ecbEncrypt(block, padIfNeeded(msg, des.BlockSize)), nil
}

// TwoKey3DESECBDecrypt is the inverse of TwoKey3DESECBEncrypt: each block is
// decrypted independently, with no chaining between blocks. It does not
// strip padding; callers that need the plaintext length must do so.
func TwoKey3DESECBDecrypt(key, ct []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("2key-3des-ecb: key must be 16 bytes", nil)
	}
	if len(ct)%des.BlockSize != 0 {
		return nil, errCrypt("2key-3des-ecb: ciphertext not block aligned", nil)
	}
	block, err := des.NewTripleDESCipher(prepareTripleDESKey(key))
	if err != nil {
		return nil, errCrypt("2key-3des-ecb: new cipher", err)
	}

	return ecbDecrypt(block, ct), nil
}

// TwoKey3DESCBCEncrypt is the 2-key-3DES-CBC primitive. iv defaults to the
// zero ICV when nil.
func TwoKey3DESCBCEncrypt(key, iv, msg []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("2key-3des-cbc: key must be 16 bytes", nil)
	}
	if iv == nil {
		iv = ZeroICV[:]
	}
	block, err := des.NewTripleDESCipher(prepareTripleDESKey(key))
	if err != nil {
		return nil, errCrypt("2key-3des-cbc: new cipher", err)
	}

	return cbcEncrypt(block, iv, padIfNeeded(msg, des.BlockSize)), nil
}

// TwoKey3DESCBCDecrypt is the inverse of TwoKey3DESCBCEncrypt. It does not
// strip padding; callers that need the plaintext length must do so.
func TwoKey3DESCBCDecrypt(key, iv, ct []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("2key-3des-cbc: key must be 16 bytes", nil)
	}
	if iv == nil {
		iv = ZeroICV[:]
	}
	if len(ct)%des.BlockSize != 0 {
		return nil, errCrypt("2key-3des-cbc: ciphertext not block aligned", nil)
	}
	block, err := des.NewTripleDESCipher(prepareTripleDESKey(key))
	if err != nil {
		return nil, errCrypt("2key-3des-cbc: new cipher", err)
	}

	return cbcDecrypt(block, iv, ct), nil
}

// SCP02CBCEncrypt is the SCP02 variant of CBC encryption: padding (0x80 then
// zeros) is always appended, even when msg is already block-aligned.
func SCP02CBCEncrypt(key, iv, msg []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("scp02-cbc: key must be 16 bytes", nil)
	}
	if iv == nil {
		iv = ZeroICV[:]
	}
	block, err := des.NewTripleDESCipher(prepareTripleDESKey(key))
	if err != nil {
		return nil, errCrypt("scp02-cbc: new cipher", err)
	}

	return cbcEncrypt(block, iv, padAlways(msg, des.BlockSize)), nil
}

// RetailMAC computes ISO/IEC 9797-1 algorithm 3 over msg: padding (0x80 then
// zeros) is always appended, every block but the last runs through
// single-DES-CBC under the left half of key, and the last block runs
// through a full 2-key-3DES encrypt. key is 16 bytes (K1||K2); iv defaults
// to the zero ICV.
func RetailMAC(key, iv, msg []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("retail-mac: key must be 16 bytes", nil)
	}
	if iv == nil {
		iv = ZeroICV[:]
	}

	k1, k2 := key[:8], key[8:16]
	chainCipher, err := des.NewTripleDESCipher(prepareTripleDESKey(k1))
	if err != nil {
		return nil, errCrypt("retail-mac: chain cipher", err)
	}

	padded := padAlways(msg, des.BlockSize)
	h := make([]byte, 8)
	copy(h, iv)
	for i := 0; i < len(padded); i += 8 {
		block := padded[i : i+8]
		xored := xor8(h, block)
		chainCipher.Encrypt(h, xored)
	}

	lastCipher, err := des.NewTripleDESCipher(prepareTripleDESKey(k2))
	if err != nil {
		return nil, errCrypt("retail-mac: last-block cipher", err)
	}
	tmp := make([]byte, 8)
	lastCipher.Decrypt(tmp, h)
	out := make([]byte, 8)
	chainCipher.Encrypt(out, tmp)

	return out, nil
}

// RightHalfRetailMAC is the pseudo-APDU-authenticator variant of Retail-MAC:
// the chaining step uses the right half of key instead of the left, and the
// last-block step runs the full two-key 3DES encrypt (not a further split).
// The ICV is always the zero ICV.
func RightHalfRetailMAC(key, msg []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("right-half-retail-mac: key must be 16 bytes", nil)
	}

	k2 := key[8:16]
	chainCipher, err := des.NewTripleDESCipher(prepareTripleDESKey(k2))
	if err != nil {
		return nil, errCrypt("right-half-retail-mac: chain cipher", err)
	}

	padded := padAlways(msg, des.BlockSize)
	last := len(padded) - 8
	h := make([]byte, 8)
	for i := 0; i < last; i += 8 {
		block := padded[i : i+8]
		xored := xor8(h, block)
		chainCipher.Encrypt(h, xored)
	}

	fullCipher, err := des.NewTripleDESCipher(prepareTripleDESKey(key))
	if err != nil {
		return nil, errCrypt("right-half-retail-mac: full cipher", err)
	}
	out := make([]byte, 8)
	fullCipher.Encrypt(out, xor8(h, padded[last:]))

	return out, nil
}

// Single3DESCBCMAC is a plain 2-key-3DES-CBC MAC: pad always, CBC-encrypt
// the whole message, return the last ciphertext block.
func Single3DESCBCMAC(key, iv, msg []byte) ([]byte, error) {
	ct, err := func() ([]byte, error) {
		if len(key) != 16 {
			return nil, errCrypt("3des-cbc-mac: key must be 16 bytes", nil)
		}
		if iv == nil {
			iv = ZeroICV[:]
		}
		block, err := des.NewTripleDESCipher(prepareTripleDESKey(key))
		if err != nil {
			return nil, errCrypt("3des-cbc-mac: new cipher", err)
		}

		return cbcEncrypt(block, iv, padAlways(msg, des.BlockSize)), nil
	}()
	if err != nil {
		return nil, err
	}

	return ct[len(ct)-8:], nil
}

// AESCMAC computes the full 16-byte NIST SP 800-38B AES-CMAC tag over msg
// under a 128-bit key.
func AESCMAC(key, msg []byte) ([]byte, error) {
	if len(key) != 16 {
		return nil, errCrypt("aes-cmac: key must be 16 bytes", nil)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errCrypt("aes-cmac: new cipher", err)
	}

	k1, k2, err := deriveCMACSubkeys(block)
	if err != nil {
		return nil, err
	}

	var last []byte
	var blocks [][]byte
	if len(msg) != 0 && len(msg)%aes.BlockSize == 0 {
		blocks = chunk(msg, aes.BlockSize)
		last = xorN(blocks[len(blocks)-1], k1)
	} else {
		padded := padAlways(msg, aes.BlockSize)
		blocks = chunk(padded, aes.BlockSize)
		last = xorN(blocks[len(blocks)-1], k2)
	}

	h := make([]byte, aes.BlockSize)
	for i, b := range blocks {
		in := b
		if i == len(blocks)-1 {
			in = last
		}
		xored := xorN(in, h)
		block.Encrypt(h, xored)
	}

	return h, nil
}

// AESCMACChained computes an AES-CMAC tag over chain||msg: the MAC input is
// the previous 16-byte chain value concatenated with msg. The caller takes
// the first 8 bytes of the result as the transmitted MAC and keeps the full
// 16 bytes as the next chain value.
func AESCMACChained(key, chain, msg []byte) ([]byte, error) {
	if len(chain) != 16 {
		return nil, errCrypt("aes-cmac-chained: chain must be 16 bytes", nil)
	}
	buf := make([]byte, 0, len(chain)+len(msg))
	buf = append(buf, chain...)
	buf = append(buf, msg...)

	return AESCMAC(key, buf)
}

func deriveCMACSubkeys(block cipher.Block) ([]byte, []byte, error) {
	const rb = 0x87
	bs := block.BlockSize()
	zero := make([]byte, bs)
	l := make([]byte, bs)
	block.Encrypt(l, zero)

	k1 := shiftLeftOne(l)
	if l[0]&0x80 != 0 {
		k1[bs-1] ^= rb
	}
	k2 := shiftLeftOne(k1)
	if k1[0]&0x80 != 0 {
		k2[bs-1] ^= rb
	}

	return k1, k2, nil
}

func shiftLeftOne(in []byte) []byte {
	out := make([]byte, len(in))
	var carry byte
	for i := len(in) - 1; i >= 0; i-- {
		out[i] = (in[i] << 1) | carry
		carry = (in[i] >> 7) & 1
	}

	return out
}

// SHA1 is the SHA-1 digest primitive used ahead of RSA-SHA1 signing.
func SHA1(msg []byte) []byte {
	sum := sha1.Sum(msg) //nolint:gosec // required by the GlobalPlatform RSA signature scheme
	out := make([]byte, len(sum))
	copy(out, sum[:])

	return out
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := crand.Read(buf); err != nil {
		return nil, errCrypt("random: read failed", err)
	}

	return buf, nil
}

// ConstantTimeEqual reports whether a and b are equal using a fixed-time
// comparison, as required for receipt and R-MAC verification (the source
// used memcmp, which leaks timing information through early exit).
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare(a, b) == 1
}

func xor8(a, b []byte) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = a[i] ^ b[i]
	}

	return out
}

func xorN(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}

	return out
}

func chunk(b []byte, sz int) [][]byte {
	n := len(b) / sz
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = b[i*sz : (i+1)*sz]
	}

	return out
}
