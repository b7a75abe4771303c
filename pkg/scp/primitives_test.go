package scp

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex literal %q: %v", s, err)
	}

	return b
}

func TestPadIfNeeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msgLen  int
		wantLen int
	}{
		{"aligned", 16, 16},
		{"one short", 15, 16},
		{"two blocks plus one", 17, 24},
		{"empty", 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := padIfNeeded(make([]byte, tt.msgLen), 8)
			if len(got) != tt.wantLen {
				t.Errorf("padIfNeeded len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestPadAlwaysAppendsFullBlockWhenAligned(t *testing.T) {
	t.Parallel()

	msg := make([]byte, 16)
	got := padAlways(msg, 8)
	if len(got) != 24 {
		t.Fatalf("padAlways on aligned input len = %d, want 24", len(got))
	}
	if got[16] != 0x80 {
		t.Errorf("padAlways first pad byte = %#x, want 0x80", got[16])
	}
}

func TestDESECBEncryptPadLengthLaw(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEF")
	for _, n := range []int{0, 1, 7, 8, 9, 15, 16, 17} {
		ct, err := DESECBEncrypt(key, make([]byte, n))
		if err != nil {
			t.Fatalf("DESECBEncrypt(n=%d): %v", n, err)
		}
		want := n
		if n%8 != 0 {
			want = 8 * ((n + 1 + 7) / 8)
		}
		if len(ct) != want {
			t.Errorf("n=%d: ct len = %d, want %d", n, len(ct), want)
		}
	}
}

func TestSCP02CBCEncryptAlwaysPads(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEF0123456789ABCDEF")
	for _, n := range []int{0, 8, 16, 17} {
		ct, err := SCP02CBCEncrypt(key, nil, make([]byte, n))
		if err != nil {
			t.Fatalf("SCP02CBCEncrypt(n=%d): %v", n, err)
		}
		want := 8 * (n/8 + 1)
		if len(ct) != want {
			t.Errorf("n=%d: ct len = %d, want %d (always-pad law)", n, len(ct), want)
		}
	}
}

func TestTwoKey3DESCBCRoundTrip(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "0123456789ABCDEF0123456789ABCDEF")
	plain := mustHex(t, "00112233445566778899AABBCCDDEEFF")[:16]

	ct, err := TwoKey3DESCBCEncrypt(key, nil, plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	pt, err := TwoKey3DESCBCDecrypt(key, nil, ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(pt, plain) {
		t.Errorf("round trip mismatch: got %x, want %x", pt, plain)
	}
}

func TestRetailMACDeterministicAndEightBytes(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "404142434445464748494A4B4C4D4E4F")
	msg := []byte("test message for retail mac")

	mac1, err := RetailMAC(key, nil, msg)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	mac2, err := RetailMAC(key, nil, msg)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	if len(mac1) != 8 {
		t.Fatalf("RetailMAC output length = %d, want 8", len(mac1))
	}
	if !bytes.Equal(mac1, mac2) {
		t.Errorf("RetailMAC is not deterministic: %x != %x", mac1, mac2)
	}
}

func TestRetailMACChangesWithICV(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "404142434445464748494A4B4C4D4E4F")
	msg := []byte("chained apdu payload")

	zeroICV := make([]byte, 8)
	nonZeroICV := mustHex(t, "0102030405060708")

	mac1, err := RetailMAC(key, zeroICV, msg)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	mac2, err := RetailMAC(key, nonZeroICV, msg)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	if bytes.Equal(mac1, mac2) {
		t.Errorf("RetailMAC did not change with a different ICV")
	}
}

// AES-CMAC vectors below are the NIST SP 800-38B example vectors for
// AES-128 under K = 2b7e151628aed2a6abf7158809cf4f3c.
func TestAESCMACNISTVectors(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")

	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"empty", "", "bb1d6929e95937287fa37d129b756746"},
		{
			"16 bytes",
			"6bc1bee22e409f96e93d7e117393172a",
			"070a16b46b4d4144f79bdd9dd04a287c",
		},
		{
			"40 bytes",
			"6bc1bee22e409f96e93d7e117393172a" +
				"ae2d8a571e03ac9c9eb76fac45af8e51" +
				"30c81c46a35ce411",
			"dfa66747de9ae63030ca32611497c827",
		},
		{
			"64 bytes",
			"6bc1bee22e409f96e93d7e117393172a" +
				"ae2d8a571e03ac9c9eb76fac45af8e51" +
				"30c81c46a35ce411e5fbc1191a0a52ef" +
				"f69f2445df4f9b17ad2b417be66c3710",
			"51f0bebf7e3b9d92fc49741779363cfe",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := mustHex(t, tt.msg)
			want := mustHex(t, tt.want)
			got, err := AESCMAC(key, msg)
			if err != nil {
				t.Fatalf("AESCMAC: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("AESCMAC(%s) = %x, want %x", tt.name, got, want)
			}
		})
	}
}

func TestAESCMACChainedUsesFullPreviousTag(t *testing.T) {
	t.Parallel()

	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	chain := make([]byte, 16)
	msg := []byte("wrapped apdu bytes")

	tag1, err := AESCMACChained(key, chain, msg)
	if err != nil {
		t.Fatalf("AESCMACChained: %v", err)
	}
	if len(tag1) != 16 {
		t.Fatalf("tag length = %d, want 16", len(tag1))
	}

	tag2, err := AESCMACChained(key, tag1, msg)
	if err != nil {
		t.Fatalf("AESCMACChained: %v", err)
	}
	if bytes.Equal(tag1, tag2) {
		t.Errorf("chained tag did not change when the chain value advanced")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	t.Parallel()

	a := mustHex(t, "0102030405060708")
	b := mustHex(t, "0102030405060708")
	c := mustHex(t, "0102030405060709")

	if !ConstantTimeEqual(a, b) {
		t.Error("expected equal slices to compare equal")
	}
	if ConstantTimeEqual(a, c) {
		t.Error("expected differing slices to compare unequal")
	}
	if ConstantTimeEqual(a, c[:7]) {
		t.Error("expected differing-length slices to compare unequal")
	}
}

func TestRandomBytesLength(t *testing.T) {
	t.Parallel()

	b, err := RandomBytes(32)
	if err != nil {
		t.Fatalf("RandomBytes: %v", err)
	}
	if len(b) != 32 {
		t.Errorf("len = %d, want 32", len(b))
	}
}

func TestSHA1KnownVector(t *testing.T) {
	t.Parallel()

	got := SHA1([]byte("abc"))
	want := mustHex(t, "a9993e364706816aba3e25717850c26c9cd0d89")
	if !bytes.Equal(got, want) {
		t.Errorf("SHA1(\"abc\") = %x, want %x", got, want)
	}
}
