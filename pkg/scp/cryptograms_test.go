package scp

import (
	"bytes"
	"testing"
)

func TestSCP01CryptogramReversedChallengeOrder(t *testing.T) {
	t.Parallel()

	sEnc := bytes.Repeat([]byte{0x11}, 16)
	hostCh := mustHex(t, "0001020304050607")
	cardCh := mustHex(t, "08090A0B0C0D0E0F")

	card, err := CardCryptogramSCP01(sEnc, hostCh, cardCh)
	if err != nil {
		t.Fatalf("CardCryptogramSCP01: %v", err)
	}
	host, err := HostCryptogramSCP01(sEnc, hostCh, cardCh)
	if err != nil {
		t.Fatalf("HostCryptogramSCP01: %v", err)
	}

	if bytes.Equal(card, host) {
		t.Errorf("card and host cryptograms with reversed challenge order should not collide")
	}

	// Reversing the operand order of one must reproduce the other exactly,
	// per the spec's round-trip property.
	reversed, err := scp01Cryptogram(sEnc, cardCh, hostCh)
	if err != nil {
		t.Fatalf("scp01Cryptogram reversed: %v", err)
	}
	if !bytes.Equal(reversed, host) {
		t.Errorf("reversed card-cryptogram operands did not reproduce the host cryptogram")
	}
}

func TestSCP02CryptogramsDiffer(t *testing.T) {
	t.Parallel()

	sEnc := bytes.Repeat([]byte{0x22}, 16)
	hostCh := mustHex(t, "0001020304050607")
	seqCtr := mustHex(t, "0042")
	cardCh := mustHex(t, "08090A0B0C0D0E0F")

	card, err := CardCryptogramSCP02(sEnc, hostCh, seqCtr, cardCh)
	if err != nil {
		t.Fatalf("CardCryptogramSCP02: %v", err)
	}
	host, err := HostCryptogramSCP02(sEnc, hostCh, seqCtr, cardCh)
	if err != nil {
		t.Fatalf("HostCryptogramSCP02: %v", err)
	}
	if bytes.Equal(card, host) {
		t.Errorf("card and host SCP02 cryptograms should not collide")
	}
	if len(card) != 8 || len(host) != 8 {
		t.Errorf("SCP02 cryptograms must be 8 bytes")
	}
}

func TestSCP03CardHostCryptogramsDiffer(t *testing.T) {
	t.Parallel()

	sMac := bytes.Repeat([]byte{0x33}, 16)
	hostCh := mustHex(t, "0001020304050607")
	cardCh := mustHex(t, "08090A0B0C0D0E0F")

	card, err := CardCryptogramSCP03(sMac, hostCh, cardCh)
	if err != nil {
		t.Fatalf("CardCryptogramSCP03: %v", err)
	}
	host, err := HostCryptogramSCP03(sMac, hostCh, cardCh)
	if err != nil {
		t.Fatalf("HostCryptogramSCP03: %v", err)
	}
	if len(card) != 8 || len(host) != 8 {
		t.Errorf("SCP03 cryptograms must be 8 bytes")
	}
	if bytes.Equal(card, host) {
		t.Errorf("SCP03 card and host cryptograms (different derivation constants) should not collide")
	}
}

func TestPseudoRandomCardChallengeSCP03RejectsLongAID(t *testing.T) {
	t.Parallel()

	sEnc := bytes.Repeat([]byte{0x44}, 16)
	seqCtr := mustHex(t, "000001")
	tooLong := make([]byte, 17)

	if _, err := PseudoRandomCardChallengeSCP03(sEnc, seqCtr, tooLong); err == nil {
		t.Errorf("expected an error for an invoking AID longer than 16 bytes")
	}
}

func TestPseudoRandomCardChallengeSCP03(t *testing.T) {
	t.Parallel()

	sEnc := bytes.Repeat([]byte{0x44}, 16)
	seqCtr := mustHex(t, "000001")
	aid := mustHex(t, "A000000003000000")

	challenge, err := PseudoRandomCardChallengeSCP03(sEnc, seqCtr, aid)
	if err != nil {
		t.Fatalf("PseudoRandomCardChallengeSCP03: %v", err)
	}
	if len(challenge) != 8 {
		t.Errorf("challenge length = %d, want 8", len(challenge))
	}
}
