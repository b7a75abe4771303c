package scp

import (
	"bytes"
	"testing"
)

func TestValidateDeleteReceiptRoundTrip(t *testing.T) {
	t.Parallel()

	receiptKey := bytes.Repeat([]byte{0x55}, 16)
	uid := mustHex(t, "DEADBEEF")
	aid := mustHex(t, "A000000151000000")

	validationData := buildValidationData(0x0007, uid, aid)
	receipt, err := RetailMAC(receiptKey, ZeroICV[:], validationData)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}

	if err := ValidateDeleteReceipt(receipt, 0x0007, uid, aid, receiptKey); err != nil {
		t.Errorf("ValidateDeleteReceipt: %v", err)
	}
}

func TestValidateInstallReceiptMismatch(t *testing.T) {
	t.Parallel()

	receiptKey := bytes.Repeat([]byte{0x66}, 16)
	uid := mustHex(t, "CAFEBABE")
	loadAID := mustHex(t, "A000000003000000")
	appAID := mustHex(t, "A000000003000001")

	badReceipt := mustHex(t, "0011223344556677")

	err := ValidateInstallReceipt(badReceipt, 0x0001, uid, loadAID, appAID, receiptKey)
	if err == nil {
		t.Fatal("expected a mismatch error")
	}
	scpErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is not *scp.Error: %T", err)
	}
	if scpErr.Kind != KindValidationFailed {
		t.Errorf("Kind = %v, want KindValidationFailed", scpErr.Kind)
	}
}

func TestValidateLoadReceiptFieldLayout(t *testing.T) {
	t.Parallel()

	// Confirms the fields do not all land at offset 0 (the bug the source
	// has and this rewrite must not reproduce): after all three fields are
	// written, the prefix bytes and the first length-prefixed field must
	// still be intact.
	uid := mustHex(t, "0102030405")
	loadAID := mustHex(t, "AABBCC")
	sdAID := mustHex(t, "DDEEFF")

	data := buildValidationData(0x1234, uid, loadAID, sdAID)

	if data[0] != 0x02 {
		t.Fatalf("data[0] = %#x, want 0x02", data[0])
	}
	if data[1] != 0x12 || data[2] != 0x34 {
		t.Fatalf("counter bytes = %x %x, want 12 34", data[1], data[2])
	}
	if int(data[3]) != len(uid) {
		t.Fatalf("uid length byte = %d, want %d", data[3], len(uid))
	}
	if !bytes.Equal(data[4:4+len(uid)], uid) {
		t.Fatalf("uid field corrupted: %x", data[4:4+len(uid)])
	}
}
