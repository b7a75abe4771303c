package scp

import (
	"bytes"
	"testing"
)

func TestComputeAndCheckRMACRoundTrip(t *testing.T) {
	t.Parallel()

	rmacKey := bytes.Repeat([]byte{0x77}, 16)
	secInfo := newTestSecurityInfo(0, 0, RMAC)
	secInfo.LastRMAC = make([]byte, 8)

	header := []byte{0x84, 0xCA, 0x00, 0x00}
	commandData := []byte{0x01, 0x02}
	responseData := []byte{0x9F, 0x7F, 0x2A}
	sw := [2]byte{0x90, 0x00}

	mac, err := ComputeRMAC(header, byte(len(commandData)), commandData, responseData, sw, rmacKey, secInfo.LastRMAC)
	if err != nil {
		t.Fatalf("ComputeRMAC: %v", err)
	}
	if len(mac) != 8 {
		t.Fatalf("mac length = %d, want 8", len(mac))
	}

	payload := append(append([]byte{}, responseData...), mac...)
	payload = append(payload, sw[0], sw[1])

	if err := CheckRMAC(header, byte(len(commandData)), commandData, payload, rmacKey, secInfo); err != nil {
		t.Fatalf("CheckRMAC: %v", err)
	}
	if !bytes.Equal(secInfo.LastRMAC, mac) {
		t.Errorf("lastRMAC did not advance to the computed mac")
	}
}

// Seed vector 6: flipping one bit of the received R-MAC must yield
// ValidationRMAC and must not advance the chain.
func TestCheckRMACBitFlipRejectedChainUnchanged(t *testing.T) {
	t.Parallel()

	rmacKey := bytes.Repeat([]byte{0x88}, 16)
	secInfo := newTestSecurityInfo(0, 0, RMAC)
	secInfo.LastRMAC = make([]byte, 8)
	originalChain := append([]byte{}, secInfo.LastRMAC...)

	header := []byte{0x84, 0xCA, 0x00, 0x00}
	commandData := []byte{}
	responseData := []byte{0x01, 0x02, 0x03}
	sw := [2]byte{0x90, 0x00}

	mac, err := ComputeRMAC(header, 0, commandData, responseData, sw, rmacKey, secInfo.LastRMAC)
	if err != nil {
		t.Fatalf("ComputeRMAC: %v", err)
	}

	corrupted := append([]byte{}, mac...)
	corrupted[0] ^= 0x01

	payload := append(append([]byte{}, responseData...), corrupted...)
	payload = append(payload, sw[0], sw[1])

	err = CheckRMAC(header, 0, commandData, payload, rmacKey, secInfo)
	if err == nil {
		t.Fatal("expected a mismatch error for the flipped mac bit")
	}
	scpErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error is not *scp.Error: %T", err)
	}
	if scpErr.Kind != KindValidationRMAC {
		t.Errorf("Kind = %v, want KindValidationRMAC", scpErr.Kind)
	}
	if !bytes.Equal(secInfo.LastRMAC, originalChain) {
		t.Errorf("lastRMAC must not advance on a failed check")
	}
}

func TestComputeRMACRejectsShortHeader(t *testing.T) {
	t.Parallel()

	_, err := ComputeRMAC([]byte{0x84, 0xCA, 0x00}, 0, nil, nil, [2]byte{0x90, 0x00}, bytes.Repeat([]byte{0x01}, 16), make([]byte, 8))
	if err == nil {
		t.Fatal("expected an error for a 3-byte command header")
	}
}
