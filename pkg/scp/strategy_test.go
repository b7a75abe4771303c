package scp

import (
	"bytes"
	"testing"

	"github.com/andrei-cloud/go_hsm/pkg/scp/variant"
)

func TestStrategyForUnknownProtocol(t *testing.T) {
	t.Parallel()

	if _, err := strategyFor(variant.Protocol(99), variant.I00); err == nil {
		t.Fatal("expected an error for an unknown protocol")
	}
}

func TestSCP01StrategyICVEncryptedForI15(t *testing.T) {
	t.Parallel()

	si := newTestSecurityInfo(variant.SCP01, variant.I15, CMAC)
	si.LastCMAC = mustHex(t, "0102030405060708")

	strat, err := strategyFor(variant.SCP01, variant.I15)
	if err != nil {
		t.Fatalf("strategyFor: %v", err)
	}

	icv, err := strat.ComputeICV(si)
	if err != nil {
		t.Fatalf("ComputeICV: %v", err)
	}
	if bytes.Equal(icv, si.LastCMAC) {
		t.Errorf("i15 ICV must be the encrypted chain, not the raw chain")
	}
}

func TestSCP02StrategyICVRawByDefault(t *testing.T) {
	t.Parallel()

	si := newTestSecurityInfo(variant.SCP02, variant.I04, CMAC)
	si.LastCMAC = mustHex(t, "0102030405060708")

	strat, err := strategyFor(variant.SCP02, variant.I04)
	if err != nil {
		t.Fatalf("strategyFor: %v", err)
	}

	icv, err := strat.ComputeICV(si)
	if err != nil {
		t.Fatalf("ComputeICV: %v", err)
	}
	if !bytes.Equal(icv, si.LastCMAC) {
		t.Errorf("i04 ICV must be the raw chain value")
	}
}

func TestSCP03StrategyRejectsEncryption(t *testing.T) {
	t.Parallel()

	strat, err := strategyFor(variant.SCP03, variant.I00)
	if err != nil {
		t.Fatalf("strategyFor: %v", err)
	}
	if strat.SupportsEncryption() {
		t.Fatal("SCP03 strategy must report SupportsEncryption() == false")
	}
	if _, err := strat.Encrypt(nil, nil); err == nil {
		t.Fatal("expected an error calling Encrypt on the SCP03 strategy")
	}
}
