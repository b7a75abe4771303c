package scp

import (
	"github.com/andrei-cloud/go_hsm/pkg/scp/variant"
	"github.com/google/uuid"
)

// SecurityLevel names the combination of protections active on a session.
// Each constant is a distinct value standing for one whole combination
// (CMACRMAC is not CMAC|RMAC), so levels are compared for equality, as
// HasCMAC/HasEncryption/HasRMAC do, not tested bit by bit. SCP01/02/03 share these meanings even though each protocol assigns
// different numeric constants on the wire; the engine normalizes to this
// one enum internally.
type SecurityLevel uint8

const (
	NoSecureMessaging SecurityLevel = 0
	CMAC              SecurityLevel = 1 << iota
	CDecCMAC
	RMAC
	CMACRMAC
	CDecCMACRMAC
)

// ZeroICV is the fixed 8-byte all-zero initial chaining value used at
// session establishment and by any primitive whose ICV is not otherwise
// specified. It is immutable; never write to the returned slice in place.
var ZeroICV = [8]byte{}

// padMethod2Prefix is the ISO/IEC 9797-1 method-2 (EMV) padding prefix: a
// single 0x80 followed by as many 0x00 bytes as needed.
const padMethod2Prefix = 0x80

// SecurityInfo is the session state handle held across APDUs for one
// secure-channel session. It carries no global state; a caller needing
// parallel sessions holds one SecurityInfo per goroutine and never shares
// one across goroutines without its own external synchronization.
type SecurityInfo struct {
	SessionID uuid.UUID

	Protocol    variant.Protocol
	ImplOption  variant.ImplOption
	SecurityLvl SecurityLevel

	EncryptionSessionKey     []byte // S_ENC, 16 bytes
	CMACSessionKey           []byte // S_MAC (SCP01/02) / S_MAC (SCP03), 16 bytes
	RMACSessionKey           []byte // S_RMAC, 16 bytes (SCP02 only)
	DataEncryptionSessionKey []byte // S_DEK, 16 bytes

	// LastCMAC is the running MAC chain value: 8 bytes for SCP01/02, 16
	// bytes for SCP03. It starts at all-zeros and is overwritten after
	// every wrapped APDU that includes a C-MAC; never advanced on failure.
	LastCMAC []byte

	// LastRMAC is the running R-MAC chain value, 8 bytes, SCP02 only.
	LastRMAC []byte
}

// NewSecurityInfo builds a session handle with a fresh SessionID and a
// zeroed MAC chain of the width appropriate to proto.
func NewSecurityInfo(proto variant.Protocol, impl variant.ImplOption, level SecurityLevel) *SecurityInfo {
	chainWidth := 8
	if proto == variant.SCP03 {
		chainWidth = 16
	}

	return &SecurityInfo{
		SessionID:   uuid.New(),
		Protocol:    proto,
		ImplOption:  impl,
		SecurityLvl: level,
		LastCMAC:    make([]byte, chainWidth),
		LastRMAC:    make([]byte, 8),
	}
}

// HasCMAC reports whether the active level includes a command MAC.
func (s *SecurityInfo) HasCMAC() bool {
	return s.SecurityLvl == CMAC || s.SecurityLvl == CDecCMAC ||
		s.SecurityLvl == CMACRMAC || s.SecurityLvl == CDecCMACRMAC
}

// HasEncryption reports whether the active level includes data encryption.
func (s *SecurityInfo) HasEncryption() bool {
	return s.SecurityLvl == CDecCMAC || s.SecurityLvl == CDecCMACRMAC
}

// HasRMAC reports whether the active level includes a response MAC.
func (s *SecurityInfo) HasRMAC() bool {
	return s.SecurityLvl == RMAC || s.SecurityLvl == CMACRMAC || s.SecurityLvl == CDecCMACRMAC
}

// Zero overwrites every key and chaining value held by s. Callers should
// call it when a session ends; the engine itself never retains a
// SecurityInfo beyond the call that used it.
func (s *SecurityInfo) Zero() {
	zero(s.EncryptionSessionKey)
	zero(s.CMACSessionKey)
	zero(s.RMACSessionKey)
	zero(s.DataEncryptionSessionKey)
	zero(s.LastCMAC)
	zero(s.LastRMAC)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
