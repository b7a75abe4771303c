package scp

import "github.com/andrei-cloud/go_hsm/pkg/scp/variant"

// Strategy carries the protocol-specific operations the wrapper needs: the
// MAC scope, computing the MAC chaining ICV, computing the transmitted MAC
// and the new chain value, and (where supported) encrypting the data field. Wrap looks
// the active protocol's Strategy up once per call and never branches on
// the protocol again inside the state machine.
type Strategy interface {
	MACScope() variant.MACScope
	ComputeICV(secInfo *SecurityInfo) ([]byte, error)
	// ComputeMAC returns the transmitted MAC (8 bytes) and the full new
	// chain value to store in secInfo.LastCMAC (8 bytes for SCP01/02, 16
	// for SCP03).
	ComputeMAC(secInfo *SecurityInfo, icv, macInput []byte) (transmit, newChain []byte, err error)
	// Encrypt encrypts data under the data encryption rule for this
	// protocol. SupportsEncryption reports false for protocols that never
	// reach this path (SCP03 rejects C_DEC_C_MAC before Encrypt is called).
	Encrypt(secInfo *SecurityInfo, data []byte) ([]byte, error)
	SupportsEncryption() bool
}

func strategyFor(proto variant.Protocol, impl variant.ImplOption) (Strategy, error) {
	switch proto {
	case variant.SCP01:
		return scp01Strategy{impl: impl}, nil
	case variant.SCP02:
		return scp02Strategy{impl: impl}, nil
	case variant.SCP03:
		return scp03Strategy{impl: impl}, nil
	default:
		return nil, errCrypt("strategyFor: unknown protocol", nil)
	}
}

type scp01Strategy struct{ impl variant.ImplOption }

func (s scp01Strategy) MACScope() variant.MACScope {
	return variant.MACScopeFor(variant.SCP01, s.impl)
}

func (s scp01Strategy) ComputeICV(secInfo *SecurityInfo) ([]byte, error) {
	if variant.ICVRuleFor(variant.SCP01, s.impl) == variant.ICVEncrypted {
		return TwoKey3DESECBEncrypt(secInfo.CMACSessionKey, secInfo.LastCMAC)
	}

	return secInfo.LastCMAC, nil
}

func (s scp01Strategy) ComputeMAC(secInfo *SecurityInfo, icv, macInput []byte) ([]byte, []byte, error) {
	mac, err := Single3DESCBCMAC(secInfo.CMACSessionKey, icv, macInput)
	if err != nil {
		return nil, nil, err
	}

	return mac, mac, nil
}

func (s scp01Strategy) Encrypt(secInfo *SecurityInfo, data []byte) ([]byte, error) {
	return TwoKey3DESCBCEncrypt(secInfo.EncryptionSessionKey, ZeroICV[:], data)
}

func (s scp01Strategy) SupportsEncryption() bool { return true }

type scp02Strategy struct{ impl variant.ImplOption }

func (s scp02Strategy) MACScope() variant.MACScope {
	return variant.MACScopeFor(variant.SCP02, s.impl)
}

func (s scp02Strategy) ComputeICV(secInfo *SecurityInfo) ([]byte, error) {
	if variant.ICVRuleFor(variant.SCP02, s.impl) == variant.ICVEncrypted {
		return DESECBEncrypt(secInfo.CMACSessionKey[:8], secInfo.LastCMAC)
	}

	return secInfo.LastCMAC, nil
}

func (s scp02Strategy) ComputeMAC(secInfo *SecurityInfo, icv, macInput []byte) ([]byte, []byte, error) {
	mac, err := RetailMAC(secInfo.CMACSessionKey, icv, macInput)
	if err != nil {
		return nil, nil, err
	}

	return mac, mac, nil
}

func (s scp02Strategy) Encrypt(secInfo *SecurityInfo, data []byte) ([]byte, error) {
	return SCP02CBCEncrypt(secInfo.EncryptionSessionKey, ZeroICV[:], data)
}

func (s scp02Strategy) SupportsEncryption() bool { return true }

type scp03Strategy struct{ impl variant.ImplOption }

func (s scp03Strategy) MACScope() variant.MACScope {
	return variant.MACScopeFor(variant.SCP03, s.impl)
}

func (s scp03Strategy) ComputeICV(secInfo *SecurityInfo) ([]byte, error) {
	return secInfo.LastCMAC, nil
}

func (s scp03Strategy) ComputeMAC(secInfo *SecurityInfo, icv, macInput []byte) ([]byte, []byte, error) {
	tag, err := AESCMACChained(secInfo.CMACSessionKey, icv, macInput)
	if err != nil {
		return nil, nil, err
	}

	return tag[:8], tag, nil
}

func (s scp03Strategy) Encrypt(_ *SecurityInfo, _ []byte) ([]byte, error) {
	return nil, errSCP03SecurityLevel3NotSupported()
}

func (s scp03Strategy) SupportsEncryption() bool { return false }
