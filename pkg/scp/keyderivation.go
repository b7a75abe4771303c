package scp

import (
	"encoding/hex"

	"github.com/andrei-cloud/go_hsm/pkg/scp/variant"
	"github.com/rs/zerolog/log"
)

// SCP02 derivation constants. Only S_ENC (0x0182) is pinned by a locked test
// vector; the remaining three follow the commonly deployed GlobalPlatform
// assignment and are documented as a resolved open question in DESIGN.md.
const (
	SCP02ConstENC  uint16 = 0x0182
	SCP02ConstMAC  uint16 = 0x0101
	SCP02ConstRMAC uint16 = 0x0102
	SCP02ConstDEK  uint16 = 0x0181
)

// SCP03 derivation constants (GlobalPlatform Amendment D).
const (
	SCP03ConstENC        byte = 0x04
	SCP03ConstMAC        byte = 0x06
	SCP03ConstRMAC       byte = 0x07
	SCP03ConstCardCrypto byte = 0x00
	SCP03ConstHostCrypto byte = 0x01
)

// DeriveSessionKeySCP01 implements the SCP01 session-key derivation:
// D = cardChallenge[4:8] || hostChallenge[0:4] || cardChallenge[0:4] || hostChallenge[4:8],
// sessionKey = 2-key-3DES-ECB(staticKey, D).
func DeriveSessionKeySCP01(staticKey, cardChallenge, hostChallenge []byte) ([]byte, error) {
	if len(cardChallenge) != 8 || len(hostChallenge) != 8 {
		return nil, errCrypt("scp01 kdf: challenges must be 8 bytes", nil)
	}

	d := make([]byte, 0, 16)
	d = append(d, cardChallenge[4:8]...)
	d = append(d, hostChallenge[0:4]...)
	d = append(d, cardChallenge[0:4]...)
	d = append(d, hostChallenge[4:8]...)

	key, err := TwoKey3DESECBEncrypt(staticKey, d)
	if err != nil {
		return nil, errCrypt("scp01 kdf", err)
	}

	log.Debug().Str("event", "scp01_kdf").Str("derivation_data", hex.EncodeToString(d)).Msg("derived scp01 session key")

	return key, nil
}

// DeriveSessionKeySCP02 implements the SCP02 session-key derivation:
// D = constant(2) || sequenceCounter(2) || 0x00 x 12,
// sessionKey = 2-key-3DES-CBC(staticKey, iv=0, D).
func DeriveSessionKeySCP02(staticKey []byte, constant uint16, sequenceCounter []byte) ([]byte, error) {
	if len(sequenceCounter) != 2 {
		return nil, errCrypt("scp02 kdf: sequence counter must be 2 bytes", nil)
	}

	d := make([]byte, 16)
	d[0] = byte(constant >> 8)
	d[1] = byte(constant)
	d[2] = sequenceCounter[0]
	d[3] = sequenceCounter[1]

	key, err := TwoKey3DESCBCEncrypt(staticKey, ZeroICV[:], d)
	if err != nil {
		return nil, errCrypt("scp02 kdf", err)
	}

	log.Debug().
		Str("event", "scp02_kdf").
		Uint16("constant", constant).
		Str("derivation_data", hex.EncodeToString(d)).
		Msg("derived scp02 session key")

	return key, nil
}

// DeriveSessionKeySCP03 implements the SCP03 session-key derivation:
// 32-byte D = 11 zero bytes || derivationConstant || 0x00 0x00 0x80 0x01 ||
// hostChallenge || cardChallenge; sessionKey = AES-128-CMAC(staticKey, D).
func DeriveSessionKeySCP03(
	staticKey []byte,
	derivationConstant byte,
	hostChallenge, cardChallenge []byte,
) ([]byte, error) {
	if len(hostChallenge) != 8 || len(cardChallenge) != 8 {
		return nil, errCrypt("scp03 kdf: challenges must be 8 bytes", nil)
	}

	d := make([]byte, 32)
	d[11] = derivationConstant
	d[12] = 0x00
	d[13] = 0x00
	d[14] = 0x80
	d[15] = 0x01
	copy(d[16:24], hostChallenge)
	copy(d[24:32], cardChallenge)

	key, err := AESCMAC(staticKey, d)
	if err != nil {
		return nil, errCrypt("scp03 kdf", err)
	}

	log.Debug().
		Str("event", "scp03_kdf").
		Uint8("derivation_constant", derivationConstant).
		Str("derivation_data", hex.EncodeToString(d)).
		Msg("derived scp03 session key")

	return key, nil
}

// deriveAllSessionKeys fills in every session key SecurityInfo needs for
// proto, given the static keys and session material. SCP01 derives only
// S_ENC/S_MAC (no DEK/RMAC session keys in this engine); SCP02 derives all
// four; SCP03 derives S_ENC/S_MAC only (R_MAC is not defined for SCP03).
type staticKeys struct {
	Enc []byte
	Mac []byte
	Dek []byte
}

// DeriveSessionKeys derives every session key proto's secure channel needs
// from the card's static ENC/MAC/DEK keys and the session's challenges and
// sequence counter. The returned SecurityInfo carries only the derived
// session keys; callers fill in Protocol/ImplOption/SecurityLvl/SessionID
// via NewSecurityInfo before using it with Wrap.
func DeriveSessionKeys(
	proto variant.Protocol,
	encKey, macKey, dekKey []byte,
	cardChallenge, hostChallenge, sequenceCounter []byte,
) (*SecurityInfo, error) {
	return deriveAllSessionKeys(
		proto,
		staticKeys{Enc: encKey, Mac: macKey, Dek: dekKey},
		cardChallenge, hostChallenge, sequenceCounter,
	)
}

func deriveAllSessionKeys(
	proto variant.Protocol,
	keys staticKeys,
	cardChallenge, hostChallenge []byte,
	sequenceCounter []byte,
) (*SecurityInfo, error) {
	switch proto {
	case variant.SCP01:
		enc, err := DeriveSessionKeySCP01(keys.Enc, cardChallenge, hostChallenge)
		if err != nil {
			return nil, err
		}
		mac, err := DeriveSessionKeySCP01(keys.Mac, cardChallenge, hostChallenge)
		if err != nil {
			return nil, err
		}

		return &SecurityInfo{EncryptionSessionKey: enc, CMACSessionKey: mac}, nil
	case variant.SCP02:
		enc, err := DeriveSessionKeySCP02(keys.Enc, SCP02ConstENC, sequenceCounter)
		if err != nil {
			return nil, err
		}
		mac, err := DeriveSessionKeySCP02(keys.Mac, SCP02ConstMAC, sequenceCounter)
		if err != nil {
			return nil, err
		}
		rmac, err := DeriveSessionKeySCP02(keys.Mac, SCP02ConstRMAC, sequenceCounter)
		if err != nil {
			return nil, err
		}
		dek, err := DeriveSessionKeySCP02(keys.Dek, SCP02ConstDEK, sequenceCounter)
		if err != nil {
			return nil, err
		}

		return &SecurityInfo{
			EncryptionSessionKey:     enc,
			CMACSessionKey:           mac,
			RMACSessionKey:           rmac,
			DataEncryptionSessionKey: dek,
		}, nil
	case variant.SCP03:
		enc, err := DeriveSessionKeySCP03(keys.Enc, SCP03ConstENC, hostChallenge, cardChallenge)
		if err != nil {
			return nil, err
		}
		mac, err := DeriveSessionKeySCP03(keys.Mac, SCP03ConstMAC, hostChallenge, cardChallenge)
		if err != nil {
			return nil, err
		}

		return &SecurityInfo{EncryptionSessionKey: enc, CMACSessionKey: mac}, nil
	default:
		return nil, errCrypt("deriveAllSessionKeys: unknown protocol", nil)
	}
}
