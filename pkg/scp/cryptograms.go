package scp

import (
	"encoding/hex"

	"github.com/rs/zerolog/log"
)

// CardCryptogramSCP01 = 3DES-CBC-MAC(S_ENC, iv=0, hostChallenge||cardChallenge),
// last block, 8 bytes. Uses the same always-pad CBC-MAC primitive as the
// SCP01 C-MAC, not Retail-MAC: the two share one MAC algorithm on SCP01.
func CardCryptogramSCP01(sEnc, hostChallenge, cardChallenge []byte) ([]byte, error) {
	return scp01Cryptogram(sEnc, hostChallenge, cardChallenge)
}

// HostCryptogramSCP01 = 3DES-CBC-MAC(S_ENC, iv=0, cardChallenge||hostChallenge), 8 bytes.
func HostCryptogramSCP01(sEnc, hostChallenge, cardChallenge []byte) ([]byte, error) {
	return scp01Cryptogram(sEnc, cardChallenge, hostChallenge)
}

func scp01Cryptogram(sEnc, first, second []byte) ([]byte, error) {
	if len(first) != 8 || len(second) != 8 {
		return nil, errCrypt("scp01 cryptogram: operands must be 8 bytes", nil)
	}
	msg := make([]byte, 0, 16)
	msg = append(msg, first...)
	msg = append(msg, second...)
	mac, err := Single3DESCBCMAC(sEnc, ZeroICV[:], msg)
	if err != nil {
		return nil, errCrypt("scp01 cryptogram", err)
	}

	return mac, nil
}

// CardCryptogramSCP02 = Retail-MAC(S_ENC, iv=0, hostChallenge||sequenceCounter||cardChallenge[2:8]).
func CardCryptogramSCP02(sEnc, hostChallenge, sequenceCounter, cardChallenge []byte) ([]byte, error) {
	if len(hostChallenge) != 8 || len(sequenceCounter) != 2 || len(cardChallenge) != 8 {
		return nil, errCrypt("scp02 cryptogram: bad operand length", nil)
	}
	msg := make([]byte, 0, 16)
	msg = append(msg, hostChallenge...)
	msg = append(msg, sequenceCounter...)
	msg = append(msg, cardChallenge[2:8]...)

	return RetailMAC(sEnc, ZeroICV[:], msg)
}

// HostCryptogramSCP02 = Retail-MAC(S_ENC, iv=0, sequenceCounter||cardChallenge[2:8]||hostChallenge).
func HostCryptogramSCP02(sEnc, hostChallenge, sequenceCounter, cardChallenge []byte) ([]byte, error) {
	if len(hostChallenge) != 8 || len(sequenceCounter) != 2 || len(cardChallenge) != 8 {
		return nil, errCrypt("scp02 cryptogram: bad operand length", nil)
	}
	msg := make([]byte, 0, 16)
	msg = append(msg, sequenceCounter...)
	msg = append(msg, cardChallenge[2:8]...)
	msg = append(msg, hostChallenge...)

	return RetailMAC(sEnc, ZeroICV[:], msg)
}

// scp03CryptogramBlock builds the 32-byte SCP03 KDF block shared by
// session-key derivation and cryptogram computation, differing only in the
// output-length field (0x00 0x80 for session keys, 0x00 0x40 for
// cryptograms) and the derivation constant.
func scp03CryptogramBlock(derivationConstant byte, hostChallenge, cardChallenge []byte) []byte {
	d := make([]byte, 32)
	d[11] = derivationConstant
	d[12] = 0x00
	d[13] = 0x00
	d[14] = 0x40
	d[15] = 0x01
	copy(d[16:24], hostChallenge)
	copy(d[24:32], cardChallenge)

	return d
}

// CardCryptogramSCP03 = first 8 bytes of AES-CMAC(S_MAC, block(const=0x00)).
func CardCryptogramSCP03(sMac, hostChallenge, cardChallenge []byte) ([]byte, error) {
	if len(hostChallenge) != 8 || len(cardChallenge) != 8 {
		return nil, errCrypt("scp03 card cryptogram: challenges must be 8 bytes", nil)
	}
	block := scp03CryptogramBlock(SCP03ConstCardCrypto, hostChallenge, cardChallenge)
	tag, err := AESCMAC(sMac, block)
	if err != nil {
		return nil, errCrypt("scp03 card cryptogram", err)
	}

	log.Debug().
		Str("event", "scp03_card_cryptogram").
		Str("block", hex.EncodeToString(block)).
		Msg("computed scp03 card cryptogram")

	return tag[:8], nil
}

// HostCryptogramSCP03 = first 8 bytes of AES-CMAC(S_MAC, block(const=0x01)).
func HostCryptogramSCP03(sMac, hostChallenge, cardChallenge []byte) ([]byte, error) {
	if len(hostChallenge) != 8 || len(cardChallenge) != 8 {
		return nil, errCrypt("scp03 host cryptogram: challenges must be 8 bytes", nil)
	}
	block := scp03CryptogramBlock(SCP03ConstHostCrypto, hostChallenge, cardChallenge)
	tag, err := AESCMAC(sMac, block)
	if err != nil {
		return nil, errCrypt("scp03 host cryptogram", err)
	}

	return tag[:8], nil
}

// PseudoRandomCardChallengeSCP03 = first 8 bytes of AES-CMAC(S_ENC, block)
// where block = 11 zeros || 0x02 || 0x00 0x00 0x40 0x01 || sequenceCounter[3] || invokingAID.
// invokingAID must be at most 16 bytes.
func PseudoRandomCardChallengeSCP03(sEnc []byte, sequenceCounter []byte, invokingAID []byte) ([]byte, error) {
	if len(sequenceCounter) != 3 {
		return nil, errCrypt("scp03 pseudo-random challenge: sequence counter must be 3 bytes", nil)
	}
	if len(invokingAID) > 16 {
		return nil, errCrypt("scp03 pseudo-random challenge: invoking AID too long", nil)
	}

	block := make([]byte, 0, 19+len(invokingAID))
	block = append(block, make([]byte, 11)...)
	block = append(block, 0x02, 0x00, 0x00, 0x40, 0x01)
	block = append(block, sequenceCounter...)
	block = append(block, invokingAID...)

	tag, err := AESCMAC(sEnc, block)
	if err != nil {
		return nil, errCrypt("scp03 pseudo-random challenge", err)
	}

	return tag[:8], nil
}
