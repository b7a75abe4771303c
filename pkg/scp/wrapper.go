package scp

import (
	"encoding/hex"

	"github.com/andrei-cloud/go_hsm/pkg/scp/variant"
	"github.com/rs/zerolog/log"
)

// Wrap applies secInfo's active protections to apdu: Parse, ClassifyCase,
// CheckBudget, optionally rewrite the header, ComputeICV, ComputeMAC,
// optionally Encrypt, AssembleOutput, UpdateChain. Any failure at any step
// aborts with the first error and leaves secInfo's MAC chain untouched.
func Wrap(apdu []byte, secInfo *SecurityInfo) ([]byte, error) {
	if secInfo == nil || secInfo.SecurityLvl == NoSecureMessaging {
		out := make([]byte, len(apdu))
		copy(out, apdu)

		return out, nil
	}

	if secInfo.Protocol == variant.SCP03 && secInfo.HasEncryption() {
		return nil, errSCP03SecurityLevel3NotSupported()
	}

	cls, err := classifyAPDU(apdu)
	if err != nil {
		return nil, err
	}

	if !secInfo.HasCMAC() {
		// Levels that only carry R_MAC affect the response, not the
		// request; nothing to wrap here.
		out := make([]byte, len(apdu))
		copy(out, apdu)

		return out, nil
	}

	if err := checkLengthBudget(secInfo, cls); err != nil {
		return nil, err
	}

	strat, err := strategyFor(secInfo.Protocol, secInfo.ImplOption)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("event", "wrap_start").
		Str("session_id", secInfo.SessionID.String()).
		Str("protocol", secInfo.Protocol.String()).
		Int("case", int(cls.Case)).
		Msg("wrapping apdu")

	lcForMAC := cls.Lc + 8
	if cls.Case == Case1 || cls.Case == Case2 {
		lcForMAC = 8
	}

	newCLA := apdu[0] | 0x04
	originalData := cls.dataField(apdu)

	var macInput []byte
	switch strat.MACScope() {
	case variant.ModifiedAPDU:
		macInput = make([]byte, 0, 5+len(originalData))
		macInput = append(macInput, newCLA, apdu[1], apdu[2], apdu[3], byte(lcForMAC))
		macInput = append(macInput, originalData...)
	default: // variant.OriginalAPDU
		switch cls.Case {
		case Case1, Case2:
			macInput = append([]byte{}, apdu[:4]...)
		default:
			macInput = append([]byte{}, apdu[:5+cls.Lc]...)
		}
	}

	icv, err := strat.ComputeICV(secInfo)
	if err != nil {
		return nil, err
	}

	transmitMAC, newChain, err := strat.ComputeMAC(secInfo, icv, macInput)
	if err != nil {
		return nil, err
	}

	dataOut := originalData
	finalLc := lcForMAC
	if secInfo.HasEncryption() {
		if !strat.SupportsEncryption() {
			return nil, errSCP03SecurityLevel3NotSupported()
		}
		ciphertext, err := strat.Encrypt(secInfo, originalData)
		if err != nil {
			return nil, err
		}
		dataOut = ciphertext
		finalLc = len(ciphertext) + 8
	}

	if finalLc > 255 {
		return nil, errCommandSecureMessagingTooLarge("wrapped Lc exceeds single-byte range")
	}

	wrapped := make([]byte, 0, 5+len(dataOut)+8+1)
	wrapped = append(wrapped, newCLA, apdu[1], apdu[2], apdu[3], byte(finalLc))
	wrapped = append(wrapped, dataOut...)
	wrapped = append(wrapped, transmitMAC...)
	if cls.HasLe {
		wrapped = append(wrapped, cls.Le)
	}

	copy(secInfo.LastCMAC, newChain)

	log.Debug().
		Str("event", "wrap_done").
		Str("session_id", secInfo.SessionID.String()).
		Str("wrapped_hex", hex.EncodeToString(wrapped)).
		Msg("apdu wrapped")

	return wrapped, nil
}

// checkLengthBudget enforces the Case 3/4 data-length ceiling: 247 bytes for
// C_MAC-only (any protocol), 240 for C_DEC_C_MAC on SCP01/02, 231 for
// C_DEC_C_MAC on SCP03 (rejected earlier in practice, kept for
// completeness), one byte higher for Case 4 to make room for Le. Wrap also
// rejects any APDU whose wrapped Lc would exceed 255; because SCP02
// encryption always pads, that caps SCP02 C_DEC_C_MAC Case 3 data at 239
// bytes.
func checkLengthBudget(secInfo *SecurityInfo, cls classifiedAPDU) error {
	if cls.Case != Case3 && cls.Case != Case4 {
		return nil
	}

	max := 247
	if secInfo.HasEncryption() {
		max = 240
		if secInfo.Protocol == variant.SCP03 {
			max = 231
		}
	}
	if cls.Case == Case4 {
		max++
	}

	if cls.Lc > max {
		return errCommandSecureMessagingTooLarge("apdu data field exceeds secure messaging budget")
	}

	return nil
}
