package scp

import (
	"encoding/hex"

	"github.com/rs/zerolog/log"
)

// buildValidationData lays out [0x02, ctrHi, ctrLo, len(f1), f1, len(f2), f2, ...]
// for a confirmation counter and an arbitrary number of length-prefixed
// fields. Every field is copied to its own offset; the source copied every
// field to offset 0 of the buffer, silently overwriting the [0x02, ctr, len]
// prefix on each subsequent field — that bug is intentionally not
// reproduced here.
func buildValidationData(confirmationCounter uint16, fields ...[]byte) []byte {
	size := 3
	for _, f := range fields {
		size += 1 + len(f)
	}

	out := make([]byte, 0, size)
	out = append(out, 0x02, byte(confirmationCounter>>8), byte(confirmationCounter))
	for _, f := range fields {
		out = append(out, byte(len(f)))
		out = append(out, f...)
	}

	return out
}

// ValidateDeleteReceipt validates an 8-byte delete-confirmation receipt
// against [0x02, ctrHi, ctrLo, |uid|, uid, |AID|, AID] under receiptKey.
func ValidateDeleteReceipt(receipt []byte, confirmationCounter uint16, cardUniqueData, aid, receiptKey []byte) error {
	return validateReceipt(receipt, buildValidationData(confirmationCounter, cardUniqueData, aid), receiptKey, "delete")
}

// ValidateInstallReceipt validates an 8-byte install-confirmation receipt
// against [0x02, ctrHi, ctrLo, |uid|, uid, |loadAID|, loadAID, |appAID|, appAID].
func ValidateInstallReceipt(
	receipt []byte,
	confirmationCounter uint16,
	cardUniqueData, loadAID, appAID, receiptKey []byte,
) error {
	return validateReceipt(
		receipt,
		buildValidationData(confirmationCounter, cardUniqueData, loadAID, appAID),
		receiptKey,
		"install",
	)
}

// ValidateLoadReceipt validates an 8-byte load-confirmation receipt against
// [0x02, ctrHi, ctrLo, |uid|, uid, |loadAID|, loadAID, |sdAID|, sdAID].
func ValidateLoadReceipt(
	receipt []byte,
	confirmationCounter uint16,
	cardUniqueData, loadAID, sdAID, receiptKey []byte,
) error {
	return validateReceipt(
		receipt,
		buildValidationData(confirmationCounter, cardUniqueData, loadAID, sdAID),
		receiptKey,
		"load",
	)
}

func validateReceipt(receipt, validationData, receiptKey []byte, kind string) error {
	computed, err := RetailMAC(receiptKey, ZeroICV[:], validationData)
	if err != nil {
		return errCrypt("validate "+kind+" receipt", err)
	}

	log.Debug().
		Str("event", "receipt_validate").
		Str("kind", kind).
		Str("validation_data", hex.EncodeToString(validationData)).
		Msg("validating receipt")

	if !ConstantTimeEqual(computed, receipt) {
		return errValidationFailed(kind + " receipt mismatch")
	}

	return nil
}
