package scp

import "errors"

// ErrorKind tags the class of failure raised by the engine. Callers switch on
// Kind rather than matching error strings.
type ErrorKind int

const (
	// KindCrypt wraps any underlying primitive (cipher/hash/signature) failure.
	KindCrypt ErrorKind = iota
	// KindInsufficientBuffer is returned when an RSA modulus exceeds 1024 bits.
	KindInsufficientBuffer
	// KindInvalidPassword is returned when a PEM passphrase is wrong or missing.
	KindInvalidPassword
	// KindInvalidFilename is returned when a PEM file cannot be opened.
	KindInvalidFilename
	// KindUnrecognizedApdu is returned when an APDU does not fit Case 1-4.
	KindUnrecognizedApdu
	// KindCommandSecureMessagingTooLarge is returned when a wrapped APDU would
	// exceed the protocol's length budget.
	KindCommandSecureMessagingTooLarge
	// KindSCP03SecurityLevel3NotSupported is returned for SCP03 + C_DEC_C_MAC.
	KindSCP03SecurityLevel3NotSupported
	// KindValidationFailed is returned on a receipt MAC mismatch.
	KindValidationFailed
	// KindValidationRMAC is returned on an R-MAC mismatch.
	KindValidationRMAC
	// KindOutOfMemory names a buffer allocation failure. No function in this
	// package returns it.
	KindOutOfMemory
)

func (k ErrorKind) String() string {
	switch k {
	case KindCrypt:
		return "crypt"
	case KindInsufficientBuffer:
		return "insufficient_buffer"
	case KindInvalidPassword:
		return "invalid_password"
	case KindInvalidFilename:
		return "invalid_filename"
	case KindUnrecognizedApdu:
		return "unrecognized_apdu"
	case KindCommandSecureMessagingTooLarge:
		return "command_secure_messaging_too_large"
	case KindSCP03SecurityLevel3NotSupported:
		return "scp03_security_level_3_not_supported"
	case KindValidationFailed:
		return "validation_failed"
	case KindValidationRMAC:
		return "validation_rmac"
	case KindOutOfMemory:
		return "out_of_memory"
	default:
		return "unknown"
	}
}

// Error is the engine's single error type. It carries a Kind for programmatic
// dispatch, a human-readable Message, and an optional wrapped cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// match on kind with errors.Is(err, &scp.Error{Kind: scp.KindValidationFailed}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}

	return false
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func errCrypt(msg string, cause error) error {
	return newError(KindCrypt, msg, cause)
}

func errInsufficientBuffer(msg string) error {
	return newError(KindInsufficientBuffer, msg, nil)
}

func errInvalidPassword(msg string) error {
	return newError(KindInvalidPassword, msg, nil)
}

func errInvalidFilename(msg string, cause error) error {
	return newError(KindInvalidFilename, msg, cause)
}

func errUnrecognizedApdu(msg string) error {
	return newError(KindUnrecognizedApdu, msg, nil)
}

func errCommandSecureMessagingTooLarge(msg string) error {
	return newError(KindCommandSecureMessagingTooLarge, msg, nil)
}

func errSCP03SecurityLevel3NotSupported() error {
	return newError(
		KindSCP03SecurityLevel3NotSupported,
		"SCP03 does not support C_DEC_C_MAC in this implementation",
		nil,
	)
}

func errValidationFailed(msg string) error {
	return newError(KindValidationFailed, msg, nil)
}

func errValidationRMAC(msg string) error {
	return newError(KindValidationRMAC, msg, nil)
}
