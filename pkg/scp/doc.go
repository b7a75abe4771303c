// Package scp implements a GlobalPlatform Secure Channel Protocol engine:
// session key derivation, cryptogram computation, APDU secure-messaging
// wrapping, and receipt/R-MAC validation across SCP01, SCP02 and SCP03 and
// their implementation-option (i-variant) variants.
//
// Reader transport, CAP-file parsing, TLV pretty-printing and high-level
// card-application lifecycle orchestration are out of scope: callers supply
// plaintext APDUs and a SecurityInfo handle, and consume wrapped APDUs plus
// status.
package scp
