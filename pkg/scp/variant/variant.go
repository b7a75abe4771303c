// Package variant holds the i-variant dispatch tables for GlobalPlatform
// secure channel protocols: which part of an APDU a C-MAC covers, and
// whether the MAC ICV is used raw or re-encrypted first. Replacing the
// source's long if-ladders over i-variant constants with two small tables
// keyed by (Protocol, ImplOption) removes the main source of per-variant
// bugs.
package variant

import "fmt"

// Protocol identifies a GlobalPlatform secure channel protocol family.
type Protocol int

const (
	SCP01 Protocol = iota + 1
	SCP02
	SCP03
)

func (p Protocol) String() string {
	switch p {
	case SCP01:
		return "SCP01"
	case SCP02:
		return "SCP02"
	case SCP03:
		return "SCP03"
	default:
		return "unknown"
	}
}

// ImplOption is the 8-bit i-variant code selecting behavior within a
// protocol (e.g. i04, i15, i54). SCP03 carries a single variant, i00.
type ImplOption uint8

const (
	I00 ImplOption = 0x00
	I04 ImplOption = 0x04
	I05 ImplOption = 0x05
	I0A ImplOption = 0x0A
	I0B ImplOption = 0x0B
	I14 ImplOption = 0x14
	I15 ImplOption = 0x15
	I1A ImplOption = 0x1A
	I1B ImplOption = 0x1B
	I44 ImplOption = 0x44
	I45 ImplOption = 0x45
	I54 ImplOption = 0x54
	I55 ImplOption = 0x55
)

// MACScope selects which bytes a C-MAC is computed over.
type MACScope int

const (
	// ModifiedAPDU computes the MAC after the header has been rewritten
	// (CLA|=0x04, Lc bumped by 8).
	ModifiedAPDU MACScope = iota
	// OriginalAPDU computes the MAC before the header rewrite.
	OriginalAPDU
)

// ICVRule selects how the chaining value feeding a C-MAC is derived from
// the previous MAC.
type ICVRule int

const (
	// ICVRaw uses the previous MAC unchanged as the chaining value.
	ICVRaw ICVRule = iota
	// ICVEncrypted re-encrypts the previous MAC under the C-MAC session key
	// before using it as the chaining value.
	ICVEncrypted
)

type key struct {
	proto Protocol
	impl  ImplOption
}

// macScopeTable lists the SCP02 i-variants that MAC the modified APDU
// (i04/i05/i14/i15/i44/i45/i54/i55), the SCP02 i-variants that MAC the
// original, unmodified APDU (i0A/i0B/i1A/i1B), and SCP01 i15 and SCP03 i00
// (both modified). Any combination not listed defaults to ModifiedAPDU.
var macScopeTable = map[key]MACScope{
	{SCP02, I04}: ModifiedAPDU,
	{SCP02, I05}: ModifiedAPDU,
	{SCP02, I14}: ModifiedAPDU,
	{SCP02, I15}: ModifiedAPDU,
	{SCP02, I55}: ModifiedAPDU,
	{SCP02, I45}: ModifiedAPDU,
	{SCP02, I54}: ModifiedAPDU,
	{SCP02, I44}: ModifiedAPDU,
	{SCP02, I0A}: OriginalAPDU,
	{SCP02, I0B}: OriginalAPDU,
	{SCP02, I1A}: OriginalAPDU,
	{SCP02, I1B}: OriginalAPDU,
	{SCP01, I15}: ModifiedAPDU,
	{SCP03, I00}: ModifiedAPDU,
}

// icvRuleTable enumerates the i-variants whose ICV is the previous MAC
// re-encrypted under the C-MAC session key (bit4=1 i-codes). Everything
// else uses the raw previous MAC.
var icvRuleTable = map[key]ICVRule{
	{SCP02, I14}: ICVEncrypted,
	{SCP02, I15}: ICVEncrypted,
	{SCP02, I1A}: ICVEncrypted,
	{SCP02, I1B}: ICVEncrypted,
	{SCP02, I54}: ICVEncrypted,
	{SCP02, I55}: ICVEncrypted,
	{SCP01, I15}: ICVEncrypted,
}

// MACScopeFor returns the MAC scope for (proto, impl). Unknown combinations
// default to ModifiedAPDU, matching every undocumented i-variant in practice.
func MACScopeFor(proto Protocol, impl ImplOption) MACScope {
	if s, ok := macScopeTable[key{proto, impl}]; ok {
		return s
	}

	return ModifiedAPDU
}

// ICVRuleFor returns the ICV rule for (proto, impl). Unknown combinations
// default to ICVRaw.
func ICVRuleFor(proto Protocol, impl ImplOption) ICVRule {
	if r, ok := icvRuleTable[key{proto, impl}]; ok {
		return r
	}

	return ICVRaw
}

// Validate reports an error for an unknown protocol. It does not check impl:
// every ImplOption is accepted, and one not listed in the tables gets the
// default behavior.
func Validate(proto Protocol, impl ImplOption) error {
	switch proto {
	case SCP01, SCP02, SCP03:
		return nil
	default:
		return fmt.Errorf("variant: unknown protocol %d", proto)
	}
}
