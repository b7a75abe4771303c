package scp

// APDUCase identifies the ISO 7816-4 short-form case of a command APDU.
type APDUCase int

const (
	// Case1 is header only (4 bytes): no Lc, no data, no Le.
	Case1 APDUCase = iota + 1
	// Case2 is header + Le (5 bytes): no data.
	Case2
	// Case3 is header + Lc + data: no Le.
	Case3
	// Case4 is header + Lc + data + Le.
	Case4
)

// classifiedAPDU is the result of classifying a command APDU: its case, the
// data-field length (Lc, 0 for Case 1/2), and the trailing Le byte if any.
type classifiedAPDU struct {
	Case  APDUCase
	Lc    int
	Le    byte
	HasLe bool
}

// classifyAPDU determines the APDU's case from its length and the Lc byte
// at offset 4, following the same rules as the source's wrap_command: a
// 4-byte command is Case 1, a 5-byte command is Case 2 (Le at offset 4),
// otherwise offset 4 is Lc and the remaining length must match either
// Case 3 (header+Lc+data) or Case 4 (header+Lc+data+Le) exactly.
func classifyAPDU(apdu []byte) (classifiedAPDU, error) {
	switch {
	case len(apdu) == 4:
		return classifiedAPDU{Case: Case1}, nil
	case len(apdu) == 5:
		return classifiedAPDU{Case: Case2, Le: apdu[4], HasLe: true}, nil
	case len(apdu) > 5:
		lc := int(apdu[4])
		switch len(apdu) {
		case lc + 5:
			return classifiedAPDU{Case: Case3, Lc: lc}, nil
		case lc + 5 + 1:
			return classifiedAPDU{Case: Case4, Lc: lc, Le: apdu[len(apdu)-1], HasLe: true}, nil
		default:
			return classifiedAPDU{}, errUnrecognizedApdu("apdu length does not match Lc for Case 3 or Case 4")
		}
	default:
		return classifiedAPDU{}, errUnrecognizedApdu("apdu shorter than the minimum 4-byte header")
	}
}

// dataField returns the command data bytes (excluding header, Lc, and any
// trailing Le) for a classified APDU.
func (c classifiedAPDU) dataField(apdu []byte) []byte {
	switch c.Case {
	case Case1, Case2:
		return nil
	default:
		return apdu[5 : 5+c.Lc]
	}
}
