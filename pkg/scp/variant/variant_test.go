package variant

import "testing"

func TestMACScopeForKnownAndUnknownCombinations(t *testing.T) {
	t.Parallel()

	if got := MACScopeFor(SCP02, I0A); got != OriginalAPDU {
		t.Errorf("SCP02/i0A MACScope = %v, want OriginalAPDU", got)
	}
	if got := MACScopeFor(SCP02, I04); got != ModifiedAPDU {
		t.Errorf("SCP02/i04 MACScope = %v, want ModifiedAPDU", got)
	}
	if got := MACScopeFor(SCP03, I00); got != ModifiedAPDU {
		t.Errorf("SCP03/i00 MACScope = %v, want ModifiedAPDU", got)
	}
	if got := MACScopeFor(SCP01, ImplOption(0xFF)); got != ModifiedAPDU {
		t.Errorf("unlisted combination must default to ModifiedAPDU, got %v", got)
	}
}

func TestICVRuleForKnownAndUnknownCombinations(t *testing.T) {
	t.Parallel()

	if got := ICVRuleFor(SCP02, I14); got != ICVEncrypted {
		t.Errorf("SCP02/i14 ICVRule = %v, want ICVEncrypted", got)
	}
	if got := ICVRuleFor(SCP02, I04); got != ICVRaw {
		t.Errorf("SCP02/i04 ICVRule = %v, want ICVRaw", got)
	}
	if got := ICVRuleFor(SCP01, I15); got != ICVEncrypted {
		t.Errorf("SCP01/i15 ICVRule = %v, want ICVEncrypted", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	for _, p := range []Protocol{SCP01, SCP02, SCP03} {
		if err := Validate(p, I00); err != nil {
			t.Errorf("Validate(%v, I00) = %v, want nil", p, err)
		}
	}

	if err := Validate(Protocol(42), I00); err == nil {
		t.Error("expected an error for an unknown protocol")
	}
}
