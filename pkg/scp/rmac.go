package scp

import "github.com/rs/zerolog/log"

// ComputeRMAC builds rData = commandHeader(4) || Lc(1) || commandData ||
// (len(responseData) mod 256)(1) || responseData || statusWord(2) and
// returns Retail-MAC(rmacKey, iv=lastRMAC, rData). SCP02 only.
func ComputeRMAC(
	commandHeader []byte,
	lc byte,
	commandData, responseData []byte,
	statusWord [2]byte,
	rmacKey, lastRMAC []byte,
) ([]byte, error) {
	if len(commandHeader) != 4 {
		return nil, errCrypt("compute r-mac: command header must be 4 bytes", nil)
	}

	rData := make([]byte, 0, 4+1+len(commandData)+1+len(responseData)+2)
	rData = append(rData, commandHeader...)
	rData = append(rData, lc)
	rData = append(rData, commandData...)
	rData = append(rData, byte(len(responseData)%256))
	rData = append(rData, responseData...)
	rData = append(rData, statusWord[0], statusWord[1])

	mac, err := RetailMAC(rmacKey, lastRMAC, rData)
	if err != nil {
		return nil, errCrypt("compute r-mac", err)
	}

	return mac, nil
}

// CheckRMAC recomputes the R-MAC over (commandHeader, lc, commandData,
// responseData, statusWord) and compares it in constant time against the
// trailing 8 bytes of responsePayload (the bytes immediately preceding the
// 2-byte status word). On success it advances secInfo.LastRMAC; on mismatch
// it returns ValidationRMAC and leaves the chain untouched.
func CheckRMAC(
	commandHeader []byte,
	lc byte,
	commandData []byte,
	responsePayload []byte,
	rmacKey []byte,
	secInfo *SecurityInfo,
) error {
	if len(responsePayload) < 10 {
		return errCrypt("check r-mac: response payload too short", nil)
	}

	statusWord := [2]byte{
		responsePayload[len(responsePayload)-2],
		responsePayload[len(responsePayload)-1],
	}
	receivedMAC := responsePayload[len(responsePayload)-10 : len(responsePayload)-2]
	responseData := responsePayload[:len(responsePayload)-10]

	computed, err := ComputeRMAC(commandHeader, lc, commandData, responseData, statusWord, rmacKey, secInfo.LastRMAC)
	if err != nil {
		return err
	}

	log.Debug().
		Str("event", "rmac_check").
		Str("session_id", secInfo.SessionID.String()).
		Msg("checking response mac")

	if !ConstantTimeEqual(computed, receivedMAC) {
		return errValidationRMAC("response mac mismatch")
	}

	copy(secInfo.LastRMAC, computed)

	return nil
}
