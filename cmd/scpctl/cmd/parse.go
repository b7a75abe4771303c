package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/andrei-cloud/go_hsm/pkg/scp/variant"
)

func parseProtocol(s string) (variant.Protocol, error) {
	switch strings.TrimPrefix(strings.ToUpper(s), "SCP") {
	case "01":
		return variant.SCP01, nil
	case "02":
		return variant.SCP02, nil
	case "03":
		return variant.SCP03, nil
	default:
		return 0, fmt.Errorf("unknown protocol %q (expected 01, 02 or 03)", s)
	}
}

func parseImplOption(s string) (variant.ImplOption, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid i-variant %q: %w", s, err)
	}

	return variant.ImplOption(n), nil
}

func parseHexFlag(name, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s hex %q: %w", name, s, err)
	}

	return b, nil
}
