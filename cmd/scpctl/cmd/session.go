package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andrei-cloud/go_hsm/pkg/scp"
	"github.com/spf13/cobra"
)

var (
	sessionProtocol  string
	sessionImpl      string
	sessionLevel     string
	sessionMacKeyHex string
	sessionEncKeyHex string
	sessionFile      string
)

// sessionCmd replays a sequence of plain APDUs from a file through an
// interactive terminal UI, wrapping each one in turn and showing the
// running MAC chain.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactively replay a sequence of APDUs through Wrap",
	Long: `Read one plain APDU (hex, one per line, blank lines and lines
starting with # ignored) per line from --file and step through Wrap one
APDU at a time in a terminal UI, showing the wrapped output and MAC chain
after each step.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		proto, err := parseProtocol(sessionProtocol)
		if err != nil {
			return err
		}
		impl, err := parseImplOption(sessionImpl)
		if err != nil {
			return err
		}
		level, err := parseSecurityLevel(sessionLevel)
		if err != nil {
			return err
		}

		secInfo := scp.NewSecurityInfo(proto, impl, level)
		if sessionMacKeyHex != "" {
			secInfo.CMACSessionKey, err = parseHexFlag("mac-key", sessionMacKeyHex)
			if err != nil {
				return err
			}
		}
		if sessionEncKeyHex != "" {
			secInfo.EncryptionSessionKey, err = parseHexFlag("enc-key", sessionEncKeyHex)
			if err != nil {
				return err
			}
		}

		apdus, err := readAPDUFile(sessionFile)
		if err != nil {
			return err
		}
		if len(apdus) == 0 {
			return fmt.Errorf("no apdus found in %s", sessionFile)
		}

		return runSessionReplay(secInfo, apdus)
	},
}

func readAPDUFile(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open apdu file: %w", err)
	}
	defer f.Close()

	var apdus [][]byte
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		apdu, err := parseHexFlag("apdu line", line)
		if err != nil {
			return nil, err
		}
		apdus = append(apdus, apdu)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read apdu file: %w", err)
	}

	return apdus, nil
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringVar(&sessionProtocol, "protocol", "", "protocol: 01, 02 or 03")
	sessionCmd.Flags().StringVar(&sessionImpl, "impl", "", "i-variant, hex (e.g. 04, 0A, 15)")
	sessionCmd.Flags().StringVar(&sessionLevel, "level", "cmac", "security level: none, cmac, cdeccmac, rmac, cmacrmac, cdeccmacrmac")
	sessionCmd.Flags().StringVar(&sessionMacKeyHex, "mac-key", "", "C-MAC session key, hex")
	sessionCmd.Flags().StringVar(&sessionEncKeyHex, "enc-key", "", "encryption session key, hex")
	sessionCmd.Flags().StringVar(&sessionFile, "file", "", "path to a file of plain APDUs, one hex string per line")

	for _, name := range []string{"protocol", "impl", "file"} {
		if err := sessionCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
