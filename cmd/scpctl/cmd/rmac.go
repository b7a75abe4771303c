package cmd

import (
	"encoding/hex"
	"errors"

	"github.com/andrei-cloud/go_hsm/pkg/scp"
	"github.com/spf13/cobra"
)

var errInvalidSW = errors.New("--sw must be exactly 2 bytes")

var (
	rmacHeaderHex  string
	rmacDataHex    string
	rmacRespHex    string
	rmacSwHex      string
	rmacKeyHex     string
	rmacChainHex   string
	rmacPayloadHex string
)

// rmacCmd computes or checks a GlobalPlatform response R-MAC (SCP02).
var rmacCmd = &cobra.Command{
	Use:   "rmac",
	Short: "Compute or check a response R-MAC",
}

var rmacComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute the R-MAC for a command/response pair",
	RunE: func(cmd *cobra.Command, _ []string) error {
		header, err := parseHexFlag("header", rmacHeaderHex)
		if err != nil {
			return err
		}
		data, err := parseHexFlag("data", rmacDataHex)
		if err != nil {
			return err
		}
		resp, err := parseHexFlag("response", rmacRespHex)
		if err != nil {
			return err
		}
		sw, err := parseHexFlag("sw", rmacSwHex)
		if err != nil {
			return err
		}
		if len(sw) != 2 {
			return errInvalidSW
		}
		key, err := parseHexFlag("key", rmacKeyHex)
		if err != nil {
			return err
		}
		chain := make([]byte, 8)
		if rmacChainHex != "" {
			chain, err = parseHexFlag("chain", rmacChainHex)
			if err != nil {
				return err
			}
		}

		mac, err := scp.ComputeRMAC(header, byte(len(data)), data, resp, [2]byte{sw[0], sw[1]}, key, chain)
		if err != nil {
			return err
		}

		cmd.Println(hex.EncodeToString(mac))

		return nil
	},
}

var rmacCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a received response R-MAC against session state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		header, err := parseHexFlag("header", rmacHeaderHex)
		if err != nil {
			return err
		}
		data, err := parseHexFlag("data", rmacDataHex)
		if err != nil {
			return err
		}
		payload, err := parseHexFlag("payload", rmacPayloadHex)
		if err != nil {
			return err
		}
		key, err := parseHexFlag("key", rmacKeyHex)
		if err != nil {
			return err
		}

		secInfo := scp.NewSecurityInfo(0, 0, scp.RMAC)
		if rmacChainHex != "" {
			chain, chainErr := parseHexFlag("chain", rmacChainHex)
			if chainErr != nil {
				return chainErr
			}
			secInfo.LastRMAC = chain
		}

		if err := scp.CheckRMAC(header, byte(len(data)), data, payload, key, secInfo); err != nil {
			return err
		}
		cmd.Println("r-mac valid")
		cmd.Printf("chain: %s\n", hex.EncodeToString(secInfo.LastRMAC))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmacCmd)
	rmacCmd.AddCommand(rmacComputeCmd, rmacCheckCmd)

	rmacComputeCmd.Flags().StringVar(&rmacHeaderHex, "header", "", "4-byte command header, hex")
	rmacComputeCmd.Flags().StringVar(&rmacDataHex, "data", "", "command data field, hex")
	rmacComputeCmd.Flags().StringVar(&rmacRespHex, "response", "", "response data field, hex")
	rmacComputeCmd.Flags().StringVar(&rmacSwHex, "sw", "", "2-byte status word, hex")
	rmacComputeCmd.Flags().StringVar(&rmacKeyHex, "key", "", "R-MAC session key, hex")
	rmacComputeCmd.Flags().StringVar(&rmacChainHex, "chain", "", "previous R-MAC chain value, hex (defaults to all zero)")

	for _, name := range []string{"header", "sw", "key"} {
		if err := rmacComputeCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	rmacCheckCmd.Flags().StringVar(&rmacHeaderHex, "header", "", "4-byte command header, hex")
	rmacCheckCmd.Flags().StringVar(&rmacDataHex, "data", "", "command data field, hex")
	rmacCheckCmd.Flags().StringVar(&rmacPayloadHex, "payload", "", "response data || mac(8) || sw(2), hex")
	rmacCheckCmd.Flags().StringVar(&rmacKeyHex, "key", "", "R-MAC session key, hex")
	rmacCheckCmd.Flags().StringVar(&rmacChainHex, "chain", "", "previous R-MAC chain value, hex (defaults to all zero)")

	for _, name := range []string{"header", "payload", "key"} {
		if err := rmacCheckCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
