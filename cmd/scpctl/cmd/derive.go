package cmd

import (
	"encoding/hex"

	"github.com/andrei-cloud/go_hsm/internal/logging"
	"github.com/andrei-cloud/go_hsm/pkg/scp"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	deriveProtocol      string
	deriveEncKeyHex     string
	deriveMacKeyHex     string
	deriveDekKeyHex     string
	deriveCardChalHex   string
	deriveHostChalHex   string
	deriveSeqCounterHex string
)

// deriveCmd derives SCP01/02/03 session keys from static keys and session material.
var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive SCP01/02/03 session keys",
	Long: `Derive session ENC/MAC/R-MAC/DEK keys from a card's static keys and
the session's card/host challenges (and sequence counter, for SCP02).`,
	Example: `  scpctl derive --protocol 02 --enc-key 404142434445464748494A4B4C4D4E4F \
    --mac-key 404142434445464748494A4B4C4D4E4F \
    --dek-key 404142434445464748494A4B4C4D4E4F \
    --host-challenge 0102030405060708 --seq 0001`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		proto, err := parseProtocol(deriveProtocol)
		if err != nil {
			return err
		}
		encKey, err := parseHexFlag("enc-key", deriveEncKeyHex)
		if err != nil {
			return err
		}
		macKey, err := parseHexFlag("mac-key", deriveMacKeyHex)
		if err != nil {
			return err
		}
		var dekKey []byte
		if deriveDekKeyHex != "" {
			dekKey, err = parseHexFlag("dek-key", deriveDekKeyHex)
			if err != nil {
				return err
			}
		}
		hostChallenge, err := parseHexFlag("host-challenge", deriveHostChalHex)
		if err != nil {
			return err
		}
		cardChallenge, err := parseHexFlag("card-challenge", deriveCardChalHex)
		if err != nil {
			return err
		}
		var seqCounter []byte
		if deriveSeqCounterHex != "" {
			seqCounter, err = parseHexFlag("seq", deriveSeqCounterHex)
			if err != nil {
				return err
			}
		}

		secInfo, err := scp.DeriveSessionKeys(proto, encKey, macKey, dekKey, cardChallenge, hostChallenge, seqCounter)
		if err != nil {
			return err
		}

		sessionID := uuid.New()
		logging.LogDerive(sessionID.String(), proto.String(), "")

		cmd.Printf("session-id: %s\n", sessionID)
		cmd.Printf("S_ENC: %s\n", hex.EncodeToString(secInfo.EncryptionSessionKey))
		cmd.Printf("S_MAC: %s\n", hex.EncodeToString(secInfo.CMACSessionKey))
		if len(secInfo.RMACSessionKey) > 0 {
			cmd.Printf("S_RMAC: %s\n", hex.EncodeToString(secInfo.RMACSessionKey))
		}
		if len(secInfo.DataEncryptionSessionKey) > 0 {
			cmd.Printf("S_DEK: %s\n", hex.EncodeToString(secInfo.DataEncryptionSessionKey))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)

	deriveCmd.Flags().StringVar(&deriveProtocol, "protocol", "", "protocol: 01, 02 or 03")
	deriveCmd.Flags().StringVar(&deriveEncKeyHex, "enc-key", "", "static ENC key, hex")
	deriveCmd.Flags().StringVar(&deriveMacKeyHex, "mac-key", "", "static MAC key, hex")
	deriveCmd.Flags().StringVar(&deriveDekKeyHex, "dek-key", "", "static DEK key, hex (SCP02 only)")
	deriveCmd.Flags().StringVar(&deriveCardChalHex, "card-challenge", "", "8-byte card challenge, hex")
	deriveCmd.Flags().StringVar(&deriveHostChalHex, "host-challenge", "", "8-byte host challenge, hex")
	deriveCmd.Flags().StringVar(&deriveSeqCounterHex, "seq", "", "2-byte sequence counter, hex (SCP02 only)")

	for _, name := range []string{"protocol", "enc-key", "mac-key"} {
		if err := deriveCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
