package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/andrei-cloud/go_hsm/pkg/scp"
	"github.com/spf13/cobra"
)

var (
	cryptoProtocol string
	cryptoSide     string
	cryptoKeyHex   string
	cryptoHostChal string
	cryptoCardChal string
	cryptoSeqCtr   string
	cryptoAID      string
)

// cryptogramCmd computes a host or card authentication cryptogram.
var cryptogramCmd = &cobra.Command{
	Use:   "cryptogram",
	Short: "Compute a host or card cryptogram",
	Long: `Compute the host or card authentication cryptogram for SCP01, SCP02,
or SCP03 from the session ENC (SCP01/02) or MAC (SCP03) key and the session
challenges.`,
	Example: `  scpctl cryptogram --protocol 02 --side card --key 404142434445464748494A4B4C4D4E4F \
    --host-challenge 0102030405060708 --seq 0001 --card-challenge 08090A0B0C0D0E0F`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		proto, err := parseProtocol(cryptoProtocol)
		if err != nil {
			return err
		}
		key, err := parseHexFlag("key", cryptoKeyHex)
		if err != nil {
			return err
		}
		hostChal, err := parseHexFlag("host-challenge", cryptoHostChal)
		if err != nil {
			return err
		}
		cardChal, err := parseHexFlag("card-challenge", cryptoCardChal)
		if err != nil {
			return err
		}

		var cryptogram []byte
		switch {
		case proto.String() == "SCP01" && cryptoSide == "card":
			cryptogram, err = scp.CardCryptogramSCP01(key, hostChal, cardChal)
		case proto.String() == "SCP01" && cryptoSide == "host":
			cryptogram, err = scp.HostCryptogramSCP01(key, hostChal, cardChal)
		case proto.String() == "SCP02" && cryptoSide == "card":
			seqCtr, seqErr := parseHexFlag("seq", cryptoSeqCtr)
			if seqErr != nil {
				return seqErr
			}
			cryptogram, err = scp.CardCryptogramSCP02(key, hostChal, seqCtr, cardChal)
		case proto.String() == "SCP02" && cryptoSide == "host":
			seqCtr, seqErr := parseHexFlag("seq", cryptoSeqCtr)
			if seqErr != nil {
				return seqErr
			}
			cryptogram, err = scp.HostCryptogramSCP02(key, hostChal, seqCtr, cardChal)
		case proto.String() == "SCP03" && cryptoSide == "card":
			cryptogram, err = scp.CardCryptogramSCP03(key, hostChal, cardChal)
		case proto.String() == "SCP03" && cryptoSide == "host":
			cryptogram, err = scp.HostCryptogramSCP03(key, hostChal, cardChal)
		default:
			return fmt.Errorf("--side must be card or host, got %q", cryptoSide)
		}
		if err != nil {
			return err
		}

		cmd.Printf("%s\n", hex.EncodeToString(cryptogram))

		return nil
	},
}

// cryptogramChallengeCmd computes the SCP03 pseudo-random card challenge.
var cryptogramChallengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Derive the SCP03 pseudo-random card challenge",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := parseHexFlag("key", cryptoKeyHex)
		if err != nil {
			return err
		}
		seqCtr, err := parseHexFlag("seq", cryptoSeqCtr)
		if err != nil {
			return err
		}
		aid, err := parseHexFlag("aid", cryptoAID)
		if err != nil {
			return err
		}

		challenge, err := scp.PseudoRandomCardChallengeSCP03(key, seqCtr, aid)
		if err != nil {
			return err
		}

		cmd.Printf("%s\n", hex.EncodeToString(challenge))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cryptogramCmd)
	cryptogramCmd.AddCommand(cryptogramChallengeCmd)

	cryptogramCmd.Flags().StringVar(&cryptoProtocol, "protocol", "", "protocol: 01, 02 or 03")
	cryptogramCmd.Flags().StringVar(&cryptoSide, "side", "", "card or host")
	cryptogramCmd.Flags().StringVar(&cryptoKeyHex, "key", "", "session key, hex")
	cryptogramCmd.Flags().StringVar(&cryptoHostChal, "host-challenge", "", "8-byte host challenge, hex")
	cryptogramCmd.Flags().StringVar(&cryptoCardChal, "card-challenge", "", "8-byte card challenge, hex")
	cryptogramCmd.Flags().StringVar(&cryptoSeqCtr, "seq", "", "2-byte (SCP02) or 3-byte (SCP03 challenge) sequence counter, hex")

	for _, name := range []string{"protocol", "side", "key", "host-challenge", "card-challenge"} {
		if err := cryptogramCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	cryptogramChallengeCmd.Flags().StringVar(&cryptoKeyHex, "key", "", "S_ENC session key, hex")
	cryptogramChallengeCmd.Flags().StringVar(&cryptoSeqCtr, "seq", "", "3-byte sequence counter, hex")
	cryptogramChallengeCmd.Flags().StringVar(&cryptoAID, "aid", "", "invoking AID, hex (<=16 bytes)")

	for _, name := range []string{"key", "seq", "aid"} {
		if err := cryptogramChallengeCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
