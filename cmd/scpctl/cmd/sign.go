package cmd

import (
	"encoding/hex"

	"github.com/andrei-cloud/go_hsm/pkg/scp"
	"github.com/spf13/cobra"
)

var (
	signKeyPath    string
	signPassphrase string
	signMessageHex string
	signPubKeyPath string
	signSigHex     string
)

// signCmd produces an RSA-SHA1 PKCS#1 v1.5 signature over a message.
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a message with an RSA private key",
	Long: `Load a PEM-encoded RSA private key (optionally passphrase-encrypted,
1024 bits / 128 bytes or smaller) and sign msg's SHA-1 digest with PKCS#1 v1.5
padding.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		keyPath := signKeyPath
		if keyPath == "" && cfg != nil {
			keyPath = cfg.Keys.PEMPath
		}

		var passphrase []byte
		if signPassphrase != "" {
			passphrase = []byte(signPassphrase)
		}

		key, err := scp.ReadRSAPrivateKey(keyPath, passphrase)
		if err != nil {
			return err
		}

		msg, err := parseHexFlag("message", signMessageHex)
		if err != nil {
			return err
		}

		sig, err := scp.SignWithRSA(key, msg)
		if err != nil {
			return err
		}

		cmd.Println(hex.EncodeToString(sig))

		return nil
	},
}

// signVerifyCmd checks an RSA-SHA1 PKCS#1 v1.5 signature against a public key.
var signVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an RSA-SHA1 signature against a public key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pub, err := scp.ReadRSAPublicKey(signPubKeyPath)
		if err != nil {
			return err
		}
		msg, err := parseHexFlag("message", signMessageHex)
		if err != nil {
			return err
		}
		sig, err := parseHexFlag("signature", signSigHex)
		if err != nil {
			return err
		}

		if err := scp.VerifyRSA(pub, msg, sig); err != nil {
			return err
		}
		cmd.Println("signature valid")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.AddCommand(signVerifyCmd)

	signCmd.Flags().StringVar(&signKeyPath, "key", "", "path to PEM RSA private key (defaults to keys.pempath)")
	signCmd.Flags().StringVar(&signPassphrase, "passphrase", "", "passphrase for an encrypted PEM block")
	signCmd.Flags().StringVar(&signMessageHex, "message", "", "message to sign, hex")

	if err := signCmd.MarkFlagRequired("message"); err != nil {
		panic(err)
	}

	signVerifyCmd.Flags().StringVar(&signPubKeyPath, "pubkey", "", "path to PEM RSA public key")
	signVerifyCmd.Flags().StringVar(&signMessageHex, "message", "", "message that was signed, hex")
	signVerifyCmd.Flags().StringVar(&signSigHex, "signature", "", "signature to verify, hex")

	for _, name := range []string{"pubkey", "message", "signature"} {
		if err := signVerifyCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
