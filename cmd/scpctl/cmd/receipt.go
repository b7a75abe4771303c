package cmd

import (
	"github.com/andrei-cloud/go_hsm/pkg/scp"
	"github.com/spf13/cobra"
)

var (
	receiptCounter  uint16
	receiptUIDHex   string
	receiptAIDHex   string
	receiptLoadAID  string
	receiptAppAID   string
	receiptSdAID    string
	receiptKeyHex   string
	receiptValueHex string
)

// receiptCmd validates GlobalPlatform delete/install/load confirmation receipts.
var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Validate a delete, install, or load confirmation receipt",
}

func loadReceiptInputs(cmd *cobra.Command) (receipt, uid, key []byte, err error) {
	receipt, err = parseHexFlag("receipt", receiptValueHex)
	if err != nil {
		return nil, nil, nil, err
	}
	uid, err = parseHexFlag("uid", receiptUIDHex)
	if err != nil {
		return nil, nil, nil, err
	}
	key, err = parseHexFlag("key", receiptKeyHex)
	if err != nil {
		return nil, nil, nil, err
	}

	return receipt, uid, key, nil
}

var receiptDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Validate a delete confirmation receipt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		receipt, uid, key, err := loadReceiptInputs(cmd)
		if err != nil {
			return err
		}
		aid, err := parseHexFlag("aid", receiptAIDHex)
		if err != nil {
			return err
		}

		if err := scp.ValidateDeleteReceipt(receipt, receiptCounter, uid, aid, key); err != nil {
			return err
		}
		cmd.Println("receipt valid")

		return nil
	},
}

var receiptInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Validate an install confirmation receipt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		receipt, uid, key, err := loadReceiptInputs(cmd)
		if err != nil {
			return err
		}
		loadAID, err := parseHexFlag("load-aid", receiptLoadAID)
		if err != nil {
			return err
		}
		appAID, err := parseHexFlag("app-aid", receiptAppAID)
		if err != nil {
			return err
		}

		if err := scp.ValidateInstallReceipt(receipt, receiptCounter, uid, loadAID, appAID, key); err != nil {
			return err
		}
		cmd.Println("receipt valid")

		return nil
	},
}

var receiptLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Validate a load confirmation receipt",
	RunE: func(cmd *cobra.Command, _ []string) error {
		receipt, uid, key, err := loadReceiptInputs(cmd)
		if err != nil {
			return err
		}
		loadAID, err := parseHexFlag("load-aid", receiptLoadAID)
		if err != nil {
			return err
		}
		sdAID, err := parseHexFlag("sd-aid", receiptSdAID)
		if err != nil {
			return err
		}

		if err := scp.ValidateLoadReceipt(receipt, receiptCounter, uid, loadAID, sdAID, key); err != nil {
			return err
		}
		cmd.Println("receipt valid")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(receiptCmd)
	receiptCmd.AddCommand(receiptDeleteCmd, receiptInstallCmd, receiptLoadCmd)

	for _, c := range []*cobra.Command{receiptDeleteCmd, receiptInstallCmd, receiptLoadCmd} {
		c.Flags().Uint16Var(&receiptCounter, "counter", 0, "confirmation counter")
		c.Flags().StringVar(&receiptUIDHex, "uid", "", "card unique data, hex")
		c.Flags().StringVar(&receiptKeyHex, "key", "", "receipt (DAP/token) key, hex")
		c.Flags().StringVar(&receiptValueHex, "receipt", "", "8-byte receipt to validate, hex")

		for _, name := range []string{"uid", "key", "receipt"} {
			if err := c.MarkFlagRequired(name); err != nil {
				panic(err)
			}
		}
	}

	receiptDeleteCmd.Flags().StringVar(&receiptAIDHex, "aid", "", "deleted application/package AID, hex")
	if err := receiptDeleteCmd.MarkFlagRequired("aid"); err != nil {
		panic(err)
	}

	receiptInstallCmd.Flags().StringVar(&receiptLoadAID, "load-aid", "", "load file AID, hex")
	receiptInstallCmd.Flags().StringVar(&receiptAppAID, "app-aid", "", "installed application AID, hex")
	for _, name := range []string{"load-aid", "app-aid"} {
		if err := receiptInstallCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	receiptLoadCmd.Flags().StringVar(&receiptLoadAID, "load-aid", "", "load file AID, hex")
	receiptLoadCmd.Flags().StringVar(&receiptSdAID, "sd-aid", "", "security domain AID, hex")
	for _, name := range []string{"load-aid", "sd-aid"} {
		if err := receiptLoadCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
