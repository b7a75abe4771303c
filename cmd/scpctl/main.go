// Command scpctl drives the GlobalPlatform secure channel engine from the
// command line: session key derivation, cryptogram generation, APDU
// wrapping, receipt and R-MAC validation, and RSA signing.
package main

import (
	"os"

	"github.com/andrei-cloud/go_hsm/cmd/scpctl/cmd"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("scpctl failed")
		os.Exit(1)
	}
}
