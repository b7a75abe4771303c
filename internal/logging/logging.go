package logging

import (
	"encoding/hex"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the zerolog logger with the specified debug mode and output format.
func InitLogger(debug, human bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano                 // always initialize base logger with timestamp.
	base := zerolog.New(os.Stdout).With().Timestamp().Logger() // initialize base logger.
	if human {
		log.Logger = base.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339Nano,
		}) // select output format.
	} else {
		log.Logger = base // use JSON logger.
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel) // set debug level.
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel) // set info level.
	}
}

// LogWrap logs a completed Wrap call with structured fields.
func LogWrap(sessionID, protocol string, plainAPDU, wrappedAPDU []byte) {
	log.Info().
		Str("event", "apdu_wrapped").
		Str("session_id", sessionID).
		Str("protocol", protocol).
		Str("plain_hex", hex.EncodeToString(plainAPDU)).
		Str("wrapped_hex", hex.EncodeToString(wrappedAPDU)).
		Msg("wrapped apdu")
}

// LogDerive logs a completed session-key derivation with structured fields.
// Session keys themselves are never logged, only the session correlation id.
func LogDerive(sessionID, protocol, implOption string) {
	log.Info().
		Str("event", "session_keys_derived").
		Str("session_id", sessionID).
		Str("protocol", protocol).
		Str("impl_option", implOption).
		Msg("derived session keys")
}
