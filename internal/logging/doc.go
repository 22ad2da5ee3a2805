// Package logging provides structured logging for kpowire.
//
// This package wraps a global zap logger that is silent unless a level is
// given on the command line or through KPOWIRE_LOG_LEVEL.
//
// # Log Levels
//
//   - Debug: every encoded and decoded message, with a hex dump
//   - Info: command progress
//   - Warn: encode and decode failures
//   - Error: fatal command errors
//
// # Structured Logging
//
//	logging.Info("Capture validated",
//	    zap.String("file", path),
//	    zap.Int("messages", stats.Total),
//	)
//
// Codec components take a *zap.Logger (normally GetLogger()) and log through
// LogMessage and LogCodecError so the field names stay consistent.
//
// # Configuration
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output is written to stderr in console format.
package logging
