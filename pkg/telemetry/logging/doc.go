// Package logging provides structured logging for the build system.
//
// The Logger wraps log/slog with three output formats (JSON, text, console),
// asynchronous buffered writes, and automatic credential redaction. Logs go
// to stderr by default so plan output on stdout stays machine-readable.
//
// # Basic Usage
//
//	logger, err := logging.New(logging.Config{
//		Level:         "info",
//		Format:        "json",
//		RedactSecrets: true,
//	})
//	if err != nil {
//		return err
//	}
//	defer logger.Shutdown()
//
//	logger.Info("plan emitted", "entries", 12, "revision", rev)
//
// # Context Fields
//
// Resolution runs and pipeline tasks carry their identity through
// context.Context. The With* helpers attach run_id, genome, datatype,
// phase, adapter, and spec_rev fields; the *Context log methods and
// WithContext extract them automatically:
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithGenome(ctx, "GRCm39")
//	logger.InfoContext(ctx, "download complete", "bytes", n)
//
// # Credential Redaction
//
// With RedactSecrets enabled, fields whose names contain password, secret,
// token, access_key, and similar markers are masked down to their first
// four characters. URL-valued fields have embedded userinfo passwords
// masked so download sources with basic auth stay loggable.
package logging
