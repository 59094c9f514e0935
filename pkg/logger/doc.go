// Package logger builds *slog.Logger instances for the sign-in flow and keeps
// attribute naming consistent across its components.
//
// New creates a logger from functional options: output format (text or json),
// minimum level and static attributes. Attributes stored on a context with
// ContextWith are appended to every record logged through that context.
// Environment presets (WithDevelopment, WithProduction, WithEnvironment)
// pick sensible defaults.
//
// Helper constructors in attr.go return ready-made slog.Attr values. Helpers
// that take an error or an optional identifier return an empty attribute for
// nil input so call sites never need a nil check:
//
//	log.LogAttrs(ctx, slog.LevelWarn, "snapshot save failed",
//	    logger.Component("phoneauth.store"),
//	    logger.Error(err),
//	)
//
// Phone numbers are never logged verbatim; use Phone which keeps only the
// dial prefix and the last two digits.
package logger
