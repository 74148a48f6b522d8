// Package logging centralizes slog construction and the structured field
// vocabulary shared across the pipeline.
//
// Two handler formats exist: a console handler that renders a headline plus
// bulleted fields for interactive use, and a JSON handler for log files and
// machine consumption. NewFromConfig tees console output with an append-only
// marquee.log in the configured log directory. Per-run captures additionally
// record a JSON trace inside each run's workspace via RunCapture and
// TeeLogger.
//
// Attribute keys that appear in more than one package are declared once here
// (FieldRunID, FieldStage, and friends) so console field selection and
// downstream queries agree on spelling.
package logging
