// Package services defines shared utilities consumed by the pipeline stages and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item identifiers, stage names, and run
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures carry a
//     classification (malformed input, navigation, mismatch, missing manifest)
//     that callers test with errors.Is.
//   - A fixed-delay Retry loop used wherever the portal needs time to render.
//
// Use these helpers when wiring new stage logic so error handling and retries
// stay uniform across the pipeline.
package services
