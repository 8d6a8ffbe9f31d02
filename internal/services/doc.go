// Package services defines shared utilities consumed by the pipeline stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and page URLs for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     messages consistent across fetch, parse, and assembly code.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
