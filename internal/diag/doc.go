// Package diag defines the diagnostic model shared by all pipeline stages.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the preprocessor, the expansion step and the pipeline itself.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering responsibilities live in internal/diagfmt; coordinate remapping
// (generated offsets back to original ones) lives in internal/pipeline.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Span + Positioned – the source.Span pointing to the issue, expressed in
//     original-source coordinates. Positioned=false marks a whole-file
//     diagnostic, or one whose generated position could not be mapped back.
//   - Notes – optional secondary spans/messages for additional context.
//
// A diagnostic never loses its message when position mapping fails: it is
// retained unpositioned instead (informational ones may be dropped).
//
// # Emitting diagnostics
//
// Stages use a diag.Reporter to decouple emission from storage. diag.BagReporter
// aggregates diagnostics into a Bag, which supports sorting, deduplication and
// merging. Keep the data model deterministic so the CLI and the cache can safely
// serialise diagnostics.
package diag
