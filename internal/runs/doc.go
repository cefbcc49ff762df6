// Package runs persists pipeline run state and the per-asset artifact
// manifest in SQLite.
//
// A run walks uploaded → audio_extracted → separated → [converted] → ready,
// with failed as the terminal error state. Conversion is best-effort: a run
// whose conversion was skipped still reaches ready, with the outcome and the
// skip reason recorded on the row. The artifact manifest mirrors what each
// stage wrote to disk (path, checksum, size) for auditability; resolution
// still goes through the filesystem.
package runs
