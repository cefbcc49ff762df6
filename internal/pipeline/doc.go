// Package pipeline drives uploaded videos through audio extraction,
// vocal separation, and optional AI voice conversion.
//
// Transcription and export are not stages: they run on demand against
// whatever artifacts a run has produced, so a run is "ready" once its
// stems exist.
package pipeline
