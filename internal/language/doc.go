// Package language normalizes transcription language hints.
//
// Callers pass hints in several shapes (ISO codes, English words,
// mixed case); the conversions are consolidated here so the API layer
// and the transcription service agree on what reaches the engine.
package language
