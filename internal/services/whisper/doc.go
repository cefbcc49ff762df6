// Package whisper wraps the whisper CLI for lyric transcription.
//
// The engine's verbose progress output is parsed line by line, which
// is what makes live streaming possible: segments reach the caller as
// the engine prints them instead of after the full file finishes.
package whisper
