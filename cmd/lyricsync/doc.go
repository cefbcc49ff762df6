// Command lyricsync is the CLI for the LyricSyncAI daemon: uploads,
// transcription, stem separation, subtitle export, and environment checks.
package main
