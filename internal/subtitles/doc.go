// Package subtitles renders transcription segments as SRT documents
// and burns them into video frames for export.
package subtitles
