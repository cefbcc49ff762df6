// Package server exposes uploads, transcription, separation, and export
// over HTTP, and serves the asset root under /uploads/.
package server
