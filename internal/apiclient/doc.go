// Package apiclient provides the typed HTTP client the CLI uses to
// talk to a running lyricsync daemon.
package apiclient
