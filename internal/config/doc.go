// Package config loads, normalizes, and validates the TOML configuration for
// the LyricSyncAI backend.
//
// Load resolves ~/.config/lyricsync/config.toml, then ./lyricsync.toml,
// decoding over Default() so missing keys keep their defaults. All path
// fields are ~-expanded and made absolute before validation.
package config
