// Package demucs wraps the demucs CLI for two-stem vocal separation.
package demucs
