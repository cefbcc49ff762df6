// Package wavio reads and writes the 16-bit PCM WAV subset the
// separator emits. The mixer uses it to blend stems in-process when
// both inputs share a sample layout, avoiding an ffmpeg round trip.
package wavio
