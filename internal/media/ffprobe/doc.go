// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Uploads are validated through Inspect before a run starts: the
// pipeline rejects containers with no audio stream and uses the
// reported duration and sample rate to size downstream work.
package ffprobe
