// Command lyricsyncd runs the LyricSyncAI daemon: the background media
// pipeline and its HTTP API.
package main
