// Package assets encodes the artifact naming convention shared by every
// pipeline stage and the resolver that picks the best available audio source
// for an asset.
//
// All derived files are keyed off the original upload's stem: <stem>.mp3 for
// extracted audio, separated/<stem>_vocals.wav and
// separated/<stem>_no_vocals.wav for stems, ai_cover_<stem>.wav for the
// converted vocal, mixed_export_<stem>.mp3 for the export audio bed,
// <stem>.srt for subtitles, and exported_<name> for the burned video. A
// file's presence means the producing stage completed; there is no separate
// manifest on disk (the runs store records one for observability, but the
// filesystem stays authoritative).
package assets
