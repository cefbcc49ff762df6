// Package preflight provides readiness checks for the filesystem paths
// the pipeline writes to.
//
// These checks run in two contexts:
//   - The pipeline manager calls RunAll before starting a run. If any
//     check fails, the run is refused instead of failing mid-stage.
//   - The CLI "lyricsync status" command renders individual results to
//     show operators what needs fixing.
package preflight
