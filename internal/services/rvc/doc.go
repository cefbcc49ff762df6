// Package rvc wraps the rvc-python CLI for AI voice conversion.
//
// Conversion is the only optional stage in the pipeline: a run whose
// conversion fails still ships with the original vocals, so errors
// here are reported but never fail the run.
package rvc
