package services

import (
	"errors"
	"fmt"
	"strings"
)

// Stage failure taxonomy. Every stage reports failure as a wrapped sentinel
// rather than letting a panic or bare error cross into the orchestrator, so
// the transport layer can classify failures without string matching.
var (
	// ErrResourceMissing marks an absent input file, model file, or index file.
	ErrResourceMissing = errors.New("resource missing")
	// ErrDecode marks audio or video that could not be read.
	ErrDecode = errors.New("decode failure")
	// ErrInference marks an external model that failed or produced no usable output.
	ErrInference = errors.New("inference failure")
	// ErrEncode marks output muxing or writing failures.
	ErrEncode = errors.New("encode failure")
	// ErrNoSource marks an exhausted artifact fallback chain.
	ErrNoSource = errors.New("no source available")
	// ErrConfiguration marks missing or invalid wiring.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks rejected caller input.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrInference
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage reduces a stage error to a single human-readable reason for
// transport responses.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNoSource):
		return "no usable audio source found for this asset"
	case errors.Is(err, ErrResourceMissing):
		return "a required file or model is missing"
	case errors.Is(err, ErrDecode):
		return "the media file could not be read"
	case errors.Is(err, ErrInference):
		return "the model failed to produce output"
	case errors.Is(err, ErrEncode):
		return "writing the output file failed"
	case errors.Is(err, ErrValidation):
		return "the request was invalid"
	case errors.Is(err, ErrConfiguration):
		return "the server is not configured for this operation"
	default:
		return err.Error()
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
