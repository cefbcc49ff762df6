// Package services defines shared utilities consumed by the pipeline stage
// handlers and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, asset stems, stage names, and
//     correlation identifiers for logging.
//   - The stage failure taxonomy plus the Wrap helper that keep failure
//     classification uniform between the orchestrator and the transport layer.
package services
