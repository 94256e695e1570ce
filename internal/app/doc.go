// Package app wires the simulation service together and manages its
// lifecycle.
//
// Initialization order:
//
//	1. Load configuration (environment > YAML file > defaults)
//	2. Initialize logging and OpenTelemetry
//	3. Create the history provider, store, exporter and websocket hub
//	4. Build the simulation engine with its collaborators
//	5. Mount the HTTP routes and middleware
//	6. Start the server and wait for shutdown signals
//
// Run blocks until SIGINT/SIGTERM and then shuts the server down
// gracefully: in-flight requests finish within the configured timeout,
// the websocket hub closes its clients and telemetry is flushed.
package app
