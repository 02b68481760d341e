// Argus is a runtime instrumentation agent for AI SDK usage telemetry.
//
// It resolves a catalog of provider SDK hooks at runtime, attaches
// interception callbacks through a host-supplied interceptor, and extracts
// usage telemetry (provider, model, token counts) from intercepted call
// results without any compile-time dependency on the target SDKs.
//
// Usage:
//
//	# Run the diagnostic agent with default configuration
//	argus run
//
//	# Run with a custom configuration file
//	argus run --config /path/to/config.yaml
//
//	# Validate a hook catalog
//	argus validate --catalog catalog.yaml
//
//	# Show version information
//	argus version
package main

func main() {
	Execute()
}
