// Package logging builds the agent's structured slog logger from
// configuration. It is also the diagnostic-log collaborator every component
// writes error and warning lines to.
package logging
