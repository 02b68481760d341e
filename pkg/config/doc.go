// Package config loads and validates the agent's YAML configuration.
//
// Configuration is loaded once at startup from a YAML file, defaults are
// applied for anything unset, and environment variables of the form
// ARGUS_SECTION_FIELD override file values (e.g. ARGUS_CATALOG_PATH).
//
// The hook catalog itself is a separate document handled by pkg/catalog;
// this package only carries the pointer to it and the agent's operational
// settings.
package config
