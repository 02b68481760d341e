// Package catalog manages the hook catalog: the static table of
// (container, type, member, signature) tuples the agent intercepts, together
// with the provider family each tuple's results belong to.
//
// Catalogs are YAML documents loaded once during setup. Two sources are
// supported: a local file (optionally hot-reloaded through fsnotify) and a
// git repository for fleets that distribute catalogs the way they distribute
// policy.
package catalog
