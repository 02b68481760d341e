// Package locator resolves (container, type, member, signature) tuples to
// invocable member handles without compile-time knowledge of the target.
//
// A container is a loadable unit of code identified by name. Resolution
// consults already-loaded containers first (host-registered symbol tables),
// then attempts to load a Go plugin named after the container from the
// running executable's directory. Container and type resolution are cached
// process-wide; member selection is recomputed on every lookup because the
// member scan is cheap next to container loading.
//
// Member selection prefers the overload whose parameter-type signature
// exactly matches the request. When no exact match exists it falls back to
// the overload with the most parameters: overload sets that wrap a common
// implementation typically funnel through the richest-parameter overload, so
// the fallback keeps hooks landing on the real work as library versions
// shift signatures.
package locator
