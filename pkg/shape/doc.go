// Package shape flattens arbitrary runtime values into name→value field maps.
//
// The agent has no compile-time knowledge of the SDK types it instruments, so
// every extraction step operates on a flat map of readable members produced
// here. String-keyed maps (the shape of JSON-decoded payloads) take a fast
// path with no reflection; struct values are walked field by field.
//
// One integrated SDK family carries its payload in a member named "Value"
// that sits outside the public surface. FieldMap probes for that member at
// reduced visibility and records it under the conventional "Value" key,
// overwriting any public member of the same name.
package shape
