package catalog

import (
	"fmt"
	"strings"
)

// Hook identifies one member to intercept and the provider family whose
// response shape its results follow.
type Hook struct {
	// Provider is the provider family name (e.g. "openai", "gemini").
	// When empty, the container name is recorded instead.
	Provider string `yaml:"provider"`

	// Container is the name of the unit holding the target type.
	Container string `yaml:"container"`

	// Type is the target type's short or fully-qualified name.
	Type string `yaml:"type"`

	// Member is the member name to hook.
	Member string `yaml:"member"`

	// Signature holds the parameter-type signatures for overload
	// disambiguation. May be empty, in which case the richest overload is
	// selected.
	Signature []string `yaml:"signature"`

	// Operation overrides the operation name recorded for this hook.
	// Defaults to "<type>.<member>".
	Operation string `yaml:"operation"`
}

// OperationName returns the operation label recorded for calls through this
// hook.
func (h *Hook) OperationName() string {
	if h.Operation != "" {
		return h.Operation
	}
	return h.Type + "." + h.Member
}

// key identifies a hook for duplicate detection.
func (h *Hook) key() string {
	return strings.Join(append([]string{h.Container, h.Type, h.Member}, h.Signature...), "|")
}

// Validate checks one hook entry for completeness.
func (h *Hook) Validate() error {
	if h.Container == "" {
		return fmt.Errorf("hook %s: container is required", h.OperationName())
	}
	if strings.Contains(h.Container, "..") {
		return fmt.Errorf("hook %s: container name must not contain a parent-directory sequence", h.OperationName())
	}
	if h.Type == "" {
		return fmt.Errorf("hook (container %s): type is required", h.Container)
	}
	if h.Member == "" {
		return fmt.Errorf("hook %s: member is required", h.Type)
	}
	return nil
}

// Catalog is the static table of members to hook, iterated once during
// setup.
type Catalog struct {
	Hooks []Hook `yaml:"hooks"`
}

// Validate checks every hook and rejects duplicates.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Hooks))
	for i := range c.Hooks {
		h := &c.Hooks[i]
		if err := h.Validate(); err != nil {
			return err
		}
		k := h.key()
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate hook %s in container %s", h.OperationName(), h.Container)
		}
		seen[k] = struct{}{}
	}
	return nil
}
