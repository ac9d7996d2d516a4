// Package feature toggles optional expression rewrites at runtime.
package feature

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Flag names a feature. Rewrite flags use the name of the rule they gate.
type Flag string

const (
	PushDownNegations  Flag = "push_down_negations"
	Canonicalize       Flag = "canonicalize"
	ConstantFolding    Flag = "constant_folding"
	SimplifyPredicates Flag = "simplify_predicates"
	NarrowInPredicates Flag = "narrow_in_predicates"
)

// FlagMetadata contains metadata about a feature flag
type FlagMetadata struct {
	Name         Flag
	Description  string
	DefaultValue bool
	Category     string
	Stability    string // "stable", "beta", "experimental"
}

// Manager manages feature flags
type Manager struct {
	flags    map[Flag]*flagState
	mu       sync.RWMutex
	onChange []func(Flag, bool)
	metadata map[Flag]*FlagMetadata
}

type flagState struct {
	enabled    atomic.Bool
	overridden bool
	envVar     string
}

var globalManager = NewManager()

// NewManager creates a manager with every flag at its default, then applies
// QUANTAIR_FEATURE_* environment overrides.
func NewManager() *Manager {
	m := &Manager{
		flags:    make(map[Flag]*flagState),
		metadata: make(map[Flag]*FlagMetadata),
	}
	m.registerFlags()
	m.loadFromEnvironment()
	return m
}

// Default returns the process wide manager
func Default() *Manager { return globalManager }

func (m *Manager) registerFlags() {
	m.register(&FlagMetadata{
		Name:         PushDownNegations,
		Description:  "Move NOT towards the leaves of predicates",
		DefaultValue: true,
		Category:     "rewrite",
		Stability:    "stable",
	})
	m.register(&FlagMetadata{
		Name:         Canonicalize,
		Description:  "Put constants on the right of comparisons and commutative arithmetic",
		DefaultValue: true,
		Category:     "rewrite",
		Stability:    "stable",
	})
	m.register(&FlagMetadata{
		Name:         ConstantFolding,
		Description:  "Replace constant subtrees by their value",
		DefaultValue: true,
		Category:     "rewrite",
		Stability:    "stable",
	})
	m.register(&FlagMetadata{
		Name:         SimplifyPredicates,
		Description:  "Flatten AND/OR and drop duplicate or identity terms",
		DefaultValue: true,
		Category:     "rewrite",
		Stability:    "stable",
	})
	m.register(&FlagMetadata{
		Name:         NarrowInPredicates,
		Description:  "Drop IN candidates outside known value domains",
		DefaultValue: true,
		Category:     "rewrite",
		Stability:    "beta",
	})
}

func (m *Manager) register(metadata *FlagMetadata) {
	state := &flagState{envVar: flagToEnvVar(metadata.Name)}
	state.enabled.Store(metadata.DefaultValue)

	m.flags[metadata.Name] = state
	m.metadata[metadata.Name] = metadata
}

func (m *Manager) loadFromEnvironment() {
	for _, state := range m.flags {
		if val := os.Getenv(state.envVar); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				state.enabled.Store(enabled)
				state.overridden = true
			}
		}
	}
}

// IsEnabled checks if a feature flag is enabled on the default manager
func IsEnabled(flag Flag) bool {
	return globalManager.IsEnabled(flag)
}

// IsEnabled checks if a feature flag is enabled. Unknown flags are disabled.
func (m *Manager) IsEnabled(flag Flag) bool {
	m.mu.RLock()
	state, exists := m.flags[flag]
	m.mu.RUnlock()

	if !exists {
		return false
	}
	return state.enabled.Load()
}

// Enable enables a feature flag
func (m *Manager) Enable(flag Flag) {
	m.setFlag(flag, true)
}

// Disable disables a feature flag
func (m *Manager) Disable(flag Flag) {
	m.setFlag(flag, false)
}

func (m *Manager) setFlag(flag Flag, enabled bool) {
	m.mu.RLock()
	state, exists := m.flags[flag]
	callbacks := m.onChange
	m.mu.RUnlock()

	if !exists {
		return
	}
	if state.enabled.Swap(enabled) != enabled {
		for _, cb := range callbacks {
			cb(flag, enabled)
		}
	}
}

// OnChange registers a callback run after a flag changes value
func (m *Manager) OnChange(callback func(Flag, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, callback)
}

// GetAll returns all flag states
func (m *Manager) GetAll() map[Flag]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[Flag]bool, len(m.flags))
	for flag, state := range m.flags {
		result[flag] = state.enabled.Load()
	}
	return result
}

// GetMetadata returns metadata for a flag
func (m *Manager) GetMetadata(flag Flag) (*FlagMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metadata, exists := m.metadata[flag]
	return metadata, exists
}

// GetByCategory returns the flags of a category in name order
func (m *Manager) GetByCategory(category string) []Flag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Flag
	for flag, metadata := range m.metadata {
		if metadata.Category == category {
			result = append(result, flag)
		}
	}
	slices.Sort(result)
	return result
}

// Reset resets all flags to their default values
func (m *Manager) Reset() {
	m.mu.RLock()
	flags := make([]Flag, 0, len(m.flags))
	for flag := range m.flags {
		flags = append(flags, flag)
	}
	m.mu.RUnlock()

	for _, flag := range flags {
		m.setFlag(flag, m.metadata[flag].DefaultValue)
		m.mu.Lock()
		m.flags[flag].overridden = false
		m.mu.Unlock()
	}
}

func flagToEnvVar(flag Flag) string {
	return "QUANTAIR_FEATURE_" + strings.ToUpper(string(flag))
}

// DebugString lists every flag grouped by category
func (m *Manager) DebugString() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := make(map[string][]Flag)
	for flag, metadata := range m.metadata {
		categories[metadata.Category] = append(categories[metadata.Category], flag)
	}
	names := make([]string, 0, len(categories))
	for category := range categories {
		names = append(names, category)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString("Feature Flags:\n")
	for _, category := range names {
		flags := categories[category]
		slices.Sort(flags)
		fmt.Fprintf(&b, "\n%s:\n", category)
		for _, flag := range flags {
			state := m.flags[flag]
			metadata := m.metadata[flag]

			status := "disabled"
			if state.enabled.Load() {
				status = "enabled"
			}
			override := ""
			if state.overridden {
				override = " (overridden)"
			}
			fmt.Fprintf(&b, "  %-36s: %-8s [%s]%s - %s\n",
				flag, status, metadata.Stability, override, metadata.Description)
		}
	}
	return b.String()
}
