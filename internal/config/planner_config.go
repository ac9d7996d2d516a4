package config

import (
	"fmt"
	"os"
	"strconv"
)

// PlannerConfig holds the tuning knobs of the expression engine.
type PlannerConfig struct {
	// FilterConjunctionIndependenceFactor interpolates between fully
	// correlated (0) and fully independent (1) conjuncts.
	FilterConjunctionIndependenceFactor float64 `json:"filter_conjunction_independence_factor" yaml:"filter_conjunction_independence_factor"`

	// DefaultFilterFactorEnabled makes unestimated filters apply
	// UnknownFilterCoefficient instead of yielding unknown statistics.
	DefaultFilterFactorEnabled bool    `json:"default_filter_factor_enabled" yaml:"default_filter_factor_enabled"`
	UnknownFilterCoefficient   float64 `json:"unknown_filter_coefficient" yaml:"unknown_filter_coefficient"`

	// CoercionCacheSize bounds the number of cached literal coercions.
	CoercionCacheSize int `json:"coercion_cache_size" yaml:"coercion_cache_size"`
}

// DefaultPlannerConfig returns default planner settings.
func DefaultPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		FilterConjunctionIndependenceFactor: 0.75,
		DefaultFilterFactorEnabled:          false,
		UnknownFilterCoefficient:            0.9,
		CoercionCacheSize:                   1000,
	}
}

func (pc *PlannerConfig) applyEnv() {
	if val := os.Getenv("QUANTAIR_FILTER_CONJUNCTION_INDEPENDENCE_FACTOR"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			pc.FilterConjunctionIndependenceFactor = f
		}
	}

	if val := os.Getenv("QUANTAIR_DEFAULT_FILTER_FACTOR_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			pc.DefaultFilterFactorEnabled = enabled
		}
	}

	if val := os.Getenv("QUANTAIR_UNKNOWN_FILTER_COEFFICIENT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			pc.UnknownFilterCoefficient = f
		}
	}

	if val := os.Getenv("QUANTAIR_COERCION_CACHE_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			pc.CoercionCacheSize = size
		}
	}
}

// Validate checks the planner settings.
func (pc *PlannerConfig) Validate() error {
	if pc.FilterConjunctionIndependenceFactor < 0 || pc.FilterConjunctionIndependenceFactor > 1 {
		return fmt.Errorf("filter_conjunction_independence_factor must be in [0, 1], got %v", pc.FilterConjunctionIndependenceFactor)
	}
	if pc.UnknownFilterCoefficient < 0 || pc.UnknownFilterCoefficient > 1 {
		return fmt.Errorf("unknown_filter_coefficient must be in [0, 1], got %v", pc.UnknownFilterCoefficient)
	}
	if pc.CoercionCacheSize <= 0 {
		return fmt.Errorf("coercion_cache_size must be positive, got %d", pc.CoercionCacheSize)
	}
	return nil
}
