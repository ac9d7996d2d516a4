// Package engine wires the catalog, constant interpreter, planner passes and
// filter statistics calculator behind one object built from configuration.
package engine

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/config"
	"github.com/dshills/QuantaIR/internal/errors"
	"github.com/dshills/QuantaIR/internal/feature"
	"github.com/dshills/QuantaIR/internal/log"
	"github.com/dshills/QuantaIR/internal/sql/interpreter"
	"github.com/dshills/QuantaIR/internal/sql/ir"
	"github.com/dshills/QuantaIR/internal/sql/planner"
	"github.com/dshills/QuantaIR/internal/sql/stats"
)

// Engine is safe for concurrent use once built.
type Engine struct {
	config  config.Config
	catalog catalog.Catalog
	logger   log.Logger
	domains  map[string]planner.ValueDomain
	features *feature.Manager

	interpreter   *interpreter.Interpreter
	typeAnalyzer  *planner.TypeAnalyzer
	canonicalizer *planner.Canonicalizer
	negations     *planner.NegationPusher
	equivalence   *planner.ExpressionEquivalence
	rules         []planner.OptimizationRule
	optimizer     atomic.Pointer[planner.Optimizer]
	filterStats   *stats.FilterStatsCalculator
}

// Option customizes an Engine
type Option func(*Engine)

// WithLogger replaces the logger built from the log configuration
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithDomains sets the known value domains used by Optimize to narrow IN
// lists
func WithDomains(domains map[string]planner.ValueDomain) Option {
	return func(e *Engine) { e.domains = domains }
}

// WithFeatures selects the flags that enable optimizer rules. The default
// is feature.Default().
func WithFeatures(m *feature.Manager) Option {
	return func(e *Engine) { e.features = m }
}

// New builds an engine. cfg is expected to be valid; see config.Validate.
// Expression redaction in logs follows cfg.Log.Redact process wide.
func New(cfg config.Config, cat catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{config: cfg, catalog: cat}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.FromConfig(cfg.Log)
	}
	if e.features == nil {
		e.features = feature.Default()
	}
	log.SetRedaction(cfg.Log.Redact)

	e.interpreter = interpreter.New(interpreter.NewCoercionCache(cfg.Planner.CoercionCacheSize, e.logger))
	e.typeAnalyzer = planner.NewTypeAnalyzer(cat)
	e.canonicalizer = planner.NewCanonicalizer(cat)
	e.negations = planner.NewNegationPusher(cat)
	e.equivalence = planner.NewExpressionEquivalence(cat)

	e.rules = planner.DefaultRules(cat, e.interpreter)
	if len(e.domains) > 0 {
		e.rules = append(e.rules, &planner.NarrowInPredicatesRule{Domains: e.domains})
	}
	e.optimizer.Store(e.buildOptimizer())
	e.features.OnChange(func(feature.Flag, bool) {
		e.optimizer.Store(e.buildOptimizer())
	})
	e.filterStats = stats.NewFilterStatsCalculator(e.interpreter, cfg.Planner, e.logger)

	e.logger.Debug("engine created",
		log.Float64("independence_factor", cfg.Planner.FilterConjunctionIndependenceFactor),
		log.Int("coercion_cache_size", cfg.Planner.CoercionCacheSize),
		log.Int("domains", len(e.domains)))
	return e
}

// buildOptimizer keeps the rules whose feature flag is enabled. A rule is
// gated by the flag named after it.
func (e *Engine) buildOptimizer() *planner.Optimizer {
	var enabled []planner.OptimizationRule
	for _, rule := range e.rules {
		if e.features.IsEnabled(feature.Flag(rule.Name())) {
			enabled = append(enabled, rule)
		}
	}
	return planner.NewOptimizerWithRules(e.logger, enabled...)
}

// Config returns the configuration the engine was built from
func (e *Engine) Config() config.Config { return e.config }

// Catalog returns the function catalog
func (e *Engine) Catalog() catalog.Catalog { return e.catalog }

// Interpreter returns the constant interpreter shared by all passes
func (e *Engine) Interpreter() *interpreter.Interpreter { return e.interpreter }

// GetTypes returns the type of every node of exprs
func (e *Engine) GetTypes(symbols planner.SymbolTypes, exprs ...ir.Expression) (planner.ExpressionTypes, error) {
	return e.typeAnalyzer.GetTypes(symbols, exprs...)
}

// Canonicalize rewrites expr into canonical form
func (e *Engine) Canonicalize(symbols planner.SymbolTypes, expr ir.Expression) (ir.Expression, error) {
	return e.canonicalizer.Canonicalize(symbols, expr)
}

// PushDownNegations moves NOT towards the leaves of expr
func (e *Engine) PushDownNegations(symbols planner.SymbolTypes, expr ir.Expression) (ir.Expression, error) {
	return e.negations.PushDownNegations(symbols, expr)
}

// AreEquivalent reports whether a and b are equivalent
func (e *Engine) AreEquivalent(symbols planner.SymbolTypes, a, b ir.Expression) (bool, error) {
	return e.equivalence.AreExpressionsEquivalent(symbols, a, b)
}

// Optimize runs the enabled rewrite rules to a fixed point
func (e *Engine) Optimize(symbols planner.SymbolTypes, expr ir.Expression) (ir.Expression, error) {
	return e.optimizer.Load().Optimize(symbols, expr)
}

// FilterStats estimates the output of filtering input by predicate
func (e *Engine) FilterStats(input stats.PlanNodeStatsEstimate, predicate ir.Expression, symbols planner.SymbolTypes) (stats.PlanNodeStatsEstimate, error) {
	return e.filterStats.FilterStats(input, predicate, symbols)
}

// CombineConjuncts ANDs exprs into one predicate, flattening nested ANDs and
// dropping TRUE terms and duplicate deterministic terms
func (e *Engine) CombineConjuncts(exprs ...ir.Expression) (result ir.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, errors.Recover(r)
		}
	}()
	return ir.CombineConjuncts(exprs...), nil
}

// Collectors returns the metrics collectors of the engine
func (e *Engine) Collectors() []prometheus.Collector {
	return []prometheus.Collector{e.interpreter.Cache()}
}
