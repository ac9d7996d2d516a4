package planner

import (
	"log/slog"

	"github.com/dshills/QuantaIR/internal/catalog"
	"github.com/dshills/QuantaIR/internal/log"
	"github.com/dshills/QuantaIR/internal/sql/interpreter"
	"github.com/dshills/QuantaIR/internal/sql/ir"
)

// OptimizationRule represents a rule that transforms predicates.
type OptimizationRule interface {
	// Name identifies the rule in logs
	Name() string

	// Apply rewrites e. The returned expression is e itself when the rule
	// does not apply.
	Apply(symbols SymbolTypes, e ir.Expression) (ir.Expression, error)
}

// Optimizer applies optimization rules to predicates.
type Optimizer struct {
	rules  []OptimizationRule
	logger log.Logger
}

// NewOptimizer creates an optimizer with the default rules followed by extra.
func NewOptimizer(cat catalog.Catalog, in *interpreter.Interpreter, logger log.Logger, extra ...OptimizationRule) *Optimizer {
	return NewOptimizerWithRules(logger, append(DefaultRules(cat, in), extra...)...)
}

// DefaultRules returns the rules of NewOptimizer in the order they run
func DefaultRules(cat catalog.Catalog, in *interpreter.Interpreter) []OptimizationRule {
	return []OptimizationRule{
		&PushDownNegationsRule{pusher: NewNegationPusher(cat)},
		&CanonicalizeRule{canonicalizer: NewCanonicalizer(cat)},
		&ConstantFolding{interpreter: in},
		&SimplifyPredicates{},
	}
}

// NewOptimizerWithRules creates an optimizer running the given rules in order.
func NewOptimizerWithRules(logger log.Logger, rules ...OptimizationRule) *Optimizer {
	return &Optimizer{rules: rules, logger: log.OrDefault(logger)}
}

// Optimize applies all rules until no more changes occur.
func (o *Optimizer) Optimize(symbols SymbolTypes, e ir.Expression) (ir.Expression, error) {
	maxIterations := 20

	// seen detects rule sets that cycle between equivalent forms
	seen := ir.NewExpressionSet()
	for i := 0; i < maxIterations; i++ {
		if !seen.Add(e) {
			break
		}
		changed := false
		for _, rule := range o.rules {
			next, err := rule.Apply(symbols, e)
			if err != nil {
				return nil, err
			}
			if next != e && !ir.Equal(next, e) {
				if o.logger.Enabled(slog.LevelDebug) {
					o.logger.Debug("rule applied",
						log.String("rule", rule.Name()),
						log.Redactable("before", e),
						log.Redactable("after", next))
				}
				e = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return e, nil
}

// PushDownNegationsRule moves NOT towards the leaves
type PushDownNegationsRule struct {
	pusher *NegationPusher
}

func (r *PushDownNegationsRule) Name() string { return "push_down_negations" }

func (r *PushDownNegationsRule) Apply(symbols SymbolTypes, e ir.Expression) (ir.Expression, error) {
	return r.pusher.PushDownNegations(symbols, e)
}

// CanonicalizeRule puts constants on the right
type CanonicalizeRule struct {
	canonicalizer *Canonicalizer
}

func (r *CanonicalizeRule) Name() string { return "canonicalize" }

func (r *CanonicalizeRule) Apply(symbols SymbolTypes, e ir.Expression) (ir.Expression, error) {
	return r.canonicalizer.Canonicalize(symbols, e)
}

// ConstantFolding replaces constant subtrees that evaluate without error by
// their value.
type ConstantFolding struct {
	interpreter *interpreter.Interpreter
}

func NewConstantFolding(in *interpreter.Interpreter) *ConstantFolding {
	return &ConstantFolding{interpreter: in}
}

func (r *ConstantFolding) Name() string { return "constant_folding" }

func (r *ConstantFolding) Apply(_ SymbolTypes, e ir.Expression) (ir.Expression, error) {
	return ir.RewriteWith(ir.Rules[struct{}]{
		Expression: func(node ir.Expression, _ struct{}, _ *ir.TreeRewriter[struct{}]) ir.Expression {
			if folded, ok := r.interpreter.Fold(node); ok {
				return folded
			}
			return nil
		},
	}, e), nil
}

// SimplifyPredicates flattens nested AND and OR, removes duplicate
// deterministic terms and folds identity and absorbing literals.
type SimplifyPredicates struct{}

func (r *SimplifyPredicates) Name() string { return "simplify_predicates" }

func (r *SimplifyPredicates) Apply(_ SymbolTypes, e ir.Expression) (ir.Expression, error) {
	return ir.RewriteWith(ir.Rules[struct{}]{
		Logical: func(node *ir.Logical, ctx struct{}, tr *ir.TreeRewriter[struct{}]) ir.Expression {
			terms := tr.RewriteAll(node.Terms, ctx)
			return ir.CombinePredicates(node.Operator, ir.DefaultDeterminism, terms)
		},
	}, e), nil
}

// NarrowInPredicatesRule drops IN candidates outside known value domains
type NarrowInPredicatesRule struct {
	Domains map[string]ValueDomain
}

func (r *NarrowInPredicatesRule) Name() string { return "narrow_in_predicates" }

func (r *NarrowInPredicatesRule) Apply(_ SymbolTypes, e ir.Expression) (ir.Expression, error) {
	return NarrowInPredicates(e, r.Domains), nil
}
