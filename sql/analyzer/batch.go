package analyzer

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

// RuleFunc is the function to be applied in a rule. It returns whether
// the node was changed.
type RuleFunc func(*sql.Context, *Analyzer, sql.Node) (sql.Node, transform.TreeIdentity, error)

// Rule to transform nodes.
type Rule struct {
	// Name of the rule.
	Name string
	// Apply transforms a node.
	Apply RuleFunc
}

// Batch executes a set of rules a specific number of times.
// When this number of times is reached, the actual node
// and ErrMaxAnalysisIters is returned.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []Rule
}

// Eval executes the rules of the batch until none of them changes the
// node, at most the specified number of times. If max number of iterations
// is reached, this method will return the actual processed Node and
// ErrMaxAnalysisIters error.
func (b *Batch) Eval(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	if b.Iterations == 0 || len(b.Rules) == 0 {
		return n, transform.SameTree, nil
	}

	cur := n
	allSame := transform.SameTree
	for i := 0; i < b.Iterations; i++ {
		var same transform.TreeIdentity
		var err error
		cur, same, err = b.evalOnce(ctx, a, cur)
		if err != nil {
			return nil, transform.SameTree, err
		}

		allSame = allSame && same
		if same || b.Iterations == 1 {
			return cur, allSame, nil
		}
	}

	return cur, allSame, ErrMaxAnalysisIters.New(b.Iterations)
}

func (b *Batch) evalOnce(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, transform.TreeIdentity, error) {
	result := n
	allSame := transform.SameTree
	for _, rule := range b.Rules {
		if err := ctx.Err(); err != nil {
			return nil, transform.SameTree, err
		}

		a.PushDebugContext(rule.Name)
		var same transform.TreeIdentity
		var err error
		result, same, err = rule.Apply(ctx, a, result)
		a.PopDebugContext()
		if err != nil {
			return nil, transform.SameTree, err
		}

		if !same {
			a.Log("rule %s changed the plan", rule.Name)
			a.LogNode(result)
		}
		allSame = allSame && same
	}

	return result, allSame, nil
}
