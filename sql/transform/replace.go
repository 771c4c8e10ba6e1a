package transform

import (
	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

// ReplaceFunc returns the replacement of an occurrence of an expression.
// It receives the original occurrence and the same occurrence rebuilt with
// its children already replaced.
type ReplaceFunc func(original, rewritten sql.Expression) (sql.Expression, error)

// Replacements maps occurrences of expressions to their replacements.
// Occurrences are identified by reference, not by value, so two equal
// expressions at different places of a tree can be replaced differently.
type Replacements struct {
	funcs map[sql.Expression]ReplaceFunc
}

// NewReplacements returns an empty set of replacements.
func NewReplacements() *Replacements {
	return &Replacements{funcs: make(map[sql.Expression]ReplaceFunc)}
}

// Add replaces the given occurrence with the result of f.
func (r *Replacements) Add(occurrence sql.Expression, f ReplaceFunc) {
	r.funcs[occurrence] = f
}

// AddExpr replaces the given occurrence with replacement, whatever its
// children were replaced with.
func (r *Replacements) AddExpr(occurrence, replacement sql.Expression) {
	r.Add(occurrence, func(sql.Expression, sql.Expression) (sql.Expression, error) {
		return replacement, nil
	})
}

// Len returns the number of occurrences to replace.
func (r *Replacements) Len() int {
	if r == nil {
		return 0
	}
	return len(r.funcs)
}

// Apply replaces the occurrences in every expression of the list, in place.
func (r *Replacements) Apply(exprs []sql.Expression) (TreeIdentity, error) {
	same := SameTree
	for i, e := range exprs {
		ne, s, err := Replace(e, r)
		if err != nil {
			return SameTree, err
		}
		if !s {
			exprs[i] = ne
			same = NewTree
		}
	}
	return same, nil
}

// Replace rewrites the expression replacing the given occurrences. Children
// are rewritten first, and a parent is only rebuilt if any of its children
// changed.
func Replace(e sql.Expression, r *Replacements) (sql.Expression, TreeIdentity, error) {
	if r.Len() == 0 {
		return e, SameTree, nil
	}

	children := e.Children()
	var newChildren []sql.Expression
	for i, c := range children {
		nc, same, err := Replace(c, r)
		if err != nil {
			return nil, SameTree, err
		}
		if !same {
			if newChildren == nil {
				newChildren = make([]sql.Expression, len(children))
				copy(newChildren, children)
			}
			newChildren[i] = nc
		}
	}

	rewritten, same := e, SameTree
	if newChildren != nil {
		var err error
		rewritten, err = e.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
		same = NewTree
	}

	if f, ok := r.funcs[e]; ok {
		ne, err := f(e, rewritten)
		if err != nil {
			return nil, SameTree, err
		}
		return ne, NewTree, nil
	}

	return rewritten, same, nil
}
