package sqle // import "gopkg.in/src-d/go-sqlexpr.v0"

import (
	"github.com/sirupsen/logrus"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/analyzer"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/parse"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/plan"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/rowexec"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

// Engine is a SQL engine.
type Engine struct {
	Catalog  *sql.Catalog
	Registry *function.Registry
	Analyzer *analyzer.Analyzer

	parser *parse.Parser
	plans  *sql.PlanCache
}

// New creates a new Engine with the given configuration. A nil
// configuration is the same as DefaultConfig.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	plans, err := sql.NewPlanCache(cfg.PlanCacheSize)
	if err != nil {
		return nil, err
	}

	c := sql.NewCatalog()
	r := function.NewRegistry()
	a := analyzer.NewBuilder(rowexec.NewEvaluator()).
		WithConfig(cfg.analyzerConfig()).
		Build()

	return &Engine{
		Catalog:  c,
		Registry: r,
		Analyzer: a,
		parser:   parse.NewParser(c, r),
		plans:    plans,
	}, nil
}

// NewDefault creates a new Engine with the default configuration.
func NewDefault() *Engine {
	e, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return e
}

// AddTable adds the given table to the catalog.
func (e *Engine) AddTable(t sql.Table) error {
	return e.Catalog.AddTable(t)
}

// RegisterFunctions adds user defined operators to the registry.
func (e *Engine) RegisterFunctions(ops ...sql.Operator) error {
	return e.Registry.Register(ops...)
}

// Prepare parses and analyzes the given query, returning its plan. Plans
// are cached by query unless their compilation depends on the time or the
// session they were compiled in.
func (e *Engine) Prepare(ctx *sql.Context, query string) (sql.Node, error) {
	logger := queryLogger(ctx, query)

	if n, ok := e.plans.Get(query); ok {
		logger.Debug("using cached plan")
		return n, nil
	}

	parsed, err := e.parser.Parse(ctx, query)
	if err != nil {
		return nil, err
	}
	setQueryProps(ctx, parsed)

	analyzed, err := e.Analyzer.Analyze(ctx, parsed)
	if err != nil {
		logger.WithField(ErrorLogField, err).Debug("unable to analyze query")
		return nil, err
	}

	if ctx.CachingDisabled() {
		logger.Debug("plan depends on the compilation context, not caching it")
	} else {
		e.plans.Put(query, analyzed)
	}

	return analyzed, nil
}

// Query executes a query.
func (e *Engine) Query(ctx *sql.Context, query string) (sql.Schema, sql.RowIter, error) {
	span, ctx := ctx.Span("query")
	defer span.Finish()

	n, err := e.Prepare(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	iter, err := n.RowIter(ctx)
	if err != nil {
		return nil, nil, err
	}

	return n.Schema(), iter, nil
}

// Reduce parses the given expressions over the columns of schema and
// folds their constant subexpressions. It returns the expressions and
// whether any of them changed.
func (e *Engine) Reduce(
	ctx *sql.Context,
	exprs []string,
	schema sql.Schema,
	forceCasts bool,
) ([]sql.Expression, bool, error) {
	parsed := make([]sql.Expression, len(exprs))
	for i, s := range exprs {
		var err error
		parsed[i], err = e.parser.ParseExpr(ctx, s, schema)
		if err != nil {
			return nil, false, err
		}
	}

	reduced, err := e.Analyzer.Reducer.Reduce(ctx, parsed, forceCasts)
	if err != nil {
		return nil, false, err
	}

	return parsed, reduced, nil
}

// CachedPlans returns the number of plans in the plan cache.
func (e *Engine) CachedPlans() int {
	return e.plans.Len()
}

// setQueryProps records the kind of nodes of the parsed query.
func setQueryProps(ctx *sql.Context, n sql.Node) {
	props := ctx.QueryProps()
	transform.Inspect(n, func(n sql.Node) bool {
		switch n.(type) {
		case *plan.Filter:
			props.Set(sql.QPropFilter)
		case *plan.Project:
			props.Set(sql.QPropProject)
		case *plan.InnerJoin:
			props.Set(sql.QPropInnerJoin)
		}
		return true
	})
}

func queryLogger(ctx *sql.Context, query string) *logrus.Entry {
	return ctx.GetLogger().WithField(QueryLogField, query)
}
