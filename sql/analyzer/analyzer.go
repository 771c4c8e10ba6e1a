package analyzer

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

const debugAnalyzerKey = "DEBUG_ANALYZER"

// DefaultMaxIterations is the maximum number of times the rules of a batch
// are applied before giving up on reaching a fixed point.
const DefaultMaxIterations = 1000

var (
	// ErrMaxAnalysisIters is thrown when the analysis iterations are exceeded
	ErrMaxAnalysisIters = errors.NewKind("exceeded max analysis iterations (%d)")

	// ErrInAnalysis is thrown for generic analyzer errors
	ErrInAnalysis = errors.NewKind("error in analysis: %s")

	// ErrReentrantAnalysis is thrown when a plan is analyzed while another
	// one is being compiled, from the context of a reentrant execution.
	ErrReentrantAnalysis = errors.NewKind("cannot analyze a plan from reentrant execution %s")
)

// Config holds the options of an Analyzer.
type Config struct {
	// Debug logs the rules applied.
	Debug bool
	// Verbose prints the plan after every change.
	Verbose bool
	// Validate checks the invariants of every program built.
	Validate bool
	// UseCalc turns filters and projections into calcs, so consecutive
	// ones are merged into a single program.
	UseCalc bool
	// MaxIterations of the batches applied until a fixed point.
	MaxIterations int
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{Validate: true, MaxIterations: DefaultMaxIterations}
}

// Builder provides an easy way to generate Analyzer with custom rules and options.
type Builder struct {
	preAnalyzeRules  []Rule
	postAnalyzeRules []Rule
	evaluator        Evaluator
	config           Config
}

// NewBuilder creates a new Builder whose analyzers evaluate constant
// expressions with the given evaluator.
func NewBuilder(evaluator Evaluator) *Builder {
	return &Builder{evaluator: evaluator, config: DefaultConfig()}
}

// WithDebug activates debug on the Analyzer.
func (ab *Builder) WithDebug() *Builder {
	ab.config.Debug = true

	return ab
}

// WithConfig sets the configuration of the Analyzer.
func (ab *Builder) WithConfig(cfg Config) *Builder {
	debug := ab.config.Debug
	ab.config = cfg
	ab.config.Debug = cfg.Debug || debug

	return ab
}

// AddPreAnalyzeRule adds a new rule to the analyze before the standard analyzer rules.
func (ab *Builder) AddPreAnalyzeRule(name string, fn RuleFunc) *Builder {
	ab.preAnalyzeRules = append(ab.preAnalyzeRules, Rule{name, fn})

	return ab
}

// AddPostAnalyzeRule adds a new rule to the analyzer after standard analyzer rules.
func (ab *Builder) AddPostAnalyzeRule(name string, fn RuleFunc) *Builder {
	ab.postAnalyzeRules = append(ab.postAnalyzeRules, Rule{name, fn})

	return ab
}

// Build creates a new Analyzer using all previous data setted to the Builder
func (ab *Builder) Build() *Analyzer {
	_, debug := os.LookupEnv(debugAnalyzerKey)

	iterations := ab.config.MaxIterations
	if iterations <= 0 {
		iterations = DefaultMaxIterations
	}

	var batches = []*Batch{
		{
			Desc:       "pre-analyzer",
			Iterations: iterations,
			Rules:      ab.preAnalyzeRules,
		},
		{
			Desc:       "once-before",
			Iterations: 1,
			Rules:      onceBeforeRules(ab.config),
		},
		{
			Desc:       "default-rules",
			Iterations: iterations,
			Rules:      defaultRules(),
		},
		{
			Desc:       "post-analyzer",
			Iterations: iterations,
			Rules:      ab.postAnalyzeRules,
		},
		{
			Desc:       "validation",
			Iterations: 1,
			Rules:      validationRules(ab.config),
		},
	}

	return &Analyzer{
		Debug:    debug || ab.config.Debug,
		Verbose:  ab.config.Verbose,
		Validate: ab.config.Validate,
		debugCtx: make([]string, 0),
		Batches:  batches,
		Reducer:  NewExpressionReducer(ab.evaluator),
	}
}

// Analyzer analyzes nodes of the execution plan and applies rules to
// them.
type Analyzer struct {
	// Whether to log various debugging messages
	Debug bool
	// Whether to output the query plan at each step of the analyzer
	Verbose bool
	// Whether to check the invariants of the programs built
	Validate bool
	debugCtx []string
	// Batches of Rules to apply.
	Batches []*Batch
	// Reducer folds the constant expressions of the plan.
	Reducer *ExpressionReducer
}

// NewDefault creates a default Analyzer instance with all default Rules and configuration.
// To add custom rules, the easiest way is use the Builder.
func NewDefault(evaluator Evaluator) *Analyzer {
	return NewBuilder(evaluator).Build()
}

// Log prints an INFO message to stdout with the given message and args
// if the analyzer is in debug mode.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	if a != nil && a.Debug {
		if len(a.debugCtx) > 0 {
			ctx := strings.Join(a.debugCtx, "/")
			logrus.Infof("%s: "+msg, append([]interface{}{ctx}, args...)...)
		} else {
			logrus.Infof(msg, args...)
		}
	}
}

// LogNode prints the node given if Verbose logging is enabled.
func (a *Analyzer) LogNode(n sql.Node) {
	if a != nil && n != nil && a.Verbose {
		if len(a.debugCtx) > 0 {
			ctx := strings.Join(a.debugCtx, "/")
			fmt.Printf("%s:\n%s", ctx, n.String())
		} else {
			fmt.Printf("%s", n.String())
		}
	}
}

// PushDebugContext pushes the given context string onto the context stack, to use when logging debug messages.
func (a *Analyzer) PushDebugContext(msg string) {
	if a != nil {
		a.debugCtx = append(a.debugCtx, msg)
	}
}

// PopDebugContext pops a context message off the context stack.
func (a *Analyzer) PopDebugContext() {
	if a != nil && len(a.debugCtx) > 0 {
		a.debugCtx = a.debugCtx[:len(a.debugCtx)-1]
	}
}

// Analyze the node and all its children. Internal errors raised while
// building programs abort the analysis and are returned.
func (a *Analyzer) Analyze(ctx *sql.Context, n sql.Node) (result sql.Node, err error) {
	if ctx.IsReentrant() {
		return nil, ErrReentrantAnalysis.New(ctx.ReentrantID())
	}

	span, ctx := ctx.Span("analyze", opentracing.Tags{
		"plan": n.String(),
	})
	defer span.Finish()

	debugCtx := len(a.debugCtx)
	defer func() {
		if r := recover(); r != nil {
			a.debugCtx = a.debugCtx[:debugCtx]
			result, err = nil, recoveredError(r)
			span.SetTag("error", err.Error())
		}
	}()

	prev := n
	a.Log("starting analysis of node of type: %T", n)
	for _, batch := range a.Batches {
		a.PushDebugContext(batch.Desc)
		prev, _, err = batch.Eval(ctx, a, prev)
		a.PopDebugContext()
		if ErrMaxAnalysisIters.Is(err) {
			a.Log(err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	return prev, nil
}

// recoveredError returns the error an analysis panicked with. Runtime
// errors are wrapped, and values that are not errors are not recovered.
func recoveredError(r interface{}) error {
	err, ok := r.(error)
	if !ok {
		panic(r)
	}

	if _, ok := err.(runtime.Error); ok {
		return ErrInAnalysis.Wrap(err, err.Error())
	}
	return err
}

