package program

import (
	"strconv"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/expression/function"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/transform"
)

// Builder is the workspace used to build a Program. Every expression
// registered in it is broken down into its subexpressions, and structurally
// equal subexpressions are stored only once.
//
// A Builder is owned by the compilation that created it and must not be
// shared between goroutines.
type Builder struct {
	inputSchema  sql.Schema
	exprs        []sql.Expression
	buckets      map[uint64][]int
	localRefs    []*expression.LocalRef
	projectRefs  []*expression.LocalRef
	projectNames []string
	conditionRef *expression.LocalRef
	validating   bool
}

// NewBuilder creates a builder for a program over rows of the given schema.
// Every input field is registered upfront, so the first expressions of the
// program are always the references to its input fields.
func NewBuilder(schema sql.Schema) *Builder {
	b := &Builder{
		inputSchema: schema,
		buckets:     make(map[uint64][]int),
		validating:  true,
	}

	for i, col := range schema {
		b.registerInternal(expression.NewInputRef(i, col.Type))
	}

	return b
}

// WithValidation enables or disables the validation of the expressions
// registered in the builder.
func (b *Builder) WithValidation(validating bool) *Builder {
	b.validating = validating
	return b
}

// InputSchema returns the schema of the rows the program reads.
func (b *Builder) InputSchema() sql.Schema {
	return b.inputSchema
}

// MakeInputRef returns the local reference to the input field at index.
func (b *Builder) MakeInputRef(index int) *expression.LocalRef {
	if index < 0 || index >= len(b.inputSchema) {
		panic(ErrInputRefOutOfBounds.New("", "$"+strconv.Itoa(index), len(b.inputSchema)))
	}
	return b.localRefs[index]
}

// RegisterInput registers an expression written in terms of the input
// fields and returns the reference to it. Every subexpression is registered
// first. If a structurally equal expression was already registered, the
// reference to it is returned instead.
func (b *Builder) RegisterInput(e sql.Expression) *expression.LocalRef {
	return b.register(e, e, b.inputField, b.checkLocalRef)
}

// RegisterOutput registers an expression written in terms of the current
// projections: every input reference $i is the i-th projection.
func (b *Builder) RegisterOutput(e sql.Expression) *expression.LocalRef {
	return b.register(e, e, b.projectField(e), b.checkLocalRef)
}

// AddProject registers the expression and appends a projection of it with
// the given name. An empty name is replaced by a generated one when the
// program is built.
func (b *Builder) AddProject(e sql.Expression, name string) *expression.LocalRef {
	return b.AddProjectAt(len(b.projectRefs), e, name)
}

// AddProjectAt registers the expression and inserts a projection of it at
// the given position.
func (b *Builder) AddProjectAt(at int, e sql.Expression, name string) *expression.LocalRef {
	if at < 0 || at > len(b.projectRefs) {
		panic(ErrProjectOutOfBounds.New(at, len(b.projectRefs)))
	}

	ref := b.RegisterInput(e)

	b.projectRefs = append(b.projectRefs, nil)
	copy(b.projectRefs[at+1:], b.projectRefs[at:])
	b.projectRefs[at] = ref

	b.projectNames = append(b.projectNames, "")
	copy(b.projectNames[at+1:], b.projectNames[at:])
	b.projectNames[at] = name

	return ref
}

// AddProjectOrdinal appends a projection of the already registered
// expression at the given ordinal.
func (b *Builder) AddProjectOrdinal(ordinal int, name string) *expression.LocalRef {
	return b.AddProject(b.localRef(ordinal), name)
}

// AddProjectOrdinalAt inserts a projection of the already registered
// expression at the given ordinal.
func (b *Builder) AddProjectOrdinalAt(at, ordinal int, name string) *expression.LocalRef {
	return b.AddProjectAt(at, b.localRef(ordinal), name)
}

// AddCondition adds a condition rows must satisfy. Conditions added after
// the first one are combined with the current one with AND.
func (b *Builder) AddCondition(e sql.Expression) {
	if e.Type().Kind() != sql.KindBoolean {
		panic(ErrConditionNotBoolean.New(e, e.Type()))
	}

	ref := b.RegisterInput(e)
	if b.conditionRef == nil {
		b.conditionRef = ref
		return
	}

	and, err := expression.NewCall(function.And, b.conditionRef, ref)
	if err != nil {
		panic(err)
	}
	b.conditionRef = b.RegisterInput(and)
}

// ClearProjects removes all the projections.
func (b *Builder) ClearProjects() {
	b.projectRefs = nil
	b.projectNames = nil
}

// AddIdentity adds a projection of every input field, named after the
// field. There must be no projections yet.
func (b *Builder) AddIdentity() {
	if len(b.projectRefs) != 0 {
		panic(ErrProjectsNotEmpty.New(len(b.projectRefs)))
	}

	for i, col := range b.inputSchema {
		b.AddProject(expression.NewInputRef(i, col.Type), col.Name)
	}
}

// EliminateUnused removes the expressions that are neither input fields
// nor used, directly or not, by the projections or the condition.
// References are renumbered accordingly.
func (b *Builder) EliminateUnused() {
	used := make([]bool, len(b.exprs))
	for i := range b.inputSchema {
		used[i] = true
	}
	unused := len(b.exprs) - len(b.inputSchema)

	var visit func(sql.Expression)
	visit = func(e sql.Expression) {
		expression.Inspect(e, func(e sql.Expression) bool {
			if ref, ok := e.(*expression.LocalRef); ok && !used[ref.Index()] {
				used[ref.Index()] = true
				unused--
				visit(b.exprs[ref.Index()])
			}
			return true
		})
	}

	for _, ref := range b.projectRefs {
		visit(ref)
	}
	if b.conditionRef != nil {
		visit(b.conditionRef)
	}

	if unused == 0 {
		return
	}

	targets := make([]int, len(b.exprs))
	var n int
	for i := range b.exprs {
		if used[i] {
			targets[i] = n
			n++
		} else {
			targets[i] = -1
		}
	}

	renumber := func(e sql.Expression) sql.Expression {
		replacements := transform.NewReplacements()
		expression.Inspect(e, func(e sql.Expression) bool {
			if ref, ok := e.(*expression.LocalRef); ok {
				replacements.AddExpr(ref, expression.NewLocalRef(targets[ref.Index()], ref.Type()))
			}
			return true
		})

		ne, _, err := transform.Replace(e, replacements)
		if err != nil {
			panic(err)
		}
		return ne
	}

	exprs := b.exprs
	b.exprs = make([]sql.Expression, 0, n)
	b.localRefs = make([]*expression.LocalRef, 0, n)
	b.buckets = make(map[uint64][]int)
	for i, e := range exprs {
		if used[i] {
			b.append(renumber(e))
		}
	}

	for i, ref := range b.projectRefs {
		b.projectRefs[i] = b.localRefs[targets[ref.Index()]]
	}
	if b.conditionRef != nil {
		b.conditionRef = b.localRefs[targets[b.conditionRef.Index()]]
	}
}

// Program returns an immutable program with the current state of the
// builder. Projections without a name get one like "$0", "$1", ...,
// skipping names already in use. The builder can keep being used
// afterwards without affecting the returned program.
func (b *Builder) Program() *Program {
	names := b.uniqueNames()

	outputSchema := make(sql.Schema, len(b.projectRefs))
	projects := make([]NamedRef, len(b.projectRefs))
	for i, ref := range b.projectRefs {
		projects[i] = NamedRef{Ref: ref, Name: names[i]}
		outputSchema[i] = &sql.Column{Name: names[i], Type: ref.Type()}
	}

	exprs := make([]sql.Expression, len(b.exprs))
	copy(exprs, b.exprs)

	return &Program{
		inputSchema:  b.inputSchema,
		exprs:        exprs,
		projects:     projects,
		condition:    b.conditionRef,
		outputSchema: outputSchema,
	}
}

// ForProgram returns a builder with all the expressions, projections and
// condition of the given program. Building it right away returns a program
// equivalent to the given one.
func ForProgram(p *Program) *Builder {
	b := NewBuilder(p.inputSchema)
	if err := p.Validate(); err != nil {
		panic(err)
	}

	refs := make([]*expression.LocalRef, len(p.exprs))
	for i, e := range p.exprs {
		refs[i] = b.register(e, e, b.inputField, func(parent sql.Expression, ref *expression.LocalRef) *expression.LocalRef {
			return refs[ref.Index()]
		})
	}

	for _, project := range p.projects {
		b.AddProject(refs[project.Ref.Index()], project.Name)
	}

	if p.condition != nil {
		b.AddCondition(refs[p.condition.Index()])
	}

	return b
}

// MergePrograms merges two programs applied one after the other into a
// single one. The bottom program reads the input rows and the top program
// reads the output of the bottom one. The result has the input of bottom,
// the outputs of top and both conditions.
func MergePrograms(top, bottom *Program) *Program {
	if err := top.Validate(); err != nil {
		panic(err)
	}

	b := ForProgram(bottom)
	refs := b.registerProjectsAndCondition(top)
	b.ClearProjects()
	for i, ref := range refs {
		b.AddProject(ref, top.outputSchema[i].Name)
	}
	return b.Program()
}

// registerProjectsAndCondition registers the projections and the condition
// of a program reading the output of the current projections. It returns
// the references to the projections and adds the condition.
func (b *Builder) registerProjectsAndCondition(p *Program) []*expression.LocalRef {
	expanded := make(map[int]*expression.LocalRef)

	var expand func(int) *expression.LocalRef
	expand = func(index int) *expression.LocalRef {
		if ref, ok := expanded[index]; ok {
			return ref
		}

		e := p.exprs[index]
		ref := b.register(e, e, b.projectField(e), func(_ sql.Expression, ref *expression.LocalRef) *expression.LocalRef {
			return expand(ref.Index())
		})
		expanded[index] = ref
		return ref
	}

	refs := make([]*expression.LocalRef, len(p.projects))
	for i, project := range p.projects {
		refs[i] = expand(project.Ref.Index())
	}

	if p.condition != nil {
		b.AddCondition(expand(p.condition.Index()))
	}

	return refs
}

type (
	inputRefFunc func(parent sql.Expression, ref *expression.InputRef) *expression.LocalRef
	localRefFunc func(parent sql.Expression, ref *expression.LocalRef) *expression.LocalRef
)

// register registers every subexpression of e bottom up, replacing input
// and local references with the results of the given functions.
func (b *Builder) register(
	root sql.Expression,
	e sql.Expression,
	inputRef inputRefFunc,
	localRef localRefFunc,
) *expression.LocalRef {
	switch e := e.(type) {
	case *expression.InputRef:
		return inputRef(root, e)
	case *expression.LocalRef:
		return localRef(root, e)
	}

	children := e.Children()
	if len(children) > 0 {
		refs := make([]sql.Expression, len(children))
		for i, c := range children {
			refs[i] = b.register(root, c, inputRef, localRef)
		}

		var err error
		e, err = e.WithChildren(refs...)
		if err != nil {
			panic(err)
		}
	}

	return b.registerInternal(e)
}

func (b *Builder) registerInternal(e sql.Expression) *expression.LocalRef {
	hash := expression.Hash(e)
	for _, idx := range b.buckets[hash] {
		if expression.Equal(b.exprs[idx], e) {
			return b.localRefs[idx]
		}
	}

	return b.append(e)
}

func (b *Builder) append(e sql.Expression) *expression.LocalRef {
	idx := len(b.exprs)
	ref := expression.NewLocalRef(idx, e.Type())
	b.exprs = append(b.exprs, e)
	b.localRefs = append(b.localRefs, ref)

	hash := expression.Hash(e)
	b.buckets[hash] = append(b.buckets[hash], idx)
	return ref
}

func (b *Builder) inputField(root sql.Expression, ref *expression.InputRef) *expression.LocalRef {
	if ref.Index() < 0 || ref.Index() >= len(b.inputSchema) {
		panic(ErrInputRefOutOfBounds.New(root, ref, len(b.inputSchema)))
	}

	if b.validating {
		if expected := b.inputSchema[ref.Index()].Type; !expected.Equals(ref.Type()) {
			panic(ErrInconsistentType.New(root, ref, ref.Type(), expected))
		}
	}

	return b.localRefs[ref.Index()]
}

func (b *Builder) projectField(root sql.Expression) inputRefFunc {
	return func(_ sql.Expression, ref *expression.InputRef) *expression.LocalRef {
		if ref.Index() < 0 || ref.Index() >= len(b.projectRefs) {
			panic(ErrInputRefOutOfBounds.New(root, ref, len(b.projectRefs)))
		}

		project := b.projectRefs[ref.Index()]
		if b.validating && !project.Type().Equals(ref.Type()) {
			panic(ErrInconsistentType.New(root, ref, ref.Type(), project.Type()))
		}
		return project
	}
}

func (b *Builder) checkLocalRef(root sql.Expression, ref *expression.LocalRef) *expression.LocalRef {
	if ref.Index() < 0 || ref.Index() >= len(b.exprs) {
		panic(ErrLocalRefOutOfBounds.New(root, ref, len(b.exprs)))
	}

	if b.validating {
		if expected := b.exprs[ref.Index()].Type(); !expected.Equals(ref.Type()) {
			panic(ErrInconsistentType.New(root, ref, ref.Type(), expected))
		}
	}

	return b.localRefs[ref.Index()]
}

func (b *Builder) localRef(ordinal int) *expression.LocalRef {
	if ordinal < 0 || ordinal >= len(b.localRefs) {
		panic(ErrLocalRefOutOfBounds.New("", "$t"+strconv.Itoa(ordinal), len(b.localRefs)))
	}
	return b.localRefs[ordinal]
}

// uniqueNames returns the names of the projections, generating the missing
// ones and making repeated ones unique.
func (b *Builder) uniqueNames() []string {
	used := make(map[string]bool, len(b.projectNames))
	for _, name := range b.projectNames {
		if name != "" {
			used[name] = true
		}
	}

	names := make([]string, len(b.projectNames))
	var j int
	for i, name := range b.projectNames {
		if name != "" {
			names[i] = name
			continue
		}

		for {
			candidate := "$" + strconv.Itoa(j)
			j++
			if !used[candidate] {
				names[i] = candidate
				used[candidate] = true
				break
			}
		}
	}

	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if !seen[name] {
			seen[name] = true
			continue
		}

		for k := 0; ; k++ {
			candidate := name + strconv.Itoa(k)
			if !used[candidate] && !seen[candidate] {
				names[i] = candidate
				used[candidate] = true
				seen[candidate] = true
				break
			}
		}
	}

	return names
}
