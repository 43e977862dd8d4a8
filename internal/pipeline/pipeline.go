// Package pipeline runs a source string through a sequence of named
// stages, accumulating diagnostics from every stage rather than
// aborting at the first one — the same shape both evaluators and the
// CLI use to go from source text to a finished (or failed) run.
package pipeline

// Context threads through every stage. Each stage reads what earlier
// stages stashed in Value and may add to Errors; later stages run
// even if Errors is already non-empty, so e.g. a REPL line that fails
// to compile still reports every scanner error found, not just the
// first.
type Context struct {
	Source string
	Errors []error
	Value  any // the stage's own output: e.g. []ast.Stmt after parsing
}

func NewContext(source string) *Context {
	return &Context{Source: source}
}

func (c *Context) AddError(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

func (c *Context) HasErrors() bool {
	return len(c.Errors) > 0
}

// Stage is one step of a Pipeline: Run takes the context and returns
// a (possibly the same) context, continuing the chain whether or not
// it added errors.
type Stage interface {
	Name() string
	Run(*Context) *Context
}

// StageFunc adapts a plain function to Stage.
type StageFunc struct {
	StageName string
	Fn        func(*Context) *Context
}

func (f StageFunc) Name() string            { return f.StageName }
func (f StageFunc) Run(ctx *Context) *Context { return f.Fn(ctx) }

// Pipeline is an ordered sequence of Stages.
type Pipeline struct {
	stages []Stage
}

func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage in order, continuing on errors so that
// diagnostics from later stages (when it makes sense to run them)
// aren't silently dropped.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, stage := range p.stages {
		ctx = stage.Run(ctx)
	}
	return ctx
}
