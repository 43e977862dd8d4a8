// Command lox is the CLI entry point for both evaluators: a REPL
// when run with no arguments, a file runner when given one path.
// Following the teacher's cmd/funxy, the backend is selected by a
// flag rather than a build-time variable, since both backends live in
// this one module instead of being built separately.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/havrix/glox/internal/ast"
	"github.com/havrix/glox/internal/config"
	"github.com/havrix/glox/internal/diagnostics"
	"github.com/havrix/glox/internal/parser"
	"github.com/havrix/glox/internal/pipeline"
	"github.com/havrix/glox/internal/treewalk"
	"github.com/havrix/glox/internal/vm"
)

// Exit codes follow the classic sysexits convention (§6).
const (
	exitOK      = 0
	exitUsage   = 64
	exitDataErr = 65
	exitRuntime = 70
	exitIOErr   = 74
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend := fs.String("backend", "vm", "evaluator backend: vm or tree")
	configPath := fs.String("config", "", "path to a lox.yaml config file")
	fs.Usage = func() {
		fmt.Fprintln(errOut, "Usage: lox [-backend vm|tree] [-config FILE] [script]")
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return exitDataErr
	}

	paths := fs.Args()
	if len(paths) > 1 {
		fs.Usage()
		return exitUsage
	}

	r := newRunner(*backend, cfg, out, errOut)

	if len(paths) == 1 {
		source, err := os.ReadFile(paths[0])
		if err != nil {
			fmt.Fprintf(errOut, "Error reading %s: %s\n", paths[0], err)
			return exitIOErr
		}
		return r.runSource(string(source))
	}

	return runRepl(r, in, out, errOut)
}

// runner wraps whichever backend was selected behind one method,
// since cmd/lox otherwise has to branch on backend at every call
// site.
type runner struct {
	vmBackend *vm.VM
	twBackend *treewalk.Interpreter
}

func newRunner(backend string, cfg config.Config, out, errOut io.Writer) *runner {
	if backend == "tree" {
		return &runner{twBackend: treewalk.New(out, errOut)}
	}
	return &runner{vmBackend: vm.New(cfg, out, errOut)}
}

// runSource compiles and executes one unit of source (a whole file,
// or one REPL line) through the shared pipeline and returns the exit
// code its outcome maps to.
func (r *runner) runSource(source string) int {
	ctx := pipeline.NewContext(source)

	if r.vmBackend != nil {
		pipeline.New(pipeline.StageFunc{StageName: "interpret", Fn: func(c *pipeline.Context) *pipeline.Context {
			c.AddError(r.vmBackend.Interpret(c.Source))
			return c
		}}).Run(ctx)
	} else {
		pipeline.New(
			pipeline.StageFunc{StageName: "parse", Fn: func(c *pipeline.Context) *pipeline.Context {
				stmts, err := parser.New(c.Source).Parse()
				c.AddError(err)
				c.Value = stmts
				return c
			}},
			pipeline.StageFunc{StageName: "interpret", Fn: func(c *pipeline.Context) *pipeline.Context {
				if c.HasErrors() {
					return c
				}
				stmts, _ := c.Value.([]ast.Stmt)
				c.AddError(r.twBackend.Interpret(stmts))
				return c
			}},
		).Run(ctx)
	}

	if !ctx.HasErrors() {
		return exitOK
	}
	batch := diagnostics.NewBatch()
	for _, e := range ctx.Errors {
		batch.Add(e)
	}
	batch.Report(r.errOut())
	return exitCodeFor(ctx.Errors[len(ctx.Errors)-1])
}

func (r *runner) errOut() io.Writer {
	if r.vmBackend != nil {
		return r.vmBackend.ErrOut
	}
	return r.twBackend.ErrOut
}

// exitCodeFor maps the last-reported error to a sysexits code: a
// *diagnostics.RuntimeError is a runtime error, anything else
// (compile or resolution errors, single or joined) is a data error.
func exitCodeFor(err error) int {
	if _, ok := err.(*diagnostics.RuntimeError); ok {
		return exitRuntime
	}
	return exitDataErr
}

// runRepl reads one line at a time, compiling and executing each
// independently while keeping the backend's globals alive across
// lines. The prompt itself is suppressed when stdin isn't a TTY (e.g.
// piped input), matching the teacher's TTY-aware terminal handling.
func runRepl(r *runner, in io.Reader, out, errOut io.Writer) int {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		// A non-zero exit from one line doesn't end the session; only
		// EOF does (§6: "each input line is compiled+executed
		// independently").
		r.runSource(line)
	}
	return exitOK
}
