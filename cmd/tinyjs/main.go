/*
Command tinyjs runs scripts of the tinyjs JavaScript subset.

	tinyjs [-config file] [-mem N] [-gct ratio] [-maxdepth N] [-trace level] [-e expr] [file ...]

With -e the expression is evaluated and its value printed. Files are evaluated
in order within one engine; the first error ends the run with exit status 1.
Without either, standard input is read: interactively with line editing when
it is a terminal, otherwise as one script.
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/linkxzhou/mylib/tinyjs"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// tracer traces with key 'tinyjs.cli'
func tracer() tracing.Trace {
	return tracing.Select("tinyjs.cli")
}

// options are the command line settings that override the config file.
type options struct {
	config   string
	mem      int
	gcRatio  float64
	maxDepth int
	trace    string
	expr     string
}

func parseFlags(fs *flag.FlagSet, args []string) (options, []string, error) {
	var o options
	fs.StringVar(&o.config, "config", "", "engine config file (.yaml, .yml or .toml)")
	fs.IntVar(&o.mem, "mem", 0, "arena size in bytes")
	fs.Float64Var(&o.gcRatio, "gct", 0, "collect when this fraction of the arena is used")
	fs.IntVar(&o.maxDepth, "maxdepth", -1, "evaluator nesting limit, 0 for none")
	fs.StringVar(&o.trace, "trace", "", "trace level [Debug|Info|Error]")
	fs.StringVar(&o.expr, "e", "", "evaluate expression and print the result")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	return o, fs.Args(), nil
}

// engineConfig loads the config file, if any, and applies the flags on top.
func (o options) engineConfig() (tinyjs.Config, error) {
	cfg := tinyjs.DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = tinyjs.LoadConfig(o.config); err != nil {
			return cfg, err
		}
	}
	if o.mem > 0 {
		cfg.MemorySize = o.mem
	}
	if o.gcRatio > 0 {
		cfg.GCRatio = o.gcRatio
	}
	if o.maxDepth >= 0 {
		cfg.MaxDepth = o.maxDepth
	}
	if o.trace != "" {
		cfg.TraceLevel = o.trace
	}
	return cfg, cfg.Validate()
}

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	opts, files, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	cfg, err := opts.engineConfig()
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	gtrace.SyntaxTracer.SetTraceLevel(tracing.TraceLevelFromString(cfg.TraceLevel))
	tracer().SetTraceLevel(tracing.TraceLevelFromString(cfg.TraceLevel))
	tracer().Infof("arena %d bytes, gc ratio %g, max depth %d", cfg.MemorySize, cfg.GCRatio, cfg.MaxDepth)

	h, err := newHost(cfg, os.Stdout, tinyjs.WithTracer(gtrace.SyntaxTracer))
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	switch {
	case opts.expr != "":
		err = h.evalPrint(opts.expr)
	case len(files) > 0:
		err = h.runFiles(files)
	case term.IsTerminal(int(os.Stdin.Fd())):
		err = h.repl()
	default:
		err = h.runReader("<stdin>", os.Stdin)
	}
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// host is one engine with the CLI natives installed.
type host struct {
	e   *tinyjs.Engine
	reg *registry
	out io.Writer
}

func newHost(cfg tinyjs.Config, out io.Writer, opts ...tinyjs.Option) (*host, error) {
	e, err := tinyjs.NewFromConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}
	h := &host{e: e, reg: defaultNatives(out), out: out}
	if err := h.reg.install(e); err != nil {
		return nil, fmt.Errorf("cannot install natives: %w", err)
	}
	return h, nil
}

// eval runs src and converts an error value into a Go error naming the
// source.
func (h *host) eval(name, src string) (tinyjs.Value, error) {
	v := h.e.Eval(src)
	if err := h.e.Err(v); err != nil {
		var ee *tinyjs.EvalError
		if errors.As(err, &ee) {
			tracer().P("source", name).Debugf("%v", ee.Kind)
		}
		return v, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func (h *host) evalPrint(src string) error {
	v, err := h.eval("-e", src)
	if err != nil {
		return err
	}
	fmt.Fprintln(h.out, h.e.Stringify(v))
	return nil
}

func (h *host) runFiles(files []string) error {
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", name, err)
		}
		if _, err := h.eval(name, string(src)); err != nil {
			return err
		}
	}
	return nil
}

// runReader evaluates all of r as one script and prints the final value
// unless it is undefined.
func (h *host) runReader(name string, r io.Reader) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", name, err)
	}
	v, err := h.eval(name, string(src))
	if err != nil {
		return err
	}
	if v != tinyjs.Undefined() {
		fmt.Fprintln(h.out, h.e.Stringify(v))
	}
	return nil
}
