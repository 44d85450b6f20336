package cmdparse

import (
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// valueStore holds everything recorded while parsing one invocation. The
// root Context owns it and the contexts of dispatched subcommands share it,
// so values recorded at any level are visible everywhere.
type valueStore struct {
	values    map[*Param]interface{}
	rawValues map[*Param][]string
	provided  map[*Param]int
	envFilled map[*Param]bool
	queue     []*Param
}

func newValueStore() *valueStore {
	return &valueStore{
		values:    make(map[*Param]interface{}),
		rawValues: make(map[*Param][]string),
		provided:  make(map[*Param]int),
		envFilled: make(map[*Param]bool),
	}
}

// Context is the state of one parse. Commands themselves stay immutable
// after finalization; everything recorded for an invocation lands here, so
// a single Command can serve concurrent parses.
type Context struct {
	cmd        *Command
	parent     *Context
	child      *Context
	argv       []string
	store      *valueStore
	invocation *Config
	remaining  []string
	mainFn     func(*Context) error

	// Stdout and Stderr are where help and error text go; they default to
	// the process streams and exist so tests can capture output.
	Stdout io.Writer
	Stderr io.Writer
}

func newContext(cmd *Command, argv []string, invocation *Config) *Context {
	ctx := &Context{
		cmd:        cmd,
		argv:       argv,
		invocation: invocation,
		store:      newValueStore(),
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
	chain := ctx.chain()
	if w := chain.stdout(); w != nil {
		ctx.Stdout = w
	}
	if w := chain.stderr(); w != nil {
		ctx.Stderr = w
	}
	return ctx
}

// spawnChild creates the context a dispatched subcommand parses in. The
// child shares the store and invocation settings.
func (ctx *Context) spawnChild(cmd *Command, argv []string) *Context {
	child := &Context{
		cmd:        cmd,
		parent:     ctx,
		argv:       argv,
		invocation: ctx.invocation,
		store:      ctx.store,
		Stdout:     ctx.Stdout,
		Stderr:     ctx.Stderr,
	}
	ctx.child = child
	return child
}

// Command returns the command this context belongs to, which for a
// dispatched parse is the subcommand rather than the root.
func (ctx *Context) Command() *Command { return ctx.cmd }

// Root walks up to the context of the originally invoked command.
func (ctx *Context) Root() *Context {
	for ctx.parent != nil {
		ctx = ctx.parent
	}
	return ctx
}

func (ctx *Context) leaf() *Context {
	for ctx.child != nil {
		ctx = ctx.child
	}
	return ctx
}

// chain assembles the config resolution order: invocation settings first,
// then this command's config, then its ancestors'.
func (ctx *Context) chain() configChain {
	var cc configChain
	if ctx.invocation != nil {
		cc = append(cc, ctx.invocation)
	}
	for cmd := ctx.cmd; cmd != nil; cmd = cmd.parent {
		if cmd.config != nil {
			cc = append(cc, cmd.config)
		}
	}
	return cc
}

func (ctx *Context) recordValue(p *Param, v interface{}) {
	ctx.store.values[p] = v
}

func (ctx *Context) recordRaw(p *Param, raw string) {
	ctx.store.rawValues[p] = append(ctx.store.rawValues[p], raw)
	ctx.store.provided[p]++
}

func (ctx *Context) markProvided(p *Param) {
	ctx.store.provided[p]++
}

func (ctx *Context) rawValues(p *Param) []string {
	return ctx.store.rawValues[p]
}

// NumProvided reports how many times the invocation supplied the parameter:
// value tokens for value-taking parameters, occurrences for nullary ones.
// Environment fills count once; defaults never count.
func (ctx *Context) NumProvided(p *Param) int {
	return ctx.store.provided[p]
}

func (ctx *Context) queueActionFlag(p *Param) {
	for _, q := range ctx.store.queue {
		if q == p {
			return
		}
	}
	ctx.store.queue = append(ctx.store.queue, p)
}

// runActionFlags fires queued action flags for the requested phase in
// ascending order, breaking ties by the order they were seen.
func (ctx *Context) runActionFlags(afterMain bool) error {
	queue := make([]*Param, 0, len(ctx.store.queue))
	for _, p := range ctx.store.queue {
		if p.afterMain == afterMain {
			queue = append(queue, p)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].order < queue[j].order })
	for _, p := range queue {
		if err := p.fn(ctx.leaf()); err != nil {
			return err
		}
	}
	return nil
}

// runAlwaysAvailable fires queued flags marked to run even when parsing
// failed, such as help. It reports whether any ran without error of its own.
func (ctx *Context) runAlwaysAvailable() error {
	for _, p := range ctx.store.queue {
		if !p.alwaysRun {
			continue
		}
		if err := p.fn(ctx.leaf()); err != nil {
			return err
		}
	}
	return nil
}

// findParam resolves a name to a parameter, searching this command's own and
// inherited parameters, then ancestor commands. Leading dashes are ignored
// so "--foo" and "foo" both work; long forms match after names.
func (ctx *Context) findParam(name string) *Param {
	name = strings.TrimLeft(name, "-")
	for c := ctx; c != nil; c = c.parent {
		reg := c.cmd.registry
		if reg == nil {
			continue
		}
		for _, p := range reg.all {
			if p.name == name {
				return p
			}
		}
	}
	for c := ctx; c != nil; c = c.parent {
		reg := c.cmd.registry
		if reg == nil {
			continue
		}
		for _, p := range reg.all {
			if containsStr(p.effectiveLongs(), name) || containsStr(p.effectiveAltLongs(), name) {
				return p
			}
		}
	}
	return nil
}

// resultValue materializes the parameter's final value: what was recorded,
// else the default, else nil. Uncast multi-value results come back as
// []string for ergonomic access.
func (p *Param) resultValue(ctx *Context) interface{} {
	v, ok := ctx.store.values[p]
	if !ok {
		if p.hasDefault {
			return p.defaultVal
		}
		return nil
	}
	if vs, ok := v.([]interface{}); ok {
		out := make([]string, len(vs))
		for i, el := range vs {
			s, ok := el.(string)
			if !ok {
				return vs
			}
			out[i] = s
		}
		return out
	}
	return v
}

// Value returns the parameter's final value by name, or nil when the name is
// unknown or nothing was provided and no default exists.
func (ctx *Context) Value(name string) interface{} {
	p := ctx.findParam(name)
	if p == nil {
		return nil
	}
	return p.resultValue(ctx)
}

// String returns the named value as a string, or "" when absent or not a
// string.
func (ctx *Context) String(name string) string {
	s, _ := ctx.Value(name).(string)
	return s
}

// Strings returns the named value as a string slice, or nil.
func (ctx *Context) Strings(name string) []string {
	ss, _ := ctx.Value(name).([]string)
	return ss
}

// Int returns the named value as an int, or 0.
func (ctx *Context) Int(name string) int {
	n, _ := ctx.Value(name).(int)
	return n
}

// Bool returns the named value as a bool, or false.
func (ctx *Context) Bool(name string) bool {
	b, _ := ctx.Value(name).(bool)
	return b
}

// Parsed returns every parameter's final value keyed by name, including
// defaults for parameters that were not provided.
func (ctx *Context) Parsed() map[string]interface{} {
	out := make(map[string]interface{})
	for c := ctx; c != nil; c = c.parent {
		reg := c.cmd.registry
		if reg == nil {
			continue
		}
		for _, p := range reg.all {
			if _, dup := out[p.name]; !dup {
				out[p.name] = p.resultValue(ctx)
			}
		}
	}
	return out
}

// Remaining returns the tokens left unparsed, which is only non-empty when
// unknown arguments are being ignored.
func (ctx *Context) Remaining() []string {
	return ctx.leaf().remaining
}

// TerminalWidth returns the width help output wraps to: an explicit setting
// wins, then the controlling terminal, then 80.
func (ctx *Context) TerminalWidth() int {
	if w, ok := ctx.chain().terminalWidth(); ok {
		return w
	}
	if f, ok := ctx.Stdout.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}
