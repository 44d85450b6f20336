package cmdparse

// Command is a named set of parameters plus the function to run when it is
// selected. Commands form a tree through SubCommand registrations; parsing
// starts at the root and dispatches down to the leaf the arguments select.
//
// Definition is not goroutine safe; once finalized (first Parse or Run), a
// Command is immutable and may serve concurrent parses.
type Command struct {
	Name string
	Desc string
	// Main runs after a successful parse when no Action choice supplied a
	// function. Optional.
	Main func(*Context) error

	config      *Config
	params      []*Param
	groups      []*Group
	parent      *Command
	registry    *paramRegistry
	finalized   bool
	finalizeErr error
}

// New creates a command. Settings given here bind to the command and are
// inherited by subcommands that do not override them.
func New(name string, settings ...Setting) *Command {
	if name == "" {
		panic(cmdDefErr("command name must not be empty"))
	}
	cmd := &Command{Name: name}
	if len(settings) > 0 {
		cmd.config = &Config{}
		for _, s := range settings {
			s(cmd.config)
		}
	}
	return cmd
}

// Add declares parameters on the command, in the order given. Order matters
// for positionals. Panics on definition mistakes: nil or reused parameters,
// or adding after the command was finalized.
func (cmd *Command) Add(params ...*Param) *Command {
	if cmd.finalized {
		panic(cmdDefErr("cannot add parameters to %s after it has been finalized", cmd.Name))
	}
	for _, p := range params {
		if p == nil {
			panic(cmdDefErr("cannot add a nil parameter to %s", cmd.Name))
		}
		if p.owner != nil {
			panic(cmdDefErr("%s was already added to %s and cannot be shared", p, p.owner.Name))
		}
		p.owner = cmd
		cmd.params = append(cmd.params, p)
	}
	return cmd
}

// AddGroup declares a parameter group; members not yet on the command are
// added in their group order.
func (cmd *Command) AddGroup(g *Group) *Command {
	if g == nil {
		panic(cmdDefErr("cannot add a nil group to %s", cmd.Name))
	}
	for _, have := range cmd.groups {
		if have == g {
			panic(cmdDefErr("group %q was already added to %s", g.name, cmd.Name))
		}
	}
	cmd.groups = append(cmd.groups, g)
	for _, p := range g.members {
		if p.owner == nil {
			cmd.Add(p)
		} else if p.owner != cmd {
			panic(cmdDefErr("%s in group %q belongs to %s", p, g.name, p.owner.Name))
		}
	}
	return cmd
}

func (cmd *Command) configChain() configChain {
	var cc configChain
	for c := cmd; c != nil; c = c.parent {
		if c.config != nil {
			cc = append(cc, c.config)
		}
	}
	return cc
}

// Finalize resolves option forms, builds the registry, runs the structural
// validations that need the fully assembled command, and recursively
// finalizes registered subcommands. Parse and Run call it automatically;
// calling it directly surfaces definition errors before any input arrives.
func (cmd *Command) Finalize() error { return cmd.finalize() }

// finalize caches buildFinal's result so definition errors surface from
// every subsequent Parse as well.
func (cmd *Command) finalize() error {
	if cmd.finalized {
		return cmd.finalizeErr
	}
	cmd.finalized = true
	cmd.finalizeErr = cmd.buildFinal()
	return cmd.finalizeErr
}

func (cmd *Command) buildFinal() error {
	chain := cmd.configChain()
	if chain.addHelp() && !cmd.hasParamNamed("help") && !cmd.ancestorHasParam("help") {
		cmd.params = append(cmd.params, helpParam())
	}
	reg, err := buildRegistry(cmd, chain)
	if err != nil {
		return err
	}
	cmd.registry = reg
	if chain.shortCombos() == ComboStrict {
		if err := reg.checkStrictShorts(); err != nil {
			return err
		}
	}
	if chain.rejectAmbiguousPos() {
		if _, err := BuildTree(cmd); err != nil {
			return err
		}
	}
	if sub := reg.subParam; sub != nil {
		for _, ent := range sub.choiceMap.entries {
			if ent.cmd == nil {
				continue
			}
			if ent.cmd.parent == nil {
				ent.cmd.parent = cmd
			}
			if err := ent.cmd.finalize(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cmd *Command) hasParamNamed(name string) bool {
	for _, p := range cmd.params {
		if p.name == name {
			return true
		}
	}
	return false
}

func (cmd *Command) ancestorHasParam(name string) bool {
	for c := cmd.parent; c != nil; c = c.parent {
		if c.hasParamNamed(name) {
			return true
		}
	}
	return false
}

// hasNestedPassThru reports whether any command reachable through this
// command's subcommand choices declares a PassThru parameter.
func (cmd *Command) hasNestedPassThru() bool {
	for _, p := range cmd.params {
		if p.choiceMap == nil {
			continue
		}
		for _, ent := range p.choiceMap.entries {
			if ent.cmd == nil {
				continue
			}
			for _, cp := range ent.cmd.params {
				if cp.kind == kindPassThru {
					return true
				}
			}
			if ent.cmd.hasNestedPassThru() {
				return true
			}
		}
	}
	return false
}

// Parse consumes argv (without the program name) and returns the context of
// the deepest command reached. Settings apply to this invocation only and
// override the command's own. On a usage error, any queued always-available
// action flag (help) still runs, and its result supersedes the parse error.
func (cmd *Command) Parse(argv []string, settings ...Setting) (*Context, error) {
	if err := cmd.finalize(); err != nil {
		return nil, err
	}
	var invocation *Config
	if len(settings) > 0 {
		invocation = &Config{}
		for _, s := range settings {
			s(invocation)
		}
	}
	ctx := newContext(cmd, argv, invocation)
	if invocation != nil {
		// Invocation settings can enable checks the command's own config
		// left off; they must still fail before any token is parsed.
		chain := ctx.chain()
		if chain.shortCombos() == ComboStrict {
			if err := cmd.registry.checkStrictShorts(); err != nil {
				return nil, err
			}
		}
		if chain.rejectAmbiguousPos() {
			if _, err := BuildTree(cmd); err != nil {
				return nil, err
			}
		}
	}
	leaf, err := parseContext(ctx)
	if err != nil {
		if IsUsageError(err) {
			if herr := ctx.runAlwaysAvailable(); herr != nil {
				return leaf, herr
			}
		}
		return leaf, err
	}
	return leaf, nil
}

// Run parses argv and executes what it selects: action flags in order, then
// the Action choice's function or the leaf command's Main, then any
// after-main action flags.
func (cmd *Command) Run(argv []string, settings ...Setting) error {
	ctx, err := cmd.Parse(argv, settings...)
	if err != nil {
		return err
	}
	return ctx.runParsed()
}

func (ctx *Context) runParsed() error {
	leaf := ctx.leaf()
	if err := ctx.runActionFlags(false); err != nil {
		return err
	}
	main := leaf.mainFn
	if main == nil {
		main = leaf.cmd.Main
	}
	if main != nil {
		if err := main(leaf); err != nil {
			return err
		}
	}
	return ctx.runActionFlags(true)
}
