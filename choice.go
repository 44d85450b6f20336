package cmdparse

import "strings"

// choiceEnt is one registered choice for a SubCommand or Action parameter.
// A choice may span multiple words ("show all"), which the parser consumes
// one token at a time.
type choiceEnt struct {
	value string
	words []string
	cmd   *Command
	fn    func(*Context) error
	help  string
	local bool
}

type choiceMap struct {
	entries []*choiceEnt
}

func (m *choiceMap) register(ent *choiceEnt, p *Param) {
	ent.value = strings.TrimSpace(ent.value)
	if ent.value == "" {
		panic(defErr("invalid choice for %s: value must not be empty", p))
	}
	ent.words = strings.Fields(ent.value)
	if m.find(ent.value) != nil {
		panic(defErr("invalid choice=%q for %s: that choice was already registered", ent.value, p))
	}
	m.entries = append(m.entries, ent)
}

func (m *choiceMap) find(value string) *choiceEnt {
	for _, ent := range m.entries {
		if ent.value == value {
			return ent
		}
	}
	return nil
}

// extends reports whether any registered choice begins with the given words
// and continues past them.
func (m *choiceMap) extends(words []string) bool {
	for _, ent := range m.entries {
		if len(ent.words) <= len(words) {
			continue
		}
		ok := true
		for i, w := range words {
			if ent.words[i] != w {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (m *choiceMap) values() []string {
	vals := make([]string, len(m.entries))
	for i, ent := range m.entries {
		vals[i] = ent.value
	}
	return vals
}

// wordCounts returns the distinct word counts across all registered choices,
// which together form the admissible arity of the owning parameter.
func (m *choiceMap) wordCounts() []int {
	seen := make(map[int]bool)
	var counts []int
	for _, ent := range m.entries {
		if n := len(ent.words); !seen[n] {
			seen[n] = true
			counts = append(counts, n)
		}
	}
	return counts
}

// takeWord validates and stores the next word of a (possibly multi-word)
// choice. The accumulated words must form a registered choice or a prefix of
// one.
func (m *choiceMap) takeWord(ctx *Context, p *Param, word string) (int, error) {
	words := append(ctx.rawValues(p), word)
	joined := strings.Join(words, " ")
	if m.find(joined) == nil && !m.extends(words) {
		return 0, &InvalidChoice{Param: p, Value: joined, Choices: m.values()}
	}
	ctx.recordRaw(p, word)
	return 1, nil
}

// wouldExtend reports whether the given word is a valid continuation of the
// words consumed so far.
func (m *choiceMap) wouldExtend(ctx *Context, p *Param, word string) bool {
	words := append(ctx.rawValues(p), word)
	return m.find(strings.Join(words, " ")) != nil || m.extends(words)
}

// resolve maps the consumed words to their registered choice once
// consumption is complete.
func (m *choiceMap) resolve(ctx *Context, p *Param) (*choiceEnt, error) {
	joined := strings.Join(ctx.rawValues(p), " ")
	ent := m.find(joined)
	if ent == nil {
		return nil, &InvalidChoice{Param: p, Value: joined, Choices: m.values()}
	}
	return ent, nil
}

// SubCommand declares a positional parameter whose values select a
// registered child command to dispatch the remaining arguments to. Choices
// are registered with Register (dispatching) or RegisterLocal
// (non-dispatching), and may contain spaces to form multi-word choices.
func SubCommand(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindSubCommand, actionConcat)
	p.required = true
	p.choiceMap = &choiceMap{}
	p.applyOpts(opts)
	return p
}

// Action declares a positional parameter whose values select a registered
// function to run as the command's main function.
func Action(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindAction, actionConcat)
	p.required = true
	p.choiceMap = &choiceMap{}
	p.applyOpts(opts)
	return p
}

// Register binds child as a dispatch target of a SubCommand parameter. When
// no explicit choices are given the child's name is used. It returns child
// so registrations can be chained with command construction.
func (p *Param) Register(child *Command, choices ...string) *Command {
	if p.kind != kindSubCommand {
		panic(defErr("%s does not accept command choices", p))
	}
	if child == nil {
		panic(defErr("cannot register a nil command with %s", p))
	}
	if len(choices) == 0 {
		choices = []string{child.Name}
	}
	for _, choice := range choices {
		p.choiceMap.register(&choiceEnt{value: choice, cmd: child, help: child.Desc}, p)
	}
	return child
}

// RegisterLocal adds a choice that is valid input for a SubCommand parameter
// but does not dispatch to a child command.
func (p *Param) RegisterLocal(choice, help string) *Param {
	if p.kind != kindSubCommand {
		panic(defErr("%s does not accept local choices", p))
	}
	p.choiceMap.register(&choiceEnt{value: choice, help: help, local: true}, p)
	return p
}

// RegisterFunc binds fn as the function an Action parameter runs when choice
// is selected.
func (p *Param) RegisterFunc(choice string, fn func(*Context) error, help string) *Param {
	if p.kind != kindAction {
		panic(defErr("%s does not accept function choices", p))
	}
	if fn == nil {
		panic(defErr("cannot register a nil function with %s", p))
	}
	p.choiceMap.register(&choiceEnt{value: choice, fn: fn, help: help}, p)
	return p
}
