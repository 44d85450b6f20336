package cmdparse

import (
	"sort"
	"strings"

	"github.com/huandu/xstrings"
)

// optionRef is one registered option form. alt marks a TriFlag's alternate
// form, which stores the alternate constant when triggered.
type optionRef struct {
	param *Param
	alt   bool
}

// paramRegistry is a command's finalized view of its parameters: declaration
// order preserved, option forms resolved per the option-name mode, and the
// placement rules enforced. Options and the pass-thru separator behavior are
// inherited by subcommands; positionals are not.
type paramRegistry struct {
	cmd         *Command
	all         []*Param
	positionals []*Param
	options     []*Param
	inherited   []*Param
	passThru    *Param
	subParam    *Param
	groups      []*Group
	longs       map[string]*optionRef
	shorts      map[string]*optionRef
	comboKeys   []string
}

func buildRegistry(cmd *Command, chain configChain) (*paramRegistry, error) {
	reg := &paramRegistry{
		cmd:    cmd,
		longs:  make(map[string]*optionRef),
		shorts: make(map[string]*optionRef),
	}
	names := make(map[string]*Param)
	var prevPos *Param
	for _, p := range cmd.params {
		if prev, dup := names[p.name]; dup {
			return nil, cmdDefErr("parameter conflict - %s and %s share the name %q", prev, p, p.name)
		}
		names[p.name] = p
		if reg.passThru != nil && (p.positional() || p.kind == kindPassThru) {
			if p.kind == kindPassThru {
				return nil, cmdDefErr("%s cannot follow another PassThru param (%s)", p, reg.passThru)
			}
			return nil, cmdDefErr("%s cannot be defined after the PassThru param %s", p, reg.passThru)
		}
		switch {
		case p.kind == kindPassThru:
			reg.passThru = p
		case p.positional():
			if prevPos != nil {
				if err := checkFollowable(prevPos, p); err != nil {
					return nil, err
				}
			}
			if p.kind == kindSubCommand || p.kind == kindAction {
				if reg.subParam != nil {
					return nil, cmdDefErr(
						"invalid parameters - only one SubCommand or Action parameter may be defined per command, found %s and %s",
						reg.subParam, p)
				}
				if len(p.choiceMap.entries) == 0 {
					return nil, cmdDefErr("%s has no registered choices", p)
				}
				p.nargs = NargsSet(p.choiceMap.wordCounts()...)
				reg.subParam = p
			}
			reg.positionals = append(reg.positionals, p)
			prevPos = p
		default:
			if strings.ContainsAny(p.name, " \t") {
				return nil, cmdDefErr("invalid name=%q for %s: option names cannot contain whitespace", p.name, p)
			}
			reg.options = append(reg.options, p)
		}
		reg.all = append(reg.all, p)
		if p.group != nil && !containsGroup(reg.groups, p.group) {
			reg.groups = append(reg.groups, p.group)
		}
	}
	for _, g := range cmd.groups {
		if !containsGroup(reg.groups, g) {
			reg.groups = append(reg.groups, g)
		}
	}
	mode := chain.optionNames()
	for _, p := range reg.options {
		deriveForms(p, mode)
		if len(p.effectiveLongs()) == 0 && len(p.shorts) == 0 {
			return nil, cmdDefErr("%s has no option strings", p)
		}
		if err := reg.registerForms(p, false); err != nil {
			return nil, err
		}
		if p.kind == kindTriFlag {
			if err := reg.registerForms(p, true); err != nil {
				return nil, err
			}
		}
	}
	// Parent options remain usable after dispatch. A child form shadows an
	// inherited one rather than conflicting with it.
	if cmd.parent != nil && cmd.parent.registry != nil {
		parent := cmd.parent.registry
		for _, p := range append(append([]*Param{}, parent.options...), parent.inherited...) {
			if _, dup := names[p.name]; dup {
				continue
			}
			names[p.name] = p
			reg.inherited = append(reg.inherited, p)
			reg.all = append(reg.all, p)
			reg.inheritForms(p)
		}
		if reg.passThru == nil {
			reg.passThru = parent.passThru
		}
	}
	reg.comboKeys = make([]string, 0, len(reg.shorts))
	for s := range reg.shorts {
		reg.comboKeys = append(reg.comboKeys, s)
	}
	sort.Slice(reg.comboKeys, func(i, j int) bool {
		a, b := reg.comboKeys[i], reg.comboKeys[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return reg, nil
}

func checkFollowable(prev, p *Param) error {
	if prev.kind == kindSubCommand || prev.kind == kindAction {
		return cmdDefErr("%s cannot follow the subcommand parameter %s", p, prev)
	}
	if prev.nargs.Variable() && len(prev.choices) == 0 && prev.choiceMap == nil {
		return cmdDefErr(
			"invalid parameter order - %s cannot follow %s because it accepts a variable number of arguments with no specific choices defined",
			p, prev)
	}
	return nil
}

// deriveForms fills the long forms implied by the parameter's name. Explicit
// forms always stand; the option-name mode only governs derivation.
func deriveForms(p *Param, mode OptionNameMode) {
	p.derived = nil
	p.altDerived = nil
	if len(p.longs) == 0 && mode != OptionNameExplicit {
		kebab := xstrings.ToKebabCase(p.name)
		snake := strings.ReplaceAll(kebab, "-", "_")
		switch mode {
		case OptionNameDash:
			p.derived = []string{kebab}
		case OptionNameUnderscore:
			p.derived = []string{snake}
		case OptionNameBoth:
			p.derived = []string{kebab}
			if snake != kebab {
				p.derived = append(p.derived, snake)
			}
		}
	}
	if p.kind == kindTriFlag && len(p.altLongs) == 0 {
		for _, l := range p.effectiveLongs() {
			alt := p.altPrefix + "-" + l
			if !strings.Contains(l, "-") && strings.Contains(l, "_") {
				alt = p.altPrefix + "_" + l
			}
			if !containsStr(p.altDerived, alt) {
				p.altDerived = append(p.altDerived, alt)
			}
		}
	}
}

func (reg *paramRegistry) registerForms(p *Param, alt bool) error {
	longs, shorts := p.effectiveLongs(), p.shorts
	if alt {
		longs, shorts = p.effectiveAltLongs(), p.altShorts
	}
	for _, l := range longs {
		if prev, dup := reg.longs[l]; dup {
			return cmdDefErr("option string conflict - --%s is used by both %s and %s", l, prev.param, p)
		}
		reg.longs[l] = &optionRef{param: p, alt: alt}
	}
	for _, s := range shorts {
		if prev, dup := reg.shorts[s]; dup {
			return cmdDefErr("option string conflict - -%s is used by both %s and %s", s, prev.param, p)
		}
		reg.shorts[s] = &optionRef{param: p, alt: alt}
	}
	return nil
}

func (reg *paramRegistry) inheritForms(p *Param) {
	for _, l := range p.effectiveLongs() {
		if _, shadowed := reg.longs[l]; !shadowed {
			reg.longs[l] = &optionRef{param: p}
		}
	}
	for _, l := range p.effectiveAltLongs() {
		if _, shadowed := reg.longs[l]; !shadowed {
			reg.longs[l] = &optionRef{param: p, alt: true}
		}
	}
	for _, s := range p.shorts {
		if _, shadowed := reg.shorts[s]; !shadowed {
			reg.shorts[s] = &optionRef{param: p}
		}
	}
	for _, s := range p.altShorts {
		if _, shadowed := reg.shorts[s]; !shadowed {
			reg.shorts[s] = &optionRef{param: p, alt: true}
		}
	}
}

func (reg *paramRegistry) lookupLong(body string) (*optionRef, bool) {
	ref, ok := reg.longs[body]
	return ref, ok
}

func (reg *paramRegistry) lookupShort(body string) (*optionRef, bool) {
	ref, ok := reg.shorts[body]
	return ref, ok
}

// checkStrictShorts rejects the registry when a multi-character short form
// could also be read as a combination of single-character shorts, which is
// what the strict combo mode promises to catch at definition time.
func (reg *paramRegistry) checkStrictShorts() error {
	var conflicts []ShortConflict
	for _, key := range reg.comboKeys {
		if len(key) < 2 {
			continue
		}
		var others []*Param
		ambiguous := true
		for _, c := range key {
			ref, ok := reg.shorts[string(c)]
			if !ok {
				ambiguous = false
				break
			}
			if !containsParam(others, ref.param) {
				others = append(others, ref.param)
			}
		}
		if ambiguous {
			conflicts = append(conflicts, ShortConflict{Param: reg.shorts[key].param, Others: others})
		}
	}
	if len(conflicts) != 0 {
		return &AmbiguousShortForm{Conflicts: conflicts}
	}
	return nil
}

func containsGroup(groups []*Group, g *Group) bool {
	for _, have := range groups {
		if have == g {
			return true
		}
	}
	return false
}

func containsParam(params []*Param, p *Param) bool {
	for _, have := range params {
		if have == p {
			return true
		}
	}
	return false
}
