package cmdparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type paramKind int

const (
	kindPositional paramKind = iota
	kindOption
	kindFlag
	kindTriFlag
	kindCounter
	kindActionFlag
	kindPassThru
	kindSubCommand
	kindAction
)

// actionKind describes how accepted values accumulate in the Context.
type actionKind int

const (
	actionStore actionKind = iota
	actionAppend
	actionStoreConst
	actionAppendConst
	actionStoreAll
	actionCount
	actionConcat
)

// Param is one declared parameter. Construct with Positional, Option, Flag,
// TriFlag, Counter, ActionFlag, PassThru, SubCommand, or Action; never
// mutate after the owning command has been finalized. Per-parse values live
// in the Context, so one Param may serve concurrent parses.
type Param struct {
	name   string
	kind   paramKind
	action actionKind
	nargs  Nargs

	required bool
	help     string
	metavar  string
	hidden   bool

	// Explicit option strings, stored without their leading dashes.
	longs  []string
	shorts []string
	// Long forms derived from the name per the option-name mode; filled when
	// the owning command is finalized.
	derived []string

	// TriFlag alternate forms.
	altPrefix  string
	altLongs   []string
	altShorts  []string
	altDerived []string
	altHelp    string

	envVars     []string
	choices     []string
	defaultVal  interface{}
	hasDefault  bool
	constVal    interface{}
	altConst    interface{}
	convert     func(string) (interface{}, error)
	leadingDash DashMode
	target      interface{}

	// ActionFlag callback and dispatch ordering. An alwaysRun flag still
	// fires when parsing ends with a usage error, which is how --help wins
	// over bad input.
	fn        func(*Context) error
	order     int
	afterMain bool
	alwaysRun bool

	choiceMap *choiceMap

	group *Group
	owner *Command
}

// Name returns the parameter's declared name.
func (p *Param) Name() string { return p.name }

// Nargs returns the parameter's arity spec.
func (p *Param) Nargs() Nargs { return p.nargs }

// Required reports whether a parse must supply this parameter.
func (p *Param) Required() bool { return p.required }

// Help returns the declared help text.
func (p *Param) Help() string { return p.help }

func (p *Param) String() string {
	if p.name != "" {
		return p.name
	}
	return fmt.Sprint(p.longs)
}

func (p *Param) positional() bool {
	switch p.kind {
	case kindPositional, kindSubCommand, kindAction:
		return true
	}
	return false
}

func (p *Param) optionLike() bool {
	switch p.kind {
	case kindOption, kindFlag, kindTriFlag, kindCounter, kindActionFlag:
		return true
	}
	return false
}

// nullary reports whether the parameter can fire without consuming a value
// token of its own.
func (p *Param) nullary() bool {
	switch p.kind {
	case kindFlag, kindTriFlag, kindCounter, kindActionFlag:
		return true
	}
	return false
}

// sourceFillable reports whether environment variables and value sources
// may supply this parameter when the command line did not.
func (p *Param) sourceFillable() bool {
	return p.optionLike() || p.kind == kindPositional
}

// acceptsValues reports whether a value may be attached (--opt=v, -ov).
func (p *Param) acceptsValues() bool {
	switch p.kind {
	case kindOption, kindCounter, kindPositional, kindSubCommand, kindAction, kindPassThru:
		return true
	}
	return false
}

// effectiveLongs returns the parameter's primary long forms, derived first.
func (p *Param) effectiveLongs() []string {
	out := make([]string, 0, len(p.derived)+len(p.longs))
	out = append(out, p.derived...)
	for _, l := range p.longs {
		if !containsStr(out, l) {
			out = append(out, l)
		}
	}
	return out
}

func (p *Param) effectiveAltLongs() []string {
	out := make([]string, 0, len(p.altDerived)+len(p.altLongs))
	out = append(out, p.altDerived...)
	for _, l := range p.altLongs {
		if !containsStr(out, l) {
			out = append(out, l)
		}
	}
	return out
}

// UsageStr renders the parameter the way usage and error text refer to it:
// positionals by name, options by their registered forms.
func (p *Param) UsageStr() string {
	if p.positional() || p.kind == kindPassThru {
		return p.name
	}
	var parts []string
	for _, l := range p.effectiveLongs() {
		parts = append(parts, "--"+l)
	}
	for _, l := range p.effectiveAltLongs() {
		parts = append(parts, "--"+l)
	}
	for _, s := range p.shorts {
		parts = append(parts, "-"+s)
	}
	for _, s := range p.altShorts {
		parts = append(parts, "-"+s)
	}
	if len(parts) == 0 {
		return p.name
	}
	return strings.Join(parts, " / ")
}

func containsStr(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

var numericValue = regexp.MustCompile(`^-\d+$|^-\d*\.\d+$`)

// validateValue enforces the leading-dash policy and the fixed choice set.
func (p *Param) validateValue(s string) error {
	if strings.HasPrefix(s, "-") && s != "-" {
		switch p.leadingDash {
		case DashNumeric:
			if !numericValue.MatchString(s) {
				return &BadArgument{Param: p, Msg: fmt.Sprintf("invalid value=%q", s)}
			}
		case DashNever:
			return &BadArgument{Param: p, Msg: fmt.Sprintf("invalid value=%q", s)}
		}
	}
	if len(p.choices) != 0 && p.action != actionConcat && !containsStr(p.choices, s) {
		return &InvalidChoice{Param: p, Value: s, Choices: p.choices}
	}
	return nil
}

// prepareValue runs the injected conversion, wrapping any failure so cast
// problems always surface as BadArgument.
func (p *Param) prepareValue(s string) (interface{}, error) {
	if p.convert == nil {
		return s, nil
	}
	v, err := p.convert(s)
	if err != nil {
		return nil, &BadArgument{Param: p, Msg: fmt.Sprintf("unable to cast value=%q", s), Err: err}
	}
	return v, nil
}

// takeAction records one occurrence of the parameter in the Context. A nil
// value is a bare trigger (flag, counter, option expecting the consume loop
// to supply values). Returns how many value tokens were recorded.
func (p *Param) takeAction(ctx *Context, value *string, shortCombo bool) (int, error) {
	switch p.action {
	case actionStore:
		if value == nil {
			return 0, nil
		}
		if err := p.validateValue(*value); err != nil {
			return 0, err
		}
		v, err := p.prepareValue(*value)
		if err != nil {
			return 0, err
		}
		if prev, ok := ctx.store.values[p]; ok {
			return 0, &ParamUsageError{
				Param: p,
				Msg:   fmt.Sprintf("received value=%q but a stored value=%v already exists", *value, prev),
			}
		}
		ctx.recordRaw(p, *value)
		ctx.recordValue(p, v)
		return 1, nil
	case actionAppend:
		if value == nil {
			return 0, nil
		}
		if err := p.validateValue(*value); err != nil {
			return 0, err
		}
		v, err := p.prepareValue(*value)
		if err != nil {
			return 0, err
		}
		cur, _ := ctx.store.values[p].([]interface{})
		if p.nargs.HasMax() && len(cur)+1 > p.nargs.Max() {
			return 0, &ParamUsageError{
				Param: p,
				Msg:   fmt.Sprintf("cannot accept any additional args with nargs=%v", p.nargs),
			}
		}
		ctx.recordRaw(p, *value)
		ctx.recordValue(p, append(cur, v))
		return 1, nil
	case actionStoreConst:
		if value != nil {
			return 0, &ParamUsageError{Param: p, Msg: fmt.Sprintf("does not accept values (got %q)", *value)}
		}
		ctx.markProvided(p)
		ctx.recordValue(p, p.constVal)
		if p.kind == kindActionFlag {
			ctx.queueActionFlag(p)
		}
		return 0, nil
	case actionAppendConst:
		if value != nil {
			return 0, &ParamUsageError{Param: p, Msg: fmt.Sprintf("does not accept values (got %q)", *value)}
		}
		cur, _ := ctx.store.values[p].([]interface{})
		ctx.markProvided(p)
		ctx.recordValue(p, append(cur, p.constVal))
		return 0, nil
	case actionStoreAll:
		if _, ok := ctx.store.values[p]; ok {
			return 0, &ParamUsageError{Param: p, Msg: "pass thru arguments were already provided"}
		}
		// The caller hands the verbatim tail through ctx; value is unused.
		return 0, nil
	case actionCount:
		inc := 1
		if value != nil {
			n, err := strconv.Atoi(*value)
			if err != nil {
				return 0, &BadArgument{Param: p, Msg: fmt.Sprintf("invalid counter value=%q", *value), Err: err}
			}
			inc = n
		}
		cur, _ := ctx.store.values[p].(int)
		ctx.markProvided(p)
		ctx.recordValue(p, cur+inc)
		if value != nil {
			return 1, nil
		}
		return 0, nil
	case actionConcat:
		if value == nil {
			return 0, nil
		}
		return p.choiceMap.takeWord(ctx, p, *value)
	}
	return 0, nil
}

// storeAltConst records a TriFlag's alternate-form occurrence.
func (p *Param) storeAltConst(ctx *Context) error {
	ctx.markProvided(p)
	ctx.recordValue(p, p.altConst)
	return nil
}

// wouldAccept reports whether the parameter could take s as its next value,
// used when deciding if a dash-prefixed token is a value or an option.
func (p *Param) wouldAccept(ctx *Context, s string) bool {
	switch p.action {
	case actionStore:
		if _, ok := ctx.store.values[p]; ok {
			return false
		}
	case actionAppend:
		cur, _ := ctx.store.values[p].([]interface{})
		if p.nargs.HasMax() && len(cur)+1 > p.nargs.Max() {
			return false
		}
	case actionCount:
		if _, err := strconv.Atoi(s); err != nil {
			return false
		}
		return true
	case actionConcat:
		return p.choiceMap.wouldExtend(ctx, p, s)
	case actionStoreAll:
		return true
	default:
		return false
	}
	if p.convert != nil {
		if _, err := p.convert(s); err != nil {
			return false
		}
	}
	return p.validateValue(s) == nil
}

// storedCount returns how many values the Context currently holds for this
// parameter.
func (p *Param) storedCount(ctx *Context) int {
	switch p.action {
	case actionAppend:
		cur, _ := ctx.store.values[p].([]interface{})
		return len(cur)
	case actionConcat, actionStoreAll:
		return len(ctx.store.rawValues[p])
	default:
		if _, ok := ctx.store.values[p]; ok {
			return 1
		}
		return 0
	}
}

// poppable reports whether backtracking may take values back from this
// parameter. Only untyped append parameters qualify: their stored values are
// the verbatim tokens, so they can be re-fed to another parameter.
func (p *Param) poppable() bool {
	return p.action == actionAppend && p.convert == nil
}

// canPop returns the counts by which this parameter's recorded values could
// shrink while staying admissible; used by backtracking. At least one value
// always stays.
func (p *Param) canPop(ctx *Context) []int {
	if !p.poppable() || !p.nargs.Variable() {
		return nil
	}
	n := p.storedCount(ctx)
	var counts []int
	for i := 1; i < n; i++ {
		if p.nargs.Satisfied(n - i) {
			counts = append(counts, i)
		}
	}
	return counts
}

// popLast takes back the last count recorded values, returning them for the
// parser to re-feed.
func (p *Param) popLast(ctx *Context, count int) []string {
	cur, _ := ctx.store.values[p].([]interface{})
	if count > len(cur) {
		count = len(cur)
	}
	keep := len(cur) - count
	raw := ctx.store.rawValues[p]
	popped := append([]string{}, raw[keep:]...)
	ctx.store.values[p] = cur[:keep:keep]
	ctx.store.rawValues[p] = raw[:keep:keep]
	ctx.store.provided[p] -= count
	return popped
}

// reset takes back every value recorded for this parameter, returning them
// for the parser to re-feed. Typed parameters cannot be reset.
func (p *Param) reset(ctx *Context) ([]string, bool) {
	raw := ctx.store.rawValues[p]
	if len(raw) == 0 {
		return nil, true
	}
	if !p.poppable() {
		return nil, false
	}
	popped := append([]string{}, raw...)
	delete(ctx.store.values, p)
	delete(ctx.store.rawValues, p)
	ctx.store.provided[p] -= len(popped)
	return popped, true
}

func validateLongForm(s string) string {
	if !strings.HasPrefix(s, "--") || strings.HasPrefix(s, "---") {
		panic(defErr("invalid long option %q: must begin with exactly two dashes", s))
	}
	body := s[2:]
	if body == "" || strings.HasSuffix(body, "-") {
		panic(defErr("invalid long option %q: must not end with a dash", s))
	}
	if strings.Contains(body, "=") {
		panic(defErr("invalid long option %q: must not contain '='", s))
	}
	return body
}

func validateShortForm(s string) string {
	if !strings.HasPrefix(s, "-") || strings.HasPrefix(s, "--") {
		panic(defErr("invalid short option %q: must begin with exactly one dash", s))
	}
	body := s[1:]
	if body == "" {
		panic(defErr("invalid short option %q: a bare dash is not an option", s))
	}
	if strings.ContainsAny(body, "-=") {
		panic(defErr("invalid short option %q: must not contain '-' or '='", s))
	}
	return body
}

func newParam(name string, kind paramKind, action actionKind) *Param {
	if name == "" {
		panic(defErr("parameter name must not be empty"))
	}
	if strings.HasPrefix(name, "-") {
		panic(defErr("invalid parameter name %q: pass option strings via Long/Short", name))
	}
	return &Param{name: name, kind: kind, action: action}
}

func (p *Param) applyOpts(opts []ParamOpt) *Param {
	for _, opt := range opts {
		opt(p)
	}
	return p
}
