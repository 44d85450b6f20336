package cmdparse

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// tokenQueue is the mutable view of the argv tokens still to be parsed.
// Backtracking pushes reclaimed tokens onto the front.
type tokenQueue struct {
	toks []string
}

func (q *tokenQueue) next() (string, bool) {
	if len(q.toks) == 0 {
		return "", false
	}
	tok := q.toks[0]
	q.toks = q.toks[1:]
	return tok, true
}

func (q *tokenQueue) push(tok string) {
	q.toks = append([]string{tok}, q.toks...)
}

func (q *tokenQueue) prepend(toks []string) {
	q.toks = append(append([]string{}, toks...), q.toks...)
}

func (q *tokenQueue) drain() []string {
	toks := q.toks
	q.toks = nil
	return toks
}

// parser is the state for a single pass over one command's tokens. A
// dispatched subcommand gets a fresh parser over the tokens its parent
// could not claim.
type parser struct {
	ctx      *Context
	reg      *paramRegistry
	chain    configChain
	q        tokenQueue
	posQueue []*Param
	// history records parameters that consumed value tokens, in order, so
	// backtracking can scan for the most recent viable victim.
	history  []*Param
	deferred []string
	rescued  map[*Param]bool
}

type shortHit struct {
	param *Param
	alt   bool
	value *string
}

// parseContext runs the full parse for ctx's command, dispatching to a
// subcommand when one is selected, and returns the leaf context.
func parseContext(ctx *Context) (*Context, error) {
	prs := &parser{
		ctx:     ctx,
		reg:     ctx.cmd.registry,
		chain:   ctx.chain(),
		rescued: make(map[*Param]bool),
	}
	prs.posQueue = append(prs.posQueue, prs.reg.positionals...)
	toks, err := prs.splitPassThru(ctx.argv)
	if err != nil {
		return ctx, err
	}
	prs.q.toks = toks
	for {
		if err := prs.tokenLoop(); err != nil {
			return ctx, err
		}
		if !prs.rescueTrailing() {
			break
		}
	}
	return prs.finish()
}

// splitPassThru claims everything after the first "--" separator for the
// pass-thru parameter before any other token is interpreted.
func (prs *parser) splitPassThru(argv []string) ([]string, error) {
	pt := prs.reg.passThru
	if pt == nil || prs.ctx.NumProvided(pt) > 0 {
		return argv, nil
	}
	for i, tok := range argv {
		if tok == "--" {
			prs.storePassThru(pt, argv[i+1:])
			return argv[:i], nil
		}
	}
	if pt.required {
		return nil, &MissingArgument{Param: pt, Msg: "missing pass thru args separated from others with '--'"}
	}
	return argv, nil
}

func (prs *parser) storePassThru(pt *Param, tail []string) {
	kept := append([]string{}, tail...)
	prs.ctx.recordValue(pt, kept)
	prs.ctx.store.rawValues[pt] = kept
	prs.ctx.markProvided(pt)
}

func (prs *parser) tokenLoop() error {
	for {
		tok, ok := prs.q.next()
		if !ok {
			return nil
		}
		switch {
		case tok == "--" || strings.HasPrefix(tok, "---"):
			if tok == "--" && prs.reg.passThru == nil && prs.reg.subParam != nil && prs.ctx.cmd.hasNestedPassThru() {
				// A descendant owns the pass-thru, so the separator and its
				// tail belong to the dispatched command, verbatim.
				prs.deferred = append(prs.deferred, tok)
				prs.deferred = append(prs.deferred, prs.q.drain()...)
				return nil
			}
			return &NoSuchOption{Msg: "invalid argument: " + tok}
		case strings.HasPrefix(tok, "--"):
			if err := prs.handleLong(tok); err != nil {
				return err
			}
		case strings.HasPrefix(tok, "-") && tok != "-":
			if err := prs.handleShort(tok); err != nil {
				return err
			}
		default:
			if err := prs.handlePositional(tok); err != nil {
				return err
			}
		}
	}
}

func (prs *parser) handleLong(tok string) error {
	body := strings.TrimPrefix(tok, "--")
	name, val, hasVal := strings.Cut(body, "=")
	ref, ok := prs.reg.lookupLong(name)
	if !ok {
		if err := prs.checkSubCommandOptions(tok); err != nil {
			return err
		}
		Log.Debug("deferring unknown option", "arg", tok)
		prs.deferred = append(prs.deferred, tok)
		return nil
	}
	if ref.alt {
		if hasVal {
			return &ParamUsageError{Param: ref.param, Msg: fmt.Sprintf("does not accept values (got %q)", val)}
		}
		return ref.param.storeAltConst(prs.ctx)
	}
	return prs.applyOption(ref.param, hasVal, val, false)
}

func (prs *parser) handleShort(tok string) error {
	hits, err := prs.resolveShort(tok)
	if err != nil {
		return err
	}
	if hits == nil {
		if err := prs.checkSubCommandOptions(tok); err != nil {
			return err
		}
		if len(prs.posQueue) > 0 {
			if err := prs.handlePositional(tok); err != nil {
				if IsUsageError(err) {
					prs.deferred = append(prs.deferred, tok)
					return nil
				}
				return err
			}
			return nil
		}
		Log.Debug("deferring unknown option", "arg", tok)
		prs.deferred = append(prs.deferred, tok)
		return nil
	}
	for _, h := range hits[:len(hits)-1] {
		if h.alt {
			if err := h.param.storeAltConst(prs.ctx); err != nil {
				return err
			}
			continue
		}
		if !h.param.nullary() {
			return &MissingArgument{Param: h.param}
		}
		if _, err := h.param.takeAction(prs.ctx, nil, true); err != nil {
			return err
		}
	}
	last := hits[len(hits)-1]
	if last.alt {
		if last.value != nil {
			return &ParamUsageError{Param: last.param, Msg: fmt.Sprintf("does not accept values (got %q)", *last.value)}
		}
		return last.param.storeAltConst(prs.ctx)
	}
	return prs.applyOption(last.param, last.value != nil, strOr(last.value), true)
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// applyOption records an occurrence of an option once its form has been
// resolved: an attached value is taken directly, nullary parameters fire
// bare, and anything else consumes from the queue.
func (prs *parser) applyOption(p *Param, hasVal bool, val string, shortCombo bool) error {
	if hasVal {
		if _, err := p.takeAction(prs.ctx, &val, shortCombo); err != nil {
			return err
		}
		prs.history = append(prs.history, p)
		return nil
	}
	if p.nullary() {
		_, err := p.takeAction(prs.ctx, nil, shortCombo)
		return err
	}
	found, err := prs.consumeValues(p, 0)
	if err != nil {
		return err
	}
	if found > 0 {
		prs.history = append(prs.history, p)
	}
	return nil
}

// resolveShort maps a short token to the parameters it triggers. A nil
// slice with a nil error means the token is unknown here.
func (prs *parser) resolveShort(tok string) ([]shortHit, error) {
	body := tok[1:]
	if name, val, hasEq := strings.Cut(body, "="); hasEq {
		ref, ok := prs.reg.lookupShort(name)
		if !ok {
			return nil, nil
		}
		return []shortHit{{ref.param, ref.alt, &val}}, nil
	}
	if ref, ok := prs.reg.lookupShort(body); ok {
		return []shortHit{{ref.param, ref.alt, nil}}, nil
	}
	if len(body) < 2 {
		return nil, nil
	}
	if len(body) > 2 {
		if err := prs.checkComboAmbiguity(body); err != nil {
			return nil, err
		}
	}
	key, rest := body[:1], body[1:]
	ref, ok := prs.reg.lookupShort(key)
	if !ok {
		return nil, nil
	}
	if !ref.alt && ref.param.wouldAccept(prs.ctx, rest) {
		return []shortHit{{ref.param, ref.alt, &rest}}, nil
	}
	// Multi-char shorts cannot combine with others; single-char ones can.
	hits := make([]shortHit, 0, len(body))
	for _, c := range body {
		r, ok := prs.reg.lookupShort(string(c))
		if !ok {
			return nil, nil
		}
		hits = append(hits, shortHit{r.param, r.alt, nil})
	}
	return hits, nil
}

// checkComboAmbiguity rejects clusters that embed a registered multi-char
// short form, unless the combo mode says to ignore the overlap.
func (prs *parser) checkComboAmbiguity(body string) error {
	if prs.chain.shortCombos() == ComboIgnore {
		return nil
	}
	var matches []*Param
	for _, key := range prs.reg.comboKeys {
		if len(key) < 2 {
			break
		}
		if strings.Contains(body, key) {
			if ref := prs.reg.shorts[key]; !containsParam(matches, ref.param) {
				matches = append(matches, ref.param)
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}
	for _, c := range body {
		if ref, ok := prs.reg.shorts[string(c)]; ok && !containsParam(matches, ref.param) {
			matches = append(matches, ref.param)
		}
	}
	return &AmbiguousCombo{Combo: body, Matches: matches}
}

func (prs *parser) handlePositional(tok string) error {
	if len(prs.posQueue) == 0 {
		prs.deferred = append(prs.deferred, tok)
		return nil
	}
	p := prs.posQueue[0]
	prs.posQueue = prs.posQueue[1:]
	found, err := p.takeAction(prs.ctx, &tok, false)
	if err != nil {
		prs.posQueue = append([]*Param{p}, prs.posQueue...)
		return err
	}
	found, err = prs.consumeValues(p, found)
	if err != nil {
		if ma, ok := err.(*MissingArgument); ok && ma.Param == p && prs.rescuePositional(p) {
			return nil
		}
		return err
	}
	if found > 0 {
		prs.history = append(prs.history, p)
	}
	return nil
}

// consumeValues feeds queue tokens to the parameter until something stops
// it: queue exhaustion, an option-like token, a value the parameter will
// not take, or the parameter itself rejecting one.
func (prs *parser) consumeValues(p *Param, found int) (int, error) {
	for {
		tok, ok := prs.q.next()
		if !ok {
			return prs.finalizeConsume(p, nil, found, nil)
		}
		if strings.HasPrefix(tok, "--") {
			return prs.finalizeConsume(p, &tok, found, nil)
		}
		if strings.HasPrefix(tok, "-") && tok != "-" {
			if prs.isOptionToken(tok) {
				return prs.finalizeConsume(p, &tok, found, nil)
			}
			if err := prs.checkSubCommandOptions(tok); err != nil {
				return prs.finalizeConsume(p, &tok, found, err)
			}
			if !p.wouldAccept(prs.ctx, tok) {
				return prs.finalizeConsume(p, &tok, found, &NoSuchOption{Msg: "invalid argument: " + tok})
			}
		}
		n, err := p.takeAction(prs.ctx, &tok, false)
		if err != nil {
			if !IsUsageError(err) {
				return 0, err
			}
			return prs.finalizeConsume(p, &tok, found, err)
		}
		found += n
	}
}

// finalizeConsume settles one consume run. A satisfied count wins over any
// pending error, and an unsatisfied run may give back its own tail values to
// reach a valid count before giving up.
func (prs *parser) finalizeConsume(p *Param, stop *string, found int, exc error) (int, error) {
	if p.nargs.Satisfied(found) {
		if stop != nil {
			prs.q.push(*stop)
		}
		return found, nil
	}
	if stop != nil {
		prs.q.push(*stop)
	}
	if exc != nil {
		return 0, exc
	}
	if prs.chain.allowBacktrack() && p.poppable() {
		for k := 1; k < found; k++ {
			if p.nargs.Satisfied(found - k) {
				Log.Debug("giving back values to reach a valid count", "param", p.name, "count", k)
				prs.q.prepend(p.popLast(prs.ctx, k))
				return found - k, nil
			}
		}
	}
	return 0, &MissingArgument{
		Param: p,
		Msg:   fmt.Sprintf("expected %d values, but only found %d", p.nargs.Min(), found),
	}
}

// rescuePositional reclaims tokens for a positional that starved
// mid-consume: its own partial values are rewound and a previously satisfied
// parameter gives back enough of its tail to cover the shortfall. The
// positional then reparses from the queue.
func (prs *parser) rescuePositional(p *Param) bool {
	if !prs.chain.allowBacktrack() || prs.rescued[p] {
		return false
	}
	ownCount := len(prs.ctx.rawValues(p))
	if ownCount > 0 && !p.poppable() {
		return false
	}
	victim, k := prs.findVictim(p, p.nargs.Min()-ownCount)
	if victim == nil {
		return false
	}
	own, _ := p.reset(prs.ctx)
	taken := victim.popLast(prs.ctx, k)
	Log.Debug("backtracking for starved positional", "param", p.name, "victim", victim.name, "count", k)
	prs.q.prepend(append(taken, own...))
	prs.posQueue = append([]*Param{p}, prs.posQueue...)
	prs.rescued[p] = true
	return true
}

// rescueTrailing covers positionals that never saw a token because an
// earlier parameter consumed everything. It reports whether tokens were
// reclaimed, in which case the token loop runs again.
func (prs *parser) rescueTrailing() bool {
	if len(prs.posQueue) == 0 || len(prs.q.toks) != 0 {
		return false
	}
	p := prs.posQueue[0]
	if p.kind != kindPositional || p.nargs.Satisfied(0) {
		return false
	}
	if !prs.chain.allowBacktrack() || prs.rescued[p] {
		return false
	}
	victim, k := prs.findVictim(p, p.nargs.Min())
	if victim == nil {
		return false
	}
	taken := victim.popLast(prs.ctx, k)
	Log.Debug("backtracking for starved positional", "param", p.name, "victim", victim.name, "count", k)
	prs.q.prepend(taken)
	prs.rescued[p] = true
	return true
}

// findVictim scans the consume history, most recent first, for a parameter
// that can give back at least needed values, and returns it with the
// smallest workable count.
func (prs *parser) findVictim(starved *Param, needed int) (*Param, int) {
	if needed < 1 {
		needed = 1
	}
	for i := len(prs.history) - 1; i >= 0; i-- {
		v := prs.history[i]
		if v == starved {
			continue
		}
		for _, k := range v.canPop(prs.ctx) {
			if k >= needed {
				return v, k
			}
		}
	}
	return nil, 0
}

// isOptionToken reports whether a dash-prefixed token resolves to a
// registered option here, which stops value consumption.
func (prs *parser) isOptionToken(tok string) bool {
	hits, err := prs.resolveShort(tok)
	return err != nil || hits != nil
}

// checkSubCommandOptions rejects option tokens that belong to a subcommand
// while this command still has positionals to fill, because their values
// would otherwise be misread as positional values.
func (prs *parser) checkSubCommandOptions(tok string) error {
	if len(prs.posQueue) == 0 {
		return nil
	}
	if p := prs.findNestedOption(tok); p != nil && p.acceptsValues() {
		return &ParamUsageError{Param: p, Msg: "subcommand arguments must be provided after the subcommand"}
	}
	return nil
}

func (prs *parser) findNestedOption(tok string) *Param {
	if prs.reg.subParam == nil {
		return nil
	}
	return findNestedOption(prs.reg.subParam.choiceMap, tok)
}

func findNestedOption(m *choiceMap, tok string) *Param {
	for _, ent := range m.entries {
		if ent.cmd == nil || ent.cmd.registry == nil {
			continue
		}
		reg := ent.cmd.registry
		if strings.HasPrefix(tok, "--") {
			name, _, _ := strings.Cut(tok[2:], "=")
			if ref, ok := reg.lookupLong(name); ok {
				return ref.param
			}
		} else if strings.HasPrefix(tok, "-") && len(tok) > 1 {
			name, _, _ := strings.Cut(tok[1:], "=")
			if ref, ok := reg.lookupShort(name); ok {
				return ref.param
			}
			if ref, ok := reg.lookupShort(name[:1]); ok {
				return ref.param
			}
		}
		if reg.subParam != nil {
			if p := findNestedOption(reg.subParam.choiceMap, tok); p != nil {
				return p
			}
		}
	}
	return nil
}

// finish validates what the token loop recorded and either dispatches to
// the selected subcommand or settles the leaf: environment and source
// fills, the missing-parameter check, unrecognized arguments, final arity
// validation, and target binding.
func (prs *parser) finish() (*Context, error) {
	ctx := prs.ctx
	ctx.remaining = prs.deferred
	for _, g := range prs.reg.groups {
		if err := g.validate(ctx); err != nil {
			return ctx, err
		}
	}
	if sub := prs.reg.subParam; sub != nil {
		if ctx.NumProvided(sub) == 0 {
			if sub.required && !prs.chain.allowMissing() {
				return ctx, &MissingArgument{Param: sub}
			}
		} else {
			ent, err := sub.choiceMap.resolve(ctx, sub)
			if err != nil {
				return ctx, err
			}
			switch {
			case ent.cmd != nil:
				return prs.dispatch(ent.cmd)
			case ent.fn != nil:
				ctx.mainFn = ent.fn
			}
		}
	}
	if err := prs.fillFromEnv(); err != nil {
		return ctx, err
	}
	if err := prs.fillFromSources(); err != nil {
		return ctx, err
	}
	if missing := prs.missingParams(); len(missing) > 0 && !prs.chain.allowMissing() {
		return ctx, &ParamsMissing{Params: missing}
	} else if len(ctx.remaining) > 0 && !prs.chain.ignoreUnknown() {
		return ctx, &NoSuchOption{Msg: "unrecognized arguments: " + strings.Join(ctx.remaining, " ")}
	}
	if err := prs.validateTotals(); err != nil {
		return ctx, err
	}
	return ctx, fillTargets(ctx)
}

func (prs *parser) dispatch(next *Command) (*Context, error) {
	ctx := prs.ctx
	// The child revalidates inherited requirements, so the missing check
	// only applies here when dispatching outside the registered chain.
	if next.parent != ctx.cmd {
		if missing := prs.missingParams(); len(missing) > 0 && !prs.chain.allowMissing() {
			return ctx, &ParamsMissing{Params: missing}
		}
	}
	if err := next.finalize(); err != nil {
		return ctx, err
	}
	Log.Debug("dispatching to subcommand", "command", next.Name, "argv", ctx.remaining)
	child := ctx.spawnChild(next, ctx.remaining)
	ctx.remaining = nil
	return parseContext(child)
}

// fillFromEnv records values from declared environment variables for
// parameters the command line left untouched.
func (prs *parser) fillFromEnv() error {
	for _, p := range prs.reg.all {
		if len(p.envVars) == 0 || !p.sourceFillable() || prs.ctx.NumProvided(p) > 0 {
			continue
		}
		for _, name := range p.envVars {
			raw, ok := os.LookupEnv(name)
			if !ok {
				continue
			}
			if err := prs.fillValue(p, []string{raw}); err != nil {
				return err
			}
			Log.Debug("filled from environment", "param", p.name, "var", name)
			prs.ctx.store.envFilled[p] = true
			break
		}
	}
	return nil
}

// fillFromSources consults configured value sources, in order, for
// parameters that still have nothing recorded.
func (prs *parser) fillFromSources() error {
	sources := prs.chain.valueSources()
	if len(sources) == 0 {
		return nil
	}
	for _, p := range prs.reg.all {
		if !p.sourceFillable() || p.kind == kindActionFlag || prs.ctx.NumProvided(p) > 0 {
			continue
		}
		for _, src := range sources {
			vals, ok := src.Lookup(p.name)
			if !ok {
				continue
			}
			if err := prs.fillValue(p, vals); err != nil {
				return err
			}
			Log.Debug("filled from value source", "param", p.name)
			prs.ctx.store.envFilled[p] = true
			break
		}
	}
	return nil
}

// fillValue records non-CLI values through the same actions argv values
// take, so casting, validation, and arity rules hold everywhere.
func (prs *parser) fillValue(p *Param, vals []string) error {
	switch p.action {
	case actionStoreConst, actionAppendConst:
		on, err := strconv.ParseBool(vals[0])
		if err != nil {
			return &BadArgument{Param: p, Msg: fmt.Sprintf("invalid value=%q", vals[0]), Err: err}
		}
		if !on {
			if p.kind == kindTriFlag {
				return p.storeAltConst(prs.ctx)
			}
			// A falsy value for a plain flag leaves the default in place.
			return nil
		}
		_, err = p.takeAction(prs.ctx, nil, false)
		return err
	default:
		for _, v := range vals {
			v := v
			if _, err := p.takeAction(prs.ctx, &v, false); err != nil {
				return err
			}
		}
		if !p.nargs.Satisfied(len(vals)) {
			return &BadArgument{
				Param: p,
				Msg:   fmt.Sprintf("expected nargs=%v values but found %d", p.nargs, len(vals)),
			}
		}
		return nil
	}
}

// missingParams collects required, ungrouped parameters that nothing
// provided. Subcommand and action parameters report through their own
// resolution instead.
func (prs *parser) missingParams() []*Param {
	var missing []*Param
	for _, p := range prs.reg.all {
		if !p.required || p.group != nil || p.kind == kindSubCommand || p.kind == kindAction {
			continue
		}
		if prs.ctx.NumProvided(p) == 0 {
			missing = append(missing, p)
		}
	}
	return missing
}

// validateTotals applies each multi-value parameter's arity to its total
// across every occurrence, which per-run checks cannot see.
func (prs *parser) validateTotals() error {
	for _, p := range prs.reg.all {
		if p.action != actionAppend {
			continue
		}
		total := p.storedCount(prs.ctx)
		if total > 0 && !p.nargs.Satisfied(total) {
			return &BadArgument{
				Param: p,
				Msg:   fmt.Sprintf("expected nargs=%v values but found %d", p.nargs, total),
			}
		}
	}
	return nil
}

// fillTargets unmarshals final values into every declared target across the
// dispatched chain.
func fillTargets(ctx *Context) error {
	seen := make(map[*Param]bool)
	for c := ctx; c != nil; c = c.parent {
		reg := c.cmd.registry
		if reg == nil {
			continue
		}
		for _, p := range reg.all {
			if p.target == nil || seen[p] {
				continue
			}
			seen[p] = true
			if ctx.NumProvided(p) == 0 && !p.hasDefault {
				continue
			}
			if err := fillTarget(p.target, p.resultValue(ctx)); err != nil {
				return err
			}
		}
	}
	return nil
}
