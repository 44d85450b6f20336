package cmdparse

import (
	"fmt"
	"math"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// helpParam builds the automatically added --help / -h flag. It runs before
// every other action flag and still fires when parsing fails, so asking for
// help always answers.
func helpParam() *Param {
	p := ActionFlag("help", runHelp, Short("-h"), Help("Show this help message and exit"))
	p.order = math.MinInt
	p.alwaysRun = true
	return p
}

func runHelp(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, ctx.Help())
	return ErrHelp
}

// Usage returns the one-line synopsis for this context's command.
func (ctx *Context) Usage() string {
	return ctx.renderer().usageLine()
}

// Help returns the full help text for this context's command.
func (ctx *Context) Help() string {
	return ctx.renderer().render()
}

func (ctx *Context) renderer() *helpRenderer {
	chain := ctx.chain()
	return &helpRenderer{
		cmd:    ctx.cmd,
		width:  ctx.TerminalWidth(),
		column: chain.usageColumn(),
	}
}

type helpRenderer struct {
	cmd    *Command
	width  int
	column int
}

func (r *helpRenderer) usageLine() string {
	reg := r.cmd.registry
	parts := []string{"usage:", progPath(r.cmd)}
	for _, p := range reg.positionals {
		if !p.hidden {
			parts = append(parts, posUsage(p, false))
		}
	}
	for _, p := range r.options() {
		if !p.hidden {
			parts = append(parts, optBasicUsage(p))
		}
	}
	if pt := reg.passThru; pt != nil && !pt.hidden {
		if pt.required {
			parts = append(parts, "-- "+metavar(pt))
		} else {
			parts = append(parts, "[-- "+metavar(pt)+"]")
		}
	}
	return strings.Join(parts, " ")
}

// options returns the optional parameters in display order: inherited forms
// first, then this command's own.
func (r *helpRenderer) options() []*Param {
	reg := r.cmd.registry
	out := make([]*Param, 0, len(reg.inherited)+len(reg.options))
	out = append(out, reg.inherited...)
	out = append(out, reg.options...)
	return out
}

func (r *helpRenderer) render() string {
	var b strings.Builder
	b.WriteString(r.usageLine())
	b.WriteString("\n")
	if r.cmd.Desc != "" {
		b.WriteString("\n")
		b.WriteString(r.cmd.Desc)
		b.WriteString("\n")
	}

	reg := r.cmd.registry
	var plain []*Param
	var choicePs []*Param
	for _, p := range reg.positionals {
		if p.hidden || p.group != nil {
			continue
		}
		if p.choiceMap != nil {
			choicePs = append(choicePs, p)
		} else {
			plain = append(plain, p)
		}
	}
	if len(plain) > 0 {
		b.WriteString("\nPositional arguments:\n")
		for _, p := range plain {
			r.entry(&b, posUsage(p, true), describe(p), 2)
		}
	}
	for _, p := range choicePs {
		title := "Subcommands"
		if p.kind == kindAction {
			title = "Actions"
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		r.entry(&b, metavar(p), p.help, 2)
		for _, ent := range p.choiceMap.entries {
			help := ent.help
			if help == "" && ent.cmd != nil {
				help = ent.cmd.Desc
			}
			r.entry(&b, ent.value, help, 4)
		}
	}

	var opts []*Param
	for _, p := range r.options() {
		if !p.hidden && p.group == nil {
			opts = append(opts, p)
		}
	}
	if len(opts) > 0 || reg.passThru != nil {
		b.WriteString("\nOptional arguments:\n")
		for _, p := range opts {
			r.entry(&b, optFullUsage(p), describe(p), 2)
		}
		if pt := reg.passThru; pt != nil && !pt.hidden && pt.group == nil {
			r.entry(&b, "-- "+metavar(pt), describe(pt), 2)
		}
	}

	for _, g := range reg.groups {
		var visible []*Param
		for _, p := range g.members {
			if !p.hidden {
				visible = append(visible, p)
			}
		}
		if len(visible) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", groupTitle(g))
		for _, p := range visible {
			usage := optFullUsage(p)
			if p.positional() {
				usage = posUsage(p, true)
			}
			r.entry(&b, usage, describe(p), 2)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// entry renders one two-column row: the usage form at lpad, the description
// starting at the usage column, wrapped to the terminal width. A usage form
// too wide for its column pushes the description to the next line.
func (r *helpRenderer) entry(b *strings.Builder, usage, desc string, lpad int) {
	line := strings.Repeat(" ", lpad) + usage
	if desc == "" {
		b.WriteString(line)
		b.WriteString("\n")
		return
	}
	if len(line) < r.column {
		joined := line + strings.Repeat(" ", r.column-len(line)) + desc
		if len(joined) <= r.width {
			b.WriteString(joined)
			b.WriteString("\n")
			return
		}
	}
	b.WriteString(line)
	b.WriteString("\n")
	r.wrapped(b, desc)
}

func (r *helpRenderer) wrapped(b *strings.Builder, desc string) {
	indent := strings.Repeat(" ", r.column)
	limit := r.width - r.column
	if limit < 20 {
		limit = 20
	}
	for _, l := range strings.Split(wordwrap.String(desc, limit), "\n") {
		b.WriteString(indent)
		b.WriteString(l)
		b.WriteString("\n")
	}
}

func groupTitle(g *Group) string {
	title := g.description
	if title == "" {
		title = g.name + " options"
	}
	switch {
	case g.exclusive:
		title += " (mutually exclusive)"
	case g.dependent:
		title += " (mutually dependent)"
	}
	return title
}

func describe(p *Param) string {
	desc := p.help
	if !showDefault(p) {
		return desc
	}
	if desc != "" {
		return fmt.Sprintf("%s (default: %v)", desc, p.defaultVal)
	}
	return fmt.Sprintf("(default: %v)", p.defaultVal)
}

func showDefault(p *Param) bool {
	if !p.hasDefault || p.defaultVal == nil || p.kind == kindActionFlag {
		return false
	}
	if v, ok := p.defaultVal.(bool); ok && !v {
		return false
	}
	return !strings.Contains(strings.ToLower(p.help), "default")
}

func metavar(p *Param) string {
	if p.choiceMap != nil && len(p.choiceMap.entries) > 0 {
		return "{" + strings.Join(p.choiceMap.values(), ",") + "}"
	}
	if len(p.choices) > 0 {
		return "{" + strings.Join(p.choices, ",") + "}"
	}
	if p.metavar != "" {
		return p.metavar
	}
	return strings.ToUpper(p.name)
}

func posUsage(p *Param, full bool) string {
	mv := metavar(p)
	if p.choiceMap != nil {
		return mv
	}
	if p.nargs.Min() == 1 && p.nargs.Max() == 1 {
		return mv
	}
	if full || !p.nargs.Satisfied(1) {
		return fmt.Sprintf("%s [%s ...]", mv, mv)
	}
	return mv
}

// optForms returns every display form for an option, primary forms first.
func optForms(p *Param) []string {
	var forms []string
	for _, l := range p.effectiveLongs() {
		forms = append(forms, "--"+l)
	}
	for _, s := range p.shorts {
		forms = append(forms, "-"+s)
	}
	for _, l := range p.effectiveAltLongs() {
		forms = append(forms, "--"+l)
	}
	for _, s := range p.altShorts {
		forms = append(forms, "-"+s)
	}
	return forms
}

func optValueSuffix(p *Param) string {
	switch {
	case p.nargs.Max() == 0:
		return ""
	case p.kind == kindCounter:
		return " [" + metavar(p) + "]"
	case !p.nargs.HasMax() || p.nargs.Max() > 1:
		mv := metavar(p)
		return fmt.Sprintf(" %s [%s ...]", mv, mv)
	default:
		return " " + metavar(p)
	}
}

func optBasicUsage(p *Param) string {
	forms := optForms(p)
	if len(forms) == 0 {
		return p.name
	}
	usage := forms[0] + optValueSuffix(p)
	if p.required {
		return usage
	}
	return "[" + usage + "]"
}

func optFullUsage(p *Param) string {
	forms := optForms(p)
	if len(forms) == 0 {
		return p.name
	}
	suffix := optValueSuffix(p)
	parts := make([]string, len(forms))
	for i, f := range forms {
		parts[i] = f + suffix
	}
	return strings.Join(parts, ", ")
}

func progPath(cmd *Command) string {
	var names []string
	for c := cmd; c != nil; c = c.parent {
		names = append([]string{c.Name}, names...)
	}
	return strings.Join(names, " ")
}
