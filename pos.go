package cmdparse

// Positional declares a parameter filled from bare (non-option) tokens in
// declaration order. The default arity is exactly one value. A positional is
// required unless its arity admits zero values, and only a non-required
// positional may carry a default.
func Positional(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindPositional, actionStore)
	p.nargs = NargsExact(1)
	p.required = true
	p.applyOpts(opts)
	if p.nargs.remainder {
		panic(defErr("invalid nargs=%v for positional %q: remainder arity is only valid for PassThru", p.nargs, name))
	}
	if p.nargs.Max() == 0 {
		panic(defErr("invalid nargs=%v for positional %q: at least one value must be accepted", p.nargs, name))
	}
	p.required = !p.nargs.Satisfied(0)
	if p.hasDefault && p.required {
		panic(defErr("positional %q cannot have a default value unless nargs allows 0 values", name))
	}
	if !(p.nargs.Min() <= 1 && p.nargs.Max() == 1) {
		p.action = actionAppend
	}
	return p
}
