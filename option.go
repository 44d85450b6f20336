package cmdparse

// Option declares a named parameter that takes values ("--name value",
// "--name=value", "-n value"). The default arity is exactly one value; pass
// Arity to accept more. An arity admitting zero values is a definition
// error: use Flag or Counter for parameters that fire without a value.
func Option(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindOption, actionStore)
	p.nargs = NargsExact(1)
	p.applyOpts(opts)
	if p.nargs.remainder {
		panic(defErr("invalid nargs=%v for option %q: remainder arity is only valid for PassThru", p.nargs, name))
	}
	if p.nargs.Satisfied(0) {
		panic(defErr(
			"invalid nargs=%v for option %q: use Flag or Counter for parameters that can appear without a value",
			p.nargs, name))
	}
	if p.required && p.hasDefault {
		panic(defErr("option %q cannot be required and also have a default value", name))
	}
	if !(p.nargs.Min() == 1 && p.nargs.Max() == 1) {
		p.action = actionAppend
	}
	return p
}
