package cmdparse

// PassThru declares a parameter that collects every token after the first
// standalone "--" separator, verbatim and in order. Tokens after the
// separator are never interpreted as options. At most one PassThru may be
// declared per command, and nothing may be declared after it.
func PassThru(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindPassThru, actionStoreAll)
	p.nargs = NargsRemainder()
	p.applyOpts(opts)
	return p
}
