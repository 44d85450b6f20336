package cmdparse

// Group collects parameters for shared help placement and cross-parameter
// validation. A mutually exclusive group rejects combining members; a
// mutually dependent group requires all members once any appears; a required
// group requires at least one member.
type Group struct {
	name        string
	description string
	members     []*Param
	exclusive   bool
	dependent   bool
	required    bool
}

type GroupOpt func(*Group)

func MutuallyExclusive() GroupOpt {
	return func(g *Group) { g.exclusive = true }
}

func MutuallyDependent() GroupOpt {
	return func(g *Group) { g.dependent = true }
}

func GroupRequired() GroupOpt {
	return func(g *Group) { g.required = true }
}

func GroupHelp(description string) GroupOpt {
	return func(g *Group) { g.description = description }
}

func NewGroup(name string, opts ...GroupOpt) *Group {
	if name == "" {
		panic(defErr("group name must not be empty"))
	}
	g := &Group{name: name}
	for _, opt := range opts {
		opt(g)
	}
	if g.exclusive && g.dependent {
		panic(defErr("group %q cannot be both mutually exclusive and mutually dependent", name))
	}
	return g
}

// Add places params in the group. Adding the group to a command also adds
// its members.
func (g *Group) Add(params ...*Param) *Group {
	for _, p := range params {
		if p == nil {
			panic(defErr("cannot add a nil parameter to group %q", g.name))
		}
		if p.group != nil {
			panic(defErr("%s is already a member of group %q", p, p.group.name))
		}
		if g.exclusive && p.positional() && p.required {
			panic(defErr("required positional %s cannot be in a mutually exclusive group", p))
		}
		p.group = g
		g.members = append(g.members, p)
	}
	return g
}

// validate enforces the group's combination rules against what this
// invocation provided. Defaults and unset members do not count as provided.
func (g *Group) validate(ctx *Context) error {
	var given, absent []*Param
	for _, p := range g.members {
		if ctx.NumProvided(p) > 0 {
			given = append(given, p)
		} else {
			absent = append(absent, p)
		}
	}
	if g.exclusive && len(given) > 1 {
		return &ParamConflict{Params: given}
	}
	if g.dependent && len(given) > 0 && len(absent) > 0 {
		return &ParamsMissing{Params: absent}
	}
	if g.required && len(given) == 0 {
		return &ParamsMissing{Params: g.members}
	}
	return nil
}
