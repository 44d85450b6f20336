package cmdparse

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMutuallyExclusiveGroup(t *testing.T) {
	c := qt.New(t)
	newCmd := func() *Command {
		g := NewGroup("format", MutuallyExclusive())
		g.Add(Flag("json"), Flag("yaml"))
		return New("tool").AddGroup(g)
	}

	ctx, err := newCmd().Parse([]string{"--json"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Bool("json"), qt.IsTrue)

	ctx, err = newCmd().Parse(nil)
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Bool("json"), qt.IsFalse)

	_, err = newCmd().Parse([]string{"--json", "--yaml"})
	c.Assert(err, qt.ErrorMatches,
		`argument conflict - the following arguments cannot be combined: --json, --yaml`)
}

func TestMutuallyDependentGroup(t *testing.T) {
	c := qt.New(t)
	newCmd := func() *Command {
		g := NewGroup("auth", MutuallyDependent())
		g.Add(Option("user"), Option("pass"))
		return New("tool").AddGroup(g)
	}

	ctx, err := newCmd().Parse([]string{"--user", "bob", "--pass", "x"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.String("user"), qt.Equals, "bob")

	ctx, err = newCmd().Parse(nil)
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Value("user"), qt.IsNil)

	_, err = newCmd().Parse([]string{"--user", "bob"})
	c.Assert(err, qt.ErrorMatches,
		`arguments missing - the following arguments are required: --pass`)
}

func TestRequiredGroup(t *testing.T) {
	c := qt.New(t)
	newCmd := func() *Command {
		g := NewGroup("input", GroupRequired())
		g.Add(Option("file"), Option("url"))
		return New("tool").AddGroup(g)
	}

	ctx, err := newCmd().Parse([]string{"--url", "http://x"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.String("url"), qt.Equals, "http://x")

	_, err = newCmd().Parse(nil)
	c.Assert(err, qt.ErrorMatches,
		`arguments missing - the following arguments are required: --file, --url`)
}

func TestGroupMembersParseNormally(t *testing.T) {
	c := qt.New(t)
	g := NewGroup("tuning", GroupHelp("Performance tuning"))
	g.Add(Option("jobs", Short("-j"), Convert(ToInt), Default(1)), Flag("fast"))
	cmd := New("tool").AddGroup(g)

	ctx, err := cmd.Parse([]string{"-j", "4", "--fast"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Int("jobs"), qt.Equals, 4)
	c.Check(ctx.Bool("fast"), qt.IsTrue)
}
