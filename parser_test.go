package cmdparse

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

type parseCase struct {
	argv []string
	want map[string]interface{}
}

func checkParses(c *qt.C, cmd *Command, cases []parseCase) {
	for _, tc := range cases {
		ctx, err := cmd.Parse(tc.argv)
		c.Assert(err, qt.IsNil, qt.Commentf("argv=%q", tc.argv))
		for name, want := range tc.want {
			c.Check(ctx.Value(name), qt.DeepEquals, want, qt.Commentf("argv=%q param=%s", tc.argv, name))
		}
	}
}

func checkFails(c *qt.C, cmd *Command, fails [][]string) {
	for _, argv := range fails {
		_, err := cmd.Parse(argv)
		c.Assert(err, qt.IsNotNil, qt.Commentf("argv=%q", argv))
		c.Check(IsUsageError(err), qt.IsTrue, qt.Commentf("argv=%q err=%v", argv, err))
	}
}

func TestPositionalEvenRange(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo").Add(Positional("foo", Arity(NargsStep(2, 6, 2))))
	checkParses(c, cmd, []parseCase{
		{[]string{"a", "b"}, map[string]interface{}{"foo": []string{"a", "b"}}},
		{[]string{"a", "b", "c", "d"}, map[string]interface{}{"foo": []string{"a", "b", "c", "d"}}},
	})
	checkFails(c, cmd, [][]string{
		{},
		{"a"},
		{"a", "b", "c"},
		{"a", "b", "c", "d", "e"},
	})
}

func TestPos1WithEvenRangeOption(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo").Add(
		Positional("foo"),
		Option("bar", Arity(NargsStep(2, 6, 2))),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{"z", "--bar", "a", "b"}, map[string]interface{}{"foo": "z", "bar": []string{"a", "b"}}},
		{[]string{"z", "--bar", "a", "b", "c", "d"}, map[string]interface{}{"foo": "z", "bar": []string{"a", "b", "c", "d"}}},
		{[]string{"--bar", "a", "b", "z"}, map[string]interface{}{"foo": "z", "bar": []string{"a", "b"}}},
		{[]string{"--bar", "a", "b", "c", "d", "z"}, map[string]interface{}{"foo": "z", "bar": []string{"a", "b", "c", "d"}}},
	})
	checkFails(c, cmd, [][]string{
		{},
		{"z", "--bar", "a"},
		{"z", "--bar", "a", "b", "c"},
		{"--bar", "a", "b"},
		{"--bar", "a", "b", "c", "d"},
	})
}

func TestPos1WithEvenRangeOptionNoBacktrack(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo", AllowBacktrack(false)).Add(
		Positional("foo"),
		Option("bar", Arity(NargsStep(2, 6, 2))),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{"z", "--bar", "a", "b"}, map[string]interface{}{"foo": "z", "bar": []string{"a", "b"}}},
		{[]string{"z", "--bar", "a", "b", "c", "d"}, map[string]interface{}{"foo": "z", "bar": []string{"a", "b", "c", "d"}}},
		{[]string{"--bar", "a", "b", "c", "d", "z"}, map[string]interface{}{"foo": "z", "bar": []string{"a", "b", "c", "d"}}},
	})
	checkFails(c, cmd, [][]string{
		{},
		{"z", "--bar", "a"},
		{"z", "--bar", "a", "b", "c"},
		{"--bar", "a", "b"},
		{"--bar", "a", "b", "c", "d"},
		{"--bar", "a", "b", "z"},
	})
}

func TestPos2WithEvenRangeOption(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo").Add(
		Positional("foo", Arity(NargsExact(2))),
		Option("bar", Arity(NargsStep(2, 6, 2))),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{"y", "z", "--bar", "a", "b"}, map[string]interface{}{"foo": []string{"y", "z"}, "bar": []string{"a", "b"}}},
		{[]string{"y", "z", "--bar", "a", "b", "c", "d"}, map[string]interface{}{"foo": []string{"y", "z"}, "bar": []string{"a", "b", "c", "d"}}},
		{[]string{"--bar", "a", "b", "y", "z"}, map[string]interface{}{"foo": []string{"y", "z"}, "bar": []string{"a", "b"}}},
		{[]string{"--bar", "a", "b", "c", "d", "y", "z"}, map[string]interface{}{"foo": []string{"y", "z"}, "bar": []string{"a", "b", "c", "d"}}},
	})
	checkFails(c, cmd, [][]string{
		{},
		{"z", "--bar", "a"},
		{"y", "z", "--bar", "a"},
		{"z", "--bar", "a", "b"},
		{"y", "z", "--bar", "a", "b", "c"},
		{"z", "--bar", "a", "b", "c"},
		{"--bar", "a"},
		{"--bar", "a", "b"},
		{"--bar", "a", "b", "c"},
		{"--bar", "a", "b", "c", "d", "e"},
	})
}

func TestPos2WithEvenRangeOptionNoBacktrack(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo", AllowBacktrack(false)).Add(
		Positional("foo", Arity(NargsExact(2))),
		Option("bar", Arity(NargsStep(2, 6, 2))),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{"y", "z", "--bar", "a", "b"}, map[string]interface{}{"foo": []string{"y", "z"}, "bar": []string{"a", "b"}}},
		{[]string{"y", "z", "--bar", "a", "b", "c", "d"}, map[string]interface{}{"foo": []string{"y", "z"}, "bar": []string{"a", "b", "c", "d"}}},
		{[]string{"--bar", "a", "b", "c", "d", "y", "z"}, map[string]interface{}{"foo": []string{"y", "z"}, "bar": []string{"a", "b", "c", "d"}}},
	})
	checkFails(c, cmd, [][]string{
		{},
		{"z", "--bar", "a"},
		{"y", "z", "--bar", "a"},
		{"z", "--bar", "a", "b"},
		{"y", "z", "--bar", "a", "b", "c"},
		{"z", "--bar", "a", "b", "c"},
		{"--bar", "a"},
		{"--bar", "a", "b"},
		{"--bar", "a", "b", "c"},
		{"--bar", "a", "b", "c", "d", "e"},
		{"--bar", "a", "b", "y", "z"},
	})
}

func TestPos3WithEvenRangeOption(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo").Add(
		Positional("foo", Arity(NargsExact(3))),
		Option("bar", Arity(NargsStep(2, 6, 2))),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{"x", "y", "z", "--bar", "a", "b"}, map[string]interface{}{"foo": []string{"x", "y", "z"}, "bar": []string{"a", "b"}}},
		{[]string{"x", "y", "z", "--bar", "a", "b", "c", "d"}, map[string]interface{}{"foo": []string{"x", "y", "z"}, "bar": []string{"a", "b", "c", "d"}}},
		{[]string{"--bar", "a", "b", "x", "y", "z"}, map[string]interface{}{"foo": []string{"x", "y", "z"}, "bar": []string{"a", "b"}}},
		{[]string{"--bar", "a", "b", "c", "d", "x", "y", "z"}, map[string]interface{}{"foo": []string{"x", "y", "z"}, "bar": []string{"a", "b", "c", "d"}}},
	})
	checkFails(c, cmd, [][]string{
		{},
		{"z", "--bar", "a"},
		{"y", "z", "--bar", "a"},
		{"x", "y", "z", "--bar", "a"},
		{"z", "--bar", "a", "b"},
		{"y", "z", "--bar", "a", "b", "c"},
		{"x", "y", "z", "--bar", "a", "b", "c"},
		{"z", "--bar", "a", "b", "c"},
		{"--bar", "a", "b", "c"},
		{"--bar", "a", "b", "c", "d"},
		{"--bar", "a", "b", "c", "d", "e", "f"},
	})
}

func TestPosInt3WithEvenRangeOption(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo").Add(
		Positional("foo", Arity(NargsExact(3)), Convert(ToInt)),
		Option("bar", Arity(NargsStep(2, 6, 2))),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{"1", "2", "3", "--bar", "a", "b"},
			map[string]interface{}{"foo": []interface{}{1, 2, 3}, "bar": []string{"a", "b"}}},
		{[]string{"1", "2", "3", "--bar", "a", "b", "c", "d"},
			map[string]interface{}{"foo": []interface{}{1, 2, 3}, "bar": []string{"a", "b", "c", "d"}}},
		{[]string{"--bar", "a", "b", "c", "d", "1", "2", "3"},
			map[string]interface{}{"foo": []interface{}{1, 2, 3}, "bar": []string{"a", "b", "c", "d"}}},
	})
	// Typed values cannot be taken back once stored, so a short option run
	// before the typed positional cannot be repaired by backtracking.
	checkFails(c, cmd, [][]string{
		{},
		{"--bar", "a", "b", "1", "2", "3"},
	})
}

func TestPosAfterVariableNargs(t *testing.T) {
	c := qt.New(t)
	for n := 1; n <= 3; n++ {
		cmd := New("foo").Add(
			Positional("foo", Arity(NargsExact(n))),
			Option("bar", Arity(NargsRange(1, Unbounded))),
		)
		foo := make([]string, n)
		for i := range foo {
			foo[i] = "a"
		}
		var exp interface{} = foo
		if n == 1 {
			exp = "a"
		}
		checkParses(c, cmd, []parseCase{
			{append(append([]string{}, foo...), "--bar", "w", "x"),
				map[string]interface{}{"foo": exp, "bar": []string{"w", "x"}}},
			{append(append([]string{}, foo...), "--bar", "w", "x", "y", "z"),
				map[string]interface{}{"foo": exp, "bar": []string{"w", "x", "y", "z"}}},
			{append([]string{"--bar", "w", "x"}, foo...),
				map[string]interface{}{"foo": exp, "bar": []string{"w", "x"}}},
			{append([]string{"--bar", "w", "x", "y", "z"}, foo...),
				map[string]interface{}{"foo": exp, "bar": []string{"w", "x", "y", "z"}}},
		})
	}
}

func TestPosIntAfterVariableNargs(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo").Add(
		Positional("foo", Arity(NargsExact(2)), Convert(ToInt)),
		Option("bar", Arity(NargsRange(1, Unbounded))),
		Flag("baz"),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{"1", "2", "--bar", "a", "b"},
			map[string]interface{}{"foo": []interface{}{1, 2}, "bar": []string{"a", "b"}, "baz": false}},
		{[]string{"1", "2", "--bar", "a", "b", "c", "d"},
			map[string]interface{}{"foo": []interface{}{1, 2}, "bar": []string{"a", "b", "c", "d"}, "baz": false}},
		{[]string{"--bar", "a", "b", "1", "2"},
			map[string]interface{}{"foo": []interface{}{1, 2}, "bar": []string{"a", "b"}, "baz": false}},
		{[]string{"--bar", "a", "b", "c", "d", "1", "2"},
			map[string]interface{}{"foo": []interface{}{1, 2}, "bar": []string{"a", "b", "c", "d"}, "baz": false}},
	})
	checkFails(c, cmd, [][]string{
		{},
		{"1"},
		{"--baz", "1"},
		{"z", "--bar", "a"},
		{"y", "z", "--bar", "a"},
		{"z", "--bar", "a", "b"},
		{"y", "z", "--bar", "a", "b", "c"},
		{"z", "--bar", "a", "b", "c"},
		{"--bar", "a"},
		{"--bar", "1"},
		{"--bar", "a", "b"},
		{"--bar", "1", "2"},
		{"--bar", "a", "b", "1"},
		{"--bar", "a", "b", "1", "d"},
	})
}

func TestDefaultsWithNargsMulti(t *testing.T) {
	c := qt.New(t)
	cmd := New("foo").Add(
		Option("bar", Short("-b"), Arity(NargsRange(1, Unbounded)), Convert(ToInt), Default([]int{1})),
	)
	checkParses(c, cmd, []parseCase{
		{[]string{}, map[string]interface{}{"bar": []int{1}}},
		{[]string{"-b", "2"}, map[string]interface{}{"bar": []interface{}{2}}},
		{[]string{"-b=2"}, map[string]interface{}{"bar": []interface{}{2}}},
		{[]string{"--bar", "2", "3"}, map[string]interface{}{"bar": []interface{}{2, 3}}},
	})
	checkFails(c, cmd, [][]string{
		{"-b=2", "3"},
		{"-b"},
	})
}

func TestOptionValueForms(t *testing.T) {
	c := qt.New(t)
	cmd := New("cp").Add(Option("out", Short("-o")))
	checkParses(c, cmd, []parseCase{
		{[]string{"--out", "x"}, map[string]interface{}{"out": "x"}},
		{[]string{"--out=x"}, map[string]interface{}{"out": "x"}},
		{[]string{"-o", "x"}, map[string]interface{}{"out": "x"}},
		{[]string{"-o=x"}, map[string]interface{}{"out": "x"}},
		{[]string{"-ox"}, map[string]interface{}{"out": "x"}},
	})
	checkFails(c, cmd, [][]string{
		{"--out"},
		{"--out", "x", "--out", "y"},
	})
}

func TestShortFlagCombos(t *testing.T) {
	c := qt.New(t)
	cmd := New("tool").Add(
		Flag("all", Short("-a")),
		Flag("brief", Short("-b")),
		Option("out", Short("-o")),
	)
	ctx, err := cmd.Parse([]string{"-ab"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Bool("all"), qt.IsTrue)
	c.Check(ctx.Bool("brief"), qt.IsTrue)

	ctx, err = cmd.Parse([]string{"-abo", "file"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Bool("all"), qt.IsTrue)
	c.Check(ctx.Bool("brief"), qt.IsTrue)
	c.Check(ctx.String("out"), qt.Equals, "file")

	// Not a cluster: the first char takes the rest as its value.
	ctx, err = cmd.Parse([]string{"-oa"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.String("out"), qt.Equals, "a")

	// A value-taking option anywhere but last in a cluster is an error.
	_, err = cmd.Parse([]string{"-aob"})
	c.Assert(err, qt.IsNotNil)
	c.Check(IsUsageError(err), qt.IsTrue)
}

func TestCounter(t *testing.T) {
	c := qt.New(t)
	cmd := New("tool").Add(Counter("verbose", Short("-v")))
	cases := []struct {
		argv []string
		want int
	}{
		{nil, 0},
		{[]string{"-v"}, 1},
		{[]string{"-v", "-v"}, 2},
		{[]string{"-vvv"}, 3},
		{[]string{"-v3"}, 3},
		{[]string{"--verbose", "--verbose"}, 2},
		{[]string{"--verbose=2"}, 2},
		{[]string{"-v2", "-v"}, 3},
	}
	for _, tc := range cases {
		ctx, err := cmd.Parse(tc.argv)
		c.Assert(err, qt.IsNil, qt.Commentf("argv=%q", tc.argv))
		c.Check(ctx.Int("verbose"), qt.Equals, tc.want, qt.Commentf("argv=%q", tc.argv))
	}
	// Counters take inline values only; a separate token is not consumed.
	_, err := cmd.Parse([]string{"-v", "3"})
	c.Assert(err, qt.IsNotNil)
}

func TestAmbiguousShortCombo(t *testing.T) {
	c := qt.New(t)
	newCmd := func(settings ...Setting) *Command {
		return New("tool", settings...).Add(
			Flag("apple", Short("-a")),
			Flag("banana", Short("-b")),
			Flag("both", Short("-ab")),
		)
	}

	cmd := newCmd()
	ctx, err := cmd.Parse([]string{"-ab"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Bool("both"), qt.IsTrue)

	_, err = cmd.Parse([]string{"-aab"})
	var ambiguous *AmbiguousCombo
	c.Assert(err, qt.ErrorAs, &ambiguous)
	c.Check(ambiguous.Combo, qt.Equals, "aab")

	ignore := newCmd(ShortCombos(ComboIgnore))
	ctx, err = ignore.Parse([]string{"-aab"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Bool("apple"), qt.IsTrue)
	c.Check(ctx.Bool("banana"), qt.IsTrue)

	// Strict mode rejects the definition itself, before any input arrives.
	strict := newCmd(ShortCombos(ComboStrict))
	err = strict.Finalize()
	var short *AmbiguousShortForm
	c.Assert(err, qt.ErrorAs, &short)
	c.Check(ExitCode(err), qt.Equals, 2)
	_, err = strict.Parse(nil)
	c.Assert(err, qt.ErrorAs, &short)
}

func TestPassThru(t *testing.T) {
	c := qt.New(t)
	cmd := New("run").Add(
		Option("mode", Short("-m")),
		PassThru("args"),
	)
	ctx, err := cmd.Parse([]string{"-m", "fast", "--", "-x", "--y", "z"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.String("mode"), qt.Equals, "fast")
	c.Check(ctx.Strings("args"), qt.DeepEquals, []string{"-x", "--y", "z"})

	ctx, err = cmd.Parse([]string{"--"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.NumProvided(ctx.findParam("args")), qt.Equals, 1)
	c.Check(ctx.Strings("args"), qt.DeepEquals, []string{})

	// Everything after the first separator is verbatim, later separators
	// and option-like tokens included.
	ctx, err = cmd.Parse([]string{"--", "-m", "--", "x"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Value("mode"), qt.IsNil)
	c.Check(ctx.Strings("args"), qt.DeepEquals, []string{"-m", "--", "x"})

	ctx, err = cmd.Parse([]string{"-m", "slow"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Value("args"), qt.IsNil)
}

func TestPassThruRequired(t *testing.T) {
	c := qt.New(t)
	cmd := New("run").Add(PassThru("args", Required(true)))
	_, err := cmd.Parse([]string{})
	c.Assert(err, qt.ErrorMatches, `argument args: missing pass thru args separated from others with '--'`)

	ctx, err := cmd.Parse([]string{"--", "a"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Strings("args"), qt.DeepEquals, []string{"a"})
}

func TestDoubleDashWithoutPassThru(t *testing.T) {
	c := qt.New(t)
	cmd := New("tool").Add(Flag("x"))
	_, err := cmd.Parse([]string{"--", "a"})
	c.Assert(err, qt.ErrorMatches, `invalid argument: --`)
}

func TestNestedPassThru(t *testing.T) {
	c := qt.New(t)
	child := New("exec")
	child.Add(PassThru("args"))
	sub := SubCommand("action")
	sub.Register(child)
	root := New("tool").Add(Flag("debug"), sub)

	ctx, err := root.Parse([]string{"--debug", "exec", "--", "ls", "-la"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Command().Name, qt.Equals, "exec")
	c.Check(ctx.Bool("debug"), qt.IsTrue)
	c.Check(ctx.Strings("args"), qt.DeepEquals, []string{"ls", "-la"})

	// The separator may come before the dispatching word is consumed.
	ctx, err = root.Parse([]string{"exec", "--", "make", "all"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Strings("args"), qt.DeepEquals, []string{"make", "all"})
}

func TestLeadingDashValues(t *testing.T) {
	c := qt.New(t)
	cmd := New("calc").Add(Option("num", Convert(ToInt)))
	ctx, err := cmd.Parse([]string{"--num", "-3"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Int("num"), qt.Equals, -3)

	never := New("calc").Add(Option("num", Convert(ToInt), LeadingDash(DashNever)))
	_, err = never.Parse([]string{"--num", "-3"})
	c.Assert(err, qt.IsNotNil)

	always := New("grep").Add(Option("pattern", LeadingDash(DashAlways)))
	ctx, err = always.Parse([]string{"--pattern", "-x"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.String("pattern"), qt.Equals, "-x")

	// Non-numeric dash values are rejected under the default policy.
	_, err = cmd.Parse([]string{"--num", "-x"})
	c.Assert(err, qt.IsNotNil)
}

func TestUnknownArguments(t *testing.T) {
	c := qt.New(t)
	cmd := New("tool").Add(Flag("x"))
	_, err := cmd.Parse([]string{"--x", "--unknown"})
	c.Assert(err, qt.ErrorMatches, `unrecognized arguments: --unknown`)

	lenient := New("tool", IgnoreUnknown(true)).Add(Flag("x"))
	ctx, err := lenient.Parse([]string{"--x", "--unknown", "stray"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Remaining(), qt.DeepEquals, []string{"--unknown", "stray"})
}

func TestAllowMissing(t *testing.T) {
	c := qt.New(t)
	cmd := New("tool").Add(Positional("src"), Option("dst", Required(true)))
	_, err := cmd.Parse(nil)
	var missing *ParamsMissing
	c.Assert(err, qt.ErrorAs, &missing)
	c.Check(missing.Params, qt.HasLen, 2)

	lenient := New("tool", AllowMissing(true)).Add(Positional("src"), Option("dst", Required(true)))
	ctx, err := lenient.Parse(nil)
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Value("src"), qt.IsNil)
}

func TestSubCommandOptionBeforeSubcommand(t *testing.T) {
	c := qt.New(t)
	child := New("push")
	child.Add(Option("remote"), Flag("force", Short("-f")))
	sub := SubCommand("action")
	sub.Register(child)
	root := New("git").Add(sub)

	// A value-taking child option ahead of the subcommand word would steal
	// the word as its value, so it is rejected outright.
	_, err := root.Parse([]string{"--remote", "origin", "push"})
	c.Assert(err, qt.ErrorMatches, `.*subcommand arguments must be provided after the subcommand`)

	// Nullary child options are harmless ahead of the word; they are handed
	// to the child after dispatch.
	ctx, err := root.Parse([]string{"--force", "push"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.Command().Name, qt.Equals, "push")
	c.Check(ctx.Bool("force"), qt.IsTrue)

	ctx, err = root.Parse([]string{"push", "--remote", "origin"})
	c.Assert(err, qt.IsNil)
	c.Check(ctx.String("remote"), qt.Equals, "origin")
}
