package cmdparse

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNargsExact(t *testing.T) {
	c := qt.New(t)
	n := NargsExact(3)
	c.Check(n.Min(), qt.Equals, 3)
	c.Check(n.Max(), qt.Equals, 3)
	c.Check(n.Variable(), qt.IsFalse)
	c.Check(n.HasMax(), qt.IsTrue)
	c.Check(n.Satisfied(3), qt.IsTrue)
	c.Check(n.Satisfied(2), qt.IsFalse)
	c.Check(n.Satisfied(4), qt.IsFalse)
	c.Check(n.String(), qt.Equals, "3")

	zero := NargsExact(0)
	c.Check(zero.Satisfied(0), qt.IsTrue)
	c.Check(zero.Satisfied(1), qt.IsFalse)
}

func TestNargsRange(t *testing.T) {
	c := qt.New(t)
	n := NargsRange(1, 3)
	c.Check(n.Variable(), qt.IsTrue)
	for count, want := range map[int]bool{0: false, 1: true, 2: true, 3: true, 4: false} {
		c.Check(n.Satisfied(count), qt.Equals, want, qt.Commentf("count=%d", count))
	}
	c.Check(n.String(), qt.Equals, "1 ~ 3")

	open := NargsRange(2, Unbounded)
	c.Check(open.HasMax(), qt.IsFalse)
	c.Check(open.Satisfied(1), qt.IsFalse)
	c.Check(open.Satisfied(2), qt.IsTrue)
	c.Check(open.Satisfied(100), qt.IsTrue)
	c.Check(open.String(), qt.Equals, "2 or more")
}

func TestNargsStep(t *testing.T) {
	c := qt.New(t)
	n := NargsStep(2, 6, 2)
	c.Check(n.Min(), qt.Equals, 2)
	c.Check(n.Max(), qt.Equals, 4)
	for count, want := range map[int]bool{0: false, 1: false, 2: true, 3: false, 4: true, 5: false, 6: false} {
		c.Check(n.Satisfied(count), qt.Equals, want, qt.Commentf("count=%d", count))
	}
	c.Check(n.String(), qt.Equals, "2 ~ 4 (step=2)")
}

func TestNargsSet(t *testing.T) {
	c := qt.New(t)
	irregular := NargsSet(5, 1, 2)
	for count, want := range map[int]bool{0: false, 1: true, 2: true, 3: false, 4: false, 5: true, 6: false} {
		c.Check(irregular.Satisfied(count), qt.Equals, want, qt.Commentf("count=%d", count))
	}
	c.Check(irregular.String(), qt.Equals, "{1,2,5}")

	// Sets forming an arithmetic progression collapse to the stepped range.
	c.Check(NargsSet(1, 3, 5).Equal(NargsStep(1, 6, 2)), qt.IsTrue)
	c.Check(NargsSet(2, 2, 2).Equal(NargsExact(2)), qt.IsTrue)
	c.Check(NargsSet(1, 2, 3).Equal(NargsRange(1, 3)), qt.IsTrue)
}

func TestNargsRemainder(t *testing.T) {
	c := qt.New(t)
	n := NargsRemainder()
	c.Check(n.Satisfied(0), qt.IsTrue)
	c.Check(n.Satisfied(17), qt.IsTrue)
	c.Check(n.String(), qt.Equals, "REMAINDER")
	c.Check(n.Equal(NargsRange(0, Unbounded)), qt.IsFalse)
}

func TestNargsEqual(t *testing.T) {
	c := qt.New(t)
	c.Check(NargsExact(2).Equal(NargsRange(2, 2)), qt.IsTrue)
	c.Check(NargsExact(2).Equal(NargsExact(3)), qt.IsFalse)
	c.Check(NargsRange(0, Unbounded).Equal(NargsRange(1, Unbounded)), qt.IsFalse)
	c.Check(NargsRange(1, Unbounded).Equal(NargsRange(1, Unbounded)), qt.IsTrue)
	c.Check(NargsSet(1, 2, 5).Equal(NargsSet(1, 2, 5)), qt.IsTrue)
	c.Check(NargsSet(1, 2, 5).Equal(NargsSet(1, 2, 6)), qt.IsFalse)
	c.Check(NargsSet(1, 2, 5).Equal(NargsRange(1, 5)), qt.IsFalse)
	c.Check(NargsRemainder().Equal(NargsRemainder()), qt.IsTrue)
}

func TestNargsContains(t *testing.T) {
	c := qt.New(t)
	n := NargsStep(2, 6, 2)
	for count := 0; count < 7; count++ {
		c.Check(n.Contains(count), qt.Equals, n.Satisfied(count), qt.Commentf("count=%d", count))
	}
}

func TestParseNargs(t *testing.T) {
	c := qt.New(t)
	cases := []struct {
		in   string
		want Nargs
	}{
		{"?", NargsRange(0, 1)},
		{"*", NargsRange(0, Unbounded)},
		{"+", NargsRange(1, Unbounded)},
		{"remainder", NargsRemainder()},
		{"3", NargsExact(3)},
		{"0", NargsExact(0)},
		{"2..4", NargsRange(2, 4)},
		{"2..", NargsRange(2, Unbounded)},
	}
	for _, tc := range cases {
		got, err := ParseNargs(tc.in)
		c.Assert(err, qt.IsNil, qt.Commentf("in=%q", tc.in))
		c.Check(got.Equal(tc.want), qt.IsTrue, qt.Commentf("in=%q got=%v want=%v", tc.in, got, tc.want))
	}
	for _, in := range []string{"", "x", "-1", "4..2", "..3", "1..x"} {
		_, err := ParseNargs(in)
		c.Check(err, qt.IsNotNil, qt.Commentf("in=%q", in))
	}
}

func TestNargsConstructorPanics(t *testing.T) {
	c := qt.New(t)
	c.Check(func() { NargsExact(-1) }, qt.PanicMatches, `invalid nargs.*`)
	c.Check(func() { NargsRange(-1, 2) }, qt.PanicMatches, `invalid nargs.*`)
	c.Check(func() { NargsRange(3, 2) }, qt.PanicMatches, `invalid nargs.*`)
	c.Check(func() { NargsSet() }, qt.PanicMatches, `invalid nargs.*`)
	c.Check(func() { NargsStep(3, 3, 1) }, qt.PanicMatches, `invalid nargs.*`)
	c.Check(func() { NargsStep(1, 5, 0) }, qt.PanicMatches, `invalid nargs.*`)
}
