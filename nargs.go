package cmdparse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Unbounded as a max means no upper limit on the number of values.
const Unbounded = -1

// Nargs is an arity spec: the set of value counts a parameter may consume.
// Immutable once constructed. The zero value means exactly zero values.
type Nargs struct {
	min int
	max int // Unbounded when open-ended
	// step > 1 only for stepped ranges; counts land on min, min+step, ...
	step int
	// allowed holds the sorted admissible counts when they do not form an
	// arithmetic progression, in which case min/max/step are derived.
	allowed   []int
	remainder bool
}

// NargsExact admits exactly n values.
func NargsExact(n int) Nargs {
	if n < 0 {
		panic(defErr("invalid nargs %d: must be >= 0", n))
	}
	return Nargs{min: n, max: n, step: 1}
}

// NargsRange admits any count in [min, max]. Pass Unbounded for max to leave
// the upper end open.
func NargsRange(min, max int) Nargs {
	if min < 0 {
		panic(defErr("invalid nargs min %d: must be >= 0", min))
	}
	if max != Unbounded && max < min {
		panic(defErr("invalid nargs range (%d, %d): min must not exceed max", min, max))
	}
	return Nargs{min: min, max: max, step: 1}
}

// NargsStep admits the counts start, start+step, ... below stop.
func NargsStep(start, stop, step int) Nargs {
	if start < 0 || start >= stop {
		panic(defErr("invalid nargs range (%d, %d): need 0 <= start < stop", start, stop))
	}
	if step < 1 {
		panic(defErr("invalid nargs step %d: must be positive", step))
	}
	max := start + (stop-1-start)/step*step
	if max == start {
		return Nargs{min: start, max: start, step: 1}
	}
	if step == 1 {
		return Nargs{min: start, max: max, step: 1}
	}
	return Nargs{min: start, max: max, step: step}
}

// NargsSet admits exactly the given counts.
func NargsSet(counts ...int) Nargs {
	if len(counts) == 0 {
		panic(defErr("invalid nargs set: must not be empty"))
	}
	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)
	if sorted[0] < 0 {
		panic(defErr("invalid nargs set %v: counts must be >= 0", counts))
	}
	uniq := sorted[:1]
	for _, n := range sorted[1:] {
		if n != uniq[len(uniq)-1] {
			uniq = append(uniq, n)
		}
	}
	if len(uniq) == 1 {
		return Nargs{min: uniq[0], max: uniq[0], step: 1}
	}
	// A set whose members form an arithmetic progression is the same spec as
	// the equivalent stepped range; collapse so Equal can compare forms.
	step := uniq[1] - uniq[0]
	regular := true
	for i := 1; i < len(uniq); i++ {
		if uniq[i]-uniq[i-1] != step {
			regular = false
			break
		}
	}
	if regular {
		return Nargs{min: uniq[0], max: uniq[len(uniq)-1], step: step}
	}
	return Nargs{min: uniq[0], max: uniq[len(uniq)-1], step: 1, allowed: uniq}
}

// NargsRemainder admits any count and signals that consumption should swallow
// every remaining token, option-like or not.
func NargsRemainder() Nargs {
	return Nargs{min: 0, max: Unbounded, step: 1, remainder: true}
}

// ParseNargs converts the string forms used in struct tags: "?", "*", "+",
// "remainder", a plain integer, or "min..max" with an empty max for
// unbounded ("2..").
func ParseNargs(s string) (Nargs, error) {
	switch s {
	case "?":
		return NargsRange(0, 1), nil
	case "*":
		return NargsRange(0, Unbounded), nil
	case "+":
		return NargsRange(1, Unbounded), nil
	case "remainder", "REMAINDER":
		return NargsRemainder(), nil
	}
	if lo, hi, ok := strings.Cut(s, ".."); ok {
		min, err := strconv.Atoi(lo)
		if err != nil {
			return Nargs{}, fmt.Errorf("invalid nargs %q: %w", s, err)
		}
		if hi == "" {
			return NargsRange(min, Unbounded), nil
		}
		max, err := strconv.Atoi(hi)
		if err != nil {
			return Nargs{}, fmt.Errorf("invalid nargs %q: %w", s, err)
		}
		if min < 0 || (max != Unbounded && max < min) {
			return Nargs{}, fmt.Errorf("invalid nargs %q: need 0 <= min <= max", s)
		}
		return NargsRange(min, max), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Nargs{}, fmt.Errorf("invalid nargs %q: expected ?, *, +, remainder, an integer, or min..max", s)
	}
	if n < 0 {
		return Nargs{}, fmt.Errorf("invalid nargs %d: must be >= 0", n)
	}
	return NargsExact(n), nil
}

func (n Nargs) stepOr1() int {
	if n.step < 1 {
		return 1
	}
	return n.step
}

// Min returns the smallest admissible count.
func (n Nargs) Min() int { return n.min }

// Max returns the largest admissible count, or Unbounded.
func (n Nargs) Max() int { return n.max }

// Variable reports whether more than one count is admissible.
func (n Nargs) Variable() bool { return n.min != n.max }

// HasMax reports whether the spec has an upper bound.
func (n Nargs) HasMax() bool { return n.max != Unbounded }

// Satisfied reports whether count is an admissible total for this spec.
func (n Nargs) Satisfied(count int) bool {
	if n.remainder {
		return count >= 0
	}
	if n.max == Unbounded {
		return count >= n.min
	}
	if n.allowed != nil {
		i := sort.SearchInts(n.allowed, count)
		return i < len(n.allowed) && n.allowed[i] == count
	}
	if count < n.min || count > n.max {
		return false
	}
	return (count-n.min)%n.stepOr1() == 0
}

// Contains is Satisfied under another name; callers distinguish "is this a
// valid single count" from "is this a valid completed total" even though the
// answer is the same for every constructible spec.
func (n Nargs) Contains(count int) bool { return n.Satisfied(count) }

// Equal reports whether the two specs admit exactly the same counts.
func (n Nargs) Equal(o Nargs) bool {
	if n.remainder || o.remainder {
		return n.remainder == o.remainder
	}
	if n.max == Unbounded || o.max == Unbounded {
		return n.max == o.max && n.min == o.min
	}
	if (n.allowed == nil) != (o.allowed == nil) {
		// One side is an arithmetic progression, the other is an irregular
		// set; a matching irregular set would have collapsed at construction.
		return false
	}
	if n.allowed != nil {
		if len(n.allowed) != len(o.allowed) {
			return false
		}
		for i, v := range n.allowed {
			if o.allowed[i] != v {
				return false
			}
		}
		return true
	}
	return n.min == o.min && n.max == o.max && n.stepOr1() == o.stepOr1()
}

func (n Nargs) String() string {
	switch {
	case n.remainder:
		return "REMAINDER"
	case n.allowed != nil:
		parts := make([]string, len(n.allowed))
		for i, v := range n.allowed {
			parts[i] = strconv.Itoa(v)
		}
		return "{" + strings.Join(parts, ",") + "}"
	case n.max == Unbounded:
		return fmt.Sprintf("%d or more", n.min)
	case n.min == n.max:
		return strconv.Itoa(n.min)
	case n.stepOr1() != 1:
		return fmt.Sprintf("%d ~ %d (step=%d)", n.min, n.max, n.step)
	default:
		return fmt.Sprintf("%d ~ %d", n.min, n.max)
	}
}
