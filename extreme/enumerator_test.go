package extreme

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"imdpsim/interval"
)

func iv(l, u float64) interval.Interval { return interval.New(l, u) }

// Collects the distinct points reported by the enumerator
func collect(e *Enumerator, bounds []interval.Interval, size int) (map[string][]float64, int) {
	points := map[string][]float64{}
	calls := 0
	e.Enumerate(bounds, size, func(p []float64) bool {
		calls++
		cp := append([]float64(nil), p...)
		points[fmt.Sprint(cp)] = cp
		return false
	})
	return points, calls
}

var enumerateTests = []struct {
	name     string
	bounds   []interval.Interval
	size     int
	expected [][]float64
}{
	{
		name:     "unitSquare",
		bounds:   []interval.Interval{iv(0, 1), iv(0, 1)},
		size:     2,
		expected: [][]float64{{0, 1}, {1, 0}},
	},
	{
		name:     "pointIntervals",
		bounds:   []interval.Interval{iv(0.5, 0.5), iv(0.5, 0.5)},
		size:     2,
		expected: [][]float64{{0.5, 0.5}},
	},
	{
		name:   "threeClasses",
		bounds: []interval.Interval{iv(0.25, 0.5), iv(0.25, 0.5), iv(0, 1)},
		size:   3,
		expected: [][]float64{
			{0.25, 0.25, 0.5},
			{0.25, 0.5, 0.25},
			{0.5, 0.25, 0.25},
			{0.5, 0.5, 0},
		},
	},
	{
		name:     "infeasible",
		bounds:   []interval.Interval{iv(0, 0.25), iv(0, 0.25)},
		size:     2,
		expected: nil,
	},
	{
		name:     "tooMuchMass",
		bounds:   []interval.Interval{iv(0.75, 1), iv(0.5, 1)},
		size:     2,
		expected: nil,
	},
	{
		name:     "logicalSizeOnly",
		bounds:   []interval.Interval{iv(0, 1), iv(0, 1), iv(5, 6)},
		size:     2,
		expected: [][]float64{{0, 1}, {1, 0}},
	},
	{
		name:     "single",
		bounds:   []interval.Interval{iv(0, 1)},
		size:     1,
		expected: [][]float64{{1}},
	},
	{
		name:     "empty",
		bounds:   nil,
		size:     0,
		expected: nil,
	},
}

func TestEnumerate(t *testing.T) {
	e := NewEnumerator()
	for _, test := range enumerateTests {
		t.Run(test.name, func(t *testing.T) {
			points, _ := collect(e, test.bounds, test.size)
			expected := map[string][]float64{}
			for _, p := range test.expected {
				expected[fmt.Sprint(p)] = p
			}
			assert.Equal(t, expected, points)
		})
	}
}

func TestEnumerateStopsWhenHandlerReturnsTrue(t *testing.T) {
	e := NewEnumerator()
	calls := 0
	found := e.Enumerate([]interval.Interval{iv(0, 1), iv(0, 1), iv(0, 1)}, 3, func(p []float64) bool {
		calls++
		return true
	})
	assert.True(t, found)
	assert.Equal(t, 1, calls)

	found = e.Enumerate([]interval.Interval{iv(0, 1), iv(0, 1)}, 2, func(p []float64) bool { return false })
	assert.False(t, found)
}

func TestEnumeratePanicsOnInvalidInput(t *testing.T) {
	e := NewEnumerator()
	bounds := []interval.Interval{iv(0, 1), iv(0, 1)}
	noop := func([]float64) bool { return false }
	assert.Panics(t, func() { e.Enumerate(bounds, -1, noop) })
	assert.Panics(t, func() { e.Enumerate(bounds, 3, noop) })
	assert.Panics(t, func() {
		e.Enumerate([]interval.Interval{{Lower: 0.6, Upper: 0.4}}, 1, noop)
	})
}

// All reported points must lie in the polytope.
func TestEnumeratePointsAreFeasible(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	e := NewEnumerator()
	for run := 0; run < 200; run++ {
		n := 1 + rnd.Intn(5)
		bounds := make([]interval.Interval, n)
		for i := range bounds {
			a, b := float64(rnd.Intn(9))/8, float64(rnd.Intn(9))/8
			if a > b {
				a, b = b, a
			}
			bounds[i] = iv(a, b)
		}
		e.Enumerate(bounds, n, func(p []float64) bool {
			sum := 0.0
			for i, x := range p {
				assert.True(t, bounds[i].Contains(x), "run %v: %v not in %v", run, x, bounds[i])
				sum += x
			}
			assert.Equal(t, 1.0, sum, "run %v: point %v", run, p)
			return false
		})
	}
}

// Decimal weights such as 0.06 + 0.57 + 0.37 do not add up to exactly 1.
func TestEnumerateDecimalPoints(t *testing.T) {
	e := NewEnumerator()
	for a := 0; a <= 100; a++ {
		for b := 0; a+b <= 100; b++ {
			row := []interval.Interval{
				interval.Point(float64(a) / 100),
				interval.Point(float64(b) / 100),
				interval.Point(float64(100-a-b) / 100),
			}
			points, _ := collect(e, row, 3)
			assert.Len(t, points, 1, "row %v", row)
		}
	}
}

// Rows of tenths have a point exactly when the lower bounds add up to at
// most 1 and the upper bounds to at least 1.
func TestEnumerateDecimalIntervals(t *testing.T) {
	rnd := rand.New(rand.NewSource(13))
	e := NewEnumerator()
	for run := 0; run < 500; run++ {
		n := 2 + rnd.Intn(4)
		bounds := make([]interval.Interval, n)
		lowers, uppers := 0, 0
		for i := range bounds {
			a, b := rnd.Intn(11), rnd.Intn(11)
			if a > b {
				a, b = b, a
			}
			lowers += a
			uppers += b
			bounds[i] = iv(float64(a)/10, float64(b)/10)
		}
		found := false
		e.Enumerate(bounds, n, func(p []float64) bool {
			found = true
			sum := 0.0
			for i, x := range p {
				assert.True(t, bounds[i].Contains(x), "run %v: %v not in %v", run, x, bounds[i])
				sum += x
			}
			assert.True(t, interval.SumsToOne(sum), "run %v: point %v", run, p)
			return false
		})
		assert.Equal(t, lowers <= 10 && uppers >= 10, found, "run %v: %v", run, bounds)
	}
}

func BenchmarkEnumerate(b *testing.B) {
	bounds := make([]interval.Interval, 10)
	for i := range bounds {
		bounds[i] = iv(0, 0.25)
	}
	e := NewEnumerator()
	for i := 0; i < b.N; i++ {
		e.Enumerate(bounds, len(bounds), func([]float64) bool { return false })
	}
}
