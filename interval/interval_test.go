package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var arithmeticTests = []struct {
	name     string
	op       func(a, b Interval) Interval
	a, b     Interval
	expected Interval
}{
	{"add", Interval.Add, New(0.25, 0.5), New(0.125, 0.25), New(0.375, 0.75)},
	{"sub", Interval.Sub, New(1, 1), New(0.25, 0.5), New(0.5, 0.75)},
	{"subSelf", Interval.Sub, New(0.25, 0.5), New(0.25, 0.5), New(-0.25, 0.25)},
	{"mulPositive", Interval.Mul, New(1, 2), New(3, 4), New(3, 8)},
	{"mulMixed", Interval.Mul, New(-1, 2), New(3, 4), New(-4, 8)},
	{"mulNegative", Interval.Mul, New(-2, -1), New(-4, 3), New(-6, 8)},
	{"div", Interval.Div, New(1, 2), New(2, 4), New(0.25, 1)},
	{"divNegative", Interval.Div, New(1, 2), New(-4, -2), New(-1, -0.25)},
	{"min", Interval.Min, New(0, 3), New(1, 2), New(0, 2)},
	{"max", Interval.Max, New(0, 3), New(1, 2), New(1, 3)},
}

func TestArithmetic(t *testing.T) {
	for _, test := range arithmeticTests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.op(test.a, test.b))
		})
	}
}

func TestDivByZeroPanics(t *testing.T) {
	for _, divisor := range []Interval{New(-1, 1), New(0, 1), New(-1, 0), Point(0)} {
		assert.PanicsWithError(t, (&DomainError{Op: "div", Operand: divisor}).Error(), func() {
			New(1, 2).Div(divisor)
		}, "divisor %v", divisor)
	}
}

func TestNewRejectsInvertedBounds(t *testing.T) {
	assert.Panics(t, func() { New(0.6, 0.4) })
	assert.NotPanics(t, func() { New(0.4, 0.4) })
	assert.False(t, Interval{Lower: 1, Upper: 0}.Valid())
}

func TestIntersect(t *testing.T) {
	r, ok := New(0, 0.5).Intersect(New(0.25, 1))
	require.True(t, ok)
	assert.Equal(t, New(0.25, 0.5), r)

	r, ok = New(0, 0.5).Intersect(New(0.5, 1))
	require.True(t, ok)
	assert.True(t, r.IsPoint())

	_, ok = New(0, 0.25).Intersect(New(0.5, 1))
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare(New(0.1, 0.2), New(0.1, 0.2)))
	assert.Equal(t, -1, Compare(New(0.1, 0.9), New(0.2, 0.3)))
	assert.Equal(t, 1, Compare(New(0.2, 0.3), New(0.1, 0.9)))
	assert.Equal(t, -1, Compare(New(0.1, 0.2), New(0.1, 0.3)))
	assert.Equal(t, 1, Compare(New(0.1, 0.3), New(0.1, 0.2)))
}

func TestVectors(t *testing.T) {
	a := []Interval{New(0, 1), Point(0.5)}
	b := []Interval{New(0, 1), Point(0.75)}
	assert.Equal(t, -1, CompareVectors(a, b))
	assert.Equal(t, 0, CompareVectors(a, a))
	assert.True(t, EqualVectors(a, []Interval{New(0, 1), Point(0.5)}))
	assert.False(t, EqualVectors(a, b))
	assert.False(t, EqualVectors(a, a[:1]))
	assert.Panics(t, func() { CompareVectors(a, a[:1]) })
	assert.Equal(t, New(0.5, 1.5), Sum(a))
	assert.Equal(t, Point(0), Sum(nil))
}

func TestDivPanicValue(t *testing.T) {
	defer func() {
		err, ok := recover().(*DomainError)
		require.True(t, ok)
		assert.Equal(t, &DomainError{Op: "div", Operand: New(-1, 1)}, err)
	}()
	New(1, 2).Div(New(-1, 1))
}

func TestRounding(t *testing.T) {
	// Variables, constant expressions would be evaluated exactly.
	a, b, c := 0.06, 0.57, 0.37
	sum := a + b + c
	assert.NotEqual(t, 1.0, sum)
	assert.True(t, SumsToOne(sum))
	assert.True(t, SumsToOne(1))
	assert.False(t, SumsToOne(0.999))
	assert.False(t, SumsToOne(1+1e-9))

	one, seven := 1.0, 0.7
	assert.False(t, Point(0.3).Contains(one-seven))
	assert.True(t, Point(0.3).ContainsRounded(one-seven))
	assert.True(t, New(0.25, 0.5).ContainsRounded(0.5+Rounding/2))
	assert.False(t, New(0.25, 0.5).ContainsRounded(0.5001))
	assert.False(t, New(0.25, 0.5).ContainsRounded(0.2499))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[0.25, 0.5]", New(0.25, 0.5).String())
}
