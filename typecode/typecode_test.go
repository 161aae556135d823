package typecode

import (
	"math"
	"math/rand"
	"testing"
)

func TestLaneOf(t *testing.T) {
	cases := map[Code]Lane{
		Long:      LongLane,
		Double:    LongLane,
		Instant:   LongLane,
		Int:       IntLane,
		Float:     IntLane,
		Boolean:   IntLane,
		String:    StringLane,
		BigDecimal: StringLane,
	}
	for c, want := range cases {
		if got := LaneOf(c); got != want {
			t.Errorf("LaneOf(%v) = %v, want %v", c, got, want)
		}
	}
	if LaneOf(Code(200)) != 0 {
		t.Errorf("LaneOf(unknown) should be zero Lane")
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	values := []float64{0, -0.0, 1, -1, 3.14159, -3.14159, math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64}
	for _, v := range values {
		got := SortableLongToDouble(DoubleToSortableLong(v))
		if got != v {
			t.Errorf("round trip of %v got %v", v, got)
		}
	}
	nan := math.NaN()
	got := SortableLongToDouble(DoubleToSortableLong(nan))
	if !math.IsNaN(got) {
		t.Errorf("NaN round trip should stay NaN, got %v", got)
	}
}

func TestDoubleOrderPreservationAcrossSignBoundary(t *testing.T) {
	pairs := [][2]float64{
		{1.0, -1.0},
		{-1.0, 1.0},
		{-0.0001, 0.0001},
		{math.SmallestNonzeroFloat64, -math.SmallestNonzeroFloat64},
		{-math.MaxFloat64, math.MaxFloat64},
		{-1.0, -2.0},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		la, lb := DoubleToSortableLong(a), DoubleToSortableLong(b)
		if (a <= b) != (la <= lb) {
			t.Fatalf("order mismatch: a=%v b=%v la=%v lb=%v", a, b, la, lb)
		}
	}
}

func TestDoubleOrderPreservation(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		a := (r.Float64() - 0.5) * 1e10
		b := (r.Float64() - 0.5) * 1e10
		la := DoubleToSortableLong(a)
		lb := DoubleToSortableLong(b)
		if (a <= b) != (la <= lb) {
			t.Fatalf("order mismatch: a=%v b=%v la=%v lb=%v", a, b, la, lb)
		}
	}
	if DoubleToSortableLong(0.0) != DoubleToSortableLong(-0.0) {
		t.Errorf("-0.0 and 0.0 must encode identically")
	}
}

func TestFloatRoundTrip(t *testing.T) {
	values := []float32{0, -0.0, 1, -1, 2.71828, -2.71828, math.MaxFloat32, -math.MaxFloat32}
	for _, v := range values {
		got := SortableIntToFloat(FloatToSortableInt(v))
		if got != v {
			t.Errorf("round trip of %v got %v", v, got)
		}
	}
}

func TestFloatOrderPreservationAcrossSignBoundary(t *testing.T) {
	pairs := [][2]float32{
		{1.0, -1.0},
		{-1.0, 1.0},
		{-0.0001, 0.0001},
		{-math.MaxFloat32, math.MaxFloat32},
		{-1.0, -2.0},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		ia, ib := FloatToSortableInt(a), FloatToSortableInt(b)
		if (a <= b) != (ia <= ib) {
			t.Fatalf("order mismatch: a=%v b=%v ia=%v ib=%v", a, b, ia, ib)
		}
	}
}

func TestFloatOrderPreservation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		a := float32((r.Float64() - 0.5) * 1e5)
		b := float32((r.Float64() - 0.5) * 1e5)
		ia := FloatToSortableInt(a)
		ib := FloatToSortableInt(b)
		if (a <= b) != (ia <= ib) {
			t.Fatalf("order mismatch: a=%v b=%v ia=%v ib=%v", a, b, ia, ib)
		}
	}
}
