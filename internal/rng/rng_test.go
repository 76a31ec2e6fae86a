package rng

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 50; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d diverged", i)
		}
		if a.LogNormal(0, 0.3) != b.LogNormal(0, 0.3) {
			t.Fatalf("lognormal draw %d diverged", i)
		}
		if a.IntRange(6, 10) != b.IntRange(6, 10) {
			t.Fatalf("int draw %d diverged", i)
		}
		if a.WeightedIndex([]float64{1, 2, 3}) != b.WeightedIndex([]float64{1, 2, 3}) {
			t.Fatalf("weighted draw %d diverged", i)
		}
	}

	xs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	ys := []int{1, 2, 3, 4, 5, 6, 7, 8}
	Shuffle(a, xs)
	Shuffle(b, ys)
	for i := range xs {
		if xs[i] != ys[i] {
			t.Fatalf("shuffle diverged at %d: %v vs %v", i, xs, ys)
		}
	}
}

func TestBernoulli(t *testing.T) {
	g := New(3)
	for i := 0; i < 200; i++ {
		if g.Bernoulli(0) {
			t.Fatal("p=0 succeeded")
		}
		if !g.Bernoulli(1) {
			t.Fatal("p=1 failed")
		}
	}

	hits := 0
	const n = 4000
	for i := 0; i < n; i++ {
		if g.Bernoulli(0.3) {
			hits++
		}
	}
	if rate := float64(hits) / n; rate < 0.25 || rate > 0.35 {
		t.Errorf("p=0.3 hit rate = %.3f", rate)
	}
}

func TestWeightedIndexSkipsZeroWeights(t *testing.T) {
	g := New(7)
	for i := 0; i < 200; i++ {
		if idx := g.WeightedIndex([]float64{0, 1, 0}); idx != 1 {
			t.Fatalf("WeightedIndex picked %d, want 1", idx)
		}
	}
	if idx := g.WeightedIndex([]float64{0, 0}); idx != -1 {
		t.Errorf("WeightedIndex with no weight = %d, want -1", idx)
	}
}

func TestProperty_DrawsStayInRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("uniform, int and lognormal draws respect their bounds", prop.ForAll(
		func(seed int64, lo float64, width float64) bool {
			g := New(seed)
			hi := lo + width
			u := g.Uniform(lo, hi)
			if u < lo || u > hi {
				return false
			}
			n := g.IntRange(6, 10)
			if n < 6 || n > 10 {
				return false
			}
			return g.LogNormal(0, 0.35) > 0
		},
		gen.Int64(),
		gen.Float64Range(-100, 100),
		gen.Float64Range(0, 50),
	))

	properties.TestingRun(t)
}
