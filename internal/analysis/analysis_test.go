package analysis

import (
	"math"
	"testing"
)

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); got != (Distribution{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	d := Summarize([]float64{5, -2, 0, 10, 3, 8, -1, 4, 6, 7, 2})

	if d.Count != 11 {
		t.Errorf("Count = %d", d.Count)
	}
	if math.Abs(d.Mean-42.0/11) > 1e-9 {
		t.Errorf("Mean = %.4f", d.Mean)
	}
	if d.Median != 4 || d.P50 != 4 {
		t.Errorf("Median = %.2f, P50 = %.2f", d.Median, d.P50)
	}
	if d.P10 != -1 || d.P90 != 8 {
		t.Errorf("P10 = %.2f, P90 = %.2f", d.P10, d.P90)
	}
	if math.Abs(d.PctPos-8.0/11) > 1e-9 || math.Abs(d.PctNeg-2.0/11) > 1e-9 {
		t.Errorf("PctPos = %.3f, PctNeg = %.3f", d.PctPos, d.PctNeg)
	}
	if d.StdEst <= 0 {
		t.Errorf("StdEst = %.3f", d.StdEst)
	}
}

func TestSummarizeEmpiricalQuantiles(t *testing.T) {
	d := Summarize([]float64{4, 1, 3, 2})
	tests := []struct {
		name      string
		got, want float64
	}{
		{"P25", d.P25, 1},
		{"P50", d.P50, 2},
		{"P75", d.P75, 3},
		{"P90", d.P90, 4},
		{"Median", d.Median, 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %.2f, want %.2f", tt.name, tt.got, tt.want)
		}
	}

	one := Summarize([]float64{7})
	if one.P10 != 7 || one.P90 != 7 {
		t.Errorf("single sample quantiles = %.2f, %.2f", one.P10, one.P90)
	}
}

func TestSummarizeDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Summarize(in)
	if in[0] != 3 || in[1] != 1 {
		t.Errorf("input reordered: %v", in)
	}
}
