package calc

import "testing"

func TestTrimmedMean(t *testing.T) {
	tests := []struct {
		name        string
		values      []uint64
		trimPercent float64
		want        uint64
	}{
		{"empty slice", nil, 0.1, 0},
		{"no trimming", []uint64{1, 2, 3, 4}, 0, 2},
		{"simple trimming", []uint64{1, 2, 3, 100}, 0.25, 2},
		{"trim percent too large", []uint64{10, 20, 30}, 0.5, 20},
		{"negative trim percent treated as zero", []uint64{5, 5, 5}, -1, 5},
		{"one stalled client", []uint64{0, 1, 1, 2, 1, 0, 1, 2, 1, 1024}, 0.1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimmedMean(tt.values, tt.trimPercent); got != tt.want {
				t.Errorf("TrimmedMean(%v, %v) = %d, want %d", tt.values, tt.trimPercent, got, tt.want)
			}
		})
	}
}

func TestTrimmedMeanFloat(t *testing.T) {
	got := TrimmedMean([]float64{1.5, 2.5, 3.5, 100}, 0.25)
	if got != 3 {
		t.Errorf("TrimmedMean = %v, want 3", got)
	}
}

func TestTrimmedMeanLeavesInputUnsorted(t *testing.T) {
	values := []uint64{3, 1, 2}
	TrimmedMean(values, 0)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestMax(t *testing.T) {
	if got := Max([]uint64{}); got != 0 {
		t.Errorf("Max(empty) = %d", got)
	}
	if got := Max([]int{3, 9, 1}); got != 9 {
		t.Errorf("Max = %d, want 9", got)
	}
}
