package intutils

import "testing"

// TestMin ensures Min returns the smallest int in a list
func TestMin(t *testing.T) {
	tests := []struct {
		ints []int
		want int
	}{
		{[]int{3}, 3},
		{[]int{1, 2, 3}, 1},
		{[]int{3, 2, 1}, 1},
		{[]int{-4, 7, 0}, -4},
		{[]int{5, 5, 5}, 5},
	}

	for _, test := range tests {
		if got := Min(test.ints...); got != test.want {
			t.Errorf("Min(%v) = %d, want %d", test.ints, got, test.want)
		}
	}
}

// TestMax ensures Max returns the largest int in a list
func TestMax(t *testing.T) {
	tests := []struct {
		ints []int
		want int
	}{
		{[]int{3}, 3},
		{[]int{1, 2, 3}, 3},
		{[]int{3, 2, 1}, 3},
		{[]int{-4, -7, -1}, -1},
		{[]int{5, 5, 5}, 5},
	}

	for _, test := range tests {
		if got := Max(test.ints...); got != test.want {
			t.Errorf("Max(%v) = %d, want %d", test.ints, got, test.want)
		}
	}
}
