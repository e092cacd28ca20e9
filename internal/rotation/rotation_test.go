package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitTarget(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		round  int
		count  int
		target int
	}{
		{name: "A visits B in round 1", index: 0, round: 1, count: 3, target: 1},
		{name: "B visits C in round 1", index: 1, round: 1, count: 3, target: 2},
		{name: "C visits A in round 1", index: 2, round: 1, count: 3, target: 0},
		{name: "A visits C in round 2", index: 0, round: 2, count: 3, target: 2},
		{name: "round zero stays home", index: 1, round: 0, count: 4, target: 1},
		{name: "single group", index: 0, round: 0, count: 1, target: 0},
		{name: "no groups", index: 0, round: 1, count: 0, target: -1},
		{name: "index out of range", index: 5, round: 1, count: 3, target: -1},
		{name: "huge round", index: 1, round: math.MaxInt, count: 3, target: (1 + math.MaxInt%3) % 3},
		{name: "huge round near limit", index: 2, round: math.MaxInt - 1, count: 3, target: (2 + (math.MaxInt-1)%3) % 3},
		{name: "negative round", index: 0, round: -1, count: 3, target: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.target, VisitTarget(tt.index, tt.round, tt.count))
		})
	}
}

func TestVisitTargetNeverSelf(t *testing.T) {
	for n := 2; n <= 30; n++ {
		for r := 1; r < n; r++ {
			for i := 0; i < n; i++ {
				assert.NotEqual(t, i, VisitTarget(i, r, n), "n=%d r=%d i=%d", n, r, i)
			}
		}
	}
}

func TestEachRoundIsPermutation(t *testing.T) {
	for n := 2; n <= 30; n++ {
		for r := 1; r < n; r++ {
			seen := make(map[int]bool, n)
			for i := 0; i < n; i++ {
				seen[VisitTarget(i, r, n)] = true
			}
			assert.Len(t, seen, n, "n=%d r=%d", n, r)
		}
	}
}

func TestEveryOtherGroupVisitedOnce(t *testing.T) {
	for n := 2; n <= 30; n++ {
		for i := 0; i < n; i++ {
			visited := make(map[int]int, n)
			for r := 1; r < n; r++ {
				visited[VisitTarget(i, r, n)]++
			}
			assert.Len(t, visited, n-1, "n=%d i=%d", n, i)
			assert.NotContains(t, visited, i)
			for target, times := range visited {
				assert.Equal(t, 1, times, "n=%d i=%d target=%d", n, i, target)
			}
		}
	}
}

func TestVisitorIsInverse(t *testing.T) {
	for n := 2; n <= 12; n++ {
		for r := 0; r < n; r++ {
			for i := 0; i < n; i++ {
				assert.Equal(t, i, Visitor(VisitTarget(i, r, n), r, n))
			}
		}
	}
	assert.Equal(t, -1, Visitor(0, 1, 0))
}

func TestSchedule(t *testing.T) {
	assert.Empty(t, Schedule(1))
	assert.Equal(t, [][]int{{1, 2, 0}, {2, 0, 1}}, Schedule(3))
	assert.Equal(t, 0, Rounds(1))
	assert.Equal(t, 3, Rounds(4))
}

func TestVisitorLargeRounds(t *testing.T) {
	for _, round := range []int{math.MaxInt, math.MaxInt - 1, math.MinInt, math.MinInt + 1} {
		for i := 0; i < 5; i++ {
			target := VisitTarget(i, round, 5)
			assert.Equal(t, i, Visitor(target, round, 5), "round=%d i=%d", round, i)
		}
	}
}
