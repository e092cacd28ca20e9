// Package rotation computes the round-robin visiting schedule of a market.
//
// In round r every group i visits group (i+r) mod n. Rounds 1..n-1 send each
// group to every other group exactly once and never to itself. Nothing is
// stored: the schedule is recomputed from (index, round, count) on every call.
package rotation

// VisitTarget returns the index of the group that group myIndex visits in round.
// It returns -1 when groupCount < 1 or myIndex is out of range.
func VisitTarget(myIndex, round, groupCount int) int {
	if groupCount < 1 || myIndex < 0 || myIndex >= groupCount {
		return -1
	}
	return mod(myIndex+mod(round, groupCount), groupCount)
}

// Visitor returns the index of the group that visits group myIndex in round.
func Visitor(myIndex, round, groupCount int) int {
	if groupCount < 1 || myIndex < 0 || myIndex >= groupCount {
		return -1
	}
	return mod(myIndex-mod(round, groupCount), groupCount)
}

// Rounds is the number of rotation rounds for groupCount groups.
func Rounds(groupCount int) int {
	if groupCount < 2 {
		return 0
	}
	return groupCount - 1
}

// Schedule returns the full visiting table: Schedule(n)[r-1][i] is the group
// visited by group i in round r.
func Schedule(groupCount int) [][]int {
	rounds := Rounds(groupCount)
	table := make([][]int, 0, rounds)
	for r := 1; r <= rounds; r++ {
		row := make([]int, groupCount)
		for i := range row {
			row[i] = VisitTarget(i, r, groupCount)
		}
		table = append(table, row)
	}
	return table
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
