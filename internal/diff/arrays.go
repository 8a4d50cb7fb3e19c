package diff

// ArrayKind classifies the relationship between two versions of an array.
type ArrayKind string

const (
	// ArrayNone means nothing structural changed: the arrays are identical or
	// one is a reordering of the other.
	ArrayNone ArrayKind = "none"
	// ArraySimple means the change is described by Added and Removed.
	ArraySimple ArrayKind = "simple"
	// ArrayComplex means the arrays are too large to diff. It does not mean
	// "no change"; callers must not write anything back.
	ArrayComplex ArrayKind = "complex"
)

// MaxArrayLen is the largest array length Arrays will run the LCS table on.
const MaxArrayLen = 1000

// ArrayDiff describes how an array changed.
type ArrayDiff struct {
	Kind ArrayKind
	// Added lists elements of the current array not matched in the
	// previous one, in current order.
	Added []any
	// Removed lists elements of the previous array not matched in the current
	// one, in previous order.
	Removed []any
	// RemovedIndices holds the index in the previous array of each Removed
	// element, ascending.
	RemovedIndices []int
}

// Arrays classifies the change from prev to curr.
//
// Identical arrays and pure reorders (same elements, same multiplicities)
// report ArrayNone. Arrays longer than MaxArrayLen report ArrayComplex.
// Everything else is diffed with a longest common subsequence and reports
// ArraySimple. When several equal elements could be the removed one, which
// index is reported follows from the backtrack tie-break and is not
// guaranteed to be stable across equivalent inputs.
func Arrays(prev, curr []any) ArrayDiff {
	if identical(prev, curr) {
		return emptyDiff(ArrayNone)
	}

	if len(prev) > MaxArrayLen || len(curr) > MaxArrayLen {
		return emptyDiff(ArrayComplex)
	}

	if sameMultiset(prev, curr) {
		return emptyDiff(ArrayNone)
	}

	return lcsDiff(prev, curr)
}

func emptyDiff(kind ArrayKind) ArrayDiff {
	return ArrayDiff{
		Kind:           kind,
		Added:          []any{},
		Removed:        []any{},
		RemovedIndices: []int{},
	}
}

func identical(prev, curr []any) bool {
	if len(prev) != len(curr) {
		return false
	}
	for i := range prev {
		if !Equal(prev[i], curr[i]) {
			return false
		}
	}
	return true
}

// sameMultiset reports whether every element of prev can be matched to a
// distinct element of curr and nothing in curr is left over.
func sameMultiset(prev, curr []any) bool {
	if len(prev) != len(curr) {
		return false
	}

	used := make([]bool, len(curr))
	for _, p := range prev {
		matched := false
		for j, c := range curr {
			if used[j] || !Equal(p, c) {
				continue
			}
			used[j] = true
			matched = true
			break
		}
		if !matched {
			return false
		}
	}

	return true
}

// lcsDiff builds the LCS length table and walks it back from the bottom-right
// corner. On a mismatch it prefers recording an addition whenever skipping the
// current element keeps at least as much common length as skipping the
// previous one.
func lcsDiff(prev, curr []any) ArrayDiff {
	n, m := len(prev), len(curr)

	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			switch {
			case Equal(prev[i-1], curr[j-1]):
				dp[i][j] = dp[i-1][j-1] + 1
			case dp[i-1][j] >= dp[i][j-1]:
				dp[i][j] = dp[i-1][j]
			default:
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	d := emptyDiff(ArraySimple)

	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && Equal(prev[i-1], curr[j-1]):
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			d.Added = append(d.Added, curr[j-1])
			j--
		default:
			d.Removed = append(d.Removed, prev[i-1])
			d.RemovedIndices = append(d.RemovedIndices, i-1)
			i--
		}
	}

	reverse(d.Added)
	reverse(d.Removed)
	reverse(d.RemovedIndices)

	return d
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
