package service

import "strings"

// Segment is one run of consecutive lines sharing the same diff state.
// Neither flag set means the run is unchanged. Text keeps each line's
// trailing newline as it appeared in the input.
type Segment struct {
	Added     bool   `json:"added"`
	Removed   bool   `json:"removed"`
	Text      string `json:"value"`
	LineCount int    `json:"count"`
}

// DiffResult is the line diff between two text blobs.
type DiffResult struct {
	Segments []Segment `json:"changes"`
	Unified  string    `json:"diff"`
}

// ComputeDiff computes a minimal line-level diff from baseText to
// otherText and renders a unified representation. Removed lines within a
// change region precede added ones. Empty inputs on both sides produce an
// empty segment list and an empty rendering.
func ComputeDiff(baseText, otherText string) *DiffResult {
	a := splitLines(baseText)
	b := splitLines(otherText)

	segments := buildSegments(a, b, shortestEditScript(a, b))
	return &DiffResult{
		Segments: segments,
		Unified:  renderUnified(segments),
	}
}

type editOp int

const (
	opEqual editOp = iota
	opDelete
	opInsert
)

// splitLines splits text into lines with their trailing newline attached.
// The final line keeps whatever ending it had; empty input yields no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			return lines
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
		if text == "" {
			return lines
		}
	}
}

// shortestEditScript runs the Myers O(ND) algorithm over the two line
// slices and returns the edit operations in forward order.
func shortestEditScript(a, b []string) []editOp {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}

	max := n + m
	offset := max
	v := make([]int, 2*max+1)
	var trace [][]int
	dFound := -1

search:
	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				dFound = d
				break search
			}
		}
	}

	// Walk the trace back from (n, m), emitting ops in reverse
	ops := make([]editOp, 0, n+m)
	x, y := n, m
	for d := dFound; d > 0; d-- {
		prev := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			ops = append(ops, opEqual)
			x--
			y--
		}
		if x == prevX {
			ops = append(ops, opInsert)
			y--
		} else {
			ops = append(ops, opDelete)
			x--
		}
		x, y = prevX, prevY
	}
	for x > 0 && y > 0 {
		ops = append(ops, opEqual)
		x--
		y--
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}

// buildSegments merges runs of identical ops into segments. Inside a
// maximal changed region, deletions are emitted before insertions.
func buildSegments(a, b []string, ops []editOp) []Segment {
	var segments []Segment
	ai, bi := 0, 0

	for i := 0; i < len(ops); {
		if ops[i] == opEqual {
			j := i
			var sb strings.Builder
			for j < len(ops) && ops[j] == opEqual {
				sb.WriteString(a[ai])
				ai++
				bi++
				j++
			}
			segments = append(segments, Segment{Text: sb.String(), LineCount: j - i})
			i = j
			continue
		}

		// Maximal changed region: gather deletions and insertions
		j := i
		var removed, added strings.Builder
		removedCount, addedCount := 0, 0
		for j < len(ops) && ops[j] != opEqual {
			if ops[j] == opDelete {
				removed.WriteString(a[ai])
				ai++
				removedCount++
			} else {
				added.WriteString(b[bi])
				bi++
				addedCount++
			}
			j++
		}
		if removedCount > 0 {
			segments = append(segments, Segment{Removed: true, Text: removed.String(), LineCount: removedCount})
		}
		if addedCount > 0 {
			segments = append(segments, Segment{Added: true, Text: added.String(), LineCount: addedCount})
		}
		i = j
	}

	return segments
}

// renderUnified prefixes every line with "+", "-" or " " and joins with
// newlines. A segment whose content ends without a newline must not emit a
// trailing empty line.
func renderUnified(segments []Segment) string {
	var lines []string
	for _, seg := range segments {
		prefix := " "
		if seg.Added {
			prefix = "+"
		} else if seg.Removed {
			prefix = "-"
		}
		parts := strings.Split(seg.Text, "\n")
		for i, line := range parts {
			if i == len(parts)-1 && line == "" {
				continue
			}
			lines = append(lines, prefix+line)
		}
	}
	return strings.Join(lines, "\n")
}
