package service

import (
	"strings"
	"testing"
)

func TestComputeDiffIdentical(t *testing.T) {
	text := "line one\nline two\nline three\n"

	result := ComputeDiff(text, text)
	if len(result.Segments) != 1 {
		t.Fatalf("Expected 1 unchanged segment, got %d", len(result.Segments))
	}
	seg := result.Segments[0]
	if seg.Added || seg.Removed {
		t.Error("Expected segment to be unchanged")
	}
	if seg.LineCount != 3 {
		t.Errorf("Expected 3 lines, got %d", seg.LineCount)
	}
	if seg.Text != text {
		t.Errorf("Expected segment text to equal input, got %q", seg.Text)
	}

	expected := " line one\n line two\n line three"
	if result.Unified != expected {
		t.Errorf("Expected unified %q, got %q", expected, result.Unified)
	}
}

func TestComputeDiffEmptyBoth(t *testing.T) {
	result := ComputeDiff("", "")
	if len(result.Segments) != 0 {
		t.Errorf("Expected no segments, got %d", len(result.Segments))
	}
	if result.Unified != "" {
		t.Errorf("Expected empty rendering, got %q", result.Unified)
	}
}

func TestComputeDiffPureAddition(t *testing.T) {
	base := "alpha\nbravo\n"
	other := base + "charlie\ndelta\n"

	result := ComputeDiff(base, other)
	if len(result.Segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(result.Segments))
	}
	if result.Segments[0].Added || result.Segments[0].Removed {
		t.Error("Expected first segment unchanged")
	}
	if !result.Segments[1].Added || result.Segments[1].LineCount != 2 {
		t.Errorf("Expected 2 added lines, got %+v", result.Segments[1])
	}
	for _, seg := range result.Segments {
		if seg.Removed {
			t.Error("Expected no removed segments for pure addition")
		}
	}

	expected := " alpha\n bravo\n+charlie\n+delta"
	if result.Unified != expected {
		t.Errorf("Expected unified %q, got %q", expected, result.Unified)
	}
}

func TestComputeDiffReplacement(t *testing.T) {
	base := "keep\nold line\nkeep too\n"
	other := "keep\nnew line\nkeep too\n"

	result := ComputeDiff(base, other)
	if len(result.Segments) != 4 {
		t.Fatalf("Expected 4 segments, got %d: %+v", len(result.Segments), result.Segments)
	}

	// Removed precedes added within the change region
	if !result.Segments[1].Removed {
		t.Errorf("Expected second segment removed, got %+v", result.Segments[1])
	}
	if !result.Segments[2].Added {
		t.Errorf("Expected third segment added, got %+v", result.Segments[2])
	}

	expected := " keep\n-old line\n+new line\n keep too"
	if result.Unified != expected {
		t.Errorf("Expected unified %q, got %q", expected, result.Unified)
	}
}

func TestComputeDiffSymmetry(t *testing.T) {
	a := "one\ntwo\nthree\nfour\n"
	b := "one\nTWO\nthree\nfive\nsix\n"

	forward := ComputeDiff(a, b)
	backward := ComputeDiff(b, a)

	countLines := func(r *DiffResult, added bool) int {
		total := 0
		for _, seg := range r.Segments {
			if added && seg.Added || !added && seg.Removed {
				total += seg.LineCount
			}
		}
		return total
	}

	if countLines(forward, true) != countLines(backward, false) {
		t.Errorf("Expected forward additions to mirror backward removals: %d vs %d",
			countLines(forward, true), countLines(backward, false))
	}
	if countLines(forward, false) != countLines(backward, true) {
		t.Errorf("Expected forward removals to mirror backward additions: %d vs %d",
			countLines(forward, false), countLines(backward, true))
	}
}

func TestComputeDiffNoTrailingNewline(t *testing.T) {
	// Content ending without a newline must not render a spurious empty line
	result := ComputeDiff("ends abruptly", "ends abruptly")
	if result.Unified != " ends abruptly" {
		t.Errorf("Expected %q, got %q", " ends abruptly", result.Unified)
	}

	result = ComputeDiff("", "only line")
	if result.Unified != "+only line" {
		t.Errorf("Expected %q, got %q", "+only line", result.Unified)
	}
	if len(result.Segments) != 1 || !result.Segments[0].Added || result.Segments[0].LineCount != 1 {
		t.Errorf("Expected a single one-line added segment, got %+v", result.Segments)
	}
}

func TestComputeDiffEmptyBase(t *testing.T) {
	other := "a\nb\nc\n"
	result := ComputeDiff("", other)

	if len(result.Segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(result.Segments))
	}
	if !result.Segments[0].Added || result.Segments[0].LineCount != 3 {
		t.Errorf("Expected 3 added lines, got %+v", result.Segments[0])
	}
}

func TestComputeDiffMinimal(t *testing.T) {
	// A one-line change in a large identical document should not disturb
	// the surrounding lines
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("common line that does not change\n")
	}
	base := sb.String() + "variant A\n" + sb.String()
	other := sb.String() + "variant B\n" + sb.String()

	result := ComputeDiff(base, other)

	var addedLines, removedLines int
	for _, seg := range result.Segments {
		if seg.Added {
			addedLines += seg.LineCount
		}
		if seg.Removed {
			removedLines += seg.LineCount
		}
	}
	if addedLines != 1 || removedLines != 1 {
		t.Errorf("Expected a minimal 1-line change, got +%d/-%d", addedLines, removedLines)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\nb\n", []string{"a\n", "b\n"}},
		{"\n", []string{"\n"}},
		{"\n\n", []string{"\n", "\n"}},
	}

	for _, tt := range tests {
		got := splitLines(tt.input)
		if len(got) != len(tt.expected) {
			t.Errorf("splitLines(%q): expected %d lines, got %d", tt.input, len(tt.expected), len(got))
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("splitLines(%q)[%d]: expected %q, got %q", tt.input, i, tt.expected[i], got[i])
			}
		}
	}
}
