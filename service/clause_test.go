package service

import (
	"strings"
	"testing"
)

func sectionLine(label string, n int) string {
	return label + ": " + strings.Repeat("a", n) + "\n"
}

func TestExtractClausesKnownSections(t *testing.T) {
	text := sectionLine("Payment terms", 80) +
		sectionLine("Confidentiality", 80) +
		sectionLine("Liability", 80)

	clauses := ExtractClauses(text)
	if len(clauses) != 3 {
		t.Fatalf("Expected 3 clauses, got %d", len(clauses))
	}

	// Order follows the pattern table, not position in text
	expected := []struct{ name, category string }{
		{"Payment Terms", "Financial"},
		{"Confidentiality", "Legal"},
		{"Liability", "Legal"},
	}
	for i, e := range expected {
		if clauses[i].Name != e.name {
			t.Errorf("Expected clause %d name %s, got %s", i, e.name, clauses[i].Name)
		}
		if clauses[i].Category != e.category {
			t.Errorf("Expected clause %d category %s, got %s", i, e.category, clauses[i].Category)
		}
		if clauses[i].SortOrder != i {
			t.Errorf("Expected sort order %d, got %d", i, clauses[i].SortOrder)
		}
		if clauses[i].PageRef != "See document" {
			t.Errorf("Expected generic page ref, got %s", clauses[i].PageRef)
		}
	}
}

func TestExtractClausesDiscoveryOrderBeatsTextOrder(t *testing.T) {
	// Liability appears first in the text but Payment Terms is first in the table
	text := sectionLine("Liability", 80) + sectionLine("Payment terms", 80)

	clauses := ExtractClauses(text)
	if len(clauses) != 2 {
		t.Fatalf("Expected 2 clauses, got %d", len(clauses))
	}
	if clauses[0].Name != "Payment Terms" || clauses[1].Name != "Liability" {
		t.Errorf("Expected table order, got %s then %s", clauses[0].Name, clauses[1].Name)
	}
}

func TestExtractClausesFirstMatchOnly(t *testing.T) {
	text := sectionLine("Confidentiality", 80) + sectionLine("Confidentiality", 120)

	clauses := ExtractClauses(text)
	count := 0
	for _, c := range clauses {
		if c.Name == "Confidentiality" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected a repeated section to produce one clause, got %d", count)
	}
}

func TestExtractClausesShortContentIgnored(t *testing.T) {
	// Under 50 characters of content does not qualify as a section
	text := sectionLine("Payment terms", 10)

	clauses := ExtractClauses(text)
	if len(clauses) != 1 || clauses[0].Name != "General Terms" {
		t.Errorf("Expected only the fallback clause, got %+v", clauses)
	}
}

func TestExtractClausesExcerptTruncated(t *testing.T) {
	text := sectionLine("Liability", 290)

	clauses := ExtractClauses(text)
	if len(clauses) != 1 {
		t.Fatalf("Expected 1 clause, got %d", len(clauses))
	}
	if len(clauses[0].ExtractedText) > MaxClauseExcerptLen {
		t.Errorf("Expected excerpt capped at %d, got %d", MaxClauseExcerptLen, len(clauses[0].ExtractedText))
	}
}

func TestExtractClausesFallback(t *testing.T) {
	text := "Nothing matching any known section keyword lives in this document."

	clauses := ExtractClauses(text)
	if len(clauses) != 1 {
		t.Fatalf("Expected exactly one fallback clause, got %d", len(clauses))
	}
	fb := clauses[0]
	if fb.Name != "General Terms" || fb.Category != "General" {
		t.Errorf("Expected General Terms/General fallback, got %s/%s", fb.Name, fb.Category)
	}
	if fb.ExtractedText != text {
		t.Errorf("Expected fallback to carry the head of the raw text")
	}
	if fb.RiskNotes != "No structured clauses detected." {
		t.Errorf("Unexpected fallback risk notes: %s", fb.RiskNotes)
	}
}

func TestExtractClausesWithCustomPatterns(t *testing.T) {
	// The matching engine runs against whatever table it is handed
	custom := []ClausePattern{
		{"Warranty", "Legal", sectionPatterns[0].Regex},
	}
	text := sectionLine("Invoicing", 80)

	clauses := extractClausesWith(text, custom)
	if len(clauses) != 1 || clauses[0].Name != "Warranty" {
		t.Errorf("Expected custom pattern label, got %+v", clauses)
	}
}
