package service

import (
	"regexp"
	"strings"

	"github.com/avirshuk-alt/Contract-Management/model"
)

// MaxClauseExcerptLen bounds the excerpt stored per clause.
const MaxClauseExcerptLen = 500

// ClausePattern ties a section keyword pattern to the clause it produces.
// The pattern must match the keyword followed by 50-300 characters of
// content on the same line.
type ClausePattern struct {
	Name     string
	Category string
	Regex    *regexp.Regexp
}

// sectionPatterns is the fixed table of known contract sections, in
// discovery order.
var sectionPatterns = []ClausePattern{
	{"Payment Terms", "Financial", regexp.MustCompile(`(?i)(?:payment\s+terms?|invoic(?:e|ing))[:\s]+[^\n]{50,300}`)},
	{"Term & Termination", "Duration", regexp.MustCompile(`(?i)(?:term(?:ination)?|duration)[:\s]+[^\n]{50,300}`)},
	{"Confidentiality", "Legal", regexp.MustCompile(`(?i)confidential(?:ity)?[:\s]+[^\n]{50,300}`)},
	{"Liability", "Legal", regexp.MustCompile(`(?i)(?:liability|limitation\s+of\s+damages)[:\s]+[^\n]{50,300}`)},
	{"Compliance", "Legal", regexp.MustCompile(`(?i)complian(?:ce)?[:\s]+[^\n]{50,300}`)},
}

// Placeholder notes attached to heuristically segmented clauses. Real
// interpretation is a manual (or future LLM) step.
const (
	clauseInterpretation = "Extracted from contract. Review for full context."
	clauseRiskNotes      = "Automated extraction - manual review recommended."
	clausePageRef        = "See document"

	fallbackInterpretation = "Full text extraction. Consider manual clause identification."
	fallbackRiskNotes      = "No structured clauses detected."
)

// ExtractClauses segments contract text into labeled clauses using the
// fixed section table. Only the first match per pattern is captured. When
// no pattern matches at all, a single "General Terms" fallback clause
// carries the head of the raw text.
func ExtractClauses(text string) []*model.Clause {
	return extractClausesWith(text, sectionPatterns)
}

func extractClausesWith(text string, patterns []ClausePattern) []*model.Clause {
	var clauses []*model.Clause

	for _, p := range patterns {
		match := p.Regex.FindString(text)
		if match == "" {
			continue
		}
		clauses = append(clauses, &model.Clause{
			Name:           p.Name,
			Category:       p.Category,
			ExtractedText:  strings.TrimSpace(truncate(match, MaxClauseExcerptLen)),
			Interpretation: clauseInterpretation,
			RiskNotes:      clauseRiskNotes,
			PageRef:        clausePageRef,
		})
	}

	if len(clauses) == 0 {
		clauses = append(clauses, &model.Clause{
			Name:           "General Terms",
			Category:       "General",
			ExtractedText:  truncate(text, MaxClauseExcerptLen),
			Interpretation: fallbackInterpretation,
			RiskNotes:      fallbackRiskNotes,
			PageRef:        clausePageRef,
		})
	}

	for i, clause := range clauses {
		clause.SortOrder = i
	}

	return clauses
}
