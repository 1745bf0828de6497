package service

import (
	"regexp"
	"strings"

	"github.com/avirshuk-alt/Contract-Management/model"
)

const (
	// MaxObligationTextLen bounds the stored obligation sentence.
	MaxObligationTextLen = 300
	// MaxObligations caps the number of obligations per extraction run.
	MaxObligations = 10

	// minObligationSentenceLen filters out fragments too short to be a
	// meaningful duty statement.
	minObligationSentenceLen = 30
)

// obligationPhrases are the phrases that mark a sentence as a candidate
// obligation. Matching is case-insensitive substring containment.
var obligationPhrases = []string{
	"shall provide", "shall deliver", "shall submit", "shall maintain",
	"must provide", "must deliver", "agree to", "responsible for",
	"obligation to", "required to", "shall notify", "shall pay",
}

const fallbackObligationText = "Review contract obligations - automated extraction did not find specific obligations."

var (
	sentenceSplitRegex = regexp.MustCompile(`[.!?]\s+`)
	supplierRegex      = regexp.MustCompile(`(?i)\b(supplier|vendor|party\s+b)\b`)
	clientRegex        = regexp.MustCompile(`(?i)\b(client|customer|party\s+a|buyer)\b`)
)

// ExtractObligations scans sentences for obligation-indicating phrases and
// tags each hit with its owning party. Scanning stops once MaxObligations
// sentences qualify; a document with no qualifying sentence yields a single
// manual-review fallback.
func ExtractObligations(text string) []*model.Obligation {
	return extractObligationsWith(text, obligationPhrases)
}

func extractObligationsWith(text string, phrases []string) []*model.Obligation {
	var obligations []*model.Obligation

	for _, sent := range sentenceSplitRegex.Split(text, -1) {
		if len(obligations) >= MaxObligations {
			break
		}
		if len(sent) <= minObligationSentenceLen {
			continue
		}
		lower := strings.ToLower(sent)
		if !containsAny(lower, phrases) {
			continue
		}

		// Supplier wording wins when both parties are named
		owner := model.OwnerBoth
		if supplierRegex.MatchString(sent) {
			owner = model.OwnerSupplier
		} else if clientRegex.MatchString(sent) {
			owner = model.OwnerClient
		}

		obligations = append(obligations, &model.Obligation{
			Text:   truncate(strings.TrimSpace(sent), MaxObligationTextLen),
			Owner:  owner,
			Status: model.ObligationPending,
		})
	}

	if len(obligations) == 0 {
		obligations = append(obligations, &model.Obligation{
			Text:   fallbackObligationText,
			Owner:  model.OwnerBoth,
			Status: model.ObligationPending,
		})
	}

	for i, ob := range obligations {
		ob.SortOrder = i
	}

	return obligations
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
