package service

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/avirshuk-alt/Contract-Management/model"
)

// MaxPaymentTermsLen bounds the payment-terms label captured by the
// free-text fallback.
const MaxPaymentTermsLen = 50

// AutoRenewalTerms is the canned renewal label set whenever auto-renewal
// language is detected.
const AutoRenewalTerms = "Auto-renewal unless terminated with notice"

var (
	isoDateRegex   = regexp.MustCompile(`\b(20\d{2})-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])\b`)
	longDateRegex  = regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2}),?\s+(20\d{2})\b`)
	netTermsRegex  = regexp.MustCompile(`(?i)\bNet\s*(\d+)\b`)
	payLabelRegex  = regexp.MustCompile(`(?i)\bpayment\s+terms?\s*[:\-]?\s*([^\n.]+)`)
	noticeRegex    = regexp.MustCompile(`(?i)\b(\d+)\s*days?\s*(?:written\s+)?notice\b`)
	autoRenewRegex = regexp.MustCompile(`(?i)\bauto[- ]?renew`)
)

// monthNumbers maps the first three letters of a month name to its
// zero-padded number.
var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// DeriveFields scans contract text for dates, payment terms, termination
// notice and renewal language. Every detection is independent; a pattern
// that matches nothing simply leaves its field absent.
func DeriveFields(text string) *model.DerivedFields {
	result := &model.DerivedFields{}

	dates := collectDates(text)
	if len(dates) >= 2 {
		sort.Strings(dates)
		result.EffectiveDate = dates[0]
		result.ExpiryDate = dates[len(dates)-1]
	} else if len(dates) == 1 {
		result.EffectiveDate = dates[0]
	}

	// Net N beats the free-text payment-terms label
	if m := netTermsRegex.FindStringSubmatch(text); m != nil {
		result.PaymentTerms = fmt.Sprintf("Net %s", m[1])
	} else if m := payLabelRegex.FindStringSubmatch(text); m != nil {
		result.PaymentTerms = truncate(strings.TrimSpace(m[1]), MaxPaymentTermsLen)
	}

	if m := noticeRegex.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			result.TerminationNoticeDays = days
		}
	}

	if autoRenewRegex.MatchString(text) {
		result.RenewalTerms = AutoRenewalTerms
	}

	return result
}

// collectDates gathers ISO and long-form dates, normalized to YYYY-MM-DD.
// Duplicates are kept; sorting still resolves min/max correctly.
func collectDates(text string) []string {
	var dates []string

	for _, m := range isoDateRegex.FindAllStringSubmatch(text, -1) {
		dates = append(dates, fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	}

	for _, m := range longDateRegex.FindAllStringSubmatch(text, -1) {
		month, ok := monthNumbers[strings.ToLower(m[0][:3])]
		if !ok {
			month = "01"
		}
		day := m[1]
		if len(day) == 1 {
			day = "0" + day
		}
		dates = append(dates, fmt.Sprintf("%s-%s-%s", m[2], month, day))
	}

	return dates
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
