package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/maintlog/backend/internal/analytics"
	"github.com/maintlog/backend/internal/models"
)

var (
	yearRe       = regexp.MustCompile(`\b(20\d{2})\b`)
	firstHalfRe  = regexp.MustCompile(`\b(first\s+half|1st\s+half|h1)\b`)
	secondHalfRe = regexp.MustCompile(`\b(second\s+half|2nd\s+half|h2)\b`)
	monthRe      = regexp.MustCompile(`\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t)?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)
	quotedRe     = regexp.MustCompile(`['"]([^'"]+)['"]`)
	mentionRe    = regexp.MustCompile(`\b(?:mention|mentions|contain|contains|containing)\b\s+(?:a|an|the)?\s*([a-z0-9_-]+)`)
)

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// symptomPhrases maps spoken symptom phrases to their codes. A mapped code is
// only accepted when it is itself a known symptom in the loaded data.
var symptomPhrases = map[string]string{
	"pressure fault":  "PRESSURE_FAULT",
	"spindle timeout": "SPINDLE_TIMEOUT",
	"bearing wear":    "BEARING_WEAR",
	"hydraulic leak":  "HYDRAULIC_LEAK",
	"alignment drift": "ALIGNMENT_DRIFT",
	"sensor failure":  "SENSOR_FAILURE",
}

// ExtractFilters parses free text into a structured filter over work orders.
// Known-value matching is case-insensitive substring search in the order the
// KnownValues lists carry (longest value first), so the match is stable when
// one known value contains another. Missing pieces stay unset; extraction
// never fails.
func ExtractFilters(text string, known models.KnownValues, defaultYear int) analytics.Filters {
	f := analytics.Filters{
		EquipmentID: matchKnown(text, known.Equipment),
		ProductLine: matchKnown(text, known.ProductLines),
		SymptomCode: extractSymptom(text, known.Symptoms),
	}

	// Half-year phrases win over month names; month names only apply when no
	// half-year phrase matched.
	min, max := halfYearRange(text, defaultYear)
	if min == nil && max == nil {
		min, max = monthRange(text, defaultYear)
	}
	f.StartTSMin = min
	f.StartTSMax = max
	return f
}

func matchKnown(text string, known []string) string {
	ql := strings.ToLower(text)
	for _, v := range known {
		if strings.Contains(ql, strings.ToLower(v)) {
			return v
		}
	}
	return ""
}

func extractSymptom(text string, knownSymptoms []string) string {
	if code := matchKnown(text, knownSymptoms); code != "" {
		return code
	}
	ql := strings.ToLower(text)
	for phrase, code := range symptomPhrases {
		if strings.Contains(ql, phrase) && isKnown(code, knownSymptoms) {
			return code
		}
	}
	return ""
}

func isKnown(code string, known []string) bool {
	for _, v := range known {
		if v == code {
			return true
		}
	}
	return false
}

func yearFromQuery(ql string, defaultYear int) int {
	if m := yearRe.FindStringSubmatch(ql); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	return defaultYear
}

// halfYearRange resolves "first half of 2024", "H2 2023", "2nd half" style
// phrases to [Jan 1, Jul 1) or [Jul 1, Jan 1 of next year).
func halfYearRange(text string, defaultYear int) (*time.Time, *time.Time) {
	ql := strings.ToLower(text)
	y := yearFromQuery(ql, defaultYear)

	if firstHalfRe.MatchString(ql) {
		return span(date(y, time.January), date(y, time.July))
	}
	if secondHalfRe.MatchString(ql) {
		return span(date(y, time.July), date(y+1, time.January))
	}
	return nil, nil
}

// monthRange resolves a calendar-month name (full or abbreviated) to
// [month start, next month start).
func monthRange(text string, defaultYear int) (*time.Time, *time.Time) {
	ql := strings.ToLower(text)
	m := monthRe.FindStringSubmatch(ql)
	if m == nil {
		return nil, nil
	}
	month := monthByPrefix[m[1][:3]]
	y := yearFromQuery(ql, defaultYear)

	start := date(y, month)
	return span(start, start.AddDate(0, 1, 0))
}

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func span(start, end time.Time) (*time.Time, *time.Time) {
	return &start, &end
}

// ExtractMentionKeyword pulls the keyword for a count_mentions question.
// Resolution order: quoted text verbatim, then the domain shortcuts "leak"
// and "bearing", then the word following mention/contain(s)/containing. An
// empty result downstream yields a zero mention count.
func ExtractMentionKeyword(text string) string {
	if m := quotedRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	ql := strings.ToLower(text)
	if strings.Contains(ql, "leak") {
		return "leak"
	}
	if strings.Contains(ql, "bearing") {
		return "bearing"
	}

	if m := mentionRe.FindStringSubmatch(ql); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
