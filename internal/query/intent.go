package query

import "strings"

// Intent is the classified category of a natural-language question.
type Intent string

const (
	IntentCountMentions            Intent = "count_mentions"
	IntentCompareEquipment         Intent = "compare_equipment"
	IntentTopTechnician            Intent = "top_technician"
	IntentCountDistinctTechnicians Intent = "count_distinct_technicians"
	IntentCountDistinctEquipment   Intent = "count_distinct_equipment"
	IntentMostCommonSymptom        Intent = "most_common_symptom"
	IntentTopEquipment             Intent = "top_equipment"
	IntentCountIncidents           Intent = "count_incidents"
	IntentWhatAbout                Intent = "what_about"
	IntentUnknown                  Intent = "unknown"
)

type intentRule struct {
	intent Intent
	match  func(ql string) bool
}

// intentRules is evaluated top to bottom; the first matching rule wins.
// Order is the precedence contract, so keep it auditable in one place.
var intentRules = []intentRule{
	{IntentCountMentions, containsAny("mention", "mentions", "contain", "contains", "containing")},
	{IntentCompareEquipment, containsAny("which one had more")},
	{IntentTopTechnician, containsAny("which technician handled the most")},
	{IntentCountDistinctTechnicians, containsAny("how many different technicians")},
	{IntentCountDistinctEquipment, containsAny("distinct equipment", "different equipment")},
	{IntentMostCommonSymptom, containsAny("most common symptom")},
	{IntentTopEquipment, containsAny("which equipment has the most incidents")},
	{IntentCountIncidents, containsAny("how many", "number of")},
	{IntentWhatAbout, func(ql string) bool { return strings.HasPrefix(strings.TrimSpace(ql), "what about") }},
}

// Classify maps free text to a query intent via the ordered rule cascade.
func Classify(text string) Intent {
	ql := strings.ToLower(text)
	for _, r := range intentRules {
		if r.match(ql) {
			return r.intent
		}
	}
	return IntentUnknown
}

func containsAny(needles ...string) func(string) bool {
	return func(ql string) bool {
		for _, n := range needles {
			if strings.Contains(ql, n) {
				return true
			}
		}
		return false
	}
}
