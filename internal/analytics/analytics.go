package analytics

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/maintlog/backend/internal/models"
)

// ErrNoTechnicianData reports a work-order table built without technician
// information. This is a caller/schema mismatch, not a normal empty result.
var ErrNoTechnicianData = errors.New("work orders missing technicians data")

// Filters is a conjunctive, optional-field constraint over work orders.
// Empty strings and nil bounds mean "no constraint on this dimension".
// StartTSMin is inclusive, StartTSMax exclusive.
type Filters struct {
	EquipmentID string
	ProductLine string
	SymptomCode string
	StartTSMin  *time.Time
	StartTSMax  *time.Time
}

// ValueCount pairs an attribute value with its work-order count.
type ValueCount struct {
	Value          string `json:"value"`
	WorkOrderCount int    `json:"work_order_count"`
}

// TimeBucket is one fixed-width bucket of the incidents-over-time series.
type TimeBucket struct {
	Start          time.Time `json:"start"`
	WorkOrderCount int       `json:"work_order_count"`
}

// Frequency selects the bucket width for IncidentsOverTime.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Apply narrows the work-order table to the rows matching every populated
// filter field. The input is never mutated.
func Apply(workOrders []models.WorkOrder, f Filters) []models.WorkOrder {
	out := make([]models.WorkOrder, 0, len(workOrders))
	for _, w := range workOrders {
		if f.EquipmentID != "" && w.EquipmentID != f.EquipmentID {
			continue
		}
		if f.ProductLine != "" && w.ProductLine != f.ProductLine {
			continue
		}
		if f.SymptomCode != "" && w.SymptomCode != f.SymptomCode {
			continue
		}
		if f.StartTSMin != nil && w.StartTS.Before(*f.StartTSMin) {
			continue
		}
		if f.StartTSMax != nil && !w.StartTS.Before(*f.StartTSMax) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// CountIncidents counts work orders in the filtered scope.
func CountIncidents(workOrders []models.WorkOrder, f Filters) int {
	return len(Apply(workOrders, f))
}

// CountDistinctEquipment counts distinct equipment IDs in the filtered scope.
func CountDistinctEquipment(workOrders []models.WorkOrder, f Filters) int {
	return countDistinct(Apply(workOrders, f), func(w models.WorkOrder) string { return w.EquipmentID })
}

// CountDistinctProductLines counts distinct product lines in the filtered scope.
func CountDistinctProductLines(workOrders []models.WorkOrder, f Filters) int {
	return countDistinct(Apply(workOrders, f), func(w models.WorkOrder) string { return w.ProductLine })
}

func countDistinct(workOrders []models.WorkOrder, pick func(models.WorkOrder) string) int {
	set := map[string]struct{}{}
	for _, w := range workOrders {
		set[pick(w)] = struct{}{}
	}
	return len(set)
}

// TopEquipment ranks equipment IDs by work-order count, highest first.
// Ties are broken by ascending equipment ID so output is deterministic.
func TopEquipment(workOrders []models.WorkOrder, n int, f Filters) []ValueCount {
	return topByField(Apply(workOrders, f), n, func(w models.WorkOrder) string { return w.EquipmentID })
}

// TopSymptoms ranks symptom codes by work-order count, highest first.
func TopSymptoms(workOrders []models.WorkOrder, n int, f Filters) []ValueCount {
	return topByField(Apply(workOrders, f), n, func(w models.WorkOrder) string { return w.SymptomCode })
}

func topByField(workOrders []models.WorkOrder, n int, pick func(models.WorkOrder) string) []ValueCount {
	if len(workOrders) == 0 {
		return nil
	}
	ranked := rankCounts(countByField(workOrders, pick))
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func countByField(workOrders []models.WorkOrder, pick func(models.WorkOrder) string) map[string]int {
	counts := map[string]int{}
	for _, w := range workOrders {
		counts[pick(w)]++
	}
	return counts
}

func rankCounts(counts map[string]int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, WorkOrderCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkOrderCount != out[j].WorkOrderCount {
			return out[i].WorkOrderCount > out[j].WorkOrderCount
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// IncidentsOverTime resamples work-order counts into fixed-width buckets
// keyed by bucket start, in chronological order. Empty buckets between the
// first and last occupied bucket are filled with zero counts.
func IncidentsOverTime(workOrders []models.WorkOrder, freq Frequency, f Filters) []TimeBucket {
	scoped := Apply(workOrders, f)
	if len(scoped) == 0 {
		return nil
	}

	counts := map[time.Time]int{}
	var first, last time.Time
	for i, w := range scoped {
		b := bucketStart(w.StartTS, freq)
		counts[b]++
		if i == 0 || b.Before(first) {
			first = b
		}
		if i == 0 || b.After(last) {
			last = b
		}
	}

	var out []TimeBucket
	for b := first; !b.After(last); b = nextBucket(b, freq) {
		out = append(out, TimeBucket{Start: b, WorkOrderCount: counts[b]})
	}
	return out
}

func bucketStart(ts time.Time, freq Frequency) time.Time {
	y, m, d := ts.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
	switch freq {
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, ts.Location())
	case Weekly:
		// Weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return day
	}
}

func nextBucket(b time.Time, freq Frequency) time.Time {
	switch freq {
	case Monthly:
		return b.AddDate(0, 1, 0)
	case Weekly:
		return b.AddDate(0, 0, 7)
	default:
		return b.AddDate(0, 0, 1)
	}
}

// CountMentions counts work orders whose description or comments contain the
// keyword, case-insensitive. The keyword is matched literally; pattern
// characters carry no meaning. An empty keyword always yields 0.
func CountMentions(workOrders []models.WorkOrder, keyword string, f Filters) int {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return 0
	}
	n := 0
	for _, w := range Apply(workOrders, f) {
		hay := strings.ToLower(w.Description + "\n" + w.Comments)
		if strings.Contains(hay, kw) {
			n++
		}
	}
	return n
}

// TopTechnicians ranks technicians by the number of DISTINCT work orders they
// appear in, not by raw event count. Blank names are dropped. A table built
// without technician data is a data-shape error.
func TopTechnicians(workOrders []models.WorkOrder, n int, f Filters) ([]ValueCount, error) {
	scoped := Apply(workOrders, f)
	if len(scoped) == 0 {
		return nil, nil
	}
	perTech, err := explodeTechnicians(scoped)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for tech, orders := range perTech {
		counts[tech] = len(orders)
	}
	ranked := rankCounts(counts)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// CountDistinctTechnicians counts distinct non-blank technician names in the
// filtered scope.
func CountDistinctTechnicians(workOrders []models.WorkOrder, f Filters) (int, error) {
	scoped := Apply(workOrders, f)
	if len(scoped) == 0 {
		return 0, nil
	}
	perTech, err := explodeTechnicians(scoped)
	if err != nil {
		return 0, err
	}
	return len(perTech), nil
}

func explodeTechnicians(workOrders []models.WorkOrder) (map[string]map[int64]struct{}, error) {
	perTech := map[string]map[int64]struct{}{}
	for _, w := range workOrders {
		if w.Technicians == nil {
			return nil, ErrNoTechnicianData
		}
		for _, raw := range w.Technicians {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			if perTech[name] == nil {
				perTech[name] = map[int64]struct{}{}
			}
			perTech[name][w.WorkOrderID] = struct{}{}
		}
	}
	return perTech, nil
}

// MostCommonSymptoms returns ALL symptom codes tied for the highest frequency
// in the filtered scope, alphabetically. Returning the full tied set instead
// of one arbitrary winner keeps every candidate available for follow-up
// questions.
func MostCommonSymptoms(workOrders []models.WorkOrder, f Filters) []ValueCount {
	scoped := Apply(workOrders, f)
	if len(scoped) == 0 {
		return nil
	}
	counts := countByField(scoped, func(w models.WorkOrder) string { return w.SymptomCode })
	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}
	var tied []ValueCount
	for v, n := range counts {
		if n == maxCount {
			tied = append(tied, ValueCount{Value: v, WorkOrderCount: n})
		}
	}
	sort.Slice(tied, func(i, j int) bool { return tied[i].Value < tied[j].Value })
	return tied
}
