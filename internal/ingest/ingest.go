package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maintlog/backend/internal/models"
)

// RequiredColumns are the columns the raw maintenance CSV must carry.
// A missing column aborts the whole load.
var RequiredColumns = []string{
	"work_order_id",
	"equipment_id",
	"product_line",
	"start_date",
	"start_time",
	"end_date",
	"end_time",
	"description",
	"technician",
	"comment",
	"symptom_code",
}

const timestampLayout = "2006-01-02 15:04:05"

// LoadEvents reads the raw maintenance log (one row per technician update).
// Any schema violation, non-numeric work_order_id or unparseable timestamp
// fails the entire load; there is no partial ingestion.
func LoadEvents(path string) ([]models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadEvents(f)
}

// ReadEvents parses events from an already-open CSV stream.
func ReadEvents(r io.Reader) ([]models.Event, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := headerIndex(headers)
	if missing := missingColumns(index); len(missing) > 0 {
		return nil, fmt.Errorf("csv is missing required columns: %s", strings.Join(missing, ", "))
	}

	var (
		events   []models.Event
		badStart int
		badEnd   int
	)
	row := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		row++

		field := func(name string) string {
			i := index[name]
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		id, err := strconv.ParseInt(field("work_order_id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: work_order_id %q is not numeric", row, field("work_order_id"))
		}

		startTS, err := combineDateTime(field("start_date"), field("start_time"))
		if err != nil {
			badStart++
		}
		endTS, err := combineDateTime(field("end_date"), field("end_time"))
		if err != nil {
			badEnd++
		}

		events = append(events, models.Event{
			WorkOrderID: id,
			EquipmentID: field("equipment_id"),
			ProductLine: field("product_line"),
			SymptomCode: field("symptom_code"),
			Description: field("description"),
			Technician:  field("technician"),
			Comment:     field("comment"),
			StartTS:     startTS,
			EndTS:       endTS,
		})
	}

	if badStart > 0 {
		return nil, fmt.Errorf("failed parsing start_ts for %d rows, check date/time formats", badStart)
	}
	if badEnd > 0 {
		return nil, fmt.Errorf("failed parsing end_ts for %d rows, check date/time formats", badEnd)
	}
	return events, nil
}

func combineDateTime(date, clock string) (time.Time, error) {
	return time.Parse(timestampLayout, date+" "+clock)
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func missingColumns(index map[string]int) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// BuildWorkOrders collapses the event log to one row per work_order_id.
// Events are sorted by (work_order_id, start_ts, end_ts) first so the
// "first event" representative fields are stable across runs.
func BuildWorkOrders(events []models.Event) []models.WorkOrder {
	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WorkOrderID != sorted[j].WorkOrderID {
			return sorted[i].WorkOrderID < sorted[j].WorkOrderID
		}
		if !sorted[i].StartTS.Equal(sorted[j].StartTS) {
			return sorted[i].StartTS.Before(sorted[j].StartTS)
		}
		return sorted[i].EndTS.Before(sorted[j].EndTS)
	})

	var out []models.WorkOrder
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].WorkOrderID == sorted[i].WorkOrderID {
			j++
		}
		out = append(out, collapseGroup(sorted[i:j]))
		i = j
	}
	return out
}

func collapseGroup(group []models.Event) models.WorkOrder {
	first := group[0]
	wo := models.WorkOrder{
		WorkOrderID: first.WorkOrderID,
		EquipmentID: first.EquipmentID,
		ProductLine: first.ProductLine,
		SymptomCode: first.SymptomCode,
		Description: first.Description,
		StartTS:     first.StartTS,
		EndTS:       first.EndTS,
		Technicians: []string{},
		NUpdates:    len(group),
	}

	techSet := map[string]struct{}{}
	var comments []string
	lastComment := ""
	for _, ev := range group {
		if ev.StartTS.Before(wo.StartTS) {
			wo.StartTS = ev.StartTS
		}
		if ev.EndTS.After(wo.EndTS) {
			wo.EndTS = ev.EndTS
		}
		if name := strings.TrimSpace(ev.Technician); name != "" {
			techSet[name] = struct{}{}
		}
		// Skip blank comments and exact consecutive duplicates.
		if c := strings.TrimSpace(ev.Comment); c != "" && c != lastComment {
			comments = append(comments, c)
			lastComment = c
		}
	}

	for name := range techSet {
		wo.Technicians = append(wo.Technicians, name)
	}
	sort.Strings(wo.Technicians)
	wo.Comments = strings.Join(comments, "\n")
	return wo
}

// LoadAll loads events and builds the work-order table in one call.
func LoadAll(path string) ([]models.Event, []models.WorkOrder, error) {
	events, err := LoadEvents(path)
	if err != nil {
		return nil, nil, err
	}
	return events, BuildWorkOrders(events), nil
}

// KnownValues collects the distinct equipment IDs, product lines and symptom
// codes of the work-order table. Each list is ordered longest-first, then
// lexicographic, so substring matching against questions is deterministic
// even when one known value contains another.
func KnownValues(workOrders []models.WorkOrder) models.KnownValues {
	return models.KnownValues{
		Equipment:    distinctByMatchOrder(workOrders, func(w models.WorkOrder) string { return w.EquipmentID }),
		ProductLines: distinctByMatchOrder(workOrders, func(w models.WorkOrder) string { return w.ProductLine }),
		Symptoms:     distinctByMatchOrder(workOrders, func(w models.WorkOrder) string { return w.SymptomCode }),
	}
}

func distinctByMatchOrder(workOrders []models.WorkOrder, pick func(models.WorkOrder) string) []string {
	set := map[string]struct{}{}
	for _, w := range workOrders {
		if v := pick(w); v != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// DefaultYear returns the modal year across work-order start timestamps.
// On a tie the smallest year wins.
func DefaultYear(workOrders []models.WorkOrder) int {
	if len(workOrders) == 0 {
		return time.Now().UTC().Year()
	}
	counts := map[int]int{}
	for _, w := range workOrders {
		counts[w.StartTS.Year()]++
	}
	best, bestCount := 0, -1
	for year, n := range counts {
		if n > bestCount || (n == bestCount && year < best) {
			best, bestCount = year, n
		}
	}
	return best
}
