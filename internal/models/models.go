package models

import "time"

// Event is one raw technician update row from the maintenance log.
// An incident (work order) usually spans several events.
type Event struct {
	WorkOrderID int64     `json:"work_order_id"`
	EquipmentID string    `json:"equipment_id"`
	ProductLine string    `json:"product_line"`
	SymptomCode string    `json:"symptom_code"`
	Description string    `json:"description"`
	Technician  string    `json:"technician"`
	Comment     string    `json:"comment"`
	StartTS     time.Time `json:"start_ts"`
	EndTS       time.Time `json:"end_ts"`
}

// WorkOrder is the collapsed, one-row-per-id incident view of the event log.
// Representative fields come from the first event after the deterministic
// sort; StartTS/EndTS span all events of the incident.
type WorkOrder struct {
	WorkOrderID int64     `json:"work_order_id"`
	EquipmentID string    `json:"equipment_id"`
	ProductLine string    `json:"product_line"`
	SymptomCode string    `json:"symptom_code"`
	Description string    `json:"description"`
	StartTS     time.Time `json:"start_ts"`
	EndTS       time.Time `json:"end_ts"`
	Technicians []string  `json:"technicians"`
	Comments    string    `json:"comments"`
	NUpdates    int       `json:"n_updates"`
}

// KnownValues holds the distinct attribute values of the work-order table.
// Each list is ordered longest-first, then lexicographic, so substring
// matching against question text is deterministic.
type KnownValues struct {
	Equipment    []string `json:"equipment"`
	ProductLines []string `json:"product_lines"`
	Symptoms     []string `json:"symptoms"`
}

// QAEntry is one answered question in the session history.
type QAEntry struct {
	TS       time.Time `json:"ts"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
}
