package readiness

// DefaultTrackedItems is the default prep checklist. The denominator of the
// progress ratio is always the tracked set, never the raw checklist map, so
// locally added items cannot inflate it.
var DefaultTrackedItems = []string{
	"lab_tests",
	"xrays",
	"insurance_approval",
	"medical_optimization",
}

// ChecklistProgress is the completion count over a fixed tracked-item set.
type ChecklistProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Ready reports whether every tracked item is complete.
func (p ChecklistProgress) Ready() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// Percent returns completion as a whole percentage for progress bars.
func (p ChecklistProgress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// Progress counts how many tracked items are checked in the checklist.
// Items missing from the map count as unchecked; items in the map that are
// not tracked are ignored.
func Progress(checklist map[string]bool, tracked []string) ChecklistProgress {
	p := ChecklistProgress{Total: len(tracked)}
	for _, key := range tracked {
		if checklist[key] {
			p.Completed++
		}
	}
	return p
}
