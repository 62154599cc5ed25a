// Package readiness implements the pre-operative readiness rules: document
// freshness classification, surgery-date urgency, and checklist progress.
// Every function is pure — callers pass the reference instant explicitly so
// that one dashboard render evaluates every patient against the same "now".
package readiness

import "time"

// Status classifies a clinical document's freshness.
type Status string

const (
	StatusPending  Status = "pending"
	StatusValid    Status = "valid"
	StatusWarning  Status = "warning"
	StatusInvalid  Status = "invalid"
	StatusTooEarly Status = "too_early"
)

// Urgency classifies how close a scheduled surgery date is.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyWarning Urgency = "warning"
	UrgencyNormal  Urgency = "normal"
	UrgencyUnknown Urgency = "unknown"
)

// Requirement identifies a tracked document kind. Unknown tags fall back to
// the generic rule rather than failing, so unclassified document kinds
// degrade gracefully.
type Requirement string

const (
	RequirementPriorAuth       Requirement = "prior_auth"
	RequirementSurgicalRecords Requirement = "surgical_records"
	RequirementBiteApproval    Requirement = "bite_approval"
)

// Rule bounds a document's acceptable age in whole days. MinAgeDays > 0
// makes the rule a two-sided window; WarnAfterDays marks the start of the
// warning band for one-sided rules.
type Rule struct {
	MaxAgeDays      int
	MinAgeDays      int
	WarnAfterDays   int
	TooEarlyMessage string
	TooOldMessage   string
}

// rules is the requirement table. Prior auth and bite approval are pure
// freshness ceilings; surgical records additionally require a minimum age so
// the record reflects a mature pre-op state.
var rules = map[Requirement]Rule{
	RequirementPriorAuth: {
		MaxAgeDays:    60,
		WarnAfterDays: 50,
	},
	RequirementBiteApproval: {
		MaxAgeDays:    120,
		WarnAfterDays: 100,
	},
	RequirementSurgicalRecords: {
		MinAgeDays:      60,
		MaxAgeDays:      90,
		TooEarlyMessage: "Too early (need 2+ months)",
		TooOldMessage:   "Too old (max 3 months)",
	},
}

// RequiredKinds returns the document kinds evaluated for overall readiness,
// in display order.
func RequiredKinds() []Requirement {
	return []Requirement{RequirementPriorAuth, RequirementSurgicalRecords, RequirementBiteApproval}
}

// RuleFor returns the rule bound to a requirement and whether one exists.
func RuleFor(kind Requirement) (Rule, bool) {
	r, ok := rules[kind]
	return r, ok
}

// Result is the classification of one document against one rule. Age is nil
// when the document date is missing, unparsable, or in the future.
type Result struct {
	Status          Status `json:"status"`
	Age             *int   `json:"age"`
	IsValid         bool   `json:"is_valid"`
	DaysOverdue     *int   `json:"days_overdue,omitempty"`
	DaysUntilExpiry *int   `json:"days_until_expiry,omitempty"`
	Message         string `json:"message,omitempty"`
}

func pending() Result {
	return Result{Status: StatusPending, IsValid: false}
}

// ClassifyByThreshold applies the shared one-sided freshness rule: a
// document must be no older than maxAge days, with a warning band starting
// at warnAt days. warnAt <= 0 defaults to 80% of maxAge. Age equal to
// maxAge is still valid; age equal to warnAt is already a warning.
func ClassifyByThreshold(date string, maxAge, warnAt int, now time.Time) Result {
	age := DocumentAge(date, now)
	if age == nil || *age < 0 {
		return pending()
	}
	if warnAt <= 0 {
		warnAt = maxAge * 8 / 10
	}
	if *age > maxAge {
		overdue := *age - maxAge
		return Result{Status: StatusInvalid, Age: age, DaysOverdue: &overdue}
	}
	remaining := maxAge - *age
	if *age >= warnAt {
		return Result{Status: StatusWarning, Age: age, IsValid: true, DaysUntilExpiry: &remaining}
	}
	return Result{Status: StatusValid, Age: age, IsValid: true, DaysUntilExpiry: &remaining}
}

// Classify evaluates a document date against the rule bound to kind.
// Requirements without a rule accept any present date.
func Classify(kind Requirement, date string, now time.Time) Result {
	rule, ok := rules[kind]
	if !ok {
		age := DocumentAge(date, now)
		if age == nil || *age < 0 {
			return pending()
		}
		return Result{Status: StatusValid, Age: age, IsValid: true}
	}
	if rule.MinAgeDays > 0 {
		return classifyWindow(rule, date, now)
	}
	return ClassifyByThreshold(date, rule.MaxAgeDays, rule.WarnAfterDays, now)
}

// classifyWindow applies a two-sided validity window: the document must be
// at least MinAgeDays and at most MaxAgeDays old.
func classifyWindow(rule Rule, date string, now time.Time) Result {
	age := DocumentAge(date, now)
	if age == nil || *age < 0 {
		return pending()
	}
	if *age < rule.MinAgeDays {
		return Result{Status: StatusTooEarly, Age: age, Message: rule.TooEarlyMessage}
	}
	if *age > rule.MaxAgeDays {
		overdue := *age - rule.MaxAgeDays
		return Result{Status: StatusInvalid, Age: age, DaysOverdue: &overdue, Message: rule.TooOldMessage}
	}
	return Result{Status: StatusValid, Age: age, IsValid: true}
}

// SurgeryUrgency classifies a scheduled surgery date by how many days
// remain. Boundaries are inclusive: day 0 through 7 is urgent, day 8
// through 30 is a warning.
func SurgeryUrgency(date string, now time.Time) Urgency {
	d := DaysUntil(date, now)
	switch {
	case d == nil:
		return UrgencyUnknown
	case *d < 0:
		return UrgencyOverdue
	case *d <= 7:
		return UrgencyUrgent
	case *d <= 30:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}
