package domain

import (
	"strings"
	"time"
)

// DefaultReferenceFieldID is the extended attribute field that holds the
// tracker key in plan exports.
const DefaultReferenceFieldID int64 = 188743731

// ExtendedAttribute is a custom field attached to a plan task
type ExtendedAttribute struct {
	FieldID int64
	Value   string
}

// PredecessorLink is a scheduling dependency on another task
type PredecessorLink struct {
	PredecessorUID int64
	Type           int
}

// TaskFields holds the named plan attributes carried from import to storage
type TaskFields struct {
	ID              int64
	Name            string
	Type            int
	Priority        int
	Start           *time.Time
	Finish          *time.Time
	Duration        string // ISO 8601, e.g. PT16H0M0S
	Work            string
	ActualWork      string
	RemainingWork   string
	Summary         bool
	Milestone       bool
	Notes           string
	PercentComplete *float64 // nil when the export omits it

	ExtendedAttributes []ExtendedAttribute
	PredecessorLinks   []PredecessorLink
}

// FlatRecord is one plan item in document (pre-order) order
type FlatRecord struct {
	UID          int64
	OutlineLevel int
	TaskFields
}

// PlanNode is a plan item after hierarchy reconstruction
type PlanNode struct {
	UID          int64
	ParentUID    *int64 // nil for roots
	OutlineLevel int
	Position     int    // index in the accepted record sequence
	Reference    string // tracker key, empty when unlinked
	TaskFields
}

// IsRoot reports whether the node has no parent
func (n PlanNode) IsRoot() bool {
	return n.ParentUID == nil
}

// Completion returns the percent complete, defaulting to 0 when absent
func (n PlanNode) Completion() float64 {
	if n.PercentComplete == nil {
		return 0
	}
	return *n.PercentComplete
}

// ImportStats holds statistics from a plan import
type ImportStats struct {
	Records    int
	Tasks      int
	Duplicates int
	Linked     int
	Attributes int
	Links      int
	Duration   time.Duration
}

// ReferenceExtractor locates the tracker key among a task's extended attributes
type ReferenceExtractor struct {
	FieldID int64
}

// NewReferenceExtractor returns an extractor for fieldID, falling back to
// DefaultReferenceFieldID when fieldID is zero.
func NewReferenceExtractor(fieldID int64) ReferenceExtractor {
	if fieldID == 0 {
		fieldID = DefaultReferenceFieldID
	}
	return ReferenceExtractor{FieldID: fieldID}
}

// Extract returns the first non-blank value stored under the reference field
func (e ReferenceExtractor) Extract(attrs []ExtendedAttribute) (string, bool) {
	for _, a := range attrs {
		if a.FieldID != e.FieldID {
			continue
		}
		if v := strings.TrimSpace(a.Value); v != "" {
			return v, true
		}
	}
	return "", false
}
