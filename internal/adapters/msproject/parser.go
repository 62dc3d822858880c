// Package msproject reads MS Project XML exports, as produced by OmniPlan
// and Microsoft Project, into flat plan records.
package msproject

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"planrecon/internal/domain"
	"planrecon/internal/ports"
)

// DateLayout is the timestamp format of Start and Finish
const DateLayout = "2006-01-02T15:04:05"

type project struct {
	XMLName xml.Name  `xml:"Project"`
	Tasks   []xmlTask `xml:"Tasks>Task"`
}

type xmlTask struct {
	UID             string           `xml:"UID"`
	ID              string           `xml:"ID"`
	Name            string           `xml:"Name"`
	Type            string           `xml:"Type"`
	Priority        string           `xml:"Priority"`
	Start           string           `xml:"Start"`
	Finish          string           `xml:"Finish"`
	Duration        string           `xml:"Duration"`
	Work            string           `xml:"Work"`
	ActualWork      string           `xml:"ActualWork"`
	RemainingWork   string           `xml:"RemainingWork"`
	Summary         string           `xml:"Summary"`
	Milestone       string           `xml:"Milestone"`
	Notes           string           `xml:"Notes"`
	OutlineLevel    string           `xml:"OutlineLevel"`
	PercentComplete string           `xml:"PercentComplete"`
	Attributes      []xmlAttribute   `xml:"ExtendedAttribute"`
	Predecessors    []xmlPredecessor `xml:"PredecessorLink"`
}

type xmlAttribute struct {
	FieldID string `xml:"FieldID"`
	Value   string `xml:"Value"`
}

type xmlPredecessor struct {
	PredecessorUID string `xml:"PredecessorUID"`
	Type           string `xml:"Type"`
}

// Parser implements ports.PlanParser
type Parser struct{}

var _ ports.PlanParser = (*Parser)(nil)

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes Project/Tasks/Task elements in document order
func (p *Parser) Parse(r io.Reader) ([]domain.FlatRecord, error) {
	var doc project
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode plan export: %w", err)
	}

	records := make([]domain.FlatRecord, 0, len(doc.Tasks))
	for i, t := range doc.Tasks {
		rec, err := t.record()
		if err != nil {
			return nil, fmt.Errorf("task %d (UID %q): %w", i+1, t.UID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (t *xmlTask) record() (domain.FlatRecord, error) {
	var (
		rec domain.FlatRecord
		err error
	)

	if strings.TrimSpace(t.UID) == "" {
		return rec, fmt.Errorf("missing UID")
	}
	if rec.UID, err = parseInt(t.UID); err != nil {
		return rec, fmt.Errorf("UID: %w", err)
	}
	if strings.TrimSpace(t.OutlineLevel) == "" {
		return rec, fmt.Errorf("missing OutlineLevel")
	}
	level, err := parseInt(t.OutlineLevel)
	if err != nil {
		return rec, fmt.Errorf("OutlineLevel: %w", err)
	}
	rec.OutlineLevel = int(level)

	f := &rec.TaskFields
	f.Name = t.Name
	f.Duration = t.Duration
	f.Work = t.Work
	f.ActualWork = t.ActualWork
	f.RemainingWork = t.RemainingWork
	f.Notes = t.Notes
	f.Summary = parseFlag(t.Summary)
	f.Milestone = parseFlag(t.Milestone)

	if f.ID, err = parseOptionalInt(t.ID); err != nil {
		return rec, fmt.Errorf("ID: %w", err)
	}
	typ, err := parseOptionalInt(t.Type)
	if err != nil {
		return rec, fmt.Errorf("Type: %w", err)
	}
	f.Type = int(typ)
	prio, err := parseOptionalInt(t.Priority)
	if err != nil {
		return rec, fmt.Errorf("Priority: %w", err)
	}
	f.Priority = int(prio)

	if f.Start, err = parseDate(t.Start); err != nil {
		return rec, fmt.Errorf("Start: %w", err)
	}
	if f.Finish, err = parseDate(t.Finish); err != nil {
		return rec, fmt.Errorf("Finish: %w", err)
	}

	if s := strings.TrimSpace(t.PercentComplete); s != "" {
		pct, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return rec, fmt.Errorf("PercentComplete: %w", err)
		}
		f.PercentComplete = &pct
	}

	for _, a := range t.Attributes {
		id, err := parseInt(a.FieldID)
		if err != nil {
			return rec, fmt.Errorf("ExtendedAttribute FieldID: %w", err)
		}
		f.ExtendedAttributes = append(f.ExtendedAttributes, domain.ExtendedAttribute{FieldID: id, Value: a.Value})
	}
	for _, l := range t.Predecessors {
		uid, err := parseInt(l.PredecessorUID)
		if err != nil {
			return rec, fmt.Errorf("PredecessorUID: %w", err)
		}
		typ, err := parseOptionalInt(l.Type)
		if err != nil {
			return rec, fmt.Errorf("PredecessorLink Type: %w", err)
		}
		f.PredecessorLinks = append(f.PredecessorLinks, domain.PredecessorLink{PredecessorUID: uid, Type: int(typ)})
	}

	return rec, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseOptionalInt(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseInt(s)
}

func parseFlag(s string) bool {
	s = strings.TrimSpace(s)
	return s == "1" || strings.EqualFold(s, "true")
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
