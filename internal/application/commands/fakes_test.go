package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"planrecon/internal/application"
	"planrecon/internal/domain"
)

type taskSpec struct {
	uid   int64
	level int
	ref   string
	name  string
	pct   *float64
}

func pct(p float64) *float64 { return &p }

type fakeStore struct {
	nodes    map[int64]domain.PlanNode
	order    []int64
	children map[int64][]int64
	err      error
}

func newFakeStore(specs ...taskSpec) *fakeStore {
	records := make([]domain.FlatRecord, len(specs))
	refs := make(map[int64]string, len(specs))
	for i, s := range specs {
		records[i] = domain.FlatRecord{UID: s.uid, OutlineLevel: s.level}
		records[i].Name = s.name
		records[i].PercentComplete = s.pct
		refs[s.uid] = s.ref
	}

	st := &fakeStore{nodes: map[int64]domain.PlanNode{}, children: map[int64][]int64{}}
	for _, n := range domain.Reconstruct(records, nil) {
		n.Reference = refs[n.UID]
		st.nodes[n.UID] = n
		st.order = append(st.order, n.UID)
		if n.ParentUID != nil {
			st.children[*n.ParentUID] = append(st.children[*n.ParentUID], n.UID)
		}
	}
	return st
}

func (s *fakeStore) FindByReference(_ context.Context, key string) ([]domain.PlanNode, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.PlanNode
	for _, uid := range s.order {
		if n := s.nodes[uid]; strings.EqualFold(n.Reference, key) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) ChildrenOf(_ context.Context, uid int64) ([]domain.PlanNode, error) {
	var out []domain.PlanNode
	for _, c := range s.children[uid] {
		out = append(out, s.nodes[c])
	}
	return out, nil
}

func (s *fakeStore) ReferenceOf(_ context.Context, uid int64) (string, error) {
	n, ok := s.nodes[uid]
	if !ok {
		return "", application.ErrNotFound
	}
	return n.Reference, nil
}

type fakeTracker struct {
	mu        sync.Mutex
	issues    map[string]domain.Issue
	children  map[string][]string
	failFetch map[string]error
	calls     int

	delay       time.Duration
	inFlight    atomic.Int32
	maxInFlight int32
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		issues:    map[string]domain.Issue{},
		children:  map[string][]string{},
		failFetch: map[string]error{},
	}
}

func (f *fakeTracker) add(parent, key, status string) *fakeTracker {
	f.issues[key] = domain.Issue{Key: key, Summary: "issue " + key, Status: status, IssueType: "Task"}
	if parent != "" {
		f.children[parent] = append(f.children[parent], key)
	}
	return f
}

func (f *fakeTracker) addSubtask(parent, key string) *fakeTracker {
	f.issues[key] = domain.Issue{Key: key, Summary: "sub " + key, Status: "Open", IssueType: "Sub-task", IsSubtask: true}
	f.children[parent] = append(f.children[parent], key)
	return f
}

func (f *fakeTracker) FetchIssue(ctx context.Context, key string) (*domain.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	issue, ok := f.issues[key]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", key, application.ErrNotFound)
	}
	return &issue, nil
}

func (f *fakeTracker) FetchChildren(ctx context.Context, key string) ([]domain.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	f.mu.Lock()
	f.maxInFlight = max(f.maxInFlight, n)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.failFetch[key]; err != nil {
		return nil, err
	}
	var out []domain.Issue
	for _, k := range f.children[key] {
		out = append(out, f.issues[k])
	}
	return out, nil
}

type fakeRuns struct {
	runs []domain.Run
	err  error
}

func (f *fakeRuns) RecordRun(_ context.Context, run *domain.Run) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	if limit > 0 && limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

type fakeParser struct {
	records []domain.FlatRecord
	err     error
}

func (p *fakeParser) Parse(r io.Reader) ([]domain.FlatRecord, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return p.records, p.err
}

type fakeWriter struct {
	nodes []domain.PlanNode
	err   error
}

func (w *fakeWriter) ReplacePlan(_ context.Context, nodes []domain.PlanNode) (*domain.ImportStats, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.nodes = nodes
	return &domain.ImportStats{Tasks: len(nodes)}, nil
}
