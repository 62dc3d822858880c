package domain

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pnode(key string, pct float64, children ...*Node) *Node {
	return &Node{Key: key, Label: PlanLabel(key, "plan "+key, pct), Status: PercentComplete(pct), Children: children}
}

func tnode(key, status string, children ...*Node) *Node {
	return &Node{Key: key, Label: IssueLabel(key, "issue "+key, status), Status: TrackerStatus(status), Children: children}
}

// sampleTree is a plan-shaped tree with no completed nodes
func sampleTree() *Node {
	return pnode("MUP-1", 10,
		pnode("MUP-12", 50,
			pnode("MUP-31", 0),
			pnode("MUP-30", 20),
		),
		pnode("MUP-3", 0),
		pnode(UnlinkedKey, 0),
	)
}

func TestDiff_IdenticalTreeIsEmpty(t *testing.T) {
	x := pnode("MUP-1", 10,
		pnode("MUP-2", 50, pnode("MUP-4", 0), pnode("MUP-5", 30)),
		pnode("MUP-3", 0, pnode("MUP-6", 99)),
	)

	assert.Empty(t, NewDiffer(nil, nil).Diff(x, x))
}

func TestDiff_ConsistentTreesAreEmpty(t *testing.T) {
	plan := pnode("MUP-1", 50,
		pnode("MUP-2", 100, pnode("MUP-4", 100)),
		pnode("MUP-3", 20, pnode("MUP-5", 0)),
	)
	tracker := tnode("MUP-1", "In Progress",
		tnode("MUP-2", "Closed", tnode("MUP-4", "Closed")),
		tnode("MUP-3", "Open", tnode("MUP-5", "Open")),
	)

	assert.Empty(t, NewDiffer(nil, nil).Diff(plan, tracker))
}

func TestDiff_CompleteAndClosedRecursesIntoChildren(t *testing.T) {
	plan := pnode("ROOT", 0,
		pnode("10", 100, pnode("11", 100), pnode("12", 100)),
	)
	tracker := tnode("ROOT", "Open",
		tnode("10", "Closed", tnode("11", "Closed")),
	)

	diff := NewDiffer(nil, nil).Diff(plan, tracker)

	require.Len(t, diff, 1)
	assert.Equal(t, Unchanged, diff[0].Category)
	assert.Equal(t, "10", diff[0].Key)
	assert.Equal(t, plan.Children[0].Label, diff[0].Label)
	require.Len(t, diff[0].Children, 1)
	assert.Equal(t, OnlyInPlan, diff[0].Children[0].Category)
	assert.Equal(t, "12", diff[0].Children[0].Key)
}

func TestDiff_ClosedButIncomplete(t *testing.T) {
	planChild := pnode("20", 40, pnode("21", 100), pnode("22", 0))
	plan := pnode("ROOT", 0, planChild)
	tracker := tnode("ROOT", "Open", tnode("20", "Closed", tnode("23", "Open")))

	diff := NewDiffer(nil, nil).Diff(plan, tracker)

	require.Len(t, diff, 1)
	d := diff[0]
	assert.Equal(t, ClosedButIncomplete, d.Category)
	assert.Equal(t, "20", d.Key)
	assert.Equal(t, planChild, d.Evidence, "plan subtree reproduced verbatim")
	assert.NotSame(t, planChild, d.Evidence)
	assert.Empty(t, d.Children, "no recursion below a status mismatch")
}

func TestDiff_CompleteButOpen(t *testing.T) {
	trackerChild := tnode("40", "In Progress", tnode("41", "Open"))
	plan := pnode("ROOT", 0, pnode("40", 100))
	tracker := tnode("ROOT", "Open", trackerChild)

	diff := NewDiffer(nil, nil).Diff(plan, tracker)

	require.Len(t, diff, 1)
	assert.Equal(t, CompleteButOpen, diff[0].Category)
	assert.Equal(t, trackerChild, diff[0].Evidence)
}

func TestDiff_OnlyInPlan(t *testing.T) {
	planChild := pnode("30", 10, pnode("31", 0, pnode("32", 0)))
	plan := pnode("ROOT", 0, planChild)
	tracker := tnode("ROOT", "Open")

	diff := NewDiffer(nil, nil).Diff(plan, tracker)

	require.Len(t, diff, 1)
	assert.Equal(t, OnlyInPlan, diff[0].Category)
	assert.Equal(t, "30", diff[0].Key)
	assert.Equal(t, planChild, diff[0].Evidence)
}

func TestDiff_OnlyInTracker(t *testing.T) {
	trackerChild := tnode("MUP-50", "Open", tnode("MUP-51", "Closed"))
	plan := pnode("ROOT", 0)
	tracker := tnode("ROOT", "Open", trackerChild)

	diff := NewDiffer(nil, nil).Diff(plan, tracker)

	require.Len(t, diff, 1)
	assert.Equal(t, OnlyInTracker, diff[0].Category)
	assert.Equal(t, trackerChild, diff[0].Evidence)
}

func TestDiff_EmissionOrder(t *testing.T) {
	plan := pnode("ROOT", 0,
		pnode("A-3", 40),
		pnode("A-1", 0),
		pnode("A-2", 0),
	)
	tracker := tnode("ROOT", "Open",
		tnode("A-5", "Open"),
		tnode("A-3", "Closed"),
		tnode("A-4", "Open"),
	)

	diff := NewDiffer(nil, nil).Diff(plan, tracker)

	var got []string
	for _, d := range diff {
		got = append(got, d.Category.String()+":"+d.Key)
	}
	assert.Equal(t, []string{
		"OnlyInPlan:A-1",
		"OnlyInPlan:A-2",
		"OnlyInTracker:A-5",
		"OnlyInTracker:A-4",
		"ClosedButIncomplete:A-3",
	}, got)
}

func TestDiff_UnlinkedNeverMatches(t *testing.T) {
	plan := pnode("ROOT", 0, pnode(UnlinkedKey, 0), pnode(UnlinkedKey, 0))
	tracker := tnode("ROOT", "Open", &Node{Key: "", Label: "keyless", Status: TrackerStatus("Open")})

	diff := NewDiffer(nil, nil).Diff(plan, tracker)

	counts := CountDiff(diff)
	assert.Equal(t, 2, counts[OnlyInPlan])
	assert.Equal(t, 1, counts[OnlyInTracker])
}

func TestDiff_DuplicateSiblingKeyKeepsFirst(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	plan := pnode("ROOT", 0, pnode("K-1", 100), pnode("K-1", 0))
	tracker := tnode("ROOT", "Open", tnode("K-1", "Closed"))

	diff := NewDiffer(nil, logger).Diff(plan, tracker)

	assert.Empty(t, diff, "first plan occurrence (100%) matches the closed issue")
	assert.Contains(t, buf.String(), "duplicate sibling key")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestDiff_ClosedStatusesConfigurable(t *testing.T) {
	plan := pnode("ROOT", 0, pnode("M-1", 30))
	tracker := tnode("ROOT", "Åpen", tnode("M-1", "Lukket"))

	assert.Equal(t, CompleteButOpen, firstCategory(t, NewDiffer(nil, nil), pnode("ROOT", 0, pnode("M-1", 100)), tracker))
	assert.Empty(t, NewDiffer(nil, nil).Diff(plan, tracker), "Lukket is open under the default set")

	d := NewDiffer([]string{"lukket", "Done"}, nil)
	assert.True(t, d.IsClosed(TrackerStatus("LUKKET")))
	assert.Equal(t, ClosedButIncomplete, firstCategory(t, d, plan, tracker))
}

func firstCategory(t *testing.T, d *Differ, plan, tracker *Node) Category {
	t.Helper()
	diff := d.Diff(plan, tracker)
	require.NotEmpty(t, diff)
	return diff[0].Category
}

func TestDiff_Deterministic(t *testing.T) {
	plan := sampleTree()
	tracker := tnode("MUP-1", "Open",
		tnode("MUP-12", "Closed", tnode("MUP-30", "Open")),
		tnode("MUP-8", "Open"),
	)

	d := NewDiffer(nil, nil)
	first := d.Diff(plan, tracker)
	second := d.Diff(plan, tracker)

	assert.Equal(t, first, second)
	assert.Equal(t, RenderDiff(first), RenderDiff(second))
}

func TestDiff_WrapComparesRoots(t *testing.T) {
	plan := pnode("MUP-1", 100)
	tracker := tnode("MUP-1", "Open")

	d := NewDiffer(nil, nil)
	assert.Empty(t, d.Diff(plan, tracker))

	diff := d.Diff(Wrap(plan), Wrap(tracker))
	require.Len(t, diff, 1)
	assert.Equal(t, CompleteButOpen, diff[0].Category)
}

func TestDiff_NilInputs(t *testing.T) {
	d := NewDiffer(nil, nil)
	assert.Nil(t, d.Diff(nil, tnode("A", "Open")))
	assert.Nil(t, d.Diff(pnode("A", 0), nil))
}

func TestCountDiff(t *testing.T) {
	forest := []*DiffNode{
		{Category: Unchanged, Children: []*DiffNode{
			{Category: OnlyInPlan},
			{Category: ClosedButIncomplete},
		}},
		{Category: OnlyInTracker},
	}

	counts := CountDiff(forest)

	assert.Equal(t, 1, counts[Unchanged])
	assert.Equal(t, 1, counts[OnlyInPlan])
	assert.Equal(t, 3, counts.Total())
}
