package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"planrecon/internal/domain"
)

func TestPrintDiff_Plain(t *testing.T) {
	forest := []*domain.DiffNode{{
		Category: domain.Unchanged,
		Label:    "MUP-1 - Epic",
		Children: []*domain.DiffNode{{
			Category: domain.OnlyInTracker,
			Label:    "MUP-4 - Test [Status: Open]",
			Evidence: &domain.Node{Children: []*domain.Node{{Label: "MUP-5 - Fixture [Status: Open]"}}},
		}},
	}}

	var buf bytes.Buffer
	printDiff(&buf, forest, false)

	assert.Equal(t, "- MUP-1 - Epic\n"+
		"    - (Only in tracker) MUP-4 - Test [Status: Open]\n"+
		"        - MUP-5 - Fixture [Status: Open]\n", buf.String())
}

func TestColorEnabled_NotATerminal(t *testing.T) {
	assert.False(t, colorEnabled(&bytes.Buffer{}))
}
