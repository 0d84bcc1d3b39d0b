// Test Type: Unit Test
// Description: Tests for confirmation handling

package ui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/typewriter/pkg/ui"
)

func TestAutoConfirmer(t *testing.T) {
	yes := ui.AutoConfirmer{Answer: true}
	ok, err := yes.Confirm("anything?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	no := ui.AutoConfirmer{Answer: false}
	ok, err = no.Confirm("anything?", true)
	require.NoError(t, err)
	assert.False(t, ok)
}
