package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Table{
		Headers: []string{"name", "status"},
		Rows: [][]string{
			{"Ana Lima", "ACTIVE"},
			{"João Pires", "TRANSFERRED"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "name,status\nAna Lima,ACTIVE\nJoão Pires,TRANSFERRED\n", string(out))
}

func TestCSVRenderRejectsRaggedRow(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{
		Headers: []string{"name", "status"},
		Rows:    [][]string{{"only-one-cell"}},
	})
	require.Error(t, err)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	require.Error(t, err)
}
