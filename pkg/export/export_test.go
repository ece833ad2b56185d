package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Ranked applicants",
		Notes:   []string{"Subject: calculus"},
		Headers: []string{"rank", "tutor", "score"},
		Rows: []map[string]string{
			{"rank": "1", "tutor": "Ada", "score": "100.00"},
			{"rank": "2", "tutor": "Grace", "score": "72.50"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "rank,tutor,score\n1,Ada,100.00\n2,Grace,72.50\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
