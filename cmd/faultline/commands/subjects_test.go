package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/subject"
)

func TestInitSubjectsFile(t *testing.T) {
	tests := []struct {
		variant subject.Variant
		count   int
		firstID string
	}{
		{subject.Governance, 4, "mumbai"},
		{subject.Market, 6, "2021"},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "subjects.yaml")
			require.NoError(t, initSubjectsFile(context.Background(), path, tt.variant, false))

			f, err := config.LoadSubjectsFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(tt.variant), f.Variant)
			assert.Equal(t, config.SubjectsFileVersion, f.Version)
			require.Len(t, f.Subjects, tt.count)
			assert.Equal(t, tt.firstID, f.Subjects[0].ID)
		})
	}
}

func TestInitSubjectsFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.yaml")
	require.NoError(t, initSubjectsFile(context.Background(), path, subject.Governance, false))

	err := initSubjectsFile(context.Background(), path, subject.Market, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, initSubjectsFile(context.Background(), path, subject.Market, true))
	f, err := config.LoadSubjectsFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(subject.Market), f.Variant)
}

func TestValidateSubjectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.yaml")
	require.NoError(t, initSubjectsFile(context.Background(), path, subject.Governance, false))

	var out bytes.Buffer
	require.NoError(t, validateSubjectsFile(&out, path))
	assert.Contains(t, out.String(), "4 governance subjects")

	assert.Error(t, validateSubjectsFile(&out, filepath.Join(t.TempDir(), "missing.yaml")))
}
