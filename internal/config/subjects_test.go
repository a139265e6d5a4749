package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/subject"
)

const citiesYAML = `version: "1.2"
variant: governance
subjects:
  - id: mumbai
    name: Mumbai
    metrics: {aqi: 160, transport: 55, crime: 42, poverty: 18, growth: 7.5}
  - id: delhi
    name: Delhi
    metrics:
      aqi: 380
      transport: 50
      crime: 58
      poverty: 15
      growth: 6.8
`

func TestLoadSubjectsFile(t *testing.T) {
	f, err := LoadSubjectsFile(writeFile(t, "subjects.yaml", citiesYAML))
	require.NoError(t, err)

	require.Len(t, f.Subjects, 2)
	assert.Equal(t, "governance", f.Variant)
	assert.Equal(t, "delhi", f.Subjects[1].ID)
	assert.Equal(t, 1, f.Subjects[1].Ordinal)
	assert.Equal(t, 380.0, f.Subjects[1].Metrics.Get(subject.MetricAQI))
	assert.Equal(t, 6.8, f.Subjects[1].Metrics.Get(subject.MetricGrowth))
}

func TestSubjectsFileValidate(t *testing.T) {
	valid := func() *SubjectsFile {
		return &SubjectsFile{
			Version:  "1.0",
			Variant:  "market",
			Subjects: []subject.Subject{{ID: "2021"}, {ID: "2022"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*SubjectsFile)
		wantErr string
	}{
		{"valid", func(*SubjectsFile) {}, ""},
		{"garbage version", func(f *SubjectsFile) { f.Version = "one" }, "invalid version"},
		{"future version", func(f *SubjectsFile) { f.Version = "2.0" }, "unsupported version"},
		{"variant", func(f *SubjectsFile) { f.Variant = "" }, "unknown variant"},
		{"empty", func(f *SubjectsFile) { f.Subjects = nil }, "at least one subject"},
		{"missing id", func(f *SubjectsFile) { f.Subjects[1].ID = "" }, "id is required"},
		{"duplicate id", func(f *SubjectsFile) { f.Subjects[1].ID = "2021" }, "duplicate id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteThenLoadSubjectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.yaml")
	want := &SubjectsFile{
		Version: SubjectsFileVersion,
		Variant: "market",
		Subjects: []subject.Subject{
			{ID: "2021", Name: "2021", Metrics: subject.Metrics{"value": 100}},
			{ID: "2022", Name: "2022", Metrics: subject.Metrics{"value": 250}},
		},
	}

	require.NoError(t, WriteSubjectsFile(path, want))
	got, err := LoadSubjectsFile(path)
	require.NoError(t, err)

	assert.Equal(t, want.Variant, got.Variant)
	require.Len(t, got.Subjects, 2)
	assert.Equal(t, 250.0, got.Subjects[1].Metrics.Get("value"))
	assert.Equal(t, 1, got.Subjects[1].Ordinal)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".subjects.*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files are cleaned up")
}
