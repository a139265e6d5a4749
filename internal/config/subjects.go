package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-version"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/moolen/faultline/internal/subject"
)

// SubjectsFileVersion is written by WriteSubjectsFile.
const SubjectsFileVersion = "1.0"

// supportedSubjectsVersions accepts any 1.x file.
var supportedSubjectsVersions = version.MustConstraints(version.NewConstraint(">= 1.0, < 2.0"))

// SubjectsFile is the on-disk list of subjects for the file source.
//
//	version: "1.0"
//	variant: governance
//	subjects:
//	  - id: delhi
//	    name: Delhi
//	    metrics: {aqi: 380, transport: 50, crime: 58, poverty: 15, growth: 6.8}
type SubjectsFile struct {
	Version  string            `yaml:"version"`
	Variant  string            `yaml:"variant"`
	Subjects []subject.Subject `yaml:"subjects"`
}

// Validate checks version, variant and subject identifiers.
func (f *SubjectsFile) Validate() error {
	v, err := version.NewVersion(f.Version)
	if err != nil {
		return NewConfigError(fmt.Sprintf("invalid version %q: %v", f.Version, err))
	}
	if !supportedSubjectsVersions.Check(v) {
		return NewConfigError(fmt.Sprintf("unsupported version %s (expected %s)", v, supportedSubjectsVersions))
	}

	if _, err := subject.ParseVariant(f.Variant); err != nil {
		return NewConfigError(err.Error())
	}

	if len(f.Subjects) == 0 {
		return NewConfigError("at least one subject is required")
	}

	seen := make(map[string]bool, len(f.Subjects))
	for i, s := range f.Subjects {
		if s.ID == "" {
			return NewConfigError(fmt.Sprintf("subjects[%d]: id is required", i))
		}
		if seen[s.ID] {
			return NewConfigError(fmt.Sprintf("subjects[%d]: duplicate id %q", i, s.ID))
		}
		seen[s.ID] = true
	}
	return nil
}

// LoadSubjectsFile loads and validates a subjects file. Ordinals follow
// file order.
func LoadSubjectsFile(path string) (*SubjectsFile, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load subjects from %q: %w", path, err)
	}

	var f SubjectsFile
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse subjects from %q: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("subjects file validation failed for %q: %w", path, err)
	}

	subject.Renumber(f.Subjects)
	return &f, nil
}

// WriteSubjectsFile writes f through a temp file and rename so readers never
// observe a partial file.
func WriteSubjectsFile(path string, f *SubjectsFile) error {
	data, err := yamlv3.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal subjects: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".subjects.*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if _, err := os.Stat(tmpPath); err == nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %q: %w", path, err)
	}
	return nil
}
