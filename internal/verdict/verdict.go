// Package verdict enriches subjects with an externally generated compliance
// verdict. Every failure resolves to a canned fallback; callers never see an
// error.
package verdict

import (
	"context"
	"errors"
)

// Source records where a verdict came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// MaxReasons caps the number of reasons kept from any verdict.
const MaxReasons = 3

// Verdict is the compliance assessment for one subject.
type Verdict struct {
	Compliance   string   `json:"compliance" yaml:"compliance"`
	Reasons      []string `json:"reasons" yaml:"reasons"`
	PrimaryFault string   `json:"primaryFault" yaml:"primaryFault"`
	Source       Source   `json:"source" yaml:"source"`
}

// Generator sends a prompt to a text-generation backend and returns the raw
// reply text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

var (
	// ErrMissingAPIKey is returned by generators configured without a key.
	ErrMissingAPIKey = errors.New("verdict API key is not configured")
	// ErrEmptyReply is returned when the reply carries no text payload.
	ErrEmptyReply = errors.New("verdict reply has no text payload")
	// ErrMalformedVerdict is returned when the payload is not a verdict object.
	ErrMalformedVerdict = errors.New("verdict payload is malformed")
)
