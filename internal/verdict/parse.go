package verdict

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a leading ```json or ``` fence, a trailing ``` fence
// and surrounding whitespace. Either fence may be missing.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the info string ("json", "JSON", ...) on the opening line.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[") {
				s = s[nl+1:]
			}
		} else {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
		}
		s = strings.TrimSpace(s)
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parse decodes a possibly fenced reply into a Verdict. All three fields must
// be present and non-empty; reasons beyond MaxReasons are dropped.
func Parse(text string) (Verdict, error) {
	payload := StripFences(text)
	if payload == "" {
		return Verdict{}, ErrEmptyReply
	}

	var raw struct {
		Compliance   string   `json:"compliance"`
		Reasons      []string `json:"reasons"`
		PrimaryFault string   `json:"primaryFault"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	reasons := make([]string, 0, MaxReasons)
	for _, r := range raw.Reasons {
		if r = strings.TrimSpace(r); r != "" {
			reasons = append(reasons, r)
		}
		if len(reasons) == MaxReasons {
			break
		}
	}

	switch {
	case strings.TrimSpace(raw.Compliance) == "":
		return Verdict{}, fmt.Errorf("%w: missing compliance", ErrMalformedVerdict)
	case len(reasons) == 0:
		return Verdict{}, fmt.Errorf("%w: missing reasons", ErrMalformedVerdict)
	case strings.TrimSpace(raw.PrimaryFault) == "":
		return Verdict{}, fmt.Errorf("%w: missing primaryFault", ErrMalformedVerdict)
	}

	return Verdict{
		Compliance:   strings.TrimSpace(raw.Compliance),
		Reasons:      reasons,
		PrimaryFault: strings.TrimSpace(raw.PrimaryFault),
		Source:       SourceModel,
	}, nil
}
