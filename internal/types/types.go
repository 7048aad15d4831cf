package types

import (
	"fmt"
	"go/token"
	"strings"
)

// Issue represents a lint issue found in the code base.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Confidence float64 // 0.0 to 1.0
	Severity   Severity
	Edits      []TextEdit `json:",omitempty"`
}

// TextEdit replaces the bytes [Start, End) of a file with NewText.
type TextEdit struct {
	Start   int
	End     int
	NewText string
}

// Severity is the level at which a rule reports.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	}
	return "UNKNOWN"
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	case "OFF":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ConfigRule is the configuration of one rule.
type ConfigRule struct {
	Severity Severity       `yaml:"severity"`
	Options  map[string]any `yaml:"options,omitempty"`
}

// BoolOption returns the boolean option name, or false if it is unset
// or not a boolean.
func (r ConfigRule) BoolOption(name string) bool {
	v, _ := r.Options[name].(bool)
	return v
}
