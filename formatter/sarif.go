package formatter

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	tt "github.com/gnolang/typelint/internal/types"
)

// SARIF 2.1.0 constants
const (
	SarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	SarifVersion   = "2.1.0"
	ToolName       = "typelint"
	ToolVersion    = "0.1.0"
)

// SarifReport is the top-level SARIF report structure
type SarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool    SarifTool     `json:"tool"`
	Results []SarifResult `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []SarifRule `json:"rules,omitempty"`
}

type SarifRule struct {
	ID               string       `json:"id"`
	ShortDescription SarifMessage `json:"shortDescription"`
}

type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SarifMessage    `json:"message"`
	Locations []SarifLocation `json:"locations"`
	Fixes     []SarifFix      `json:"fixes,omitempty"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           SarifRegion           `json:"region"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SarifRegion is either a line/column range or, in fixes, a byte range.
type SarifRegion struct {
	StartLine   int  `json:"startLine,omitempty"`
	StartColumn int  `json:"startColumn,omitempty"`
	EndLine     int  `json:"endLine,omitempty"`
	EndColumn   int  `json:"endColumn,omitempty"`
	ByteOffset  *int `json:"byteOffset,omitempty"`
	ByteLength  *int `json:"byteLength,omitempty"`
}

type SarifFix struct {
	Description     SarifMessage          `json:"description"`
	ArtifactChanges []SarifArtifactChange `json:"artifactChanges"`
}

type SarifArtifactChange struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Replacements     []SarifReplacement    `json:"replacements"`
}

type SarifReplacement struct {
	DeletedRegion   SarifRegion   `json:"deletedRegion"`
	InsertedContent *SarifMessage `json:"insertedContent,omitempty"`
}

// NewSarifReport creates a report with one run for the given issues.
func NewSarifReport(issues []tt.Issue) *SarifReport {
	run := SarifRun{
		Tool: SarifTool{
			Driver: SarifDriver{Name: ToolName, Version: ToolVersion},
		},
		Results: make([]SarifResult, 0, len(issues)),
	}

	seen := make(map[string]bool)
	for _, issue := range issues {
		if !seen[issue.Rule] {
			seen[issue.Rule] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, SarifRule{
				ID:               issue.Rule,
				ShortDescription: SarifMessage{Text: issue.Category},
			})
		}
		run.Results = append(run.Results, sarifResult(issue))
	}
	sort.Slice(run.Tool.Driver.Rules, func(i, j int) bool {
		return run.Tool.Driver.Rules[i].ID < run.Tool.Driver.Rules[j].ID
	})

	return &SarifReport{
		Schema:  SarifSchemaURI,
		Version: SarifVersion,
		Runs:    []SarifRun{run},
	}
}

func sarifResult(issue tt.Issue) SarifResult {
	artifact := SarifArtifactLocation{URI: formatFileURI(issue.Filename)}
	result := SarifResult{
		RuleID:  issue.Rule,
		Level:   sarifLevel(issue.Severity),
		Message: SarifMessage{Text: issue.Message},
		Locations: []SarifLocation{{
			PhysicalLocation: SarifPhysicalLocation{
				ArtifactLocation: artifact,
				Region: SarifRegion{
					StartLine:   issue.Start.Line,
					StartColumn: issue.Start.Column,
					EndLine:     issue.End.Line,
					EndColumn:   issue.End.Column,
				},
			},
		}},
	}

	if len(issue.Edits) == 0 {
		return result
	}
	change := SarifArtifactChange{ArtifactLocation: artifact}
	for _, e := range issue.Edits {
		offset, length := e.Start, e.End-e.Start
		r := SarifReplacement{
			DeletedRegion: SarifRegion{ByteOffset: &offset, ByteLength: &length},
		}
		if e.NewText != "" {
			r.InsertedContent = &SarifMessage{Text: e.NewText}
		}
		change.Replacements = append(change.Replacements, r)
	}
	result.Fixes = []SarifFix{{
		Description:     SarifMessage{Text: issue.Suggestion},
		ArtifactChanges: []SarifArtifactChange{change},
	}}
	return result
}

func sarifLevel(s tt.Severity) string {
	switch s {
	case tt.SeverityError:
		return "error"
	case tt.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// ToJSON serializes the report to JSON bytes
func (r *SarifReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}

// GroupByFile groups issues by file name.
func GroupByFile(issues []tt.Issue) map[string][]tt.Issue {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}
	return issuesByFile
}

// JSON renders issues grouped by file name.
func JSON(issues []tt.Issue) ([]byte, error) {
	return json.Marshal(GroupByFile(issues))
}
