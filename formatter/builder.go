package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/typelint/internal"
	"github.com/gnolang/typelint/internal/lints"
	tt "github.com/gnolang/typelint/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
	noStyle         = color.New(color.FgWhite)
)

// locationTemplate renders the header, the offending lines and the
// underlined message. Every rule template starts with it.
const locationTemplate = `{{define "location"}}{{header .}}{{snippet .}}{{underline .}}{{end}}`

const generalTemplateName = "general"

// ruleTemplates holds the template of each rule with its own layout.
// Other rules are rendered with the general template.
var ruleTemplates = map[string]string{
	generalTemplateName:             generalTemplate,
	lints.DuplicateConstituentsRule: duplicateConstituentsTemplate,
}

var templates = parseTemplates()

func parseTemplates() *template.Template {
	root := template.New("issue").Funcs(template.FuncMap{
		"header":     header,
		"snippet":    snippet,
		"underline":  underline,
		"suggestion": suggestion,
		"help":       help,
		"note":       note,
	})
	template.Must(root.Parse(locationTemplate))
	for name, text := range ruleTemplates {
		template.Must(root.New(name).Parse(text))
	}
	return root
}

func templateFor(rule string) *template.Template {
	if t := templates.Lookup(rule); t != nil && rule != "location" && rule != "issue" {
		return t
	}
	return templates.Lookup(generalTemplateName)
}

// issueView is what the templates see: the issue plus the layout of its
// code snippet.
type issueView struct {
	tt.Issue
	Lines   []string
	Width   int    // width of the largest line number
	Padding string // blank gutter, one wider than Width
	Indent  string // indentation shared by the snippet lines
}

func newIssueView(issue tt.Issue, src *internal.SourceCode) *issueView {
	v := &issueView{Issue: issue, Lines: src.Lines}
	v.Width = len(fmt.Sprint(issue.End.Line))
	v.Padding = strings.Repeat(" ", v.Width+1)
	if isValidLineRange(issue.Start.Line, issue.End.Line, src.Lines) {
		v.Indent = findCommonIndent(src.Lines[issue.Start.Line-1 : issue.End.Line])
	}
	return v
}

// GenerateFormattedIssue renders issues in a human-readable form, using
// src to show the lines each issue points at.
func GenerateFormattedIssue(issues []tt.Issue, src *internal.SourceCode) string {
	var out strings.Builder
	for _, issue := range issues {
		var buf bytes.Buffer
		if err := templateFor(issue.Rule).Execute(&buf, newIssueView(issue, src)); err != nil {
			fmt.Fprintf(&out, "Error formatting issue: %v", err)
			continue
		}
		out.Write(buf.Bytes())
	}
	return out.String()
}

func header(v *issueView) string {
	var b strings.Builder
	switch v.Severity {
	case tt.SeverityError:
		b.WriteString(errorStyle.Sprint("error: "))
	case tt.SeverityWarning:
		b.WriteString(warningStyle.Sprint("warning: "))
	case tt.SeverityInfo:
		b.WriteString(messageStyle.Sprint("info: "))
	}
	b.WriteString(ruleStyle.Sprintf("%s\n", v.Rule))
	b.WriteString(lineStyle.Sprintf("%s--> ", strings.Repeat(" ", v.Width)))
	b.WriteString(fileStyle.Sprintf("%s:%d:%d\n", v.Filename, v.Start.Line, v.Start.Column))
	return b.String()
}

func snippet(v *issueView) string {
	var b strings.Builder
	b.WriteString(lineStyle.Sprintf("%s|\n", v.Padding))
	for n := v.Start.Line; n <= v.End.Line; n++ {
		if n < 1 || n > len(v.Lines) {
			continue
		}
		line := strings.TrimPrefix(v.Lines[n-1], v.Indent)
		b.WriteString(lineStyle.Sprintf("%*d | %s\n", v.Width, n, line))
	}
	return b.String()
}

// underline marks the issue's columns [Start, End) with tildes below the snippet and
// prints the message. Without a usable line range only the message is
// printed.
func underline(v *issueView) string {
	var b strings.Builder
	b.WriteString(lineStyle.Sprintf("%s| ", v.Padding))

	if !isValidLineRange(v.Start.Line, v.End.Line, v.Lines) {
		b.WriteString(messageStyle.Sprintf("%s\n", v.Message))
		return b.String()
	}

	shift := visualWidth(v.Indent)
	from := max(calculateVisualColumn(v.Lines[v.Start.Line-1], v.Start.Column)-shift, 0)
	to := calculateVisualColumn(v.Lines[v.End.Line-1], v.End.Column) - shift

	b.WriteString(strings.Repeat(" ", from))
	b.WriteString(messageStyle.Sprintf("%s\n", strings.Repeat("~", max(to-from, 1))))
	b.WriteString(lineStyle.Sprintf("%s= ", v.Padding))
	b.WriteString(messageStyle.Sprintf("%s\n", v.Message))
	return b.String()
}

func suggestion(v *issueView) string {
	var b strings.Builder
	b.WriteString(suggestionStyle.Sprint("Suggestion:\n"))
	b.WriteString(lineStyle.Sprintf("%s|\n", v.Padding))
	for i, line := range strings.Split(v.Suggestion, "\n") {
		b.WriteString(lineStyle.Sprintf("%*d | %s\n", v.Width, v.Start.Line+i, line))
	}
	b.WriteString(lineStyle.Sprintf("%s|\n", v.Padding))
	return b.String()
}

func help(text string) string {
	return suggestionStyle.Sprint("help: ") + noStyle.Sprintf("%s\n", text)
}

func note(text string) string {
	return suggestionStyle.Sprint("Note: ") + lineStyle.Sprintf("%s\n", text)
}

func isValidLineRange(start, end int, lines []string) bool {
	return start > 0 && start <= end && end <= len(lines)
}

// calculateVisualColumn returns the display width of line up to the
// 1-based byte column, expanding tabs.
func calculateVisualColumn(line string, column int) int {
	if column < 1 {
		return 0
	}
	if column-1 < len(line) {
		line = line[:column-1]
	}
	return visualWidth(line)
}

func visualWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += tabWidth - w%tabWidth
			continue
		}
		w++
	}
	return w
}

// findCommonIndent returns the leading whitespace shared by every
// non-blank line.
func findCommonIndent(lines []string) string {
	var indent string
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		lead := line[:len(line)-len(trimmed)]
		if !found {
			indent, found = lead, true
			continue
		}
		if indent = commonPrefix(indent, lead); indent == "" {
			break
		}
	}
	return indent
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
