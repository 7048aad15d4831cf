package nolint

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/typelint/internal/syntax"
)

const nolintPrefix = "nolint"

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	// scopes maps filename to a slice of nolint scopes.
	scopes map[string][]nolintScope
}

// nolintScope represents a range in the code where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start token.Position
	end   token.Position
}

// ParseComments parses nolint comments in the given file and returns a Manager.
func ParseComments(f *syntax.File, toks *syntax.TokenFile) *Manager {
	manager := Manager{
		scopes: make(map[string][]nolintScope, len(f.Comments)),
	}
	declMap := indexDeclsByLine(f, toks)
	firstDeclLine := 0
	if len(f.Decls) > 0 {
		firstDeclLine = toks.Position(f.Decls[0].Pos()).Line
	}

	for _, comment := range f.Comments {
		ns, err := parseComment(comment, f, toks, declMap, firstDeclLine)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		filename := ns.start.Filename
		manager.scopes[filename] = append(manager.scopes[filename], ns)
	}
	return &manager
}

// parseComment parses a single nolint comment and determines its scope.
func parseComment(
	comment *syntax.Comment,
	f *syntax.File,
	toks *syntax.TokenFile,
	declMap map[int]syntax.Decl,
	firstDeclLine int,
) (nolintScope, error) {
	var ns nolintScope
	if !strings.HasPrefix(comment.Text, "//") {
		return ns, fmt.Errorf("invalid nolint comment")
	}
	text := strings.TrimSpace(comment.Text[2:])

	if !strings.HasPrefix(text, nolintPrefix) {
		return ns, fmt.Errorf("invalid nolint comment")
	}

	rest := text[len(nolintPrefix):]

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}

	if len(rest) > 0 && rest[0] == ':' {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)
	pos := toks.Position(comment.Slash)

	// A comment above the first declaration, separated from it by a
	// blank line, applies to the entire file
	if firstDeclLine > 0 && pos.Line < firstDeclLine-1 {
		ns.start = toks.Position(f.Pos())
		ns.end = toks.Position(f.End())
		return ns, nil
	}

	// inline: applies to the declaration the comment trails
	if decl, ok := declMap[pos.Line]; ok && toks.Offset(decl.Pos()) < pos.Offset {
		ns.start = toks.Position(decl.Pos())
		ns.end = toks.Position(decl.End())
		return ns, nil
	}

	// standalone: applies to the declaration on the next line
	if decl, ok := declMap[pos.Line+1]; ok {
		ns.start = pos
		ns.end = toks.Position(decl.End())
		return ns, nil
	}

	// default behavior:
	// apply only to the comment line
	ns.start = pos
	ns.end = pos
	return ns, nil
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	rules := strings.Split(text, ",")
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// indexDeclsByLine maps each line to the declaration starting on it.
func indexDeclsByLine(f *syntax.File, toks *syntax.TokenFile) map[int]syntax.Decl {
	declMap := make(map[int]syntax.Decl, len(f.Decls))
	for _, d := range f.Decls {
		line := toks.Position(d.Pos()).Line
		if _, exists := declMap[line]; !exists {
			declMap[line] = d
		}
	}
	return declMap
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	scopes, exists := m.scopes[pos.Filename]
	if !exists {
		return false
	}
	for _, ns := range scopes {
		if pos.Line < ns.start.Line || pos.Line > ns.end.Line {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
