package internal

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/typelint/internal/lints"
	"github.com/gnolang/typelint/internal/nolint"
	tt "github.com/gnolang/typelint/internal/types"
)

// Engine manages the linting process.
type Engine struct {
	logger       *zap.Logger
	ignoredRules map[string]bool
	ignoredPaths []string
	rules        map[string]LintRule
	cache        *Cache

	watcher    *fsnotify.Watcher
	watchDirs  []string
	isWatching bool
	onIssues   func(filename string, issues []tt.Issue)
}

// NewEngine creates a new lint engine.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{logger: logger}
	if rootDir != "" {
		engine.watchDirs = []string{rootDir}
	}
	engine.applyRules(rules)

	return engine, nil
}

// Define the ruleConstructor type
type ruleConstructor func(*zap.Logger) LintRule

// Define the ruleMap type
type ruleMap map[string]ruleConstructor

// Create a map to hold the mappings of rule names to their constructors
var allRuleConstructors = ruleMap{
	lints.DuplicateConstituentsRule: NewDuplicateConstituentsRule,
	lints.UnresolvedReferenceRule:   NewUnresolvedReferenceRule,
}

// RuleNames returns the names of every registered rule, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRule creates the rule registered under name with its default severity.
func NewRule(name string, logger *zap.Logger) (LintRule, bool) {
	cstr, ok := allRuleConstructors[name]
	if !ok {
		return nil, false
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return cstr(logger), true
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) {
	e.rules = make(map[string]LintRule)
	e.registerDefaultRules()

	// Iterate over the rules and apply severity
	for key, rule := range rules {
		r := e.findRule(key)
		if r == nil {
			newRuleCstr := allRuleConstructors[key]
			if newRuleCstr == nil {
				e.logger.Warn("unknown rule in configuration", zap.String("rule", key))
				continue
			}
			r = newRuleCstr(e.logger)
			e.rules[key] = r
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
		if c, ok := r.(ConfigurableRule); ok {
			c.Configure(rule)
		}
	}
}

func (e *Engine) registerDefaultRules() {
	// iterate over allRuleConstructors and add them to the rules map if severity is not off
	for key, newRuleCstr := range allRuleConstructors {
		newRule := newRuleCstr(e.logger)
		if newRule.Severity() != tt.SeverityOff {
			e.rules[key] = newRule
		}
	}
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// Run applies all lint rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}

	var fingerprint string
	if e.cache != nil {
		fingerprint = e.fingerprint()
		if issues, ok := e.cache.Get(filename, fingerprint); ok {
			return issues, nil
		}
	}

	src, err := lints.ParseFile(filename, nil)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}
	issues := e.runSource(src)

	if e.cache != nil {
		if err := e.cache.Set(filename, fingerprint, issues); err != nil {
			e.logger.Warn("failed to cache issues", zap.String("file", filename), zap.Error(err))
		}
	}
	return issues, nil
}

// UseCache makes Run reuse the issues cached for unchanged files.
func (e *Engine) UseCache(c *Cache) {
	e.cache = c
}

// fingerprint identifies the active rules and their severities.
func (e *Engine) fingerprint() string {
	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		if !e.ignoredRules[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s;", name, e.rules[name].Severity())
	}
	return b.String()
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	src, err := lints.ParseFile("", source)
	if err != nil {
		return nil, fmt.Errorf("error parsing content: %w", err)
	}
	return e.runSource(src), nil
}

func (e *Engine) runSource(src *lints.Source) []tt.Issue {
	nolintMgr := nolint.ParseComments(src.File, src.Tokens)

	var wg sync.WaitGroup
	var mu sync.Mutex

	var allIssues []tt.Issue
	for _, rule := range e.rules {
		if e.ignoredRules[rule.Name()] {
			continue
		}
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			issues, err := r.Check(src)
			if err != nil {
				e.logger.Error("rule failed",
					zap.String("rule", r.Name()),
					zap.String("file", src.Filename),
					zap.Error(err))
				return
			}

			nolinted := filterNolintIssues(nolintMgr, issues)

			mu.Lock()
			allIssues = append(allIssues, nolinted...)
			mu.Unlock()
		}(rule)
	}
	wg.Wait()

	sort.SliceStable(allIssues, func(i, j int) bool {
		a, b := allIssues[i], allIssues[j]
		if a.Start.Offset != b.Start.Offset {
			return a.Start.Offset < b.Start.Offset
		}
		return a.Rule < b.Rule
	})
	return allIssues
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath excludes files matching the glob pattern, or lying under
// the directory path, from Run.
func (e *Engine) IgnorePath(path string) {
	e.ignoredPaths = append(e.ignoredPaths, filepath.Clean(path))
}

func (e *Engine) isIgnoredPath(filename string) bool {
	filename = filepath.Clean(filename)
	for _, p := range e.ignoredPaths {
		if ok, _ := filepath.Match(p, filename); ok {
			return true
		}
		if ok, _ := filepath.Match(p, filepath.Base(filename)); ok {
			return true
		}
		if filename == p || strings.HasPrefix(filename, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		pos := token.Position{
			Filename: issue.Filename,
			Line:     issue.Start.Line,
		}
		if !mgr.IsNolint(pos, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
