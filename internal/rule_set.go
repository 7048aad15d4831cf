package internal

import (
	"go.uber.org/zap"

	"github.com/gnolang/typelint/internal/lints"
	tt "github.com/gnolang/typelint/internal/types"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(src *lints.Source) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	// Severity returns the severity of the lint rule.
	Severity() tt.Severity

	// SetSeverity sets the severity of the lint rule.
	SetSeverity(tt.Severity)
}

// ConfigurableRule is a rule that accepts options from the configuration file.
type ConfigurableRule interface {
	LintRule
	Configure(cfg tt.ConfigRule)
}

type DuplicateConstituentsRule struct {
	severity tt.Severity
	options  lints.DuplicateConstituentsOptions
	logger   *zap.Logger
}

func NewDuplicateConstituentsRule(logger *zap.Logger) LintRule {
	return &DuplicateConstituentsRule{
		severity: tt.SeverityError,
		logger:   logger,
	}
}

func (r *DuplicateConstituentsRule) Check(src *lints.Source) ([]tt.Issue, error) {
	return lints.DetectDuplicateConstituents(src, r.options, r.severity, r.logger)
}

func (r *DuplicateConstituentsRule) Name() string {
	return lints.DuplicateConstituentsRule
}

func (r *DuplicateConstituentsRule) Severity() tt.Severity {
	return r.severity
}

func (r *DuplicateConstituentsRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}

func (r *DuplicateConstituentsRule) Configure(cfg tt.ConfigRule) {
	r.options = lints.DuplicateConstituentsOptions{
		IgnoreIntersections: cfg.BoolOption("ignore-intersections"),
		IgnoreUnions:        cfg.BoolOption("ignore-unions"),
	}
}

// -----------------------------------------------------------------------------

type UnresolvedReferenceRule struct {
	severity tt.Severity
}

func NewUnresolvedReferenceRule(*zap.Logger) LintRule {
	return &UnresolvedReferenceRule{severity: tt.SeverityWarning}
}

func (r *UnresolvedReferenceRule) Check(src *lints.Source) ([]tt.Issue, error) {
	return lints.DetectUnresolvedReferences(src, r.severity)
}

func (r *UnresolvedReferenceRule) Name() string {
	return lints.UnresolvedReferenceRule
}

func (r *UnresolvedReferenceRule) Severity() tt.Severity {
	return r.severity
}

func (r *UnresolvedReferenceRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}
