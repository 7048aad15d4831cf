package lints

import (
	"fmt"

	"github.com/gnolang/typelint/internal/syntax"
	tt "github.com/gnolang/typelint/internal/types"
)

const UnresolvedReferenceRule = "unresolved-type-reference"

// DetectUnresolvedReferences reports type references to names that are
// neither declared in the file nor built in. Such references resolve to
// the invalid type, which keeps their constituents out of type-based
// duplicate detection.
func DetectUnresolvedReferences(src *Source, severity tt.Severity) ([]tt.Issue, error) {
	var issues []tt.Issue

	syntax.Inspect(src.File, func(n syntax.Node) bool {
		ref, ok := n.(*syntax.TypeRef)
		if !ok || src.Checker.Declared(ref) {
			return n != nil
		}

		issues = append(issues, tt.Issue{
			Rule:       UnresolvedReferenceRule,
			Category:   "resolution",
			Filename:   src.Filename,
			Message:    fmt.Sprintf("cannot find name '%s'", src.Tokens.Text(ref.Name)),
			Note:       "unresolved types are only compared by how they are written",
			Start:      src.Position(ref.Pos()),
			End:        src.Position(ref.End()),
			Confidence: 1.0,
			Severity:   severity,
		})
		return true
	})

	return issues, nil
}
