// Package internal provides the linting engine for TypeScript type declarations.
//
// Key components:
//
// Engine: parses each file once and hands the parsed source to every
// registered rule. Issues silenced by nolint comments are dropped and the
// rest are sorted by position.
//
// LintRule: the interface every rule implements. Rules that accept options
// from the configuration file also implement ConfigurableRule.
//
// Cache: remembers the issues of unchanged files between runs.
//
// SourceCode: the lines of a source file, used to render code snippets.
//
// Usage:
//
//	engine, err := internal.NewEngine("path/to/root", rules, logger)
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/types.ts")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("%s: %s\n", issue.Start, issue.Message)
//	}
package internal
