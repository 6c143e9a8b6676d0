package analyzer

import "regexp"

// languagePatterns holds the compiled pattern table for one language.
// Every pattern captures the interesting identifier in group 1 (or the
// first non-empty group for alternations).
type languagePatterns struct {
	functions    []*regexp.Regexp
	classes      []*regexp.Regexp
	exports      []*regexp.Regexp
	imports      []*regexp.Regexp
	variables    []*regexp.Regexp
	comments     []*regexp.Regexp
	dependencies []*regexp.Regexp
}

func buildLanguageTables() map[string]*languagePatterns {
	goPatterns := &languagePatterns{
		functions: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^func\s+(?:\([^)]+\)\s+)?(\w+)\s*\(`),
		},
		classes: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^type\s+(\w+)\s+(?:struct|interface)\b`),
		},
		exports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^(?:func|type|var|const)\s+(?:\([^)]+\)\s+)?([A-Z]\w*)`),
		},
		imports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:\w+\s+)?"([^"]+)"`),
		},
		variables: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^(?:var|const)\s+(\w+)`),
		},
		comments: []*regexp.Regexp{
			regexp.MustCompile(`(?m)//\s*(.+)$`),
		},
		dependencies: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:\w+\s+)?"([^"]+)"$`),
		},
	}

	jsPatterns := &languagePatterns{
		functions: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\(`),
			regexp.MustCompile(`(?m)^\s*(?:export\s+)?const\s+(\w+)\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`),
		},
		classes: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?class\s+(\w+)`),
		},
		exports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:async\s+)?(?:class|function|const|let|var)\s+(\w+)`),
			regexp.MustCompile(`(?m)^\s*module\.exports\s*(?:\.\s*(\w+))?`),
		},
		imports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*import\s+(?:\{[^}]*\}|\*\s+as\s+\w+|\w+)(?:\s*,\s*(?:\{[^}]*\}|\w+))?\s+from\s+['"]([^'"]+)['"]`),
		},
		variables: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)`),
		},
		comments: []*regexp.Regexp{
			regexp.MustCompile(`(?m)//\s*(.+)$`),
		},
		dependencies: []*regexp.Regexp{
			regexp.MustCompile(`(?m)from\s+['"]([^'"]+)['"]`),
			regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`),
			regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`),
		},
	}

	// TypeScript shares the JavaScript table plus interface/type declarations
	tsPatterns := &languagePatterns{
		functions: jsPatterns.functions,
		classes: append([]*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:export\s+)?interface\s+(\w+)`),
			regexp.MustCompile(`(?m)^\s*(?:export\s+)?type\s+(\w+)\s*=`),
		}, jsPatterns.classes...),
		exports:      jsPatterns.exports,
		imports:      jsPatterns.imports,
		variables:    jsPatterns.variables,
		comments:     jsPatterns.comments,
		dependencies: jsPatterns.dependencies,
	}

	pyPatterns := &languagePatterns{
		functions: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+(\w+)\s*\(`),
		},
		classes: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*class\s+(\w+)\s*[(:]`),
		},
		imports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`),
			regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import`),
		},
		variables: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^(\w+)\s*=\s*`),
		},
		comments: []*regexp.Regexp{
			regexp.MustCompile(`(?m)#\s*(.+)$`),
		},
		dependencies: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`),
			regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import`),
		},
	}

	javaPatterns := &languagePatterns{
		functions: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:public|private|protected)\s+(?:static\s+)?(?:final\s+)?[\w<>\[\]]+\s+(\w+)\s*\(`),
		},
		classes: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:public\s+)?(?:abstract\s+|final\s+)?(?:class|interface|enum|record)\s+(\w+)`),
		},
		exports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*public\s+(?:abstract\s+|final\s+)?(?:class|interface|enum|record)\s+(\w+)`),
		},
		imports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([\w.]+)\s*;`),
		},
		variables: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:public|private|protected)\s+(?:static\s+)?(?:final\s+)?[\w<>\[\]]+\s+(\w+)\s*[=;]`),
		},
		comments: []*regexp.Regexp{
			regexp.MustCompile(`(?m)//\s*(.+)$`),
		},
		dependencies: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([\w.]+)\s*;`),
		},
	}

	rustPatterns := &languagePatterns{
		functions: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`),
		},
		classes: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:pub\s+)?(?:struct|enum|trait)\s+(\w+)`),
		},
		exports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*pub\s+(?:fn|struct|enum|trait|mod|const|static)\s+(\w+)`),
		},
		imports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*use\s+([\w:]+)`),
		},
		variables: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:pub\s+)?(?:const|static)\s+(\w+)`),
		},
		comments: []*regexp.Regexp{
			regexp.MustCompile(`(?m)//\s*(.+)$`),
		},
		dependencies: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:use|extern\s+crate)\s+([\w]+)`),
		},
	}

	rubyPatterns := &languagePatterns{
		functions: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*def\s+(\w+[?!]?)`),
		},
		classes: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*(?:class|module)\s+(\w+)`),
		},
		imports: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`),
		},
		variables: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*([A-Z][A-Z_0-9]*)\s*=`),
		},
		comments: []*regexp.Regexp{
			regexp.MustCompile(`(?m)#\s*(.+)$`),
		},
		dependencies: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`),
		},
	}

	return map[string]*languagePatterns{
		"go":         goPatterns,
		"javascript": jsPatterns,
		"typescript": tsPatterns,
		"python":     pyPatterns,
		"java":       javaPatterns,
		"rust":       rustPatterns,
		"ruby":       rubyPatterns,
	}
}
