package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// Language binds a tree-sitter grammar to the node types it uses for comments.
type Language struct {
	Name         string
	grammar      func() *sitter.Language
	commentTypes map[string]struct{}
}

// IsComment reports whether nodeType is a comment node in this language.
func (l *Language) IsComment(nodeType string) bool {
	_, ok := l.commentTypes[nodeType]
	return ok
}

func newLanguage(name string, grammar func() *sitter.Language, commentTypes ...string) *Language {
	types := make(map[string]struct{}, len(commentTypes))
	for _, t := range commentTypes {
		types[t] = struct{}{}
	}
	return &Language{Name: name, grammar: grammar, commentTypes: types}
}

var (
	Java       = newLanguage("java", java.GetLanguage, "line_comment", "block_comment", "comment")
	Go         = newLanguage("go", golang.GetLanguage, "comment")
	Python     = newLanguage("python", python.GetLanguage, "comment")
	JavaScript = newLanguage("javascript", javascript.GetLanguage, "comment")
	C          = newLanguage("c", c.GetLanguage, "comment")
	CPP        = newLanguage("cpp", cpp.GetLanguage, "comment")
)

var languagesByExtension = map[string]*Language{
	".java": Java,
	".go":   Go,
	".py":   Python,
	".js":   JavaScript,
	".mjs":  JavaScript,
	".c":    C,
	".h":    C,
	".cpp":  CPP,
	".cc":   CPP,
	".cxx":  CPP,
	".hpp":  CPP,
}

// LanguageForPath picks a grammar from the file extension.
func LanguageForPath(path string) (*Language, bool) {
	lang, ok := languagesByExtension[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}
