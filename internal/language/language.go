package language

import (
	"path/filepath"
	"strings"

	"github.com/kobzarvs/qbuffer/internal/config"
)

// Tag identifies a highlighting language.
type Tag string

const (
	Ruby       Tag = "ruby"
	Markdown   Tag = "markdown"
	JavaScript Tag = "javascript"
	JSON       Tag = "json"
	YAML       Tag = "yaml"
	HTML       Tag = "html"
	C          Tag = "c"
	Haskell    Tag = "haskell"
	Gradle     Tag = "gradle"
	CPP        Tag = "cpp"
	CSS        Tag = "css"
	Java       Tag = "java"
	JSP        Tag = "jsp"
	Plist      Tag = "plist"
	Haml       Tag = "haml"
	XML        Tag = "xml"
	INI        Tag = "ini"
	Perl       Tag = "perl"
	Tcl        Tag = "tcl"
	Sass       Tag = "sass"
	SCSS       Tag = "scss"
	SQL        Tag = "sql"
	Shell      Tag = "shell"
	Vue        Tag = "vue"
	PlainText  Tag = "plain_text"
)

var byExtension = map[string]Tag{
	"rb":       Ruby,
	"md":       Markdown,
	"markdown": Markdown,
	"js":       JavaScript,
	"es6":      JavaScript,
	"json":     JSON,
	"yaml":     YAML,
	"html":     HTML,
	"h":        C,
	"c":        C,
	"hs":       Haskell,
	"gradle":   Gradle,
	"cpp":      CPP,
	"css":      CSS,
	"java":     Java,
	"jsp":      JSP,
	"plist":    Plist,
	"haml":     Haml,
	"xml":      XML,
	"ini":      INI,
	"pl":       Perl,
	"tcl":      Tcl,
	"sass":     Sass,
	"scss":     SCSS,
	"sql":      SQL,
	"sh":       Shell,
	"vue":      Vue,
	"txt":      PlainText,
}

var rubyShebangs = []string{"#!/usr/bin/env ruby", "#!/usr/bin/env jruby"}

// Detector maps a buffer's path and content to a language tag.
type Detector struct {
	overrides config.Languages
	scratch   Tag
}

// NewDetector returns a detector that consults overrides before the
// built-in extension table. Scratch buffers get the scratch tag.
func NewDetector(overrides config.Languages, scratch string) *Detector {
	if scratch == "" {
		scratch = string(Ruby)
	}
	return &Detector{overrides: overrides, scratch: Tag(scratch)}
}

// Detect checks, in order: scratch buffers, Ruby build files and shebangs,
// Gemfile.lock, extensionless files under a bin directory, configured
// overrides and the extension table. Anything else is plain text.
func (d *Detector) Detect(path, content string) Tag {
	if path == "" {
		return d.scratch
	}
	base := filepath.Base(path)
	if strings.HasSuffix(path, "Gemfile") || strings.HasSuffix(path, "Rakefile") {
		return Ruby
	}
	for _, shebang := range rubyShebangs {
		if strings.HasPrefix(content, shebang) {
			return Ruby
		}
	}
	if strings.HasSuffix(path, "Gemfile.lock") {
		return YAML
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext == "" && strings.Contains(filepath.ToSlash(path), "/bin/") {
		return Shell
	}
	if lang := d.overrides.Match(path); lang != nil {
		return Tag(lang.Name)
	}
	if tag, ok := byExtension[strings.ToLower(ext)]; ok {
		return tag
	}
	return PlainText
}

// Detect uses a detector without overrides.
func Detect(path, content string) Tag {
	return NewDetector(config.Languages{}, "").Detect(path, content)
}
