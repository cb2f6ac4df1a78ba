package parser

import (
	"fmt"
	"os"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
)

// Default parser limits.
const (
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10 MB
	DefaultMaxDepth    = 50
)

// Parser parses GBS spec documents from YAML source.
type Parser struct {
	maxFileSize int64
	maxDepth    int
}

// NewParser creates a parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: DefaultMaxFileSize,
		maxDepth:    DefaultMaxDepth,
	}
}

// WithMaxFileSize sets the maximum accepted file size in bytes.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum value nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse reads and parses a spec document from disk.
func (p *Parser) Parse(path string) (*ast.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &gbserrors.Error{
			Type:     gbserrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Cannot access spec file: %v", err),
			Location: ast.Location{File: path},
		}
	}
	if info.Size() > p.maxFileSize {
		return nil, &gbserrors.Error{
			Type:    gbserrors.ErrorTypeIO,
			Message: fmt.Sprintf("Spec file too large: %d bytes (limit %d)", info.Size(), p.maxFileSize),
			Location: ast.Location{
				File: path,
			},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &gbserrors.Error{
			Type:     gbserrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Cannot read spec file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses spec source text. sourcePath is used for error
// locations only and may name a file that does not exist on disk.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Document, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &gbserrors.Error{
			Type:     gbserrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Spec source too large: %d bytes (limit %d)", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	node, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &gbserrors.Error{
			Type:       gbserrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("Invalid YAML: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1},
			Suggestion: "Check YAML syntax: indentation, quoting, and list markers",
		}
	}

	b := newBuilder(sourcePath, p.maxDepth)
	return b.buildDocument(documentRoot(node))
}

// ParseMulti parses several spec files and layers them into one
// document. Variables from later files override same-named variables
// from earlier files; entries are concatenated in file order. Duplicate
// entry names across files are structural errors.
func (p *Parser) ParseMulti(paths []string) (*ast.Document, error) {
	if len(paths) == 0 {
		return nil, &gbserrors.Error{
			Type:    gbserrors.ErrorTypeIO,
			Message: "No spec files given",
		}
	}

	merged := &ast.Document{SourceFile: paths[0]}
	vars := ast.NewMapping()
	seen := make(map[string]ast.Location)
	errs := gbserrors.NewErrorList()

	for _, path := range paths {
		doc, err := p.Parse(path)
		if err != nil {
			switch e := err.(type) {
			case *gbserrors.ErrorList:
				errs.Merge(e)
			case *gbserrors.Error:
				errs.Add(e)
			default:
				errs.AddError(gbserrors.ErrorTypeIO, err.Error(), ast.Location{File: path})
			}
			continue
		}

		if !merged.Location.IsValid() {
			merged.Location = doc.Location
		}
		for _, name := range doc.Vars.Names() {
			v, _ := doc.Vars.Lookup(name)
			vars.Set(name, v)
		}
		for _, entry := range doc.Entries {
			if prev, dup := seen[entry.Name]; dup {
				errs.AddErrorWithSuggestion(gbserrors.ErrorTypeStructural,
					fmt.Sprintf("Duplicate entry name %q across spec files (first defined at %s)", entry.Name, prev),
					entry.Location,
					"Entry names must be unique across all layered files")
				continue
			}
			seen[entry.Name] = entry.Location
			merged.Entries = append(merged.Entries, entry)
		}
	}

	merged.Vars = ast.NewVarTable(vars)
	if errs.HasErrors() {
		return nil, errs
	}
	return merged, nil
}
