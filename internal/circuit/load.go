package circuit

import (
	"errors"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

var (
	errNoRoot    = errors.New("no root element")
	errExtraRoot = errors.New("more than one root element")
	errStrayText = errors.New("text outside the root element")
)

// Load parses a document from r.
func Load(r io.Reader, opts ...Option) (*Document, error) {
	return load("input", r, opts)
}

// LoadString parses a document from in-memory text.
func LoadString(text string, opts ...Option) (*Document, error) {
	return load("string", strings.NewReader(text), opts)
}

// LoadFile parses the document at path. The path is expected to have been
// validated already (see paths.Sanitize).
func LoadFile(fs afero.Fs, path string, opts ...Option) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	return load(path, f, opts)
}

func load(source string, r io.Reader, opts []Option) (*Document, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if doc.Root() == nil {
		return nil, &ParseError{Source: source, Err: errNoRoot}
	}
	if err := checkTopLevel(doc); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	d := &Document{doc: doc, unitTag: DefaultUnitTag}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// checkTopLevel rejects content outside the single root element. Only
// whitespace, comments, processing instructions and directives may surround it.
func checkTopLevel(doc *etree.Document) error {
	roots := 0
	for _, t := range doc.Child {
		switch t := t.(type) {
		case *etree.Element:
			roots++
			if roots > 1 {
				return errExtraRoot
			}
		case *etree.CharData:
			if !t.IsWhitespace() {
				return errStrayText
			}
		}
	}
	return nil
}
