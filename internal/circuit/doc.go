// Package circuit loads, edits and saves hierarchical circuit documents.
//
// A document is an XML tree whose root is a project container. Direct
// children of the root that carry the unit tag ("circuit" by default) and a
// name attribute are units: opaque sub-trees identified only by their name.
// Everything else under the root is kept as-is and written back on save.
//
// Units move between documents with Transfer (one unit) or Batch (an ordered
// list of units, stopping at the first failure). A transfer deep-copies the
// source unit, optionally renames it, drops any destination unit with the
// same final name and appends the copy as the last child of the destination
// root.
package circuit

import (
	"github.com/beevik/etree"
)

const (
	// DefaultUnitTag is the element name of units in a project document.
	DefaultUnitTag = "circuit"

	// NameAttr is the attribute that identifies a unit.
	NameAttr = "name"
)

// Document is a parsed project document.
type Document struct {
	doc     *etree.Document
	unitTag string
}

// Option configures how a document is interpreted.
type Option func(*Document)

// WithUnitTag selects the element name treated as a unit. An empty tag keeps
// the default.
func WithUnitTag(tag string) Option {
	return func(d *Document) {
		if tag != "" {
			d.unitTag = tag
		}
	}
}

// Root returns the project element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// UnitTag returns the element name treated as a unit.
func (d *Document) UnitTag() string {
	return d.unitTag
}

// Unit is a named top-level sub-tree of a document.
type Unit struct {
	el *etree.Element
}

// Name returns the unit's name attribute.
func (u *Unit) Name() string {
	return u.el.SelectAttrValue(NameAttr, "")
}

// Element returns the underlying element. Changes to it are changes to the
// owning document.
func (u *Unit) Element() *etree.Element {
	return u.el
}

// Len returns the number of direct child elements in the unit's payload.
func (u *Unit) Len() int {
	return len(u.el.ChildElements())
}

// XML renders the unit on its own, indented by two spaces.
func (u *Unit) XML() (string, error) {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalAttrVal = true
	doc.SetRoot(u.el.Copy())
	doc.Indent(2)
	return doc.WriteToString()
}

func isWhitespace(t etree.Token) bool {
	c, ok := t.(*etree.CharData)
	return ok && c.IsWhitespace()
}
