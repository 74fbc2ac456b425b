package circuit

import (
	"github.com/beevik/etree"
)

// Request names one unit to transfer and, optionally, the name it takes in
// the destination.
type Request struct {
	Name   string `json:"name" yaml:"name"`
	Rename string `json:"rename,omitempty" yaml:"rename,omitempty"`
}

// FinalName is the unit's name once it lands in the destination.
func (r Request) FinalName() string {
	if r.Rename != "" {
		return r.Rename
	}
	return r.Name
}

func (r Request) String() string {
	if r.Rename != "" && r.Rename != r.Name {
		return r.Name + " -> " + r.Rename
	}
	return r.Name
}

// Requests turns plain names into requests without renames.
func Requests(names ...string) []Request {
	reqs := make([]Request, 0, len(names))
	for _, name := range names {
		reqs = append(reqs, Request{Name: name})
	}
	return reqs
}

// Applied describes a completed transfer.
type Applied struct {
	Request  Request `json:"request" yaml:"request"`
	Replaced int     `json:"replaced" yaml:"replaced"`
}

// Transfer copies the unit req.Name from src into dst. If src has no such
// unit, dst is left untouched and a *UnitNotFoundError is returned.
func Transfer(src, dst *Document, req Request) error {
	_, err := Apply(src, dst, req)
	return err
}

// Apply is Transfer, also reporting how many destination units were replaced.
func Apply(src, dst *Document, req Request) (*Applied, error) {
	unit, ok := src.Find(req.Name)
	if !ok {
		return nil, &UnitNotFoundError{Name: req.Name, Side: SideSource}
	}

	clone := unit.el.Copy()
	final := req.FinalName()
	clone.CreateAttr(NameAttr, final)

	replaced := dst.detach(final)
	dst.appendUnit(clone)

	return &Applied{Request: req, Replaced: replaced}, nil
}

// detach removes every unit named name, along with the indentation text in
// front of it, and returns how many were removed.
func (d *Document) detach(name string) int {
	root := d.doc.Root()
	removed := 0
	for i := 0; i < len(root.Child); {
		el, ok := root.Child[i].(*etree.Element)
		if !ok || !d.isUnit(el) || el.SelectAttrValue(NameAttr, "") != name {
			i++
			continue
		}

		root.RemoveChildAt(i)
		if i > 0 && isWhitespace(root.Child[i-1]) {
			root.RemoveChildAt(i - 1)
			i--
		}
		removed++
	}
	return removed
}

// appendUnit adds el as the last element of the root, indented like the
// root's first child and ahead of the closing tag's indentation.
func (d *Document) appendUnit(el *etree.Element) {
	root := d.doc.Root()
	indent := d.childIndent()

	n := len(root.Child)
	if n > 0 && isWhitespace(root.Child[n-1]) {
		if indent != "" {
			root.InsertChildAt(n-1, etree.NewText(indent))
			n++
		}
		root.InsertChildAt(n-1, el)
		return
	}

	if indent != "" {
		root.AddChild(etree.NewText(indent))
	}
	root.AddChild(el)
}

func (d *Document) childIndent() string {
	root := d.doc.Root()
	for i, t := range root.Child {
		if _, ok := t.(*etree.Element); !ok {
			continue
		}
		if i > 0 && isWhitespace(root.Child[i-1]) {
			return root.Child[i-1].(*etree.CharData).Data
		}
		return ""
	}
	return ""
}
