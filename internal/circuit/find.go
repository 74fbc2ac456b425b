package circuit

import (
	"github.com/beevik/etree"
)

// Units returns the document's units in document order.
func (d *Document) Units() []*Unit {
	var units []*Unit
	for _, el := range d.doc.Root().ChildElements() {
		if d.isUnit(el) {
			units = append(units, &Unit{el: el})
		}
	}
	return units
}

// Names returns unit names in document order.
func (d *Document) Names() []string {
	units := d.Units()
	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name())
	}
	return names
}

// Find returns the unit whose name equals name exactly. When a malformed
// document holds the same name twice, the first one in document order wins.
func (d *Document) Find(name string) (*Unit, bool) {
	for _, el := range d.doc.Root().ChildElements() {
		if d.isUnit(el) && el.SelectAttrValue(NameAttr, "") == name {
			return &Unit{el: el}, true
		}
	}
	return nil, false
}

// Duplicates returns names held by more than one unit, in order of first
// appearance.
func (d *Document) Duplicates() []string {
	seen := make(map[string]int)
	var dups []string
	for _, name := range d.Names() {
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

func (d *Document) isUnit(el *etree.Element) bool {
	return el.Tag == d.unitTag && el.SelectAttr(NameAttr) != nil
}
