package circuit

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Preview returns a unified diff of what Transfer(src, dst, req) would do to
// the destination unit named req.FinalName(). An empty string means the
// transfer would not change it. Neither document is modified.
func Preview(src, dst *Document, req Request) (string, error) {
	unit, ok := src.Find(req.Name)
	if !ok {
		return "", &UnitNotFoundError{Name: req.Name, Side: SideSource}
	}

	final := req.FinalName()
	clone := &Unit{el: unit.el.Copy()}
	clone.el.CreateAttr(NameAttr, final)

	incoming, err := clone.XML()
	if err != nil {
		return "", err
	}

	var current []string
	fromFile := "/dev/null"
	if existing, ok := dst.Find(final); ok {
		text, err := existing.XML()
		if err != nil {
			return "", err
		}
		current = difflib.SplitLines(text)
		fromFile = SideDestination + "/" + final
	}

	diff := difflib.UnifiedDiff{
		A:        current,
		B:        difflib.SplitLines(incoming),
		FromFile: fromFile,
		ToFile:   SideSource + "/" + req.Name,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}
