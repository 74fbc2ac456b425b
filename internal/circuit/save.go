package circuit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/spf13/afero"
)

// Declaration is the XML declaration written at the top of every saved
// document.
const Declaration = `version="1.0" encoding="UTF-8"`

// Encode serializes the document with a standard declaration, replacing any
// declaration read from the input. Tabs and line breaks inside attribute
// values are written as character references so they survive a reload.
func (d *Document) Encode() ([]byte, error) {
	d.normalizeDeclaration()
	d.doc.WriteSettings.CanonicalAttrVal = true

	var buf bytes.Buffer
	if _, err := d.doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Rev encodes the document and returns its revision string.
func (d *Document) Rev() (string, error) {
	data, err := d.Encode()
	if err != nil {
		return "", err
	}
	return Rev(data), nil
}

// Rev computes the sha256 hash of encoded document bytes.
// Returns "sha256:<hex>" format.
func Rev(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

func (d *Document) normalizeDeclaration() {
	for i := 0; i < len(d.doc.Child); {
		p, ok := d.doc.Child[i].(*etree.ProcInst)
		if !ok || p.Target != "xml" {
			i++
			continue
		}
		d.doc.RemoveChildAt(i)
		if i < len(d.doc.Child) && isWhitespace(d.doc.Child[i]) {
			d.doc.RemoveChildAt(i)
		}
	}

	d.doc.InsertChildAt(0, etree.NewProcInst("xml", Declaration))
	d.doc.InsertChildAt(1, etree.NewText("\n"))
}

// Save writes doc to path, replacing the whole file. The bytes go to a
// temporary file next to path first and are renamed into place.
func Save(fs afero.Fs, doc *Document, path string) error {
	data, err := doc.Encode()
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	return writeFile(fs, path, data)
}

func writeFile(fs afero.Fs, path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create temp file for", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := fs.Chmod(tmpName, mode); err != nil {
		fs.Remove(tmpName)
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return &IOError{Op: "replace", Path: path, Err: err}
	}
	return nil
}
