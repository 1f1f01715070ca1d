// Package mjcf rewrites MJCF robot descriptions so that mesh assets are
// replaced by per-object STL files generated through the host.
package mjcf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// MJCF errors.
var (
	ErrNoRoot = errors.New("document has no root element")
)

// Element tags and attributes read or written by the rewriter.
const (
	tagCompiler  = "compiler"
	tagAsset     = "asset"
	tagMesh      = "mesh"
	tagWorldbody = "worldbody"
	tagGeom      = "geom"

	attrMeshDir = "meshdir"
	attrName    = "name"
	attrFile    = "file"
	attrMesh    = "mesh"
	attrPos     = "pos"
	attrQuat    = "quat"
	attrType    = "type"
)

// Document is a parsed MJCF file.
type Document struct {
	// Path is where the document was read from. Relative mesh paths resolve
	// against its directory.
	Path string

	doc *etree.Document
}

// Load reads and parses an MJCF file. The stored path is absolute so mesh
// paths derived from it do not depend on the working directory.
func Load(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRoot)
	}
	return &Document{Path: abs, doc: doc}, nil
}

// Parse parses an MJCF document held in memory. path is only used to resolve
// relative mesh paths.
func Parse(data string, path string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(data); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return &Document{Path: path, doc: doc}, nil
}

// Root returns the document's root element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Dir returns the directory containing the document.
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}

// String serializes the document.
func (d *Document) String() (string, error) {
	return d.doc.WriteToString()
}

// Save writes the document to path. A positive indent re-indents the whole
// tree with that many spaces; otherwise existing whitespace is kept.
func (d *Document) Save(path string, indent int) error {
	if indent > 0 {
		d.doc.Indent(indent)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := d.doc.WriteToFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// topLevel returns the root's direct children with the given tag.
func (d *Document) topLevel(tag string) []*etree.Element {
	var out []*etree.Element
	for _, el := range d.Root().ChildElements() {
		if el.Tag == tag {
			out = append(out, el)
		}
	}
	return out
}
