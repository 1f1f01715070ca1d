package mjcf

import (
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// MeshAsset is a mesh declaration: an asset name and its file.
type MeshAsset struct {
	Name string
	File string
}

// Plan holds the meshes slated for removal and the replacements generated
// for them. Both keep insertion order so output is reproducible.
type Plan struct {
	// MeshDir is the effective mesh directory.
	MeshDir string
	// Removed lists harvested meshes in document order.
	Removed []MeshAsset

	index        map[string]int
	replacements map[string][]MeshAsset
}

func newPlan(meshDir string) *Plan {
	return &Plan{
		MeshDir:      meshDir,
		index:        make(map[string]int),
		replacements: make(map[string][]MeshAsset),
	}
}

// remove records a mesh for removal. A repeated name keeps its first
// position and takes the later file.
func (p *Plan) remove(name, file string) {
	if i, ok := p.index[name]; ok {
		p.Removed[i].File = file
		return
	}
	p.index[name] = len(p.Removed)
	p.Removed = append(p.Removed, MeshAsset{Name: name, File: file})
}

// Lookup returns the source file of a removed mesh.
func (p *Plan) Lookup(name string) (string, bool) {
	i, ok := p.index[name]
	if !ok {
		return "", false
	}
	return p.Removed[i].File, true
}

// Replace sets the replacement set of a removed mesh. Names that were not
// harvested are ignored.
func (p *Plan) Replace(name string, reps []MeshAsset) {
	if _, ok := p.index[name]; !ok {
		return
	}
	p.replacements[name] = reps
}

// Replacements returns the replacement set of a removed mesh.
func (p *Plan) Replacements(name string) []MeshAsset {
	return p.replacements[name]
}

// Generated returns every replacement across all removed meshes, grouped by
// removed mesh in document order.
func (p *Plan) Generated() []MeshAsset {
	var out []MeshAsset
	for _, m := range p.Removed {
		out = append(out, p.replacements[m.Name]...)
	}
	return out
}

// SourcePath resolves a removed mesh file against the mesh directory.
func (p *Plan) SourcePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(p.MeshDir, file)
}

// Options controls harvesting.
type Options struct {
	// Extensions limits harvesting to mesh files with these extensions
	// (".obj"). Empty harvests every mesh with a file.
	Extensions []string
	// RelativeFiles writes generated file attributes relative to MeshDir.
	RelativeFiles bool
}

func (o Options) accepts(file string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(file)
	for _, e := range o.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Collect reads the compiler and asset sections of doc and returns the
// plan with its removal list filled in.
func Collect(doc *Document, opts Options) *Plan {
	meshDir := doc.Dir()
	for _, el := range doc.topLevel(tagCompiler) {
		if attr := el.SelectAttr(attrMeshDir); attr != nil {
			meshDir = attr.Value
			if !filepath.IsAbs(meshDir) {
				meshDir = filepath.Join(doc.Dir(), meshDir)
			}
		}
	}

	plan := newPlan(meshDir)
	for _, asset := range doc.topLevel(tagAsset) {
		for _, el := range asset.ChildElements() {
			if el.Tag != tagMesh {
				continue
			}
			name, file, ok := meshEntry(el)
			if !ok || !opts.accepts(file) {
				continue
			}
			plan.remove(name, file)
		}
	}
	return plan
}

// meshEntry returns the name and file of a mesh declaration. A mesh without
// a file is not file-backed. A mesh without a name is named after its file.
func meshEntry(el *etree.Element) (name, file string, ok bool) {
	fa := el.SelectAttr(attrFile)
	if fa == nil || fa.Value == "" {
		return "", "", false
	}
	file = fa.Value
	if na := el.SelectAttr(attrName); na != nil {
		return na.Value, file, true
	}
	base := filepath.Base(filepath.FromSlash(file))
	return strings.TrimSuffix(base, filepath.Ext(base)), file, true
}
