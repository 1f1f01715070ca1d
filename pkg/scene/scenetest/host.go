// Package scenetest provides an in-memory scene.Host for tests.
package scenetest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshforge/pkg/scene"
)

// ErrUnknownSource is returned when an import path has no entry in Sources.
var ErrUnknownSource = errors.New("unknown import source")

// Export records one ExportSTL call.
type Export struct {
	Path          string
	SelectionOnly bool
	Objects       []string
	// Rotated lists exported objects whose rotation was not the identity.
	Rotated []string
}

type object struct {
	name     string
	selected bool
	mode     scene.RotationMode
	rot      scene.Euler
}

// Host mimics a host document.
//
// Importing a path adds the objects listed for it in Sources (looked up by
// full path, then by base name). Imported objects start with a non-zero
// rotation. Name clashes get ".001" style suffixes like the real host.
// ExportSTL writes a small ASCII STL stub to the target path.
type Host struct {
	Sources map[string][]string

	// FailImport makes any import of a path with this base name fail.
	FailImport string
	// Sticky keeps entities of this category from being removed.
	Sticky scene.Category

	Imports []string
	Exports []Export

	objects []*object
	data    map[scene.Category][]string
}

// New returns a host that knows the given import sources.
func New(sources map[string][]string) *Host {
	return &Host{
		Sources: sources,
		data:    make(map[scene.Category][]string),
	}
}

// Seed adds entities to a category without importing anything.
func (h *Host) Seed(c scene.Category, names ...string) {
	if h.data == nil {
		h.data = make(map[scene.Category][]string)
	}
	for _, n := range names {
		if c == scene.Objects {
			h.addObject(n)
			continue
		}
		h.data[c] = append(h.data[c], n)
	}
}

// Count returns how many entities a category holds.
func (h *Host) Count(c scene.Category) int {
	if c == scene.Objects {
		return len(h.objects)
	}
	return len(h.data[c])
}

// ImportCollada implements scene.Host.
func (h *Host) ImportCollada(path string) error {
	return h.importFile(path)
}

// ImportOBJ implements scene.Host.
func (h *Host) ImportOBJ(path string) error {
	return h.importFile(path)
}

func (h *Host) importFile(path string) error {
	if h.FailImport != "" && filepath.Base(path) == h.FailImport {
		return fmt.Errorf("import %s: malformed file", path)
	}
	names, ok := h.Sources[path]
	if !ok {
		names, ok = h.Sources[filepath.Base(path)]
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, path)
	}
	h.Imports = append(h.Imports, path)
	for _, n := range names {
		name := h.addObject(n)
		h.data[scene.Meshes] = append(h.data[scene.Meshes], name)
	}
	h.data[scene.Materials] = append(h.data[scene.Materials], "Material")
	return nil
}

func (h *Host) addObject(base string) string {
	name := base
	for i := 1; h.find(name) != nil; i++ {
		name = fmt.Sprintf("%s.%03d", base, i)
	}
	h.objects = append(h.objects, &object{
		name: name,
		mode: "QUATERNION",
		rot:  scene.Euler{1.5707963, 0, 0},
	})
	return name
}

func (h *Host) find(name string) *object {
	for _, o := range h.objects {
		if o.name == name {
			return o
		}
	}
	return nil
}

// ExportSTL implements scene.Host.
func (h *Host) ExportSTL(path string, selectionOnly bool) error {
	exp := Export{Path: path, SelectionOnly: selectionOnly}
	for _, o := range h.objects {
		if selectionOnly && !o.selected {
			continue
		}
		exp.Objects = append(exp.Objects, o.name)
		if o.rot != scene.Identity {
			exp.Rotated = append(exp.Rotated, o.name)
		}
	}

	var b strings.Builder
	for _, n := range exp.Objects {
		fmt.Fprintf(&b, "solid %s\nendsolid %s\n", n, n)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return err
	}
	h.Exports = append(h.Exports, exp)
	return nil
}

// Objects implements scene.Host.
func (h *Host) Objects() ([]string, error) {
	names := make([]string, 0, len(h.objects))
	for _, o := range h.objects {
		names = append(names, o.name)
	}
	return names, nil
}

// Select implements scene.Host.
func (h *Host) Select(name string, selected bool) error {
	o := h.find(name)
	if o == nil {
		return fmt.Errorf("no object %q", name)
	}
	o.selected = selected
	return nil
}

// DeselectAll implements scene.Host.
func (h *Host) DeselectAll() error {
	for _, o := range h.objects {
		o.selected = false
	}
	return nil
}

// SetRotation implements scene.Host.
func (h *Host) SetRotation(name string, mode scene.RotationMode, rot scene.Euler) error {
	o := h.find(name)
	if o == nil {
		return fmt.Errorf("no object %q", name)
	}
	o.mode = mode
	o.rot = rot
	return nil
}

// List implements scene.Host.
func (h *Host) List(c scene.Category) ([]string, error) {
	if c == scene.Objects {
		return h.Objects()
	}
	return append([]string(nil), h.data[c]...), nil
}

// Remove implements scene.Host.
func (h *Host) Remove(c scene.Category, name string) error {
	if c == h.Sticky {
		return nil
	}
	if c == scene.Objects {
		for i, o := range h.objects {
			if o.name == name {
				h.objects = append(h.objects[:i], h.objects[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("no object %q", name)
	}
	list := h.data[c]
	for i, n := range list {
		if n == name {
			h.data[c] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no %s %q", c, name)
}
