// Package scene defines the contract of the host 3D application that performs
// mesh import and export, and the scene context that owns its document.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Scene errors.
var (
	ErrResetIncomplete = errors.New("scene reset did not empty the document")
)

// Category is a kind of entity held by the host document.
// Values match the host's data collection names.
type Category string

const (
	Armatures Category = "armatures"
	Meshes    Category = "meshes"
	Objects   Category = "objects"
	Materials Category = "materials"
	Cameras   Category = "cameras"
	Lights    Category = "lights"
	Images    Category = "images"
)

// Categories lists every category cleared by Reset, in removal order.
var Categories = []Category{Armatures, Meshes, Objects, Materials, Cameras, Lights, Images}

// RotationMode is an Euler axis order understood by the host.
type RotationMode string

// RotationXYZ is the axis order used when normalizing imported objects.
const RotationXYZ RotationMode = "XYZ"

// Euler is a rotation in radians around X, Y and Z.
type Euler [3]float64

// Identity is the zero rotation.
var Identity = Euler{0, 0, 0}

// Host is the scripting surface of the 3D application.
//
// The host owns a single mutable document. Implementations are not safe for
// concurrent use.
type Host interface {
	// ImportCollada imports a COLLADA file into the document.
	ImportCollada(path string) error
	// ImportOBJ imports a Wavefront OBJ file into the document.
	ImportOBJ(path string) error
	// ExportSTL writes the document, or only the selected objects, as STL.
	ExportSTL(path string, selectionOnly bool) error

	// Objects returns the names of all objects in host iteration order.
	Objects() ([]string, error)
	// Select changes the selection state of one object.
	Select(name string, selected bool) error
	// DeselectAll clears the selection.
	DeselectAll() error
	// SetRotation sets an object's rotation mode and Euler rotation.
	SetRotation(name string, mode RotationMode, rot Euler) error

	// List returns the names of all entities in a category.
	List(c Category) ([]string, error)
	// Remove deletes one entity from a category.
	Remove(c Category, name string) error
}

// maxResetPasses bounds how often Reset re-lists a category that keeps
// reporting entities after removal.
const maxResetPasses = 8

// Context is the exclusively owned handle to a host document.
// Every conversion unit runs between two calls to Reset.
type Context struct {
	host Host
	log  *zap.Logger
}

// NewContext wraps a host. A nil logger disables logging.
func NewContext(host Host, log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{host: host, log: log}
}

// Host returns the underlying host.
func (c *Context) Host() Host {
	return c.host
}

// Logger returns the context logger.
func (c *Context) Logger() *zap.Logger {
	return c.log
}

// Reset removes every armature, mesh, object, material, camera, light and
// image from the document.
func (c *Context) Reset() error {
	removed := 0
	for _, cat := range Categories {
		n, err := c.clear(cat)
		if err != nil {
			return err
		}
		removed += n
	}
	c.log.Debug("scene reset", zap.Int("removed", removed))
	return nil
}

func (c *Context) clear(cat Category) (int, error) {
	removed := 0
	for pass := 0; pass < maxResetPasses; pass++ {
		names, err := c.host.List(cat)
		if err != nil {
			return removed, fmt.Errorf("listing %s: %w", cat, err)
		}
		if len(names) == 0 {
			return removed, nil
		}
		for _, name := range names {
			if err := c.host.Remove(cat, name); err != nil {
				return removed, fmt.Errorf("removing %s %q: %w", cat, name, err)
			}
			removed++
		}
	}
	return removed, fmt.Errorf("%w: %s", ErrResetIncomplete, cat)
}

// ZeroRotation sets the rotation of the named object to the identity in XYZ
// order.
func (c *Context) ZeroRotation(name string) error {
	if err := c.host.SetRotation(name, RotationXYZ, Identity); err != nil {
		return fmt.Errorf("resetting rotation of %q: %w", name, err)
	}
	return nil
}
