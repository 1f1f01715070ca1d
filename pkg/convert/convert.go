// Package convert batch-converts mesh files in a directory through the host.
package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/scene"
)

// ErrNotDirectory is returned when the input path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Converter imports every source file of a directory and exports it in the
// target format next to the source.
type Converter struct {
	Scene     *scene.Context
	SourceExt string // e.g. ".dae"
	TargetExt string // e.g. ".stl"
}

// New returns a COLLADA to STL converter.
func New(sc *scene.Context) *Converter {
	return &Converter{Scene: sc, SourceExt: ".dae", TargetExt: ".stl"}
}

// Destination returns the output path for a source path.
func (c *Converter) Destination(src string) string {
	return strings.TrimSuffix(src, c.SourceExt) + c.TargetExt
}

// ConvertDir converts all matching files in dir in directory order and
// returns the written paths. The first failure aborts the run.
func (c *Converter) ConvertDir(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	log := c.Scene.Logger()
	if err := c.Scene.Reset(); err != nil {
		return nil, err
	}

	var written []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), c.SourceExt) {
			continue
		}
		src := filepath.Join(dir, e.Name())
		dst := c.Destination(src)
		if err := c.ConvertFile(src, dst); err != nil {
			return written, err
		}
		log.Info("converted", zap.String("src", src), zap.String("dst", dst))
		written = append(written, dst)
	}
	return written, nil
}

// ConvertFile converts one file and resets the scene afterwards.
func (c *Converter) ConvertFile(src, dst string) error {
	host := c.Scene.Host()
	if err := c.importFile(src); err != nil {
		return fmt.Errorf("importing %s: %w", src, err)
	}

	objects, err := host.Objects()
	if err != nil {
		return fmt.Errorf("listing objects: %w", err)
	}
	for _, name := range objects {
		if err := c.Scene.ZeroRotation(name); err != nil {
			return err
		}
	}

	if err := host.ExportSTL(dst, false); err != nil {
		return fmt.Errorf("exporting %s: %w", dst, err)
	}
	return c.Scene.Reset()
}

func (c *Converter) importFile(src string) error {
	host := c.Scene.Host()
	switch strings.ToLower(c.SourceExt) {
	case ".obj":
		return host.ImportOBJ(src)
	default:
		return host.ImportCollada(src)
	}
}
