package mjcf

import (
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/scene"
)

// Generate imports every removed mesh through the host and exports each
// resulting object to its own STL file next to the source. Replacement names
// are the removed name followed by the object's ordinal. The scene is reset
// after each source mesh.
//
// Generated names and output paths are not made unique: "a10" and the first
// object of "a1" share a name, and equally named objects of two meshes in one
// directory write the same file. Repeats are logged as warnings.
func Generate(sc *scene.Context, plan *Plan, opts Options) error {
	log := sc.Logger()
	names := make(map[string]string) // generated name -> removed mesh
	paths := make(map[string]string) // output path -> removed mesh
	for _, m := range plan.Removed {
		reps, outs, err := generateOne(sc, plan, m, opts)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		plan.Replace(m.Name, reps)

		for i, r := range reps {
			if prev, ok := names[r.Name]; ok {
				log.Warn("duplicate generated mesh name",
					zap.String("name", r.Name),
					zap.String("mesh", m.Name),
					zap.String("previous", prev))
			}
			names[r.Name] = m.Name

			if prev, ok := paths[outs[i]]; ok {
				log.Warn("generated file overwritten",
					zap.String("path", outs[i]),
					zap.String("mesh", m.Name),
					zap.String("previous", prev))
			}
			paths[outs[i]] = m.Name
		}
		log.Info("split mesh",
			zap.String("mesh", m.Name),
			zap.String("file", m.File),
			zap.Int("objects", len(reps)))

		if err := sc.Reset(); err != nil {
			return err
		}
	}
	return nil
}

// generateOne returns the replacements of one mesh and the paths written.
func generateOne(sc *scene.Context, plan *Plan, m MeshAsset, opts Options) ([]MeshAsset, []string, error) {
	host := sc.Host()
	src := plan.SourcePath(m.File)
	if err := host.ImportOBJ(src); err != nil {
		return nil, nil, fmt.Errorf("importing %s: %w", src, err)
	}
	if err := host.DeselectAll(); err != nil {
		return nil, nil, err
	}

	objects, err := host.Objects()
	if err != nil {
		return nil, nil, fmt.Errorf("listing objects: %w", err)
	}

	reps := make([]MeshAsset, 0, len(objects))
	outs := make([]string, 0, len(objects))
	for i, obj := range objects {
		if err := host.Select(obj, true); err != nil {
			return nil, nil, err
		}
		if err := sc.ZeroRotation(obj); err != nil {
			return nil, nil, err
		}
		out := filepath.Join(filepath.Dir(src), obj+".stl")
		if err := host.ExportSTL(out, true); err != nil {
			return nil, nil, fmt.Errorf("exporting %s: %w", out, err)
		}
		if err := host.Select(obj, false); err != nil {
			return nil, nil, err
		}

		file := out
		if opts.RelativeFiles {
			if rel, err := filepath.Rel(plan.MeshDir, out); err == nil {
				file = filepath.ToSlash(rel)
			}
		}
		reps = append(reps, MeshAsset{Name: m.Name + strconv.Itoa(i), File: file})
		outs = append(outs, out)
		sc.Logger().Debug("exported object", zap.String("object", obj), zap.String("path", out))
	}
	return reps, outs, nil
}
