package mjcf

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/scene"
)

// Builder runs the full rewrite of one MJCF file.
type Builder struct {
	Scene   *scene.Context
	Options Options
	// Indent re-indents the output when positive.
	Indent int
}

// NewBuilder returns a builder with default options.
func NewBuilder(sc *scene.Context) *Builder {
	return &Builder{Scene: sc}
}

// Build reads in, generates replacement meshes, rewrites the tree and writes
// the result to out. out may equal in.
func (b *Builder) Build(in, out string) (*Plan, error) {
	log := b.Scene.Logger()
	if err := b.Scene.Reset(); err != nil {
		return nil, err
	}

	doc, err := Load(in)
	if err != nil {
		return nil, err
	}

	plan := Collect(doc, b.Options)
	log.Info("harvested meshes",
		zap.String("document", in),
		zap.String("meshdir", plan.MeshDir),
		zap.Int("meshes", len(plan.Removed)))

	if err := Generate(b.Scene, plan, b.Options); err != nil {
		return nil, err
	}

	Rewrite(doc, plan)
	if err := doc.Save(out, b.Indent); err != nil {
		return nil, err
	}
	log.Info("wrote document",
		zap.String("path", out),
		zap.Int("generated", len(plan.Generated())))
	return plan, nil
}
