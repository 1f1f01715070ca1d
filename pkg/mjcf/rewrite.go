package mjcf

import (
	"github.com/beevik/etree"
)

// Rewrite applies plan to doc: removed mesh declarations are dropped, every
// worldbody geom that references a removed mesh with replacements is swapped
// for one geom per replacement, and a new asset block declaring all
// replacements becomes the root's first child.
func Rewrite(doc *Document, plan *Plan) {
	for _, asset := range doc.topLevel(tagAsset) {
		var stale []*etree.Element
		for _, el := range asset.ChildElements() {
			if el.Tag != tagMesh {
				continue
			}
			name, _, ok := meshEntry(el)
			if !ok {
				continue
			}
			if _, removed := plan.Lookup(name); removed {
				stale = append(stale, el)
			}
		}
		for _, el := range stale {
			asset.RemoveChild(el)
		}
	}

	for _, wb := range doc.topLevel(tagWorldbody) {
		replaceGeoms(wb, plan)
	}

	asset := etree.NewElement(tagAsset)
	for _, m := range plan.Generated() {
		mesh := asset.CreateElement(tagMesh)
		mesh.CreateAttr(attrName, m.Name)
		mesh.CreateAttr(attrFile, m.File)
	}
	doc.Root().InsertChildAt(0, asset)
}

// replaceGeoms walks el depth-first. Replaced geoms are collected while
// iterating and removed once the walk of el's children is done.
func replaceGeoms(el *etree.Element, plan *Plan) {
	var stale []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == tagGeom {
			if reps := geomReplacements(child, plan); len(reps) > 0 {
				for _, r := range reps {
					g := el.CreateElement(tagGeom)
					copyAttr(g, child, attrPos)
					copyAttr(g, child, attrQuat)
					g.CreateAttr(attrType, "mesh")
					g.CreateAttr(attrMesh, r.Name)
				}
				stale = append(stale, child)
			}
		}
		replaceGeoms(child, plan)
	}
	for _, c := range stale {
		el.RemoveChild(c)
	}
}

// geomReplacements returns the replacements for a geom's mesh, or nil when
// the mesh is unknown or produced no objects.
func geomReplacements(geom *etree.Element, plan *Plan) []MeshAsset {
	attr := geom.SelectAttr(attrMesh)
	if attr == nil {
		return nil
	}
	if _, removed := plan.Lookup(attr.Value); !removed {
		return nil
	}
	return plan.Replacements(attr.Value)
}

func copyAttr(dst, src *etree.Element, key string) {
	if a := src.SelectAttr(key); a != nil {
		dst.CreateAttr(key, a.Value)
	}
}
