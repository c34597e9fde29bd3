package viewer

import (
	"errors"
	"image"
	"image/color"

	"github.com/Faultbox/flipbook/internal/book"
	"github.com/Faultbox/flipbook/internal/engine/graph"
	"github.com/Faultbox/flipbook/internal/engine/model"
	"github.com/Faultbox/flipbook/internal/engine/texture"
)

// PartKind groups parts by what they represent.
type PartKind int

const (
	PartLeaf PartKind = iota
	PartBoard
	PartSpine
	PartGuard
	PartPlate
)

type sourceKind int

const (
	sourceColor sourceKind = iota
	sourcePage
	sourceSlice
)

// faceSource says where the texture of one box face comes from.
type faceSource struct {
	kind  sourceKind
	leaf  int
	side  book.Side
	slice texture.SliceName
	color color.NRGBA
}

// Part is one drawable piece of the book: a mesh hanging from a graph
// node and the texture source of each of its faces.
type Part struct {
	Name    string
	Kind    PartKind
	Node    graph.NodeID
	Mesh    *model.Mesh
	Skinned bool

	faces [6]faceSource
}

func flat(c color.NRGBA) [6]faceSource {
	var f [6]faceSource
	for i := range f {
		f[i] = faceSource{kind: sourceColor, color: c}
	}
	return f
}

// Parts lists every drawable of b. Cover pieces face outward on +Z with
// the inside color on -Z; leaves show their front on -X and back on +X.
func Parts(b *book.Book) []Part {
	opts := b.Options()
	dims := b.Dimensions()
	rig := b.Rig()
	var parts []Part

	for i, leaf := range b.Leaves() {
		mesh := model.Box(leaf.Thickness, dims.PageHeight, dims.PageWidth, model.BoxSegments{})
		mesh.Translate(0, 0, dims.PageWidth/2)
		faces := flat(leaf.Color)
		faces[model.FaceLeft] = faceSource{kind: sourcePage, leaf: i, side: book.Front, color: leaf.Color}
		faces[model.FaceRight] = faceSource{kind: sourcePage, leaf: i, side: book.Back, color: leaf.Color}
		parts = append(parts, Part{Name: b.Graph().Node(b.LeafNode(i)).Name, Kind: PartLeaf, Node: b.LeafNode(i), Mesh: mesh, faces: faces})
	}

	rd := rig.Dims
	cover := func(name string, kind PartKind, node graph.NodeID, mesh *model.Mesh, slice texture.SliceName) Part {
		faces := flat(opts.OutsideColor)
		faces[model.FaceFront] = faceSource{kind: sourceSlice, slice: slice, color: opts.OutsideColor}
		faces[model.FaceBack] = faceSource{kind: sourceColor, color: opts.InsideColor}
		return Part{Name: name, Kind: kind, Node: node, Mesh: mesh, faces: faces}
	}

	parts = append(parts,
		cover("cover.front", PartBoard, rig.Front,
			model.Box(rd.BoardWidth, rd.Height, rd.BoardThickness, model.BoxSegments{}), texture.SliceFront),
		cover("cover.back", PartBoard, rig.Back,
			model.Box(rd.BoardWidth, rd.Height, rd.BoardThickness, model.BoxSegments{}), texture.SliceBack),
		cover("cover.spine", PartSpine, rig.Spine,
			model.Box(rd.SpineWidth, rd.Height, rd.BoardThickness, model.BoxSegments{}), texture.SliceSpine),
	)

	// Straps grow from their hinge towards the board on the front and
	// towards the spine on the back.
	front := model.Box(rd.GuardWidth, rd.Height, rd.BoardThickness, model.BoxSegments{})
	front.Translate(rd.GuardWidth/2, 0, 0)
	back := model.Box(rd.GuardWidth, rd.Height, rd.BoardThickness, model.BoxSegments{})
	back.Translate(-rd.GuardWidth/2, 0, 0)
	parts = append(parts,
		cover("cover.frontGuard", PartGuard, rig.FrontGuard, front, texture.SliceFrontGuard),
		cover("cover.backGuard", PartGuard, rig.BackGuard, back, texture.SliceBackGuard),
	)

	parts = append(parts, Part{
		Name:    "cover.plate",
		Kind:    PartPlate,
		Node:    rig.Plate.Node,
		Mesh:    rig.Plate.Mesh,
		Skinned: true,
		faces:   flat(opts.OutsideColor),
	})
	return parts
}

// Resolver turns face sources into images, sharing one image per flat
// color.
type Resolver struct {
	solid map[color.NRGBA]*image.NRGBA
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{solid: make(map[color.NRGBA]*image.NRGBA)}
}

// Textures returns one image per face of p. Before the book has loaded
// its textures every face falls back to its flat color and the returned
// error is book.ErrNotReady.
func (r *Resolver) Textures(b *book.Book, p Part) ([6]*image.NRGBA, error) {
	var out [6]*image.NRGBA
	cov, err := b.Cover()
	notReady := errors.Is(err, book.ErrNotReady)

	for i, f := range p.faces {
		switch {
		case notReady || f.kind == sourceColor:
			out[i] = r.Solid(f.color)
		case f.kind == sourcePage:
			img, err := b.PageTexture(f.leaf, f.side)
			if err != nil {
				return out, err
			}
			out[i] = img
		case f.kind == sourceSlice:
			if s := cov.Slice(f.slice); s != nil && s.Image != nil {
				out[i] = s.Image
			} else {
				out[i] = r.Solid(f.color)
			}
		}
	}
	if notReady {
		return out, book.ErrNotReady
	}
	return out, nil
}

// Solid returns the shared 2x2 image of c.
func (r *Resolver) Solid(c color.NRGBA) *image.NRGBA {
	if img, ok := r.solid[c]; ok {
		return img
	}
	img := texture.Solid(c, 2)
	r.solid[c] = img
	return img
}

// Visible reports whether every node from id up to the root is
// visible.
func Visible(g *graph.Graph, id graph.NodeID) bool {
	for ; id != graph.None; id = g.Node(id).Parent {
		if !g.Node(id).Visible {
			return false
		}
	}
	return true
}
