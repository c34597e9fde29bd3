// Package model provides the book's procedural meshes: boxes for leaves,
// cover boards and the skinned spine plate.
package model

// Vertex is one mesh vertex ready for GPU upload. SkinIndex and
// SkinWeight are only meaningful on skinned meshes.
type Vertex struct {
	Position   [3]float32
	Normal     [3]float32
	TexCoord   [2]float32
	SkinIndex  [4]uint16
	SkinWeight [4]float32
}

// Face identifies one side of a box. The values are also the material
// slot of the side.
type Face int

const (
	FaceRight  Face = iota // +X
	FaceLeft               // -X
	FaceTop                // +Y
	FaceBottom             // -Y
	FaceFront              // +Z
	FaceBack               // -Z
)

// Group is a contiguous index range drawn with one material.
type Group struct {
	Material   Face
	StartIndex int32
	IndexCount int32
}

// Mesh holds the complete mesh data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Groups   []Group
	Bounds   Bounds
	Skinned  bool
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Size returns the box extent on each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}
