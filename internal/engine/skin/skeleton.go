package skin

import (
	"fmt"

	"github.com/Faultbox/flipbook/internal/engine/graph"
	"github.com/Faultbox/flipbook/internal/engine/model"
	"github.com/Faultbox/flipbook/pkg/math"
)

// Skeleton is an ordered list of graph nodes acting as joints for one
// skinned mesh. Vertex SkinIndex values index into Joints.
type Skeleton struct {
	g           *graph.Graph
	mesh        graph.NodeID
	Joints      []graph.NodeID
	inverseBind []math.Mat4
}

// Bind captures the current pose as the bind pose. mesh is the node the
// skinned mesh hangs from; vertex positions are in its local space.
func Bind(g *graph.Graph, mesh graph.NodeID, joints []graph.NodeID) (*Skeleton, error) {
	if len(joints) == 0 {
		return nil, fmt.Errorf("skin: skeleton has no joints")
	}
	for _, j := range joints {
		if !g.Valid(j) {
			return nil, fmt.Errorf("skin: joint %d out of range", j)
		}
	}

	s := &Skeleton{g: g, mesh: mesh, Joints: joints, inverseBind: make([]math.Mat4, len(joints))}
	g.UpdateWorld(mesh)
	meshInv := g.World(mesh).Inverse()
	for i, j := range joints {
		g.UpdateWorld(j)
		s.inverseBind[i] = meshInv.Mul(g.World(j)).Inverse()
	}
	return s, nil
}

// Matrices returns one joint matrix per joint mapping bind-pose mesh
// space to current mesh space. World matrices must be current.
func (s *Skeleton) Matrices() []math.Mat4 {
	meshInv := s.g.World(s.mesh).Inverse()
	out := make([]math.Mat4, len(s.Joints))
	for i, j := range s.Joints {
		out[i] = meshInv.Mul(s.g.World(j)).Mul(s.inverseBind[i])
	}
	return out
}

// Deform writes the skinned positions of m into dst (allocated when too
// short) and returns it. Unskinned vertices keep their bind position.
func (s *Skeleton) Deform(m *model.Mesh, dst [][3]float32) [][3]float32 {
	if cap(dst) < len(m.Vertices) {
		dst = make([][3]float32, len(m.Vertices))
	}
	dst = dst[:len(m.Vertices)]

	mats := s.Matrices()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		p := math.Vec3{X: v.Position[0], Y: v.Position[1], Z: v.Position[2]}

		var acc math.Vec3
		var total float32
		for k := 0; k < 4; k++ {
			w := v.SkinWeight[k]
			if w == 0 || int(v.SkinIndex[k]) >= len(mats) {
				continue
			}
			acc = acc.Add(mats[v.SkinIndex[k]].TransformPoint(p).Scale(w))
			total += w
		}
		if total == 0 {
			acc = p
		}
		dst[i] = [3]float32{acc.X, acc.Y, acc.Z}
	}
	return dst
}
