package cover

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/flipbook/internal/engine/graph"
	"github.com/Faultbox/flipbook/internal/engine/model"
	"github.com/Faultbox/flipbook/internal/engine/skin"
	"github.com/Faultbox/flipbook/internal/logger"
	"github.com/Faultbox/flipbook/pkg/math"
)

// Plate joint indices, as stored in vertex SkinIndex.
const (
	PlateRoot = iota
	PlatePivot
	PlateFrontGuard
	PlateSpine
	PlateBackGuard
	PlateTarget
)

// segmentsPerGuard is the width subdivision of one guard strap.
const segmentsPerGuard = 10

// Plate is the single skinned guard/spine/guard strip. Its joints form the
// chain root, pivot, front guard, spine, back guard. The front guard and
// spine joints share the first hinge; the spine counter-rotates so that
// bending a strap leaves the spine in place.
type Plate struct {
	Node     graph.NodeID
	Joints   []graph.NodeID
	Mesh     *model.Mesh
	Skeleton *skin.Skeleton
	Report   skin.Report

	g        *graph.Graph
	deformed [][3]float32
}

// NewPlate builds the plate under parent, hidden by default.
func NewPlate(g *graph.Graph, parent graph.NodeID, d Dimensions) (*Plate, error) {
	guard, spine := d.GuardWidth, d.SpineWidth
	total := 2*guard + spine

	segs := 1
	if guard > 0 {
		segs = max(int(gomath.Ceil(float64(total/guard*segmentsPerGuard))), 1)
	}
	mesh := model.Box(total, d.Height, d.BoardThickness, model.BoxSegments{Width: segs, Height: 1, Depth: 1})

	p := &Plate{g: g, Mesh: mesh}
	p.Node = g.Add("cover.plate", parent)
	n := g.Node(p.Node)
	n.Rotation = math.QuatFromYaw(gomath.Pi)
	n.Visible = false

	root := g.Add("cover.plate.root", p.Node)
	g.Node(root).Position = math.Vec3{X: -total / 2}
	pivot := g.Add("cover.plate.pivot", root)
	fg := g.Add("cover.plate.frontGuard", pivot)
	g.Node(fg).Position = math.Vec3{X: guard}
	sp := g.Add("cover.plate.spine", fg)
	bg := g.Add("cover.plate.backGuard", sp)
	g.Node(bg).Position = math.Vec3{X: spine}
	target := g.Add("cover.plate.target", bg)
	g.Node(target).Position = math.Vec3{X: guard}
	p.Joints = []graph.NodeID{root, pivot, fg, sp, bg, target}

	p.Report = skin.AssignWeights(mesh, total, skin.PlateRegions(guard, spine, PlateFrontGuard, PlateSpine, PlateBackGuard))
	if p.Report.Unskinned > 0 {
		logger.Named("cover").Warn("plate has unskinned vertices", zap.Int("count", p.Report.Unskinned))
	}

	sk, err := skin.Bind(g, p.Node, p.Joints)
	if err != nil {
		return nil, err
	}
	p.Skeleton = sk
	return p, nil
}

// Bend turns each guard strap around its hinge. Zero is flat.
func (p *Plate) Bend(front, back float32) {
	p.g.Node(p.Joints[PlateFrontGuard]).Rotation = math.QuatFromYaw(front)
	p.g.Node(p.Joints[PlateSpine]).Rotation = math.QuatFromYaw(-front)
	p.g.Node(p.Joints[PlateBackGuard]).Rotation = math.QuatFromYaw(back)
	p.g.UpdateSubtree(p.Node)
}

// Deform returns the skinned vertex positions in the plate's local space.
// The returned slice is reused by the next call.
func (p *Plate) Deform() [][3]float32 {
	p.deformed = p.Skeleton.Deform(p.Mesh, p.deformed)
	return p.deformed
}
