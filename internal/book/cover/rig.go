package cover

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/flipbook/internal/engine/graph"
	"github.com/Faultbox/flipbook/internal/logger"
	"github.com/Faultbox/flipbook/pkg/math"
)

// Dimensions are the cover measurements in scene units.
type Dimensions struct {
	BoardWidth     float32 // one board, without guard or spine
	Height         float32
	BoardThickness float32
	GuardWidth     float32
	SpineWidth     float32
}

// Rig is the cover node set: boards with their inner-edge anchors, the
// spine and the guard straps hanging off it.
type Rig struct {
	Joints
	Front, Back graph.NodeID // boards

	Dims  Dimensions
	Plate *Plate

	g      *graph.Graph
	solver Solver
	last   Solution
	log    *zap.Logger
}

// NewRig creates the cover nodes. The spine and its straps hang under
// parent; the boards start as roots until AttachBoards places them on the
// outermost leaves.
func NewRig(g *graph.Graph, parent graph.NodeID, d Dimensions) (*Rig, error) {
	r := &Rig{
		Dims: d,
		g:    g,
		solver: Solver{
			GuardWidth: float64(d.GuardWidth),
			SpineWidth: float64(d.SpineWidth),
			Thickness:  float64(d.BoardThickness),
		},
		log: logger.Named("cover"),
	}

	t := d.BoardThickness
	r.Front = g.Add("cover.front", graph.None)
	r.Back = g.Add("cover.back", graph.None)
	r.FrontAnchor = g.Add("cover.front.anchor", r.Front)
	g.Node(r.FrontAnchor).Position = math.Vec3{X: -d.BoardWidth / 2}
	r.BackAnchor = g.Add("cover.back.anchor", r.Back)
	g.Node(r.BackAnchor).Position = math.Vec3{X: d.BoardWidth / 2}

	r.Spine = g.Add("cover.spine", parent)

	r.FrontGuardAnchor = g.Add("cover.frontGuard.anchor", r.Spine)
	g.Node(r.FrontGuardAnchor).Position = math.Vec3{X: d.SpineWidth/2 + t/2}
	r.BackGuardAnchor = g.Add("cover.backGuard.anchor", r.Spine)
	g.Node(r.BackGuardAnchor).Position = math.Vec3{X: -(d.SpineWidth/2 + t/2)}

	r.FrontGuard = g.Add("cover.frontGuard", r.FrontGuardAnchor)
	fg := g.Node(r.FrontGuard)
	fg.Position = math.Vec3{Z: t / 2}
	fg.Rotation = math.QuatFromYaw(gomath.Pi / 2)

	r.BackGuard = g.Add("cover.backGuard", r.BackGuardAnchor)
	bg := g.Node(r.BackGuard)
	bg.Position = math.Vec3{Z: t / 2}
	bg.Rotation = math.QuatFromYaw(-gomath.Pi / 2)

	plate, err := NewPlate(g, r.Spine, d)
	if err != nil {
		return nil, err
	}
	r.Plate = plate
	return r, nil
}

// boardOffset is the board center's distance from the leaf along the
// board's local Z.
func (r *Rig) boardOffset() float32 {
	return r.Dims.BoardWidth/2 + r.Dims.GuardWidth - r.Dims.BoardThickness
}

// AttachBoards hangs the front board on the first leaf and the back board
// on the last one. The thickness arguments are those of the two leaves.
func (r *Rig) AttachBoards(first, last graph.NodeID, firstThickness, lastThickness float32) error {
	if err := r.g.SetParent(r.Front, first); err != nil {
		return err
	}
	if err := r.g.SetParent(r.Back, last); err != nil {
		return err
	}

	t := r.Dims.BoardThickness
	front := r.g.Node(r.Front)
	front.Position = math.Vec3{X: -t/2 - firstThickness, Z: r.boardOffset()}
	front.Rotation = math.QuatFromYaw(-gomath.Pi / 2)

	back := r.g.Node(r.Back)
	back.Position = math.Vec3{X: t/2 + lastThickness, Z: r.boardOffset()}
	back.Rotation = math.QuatFromYaw(gomath.Pi / 2)
	return nil
}

// Solve runs the spine solver against the current board poses and bends
// the plate to match. World matrices of the boards must be current.
func (r *Rig) Solve() Solution {
	sol := r.solver.Solve(r.g, r.Joints)
	if sol.Position.IsNaN() {
		r.log.Warn("spine solve produced NaN, keeping last pose",
			zap.Float64("offset", sol.Offset),
			zap.Float64("distance", sol.Distance))
		return r.last
	}
	r.Plate.Bend(float32(sol.FrontGuardAngle-gomath.Pi/2), float32(sol.BackGuardAngle+gomath.Pi/2))
	r.last = sol
	return sol
}

// Last returns the most recent solution.
func (r *Rig) Last() Solution {
	return r.last
}
