// Package cover assembles the hard cover: two boards, the spine and the
// two guard straps that join them, and the per-frame solver that bends
// the spine assembly to follow the boards.
package cover

import (
	"math"

	"github.com/Faultbox/flipbook/internal/engine/graph"
	fmath "github.com/Faultbox/flipbook/pkg/math"
)

// CorrectionGain scales the strap length mismatch fed back into the
// spine angle.
const CorrectionGain = 0.35

const offsetEpsilon = 1e-9

// Joints are the graph nodes the solver reads and writes.
type Joints struct {
	FrontAnchor      graph.NodeID // read: inner edge of the front board
	BackAnchor       graph.NodeID // read: inner edge of the back board
	Spine            graph.NodeID
	FrontGuardAnchor graph.NodeID // child of Spine
	BackGuardAnchor  graph.NodeID // child of Spine
	FrontGuard       graph.NodeID // child of FrontGuardAnchor
	BackGuard        graph.NodeID // child of BackGuardAnchor
}

// Solver places the spine between the two board anchors and aims the
// guard straps at them. Lengths are in scene units.
type Solver struct {
	GuardWidth float64
	SpineWidth float64
	Thickness  float64
}

// Solution reports one solve.
type Solution struct {
	BaseAngle  float64
	Angle      float64
	Distance   float64
	Offset     float64
	Error      float64
	Correction float64
	Position   fmath.Vec3 // spine world position

	FrontGuardAngle float64
	BackGuardAngle  float64
}

// Solve runs both passes and writes the spine and strap transforms. When
// the anchors yield no finite spine position nothing is written and the
// returned Position is NaN.
func (s *Solver) Solve(g *graph.Graph, j Joints) Solution {
	g.UpdateWorld(j.FrontAnchor)
	g.UpdateWorld(j.BackAnchor)
	g.UpdateWorld(j.Spine)

	f := g.WorldPosition(j.FrontAnchor)
	b := g.WorldPosition(j.BackAnchor)

	fx, fy, fz := float64(f.X), float64(f.Y), float64(f.Z)
	bx, by, bz := float64(b.X), float64(b.Y), float64(b.Z)
	mx, my, mz := (fx+bx)/2, (fy+by)/2, (fz+bz)/2

	var sol Solution
	angle := -math.Atan2(fz-bz, fx-bx)
	sol.BaseAngle = angle

	sol.Distance = math.Hypot(fx-bx, fz-bz)
	half := math.Abs(sol.Distance-s.SpineWidth) / 2
	sol.Offset = math.Sqrt(math.Max(0, s.GuardWidth*s.GuardWidth-half*half))

	perp := angle + math.Pi/2
	t := s.Thickness
	pos := fmath.Vec3{
		X: float32(mx + math.Sin(angle)*(sol.Offset-t/2) - math.Sin(perp)*(s.GuardWidth-t)),
		Y: float32(my),
		Z: float32(mz + math.Sin(perp)*(sol.Offset-t) + math.Cos(angle)*s.GuardWidth/4),
	}
	sol.Position = pos
	if pos.IsNaN() {
		return sol
	}

	spine := g.Node(j.Spine)
	local := g.WorldToParent(j.Spine, pos)
	local.Y = spine.Position.Y
	spine.Position = local
	spine.Rotation = fmath.QuatFromYaw(float32(angle))
	g.UpdateSubtree(j.Spine)

	fg := g.WorldPosition(j.FrontGuardAnchor)
	bg := g.WorldPosition(j.BackGuardAnchor)
	sol.Error = float64(fg.Distance(f)) - float64(bg.Distance(b))
	if sol.Offset > offsetEpsilon {
		sol.Correction = sol.Error * CorrectionGain / sol.Offset
		angle += sol.Correction
		g.Node(j.Spine).Rotation = fmath.QuatFromYaw(float32(angle))
		g.UpdateSubtree(j.Spine)
	}
	sol.Angle = angle
	sol.Position = g.WorldPosition(j.Spine)

	fg = g.WorldPosition(j.FrontGuardAnchor)
	bg = g.WorldPosition(j.BackGuardAnchor)
	sol.FrontGuardAngle = aim(g, j.FrontGuard, f, fg)
	sol.BackGuardAngle = aim(g, j.BackGuard, bg, b)
	return sol
}

// aim turns a strap around Y so that, in its parent's frame, it lies
// along the line from target to fixed.
func aim(g *graph.Graph, strap graph.NodeID, fixed, target fmath.Vec3) float64 {
	fl := g.WorldToParent(strap, fixed)
	tl := g.WorldToParent(strap, target)
	angle := -math.Atan2(float64(fl.Z-tl.Z), float64(fl.X-tl.X))

	g.Node(strap).Rotation = fmath.QuatFromYaw(float32(angle))
	g.UpdateSubtree(strap)
	return angle
}
