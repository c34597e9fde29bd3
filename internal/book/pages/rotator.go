package pages

import (
	gomath "math"

	"github.com/Faultbox/flipbook/internal/engine/graph"
	"github.com/Faultbox/flipbook/pkg/math"
)

// SnapEpsilon is the angular distance (radians) under which a joint is
// snapped to its target instead of interpolated.
const SnapEpsilon = 0.001

// TurnState is the page-turn state read by the rotator each frame.
type TurnState interface {
	CurrentPage() int
	TotalPages() int
	TurningSpeed() float32
}

// ActiveIndex returns the chain joint that is open for the given state.
// Opening joint k turns every leaf it carries, so exactly current leaves
// are turned. Index 0 (the root) opens when the book is closed on its back.
func ActiveIndex(current, total int) int {
	return total - current + 1
}

// Rotator eases chain joints toward the open or closed orientation.
type Rotator struct {
	open   math.Quat
	closed math.Quat
}

// NewRotator creates a rotator that opens pages by -pi around Y.
func NewRotator() *Rotator {
	return &Rotator{
		open:   math.QuatFromYaw(-gomath.Pi),
		closed: math.QuatIdentity(),
	}
}

// Update advances every joint one frame. It only writes local rotations;
// the caller propagates world matrices. Returns true once every joint
// sits exactly on its target.
func (r *Rotator) Update(g *graph.Graph, c *Chain, s TurnState) bool {
	active := ActiveIndex(s.CurrentPage(), s.TotalPages())
	speed := s.TurningSpeed()

	settled := true
	for i, j := range c.Joints {
		target := r.closed
		if i == active {
			target = r.open
		}

		n := g.Node(j)
		if n.Rotation.AngleTo(target) > SnapEpsilon {
			n.Rotation = n.Rotation.Slerp(target, speed)
			settled = false
		} else {
			n.Rotation = target
		}
	}
	return settled
}
