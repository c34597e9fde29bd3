// Package skin binds procedural meshes to joint chains: per-vertex joint
// assignment, bind poses and CPU deformation.
package skin

import (
	"go.uber.org/zap"

	"github.com/Faultbox/flipbook/internal/engine/model"
	"github.com/Faultbox/flipbook/internal/logger"
)

// Region maps the span [Start, End] along a mesh's width to one joint.
type Region struct {
	Start, End float32
	Joint      uint16
}

// PlateRegions returns the regions of a guard/spine/guard plate. The
// spine is split in two halves that share one joint.
func PlateRegions(guard, spine float32, frontGuard, spineJoint, backGuard uint16) []Region {
	return []Region{
		{Start: 0, End: guard, Joint: frontGuard},
		{Start: guard, End: guard + spine/2, Joint: spineJoint},
		{Start: guard + spine/2, End: guard + spine, Joint: spineJoint},
		{Start: guard + spine, End: 2*guard + spine, Joint: backGuard},
	}
}

// Report counts the outcome of AssignWeights.
type Report struct {
	Skinned   int
	Unskinned int
}

// AssignWeights gives each vertex a single governing joint with weight 1.
// The vertex x is shifted by totalWidth/2 and clamped to [0, totalWidth]
// before the first containing region is picked. Vertices outside every
// region are logged and keep zero weights.
func AssignWeights(m *model.Mesh, totalWidth float32, regions []Region) Report {
	var rep Report
	for i := range m.Vertices {
		v := &m.Vertices[i]
		x := min(max(v.Position[0]+totalWidth/2, 0), totalWidth)

		joint, ok := regionAt(regions, x)
		if !ok {
			logger.Warn("vertex outside skin regions",
				zap.Int("vertex", i),
				zap.Float32("x", x))
			v.SkinIndex = [4]uint16{}
			v.SkinWeight = [4]float32{}
			rep.Unskinned++
			continue
		}
		v.SkinIndex = [4]uint16{joint, 0, 0, 0}
		v.SkinWeight = [4]float32{1, 0, 0, 0}
		rep.Skinned++
	}
	m.Skinned = true
	return rep
}

func regionAt(regions []Region, x float32) (uint16, bool) {
	for _, r := range regions {
		if x >= r.Start && x <= r.End {
			return r.Joint, true
		}
	}
	return 0, false
}
