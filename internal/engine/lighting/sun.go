// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/flipbook/pkg/math"
)

// Sun is a directional light with an ambient term.
type Sun struct {
	Direction math.Vec3 // Normalized, pointing towards the sun
	Ambient   [3]float32
	Diffuse   [3]float32
}

// DefaultSun lights the book from above and slightly in front, with
// enough ambient light that the inside of the covers stays readable.
func DefaultSun() Sun {
	return Sun{
		Direction: SunDirection(20, 60),
		Ambient:   [3]float32{0.45, 0.45, 0.45},
		Diffuse:   [3]float32{0.6, 0.6, 0.6},
	}
}

// SunDirection converts longitude/latitude angles in degrees to a light
// direction vector. Longitude is rotation around the Y axis, latitude is
// elevation from the horizon. Returns a normalized vector pointing
// towards the sun.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	// Spherical to Cartesian conversion
	return math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Y: float32(gomath.Sin(latRad)),
		Z: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
	}
}
