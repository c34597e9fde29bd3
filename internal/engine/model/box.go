package model

import gomath "math"

// BoxSegments controls the tessellation of a box.
type BoxSegments struct {
	Width, Height, Depth int
}

// Box builds a box centered on the origin with the given size. Each side
// is a subdivided plane with its own Group, in Face order. UVs run 0..1
// across each side.
func Box(width, height, depth float32, seg BoxSegments) *Mesh {
	seg.Width = max(1, seg.Width)
	seg.Height = max(1, seg.Height)
	seg.Depth = max(1, seg.Depth)

	m := &Mesh{
		Bounds: Bounds{
			Min: [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
			Max: [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
		},
	}

	// axis indices: u, v, w
	m.plane(2, 1, 0, -1, -1, depth, height, width, seg.Depth, seg.Height, FaceRight)
	m.plane(2, 1, 0, 1, -1, depth, height, -width, seg.Depth, seg.Height, FaceLeft)
	m.plane(0, 2, 1, 1, 1, width, depth, height, seg.Width, seg.Depth, FaceTop)
	m.plane(0, 2, 1, 1, -1, width, depth, -height, seg.Width, seg.Depth, FaceBottom)
	m.plane(0, 1, 2, 1, -1, width, height, depth, seg.Width, seg.Height, FaceFront)
	m.plane(0, 1, 2, -1, -1, width, height, -depth, seg.Width, seg.Height, FaceBack)

	return m
}

func (m *Mesh) plane(u, v, w int, udir, vdir float32, width, height, depth float32, gridX, gridY int, face Face) {
	segW := width / float32(gridX)
	segH := height / float32(gridY)
	halfW, halfH, halfD := width/2, height/2, depth/2

	nz := float32(1)
	if depth < 0 {
		nz = -1
	}

	base := uint32(len(m.Vertices))
	start := int32(len(m.Indices))

	for iy := 0; iy <= gridY; iy++ {
		y := float32(iy)*segH - halfH
		for ix := 0; ix <= gridX; ix++ {
			x := float32(ix)*segW - halfW

			var vert Vertex
			vert.Position[u] = x * udir
			vert.Position[v] = y * vdir
			vert.Position[w] = halfD
			vert.Normal[w] = nz
			vert.TexCoord = [2]float32{float32(ix) / float32(gridX), 1 - float32(iy)/float32(gridY)}

			updateBounds(&m.Bounds, vert.Position)
			m.Vertices = append(m.Vertices, vert)
		}
	}

	row := uint32(gridX + 1)
	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := base + uint32(ix) + row*uint32(iy)
			b := base + uint32(ix) + row*uint32(iy+1)
			c := base + uint32(ix+1) + row*uint32(iy+1)
			d := base + uint32(ix+1) + row*uint32(iy)
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}

	m.Groups = append(m.Groups, Group{
		Material:   face,
		StartIndex: start,
		IndexCount: int32(len(m.Indices)) - start,
	})
}

// Translate offsets every vertex and the bounds.
func (m *Mesh) Translate(dx, dy, dz float32) {
	for i := range m.Vertices {
		p := &m.Vertices[i].Position
		p[0] += dx
		p[1] += dy
		p[2] += dz
	}
	m.Bounds.Min = [3]float32{m.Bounds.Min[0] + dx, m.Bounds.Min[1] + dy, m.Bounds.Min[2] + dz}
	m.Bounds.Max = [3]float32{m.Bounds.Max[0] + dx, m.Bounds.Max[1] + dy, m.Bounds.Max[2] + dz}
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
