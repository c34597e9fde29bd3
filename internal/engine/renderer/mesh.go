package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/flipbook/internal/engine/model"
)

var vertexSize = int(unsafe.Sizeof(model.Vertex{}))

// Mesh is a model.Mesh uploaded to the GPU.
type Mesh struct {
	vao, vbo, ebo uint32
	groups        []model.Group
	dynamic       bool
	scratch       []model.Vertex
}

// UploadMesh copies m to the GPU. Dynamic meshes accept UpdatePositions.
func (r *Renderer) UploadMesh(m *model.Mesh, dynamic bool) *Mesh {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return nil
	}
	gm := &Mesh{groups: m.Groups, dynamic: dynamic}

	usage := uint32(gl.STATIC_DRAW)
	if dynamic {
		usage = gl.DYNAMIC_DRAW
		gm.scratch = make([]model.Vertex, len(m.Vertices))
	}

	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*vertexSize, unsafe.Pointer(&m.Vertices[0]), usage)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return gm
}

// UpdatePositions replaces the vertex positions of a dynamic mesh, e.g.
// with CPU-skinned positions. Other attributes come from m.
func (r *Renderer) UpdatePositions(gm *Mesh, m *model.Mesh, positions [][3]float32) {
	if gm == nil || !gm.dynamic || len(positions) != len(gm.scratch) {
		return
	}
	copy(gm.scratch, m.Vertices)
	for i := range gm.scratch {
		gm.scratch[i].Position = positions[i]
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(gm.scratch)*vertexSize, unsafe.Pointer(&gm.scratch[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// DeleteMesh releases the GPU buffers of gm.
func (r *Renderer) DeleteMesh(gm *Mesh) {
	if gm == nil {
		return
	}
	gl.DeleteVertexArrays(1, &gm.vao)
	gl.DeleteBuffers(1, &gm.vbo)
	gl.DeleteBuffers(1, &gm.ebo)
	*gm = Mesh{}
}
