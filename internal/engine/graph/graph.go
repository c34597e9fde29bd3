// Package graph implements the transform hierarchy as an arena of nodes
// addressed by index. World matrices are only recomputed by an explicit
// propagation pass (Update or UpdateSubtree).
package graph

import (
	"fmt"

	"github.com/Faultbox/flipbook/pkg/math"
)

// NodeID indexes a node in its Graph.
type NodeID int

// None marks the absence of a node, e.g. the parent of a root.
const None NodeID = -1

// Node is one transform in the hierarchy.
// Position, Rotation and Scale are relative to the parent.
type Node struct {
	Name     string
	Parent   NodeID
	Children []NodeID

	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	Visible  bool

	world math.Mat4
}

// Local returns the node's local transform.
func (n *Node) Local() math.Mat4 {
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// Graph owns every node of one scene.
type Graph struct {
	nodes []Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// Add appends a node under parent (or as a root when parent is None).
func (g *Graph) Add(name string, parent NodeID) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		Name:     name,
		Parent:   None,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		Visible:  true,
		world:    math.Identity(),
	})
	if parent != None {
		g.link(id, parent)
	}
	return id
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Valid reports whether id addresses a node of this graph.
func (g *Graph) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns a pointer to the node. The pointer is invalidated by Add.
func (g *Graph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

// SetParent moves id under parent, keeping its local transform.
func (g *Graph) SetParent(id, parent NodeID) error {
	if !g.Valid(id) {
		return fmt.Errorf("graph: node %d out of range", id)
	}
	if parent != None {
		if !g.Valid(parent) {
			return fmt.Errorf("graph: parent %d out of range", parent)
		}
		for p := parent; p != None; p = g.nodes[p].Parent {
			if p == id {
				return fmt.Errorf("graph: attaching %q under %q would create a cycle",
					g.nodes[id].Name, g.nodes[parent].Name)
			}
		}
	}
	g.unlink(id)
	if parent != None {
		g.link(id, parent)
	}
	return nil
}

func (g *Graph) link(id, parent NodeID) {
	g.nodes[id].Parent = parent
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)
}

func (g *Graph) unlink(id NodeID) {
	p := g.nodes[id].Parent
	if p == None {
		return
	}
	children := g.nodes[p].Children
	for i, c := range children {
		if c == id {
			g.nodes[p].Children = append(children[:i:i], children[i+1:]...)
			break
		}
	}
	g.nodes[id].Parent = None
}

// Roots returns the nodes without a parent, in insertion order.
func (g *Graph) Roots() []NodeID {
	var roots []NodeID
	for i := range g.nodes {
		if g.nodes[i].Parent == None {
			roots = append(roots, NodeID(i))
		}
	}
	return roots
}

// Update recomputes every world matrix top-down from the roots.
func (g *Graph) Update() {
	for i := range g.nodes {
		if g.nodes[i].Parent == None {
			g.propagate(NodeID(i), math.Identity())
		}
	}
}

// UpdateSubtree recomputes world matrices for id and its descendants,
// trusting the parent's current world matrix.
func (g *Graph) UpdateSubtree(id NodeID) {
	g.propagate(id, g.parentWorld(id))
}

// UpdateWorld refreshes id's ancestors and then id's subtree, so the
// result is correct even if nothing was propagated this frame.
func (g *Graph) UpdateWorld(id NodeID) {
	var chain []NodeID
	for p := g.nodes[id].Parent; p != None; p = g.nodes[p].Parent {
		chain = append(chain, p)
	}
	parent := math.Identity()
	for i := len(chain) - 1; i >= 0; i-- {
		n := &g.nodes[chain[i]]
		n.world = parent.Mul(n.Local())
		parent = n.world
	}
	g.propagate(id, parent)
}

func (g *Graph) propagate(id NodeID, parent math.Mat4) {
	n := &g.nodes[id]
	n.world = parent.Mul(n.Local())
	world := n.world
	for _, c := range n.Children {
		g.propagate(c, world)
	}
}

func (g *Graph) parentWorld(id NodeID) math.Mat4 {
	if p := g.nodes[id].Parent; p != None {
		return g.nodes[p].world
	}
	return math.Identity()
}

// World returns the world matrix computed by the last propagation.
func (g *Graph) World(id NodeID) math.Mat4 {
	return g.nodes[id].world
}

// WorldPosition returns the node's origin in world space.
func (g *Graph) WorldPosition(id NodeID) math.Vec3 {
	return g.nodes[id].world.Translation()
}

// WorldToLocal converts a world-space point into id's own frame.
func (g *Graph) WorldToLocal(id NodeID, p math.Vec3) math.Vec3 {
	return g.nodes[id].world.Inverse().TransformPoint(p)
}

// WorldToParent converts a world-space point into the frame in which id's
// Position is expressed.
func (g *Graph) WorldToParent(id NodeID, p math.Vec3) math.Vec3 {
	return g.parentWorld(id).Inverse().TransformPoint(p)
}

// Walk visits id and its descendants depth-first. Returning false from fn
// skips the node's children.
func (g *Graph) Walk(id NodeID, fn func(id NodeID, n *Node) bool) {
	n := &g.nodes[id]
	if !fn(id, n) {
		return
	}
	for _, c := range n.Children {
		g.Walk(c, fn)
	}
}

// Find returns the first node with the given name.
func (g *Graph) Find(name string) (NodeID, bool) {
	for i := range g.nodes {
		if g.nodes[i].Name == name {
			return NodeID(i), true
		}
	}
	return None, false
}
