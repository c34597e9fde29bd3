package pages

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/flipbook/internal/engine/graph"
	"github.com/Faultbox/flipbook/pkg/math"
)

// ConstructionError reports a structural mismatch between the leaves and
// the joint chain. It is fatal for the book being built.
type ConstructionError struct {
	Reason string
}

func (e *ConstructionError) Error() string {
	return "pages: construction: " + e.Reason
}

// Chain is the page joint chain: a root followed by one joint per leaf,
// each parented to the previous one. Joints[0] is the root.
type Chain struct {
	Joints []graph.NodeID
}

// Len returns the number of joints, leaves + 1.
func (c *Chain) Len() int {
	return len(c.Joints)
}

// Root returns the root joint.
func (c *Chain) Root() graph.NodeID {
	return c.Joints[0]
}

// JointFor returns the joint carrying leaf i.
func (c *Chain) JointFor(leaf int) (graph.NodeID, error) {
	idx := len(c.Joints) - 2 - leaf
	if leaf < 0 || idx < 0 {
		return graph.None, &ConstructionError{Reason: fmt.Sprintf("no joint for leaf %d of %d", leaf, len(c.Joints)-1)}
	}
	return c.Joints[idx], nil
}

// BuildChain creates the chain under parent. The root sits at
// -total/2 along the spine axis (local X). Joints are created from the
// last leaf to the first, each offset by that leaf's thickness, so leaf i
// rides on joint N-1-i and the last joint caps the stack.
func BuildChain(g *graph.Graph, parent graph.NodeID, leaves []Page) *Chain {
	total := TotalThickness(leaves)

	root := g.Add("pages.root", parent)
	g.Node(root).Position = math.Vec3{X: -total / 2}

	joints := make([]graph.NodeID, 0, len(leaves)+1)
	joints = append(joints, root)

	prev := root
	for i := len(leaves) - 1; i >= 0; i-- {
		j := g.Add(fmt.Sprintf("pages.joint.%d", len(joints)), prev)
		g.Node(j).Position = math.Vec3{X: leaves[i].Thickness}
		joints = append(joints, j)
		prev = j
	}
	return &Chain{Joints: joints}
}

// Attach hangs each leaf node on its joint: leaf i goes to joint N-1-i,
// centered on its own thickness and flipped to face the reader.
func (c *Chain) Attach(g *graph.Graph, nodes []graph.NodeID, leaves []Page) error {
	if len(nodes) != len(leaves) {
		return &ConstructionError{Reason: fmt.Sprintf("%d leaf nodes for %d leaves", len(nodes), len(leaves))}
	}
	if len(leaves) != len(c.Joints)-1 {
		return &ConstructionError{Reason: fmt.Sprintf("%d leaves for a chain of %d joints", len(leaves), len(c.Joints))}
	}

	for i, n := range nodes {
		joint, err := c.JointFor(i)
		if err != nil {
			return err
		}
		if err := g.SetParent(n, joint); err != nil {
			return &ConstructionError{Reason: err.Error()}
		}
		node := g.Node(n)
		node.Position = math.Vec3{X: leaves[i].Thickness / 2}
		node.Rotation = math.QuatFromYaw(gomath.Pi)
	}
	return nil
}
