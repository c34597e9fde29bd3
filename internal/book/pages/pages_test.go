package pages

import (
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/flipbook/internal/engine/graph"
)

var (
	inside = color.NRGBA{R: 0xaf, G: 0xaf, B: 0xaf, A: 0xff}
	guardC = color.NRGBA{R: 0xff, G: 0xfa, B: 0xf0, A: 0xff}
)

func images(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("page-%02d.jpg", i)
	}
	return out
}

func TestBuildPairsImages(t *testing.T) {
	leaves := Build(BuildOptions{Images: images(4), Thickness: 0.03, Color: inside})
	require.Len(t, leaves, 3)

	assert.Equal(t, ColorSurface(inside), leaves[0].Front)
	assert.Equal(t, ImageSurface("page-00.jpg"), leaves[0].Back)
	assert.Equal(t, ImageSurface("page-01.jpg"), leaves[1].Front)
	assert.Equal(t, ImageSurface("page-02.jpg"), leaves[1].Back)
	assert.Equal(t, ImageSurface("page-03.jpg"), leaves[2].Front)
	assert.Equal(t, ColorSurface(inside), leaves[2].Back)

	assert.InDelta(t, 0.01, leaves[0].Thickness, 1e-7)
	assert.InDelta(t, 0.03, leaves[1].Thickness, 1e-7)
	assert.InDelta(t, 0.01, leaves[2].Thickness, 1e-7)
}

func TestBuildOddCountAddsBlankLeaf(t *testing.T) {
	leaves := Build(BuildOptions{Images: images(3), Thickness: 0.03, Color: inside})
	require.Len(t, leaves, 3)
	last := leaves[2]
	assert.Equal(t, SurfaceColor, last.Front.Kind)
	assert.Equal(t, SurfaceColor, last.Back.Kind)
}

func TestBuildEmptyReferencesUseColor(t *testing.T) {
	leaves := Build(BuildOptions{Images: []string{"a.png", "", "c.png"}, Thickness: 0.03, Color: inside})
	assert.Equal(t, ColorSurface(inside), leaves[1].Front)
	assert.Equal(t, ImageSurface("c.png"), leaves[1].Back)
}

func TestBuildNoImages(t *testing.T) {
	leaves := Build(BuildOptions{Thickness: 0.03, Color: inside})
	require.Len(t, leaves, 1)
	assert.Len(t, leaves, TotalPages(0, false)+1)
}

func TestBuildGuardPages(t *testing.T) {
	leaves := Build(BuildOptions{Images: images(2), Thickness: 0.03, Color: inside, GuardPage: true, GuardColor: &guardC})
	require.Len(t, leaves, 4)

	for _, i := range []int{0, 3} {
		assert.True(t, leaves[i].Guard)
		assert.Equal(t, guardC, leaves[i].Color)
		assert.InDelta(t, 0.01, leaves[i].Thickness, 1e-7)
	}
	assert.Equal(t, guardC, leaves[1].Color)
	assert.Equal(t, ColorSurface(guardC), leaves[1].Front, "blank side takes the guard color")
	assert.Equal(t, ImageSurface("page-00.jpg"), leaves[1].Back)
	assert.InDelta(t, 0.03, leaves[1].Thickness, 1e-7)

	fallback := Build(BuildOptions{Images: images(2), Thickness: 0.03, Color: inside, GuardPage: true})
	assert.Equal(t, inside, fallback[0].Color)
}

func TestTotalPagesMatchesLeaves(t *testing.T) {
	for n := 0; n <= 21; n++ {
		for _, guard := range []bool{false, true} {
			leaves := Build(BuildOptions{Images: images(n), Thickness: 0.01, Color: inside, GuardPage: guard})
			assert.Len(t, leaves, TotalPages(n, guard)+1, "n=%d guard=%v", n, guard)
		}
	}
	assert.Equal(t, 9, TotalPages(18, false))
	assert.Equal(t, 11, TotalPages(18, true))
}

func TestBuildChainShape(t *testing.T) {
	for n := 0; n <= 12; n++ {
		leaves := make([]Page, n)
		var sum float32
		for i := range leaves {
			leaves[i].Thickness = 0.01 * float32(i+1)
			sum += leaves[i].Thickness
		}

		g := graph.New()
		parent := g.Add("pages", graph.None)
		c := BuildChain(g, parent, leaves)

		require.Equal(t, n+1, c.Len())
		assert.InDelta(t, -sum/2, g.Node(c.Root()).Position.X, 1e-6)
		assert.Equal(t, parent, g.Node(c.Root()).Parent)
		for k := 1; k < c.Len(); k++ {
			assert.Equal(t, c.Joints[k-1], g.Node(c.Joints[k]).Parent, "chain, not star")
			// joint k is offset by the thickness of leaf N-k
			assert.InDelta(t, leaves[n-k].Thickness, g.Node(c.Joints[k]).Position.X, 1e-7)
		}

		g.Update()
		if n > 0 {
			assert.InDelta(t, sum/2, g.WorldPosition(c.Joints[n]).X, 1e-5)
		}
	}
}

func TestAttach(t *testing.T) {
	leaves := Build(BuildOptions{Images: images(4), Thickness: 0.03, Color: inside})
	g := graph.New()
	c := BuildChain(g, graph.None, leaves)

	nodes := make([]graph.NodeID, len(leaves))
	for i := range nodes {
		nodes[i] = g.Add(fmt.Sprintf("leaf.%d", i), graph.None)
	}
	require.NoError(t, c.Attach(g, nodes, leaves))

	n := len(leaves)
	for i, node := range nodes {
		assert.Equal(t, c.Joints[n-1-i], g.Node(node).Parent)
		assert.InDelta(t, leaves[i].Thickness/2, g.Node(node).Position.X, 1e-7)
	}
	assert.Equal(t, c.Root(), g.Node(nodes[n-1]).Parent, "last leaf rides on the root")
	assert.Empty(t, g.Node(c.Joints[n]).Children, "last joint caps the stack")
}

func TestAttachMismatch(t *testing.T) {
	leaves := Build(BuildOptions{Images: images(4), Thickness: 0.03, Color: inside})
	g := graph.New()
	c := BuildChain(g, graph.None, leaves[:2])

	nodes := []graph.NodeID{g.Add("a", graph.None), g.Add("b", graph.None), g.Add("c", graph.None)}
	err := c.Attach(g, nodes, leaves)
	var ce *ConstructionError
	require.True(t, errors.As(err, &ce))

	err = c.Attach(g, nodes[:2], leaves)
	require.True(t, errors.As(err, &ce))

	_, err = c.JointFor(5)
	require.True(t, errors.As(err, &ce))
}

type fixedState struct {
	current, total int
	speed          float32
}

func (s fixedState) CurrentPage() int      { return s.current }
func (s fixedState) TotalPages() int       { return s.total }
func (s fixedState) TurningSpeed() float32 { return s.speed }

func settle(t *testing.T, g *graph.Graph, c *Chain, r *Rotator, s TurnState) int {
	t.Helper()
	for frame := 1; frame < 5000; frame++ {
		if r.Update(g, c, s) {
			return frame
		}
	}
	t.Fatal("rotator never settled")
	return 0
}

func TestRotatorConvergesAndHolds(t *testing.T) {
	leaves := Build(BuildOptions{Images: images(6), Thickness: 0.03, Color: inside})
	g := graph.New()
	c := BuildChain(g, graph.None, leaves)
	r := NewRotator()
	s := fixedState{current: 2, total: TotalPages(6, false), speed: 0.025}

	active := c.Joints[ActiveIndex(s.current, s.total)]
	last := g.Node(active).Rotation.AngleTo(r.open)
	for i := 0; i < 50; i++ {
		r.Update(g, c, s)
		d := g.Node(active).Rotation.AngleTo(r.open)
		require.LessOrEqual(t, d, last, "distance shrinks monotonically")
		last = d
	}

	settle(t, g, c, r, s)
	assert.Equal(t, r.open, g.Node(active).Rotation)

	held := g.Node(active).Rotation
	assert.True(t, r.Update(g, c, s))
	assert.Equal(t, held, g.Node(active).Rotation, "settled joints hold exactly")
}

func TestRotatorTurnsCurrentLeaves(t *testing.T) {
	leaves := Build(BuildOptions{Images: images(18), Thickness: 0.03, Color: inside})
	total := TotalPages(18, false)
	require.Len(t, leaves, total+1)

	g := graph.New()
	c := BuildChain(g, graph.None, leaves)
	r := NewRotator()

	for current := 0; current <= total+1; current++ {
		settle(t, g, c, r, fixedState{current: current, total: total, speed: 0.25})
		g.Update()

		turned := 0
		for i := range leaves {
			j, err := c.JointFor(i)
			require.NoError(t, err)
			if g.World(j)[0] < 0 {
				turned++
			}
		}
		assert.Equal(t, current, turned, "current page %d", current)
	}
}
