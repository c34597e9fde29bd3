package flipper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	page  int
	delay time.Duration
}

// run drives the controller until idle, recording each page and the delay
// scheduled after it.
func run(t *testing.T, c *Controller) []step {
	t.Helper()
	steps := []step{{c.CurrentPage(), c.Pending()}}
	for i := 0; c.Stepping(); i++ {
		require.Less(t, i, 100, "controller never went idle")
		c.Update(c.Pending())
		steps = append(steps, step{c.CurrentPage(), c.Pending()})
	}
	return steps
}

func onPage(total, page int) *Controller {
	c := NewController(total, 0)
	c.SetPage(page)
	for c.Stepping() {
		c.Update(time.Second)
	}
	return c
}

func TestSetPageShortSequence(t *testing.T) {
	c := onPage(10, 3)
	c.SetPage(5)

	steps := run(t, c)
	assert.Equal(t, []step{
		{4, StepDelay},
		{5, 0},
	}, steps)
}

func TestSetPageFromOneToFive(t *testing.T) {
	c := onPage(6, 1)
	c.SetPage(5)

	steps := run(t, c)
	assert.Equal(t, []step{
		{2, FastStepDelay}, // 4 away before the move
		{3, FastStepDelay}, // 3 away
		{4, StepDelay},     // 2 away
		{5, 0},
	}, steps)
}

func TestSetPageLongSequenceDelays(t *testing.T) {
	c := onPage(12, 1)
	c.SetPage(10)

	steps := run(t, c)
	require.Len(t, steps, 9)
	for i, s := range steps {
		assert.Equal(t, 2+i, s.page)
		if s.page == 10 {
			assert.Zero(t, s.delay)
			continue
		}
		before := 10 - (s.page - 1)
		want := StepDelay
		if before > 2 {
			want = FastStepDelay
		}
		assert.Equal(t, want, s.delay, "after reaching page %d", s.page)
	}
}

func TestSetPageBackwards(t *testing.T) {
	c := onPage(10, 6)
	c.SetPage(2)

	var pages []int
	for _, s := range run(t, c) {
		pages = append(pages, s.page)
	}
	assert.Equal(t, []int{5, 4, 3, 2}, pages)
}

func TestSetPageRestartsFromDisplayedPage(t *testing.T) {
	c := NewController(10, 0)
	c.SetPage(8)
	c.Update(FastStepDelay)
	require.Equal(t, 2, c.CurrentPage())

	c.SetPage(0)
	assert.Equal(t, 1, c.CurrentPage(), "first step is immediate")
	assert.Equal(t, StepDelay, c.Pending(), "old timer replaced")

	c.Update(StepDelay)
	assert.Equal(t, 0, c.CurrentPage())
	assert.False(t, c.Stepping())
}

func TestUpdateCarriesOvershoot(t *testing.T) {
	c := NewController(10, 0)
	c.SetPage(10)
	require.Equal(t, 1, c.CurrentPage())

	c.Update(FastStepDelay*3 + time.Millisecond)
	assert.Equal(t, 4, c.CurrentPage())
	assert.Equal(t, FastStepDelay-time.Millisecond, c.Pending())

	c.Update(time.Millisecond)
	assert.Equal(t, 4, c.CurrentPage())
	c.Update(time.Hour)
	assert.Equal(t, 10, c.CurrentPage())
	assert.False(t, c.Stepping())
}

func TestSetPageClamps(t *testing.T) {
	c := NewController(4, 0)
	c.SetPage(99)
	assert.Equal(t, 5, c.TargetPage())

	c.SetPage(-3)
	assert.Equal(t, 0, c.TargetPage())
}

func TestNextPrevBoundaries(t *testing.T) {
	c := NewController(3, 0)
	c.PrevPage()
	assert.Equal(t, 0, c.CurrentPage())
	assert.False(t, c.Stepping())

	for i := 0; i < 4; i++ {
		c.NextPage()
	}
	assert.Equal(t, 4, c.CurrentPage())

	c.NextPage()
	assert.Equal(t, 4, c.CurrentPage())
	assert.Equal(t, 4, c.TargetPage())

	c.PrevPage()
	assert.Equal(t, 3, c.CurrentPage())
}

func TestEighteenImageScenario(t *testing.T) {
	// 18 images without guard pages give 9 spreads.
	c := NewController(9, 0)
	for i := 0; i < 10; i++ {
		c.NextPage()
		c.Update(time.Second)
	}
	assert.Equal(t, 10, c.CurrentPage())

	for i := 0; i < 3; i++ {
		c.NextPage()
	}
	assert.Equal(t, 10, c.CurrentPage())
}

func TestSetTotalPagesClamps(t *testing.T) {
	c := onPage(10, 9)
	c.SetTotalPages(4)
	assert.Equal(t, 5, c.CurrentPage())
	assert.Equal(t, 5, c.TargetPage())
	assert.False(t, c.Stepping())
}

func TestDefaults(t *testing.T) {
	c := NewController(-1, 0)
	assert.Equal(t, 0, c.TotalPages())
	assert.Equal(t, DefaultTurningSpeed, c.TurningSpeed())

	c.SetTurningSpeed(0.1)
	c.SetTurningSpeed(-1)
	assert.Equal(t, float32(0.1), c.TurningSpeed())

	s := c.State()
	assert.Equal(t, State{TurningSpeed: 0.1}, s)
}
