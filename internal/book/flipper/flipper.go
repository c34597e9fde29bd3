// Package flipper drives the displayed page toward a requested page one
// step at a time. It has a single pending step timer advanced by Update,
// so it runs inside a frame loop without goroutines or locks.
package flipper

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/flipbook/internal/logger"
)

const (
	// FastStepDelay separates steps while the target is more than
	// FastStepDistance pages away.
	FastStepDelay = 150 * time.Millisecond
	// StepDelay separates the last steps of a sequence.
	StepDelay = 200 * time.Millisecond
	// FastStepDistance is the distance above which FastStepDelay applies.
	FastStepDistance = 2

	// DefaultTurningSpeed is the per-frame slerp fraction for page joints.
	DefaultTurningSpeed float32 = 0.025
)

// State is a snapshot of the controller.
type State struct {
	TotalPages   int
	CurrentPage  int
	TargetPage   int
	TurningSpeed float32
	Stepping     bool
	Pending      time.Duration
}

// Controller owns the current and target page.
// Invariant: 0 <= current <= total+1.
type Controller struct {
	total   int
	current int
	target  int
	speed   float32

	stepping bool
	pending  time.Duration

	log *zap.Logger
}

// NewController creates a controller on page 0. A non-positive speed
// selects DefaultTurningSpeed.
func NewController(totalPages int, turningSpeed float32) *Controller {
	if turningSpeed <= 0 {
		turningSpeed = DefaultTurningSpeed
	}
	return &Controller{
		total: max(totalPages, 0),
		speed: turningSpeed,
		log:   logger.Named("flipper"),
	}
}

// CurrentPage returns the displayed page.
func (c *Controller) CurrentPage() int { return c.current }

// TargetPage returns the requested page.
func (c *Controller) TargetPage() int { return c.target }

// TotalPages returns the number of turnable spreads.
func (c *Controller) TotalPages() int { return c.total }

// TurningSpeed returns the per-frame slerp fraction.
func (c *Controller) TurningSpeed() float32 { return c.speed }

// Stepping reports whether a step is scheduled.
func (c *Controller) Stepping() bool { return c.stepping }

// Pending returns the time left before the next step.
func (c *Controller) Pending() time.Duration { return c.pending }

// State returns a snapshot.
func (c *Controller) State() State {
	return State{
		TotalPages:   c.total,
		CurrentPage:  c.current,
		TargetPage:   c.target,
		TurningSpeed: c.speed,
		Stepping:     c.stepping,
		Pending:      c.pending,
	}
}

// SetTurningSpeed changes the slerp fraction; non-positive values are ignored.
func (c *Controller) SetTurningSpeed(speed float32) {
	if speed > 0 {
		c.speed = speed
	}
}

// SetTotalPages changes the page count and clamps current and target.
func (c *Controller) SetTotalPages(total int) {
	c.total = max(total, 0)
	c.current = c.clamp(c.current)
	c.target = c.clamp(c.target)
	if c.current == c.target {
		c.stop()
	}
}

// SetPage requests a page. The target is clamped to [0, total+1], any
// pending step is dropped and the first step happens immediately from
// the displayed page.
func (c *Controller) SetPage(page int) {
	c.target = c.clamp(page)
	c.stop()
	c.log.Debug("set page", zap.Int("from", c.current), zap.Int("to", c.target))
	c.step()
}

// NextPage turns one page forward; no-op on the last page.
func (c *Controller) NextPage() {
	if c.current < c.total+1 {
		c.SetPage(c.current + 1)
	}
}

// PrevPage turns one page back; no-op on page 0.
func (c *Controller) PrevPage() {
	if c.current > 0 {
		c.SetPage(c.current - 1)
	}
}

// Update advances the step timer by dt, running every step that falls due.
func (c *Controller) Update(dt time.Duration) {
	if !c.stepping {
		return
	}
	c.pending -= dt
	for c.stepping && c.pending <= 0 {
		overshoot := -c.pending
		c.step()
		if c.stepping {
			c.pending -= overshoot
		}
	}
}

func (c *Controller) step() {
	if c.current == c.target {
		c.stop()
		return
	}

	delay := StepDelay
	if abs(c.target-c.current) > FastStepDistance {
		delay = FastStepDelay
	}
	if c.current < c.target {
		c.current++
	} else {
		c.current--
	}

	if c.current == c.target {
		c.stop()
		return
	}
	c.stepping = true
	c.pending = delay
}

func (c *Controller) stop() {
	c.stepping = false
	c.pending = 0
}

func (c *Controller) clamp(page int) int {
	return min(max(page, 0), c.total+1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
