package sim

// Clock converts variable wall-clock frames into fixed-size simulation
// steps. Work per frame is capped; accumulated time beyond the cap is
// discarded rather than queued, so a backgrounded or stalled host does not
// trigger a catch-up burst.
type Clock struct {
	stepDt      float64
	maxSubSteps int
	acc         float64
}

func NewClock(stepDt float64, maxSubSteps int) *Clock {
	if stepDt <= 0 {
		stepDt = 0.004
	}
	if maxSubSteps < 1 {
		maxSubSteps = 1
	}
	return &Clock{stepDt: stepDt, maxSubSteps: maxSubSteps}
}

func (c *Clock) StepDt() float64 { return c.stepDt }

// Advance consumes elapsed seconds and returns how many fixed steps to run.
func (c *Clock) Advance(elapsed float64) int {
	if elapsed < 0 {
		elapsed = 0
	}
	c.acc += elapsed
	steps := 0
	for c.acc >= c.stepDt && steps < c.maxSubSteps {
		c.acc -= c.stepDt
		steps++
	}
	if steps == c.maxSubSteps {
		c.acc = 0
	}
	return steps
}

func (c *Clock) Reset() { c.acc = 0 }
