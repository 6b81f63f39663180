package sim

import "testing"

func TestClockAccumulatesSteps(t *testing.T) {
	c := NewClock(0.004, 4)

	if got := c.Advance(0.01); got != 2 {
		t.Fatalf("Advance(0.01) = %d steps, want 2", got)
	}
	// 0.002 residual carries into the next frame
	if got := c.Advance(0.002); got != 1 {
		t.Fatalf("residual not carried: got %d steps, want 1", got)
	}
}

func TestClockSubStepFrame(t *testing.T) {
	c := NewClock(0.004, 4)
	if got := c.Advance(0.003); got != 0 {
		t.Fatalf("Advance(0.003) = %d steps, want 0", got)
	}
	if got := c.Advance(0.001); got != 1 {
		t.Fatalf("accumulated 0.004 should yield 1 step, got %d", got)
	}
}

func TestClockCapDiscardsBacklog(t *testing.T) {
	c := NewClock(0.004, 4)

	if got := c.Advance(0.1); got != 4 {
		t.Fatalf("capped frame = %d steps, want 4", got)
	}
	// a stall must not queue a catch-up burst
	if got := c.Advance(0); got != 0 {
		t.Fatalf("backlog survived the cap: got %d steps", got)
	}
	if got := c.Advance(0.004); got != 1 {
		t.Fatalf("post-stall frame = %d steps, want 1", got)
	}
}

func TestClockNegativeElapsed(t *testing.T) {
	c := NewClock(0.004, 4)
	c.Advance(0.003)
	if got := c.Advance(-1); got != 0 {
		t.Fatalf("negative elapsed produced %d steps", got)
	}
	if got := c.Advance(0.001); got != 1 {
		t.Fatalf("negative elapsed corrupted the accumulator: got %d steps", got)
	}
}

func TestClockDefaults(t *testing.T) {
	c := NewClock(0, 0)
	if c.StepDt() != 0.004 {
		t.Fatalf("default step = %v, want 0.004", c.StepDt())
	}
	if got := c.Advance(0.004); got != 1 {
		t.Fatalf("maxSubSteps floor broken: got %d steps, want 1", got)
	}
}

func TestClockReset(t *testing.T) {
	c := NewClock(0.004, 4)
	c.Advance(0.003)
	c.Reset()
	if got := c.Advance(0.003); got != 0 {
		t.Fatalf("Reset did not clear the accumulator: got %d steps", got)
	}
}
