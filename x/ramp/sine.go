package ramp

import (
	"math"
	"time"
)

// StartSine drives a smooth sinusoidal on/off envelope between 0 and top,
// one full on-off-on cycle per onMs+offMs, calling set at each of steps
// evenly spaced points per full cycle. It runs until tick returns false
// (cancelled), since breathing is a standing envelope, not a one-shot
// transition to a target; only a zero onMs+offMs sets top once and
// returns.
func StartSine(top uint16, onMs, offMs uint32, steps uint16, tick Tick, set Step) {
	if steps == 0 {
		steps = 1
	}
	period := onMs + offMs
	if period == 0 {
		set(top)
		return
	}
	stepDur := time.Duration(uint32(period)/uint32(steps)) * time.Millisecond
	if stepDur <= 0 {
		stepDur = time.Millisecond
	}
	var elapsed uint32
	for {
		if !tick(stepDur) {
			return
		}
		elapsed = (elapsed + period/uint32(steps)) % period
		phase := 2 * math.Pi * float64(elapsed) / float64(period)
		level := (1 - math.Cos(phase)) / 2 // 0..1, smooth up then down
		set(uint16(level * float64(top)))
	}
}
