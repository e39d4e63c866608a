package timex

import "golang.org/x/sys/unix"

// Clock returns milliseconds on some monotonic timeline. Auto-deactivate
// timers and the policy-6 "within 2s of user activity" checks need a
// timeline that keeps accruing across device suspend, which Go's plain
// time.Now() does not guarantee on Linux (it reads CLOCK_MONOTONIC,
// which pauses across suspend; the kernel's CLOCK_BOOTTIME does not).
type Clock interface {
	NowMs() int64
}

// BootClock reads CLOCK_BOOTTIME directly via unix.ClockGettime, so
// elapsed time keeps accruing across a suspend/resume cycle.
type BootClock struct{}

func (BootClock) NowMs() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts); err != nil {
		// Degrade to CLOCK_MONOTONIC rather than crash; suspend-spanning
		// accuracy is lost but the timer still fires.
		if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
			return NowMs()
		}
	}
	return ts.Sec*1000 + ts.Nsec/1_000_000
}

// FakeClock is a manually-advanced Clock for tests.
type FakeClock struct {
	ms int64
}

func NewFakeClock(startMs int64) *FakeClock { return &FakeClock{ms: startMs} }

func (f *FakeClock) NowMs() int64 { return f.ms }

func (f *FakeClock) Advance(deltaMs int64) { f.ms += deltaMs }

func (f *FakeClock) Set(ms int64) { f.ms = ms }
