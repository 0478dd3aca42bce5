/*
 * CyberCore - Real-time clock channel device tests
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package rtc

import (
	"testing"

	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/event"
)

// advanceCycles steps the scheduler one cycle at a time, the way a
// Machine's per-cycle tick loop drives it; Scheduler.Advance only folds
// cascading re-schedules correctly when called with small, regular steps.
func advanceCycles(sched *event.Scheduler, n int) {
	for i := 0; i < n; i++ {
		sched.Advance(1)
	}
}

func TestCounterIncrementsOncePerMicrosecond(t *testing.T) {
	sched := event.NewScheduler()
	clock := FixedRate(10) // 10ns/cycle -> 100 cycles per microsecond
	r := New(sched, clock, device.ChannelID(0), 1)

	advanceCycles(sched, 100)
	if r.Counter() != 1 {
		t.Fatalf("Counter() = %d after 100 cycles at 10ns/cycle, want 1", r.Counter())
	}
	advanceCycles(sched, 100)
	if r.Counter() != 2 {
		t.Fatalf("Counter() = %d after 200 cycles, want 2", r.Counter())
	}
}

func TestCounterWraps12Bits(t *testing.T) {
	sched := event.NewScheduler()
	clock := FixedRate(10)
	r := New(sched, clock, device.ChannelID(0), 1)
	r.counter = 0o7777 // one below the 12-bit wrap point
	advanceCycles(sched, 100)
	if r.Counter() != 0 {
		t.Fatalf("Counter() = %d after the tick following 07777, want wrap to 0", r.Counter())
	}
}

func TestFractionalRateCarriesForward(t *testing.T) {
	sched := event.NewScheduler()
	// 333ns/cycle: 1000/333 = 3.003 cycles/us. Each wait rounds down to 3
	// cycles and carries the 1ns shortfall, so every 333rd wait is 4
	// cycles: 333 ticks per 1000 cycles on the long-run average.
	clock := FixedRate(333)
	r := New(sched, clock, device.ChannelID(0), 1)
	advanceCycles(sched, 3000) // 3000 cycles at 333ns/cycle is 999000ns, 999 microseconds
	if r.Counter() != 999 {
		t.Fatalf("Counter() = %d after 3000 cycles at 333ns/cycle, want 999", r.Counter())
	}
}

func TestFuncAlwaysDeclines(t *testing.T) {
	sched := event.NewScheduler()
	r := New(sched, FixedRate(1000), device.ChannelID(0), 2)
	if got := r.Func(0o7700); got != device.Declined {
		t.Fatalf("Func() = %v, want Declined", got)
	}
}

func TestFlagsAlwaysActiveAndFull(t *testing.T) {
	sched := event.NewScheduler()
	r := New(sched, FixedRate(1000), device.ChannelID(0), 3)
	if !r.Full() || !r.Empty() {
		t.Fatalf("RTC should always report Full and Empty true")
	}
	if r.Flags()&(activeBit|fullBit) != (activeBit | fullBit) {
		t.Fatalf("Flags() = %#x, want both activeBit and fullBit set", r.Flags())
	}
}

func TestEquipmentReturnsConfiguredNumber(t *testing.T) {
	sched := event.NewScheduler()
	r := New(sched, FixedRate(1000), device.ChannelID(0), 7)
	if r.Equipment() != 7 {
		t.Fatalf("Equipment() = %d, want 7", r.Equipment())
	}
}
