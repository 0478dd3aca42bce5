/*
 * CyberCore - Real-time clock channel device
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

// Package rtc implements the real-time clock channel: a free-running
// 12-bit microsecond counter a PP reads directly through a PCI-style
// channel, with no function-code protocol of its own (every code is
// declined; the channel always treats it as active).
package rtc

import (
	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/event"
	"github.com/rcornwell/cyber-core/emu/word"
)

// HostClock supplies the duration, in nanoseconds, of one emulated
// machine cycle. Production code wires this to the Machine's configured
// cycle rate; tests inject a fixed-rate fake for a deterministic tick
// count.
type HostClock interface {
	NanosecondsPerCycle() float64
}

// FixedRate is a HostClock that always reports the same cycle duration.
type FixedRate float64

func (r FixedRate) NanosecondsPerCycle() float64 { return float64(r) }

const microsecond = 1000.0 // nanoseconds

const (
	activeBit uint16 = 1 << 0
	fullBit   uint16 = 1 << 1
)

// RTC is the free-running microsecond counter. It increments once per
// emulated microsecond, scheduling its own next tick through a shared
// event.Scheduler and carrying the fractional nanosecond remainder
// forward so the long-run average rate is exact even though only a whole
// number of cycles can be scheduled at a time.
type RTC struct {
	sched     *event.Scheduler
	clock     HostClock
	equipment uint
	channel   device.ChannelID
	counter   word.PpWord
	carryNs   float64
}

// New returns an RTC that begins ticking immediately, scheduled on sched.
func New(sched *event.Scheduler, clock HostClock, ch device.ChannelID, equipment uint) *RTC {
	r := &RTC{sched: sched, clock: clock, channel: ch, equipment: equipment}
	r.scheduleNext()
	return r
}

// scheduleNext schedules the next tick after the whole number of cycles
// that fits in the rest of the current microsecond (rounded down, at
// least one) and adds the difference from a full microsecond to carryNs,
// so later waits make up any shortfall.
func (r *RTC) scheduleNext() {
	perCycle := r.clock.NanosecondsPerCycle()
	if perCycle <= 0 {
		perCycle = 1
	}
	needed := microsecond - r.carryNs
	cycles := int(needed / perCycle)
	if cycles < 1 {
		cycles = 1
	}
	r.carryNs += float64(cycles)*perCycle - microsecond
	r.sched.Add(r, r.tick, cycles, 0)
}

func (r *RTC) tick(int) {
	r.counter = (r.counter + 1) & word.PpWord(word.Mask12)
	r.scheduleNext()
}

// Counter returns the current 12-bit microsecond count, for persistence
// snapshots and debug display.
func (r *RTC) Counter() word.PpWord {
	return r.counter
}

// Func, Activate, Disconnect, IO and Equipment satisfy device.Device.
func (r *RTC) Func(code word.PpWord) device.Func { return device.Declined }
func (r *RTC) Activate()                         {}
func (r *RTC) Disconnect()                       {}
func (r *RTC) IO()                               {}
func (r *RTC) Equipment() uint                   { return r.equipment }

// PCIDevice methods: the RTC always has fresh data to present and is
// always ready to accept a (discarded) write, since a PP reading the
// clock never blocks.
func (r *RTC) In() word.PpWord { return r.counter }
func (r *RTC) Out(word.PpWord) {}
func (r *RTC) Full() bool      { return true }
func (r *RTC) Empty() bool     { return true }
func (r *RTC) Flags() uint16   { return activeBit | fullBit }
