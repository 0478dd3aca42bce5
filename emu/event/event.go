/*
 * CyberCore - Cycle-relative event scheduler
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

// Package event implements a cycle-relative linked-list event scheduler:
// each pending event stores its delay relative to the event ahead of it, so
// advancing time by one tick is an O(1) decrement of the head's delay
// rather than a scan of the whole list. Shared by the RTC's tick source
// and device completion delays; the channel fabric's delayed-disconnect/
// status countdowns are plain counters in emu/channel.
package event

// Callback is invoked when a scheduled event's delay reaches zero.
type Callback = func(iarg int)

type entry struct {
	time int // cycles remaining relative to the event ahead of it
	key  any // owner key (ChannelID, DeviceID, or any comparable tag)
	cb   Callback
	iarg int
	prev *entry
	next *entry
}

// Scheduler is one cycle-relative event list. A Machine owns one Scheduler
// per clock domain it needs (typically a single scheduler shared by all
// channels and devices); there is no package-level state.
type Scheduler struct {
	head *entry
	tail *entry
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add schedules cb to run after the given number of cycles, tagged with key
// (used by Cancel to find it again) and iarg (passed through to cb). A
// zero delay runs the callback immediately, synchronously, and schedules
// nothing.
func (s *Scheduler) Add(key any, cb Callback, delay int, iarg int) {
	if delay <= 0 {
		cb(iarg)
		return
	}

	ev := &entry{key: key, cb: cb, time: delay, iarg: iarg}

	cur := s.head
	if cur == nil {
		s.head = ev
		s.tail = ev
		return
	}

	for cur != nil {
		if ev.time <= cur.time {
			cur.time -= ev.time
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				s.head = ev
			}
			return
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = s.tail
	s.tail.next = ev
	s.tail = ev
}

// Cancel removes the first pending event matching key and iarg, if any,
// folding its remaining delay into the following event so total elapsed
// time for later events is unaffected.
func (s *Scheduler) Cancel(key any, iarg int) {
	cur := s.head
	for cur != nil {
		if cur.key == key && cur.iarg == iarg {
			if cur.next != nil {
				cur.next.time += cur.time
				cur.next.prev = cur.prev
			} else {
				s.tail = cur.prev
			}
			if cur.prev != nil {
				cur.prev.next = cur.next
			} else {
				s.head = cur.next
			}
			return
		}
		cur = cur.next
	}
}

// Advance moves the scheduler forward by t cycles, firing (in order) every
// event whose delay reaches zero or below.
func (s *Scheduler) Advance(t int) {
	cur := s.head
	if cur == nil {
		return
	}
	cur.time -= t
	for cur != nil && cur.time <= 0 {
		cb, iarg := cur.cb, cur.iarg
		s.head = cur.next
		if s.head != nil {
			s.head.prev = nil
		} else {
			s.tail = nil
		}
		cb(iarg)
		cur = s.head
	}
}

// Pending reports whether any event is currently scheduled.
func (s *Scheduler) Pending() bool {
	return s.head != nil
}
