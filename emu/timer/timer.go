/*
 * CyberCore - Wall-clock tick source
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

// Package timer drives a Machine's Tick() at a steady wall-clock rate: a
// time.Ticker-backed goroutine that can be paused and resumed without
// tearing down and recreating the underlying ticker, matching the
// start/stop/shutdown lifecycle an operator console drives through
// OperatorControl.
package timer

import (
	"log/slog"
	"sync"
	"time"
)

// Ticker emits one value on its Ticks() channel per tick interval while
// running; it satisfies emu/machine.TickSource.
type Ticker struct {
	wg      sync.WaitGroup
	running bool
	ticks   chan struct{}
	enable  chan bool
	done    chan struct{}
	ticker  *time.Ticker
	period  time.Duration
}

// New returns a Ticker that, once Start is called, emits on Ticks() every
// period.
func New(period time.Duration) *Ticker {
	t := &Ticker{
		ticks:  make(chan struct{}, 1),
		enable: make(chan bool),
		done:   make(chan struct{}),
		period: period,
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Ticks returns the channel a driver loop ranges over to call Machine.Tick.
func (t *Ticker) Ticks() <-chan struct{} { return t.ticks }

// Start begins emitting ticks.
func (t *Ticker) Start() { t.enable <- true }

// Stop pauses emission without shutting down the underlying goroutine. It
// returns once the goroutine has taken the request, and discards a tick
// still waiting in the channel, so no tick arrives after Stop returns.
func (t *Ticker) Stop() {
	t.enable <- false
	select {
	case <-t.ticks:
	default:
	}
}

// Shutdown stops the ticker goroutine for good, waiting up to one second
// for it to exit cleanly.
func (t *Ticker) Shutdown() {
	close(t.done)
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("timer: timed out waiting for ticker goroutine to exit")
	}
}

func (t *Ticker) run() {
	defer t.wg.Done()
	t.ticker = time.NewTicker(t.period)
	defer t.ticker.Stop()

	for {
		select {
		case <-t.ticker.C:
			if t.running {
				select {
				case t.ticks <- struct{}{}:
				default: // driver hasn't drained the previous tick yet; drop this one
				}
			}
		case t.running = <-t.enable:
			if t.running {
				t.ticker.Reset(t.period)
			}
		case <-t.done:
			return
		}
	}
}
