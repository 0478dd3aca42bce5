/*
 * CyberCore - External collaborator interfaces
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

package machine

// TickSource drives Machine.Tick from outside: a wall-clock ticker, a
// test harness stepping deterministically, or a batch driver running as
// fast as the host allows. Machine never starts its own goroutine or
// timer; whatever owns a Machine decides the pacing.
type TickSource interface {
	Ticks() <-chan struct{}
}

// OperatorControl is the narrow operator-facing surface a console or
// command-line front end drives a running Machine through. It is
// intentionally thin: spec.md places a full operator CLI out of scope,
// leaving only pause/resume/dump as the external collaborator's contract.
type OperatorControl interface {
	Pause()
	Resume()
	RequestDump() string
}

// TextSink is what emu/devices/printer writes translated, carriage-
// controlled text to: a file, an in-memory buffer, or a test double.
type TextSink interface {
	Write([]byte) (int, error)
}

// TextSource is what emu/devices/reader draws card images from, one
// line (one card) per call; ok is false once the deck is exhausted.
type TextSource interface {
	ReadLine() (string, bool)
}
