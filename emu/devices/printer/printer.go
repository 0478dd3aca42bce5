/*
 * CyberCore - Line printer channel device
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

// Package printer implements the representative line printer device: a
// text sink fed two 6-bit display-code characters per 12-bit channel
// word, with a small set of carriage-control function codes standing in
// for a loadable FCB tape.
package printer

import (
	"io"
	"log/slog"
	"strings"

	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/word"
	"github.com/rcornwell/cyber-core/util/debug"
)

// Function codes the controller recognizes.
const (
	funcSingleSpace = 0o0001 + iota
	funcDoubleSpace
	funcTopOfForm
	funcChannel7Jump
	funcPrint
	funcSelect
	funcStatusRequest
)

const (
	statusReady    uint16 = 1 << 0
	statusBusy     uint16 = 1 << 1
	statusNotReady uint16 = 1 << 2

	// linesPerForm and channel7Line model a single fixed carriage-control
	// tape (channel 7 punched near the bottom of the form) rather than a
	// loadable FCB image; spec.md names the FCB-image feature as a
	// non-goal ("emulation of every peripheral variant"), so one
	// representative band is all this template carries.
	linesPerForm = 66
	channel7Line = 60
)

// displayCode is the 64-entry 6-bit display-code-to-ASCII translate
// table: space, A-Z, 0-9, and a representative set of punctuation
// characters in display-code order.
var displayCode = [64]byte{
	' ', 'A', 'B', 'C', 'D', 'E', 'F', 'G',
	'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W',
	'X', 'Y', 'Z', '0', '1', '2', '3', '4',
	'5', '6', '7', '8', '9', '+', '-', '*',
	'/', '(', ')', '$', '=', ' ', ',', '.',
	'#', '[', ']', '%', '"', '_', '!', '&',
	'\'', '?', '<', '>', '@', '\\', '^', ';',
}

// Printer is one printer attached to a channel: a line buffer filled by
// Out() pulses, flushed to a TextSink on funcPrint, with carriage control
// driven by the single/double-space, top-of-form, and channel-7 jump
// function codes.
type Printer struct {
	channel   device.ChannelID
	equipment uint
	sink      io.Writer

	line    []byte
	lineNum int
	ready   bool

	debugMask debug.Mask
}

// Debug enables the named debug options (comma or space separated),
// per util/debug's shared vocabulary.
func (p *Printer) Debug(names string) error {
	mask, err := debug.ParseAll(names)
	if err != nil {
		return err
	}
	p.debugMask |= mask
	return nil
}

// New returns a Printer writing to sink, which satisfies the
// emu/machine.TextSink contract (Write([]byte) (int, error)).
func New(ch device.ChannelID, equipment uint, sink io.Writer) *Printer {
	return &Printer{channel: ch, equipment: equipment, sink: sink, ready: true}
}

func charsOf(data word.PpWord) (byte, byte) {
	hi := displayCode[(data>>6)&0o77]
	lo := displayCode[data&0o77]
	return hi, lo
}

// Out appends the two display-code characters packed into one 12-bit
// channel word to the current line buffer.
func (p *Printer) Out(data word.PpWord) {
	hi, lo := charsOf(data)
	p.line = append(p.line, hi, lo)
}

// In always returns zero; the printer is a pure sink.
func (p *Printer) In() word.PpWord { return 0 }

// Func dispatches a function code to the appropriate carriage-control or
// data-transfer handler.
func (p *Printer) Func(code word.PpWord) device.Func {
	switch int(code) {
	case funcPrint:
		p.flushLine()
		return device.Accepted
	case funcSingleSpace:
		p.flushLine()
		p.advance(1)
		return device.Processed
	case funcDoubleSpace:
		p.flushLine()
		p.advance(2)
		return device.Processed
	case funcTopOfForm:
		p.flushLine()
		io.WriteString(p.sink, "\f")
		p.lineNum = 0
		return device.Processed
	case funcChannel7Jump:
		p.flushLine()
		p.jumpToChannel7()
		return device.Processed
	case funcSelect:
		p.ready = true
		return device.Processed
	case funcStatusRequest:
		return device.Accepted
	}
	return device.Declined
}

// flushLine writes the accumulated line, trimmed of trailing spaces, to
// the sink without advancing the form; spacing is a separate function.
func (p *Printer) flushLine() {
	if len(p.line) == 0 {
		return
	}
	text := strings.TrimRight(string(p.line), " ")
	if p.debugMask&debug.Data != 0 {
		slog.Debug("printer line", "equipment", p.equipment, "text", text)
	}
	io.WriteString(p.sink, text)
	p.line = p.line[:0]
}

func (p *Printer) advance(lines int) {
	for i := 0; i < lines; i++ {
		io.WriteString(p.sink, "\n")
		p.lineNum++
		if p.lineNum >= linesPerForm {
			io.WriteString(p.sink, "\f")
			p.lineNum = 0
		}
	}
}

// jumpToChannel7 advances to the fixed channel-7 punch line, wrapping to
// a fresh form if the current position is already past it.
func (p *Printer) jumpToChannel7() {
	for {
		io.WriteString(p.sink, "\n")
		p.lineNum++
		if p.lineNum == channel7Line {
			return
		}
		if p.lineNum >= linesPerForm {
			io.WriteString(p.sink, "\f")
			p.lineNum = 0
		}
	}
}

func (p *Printer) Activate()         {}
func (p *Printer) Disconnect()       { p.flushLine() }
func (p *Printer) IO()               {}
func (p *Printer) Equipment() uint   { return p.equipment }
func (p *Printer) Full() bool        { return false }
func (p *Printer) Empty() bool       { return p.ready }
func (p *Printer) Flags() uint16 {
	if p.ready {
		return statusReady
	}
	return statusNotReady
}
