/*
 * CyberCore - Interlock register channel device
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

// Package interlock implements the interlock register channel device: a
// 128-bit, bit-addressable register PPs use to coordinate exclusive
// access to shared resources across the PP barrel, driven by direct
// pulses rather than a function-code transfer protocol.
package interlock

import (
	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/word"
)

// Operation codes packed into the top bits of an Out() pulse; the low 7
// bits of the word select the addressed bit (0-127).
const (
	opRead      = iota // return the bit's value, no side effect
	opTest             // same as opRead under a distinct mnemonic
	opClear            // return the bit's prior value, then clear it
	opTestClear        // same as opClear under a distinct mnemonic
	opSet              // return the bit's prior value, then set it
	opTestSet          // same as opSet under a distinct mnemonic
	opClearAll         // clear every bit, ignoring the addressed-bit field
)

const (
	opShift  = 7
	bitMask  = 0o177 // 7 bits: addresses 0-127
	activeBit uint16 = 1 << 0
	fullBit   uint16 = 1 << 1
)

// Interlock is the 128-bit bit-addressable register, held as two 64-bit
// halves.
type Interlock struct {
	reg       [2]uint64
	result    word.PpWord
	equipment uint
	channel   device.ChannelID
}

// New returns an Interlock with every bit clear.
func New(ch device.ChannelID, equipment uint) *Interlock {
	return &Interlock{channel: ch, equipment: equipment}
}

func (il *Interlock) getBit(n int) bool {
	half, bit := n/64, uint(n%64)
	return il.reg[half]&(uint64(1)<<bit) != 0
}

func (il *Interlock) setBit(n int, v bool) {
	half, bit := n/64, uint(n%64)
	if v {
		il.reg[half] |= uint64(1) << bit
	} else {
		il.reg[half] &^= uint64(1) << bit
	}
}

func boolWord(v bool) word.PpWord {
	if v {
		return 1
	}
	return 0
}

// Out decodes a pulse into an operation and bit address and performs it,
// latching the reported result for the next In().
func (il *Interlock) Out(data word.PpWord) {
	op := int(data>>opShift) & 0o17
	n := int(data) & bitMask

	switch op {
	case opRead, opTest:
		il.result = boolWord(il.getBit(n))
	case opClear, opTestClear:
		il.result = boolWord(il.getBit(n))
		il.setBit(n, false)
	case opSet, opTestSet:
		il.result = boolWord(il.getBit(n))
		il.setBit(n, true)
	case opClearAll:
		il.reg[0] = 0
		il.reg[1] = 0
		il.result = 0
	default:
		il.result = 0
	}
}

// In returns the result latched by the most recent Out pulse.
func (il *Interlock) In() word.PpWord { return il.result }

// Func, Activate, Disconnect, IO and Equipment satisfy device.Device: the
// interlock register has no
// function-code protocol, so every code is declined.
func (il *Interlock) Func(code word.PpWord) device.Func { return device.Declined }
func (il *Interlock) Activate()                         {}
func (il *Interlock) Disconnect()                       {}
func (il *Interlock) IO()                                {}
func (il *Interlock) Equipment() uint                    { return il.equipment }

// PCIDevice methods: the register is always ready, like the RTC.
func (il *Interlock) Full() bool    { return true }
func (il *Interlock) Empty() bool   { return true }
func (il *Interlock) Flags() uint16 { return activeBit | fullBit }
