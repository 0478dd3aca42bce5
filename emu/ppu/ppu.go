/*
 * CyberCore - Peripheral processor barrel
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

// Package ppu implements a single peripheral processor: an 18-bit A, 12-bit
// P and Q, a 4096-word private memory, and the 64-entry opcode table shared
// by every PP in the barrel. A Machine holds an array of PP values and
// steps each one in round-robin order against the shared Bus (central
// memory and channel fabric).
package ppu

import (
	"github.com/rcornwell/cyber-core/emu/channel"
	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/word"
)

// MemSize is the PP's private address space: 4096 12-bit words.
const MemSize = 4096

// mask18 keeps an 18-bit accumulator value in range.
const mask18 = uint32(0o777777)

// Bus is what a PP needs from the machine it lives in: central memory
// access (relocated through R), the channel fabric, the central
// processor's exchange-jump request path, and the CPU's current program
// address for RPN. A Machine implements Bus; ppu never imports machine, so
// there is no import cycle between the two.
type Bus interface {
	ReadCM(addr uint32) word.CpWord
	WriteCM(addr uint32, data word.CpWord)
	Channel(id device.ChannelID) *channel.Channel
	RequestExchange(addr word.PpWord, monitor bool) bool
	CPUProgramAddress() word.PpWord
}

// busyKind distinguishes which multi-word instruction owns the PP's
// busy/suspend state.
type busyKind int

const (
	busyNone busyKind = iota
	busyInputMulti
	busyOutputMulti
	busyCRM
	busyCWM
	busyExchange
)

// PP is one peripheral processor's register and memory state.
type PP struct {
	A uint32 // 18-bit accumulator, kept in the low bits of a host uint32
	P word.PpWord
	Q word.PpWord
	R uint32 // 24-bit relocation/bound register, set by LRD/SRD
	Mem [MemSize]word.PpWord

	OpF byte // opcode, 0-63
	OpD byte // opcode's low 6-bit field

	Busy        bool
	busyKind    busyKind
	busyAddr    word.PpWord
	busyCMAddr  uint32
	busyCount   uint32
	busyChannel device.ChannelID
	busyArg     word.PpWord // exchange address pending acceptance
	busyMonitor bool

	Stack    [8]word.PpWord
	stackLen int

	Channel device.ChannelID // this PP's default channel (config-assigned)
}

// New returns a PP with an empty memory image and all registers at zero.
func New() *PP {
	return &PP{Channel: device.NoChannel}
}

// fetchOperand reads the word at P and advances P by one (12-bit wrap).
func (pp *PP) fetchOperand() word.PpWord {
	v := pp.Mem[pp.P&0o7777]
	pp.P = word.Add12(pp.P, 1)
	return v
}

// pushReturn records a return address on the 8-entry instruction stack
// RJM-style subroutine linkage uses; entries beyond depth 8 displace the
// oldest rather than trapping (the hardware's stack is a ring).
func (pp *PP) pushReturn(addr word.PpWord) {
	if pp.stackLen < len(pp.Stack) {
		pp.Stack[pp.stackLen] = addr
		pp.stackLen++
		return
	}
	copy(pp.Stack[:], pp.Stack[1:])
	pp.Stack[len(pp.Stack)-1] = addr
}

// operandN resolves an "N-form" operand: opD itself when nonzero, else the
// next memory word (opD==0 means the literal didn't fit in 6 bits).
func (pp *PP) operandN() word.PpWord {
	if pp.OpD != 0 {
		return word.PpWord(pp.OpD)
	}
	return pp.fetchOperand()
}

// addressD resolves a "D-form" (direct) address the same way: opD itself
// when nonzero, else the next word holds the full 12-bit address.
func (pp *PP) addressD() word.PpWord {
	if pp.OpD != 0 {
		return word.PpWord(pp.OpD)
	}
	return pp.fetchOperand()
}

// addressI resolves an "I-form" (indirect) address: one more memory read
// through the D-form address.
func (pp *PP) addressI() word.PpWord {
	return pp.Mem[pp.addressD()&0o7777]
}

// addressM resolves an "M-form" (indexed) address: the next word (always
// fetched) plus the PP's own zero-page cell numbered opD, added with
// ones-complement end-around carry over 12 bits.
func (pp *PP) addressM() word.PpWord {
	base := pp.fetchOperand()
	idx := pp.Mem[pp.OpD&0o77]
	return word.Add12(base, idx)
}

// cmAddress is the CM word address a CR/CW instruction targets: the A
// register relocated by R, the PP's relocation/bound register. R holds 24
// bits (LRD loads it from two 12-bit words); no wider value is kept.
func (pp *PP) cmAddress() uint32 {
	return word.Add24(pp.A&word.Mask24, pp.R&word.Mask24) & 0o77777777
}

// Step executes one PP cycle. If a multi-word instruction left the PP
// busy, this advances that instruction's state machine by one word
// instead of fetching a new opcode.
func (pp *PP) Step(bus Bus) {
	if pp.Busy {
		pp.resume(bus)
		return
	}
	op := pp.fetchOperand()
	pp.OpF = byte(op>>6) & 0o77
	pp.OpD = byte(op) & 0o77
	if h := dispatch[pp.OpF]; h != nil {
		h(pp, bus)
	}
}

// resume continues a busy multi-word instruction by one word per call, per
// the shared cooperative state machine: each invocation transfers one
// word, decrements the remaining count (an 18-bit ones-complement
// register, so "decrement" is add-the-complement-of-one), and clears Busy
// when the count reaches zero or the channel drops inactive.
func (pp *PP) resume(bus Bus) {
	switch pp.busyKind {
	case busyInputMulti, busyOutputMulti:
		ch := bus.Channel(pp.busyChannel)
		if ch == nil || !ch.Active {
			pp.Busy = false
			return
		}
		if pp.busyKind == busyInputMulti {
			pp.Mem[pp.busyAddr&0o7777] = word.PpWord(ch.In())
		} else {
			ch.Out(uint16(pp.Mem[pp.busyAddr&0o7777]))
		}
		pp.busyAddr = word.Add12(pp.busyAddr, 1)
		pp.busyCount = word.Sub18(pp.busyCount, 1)
		if pp.busyCount == 0 || !ch.Active {
			pp.Busy = false
		}

	case busyCRM, busyCWM:
		if pp.busyKind == busyCRM {
			unpackCM(bus.ReadCM(pp.busyCMAddr), pp.Mem[:], pp.busyAddr)
		} else {
			bus.WriteCM(pp.busyCMAddr, packCM(pp.Mem[:], pp.busyAddr))
		}
		pp.busyAddr = word.Add12(pp.busyAddr, 5)
		pp.busyCMAddr++
		pp.busyCount = word.Sub18(pp.busyCount, 1)
		if pp.busyCount == 0 {
			pp.Busy = false
		}

	case busyExchange:
		if bus.RequestExchange(pp.busyArg, pp.busyMonitor) {
			pp.Busy = false
		}
	}
}

// unpackCM splits a 60-bit CM word into five 12-bit PP words, most
// significant parcel first, starting at dest (12-bit wrapping).
func unpackCM(w word.CpWord, mem []word.PpWord, dest word.PpWord) {
	for i := 0; i < 5; i++ {
		shift := uint(48 - 12*i)
		mem[(dest+word.PpWord(i))&0o7777] = word.PpWord((w >> shift) & 0o7777)
	}
}

// packCM is the inverse of unpackCM.
func packCM(mem []word.PpWord, src word.PpWord) word.CpWord {
	var w word.CpWord
	for i := 0; i < 5; i++ {
		shift := uint(48 - 12*i)
		w |= word.CpWord(mem[(src+word.PpWord(i))&0o7777]&0o7777) << shift
	}
	return w
}
