/*
 * CyberCore - Exchange-jump engine
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

package cpu

// exchangeWordCount is the size of the swapped register block: P+A0, then
// one word each for RA, FL, exitMode, RAecs, FLecs, MA, and spare, each
// paired with one A register and one B register, then X0..X7 — 16 CM
// words total, per spec.md §4.7.
const exchangeWordCount = 16

// atParcelBoundary reports whether the CPU can accept an exchange jump
// immediately: stopped, or positioned exactly at the start of a fresh
// instruction word.
func (c *CPU) atParcelBoundary() bool {
	return c.Stopped || c.opOffset == 60
}

// RequestExchange is the PP-facing entry point (EXN/MXN/MAN): it returns
// true if the exchange happened immediately, false if the CPU was not at
// a parcel boundary and the request must be retried (the PP busy-waits).
func (c *CPU) RequestExchange(addr uint32, monitor bool) bool {
	if !c.atParcelBoundary() {
		return false
	}
	c.ExchangeJump(addr, monitor)
	return true
}

// ExchangeJump performs the unconditional 16-word swap between the
// exchange package at addr and the CPU's register file, then starts the
// CPU with a fresh prefetch from the new P. If addr leaves no room for a
// full exchange package within CM, the swap is skipped (no memory
// modified) and the CPU still starts, matching the documented "undefined
// state" behavior of the real hardware rather than synthesizing a fault
// the hardware never raised.
func (c *CPU) ExchangeJump(addr uint32, monitor bool) {
	if c.CM.CheckAddr(addr + exchangeWordCount - 1) {
		c.swap(addr, true)
	}
	c.Monitor = monitor
	c.voidStack()
	c.Stopped = false
	c.opOffset = 60
	c.fetchWord()
}

// exitModeFieldWidth is the width of the RA/FL ECS fields packed into the
// exchange package: 24 bits on classic models, 30 on expanded-address
// models (the ExpandedAddr flag).
func (c *CPU) exitModeFieldWidth() uint {
	if c.ExpandedAddr {
		return 30
	}
	return 24
}

// swap exchanges the 16-word block at addr with the CPU's register file.
// When bidirectional is true this is a full exchange jump (the old
// register file is written out, the new one read in); when false (the
// writeExitPackage case) only the write-out half runs.
func (c *CPU) swap(addr uint32, bidirectional bool) {
	words := c.packExchangePackage()
	if bidirectional {
		for i := 0; i < exchangeWordCount; i++ {
			old := words[i]
			words[i] = c.CM.GetWord(addr + uint32(i))
			c.CM.PutWord(addr+uint32(i), old)
		}
		c.unpackExchangePackage(words)
		return
	}
	for i := 0; i < exchangeWordCount; i++ {
		c.CM.PutWord(addr+uint32(i), words[i])
	}
}

// controlFieldShift and controlFieldMask place a control word's single
// 24-bit field at bits 36-59, above A's 18 bits (18-35) and B's 18 bits
// (0-17), per spec.md §4.7's one-field-per-word layout (RA_cm+A1+B1,
// FL_cm+A2+B2, and so on). A wider ECS field (expanded-address models)
// is masked to its own width before packing and simply loses any bits
// above 59 rather than colliding with A or B.
const (
	controlFieldShift = 36
	controlFieldMask  = 0o77777777 // 24 bits
)

// packExchangePackage lays out the current register file in the 16-word
// exchange format: word0 = P|A0, words1-7 = RA/FL/exitMode/RAecs/FLecs/MA/
// spare each paired with one A register and one B register, words8-15 =
// X0..X7.
func (c *CPU) packExchangePackage() [exchangeWordCount]word60 {
	var w [exchangeWordCount]word60
	w[0] = (word60(c.P) << 18) | word60(c.A[0])

	fieldWidth := c.exitModeFieldWidth()
	ecsMask := word60(1)<<fieldWidth - 1

	w[1] = packControlWord(word60(c.RA), c.A[1], c.B[1])
	w[2] = packControlWord(word60(c.FL), c.A[2], c.B[2])
	w[3] = packControlWord(word60(c.ExitMode), c.A[3], c.B[3])
	w[4] = packControlWord(word60(c.RAecs)&ecsMask, c.A[4], c.B[4])
	w[5] = packControlWord(word60(c.FLecs)&ecsMask, c.A[5], c.B[5])
	w[6] = packControlWord(word60(c.MA), c.A[6], c.B[6])
	w[7] = (word60(c.A[7]) << 18) | word60(c.B[7])

	for i := 0; i < 8; i++ {
		w[8+i] = c.X[i]
	}
	return w
}

// packControlWord folds one RA/FL-style field with one A and one B
// register into a single 60-bit exchange word: field at bits 36-59, a at
// bits 18-35, b at bits 0-17.
func packControlWord(field word60, a, b uint32) word60 {
	return (field << controlFieldShift) | (word60(a) << 18) | word60(b)
}

// unpackExchangePackage is the exact inverse of packExchangePackage.
func (c *CPU) unpackExchangePackage(w [exchangeWordCount]word60) {
	c.P = uint32(w[0]>>18) & 0o777777
	c.A[0] = uint32(w[0]) & 0o777777

	c.RA = uint32(w[1]>>controlFieldShift) & controlFieldMask
	c.A[1] = uint32(w[1]>>18) & 0o777777
	c.B[1] = uint32(w[1]) & 0o777777

	c.FL = uint32(w[2]>>controlFieldShift) & controlFieldMask
	c.A[2] = uint32(w[2]>>18) & 0o777777
	c.B[2] = uint32(w[2]) & 0o777777

	c.ExitMode = uint32(w[3]>>controlFieldShift) & controlFieldMask
	c.A[3] = uint32(w[3]>>18) & 0o777777
	c.B[3] = uint32(w[3]) & 0o777777

	fieldWidth := c.exitModeFieldWidth()
	ecsMask := uint32(1)<<fieldWidth - 1
	c.RAecs = uint32(w[4]>>controlFieldShift) & ecsMask
	c.A[4] = uint32(w[4]>>18) & 0o777777
	c.B[4] = uint32(w[4]) & 0o777777

	c.FLecs = uint32(w[5]>>controlFieldShift) & ecsMask
	c.A[5] = uint32(w[5]>>18) & 0o777777
	c.B[5] = uint32(w[5]) & 0o777777

	c.MA = uint32(w[6]>>controlFieldShift) & controlFieldMask
	c.A[6] = uint32(w[6]>>18) & 0o777777
	c.B[6] = uint32(w[6]) & 0o777777

	c.A[7] = uint32(w[7]>>18) & 0o777777
	c.B[7] = uint32(w[7]) & 0o777777

	for i := 0; i < 8; i++ {
		c.X[i] = w[8+i]
	}
	c.B[0] = 0
}

// CPUProgramAddress satisfies the ppu.Bus surface RPN reads from.
func (c *CPU) CPUProgramAddress() uint32 {
	return c.P
}
