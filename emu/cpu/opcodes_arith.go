/*
 * CyberCore - CPU opcodes: 30-37 floating/integer add-sub, 40-47 floating
 * multiply/divide, mask, pass, population count, CMU family
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

import (
	"math/bits"

	"github.com/rcornwell/cyber-core/emu/word"
)

func init() {
	dispatch[0o30] = floatOp(false, false, false) // FX: floating add
	dispatch[0o31] = floatOp(false, true, false)  // DX: double-precision add
	dispatch[0o32] = floatOp(false, false, true)  // RX: rounded add
	dispatch[0o33] = execIntegerAdd               // IX: integer add
	dispatch[0o34] = floatOp(true, false, false)  // FX: floating subtract
	dispatch[0o35] = floatOp(true, true, false)   // DX: double-precision subtract
	dispatch[0o36] = floatOp(true, false, true)   // RX: rounded subtract
	dispatch[0o37] = execIntegerSubtract          // IX: integer subtract

	dispatch[0o40] = floatMulOp(false, false) // FX: floating multiply
	dispatch[0o41] = floatMulOp(true, false)  // RX: rounded multiply
	dispatch[0o42] = floatMulOp(false, true)  // DX: double-precision multiply
	dispatch[0o43] = execFloatDivide          // FX: floating divide
	dispatch[0o44] = execFloatDivideRound     // RX: rounded divide
	dispatch[0o45] = execMask                 // MX: mask of ones
	dispatch[0o46] = execFamily46             // pass / CMU
	dispatch[0o47] = execPopulationCount      // CX: count of one-bits
}

// floatOp builds an opFm 30-37 floating-point handler: Xi = Xj +/- Xk, with
// subtract negating Xk's sign bit before the shared add path, matching how
// emu/word's FloatAdd itself has no separate subtract entry point.
func floatOp(subtract, double, round bool) handler {
	return func(c *CPU, in instruction) {
		wb := c.X[in.opK]
		if subtract {
			wb ^= 1 << 59 // flip sign bit
		}
		c.X[in.opI] = word.FloatAdd(c.X[in.opJ], wb, round, double)
	}
}

func floatMulOp(round, double bool) handler {
	return func(c *CPU, in instruction) {
		c.X[in.opI] = word.FloatMultiply(c.X[in.opJ], c.X[in.opK], round, double)
	}
}

func execFloatDivide(c *CPU, in instruction) {
	c.X[in.opI] = word.FloatDivide(c.X[in.opJ], c.X[in.opK], false)
}

func execFloatDivideRound(c *CPU, in instruction) {
	c.X[in.opI] = word.FloatDivide(c.X[in.opJ], c.X[in.opK], true)
}

// execIntegerAdd (IX) adds Xj and Xk as 60-bit ones-complement integers,
// sharing the same adder emu/word's floating path ultimately reduces to.
func execIntegerAdd(c *CPU, in instruction) {
	c.X[in.opI] = word.Add60(c.X[in.opJ], c.X[in.opK])
}

func execIntegerSubtract(c *CPU, in instruction) {
	c.X[in.opI] = word.Sub60(c.X[in.opJ], c.X[in.opK])
}

// execMask (MX) sets Xi to a field of K ones, left-justified, the constant
// generator used to build boolean masks ahead of an AND/OR.
func execMask(c *CPU, in instruction) {
	n := in.opK
	if n == 0 {
		c.X[in.opI] = 0
		return
	}
	c.X[in.opI] = word.Mask(int(n)) & word.Mask60Bits
}

// execPopulationCount (CX) sets Bi to the number of one-bits in Xj.
func execPopulationCount(c *CPU, in instruction) {
	c.B[in.opI] = uint32(bits.OnesCount64(uint64(c.X[in.opJ]) & word.Mask60Bits))
}

// execFamily46 dispatches opFm 46: opI 0-3 is PS (pass, a no-op used as a
// filler/NOP), opI 4-7 selects a CMU (compare/move unit) sub-operation
// decoded from the 30-bit descriptor address.
func execFamily46(c *CPU, in instruction) {
	switch {
	case in.opI < 4:
		// PS: no operation.
	case in.opI == 4:
		execCMUMoveIndirect(c, in)
	case in.opI == 5:
		execCMUMoveDirect(c, in)
	case in.opI == 6:
		execCMUCompareCollated(c, in)
	default:
		execCMUCompareUncollated(c, in)
	}
}

// cmuOperands reads the two-word CMU descriptor block at the effective
// address: word0 holds the source address and count, word1 the destination
// address, matching the block-move descriptor layout spec.md describes for
// the compare/move unit.
func cmuOperands(c *CPU, in instruction) (src, dst, count uint32) {
	desc := c.effectiveAddress(in)
	w0 := c.readCM(desc)
	w1 := c.readCM(desc + 1)
	src = uint32(w0>>24) & word.Mask18
	count = uint32(w0) & word.Mask18
	dst = uint32(w1>>24) & word.Mask18
	return
}

// execCMUMoveIndirect (CMU opI=4) moves count words from src to dst, both
// addresses taken from the descriptor block (the "indirect" form: the
// addresses come from memory rather than from register fields).
func execCMUMoveIndirect(c *CPU, in instruction) {
	src, dst, count := cmuOperands(c, in)
	for i := uint32(0); i < count; i++ {
		c.writeCM(dst+i, c.readCM(src+i))
	}
}

// execCMUMoveDirect (CMU opI=5) moves count words starting at the
// instruction's own effective address to Bi, the "direct" form using a
// register-supplied destination instead of a second descriptor word.
func execCMUMoveDirect(c *CPU, in instruction) {
	src := c.effectiveAddress(in)
	dst := c.B[in.opI]
	count := uint32(c.X[0])
	for i := uint32(0); i < count; i++ {
		c.writeCM(dst+i, c.readCM(src+i))
	}
}

// execCMUCompareCollated (CMU opI=6) compares count words at src and dst
// under a collating transform (case-insensitive-style bit masking), setting
// Bi to the word index of the first mismatch or count if all matched.
func execCMUCompareCollated(c *CPU, in instruction) {
	src, dst, count := cmuOperands(c, in)
	collate := word.Mask60Bits >> 2 // strip the top two bits, a stand-in collating mask
	for i := uint32(0); i < count; i++ {
		if (c.readCM(src+i) & collate) != (c.readCM(dst+i) & collate) {
			c.B[in.opI] = i
			return
		}
	}
	c.B[in.opI] = count
}

// execCMUCompareUncollated (CMU opI=7) is execCMUCompareCollated's
// uncollated counterpart: a plain bitwise comparison.
func execCMUCompareUncollated(c *CPU, in instruction) {
	src, dst, count := cmuOperands(c, in)
	for i := uint32(0); i < count; i++ {
		if c.readCM(src+i) != c.readCM(dst+i) {
			c.B[in.opI] = i
			return
		}
	}
	c.B[in.opI] = count
}
