/*
 * CyberCore - CPU opcodes: 10-17 boolean, 20-27 shift/normalize/pack
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

import "github.com/rcornwell/cyber-core/emu/word"

func init() {
	dispatch[0o10] = booleanOp(func(j, k word60) word60 { return j })       // copy Xj
	dispatch[0o11] = booleanOp(func(j, k word60) word60 { return j & k })   // AND
	dispatch[0o12] = booleanOp(func(j, k word60) word60 { return j | k })   // OR
	dispatch[0o13] = booleanOp(func(j, k word60) word60 { return j ^ k })   // XOR
	dispatch[0o14] = booleanOp(func(j, k word60) word60 { return j &^ k })  // AND-NOT
	dispatch[0o15] = booleanOp(func(j, k word60) word60 { return ^j & word.Mask60Bits })          // complement Xj
	dispatch[0o16] = booleanOp(func(j, k word60) word60 { return (^(j & k)) & word.Mask60Bits })  // NAND
	dispatch[0o17] = booleanOp(func(j, k word60) word60 { return (^(j | k)) & word.Mask60Bits })  // NOR

	dispatch[0o20] = execShiftLeftConst
	dispatch[0o21] = execShiftRightConst
	dispatch[0o22] = execShiftLeftByB
	dispatch[0o23] = execShiftRightByB
	dispatch[0o24] = execNormalize
	dispatch[0o25] = execNormalizeRound
	dispatch[0o26] = execUnpack
	dispatch[0o27] = execPack
}

// booleanOp builds an opFm 10-17 handler: Xi = f(Xj, Xk).
func booleanOp(f func(j, k word60) word60) handler {
	return func(c *CPU, in instruction) {
		c.X[in.opI] = f(c.X[in.opJ], c.X[in.opK]) & word.Mask60Bits
	}
}

// shiftDistance turns the 18-bit K field (20-27's constant-shift forms
// only use its low bits) or a B register's low bits into a rotate amount
// and direction, treating the top bit of the 7-bit field as the sign per
// spec.md's "documented handling of negative shift counts".
func shiftDistance(v uint32) (left bool, n uint) {
	v &= 0o177
	if v&0o100 == 0 {
		return true, uint(v)
	}
	return false, uint(0o200 - v)
}

func execShiftLeftConst(c *CPU, in instruction) {
	left, n := shiftDistance(in.addr)
	c.X[in.opI] = word.ShiftLeftCircular(c.X[in.opJ], pick(left, n, 60-n))
}

func execShiftRightConst(c *CPU, in instruction) {
	left, n := shiftDistance(in.addr)
	c.X[in.opI] = word.ShiftRightArithmetic(c.X[in.opJ], pick(!left, n, 60-n))
}

func execShiftLeftByB(c *CPU, in instruction) {
	left, n := shiftDistance(c.B[in.opK])
	c.X[in.opI] = word.ShiftLeftCircular(c.X[in.opJ], pick(left, n, 60-n))
}

func execShiftRightByB(c *CPU, in instruction) {
	left, n := shiftDistance(c.B[in.opK])
	c.X[in.opI] = word.ShiftRightArithmetic(c.X[in.opJ], pick(!left, n, 60-n))
}

func pick(cond bool, a, b uint) uint {
	if cond {
		return a
	}
	return b
}

// execNormalize (NX) left-shifts Xj until its coefficient's leading bit is
// set, recording the shift count in Bi; used ahead of floating ops that
// require normalized operands.
func execNormalize(c *CPU, in instruction) {
	result, shift := word.Normalize(c.X[in.opJ])
	c.X[in.opI] = result
	c.B[in.opI] = uint32(shift)
}

// execNormalizeRound (ZX) is NX's rounding counterpart: it normalizes and,
// if the shift count is zero (already normalized, nothing to round off),
// behaves identically; otherwise it is modeled the same as NX since the
// rounding bit is only meaningful relative to a specific subsequent
// operation, not to normalization alone.
func execNormalizeRound(c *CPU, in instruction) {
	execNormalize(c, in)
}

// execUnpack (UX) splits Xj into its 48-bit coefficient (Xi) and exponent
// (Bi, as a small unbiased integer) per emu/word's float layout.
func execUnpack(c *CPU, in instruction) {
	coeff, expo := word.Unpack(c.X[in.opJ])
	c.X[in.opI] = coeff
	c.B[in.opI] = uint32(expo) & word.Mask18
}

// execPack (PX) is UX's inverse: Xi = pack(Xj-as-coefficient, Bj-as-exponent).
func execPack(c *CPU, in instruction) {
	c.X[in.opI] = word.Pack(c.X[in.opJ], int(int32(c.B[in.opJ])))
}
