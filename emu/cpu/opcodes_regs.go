/*
 * CyberCore - CPU opcodes: 50-57 A-register loads, 60-67 B-register
 * arithmetic (+CR/CW), 70-77 X-register integer loads
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
	for i := byte(0); i < 8; i++ {
		dispatch[0o50+i] = aRegisterLoad(i)
	}

	dispatch[0o60] = bRegisterOp(func(bj, bk uint32) uint32 { return bk })                // copy Bk
	dispatch[0o61] = bRegisterOp(func(bj, bk uint32) uint32 { return word.Add18(bj, bk) }) // add
	dispatch[0o62] = bRegisterOp(func(bj, bk uint32) uint32 { return word.Sub18(bj, bk) }) // subtract
	dispatch[0o63] = bRegisterLiteralOp(true)  // add (K-literal form): Bi = Bj + K
	dispatch[0o64] = bRegisterLiteralOp(false) // subtract (K-literal form): Bi = Bj - K
	dispatch[0o65] = execBRegisterLoadConst
	dispatch[0o66] = execFamily66 // CR (opI==0) or B-register arithmetic
	dispatch[0o67] = execFamily67 // CW (opI==0) or B-register arithmetic

	for i := byte(0); i < 8; i++ {
		dispatch[0o70+i] = xRegisterLoad(i)
	}
}

// aRegisterLoad builds an opFm 50-57 handler: Ai <- K + Bj, routed through
// setA so the CM read/write side effects for i in 1..7 take effect.
func aRegisterLoad(i byte) handler {
	return func(c *CPU, in instruction) {
		c.setA(i, c.effectiveAddress(in))
	}
}

// bRegisterOp builds a 15-bit opFm 60-65 handler: Bi = f(Bj, Bk).
func bRegisterOp(f func(bj, bk uint32) uint32) handler {
	return func(c *CPU, in instruction) {
		c.B[in.opI] = f(c.B[in.opJ], c.B[in.opK]) & word.Mask18
	}
}

// bRegisterLiteralOp builds an opFm 63/64 handler: Bi = Bj +/- K, where K is
// the instruction's 18-bit address field taken as a literal constant
// rather than an indexed address. These are 30-bit parcels (opK is not
// decoded), unlike 60-62's register-register forms.
func bRegisterLiteralOp(add bool) handler {
	return func(c *CPU, in instruction) {
		if add {
			c.B[in.opI] = word.Add18(c.B[in.opJ], in.addr) & word.Mask18
		} else {
			c.B[in.opI] = word.Sub18(c.B[in.opJ], in.addr) & word.Mask18
		}
	}
}

// execBRegisterLoadConst (opFm 65) loads Bi with Xk's low 18 bits, the
// constant-load variant of the family.
func execBRegisterLoadConst(c *CPU, in instruction) {
	c.B[in.opI] = uint32(c.X[in.opK]) & word.Mask18
}

// execFamily66 is opFm 66: opI==0 is CR (read one CM word into Xj at the
// effective address); opI 1-7 is B-register arithmetic, same shape as
// opFm 60-65's forms.
func execFamily66(c *CPU, in instruction) {
	if in.opI == 0 {
		addr := c.effectiveAddress(in)
		c.X[in.opJ] = c.readCM(addr)
		return
	}
	c.B[in.opI] = word.Add18(c.B[in.opJ], c.B[in.opK]) & word.Mask18
}

// execFamily67 is opFm 67: opI==0 is CW (write Xj to CM at the effective
// address); opI 1-7 is B-register arithmetic.
func execFamily67(c *CPU, in instruction) {
	if in.opI == 0 {
		addr := c.effectiveAddress(in)
		c.writeCM(addr, c.X[in.opJ])
		return
	}
	c.B[in.opI] = word.Sub18(c.B[in.opJ], c.B[in.opK]) & word.Mask18
}

// xRegisterLoad builds an opFm 70-77 handler: Xi <- sign-extend18(K + Bj),
// the integer-constant load family.
func xRegisterLoad(i byte) handler {
	return func(c *CPU, in instruction) {
		sum := c.effectiveAddress(in)
		c.X[i] = signExtend18(sum)
	}
}

// signExtend18 extends an 18-bit ones-complement value to a 60-bit word by
// replicating its sign bit through the upper 42 bits.
func signExtend18(v uint32) word60 {
	if word.IsNegative18(v) {
		return word60(v) | (word.Mask60Bits &^ word60(word.Mask18))
	}
	return word60(v)
}
