/*
 * CyberCore - CPU addressing and operand helpers
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

// handler executes one decoded parcel.
type handler func(c *CPU, in instruction)

var dispatch [64]handler

// effectiveAddress resolves a 30-bit parcel's address operand by indexing
// the literal K field with B[opJ], the convention the jump, B-compare and
// A-load families all share.
func (c *CPU) effectiveAddress(in instruction) uint32 {
	return word.Add18(in.addr, c.B[in.opJ])
}

// checkCMAddr flags ExitAddressRange and returns false when addr falls
// outside the configured RA/FL window.
func (c *CPU) checkCMAddr(addr uint32) bool {
	if addr >= c.FL {
		c.ExitCondition |= ExitAddressRange
		return false
	}
	return true
}

// readCM applies the RA offset and FL bounds check before reading CM.
func (c *CPU) readCM(addr uint32) word60 {
	if !c.checkCMAddr(addr) {
		return 0
	}
	return c.CM.GetWord(c.RA + addr)
}

// writeCM applies the RA offset and FL bounds check before writing CM.
func (c *CPU) writeCM(addr uint32, v word60) {
	if !c.checkCMAddr(addr) {
		return
	}
	c.CM.PutWord(c.RA+addr, v)
}
