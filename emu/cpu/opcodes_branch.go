/*
 * CyberCore - CPU opcodes: 00 error-exit, 01 RJ/XJ family, 02-07 jumps
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
	dispatch[0o00] = execErrorExit
	dispatch[0o01] = execFamily01

	dispatch[0o02] = execUnconditionalJump
	dispatch[0o03] = jumpIfBCompare(func(bj, bk uint32) bool { return bj == bk })
	dispatch[0o04] = jumpIfBCompare(func(bj, bk uint32) bool { return bj != bk })
	dispatch[0o05] = jumpIfBCompare(func(bj, bk uint32) bool { return word.IsNegative18(bj) })
	dispatch[0o06] = jumpIfBCompare(func(bj, bk uint32) bool { return !word.IsNegative18(bj) })
	dispatch[0o07] = jumpIfBCompare(func(bj, bk uint32) bool { return bj < bk })
}

// execErrorExit is opFm 00: if error-exit jumping is enabled and the CPU is
// not already in monitor mode, take the exit package/MA path; otherwise
// this is an illegal instruction.
func execErrorExit(c *CPU, in instruction) {
	if c.ExchangeEnable && !c.Monitor {
		c.writeExitPackage()
		c.P = 0
		c.ExchangeJump(c.MA, true)
		return
	}
	c.illegalInstruction()
}

// execFamily01 dispatches opFm 01's opI-selected sub-operations: RJ
// (return jump), REC/WEC (block ECS read/write), XJ (exchange jump,
// parcel-0 only), RXj/WXj (single-word ECS transfer), RC (read the
// free-running cycle counter).
func execFamily01(c *CPU, in instruction) {
	switch in.opI {
	case 0: // RJ: store return address at target, jump to target+1
		target := c.effectiveAddress(in)
		c.writeCM(target, word60(c.P))
		c.branchTo(target + 1)
	case 1: // REC: block extended-memory read, CM <- ECS
		c.blockECSTransfer(in, true)
	case 2: // WEC: block extended-memory write, ECS <- CM
		c.blockECSTransfer(in, false)
	case 3: // XJ: exchange jump, only legal at parcel 0
		if c.opOffset != 30 { // header+address already consumed 30 bits of a fresh 60-bit word
			c.illegalInstruction()
			return
		}
		c.ExchangeJump(c.effectiveAddress(in), false)
	case 4: // RXj: single-word ECS read into Xj (the mnemonic's own j)
		addr := c.effectiveAddress(in)
		c.X[in.opJ] = c.ECS.GetWord(c.RAecs + addr)
	case 5: // WXj: single-word ECS write from Xj
		addr := c.effectiveAddress(in)
		c.ECS.PutWord(c.RAecs+addr, c.X[in.opJ])
	case 6: // RC: read the free-running cycle counter into X[opK]; spec.md's
		// non-goals accept this in place of a microsecond-accurate clock.
		c.X[in.opK] = word60(c.Cycles)
	default:
		c.illegalInstruction()
	}
}

// ecsZeroFillMask selects the EM-address bits that, on the models wiring
// this feature, request zero-fill instead of a real ECS access.
const ecsZeroFillMask = 1<<21 | 1<<22

// blockECSTransfer moves X0 (word count) words between CM (at the
// effective address, RA-relative) and ECS (starting at RAecs), in the
// direction toCM indicates. A negative-zero word count completes as a
// zero-length transfer with a normal exit; any other negative count, or
// a transfer that would run CM past FL or ECS past FLecs, raises
// AddressOutOfRange instead of moving anything. A non-zero bit 21 or 22
// of the ECS address selects zero-fill: the destination is zeroed
// rather than read from ECS.
func (c *CPU) blockECSTransfer(in instruction, toCM bool) {
	cmAddr := c.effectiveAddress(in)
	ecsAddr := c.RAecs

	rawCount := uint32(c.X[0]) & word.Mask18
	if rawCount == word.Mask18 { // negative zero
		return
	}
	if word.IsNegative18(rawCount) {
		c.ExitCondition |= ExitAddressRange
		return
	}
	count := rawCount

	// REC/WEC carry no separate ECS offset operand: the transfer always
	// starts at RAecs itself, so the ECS-side bound is just the word count
	// against FLecs, the same way cmAddr+count is checked against FL.
	if cmAddr+count > c.FL || count > c.FLecs {
		c.ExitCondition |= ExitAddressRange
		return
	}

	zeroFill := ecsAddr&ecsZeroFillMask != 0
	c.CM.BlockTransfer(c.RA+cmAddr, c.ECS, ecsAddr, int(count), !toCM, zeroFill)
}

// execUnconditionalJump is opFm 02 (UJ): P <- K + Bj.
func execUnconditionalJump(c *CPU, in instruction) {
	c.branchTo(c.effectiveAddress(in))
}

// jumpIfBCompare builds an opFm 03-07 handler: jump to K+Bj when cond(Bj,
// Bi) holds. The 30-bit parcel has room for only two register fields
// (opI, opJ) alongside the 18-bit address, so the comparison's second
// operand is Bi rather than a third decoded field.
func jumpIfBCompare(cond func(bj, bi uint32) bool) handler {
	return func(c *CPU, in instruction) {
		if cond(c.B[in.opJ], c.B[in.opI]) {
			c.branchTo(c.effectiveAddress(in))
		}
	}
}
