/*
 * CyberCore - CP/PP mnemonic disassembler
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

// Package disassemble renders CP instruction parcels and PP instruction
// words as mnemonic text, for the operator dump path only; nothing under
// emu/cpu or emu/ppu imports it. It mirrors the dispatch tables those two
// packages build at init time rather than decoding every opI sub-case, the
// same non-bug-for-bug spirit emu/cpu.parcelLength documents for length
// classification.
package disassemble

import "fmt"

// cpMnemonic is indexed by opFm (6 bits, the top of a CP instruction's
// 12-bit header). Where an opFm family's mnemonic actually depends on opI
// (01, 46, 66, 67), the entry names the family rather than one member.
var cpMnemonic = [64]string{
	0o00: "PS",  // error-exit / pass
	0o01: "RJ",  // RJ/REC/WEC/XJ/RXj/WXj/RC family, selected by opI
	0o02: "UJ",  // unconditional jump
	0o03: "ZJ",  // jump Bj == Bk
	0o04: "NJ",  // jump Bj != Bk
	0o05: "PJ",  // jump Bj plus (sign clear)
	0o06: "MJ",  // jump Bj minus (sign set)
	0o07: "LT",  // jump Bj < Bk
	0o10: "BX",  // copy Xk
	0o11: "LX",  // AND
	0o12: "LX",  // OR
	0o13: "LX",  // XOR
	0o14: "LX",  // AND-NOT
	0o15: "COM", // complement Xj
	0o16: "LX",  // NAND
	0o17: "LX",  // NOR
	0o20: "SHN", // shift left, constant count
	0o21: "SHN", // shift right, constant count
	0o22: "SHN", // shift left, Bj count
	0o23: "SHN", // shift right, Bj count
	0o24: "NX",  // normalize
	0o25: "RX",  // normalize and round
	0o26: "UX",  // unpack
	0o27: "PX",  // pack
	0o30: "FX",  // floating add
	0o31: "DX",  // double-precision add
	0o32: "RX",  // rounded add
	0o33: "IX",  // integer add
	0o34: "FX",  // floating subtract
	0o35: "DX",  // double-precision subtract
	0o36: "RX",  // rounded subtract
	0o37: "IX",  // integer subtract
	0o40: "FX",  // floating multiply
	0o41: "RX",  // rounded multiply
	0o42: "DX",  // double-precision multiply
	0o43: "FX",  // floating divide
	0o44: "RX",  // rounded divide
	0o45: "MX",  // mask of ones
	0o46: "CMU", // pass / CMU family, selected by opI
	0o47: "CX",  // population count
	0o60: "BX",  // copy Bk
	0o61: "BX",  // add
	0o62: "BX",  // subtract
	0o63: "BX",  // add, K-literal form
	0o64: "BX",  // subtract, K-literal form
	0o65: "BX",  // load constant
	0o66: "CR",  // CR / B-register arithmetic family, selected by opI
	0o67: "CW",  // CW / B-register arithmetic family, selected by opI
}

func init() {
	for i := 0; i < 8; i++ {
		cpMnemonic[0o50+i] = fmt.Sprintf("A%d", i)
		cpMnemonic[0o70+i] = fmt.Sprintf("X%d", i)
	}
}

// CPInstruction is one decoded CP parcel header plus its operand fields.
// Addr is only meaningful when Long is true (a 30-bit parcel).
type CPInstruction struct {
	OpFm byte
	OpI  byte
	OpJ  byte
	OpK  byte
	Addr uint32
	Long bool
}

// DecodeCP splits a 15-bit parcel's 12-bit header (opFm:6 opI:3 opJ:3) and
// its trailing 3-bit opK, the same split emu/cpu.Step performs.
func DecodeCP(parcel uint32) CPInstruction {
	header := (parcel >> 3) & 0o7777
	return CPInstruction{
		OpFm: byte(header>>6) & 0o77,
		OpI:  byte(header>>3) & 0o7,
		OpJ:  byte(header) & 0o7,
		OpK:  byte(parcel) & 0o7,
	}
}

// DecodeCPLong splits a 30-bit parcel's 12-bit header and 18-bit address.
func DecodeCPLong(parcel uint32) CPInstruction {
	header := (parcel >> 18) & 0o7777
	return CPInstruction{
		OpFm: byte(header>>6) & 0o77,
		OpI:  byte(header>>3) & 0o7,
		OpJ:  byte(header) & 0o7,
		Addr: parcel & 0o777777,
		Long: true,
	}
}

// String renders one decoded CP instruction as "MNEM i,j,k" (15-bit form)
// or "MNEM i,j addr" (30-bit form). Unassigned opFm values render as
// "(illegal NN)" with the opFm in octal, matching the "illegal instruction" path's own
// unwillingness to guess a mnemonic for a code the machine never defined.
func (in CPInstruction) String() string {
	name := cpMnemonic[in.OpFm]
	if name == "" {
		return fmt.Sprintf("(illegal %02o)", in.OpFm)
	}
	if in.Long {
		return fmt.Sprintf("%-4s %d,%d %06o", name, in.OpI, in.OpJ, in.Addr)
	}
	return fmt.Sprintf("%-4s %d,%d,%d", name, in.OpI, in.OpJ, in.OpK)
}
