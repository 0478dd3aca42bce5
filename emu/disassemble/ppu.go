/*
 * CyberCore - PP mnemonic disassembler
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

package disassemble

import "fmt"

// ppMnemonic is indexed by the 6-bit PP opcode occupying a word's top 6
// bits, in the same sequential-by-group order emu/ppu/opcodes.go assigns
// its iota block.
var ppMnemonic = [64]string{
	"UJN", "ZJN", "NJN", "PJN", "MJN", "LJM", "RJM", "AJM", "IJM", "FJM", "EJM",
	"SHN", "LMN", "LPN", "SCN", "LDN", "LCN", "ADN", "SBN", "LDC", "ADC", "LPC", "LMC",
	"LDD", "ADD", "SBD", "LMD", "STD", "RAD", "AOD", "SOD",
	"LDI", "ADI", "SBI", "LMI", "STI", "RAI", "AOI", "SOI",
	"LDM", "ADM", "SBM", "LMM", "STM", "RAM", "AOM", "SOM",
	"CRD", "CRM", "CWD", "CWM",
	"IAN", "IAM", "OAN", "OAM", "ACN", "DCN", "FAN", "FNC",
	"EXN", "MXN", "MAN",
	"PSN", "RPN",
}

// PPInstruction is one decoded PP instruction: a 6-bit opcode plus a
// 12-bit operand (opD).
type PPInstruction struct {
	Op  byte
	OpD uint16
}

// DecodePP splits an 18-bit value into a 6-bit opcode (bits 12-17) and a
// 12-bit operand (bits 0-11). This is not the layout of a PP memory word,
// which emu/ppu decodes as a 6-bit opcode in bits 6-11 and a 6-bit d field.
func DecodePP(w uint32) PPInstruction {
	return PPInstruction{
		Op:  byte(w>>12) & 0o77,
		OpD: uint16(w) & 0o7777,
	}
}

// String renders one decoded PP instruction as "MNEM opD".
func (in PPInstruction) String() string {
	name := ppMnemonic[in.Op]
	if name == "" {
		return fmt.Sprintf("(illegal %02o)", in.Op)
	}
	return fmt.Sprintf("%-4s %04o", name, in.OpD)
}
