/*
 * CyberCore - Peripheral processor opcode table
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

package ppu

import (
	"github.com/rcornwell/cyber-core/emu/channel"
	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/word"
)

// Opcode assignment. The historical machine groups its 64 PP opcodes into
// octal decades by function; the mnemonics below are taken straight from
// the device's instruction summary and assigned sequentially by group so
// the table below stays a direct, checkable transcription of that summary
// rather than a guessed-at numeric layout.
const (
	opUJN = iota // unconditional jump
	opZJN        // jump if A zero
	opNJN        // jump if A nonzero
	opPJN        // jump if A plus (sign clear)
	opMJN        // jump if A minus (sign set)
	opLJM        // long (absolute) jump
	opRJM        // return jump
	opAJM        // jump if channel active
	opIJM        // jump if channel inactive
	opFJM        // jump if channel full
	opEJM        // jump if channel empty

	opSHN // shift A
	opLMN // logical difference (XOR) with A
	opLPN // logical product (AND) with A
	opSCN // selective clear
	opLDN // load direct
	opLCN // load complement
	opADN // add
	opSBN // subtract
	opLDC // load constant (opD is the literal)
	opADC // add constant
	opLPC // logical product constant
	opLMC // logical difference constant

	opLDD // load direct from memory
	opADD
	opSBD
	opLMD
	opSTD
	opRAD // replace-add: mem[addr] += A
	opAOD // add one to memory
	opSOD // subtract one from memory

	opLDI // load indirect
	opADI
	opSBI
	opLMI
	opSTI
	opRAI
	opAOI
	opSOI

	opLDM // load indexed
	opADM
	opSBM
	opLMM
	opSTM
	opRAM
	opAOM
	opSOM

	opCRD // central read direct (one CM word -> 5 PP words)
	opCRM // central read, multi-word, busy/suspend
	opCWD // central write direct
	opCWM // central write, multi-word, busy/suspend

	opIAN // input to A, single word
	opIAM // input to memory, multi-word, busy/suspend
	opOAN // output from A, single word
	opOAM // output from memory, multi-word, busy/suspend
	opACN // activate channel
	opDCN // disconnect channel
	opFAN // function channel, code = A, activates
	opFNC // function channel, code = next word, no activate

	opEXN // exchange jump, address = next word
	opMXN // monitor exchange jump, address = next word
	opMAN // exchange jump, address = A

	opPSN // pass / LRD / SRD, selected by opD
	opRPN // read P (CPU program address) into A
)

// handler is one opcode's execution; it may put the PP in a busy state
// instead of completing synchronously.
type handler func(pp *PP, bus Bus)

var dispatch [64]handler

func init() {
	dispatch[opUJN] = execUJN
	dispatch[opZJN] = execZJN
	dispatch[opNJN] = execNJN
	dispatch[opPJN] = execPJN
	dispatch[opMJN] = execMJN
	dispatch[opLJM] = execLJM
	dispatch[opRJM] = execRJM
	dispatch[opAJM] = execAJM
	dispatch[opIJM] = execIJM
	dispatch[opFJM] = execFJM
	dispatch[opEJM] = execEJM

	dispatch[opSHN] = execSHN
	dispatch[opLMN] = execLMN
	dispatch[opLPN] = execLPN
	dispatch[opSCN] = execSCN
	dispatch[opLDN] = execLDN
	dispatch[opLCN] = execLCN
	dispatch[opADN] = execADN
	dispatch[opSBN] = execSBN
	dispatch[opLDC] = execLDC
	dispatch[opADC] = execADC
	dispatch[opLPC] = execLPC
	dispatch[opLMC] = execLMC

	dispatch[opLDD] = memDirect(memLoad)
	dispatch[opADD] = memDirect(memAdd)
	dispatch[opSBD] = memDirect(memSub)
	dispatch[opLMD] = memDirect(memXor)
	dispatch[opSTD] = memDirect(memStore)
	dispatch[opRAD] = memDirect(memReplaceAdd)
	dispatch[opAOD] = memDirect(memAddOne)
	dispatch[opSOD] = memDirect(memSubOne)

	dispatch[opLDI] = memIndirect(memLoad)
	dispatch[opADI] = memIndirect(memAdd)
	dispatch[opSBI] = memIndirect(memSub)
	dispatch[opLMI] = memIndirect(memXor)
	dispatch[opSTI] = memIndirect(memStore)
	dispatch[opRAI] = memIndirect(memReplaceAdd)
	dispatch[opAOI] = memIndirect(memAddOne)
	dispatch[opSOI] = memIndirect(memSubOne)

	dispatch[opLDM] = memIndexed(memLoad)
	dispatch[opADM] = memIndexed(memAdd)
	dispatch[opSBM] = memIndexed(memSub)
	dispatch[opLMM] = memIndexed(memXor)
	dispatch[opSTM] = memIndexed(memStore)
	dispatch[opRAM] = memIndexed(memReplaceAdd)
	dispatch[opAOM] = memIndexed(memAddOne)
	dispatch[opSOM] = memIndexed(memSubOne)

	dispatch[opCRD] = execCRD
	dispatch[opCRM] = execCRM
	dispatch[opCWD] = execCWD
	dispatch[opCWM] = execCWM

	dispatch[opIAN] = execIAN
	dispatch[opIAM] = execIAM
	dispatch[opOAN] = execOAN
	dispatch[opOAM] = execOAM
	dispatch[opACN] = execACN
	dispatch[opDCN] = execDCN
	dispatch[opFAN] = execFAN
	dispatch[opFNC] = execFNC

	dispatch[opEXN] = execEXN
	dispatch[opMXN] = execMXN
	dispatch[opMAN] = execMAN

	dispatch[opPSN] = execPSN
	dispatch[opRPN] = execRPN
}

// --- branches ---------------------------------------------------------

func execUJN(pp *PP, bus Bus) {
	pp.P = pp.fetchOperand()
}

func execZJN(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if pp.A == 0 {
		pp.P = target
	}
}

func execNJN(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if pp.A != 0 {
		pp.P = target
	}
}

func execPJN(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if pp.A&word.Sign18 == 0 {
		pp.P = target
	}
}

func execMJN(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if pp.A&word.Sign18 != 0 {
		pp.P = target
	}
}

func execLJM(pp *PP, bus Bus) {
	pp.P = pp.fetchOperand()
}

// execRJM stores the post-operand return address into the jump target
// word itself, then resumes just past it: the classic self-modifying
// PP subroutine call/return idiom.
func execRJM(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	pp.Mem[target&0o7777] = pp.P
	pp.pushReturn(pp.P)
	pp.P = word.Add12(target, 1)
}

func channelByOpD(pp *PP, bus Bus) *channel.Channel {
	return bus.Channel(device.ChannelID(pp.OpD))
}

func execAJM(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if ch := channelByOpD(pp, bus); ch != nil && ch.Active {
		pp.P = target
	}
}

func execIJM(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if ch := channelByOpD(pp, bus); ch == nil || !ch.Active {
		pp.P = target
	}
}

func execFJM(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if ch := channelByOpD(pp, bus); ch != nil && ch.Full {
		pp.P = target
	}
}

func execEJM(pp *PP, bus Bus) {
	target := pp.fetchOperand()
	if ch := channelByOpD(pp, bus); ch == nil || !ch.Full {
		pp.P = target
	}
}

// --- loads / logic ------------------------------------------------------

// shiftCount reads a 6-bit field as signed shift distance: 0-31 rotate
// left that many bits, 32-63 rotate right by (64-value) bits.
func shiftCount(v word.PpWord) (left bool, n uint) {
	if v&0o40 == 0 {
		return true, uint(v & 0o37)
	}
	return false, uint(0o100 - uint16(v))
}

func rotate18(a uint32, left bool, n uint) uint32 {
	n %= 18
	if n == 0 {
		return a & mask18
	}
	a &= mask18
	if left {
		return ((a << n) | (a >> (18 - n))) & mask18
	}
	return ((a >> n) | (a << (18 - n))) & mask18
}

func execSHN(pp *PP, bus Bus) {
	left, n := shiftCount(pp.operandN())
	pp.A = rotate18(pp.A, left, n)
}

func execLMN(pp *PP, bus Bus) {
	pp.A = (pp.A ^ uint32(pp.operandN())) & mask18
}

func execLPN(pp *PP, bus Bus) {
	pp.A = pp.A & uint32(pp.operandN())
}

func execSCN(pp *PP, bus Bus) {
	pp.A = pp.A &^ uint32(pp.operandN())
}

func execLDN(pp *PP, bus Bus) {
	pp.A = uint32(pp.operandN())
}

func execLCN(pp *PP, bus Bus) {
	pp.A = (^uint32(pp.operandN())) & mask18
}

func execADN(pp *PP, bus Bus) {
	pp.A = word.Add18(pp.A, uint32(pp.operandN()))
}

func execSBN(pp *PP, bus Bus) {
	pp.A = word.Sub18(pp.A, uint32(pp.operandN()))
}

func execLDC(pp *PP, bus Bus) {
	pp.A = uint32(pp.OpD)
}

func execADC(pp *PP, bus Bus) {
	pp.A = word.Add18(pp.A, uint32(pp.OpD))
}

func execLPC(pp *PP, bus Bus) {
	pp.A = pp.A & uint32(pp.OpD)
}

func execLMC(pp *PP, bus Bus) {
	pp.A = (pp.A ^ uint32(pp.OpD)) & mask18
}

// --- memory direct/indirect/indexed -------------------------------------

// memOp is one of the eight load/store/arithmetic-on-memory operations
// shared by the D, I and M addressing-mode families.
type memOp func(pp *PP, addr word.PpWord)

func memLoad(pp *PP, addr word.PpWord) { pp.A = uint32(pp.Mem[addr&0o7777]) }

func memAdd(pp *PP, addr word.PpWord) {
	pp.A = word.Add18(pp.A, uint32(pp.Mem[addr&0o7777]))
}

func memSub(pp *PP, addr word.PpWord) {
	pp.A = word.Sub18(pp.A, uint32(pp.Mem[addr&0o7777]))
}

func memXor(pp *PP, addr word.PpWord) {
	pp.A = (pp.A ^ uint32(pp.Mem[addr&0o7777])) & mask18
}

func memStore(pp *PP, addr word.PpWord) {
	pp.Mem[addr&0o7777] = word.PpWord(pp.A & 0o7777)
}

// memReplaceAdd is the hardware's read-modify-write "replace add": the
// memory cell is incremented by A and A is left unchanged.
func memReplaceAdd(pp *PP, addr word.PpWord) {
	a := addr & 0o7777
	pp.Mem[a] = word.PpWord(word.Add18(uint32(pp.Mem[a]), pp.A) & 0o7777)
}

func memAddOne(pp *PP, addr word.PpWord) {
	a := addr & 0o7777
	pp.Mem[a] = word.Add12(pp.Mem[a], 1)
}

func memSubOne(pp *PP, addr word.PpWord) {
	a := addr & 0o7777
	pp.Mem[a] = word.Add12(pp.Mem[a], 0o7776) // -1 in 12-bit ones complement
}

func memDirect(op memOp) handler {
	return func(pp *PP, bus Bus) { op(pp, pp.addressD()) }
}

func memIndirect(op memOp) handler {
	return func(pp *PP, bus Bus) { op(pp, pp.addressI()) }
}

func memIndexed(op memOp) handler {
	return func(pp *PP, bus Bus) { op(pp, pp.addressM()) }
}

// --- CPU <-> PP transfer --------------------------------------------

func execCRD(pp *PP, bus Bus) {
	dest := pp.addressD()
	unpackCM(bus.ReadCM(pp.cmAddress()), pp.Mem[:], dest)
}

func execCWD(pp *PP, bus Bus) {
	src := pp.addressD()
	bus.WriteCM(pp.cmAddress(), packCM(pp.Mem[:], src))
}

// execCRM/execCWM set up the shared busy/suspend state: the PP saves its
// opcode's operand, copies A into its internal remaining-word count, and
// resumes one CM word (five PP words) per subsequent Step until that count
// reaches zero. A itself is left unchanged.
func execCRM(pp *PP, bus Bus) {
	pp.busyAddr = pp.addressD()
	pp.busyCMAddr = pp.cmAddress()
	pp.busyCount = pp.A
	pp.busyKind = busyCRM
	pp.Busy = true
}

func execCWM(pp *PP, bus Bus) {
	pp.busyAddr = pp.addressD()
	pp.busyCMAddr = pp.cmAddress()
	pp.busyCount = pp.A
	pp.busyKind = busyCWM
	pp.Busy = true
}

// --- channel I/O ---------------------------------------------------

func execIAN(pp *PP, bus Bus) {
	ch := bus.Channel(device.ChannelID(pp.OpD))
	if ch != nil {
		pp.A = uint32(ch.In())
	}
}

func execOAN(pp *PP, bus Bus) {
	ch := bus.Channel(device.ChannelID(pp.OpD))
	if ch != nil {
		ch.Out(uint16(pp.A & 0o7777))
	}
}

// execIAM/execOAM enter the busy/suspend multi-word transfer loop: on
// entry the destination/source address and the word count (from A) are
// saved, and every subsequent Step call moves one word until that count
// reaches zero or the channel goes inactive. A itself is left unchanged.
func execIAM(pp *PP, bus Bus) {
	pp.busyAddr = pp.addressD()
	pp.busyChannel = device.ChannelID(pp.OpD)
	pp.busyCount = pp.A
	pp.busyKind = busyInputMulti
	pp.Busy = true
}

func execOAM(pp *PP, bus Bus) {
	pp.busyAddr = pp.addressD()
	pp.busyChannel = device.ChannelID(pp.OpD)
	pp.busyCount = pp.A
	pp.busyKind = busyOutputMulti
	pp.Busy = true
}

func execACN(pp *PP, bus Bus) {
	if ch := bus.Channel(device.ChannelID(pp.OpD)); ch != nil {
		ch.Activate()
	}
}

func execDCN(pp *PP, bus Bus) {
	if ch := bus.Channel(device.ChannelID(pp.OpD)); ch != nil {
		ch.Disconnect()
	}
}

func execFAN(pp *PP, bus Bus) {
	if ch := bus.Channel(device.ChannelID(pp.OpD)); ch != nil {
		ch.Function(uint16(pp.A & 0o7777))
		ch.Activate()
	}
}

func execFNC(pp *PP, bus Bus) {
	code := pp.fetchOperand()
	if ch := bus.Channel(device.ChannelID(pp.OpD)); ch != nil {
		ch.Function(uint16(code))
	}
}

// --- exchange jump ---------------------------------------------------

func execEXN(pp *PP, bus Bus) {
	addr := pp.fetchOperand()
	if bus.RequestExchange(addr, false) {
		return
	}
	pp.busyArg = addr
	pp.busyMonitor = false
	pp.busyKind = busyExchange
	pp.Busy = true
}

func execMXN(pp *PP, bus Bus) {
	addr := pp.fetchOperand()
	if bus.RequestExchange(addr, true) {
		return
	}
	pp.busyArg = addr
	pp.busyMonitor = true
	pp.busyKind = busyExchange
	pp.Busy = true
}

func execMAN(pp *PP, bus Bus) {
	addr := word.PpWord(pp.A & 0o7777)
	if bus.RequestExchange(addr, false) {
		return
	}
	pp.busyArg = addr
	pp.busyMonitor = false
	pp.busyKind = busyExchange
	pp.Busy = true
}

// --- misc ------------------------------------------------------------

// PSN sub-function codes, selected by opD. Zero is the hardware's plain
// no-op pass instruction; 024/025 are the relocation-register load/store
// forms, each spending two following PP words on the 24-bit value of R.
const (
	psnPass = 0
	psnLRD  = 0o24
	psnSRD  = 0o25
)

func execPSN(pp *PP, bus Bus) {
	switch pp.OpD {
	case psnLRD:
		hi := pp.fetchOperand()
		lo := pp.fetchOperand()
		pp.R = (uint32(hi&0o7777) << 12) | uint32(lo&0o7777)
	case psnSRD:
		pp.Mem[pp.P&0o7777] = word.PpWord((pp.R >> 12) & 0o7777)
		pp.P = word.Add12(pp.P, 1)
		pp.Mem[pp.P&0o7777] = word.PpWord(pp.R & 0o7777)
		pp.P = word.Add12(pp.P, 1)
	default:
		// psnPass and any other opD: no operation.
	}
}

func execRPN(pp *PP, bus Bus) {
	pp.A = uint32(bus.CPUProgramAddress())
}
