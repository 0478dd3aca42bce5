/*
 * CyberCore - Peripheral processor barrel test cases.
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
	"testing"

	"github.com/rcornwell/cyber-core/emu/channel"
	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/word"
)

// fakeBus is a minimal Bus for exercising a PP in isolation.
type fakeBus struct {
	cm        map[uint32]word.CpWord
	channels  map[device.ChannelID]*channel.Channel
	cpuP      word.PpWord
	exchanges []word.PpWord
	acceptExc bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{cm: map[uint32]word.CpWord{}, channels: map[device.ChannelID]*channel.Channel{}}
}

func (b *fakeBus) ReadCM(addr uint32) word.CpWord        { return b.cm[addr] }
func (b *fakeBus) WriteCM(addr uint32, data word.CpWord) { b.cm[addr] = data }
func (b *fakeBus) Channel(id device.ChannelID) *channel.Channel {
	return b.channels[id]
}
func (b *fakeBus) RequestExchange(addr word.PpWord, monitor bool) bool {
	b.exchanges = append(b.exchanges, addr)
	return b.acceptExc
}
func (b *fakeBus) CPUProgramAddress() word.PpWord { return b.cpuP }

// fakeDevice, for attaching to a fake channel.
type fakeDevice struct {
	acceptCode uint16
	data       word.PpWord
}

func (f *fakeDevice) Func(code word.PpWord) device.Func {
	if uint16(code) == f.acceptCode {
		return device.Accepted
	}
	return device.Declined
}
func (f *fakeDevice) Activate()       {}
func (f *fakeDevice) Disconnect()     {}
func (f *fakeDevice) IO()             {}
func (f *fakeDevice) Equipment() uint { return 0 }
func (f *fakeDevice) In() word.PpWord   { return f.data }
func (f *fakeDevice) Out(d word.PpWord) { f.data = d }
func (f *fakeDevice) Full() bool        { return false }
func (f *fakeDevice) Empty() bool       { return true }
func (f *fakeDevice) Flags() uint16     { return 0 }

func TestUJNJumps(t *testing.T) {
	pp := New()
	pp.Mem[0] = word.PpWord(opUJN << 6)
	pp.Mem[1] = 0o100
	pp.Step(newFakeBus())
	if pp.P != 0o100 {
		t.Errorf("P = %o, want 0100", pp.P)
	}
}

func TestZJNConditional(t *testing.T) {
	pp := New()
	pp.A = 0
	pp.Mem[0] = word.PpWord(opZJN << 6)
	pp.Mem[1] = 0o200
	pp.Step(newFakeBus())
	if pp.P != 0o200 {
		t.Errorf("ZJN with A=0 should jump, P=%o", pp.P)
	}

	pp2 := New()
	pp2.A = 5
	pp2.Mem[0] = word.PpWord(opZJN << 6)
	pp2.Mem[1] = 0o200
	pp2.Step(newFakeBus())
	if pp2.P != 2 {
		t.Errorf("ZJN with A!=0 should not jump, P=%o", pp2.P)
	}
}

func TestLDNUsesOpDWhenNonzero(t *testing.T) {
	pp := New()
	pp.Mem[0] = word.PpWord(opLDN<<6) | 0o17
	pp.Step(newFakeBus())
	if pp.A != 0o17 {
		t.Errorf("A = %o, want 017", pp.A)
	}
	if pp.P != 1 {
		t.Errorf("LDN with nonzero opD should be a single-word instruction, P=%o", pp.P)
	}
}

func TestLDNFetchesNextWordWhenOpDZero(t *testing.T) {
	pp := New()
	pp.Mem[0] = word.PpWord(opLDN << 6)
	pp.Mem[1] = 0o4242
	pp.Step(newFakeBus())
	if pp.A != 0o4242 {
		t.Errorf("A = %o, want 04242", pp.A)
	}
	if pp.P != 2 {
		t.Errorf("P = %o, want 2", pp.P)
	}
}

func TestADNAddsOnesComplement(t *testing.T) {
	pp := New()
	pp.A = 1
	pp.Mem[0] = word.PpWord(opADN<<6) | 1
	pp.Step(newFakeBus())
	if pp.A != 2 {
		t.Errorf("A = %o, want 2", pp.A)
	}
}

func TestRJMStoresReturnAndJumpsPastTarget(t *testing.T) {
	pp := New()
	pp.Mem[0] = word.PpWord(opRJM << 6)
	pp.Mem[1] = 0o100
	pp.Step(newFakeBus())
	if pp.Mem[0o100] != 2 {
		t.Errorf("RJM did not store return address, mem[0100]=%o want 2", pp.Mem[0o100])
	}
	if pp.P != 0o101 {
		t.Errorf("P = %o, want 0101", pp.P)
	}
}

func TestSTDStoresLow12BitsOfA(t *testing.T) {
	pp := New()
	pp.A = 0o707070
	pp.Mem[0] = word.PpWord(opSTD<<6) | 5
	pp.Step(newFakeBus())
	if pp.Mem[5] != 0o7070 {
		t.Errorf("mem[5] = %o, want 07070", pp.Mem[5])
	}
}

func TestIndexedAddressAddsBaseAndZeroPageCell(t *testing.T) {
	pp := New()
	pp.Mem[0] = word.PpWord(opLDM<<6) | 2 // index cell = mem[2]
	pp.Mem[1] = 0o100                     // base
	pp.Mem[2] = 5                         // index value
	pp.Mem[0o105] = 0o777
	pp.Step(newFakeBus())
	if pp.A != 0o777 {
		t.Errorf("indexed load A = %o, want 0777", pp.A)
	}
}

func TestIANReadsFromSelectedDevice(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	ch := channel.New()
	d := &fakeDevice{acceptCode: 0o1, data: 0o2424}
	ch.Attach(d)
	ch.Function(0o1)
	bus.channels[0] = ch

	pp.Mem[0] = word.PpWord(opIAN << 6)
	pp.Step(bus)
	if pp.A != 0o2424 {
		t.Errorf("A = %o, want 02424", pp.A)
	}
}

func TestIAMMultiWordBusyLoop(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	ch := channel.New()
	d := &fakeDevice{acceptCode: 0o1, data: 0o11}
	ch.Attach(d)
	ch.Function(0o1)
	ch.Active = true
	bus.channels[0] = ch

	pp.A = 2 // word count
	pp.Mem[0] = word.PpWord(opIAM << 6)
	pp.Mem[1] = 0o200 // destination address
	pp.Step(bus)
	if !pp.Busy {
		t.Fatalf("IAM should leave PP busy")
	}
	pp.Step(bus) // transfers word 1, count -> 1
	if pp.Mem[0o200] != 0o11 {
		t.Errorf("mem[0200] = %o, want 011", pp.Mem[0o200])
	}
	if !pp.Busy {
		t.Fatalf("IAM should still be busy after one word with count 1 remaining")
	}
	pp.Step(bus) // transfers word 2, count -> 0, clears busy
	if pp.Busy {
		t.Errorf("IAM should clear busy once count reaches zero")
	}
	if pp.Mem[0o201] != 0o11 {
		t.Errorf("mem[0201] = %o, want 011", pp.Mem[0o201])
	}
}

func TestIAMStopsWhenChannelGoesInactive(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	ch := channel.New()
	d := &fakeDevice{acceptCode: 0o1}
	ch.Attach(d)
	ch.Function(0o1)
	ch.Active = false
	bus.channels[0] = ch

	pp.A = 5
	pp.Mem[0] = word.PpWord(opIAM << 6)
	pp.Mem[1] = 0o200
	pp.Step(bus)
	pp.Step(bus)
	if pp.Busy {
		t.Errorf("IAM should abandon the transfer once the channel is inactive")
	}
}

func TestCRDUnpacksCMWordIntoFivePPWords(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	var cmWord word.CpWord
	for i := 0; i < 5; i++ {
		cmWord |= word.CpWord(i+1) << uint(48-12*i)
	}
	bus.cm[0] = cmWord
	pp.Mem[0] = word.PpWord(opCRD << 6) // opD==0: destination address is the next word
	pp.Mem[1] = 0o200
	pp.Step(bus)
	for i := 0; i < 5; i++ {
		if pp.Mem[0o200+word.PpWord(i)] != word.PpWord(i+1) {
			t.Errorf("mem[%o] = %o, want %o", 0o200+i, pp.Mem[0o200+word.PpWord(i)], i+1)
		}
	}
}

func TestCWDPacksFivePPWordsIntoCMWord(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	for i := 0; i < 5; i++ {
		pp.Mem[0o300+word.PpWord(i)] = word.PpWord(i + 1)
	}
	pp.Mem[0] = word.PpWord(opCWD << 6)
	pp.Mem[1] = 0o300
	pp.Step(bus)
	want := bus.cm[0]
	got := packCM(pp.Mem[:], 0o300)
	if got != want {
		t.Errorf("packed CM word mismatch: got %o want %o", got, want)
	}
}

func TestEXNBusyWaitsUntilAccepted(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	bus.acceptExc = false
	pp.Mem[0] = word.PpWord(opEXN << 6)
	pp.Mem[1] = 0o4000
	pp.Step(bus)
	if !pp.Busy {
		t.Fatalf("EXN should busy-wait when the exchange is not immediately accepted")
	}
	bus.acceptExc = true
	pp.Step(bus)
	if pp.Busy {
		t.Errorf("EXN should clear busy once the exchange is accepted")
	}
}

func TestRPNReadsCPUProgramAddress(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	bus.cpuP = 0o777
	pp.Mem[0] = word.PpWord(opRPN << 6)
	pp.Step(bus)
	if pp.A != 0o777 {
		t.Errorf("A = %o, want 0777", pp.A)
	}
}

func TestPSNLRDSRDRoundTrip(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	pp.Mem[0] = word.PpWord(opPSN<<6) | psnLRD
	pp.Mem[1] = 0o1234
	pp.Mem[2] = 0o5670
	pp.Step(bus)
	want := (uint32(0o1234&0o7777) << 12) | uint32(0o5670&0o7777)
	if pp.R != want {
		t.Errorf("R = %o, want %o", pp.R, want)
	}

	pp2 := New()
	pp2.R = pp.R
	pp2.Mem[0] = word.PpWord(opPSN<<6) | psnSRD
	pp2.Step(bus)
	if pp2.Mem[1] != word.PpWord((pp.R>>12)&0o7777) || pp2.Mem[2] != word.PpWord(pp.R&0o7777) {
		t.Errorf("SRD did not round-trip R correctly")
	}
}

func TestACNActivatesChannel(t *testing.T) {
	pp := New()
	bus := newFakeBus()
	ch := channel.New()
	bus.channels[0] = ch
	pp.Mem[0] = word.PpWord(opACN << 6)
	pp.Step(bus)
	if !ch.Active {
		t.Errorf("ACN did not activate channel")
	}
}

func TestSHNRotatesLeft(t *testing.T) {
	pp := New()
	pp.A = 1
	pp.Mem[0] = word.PpWord(opSHN<<6) | 1
	pp.Step(newFakeBus())
	if pp.A != 2 {
		t.Errorf("A = %o, want 2", pp.A)
	}
}
