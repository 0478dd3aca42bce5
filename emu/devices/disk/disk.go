/*
 * CyberCore - Disk channel device
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

// Package disk implements the representative disk device: a
// cylinder/track/sector addressed sector image, transferred to and from
// extended memory rather than through the channel's 12-bit word latch.
// The channel only ever carries small parameter and status blocks; the
// 256-word sector payload moves directly between the backing image and
// the ExtMem store the controller was built with.
package disk

import (
	"encoding/binary"
	"log/slog"
	"os"

	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/event"
	"github.com/rcornwell/cyber-core/emu/memory"
	"github.com/rcornwell/cyber-core/emu/word"
	"github.com/rcornwell/cyber-core/util/debug"
)

// SectorWords is the number of 60-bit data words per sector, not
// counting the two 12-bit control words that precede them on the image.
const SectorWords = 256

// Function codes the controller recognizes.
const (
	funcSeek = 0o0001 + iota
	funcRead
	funcWrite
	funcGeneralStatus
	funcDetailedStatus
	funcExtendedStatus
	funcContinue
	funcAutoload
)

// Status bits, shared across the General/Detailed/Extended status words.
const (
	statusBusy          uint16 = 1 << 0
	statusReady         uint16 = 1 << 1
	statusAbnormal      uint16 = 1 << 2
	statusNonRecover    uint16 = 1 << 3
	statusWriteEnabled  uint16 = 1 << 4
	statusSeekError     uint16 = 1 << 5 // detailed-status only
	seekDelayCycles            = 20
	transferDelayCycles        = 40
)

// Geometry describes a drive's cylinder/track/sector shape; Read and
// Write move exactly SectorWords words per call regardless of geometry.
type Geometry struct {
	Cylinders int
	Tracks    int
	Sectors   int
}

// sectorBytes is the on-image footprint of one sector: two 12-bit control
// words (stored as 2 bytes each) followed by SectorWords 60-bit data
// words (stored as 8-byte little-endian uint64s).
const sectorBytes = 2*2 + SectorWords*8

// intakeKind distinguishes which parameter block Out() pulses are
// currently filling.
type intakeKind int

const (
	intakeNone intakeKind = iota
	intakeSeek
	intakeTransferAddr
)

// Disk is one drive attached to a channel: command dispatch, a small
// parameter/status intake and outtake buffer, and the seek/transfer
// delay modeled through a shared event.Scheduler.
type Disk struct {
	sched     *event.Scheduler
	channel   device.ChannelID
	equipment uint
	geom      Geometry
	em        *memory.Store
	file      *os.File

	cyl, trk, sec int // current position
	writeEnabled  bool

	intake     intakeKind
	params     [4]word.PpWord
	paramCount int

	busy   bool
	detail uint16 // sticky detailed-status bits from the last operation

	outWords []word.PpWord // queued words for the current In() sequence
	outPos   int

	pendingWrite bool // true if the in-flight transfer-addr intake is for a Write

	debugMask debug.Mask
}

// Debug enables the named debug options (comma or space separated),
// per util/debug's shared vocabulary.
func (d *Disk) Debug(names string) error {
	mask, err := debug.ParseAll(names)
	if err != nil {
		return err
	}
	d.debugMask |= mask
	return nil
}

// New returns a Disk backed by the image at path, creating it with the
// geometry's full extent if it does not already exist.
func New(sched *event.Scheduler, ch device.ChannelID, equipment uint, geom Geometry, em *memory.Store, path string) (*Disk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	size := int64(geom.Cylinders*geom.Tracks*geom.Sectors) * int64(sectorBytes)
	if fi, statErr := f.Stat(); statErr == nil && fi.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &Disk{
		sched: sched, channel: ch, equipment: equipment,
		geom: geom, em: em, file: f, writeEnabled: true,
	}, nil
}

// offset returns the byte offset of sector (cyl, trk, sec) on the image,
// per the dense C/T/S addressing formula.
func (d *Disk) offset(cyl, trk, sec int) int64 {
	return int64((cyl*d.geom.Tracks+trk)*d.geom.Sectors+sec) * int64(sectorBytes)
}

func (d *Disk) inRange(cyl, trk, sec int) bool {
	return cyl >= 0 && cyl < d.geom.Cylinders &&
		trk >= 0 && trk < d.geom.Tracks &&
		sec >= 0 && sec < d.geom.Sectors
}

// advanceSector moves to the next sector, per spec: a Read or Write
// advances to the following sector automatically, wrapping track and
// cylinder as needed.
func (d *Disk) advanceSector() {
	d.sec++
	if d.sec >= d.geom.Sectors {
		d.sec = 0
		d.trk++
		if d.trk >= d.geom.Tracks {
			d.trk = 0
			d.cyl++
		}
	}
}

// Func dispatches a function code to the appropriate command handler.
func (d *Disk) Func(code word.PpWord) device.Func {
	switch int(code) {
	case funcSeek:
		d.intake = intakeSeek
		d.paramCount = 0
		d.busy = true
		return device.Accepted
	case funcRead, funcWrite:
		d.intake = intakeTransferAddr
		d.paramCount = 0
		d.busy = true
		if int(code) == funcWrite {
			d.pendingWrite = true
		} else {
			d.pendingWrite = false
		}
		return device.Accepted
	case funcGeneralStatus:
		d.outWords = d.statusWords(false, false)
		d.outPos = 0
		return device.Accepted
	case funcDetailedStatus:
		d.outWords = d.statusWords(true, false)
		d.outPos = 0
		return device.Accepted
	case funcExtendedStatus:
		d.outWords = d.statusWords(true, true)
		d.outPos = 0
		return device.Accepted
	case funcContinue:
		d.advanceSector()
		return device.Processed
	case funcAutoload:
		d.cyl, d.trk, d.sec = 0, 0, 0
		d.detail = 0
		return device.Processed
	}
	return device.Declined
}

func (d *Disk) Activate()   {}
func (d *Disk) Disconnect() {}
func (d *Disk) IO()         {}
func (d *Disk) Equipment() uint { return d.equipment }

// In returns the next queued status/result word, or zero once drained.
func (d *Disk) In() word.PpWord {
	if d.outPos >= len(d.outWords) {
		return 0
	}
	w := d.outWords[d.outPos]
	d.outPos++
	return w
}

// Out accepts one parameter word for whichever intake is in progress.
func (d *Disk) Out(data word.PpWord) {
	if d.intake == intakeNone || d.paramCount >= len(d.params) {
		return
	}
	d.params[d.paramCount] = data
	d.paramCount++

	switch d.intake {
	case intakeSeek:
		if d.paramCount == 4 {
			d.completeSeek()
		}
	case intakeTransferAddr:
		if d.paramCount == 2 {
			d.completeTransferAddr()
		}
	}
}

func (d *Disk) completeSeek() {
	// params[0] is the unit number; this template models a single drive
	// per controller, so it is not used.
	cyl := int(d.params[1])
	trk := int(d.params[2])
	sec := int(d.params[3])
	if d.debugMask&debug.Cmd != 0 {
		slog.Debug("disk seek", "equipment", d.equipment, "cyl", cyl, "trk", trk, "sec", sec)
	}
	d.intake = intakeNone
	if !d.inRange(cyl, trk, sec) {
		d.detail = statusAbnormal | statusNonRecover | statusSeekError
		d.busy = false
		return
	}
	d.detail = 0
	d.sched.Add(d, func(int) {
		d.cyl, d.trk, d.sec = cyl, trk, sec
		d.busy = false
	}, seekDelayCycles, 0)
}

func (d *Disk) completeTransferAddr() {
	emAddr := ((uint32(d.params[0])&word.Mask12)<<12 | (uint32(d.params[1]) & word.Mask12)) & word.Mask24
	d.intake = intakeNone
	if !d.inRange(d.cyl, d.trk, d.sec) {
		d.detail = statusAbnormal | statusNonRecover
		d.busy = false
		return
	}
	write := d.pendingWrite
	d.sched.Add(d, func(int) {
		if write {
			d.writeSector(emAddr)
		} else {
			d.readSector(emAddr)
		}
		d.advanceSector()
		d.busy = false
	}, transferDelayCycles, 0)
}

// readSector streams one sector's data words from the backing image into
// ExtMem starting at emAddr.
func (d *Disk) readSector(emAddr uint32) {
	buf := make([]byte, sectorBytes)
	if _, err := d.file.ReadAt(buf, d.offset(d.cyl, d.trk, d.sec)); err != nil {
		d.detail = statusAbnormal | statusNonRecover
		return
	}
	for i := 0; i < SectorWords; i++ {
		v := binary.LittleEndian.Uint64(buf[4+i*8:])
		d.em.PutWord(emAddr+uint32(i), word.CpWord(v)&word.Mask60Bits)
	}
	d.detail = 0
}

// writeSector streams SectorWords data words from ExtMem at emAddr to
// the backing image, preserving the two leading control words already
// on the image.
func (d *Disk) writeSector(emAddr uint32) {
	if !d.writeEnabled {
		d.detail = statusAbnormal | statusNonRecover
		return
	}
	buf := make([]byte, sectorBytes)
	off := d.offset(d.cyl, d.trk, d.sec)
	d.file.ReadAt(buf[:4], off) // preserve the existing control words; errors leave them zero
	for i := 0; i < SectorWords; i++ {
		v := uint64(d.em.GetWord(emAddr+uint32(i))) & word.Mask60Bits
		binary.LittleEndian.PutUint64(buf[4+i*8:], v)
	}
	if _, err := d.file.WriteAt(buf, off); err != nil {
		d.detail = statusAbnormal | statusNonRecover
		return
	}
	d.detail = 0
}

// statusWords builds the General, Detailed, or Extended status block.
// General is just the summary flags word; detailed appends the current
// cylinder/track/sector, and extended appends the drive geometry.
func (d *Disk) statusWords(detailed, extended bool) []word.PpWord {
	flags := d.detail
	if d.busy {
		flags |= statusBusy
	} else {
		flags |= statusReady
	}
	if d.writeEnabled {
		flags |= statusWriteEnabled
	}
	words := []word.PpWord{word.PpWord(flags)}
	if detailed {
		words = append(words, word.PpWord(d.cyl), word.PpWord(d.trk), word.PpWord(d.sec))
	}
	if extended {
		words = append(words, word.PpWord(d.geom.Cylinders), word.PpWord(d.geom.Tracks), word.PpWord(d.geom.Sectors))
	}
	return words
}

// Full reports whether a queued status/result word is waiting to be read.
func (d *Disk) Full() bool { return d.outPos < len(d.outWords) }

// Empty reports whether the controller is ready to accept another
// parameter word.
func (d *Disk) Empty() bool { return d.intake != intakeNone && d.paramCount < len(d.params) }

// Flags reports the PCI active/full bits the channel polls to refresh
// its own Active/Full state.
func (d *Disk) Flags() uint16 {
	var f uint16
	if d.busy || d.intake != intakeNone || d.Full() {
		f |= 1 << 0
	}
	if d.Full() {
		f |= 1 << 1
	}
	return f
}
