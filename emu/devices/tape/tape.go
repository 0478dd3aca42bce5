/*
 * CyberCore - Tape channel device
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

// Package tape implements the representative tape device: a SIMH-format
// container, read and written three bytes (two 12-bit words) at a time on
// top of the container's byte-at-a-time frame API. Conversion tables can
// be loaded and copied back, but no function code enables them, so frame
// bytes pass through unconverted.
package tape

import (
	"errors"
	"log/slog"

	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/event"
	"github.com/rcornwell/cyber-core/emu/word"
	"github.com/rcornwell/cyber-core/util/debug"
	tapeio "github.com/rcornwell/cyber-core/util/tape"
)

// Function codes the controller recognizes.
const (
	funcConnect = 0o0001 + iota
	funcRewind
	funcRewindUnload
	funcForespace
	funcBackspace
	funcSearchMarkF
	funcSearchMarkB
	funcReadFwd
	funcReadBkw
	funcWrite
	funcWriteShort
	funcWriteMark
	funcGeneralStatus
	funcDetailedStatus
	funcUnitStatus
	funcCopyReadConv
	funcCopyWriteConv
	funcLoadReadConv
	funcLoadWriteConv
	funcMasterClear
)

// Status bits, shared across the General/Detailed/Unit status words.
const (
	statusBusy       uint16 = 1 << 0
	statusReady      uint16 = 1 << 1
	statusAbnormal   uint16 = 1 << 2
	statusNonRecover uint16 = 1 << 3
	statusBOT        uint16 = 1 << 4
	statusEOT        uint16 = 1 << 5
	statusMark       uint16 = 1 << 6
	statusWriteRing  uint16 = 1 << 7
)

const (
	convTableSize  = 64 // 6-bit code space
	convTableCount = 4  // four loadable tables per controller, per unit/density group
	rewindChunk    = 200
	rewindDelay    = 1
	maxScanRecords = 1 << 20 // safety bound for a mark search, not a hardware limit
)

// direction distinguishes an in-progress read from a write so Out/In know
// which half of the frame pipeline is live.
type direction int

const (
	dirNone direction = iota
	dirRead
	dirReadBack
	dirWrite
)

// identityConv is the default pass-through table, used until a
// LoadReadConv/LoadWriteConv function replaces one of the four slots.
func identityConv() [convTableSize]byte {
	var t [convTableSize]byte
	for i := range t {
		t[i] = byte(i)
	}
	return t
}

// Tape is one drive attached to a channel: function-code dispatch over a
// util/tape.Context container, the Cyber 3-byte/2-word frame packing, and
// four loadable 6-bit conversion tables per direction.
type Tape struct {
	sched     *event.Scheduler
	channel   device.ChannelID
	equipment uint
	ctx       *tapeio.Context

	readConv  [convTableCount][convTableSize]byte
	writeConv [convTableCount][convTableSize]byte
	convSel   int
	convUse   bool // whether the selected table is applied to frame bytes

	dir direction

	readQueue [2]word.PpWord
	readLen   int // 0, 1, or 2 valid words queued in readQueue
	atEOR     bool

	writeBuf [2]word.PpWord
	writeLen int

	convLoad        bool // true while intaking a LoadReadConv/LoadWriteConv table
	convLoadPos     int
	convLoadIsWrite bool

	rewinding  bool
	unloadAt   bool
	busy       bool
	detail     uint16
	markFound  bool

	outWords []word.PpWord
	outPos   int

	debugMask debug.Mask
}

// Debug enables the named debug options (comma or space separated),
// per util/debug's shared vocabulary.
func (t *Tape) Debug(names string) error {
	mask, err := debug.ParseAll(names)
	if err != nil {
		return err
	}
	t.debugMask |= mask
	return nil
}

// New returns a Tape with all four conversion tables defaulted to
// identity, attached to an empty (unattached) container; call Attach on
// the returned Context, or through a config step, before issuing I/O.
func New(sched *event.Scheduler, ch device.ChannelID, equipment uint) *Tape {
	t := &Tape{sched: sched, channel: ch, equipment: equipment, ctx: tapeio.NewTapeContext()}
	for i := range t.readConv {
		t.readConv[i] = identityConv()
		t.writeConv[i] = identityConv()
	}
	return t
}

// Context exposes the underlying container for attach/detach/format
// configuration, which this module treats as outside the channel
// protocol proper.
func (t *Tape) Context() *tapeio.Context { return t.ctx }

// Func dispatches a function code to the appropriate command handler.
func (t *Tape) Func(code word.PpWord) device.Func {
	switch int(code) {
	case funcConnect:
		return device.Processed
	case funcRewind:
		t.startRewind(false)
		return device.Processed
	case funcRewindUnload:
		t.startRewind(true)
		return device.Processed
	case funcForespace:
		t.skipRecord(false)
		return device.Processed
	case funcBackspace:
		t.skipRecord(true)
		return device.Processed
	case funcSearchMarkF:
		t.searchMark(false)
		return device.Processed
	case funcSearchMarkB:
		t.searchMark(true)
		return device.Processed
	case funcReadFwd:
		t.beginRead(false)
		return device.Accepted
	case funcReadBkw:
		t.beginRead(true)
		return device.Accepted
	case funcWrite, funcWriteShort:
		t.beginWrite()
		return device.Accepted
	case funcWriteMark:
		t.writeTapeMark()
		return device.Processed
	case funcGeneralStatus:
		t.outWords = t.statusWords(false, false)
		t.outPos = 0
		return device.Accepted
	case funcDetailedStatus:
		t.outWords = t.statusWords(true, false)
		t.outPos = 0
		return device.Accepted
	case funcUnitStatus:
		t.outWords = t.statusWords(false, true)
		t.outPos = 0
		return device.Accepted
	case funcCopyReadConv:
		t.outWords = convWords(t.readConv[t.convSel])
		t.outPos = 0
		return device.Accepted
	case funcCopyWriteConv:
		t.outWords = convWords(t.writeConv[t.convSel])
		t.outPos = 0
		return device.Accepted
	case funcLoadReadConv:
		t.convLoad, t.convLoadIsWrite, t.convLoadPos = true, false, 0
		return device.Accepted
	case funcLoadWriteConv:
		t.convLoad, t.convLoadIsWrite, t.convLoadPos = true, true, 0
		return device.Accepted
	case funcMasterClear:
		t.masterClear()
		return device.Processed
	}
	return device.Declined
}

func convWords(table [convTableSize]byte) []word.PpWord {
	w := make([]word.PpWord, convTableSize)
	for i, b := range table {
		w[i] = word.PpWord(b)
	}
	return w
}

func (t *Tape) masterClear() {
	t.dir = dirNone
	t.readLen = 0
	t.writeLen = 0
	t.convLoad = false
	t.busy = false
	t.rewinding = false
	t.detail = 0
}

// Activate/Disconnect/IO/Equipment satisfy device.Device. Disconnect is
// where an in-progress write's final partial frame group, if any, is
// flushed and the record closed, mirroring the channel-driven
// end-of-record signal a real controller gets from CCW chain completion.
func (t *Tape) Activate() {}
func (t *Tape) Disconnect() {
	switch t.dir {
	case dirWrite:
		t.flushPartialWrite()
		_ = t.ctx.FinishRecord()
	case dirRead, dirReadBack:
		_ = t.ctx.FinishRecord()
	}
	t.dir = dirNone
}
func (t *Tape) IO()             {}
func (t *Tape) Equipment() uint { return t.equipment }

// beginRead starts a forward or backward record read. TapeMARK and
// TapeEOT are reported immediately as sticky status, per
// ReadForwStart/ReadBackStart's own sentinel-error contract; any other
// error marks the operation abnormal.
func (t *Tape) beginRead(backward bool) {
	if t.debugMask&debug.Cmd != 0 {
		slog.Debug("tape read", "equipment", t.equipment, "backward", backward)
	}
	t.readLen = 0
	t.atEOR = false
	var err error
	if backward {
		t.dir = dirReadBack
		err = t.ctx.ReadBackStart()
	} else {
		t.dir = dirRead
		err = t.ctx.ReadForwStart()
	}
	if !t.applyStartError(err) {
		t.dir = dirNone
	}
}

// applyStartError folds a ReadForwStart/ReadBackStart/WriteStart result
// into sticky status, reporting TapeMARK/TapeEOT/TapeBOT as their own
// status bits rather than a generic abnormal condition, per those
// functions' own sentinel-error contract. It returns whether the
// operation actually started (err == nil).
func (t *Tape) applyStartError(err error) bool {
	t.markFound = false
	switch {
	case err == nil:
		t.detail = 0
		return true
	case errors.Is(err, tapeio.TapeMARK):
		t.detail = statusMark
		t.markFound = true
	case errors.Is(err, tapeio.TapeEOT):
		t.detail = statusEOT
	case errors.Is(err, tapeio.TapeBOT):
		t.detail = statusBOT
	default:
		t.detail = statusAbnormal | statusNonRecover
	}
	return false
}

func (t *Tape) beginWrite() {
	t.writeLen = 0
	t.dir = dirWrite
	if !t.applyStartError(t.ctx.WriteStart()) {
		t.dir = dirNone
	}
}

func (t *Tape) writeTapeMark() {
	if err := t.ctx.WriteMark(); err != nil {
		t.detail = statusAbnormal | statusNonRecover
		return
	}
	t.detail = 0
}

// fillReadQueue pulls one 3-byte/2-word group from the container,
// running each byte through the selected read-conversion table when one
// is in effect. Hitting end-of-record finishes the record and leaves the
// queue empty; the caller (In) then reports no more data via Full().
func (t *Tape) fillReadQueue() {
	var raw [3]byte
	n := 0
	for n < 3 {
		b, err := t.ctx.ReadFrame()
		if err != nil {
			if errors.Is(err, tapeio.TapeEOR) {
				_ = t.ctx.FinishRecord()
				t.atEOR = true
				break
			}
			t.detail = statusAbnormal | statusNonRecover
			t.atEOR = true
			break
		}
		if t.convUse {
			b = t.readConv[t.convSel][b&(convTableSize-1)]
		}
		raw[n] = b
		n++
	}
	if n == 0 {
		return
	}
	for i := n; i < 3; i++ {
		raw[i] = 0
	}
	t.readQueue[0] = word.PpWord(raw[0])<<4 | word.PpWord(raw[1]>>4)
	t.readQueue[1] = word.PpWord(raw[1]&0xF)<<8 | word.PpWord(raw[2])
	t.readLen = 2
}

// In returns the next queued data or status word.
func (t *Tape) In() word.PpWord {
	if t.dir == dirRead || t.dir == dirReadBack {
		if t.readLen == 0 && !t.atEOR {
			t.fillReadQueue()
		}
		if t.readLen == 0 {
			return 0
		}
		w := t.readQueue[2-t.readLen]
		t.readLen--
		return w
	}
	if t.outPos >= len(t.outWords) {
		return 0
	}
	w := t.outWords[t.outPos]
	t.outPos++
	return w
}

// Out accepts one word of write data, a conversion-table load word, or is
// ignored outside those two intakes.
func (t *Tape) Out(data word.PpWord) {
	if t.convLoad {
		t.acceptConvWord(data)
		return
	}
	if t.dir != dirWrite {
		return
	}
	t.writeBuf[t.writeLen] = data
	t.writeLen++
	if t.writeLen == 2 {
		t.flushPartialWrite()
	}
}

func (t *Tape) acceptConvWord(data word.PpWord) {
	b := byte(data) & (convTableSize - 1)
	if t.convLoadIsWrite {
		t.writeConv[t.convSel][t.convLoadPos] = b
	} else {
		t.readConv[t.convSel][t.convLoadPos] = b
	}
	t.convLoadPos++
	if t.convLoadPos >= convTableSize {
		t.convLoad = false
	}
}

// flushPartialWrite unpacks the two buffered 12-bit words back into three
// bytes and writes them to the container, through the write-conversion
// table when one is in effect.
func (t *Tape) flushPartialWrite() {
	if t.writeLen == 0 {
		return
	}
	w0, w1 := t.writeBuf[0], t.writeBuf[1]
	raw := [3]byte{
		byte(w0 >> 4),
		byte(w0<<4) | byte(w1>>8),
		byte(w1),
	}
	for _, b := range raw {
		if t.convUse {
			b = t.writeConv[t.convSel][b&(convTableSize-1)]
		}
		if err := t.ctx.WriteFrame(b); err != nil {
			t.detail = statusAbnormal | statusNonRecover
			break
		}
	}
	t.writeLen = 0
}

// skipRecord reads (or reads-backward) one record without queuing any
// words, for Forespace/Backspace.
func (t *Tape) skipRecord(backward bool) {
	var err error
	if backward {
		err = t.ctx.ReadBackStart()
	} else {
		err = t.ctx.ReadForwStart()
	}
	if !t.applyStartError(err) {
		return
	}
	for {
		if _, rerr := t.ctx.ReadFrame(); rerr != nil {
			break
		}
	}
	_ = t.ctx.FinishRecord()
}

// searchMark skips records until a tape mark or EOT/BOT sentinel stops
// the scan; bounded by maxScanRecords as a safety backstop, not a
// hardware limit.
func (t *Tape) searchMark(backward bool) {
	for i := 0; i < maxScanRecords; i++ {
		var err error
		if backward {
			err = t.ctx.ReadBackStart()
		} else {
			err = t.ctx.ReadForwStart()
		}
		started := t.applyStartError(err)
		if t.markFound || (!started && t.detail&(statusEOT|statusBOT) != 0) {
			return
		}
		if !started {
			return
		}
		for {
			if _, rerr := t.ctx.ReadFrame(); rerr != nil {
				break
			}
		}
		_ = t.ctx.FinishRecord()
	}
}

// startRewind begins an incremental rewind, stepping rewindChunk frames
// per scheduled tick until the container reports beginning-of-tape,
// mirroring RewindFrames' own per-call chunked contract. unload detaches
// the container once the rewind completes.
func (t *Tape) startRewind(unload bool) {
	if err := t.ctx.StartRewind(); err != nil {
		t.detail = statusAbnormal | statusNonRecover
		return
	}
	t.rewinding = true
	t.unloadAt = unload
	t.busy = true
	t.scheduleRewindStep()
}

func (t *Tape) scheduleRewindStep() {
	t.sched.Add(t, t.rewindStep, rewindDelay, 0)
}

func (t *Tape) rewindStep(int) {
	if t.ctx.RewindFrames(rewindChunk) {
		t.rewinding = false
		t.busy = false
		t.detail = statusBOT
		if t.unloadAt {
			_ = t.ctx.Detach()
		}
		return
	}
	t.scheduleRewindStep()
}

// statusWords builds the General, Detailed, or Unit status word.
// Detailed adds the sticky detail bits already folded into the summary;
// Unit reports the write-ring/BOT media-state bits instead.
func (t *Tape) statusWords(detailed, unit bool) []word.PpWord {
	flags := t.detail
	if t.busy {
		flags |= statusBusy
	} else {
		flags |= statusReady
	}
	if t.ctx.TapeRing() {
		flags |= statusWriteRing
	}
	if t.ctx.TapeAtLoadPt() {
		flags |= statusBOT
	}
	words := []word.PpWord{word.PpWord(flags)}
	if detailed {
		words = append(words, word.PpWord(t.detail))
	}
	if unit {
		words = append(words, word.PpWord(flags&(statusWriteRing|statusBOT)))
	}
	return words
}

// Full reports whether a queued data/status word is waiting to be read.
func (t *Tape) Full() bool {
	if t.dir == dirRead || t.dir == dirReadBack {
		return t.readLen > 0 || !t.atEOR
	}
	return t.outPos < len(t.outWords)
}

// Empty reports whether the controller is ready to accept another word.
func (t *Tape) Empty() bool {
	return t.dir == dirWrite || t.convLoad
}

// Flags reports the PCI active/full bits the channel polls.
func (t *Tape) Flags() uint16 {
	var f uint16
	if t.busy || t.dir != dirNone || t.convLoad || t.Full() {
		f |= 1 << 0
	}
	if t.Full() {
		f |= 1 << 1
	}
	return f
}
