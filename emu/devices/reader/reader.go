/*
 * CyberCore - Card reader channel device
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

// Package reader implements the representative card reader device: an
// 80-column card image, one Hollerith-coded 12-bit word per column,
// drawn a line at a time from a LineSource and reported end-of-deck the
// way a real hopper running dry would.
package reader

import (
	"log/slog"

	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/word"
	"github.com/rcornwell/cyber-core/util/card"
	"github.com/rcornwell/cyber-core/util/debug"
)

const columnsPerCard = 80

// Function codes the controller recognizes.
const (
	funcRead = 0o0001 + iota
	funcGeneralStatus
	funcDetailedStatus
	funcSelectStacker
	funcMasterClear
)

const (
	statusReady       uint16 = 1 << 0
	statusBusy        uint16 = 1 << 1
	statusEndOfDeck   uint16 = 1 << 2
	statusCardLoaded  uint16 = 1 << 3
)

// LineSource supplies one card's worth of text per call; ok is false
// once the deck (hopper) is exhausted. It matches the shape of
// emu/machine.TextSource so any implementation of that interface
// attaches without adapter code.
type LineSource interface {
	ReadLine() (string, bool)
}

// Reader is one card reader attached to a channel: an 80-column card
// buffer filled by LineSource.ReadLine and clocked out one Hollerith
// word at a time through In().
type Reader struct {
	channel   device.ChannelID
	equipment uint
	source    LineSource

	card    [columnsPerCard]word.PpWord
	col     int
	loaded  bool
	atDeck  bool // deck exhausted; no more cards to load
	busy    bool
	stacker int

	debugMask debug.Mask
}

// Debug enables the named debug options (comma or space separated),
// per util/debug's shared vocabulary.
func (r *Reader) Debug(names string) error {
	mask, err := debug.ParseAll(names)
	if err != nil {
		return err
	}
	r.debugMask |= mask
	return nil
}

// New returns a Reader drawing card images from source.
func New(ch device.ChannelID, equipment uint, source LineSource) *Reader {
	return &Reader{channel: ch, equipment: equipment, source: source}
}

// loadCard pulls the next line from the source and translates it,
// column by column, into Hollerith punch codes; short lines are
// space-padded to a full 80 columns.
func (r *Reader) loadCard() {
	line, ok := r.source.ReadLine()
	if !ok {
		r.atDeck = true
		return
	}
	if r.debugMask&debug.Data != 0 {
		slog.Debug("reader card", "equipment", r.equipment, "text", line)
	}
	for i := 0; i < columnsPerCard; i++ {
		ch := byte(' ')
		if i < len(line) {
			ch = line[i]
		}
		r.card[i] = word.PpWord(card.AsciiToHol(ch))
	}
	r.col = 0
	r.loaded = true
}

// Func dispatches a function code to the read-start or status handler.
func (r *Reader) Func(code word.PpWord) device.Func {
	switch int(code) {
	case funcRead:
		if r.atDeck {
			return device.Accepted
		}
		if !r.loaded {
			r.loadCard()
		}
		return device.Accepted
	case funcGeneralStatus, funcDetailedStatus:
		return device.Accepted
	case funcSelectStacker:
		r.stacker = 1
		return device.Processed
	case funcMasterClear:
		r.col = 0
		r.loaded = false
		r.atDeck = false
		r.busy = false
		return device.Processed
	}
	return device.Declined
}

// In returns the next column's Hollerith code, or the status word if no
// card is currently loaded.
func (r *Reader) In() word.PpWord {
	if !r.loaded {
		return word.PpWord(r.Flags())
	}
	out := r.card[r.col]
	r.col++
	if r.col >= columnsPerCard {
		r.loaded = false
	}
	return out
}

// Out is unused; the reader is a pure source.
func (r *Reader) Out(_ word.PpWord) {}

func (r *Reader) Activate()       {}
func (r *Reader) Disconnect()     { r.loaded = false }
func (r *Reader) IO()             {}
func (r *Reader) Equipment() uint { return r.equipment }

// Full reports whether the reader currently holds unread column data.
func (r *Reader) Full() bool { return r.loaded }

// Empty reports whether the reader is ready to start a new card.
func (r *Reader) Empty() bool { return !r.loaded && !r.busy }

func (r *Reader) Flags() uint16 {
	flags := statusReady
	if r.loaded {
		flags |= statusCardLoaded
	}
	if r.atDeck {
		flags |= statusEndOfDeck
	}
	if r.busy {
		flags |= statusBusy
	}
	return flags
}
