/*
 * CyberCore - Card reader channel device tests
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

package reader

import (
	"testing"

	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/word"
	"github.com/rcornwell/cyber-core/util/card"
)

// deckSource is a fixed deck of lines, standing in for a real hopper.
type deckSource struct {
	lines []string
	pos   int
}

func (d *deckSource) ReadLine() (string, bool) {
	if d.pos >= len(d.lines) {
		return "", false
	}
	line := d.lines[d.pos]
	d.pos++
	return line, true
}

func TestReadLoadsFirstCardOfDeck(t *testing.T) {
	src := &deckSource{lines: []string{"HELLO"}}
	r := New(device.ChannelID(0), 1, src)

	if got := r.Func(word.PpWord(funcRead)); got != device.Accepted {
		t.Fatalf("Func(read) = %v, want Accepted", got)
	}
	if !r.loaded {
		t.Fatalf("card should be loaded after a read start")
	}
	want := card.AsciiToHol('H')
	if got := r.In(); got != word.PpWord(want) {
		t.Fatalf("first column = %#x, want %#x", got, want)
	}
}

func TestShortLineIsSpacePadded(t *testing.T) {
	src := &deckSource{lines: []string{"AB"}}
	r := New(device.ChannelID(0), 1, src)
	r.Func(word.PpWord(funcRead))

	for i := 0; i < columnsPerCard; i++ {
		want := byte(' ')
		if i < 2 {
			want = "AB"[i]
		}
		if got := r.In(); got != word.PpWord(card.AsciiToHol(want)) {
			t.Fatalf("column %d = %#x, want %#x", i, got, card.AsciiToHol(want))
		}
	}
	if r.loaded {
		t.Fatalf("card should unload after its 80th column is read")
	}
}

func TestEndOfDeckSetsStatus(t *testing.T) {
	src := &deckSource{lines: []string{}}
	r := New(device.ChannelID(0), 1, src)
	r.Func(word.PpWord(funcRead))

	if r.Flags()&statusEndOfDeck == 0 {
		t.Fatalf("reading an empty deck should set statusEndOfDeck, flags=%#x", r.Flags())
	}
}

func TestMasterClearResetsState(t *testing.T) {
	src := &deckSource{lines: []string{"X"}}
	r := New(device.ChannelID(0), 1, src)
	r.Func(word.PpWord(funcRead))
	r.Func(word.PpWord(funcMasterClear))

	if r.loaded || r.atDeck || r.col != 0 {
		t.Fatalf("master clear should reset loaded/atDeck/col state")
	}
}

func TestUnknownFunctionDeclines(t *testing.T) {
	src := &deckSource{lines: nil}
	r := New(device.ChannelID(0), 1, src)
	if got := r.Func(0o7777); got != device.Declined {
		t.Fatalf("Func(unknown) = %v, want Declined", got)
	}
}
