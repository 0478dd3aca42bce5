/*
 * CyberCore - Central and extended memory stores
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

// Package memory implements the word-addressed central and extended memory
// stores shared by the PP barrel and the CPU core: bounds-checked
// GetWord/PutWord with a configurable wrap/no-wrap policy on out-of-range
// access, plus raw persistence load/save of the backing array.
package memory

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rcornwell/cyber-core/emu/word"
)

// WrapMode selects how a store handles an access past its configured size.
type WrapMode int

const (
	// Wrap silently reduces an out-of-range address modulo size.
	Wrap WrapMode = iota
	// NoWrap returns all-ones for out-of-range reads and drops
	// out-of-range writes.
	NoWrap
)

// Store is a sequence of 60-bit words with bounds-checked access. CM and EM
// are each one Store value, owned by the containing Machine; there is no
// package-level shared state.
type Store struct {
	mem  []word.CpWord
	wrap WrapMode
}

// New allocates a Store of the given size (in words) with the given
// out-of-range policy.
func New(size int, wrap WrapMode) *Store {
	return &Store{mem: make([]word.CpWord, size), wrap: wrap}
}

// Size returns the number of words the store holds.
func (s *Store) Size() int {
	return len(s.mem)
}

// SetWrapMode changes the out-of-range policy of an already-allocated store.
func (s *Store) SetWrapMode(wrap WrapMode) {
	s.wrap = wrap
}

// resolve maps a raw address to an in-range index, applying the store's
// wrap policy. ok is false when the address must be treated as an
// out-of-range access (NoWrap mode only).
func (s *Store) resolve(addr uint32) (idx uint32, ok bool) {
	size := uint32(len(s.mem))
	if size == 0 {
		return 0, false
	}
	if addr < size {
		return addr, true
	}
	if s.wrap == Wrap {
		return addr % size, true
	}
	return 0, false
}

// GetWord reads one word at a raw (already-relocated) address, applying the
// store's wrap policy. PP- and CP-initiated reads share this entry point;
// the caller is responsible for any RA/FL bounds check and exit-condition
// reporting that precedes the raw access.
func (s *Store) GetWord(addr uint32) word.CpWord {
	idx, ok := s.resolve(addr)
	if !ok {
		return word.Mask60Bits
	}
	return s.mem[idx] & word.Mask60Bits
}

// PutWord writes one word at a raw address, applying the store's wrap
// policy. An out-of-range write in NoWrap mode is silently dropped.
func (s *Store) PutWord(addr uint32, data word.CpWord) {
	idx, ok := s.resolve(addr)
	if !ok {
		return
	}
	s.mem[idx] = data & word.Mask60Bits
}

// CheckAddr reports whether addr is within the store's configured size,
// without applying the wrap policy. Callers use this for the CM/EM
// RA+FL bounds check that precedes a raw GetWord/PutWord.
func (s *Store) CheckAddr(addr uint32) bool {
	return addr < uint32(len(s.mem))
}

// BlockTransfer copies count words between this store and other, starting
// at the given addresses, incrementing this store's address modulo its
// size per word as the EM block-transfer operation requires. When
// zeroFill is true, words are zeroed at the destination rather than copied.
func (s *Store) BlockTransfer(addr uint32, other *Store, otherAddr uint32, count int, toOther, zeroFill bool) {
	size := uint32(max(len(s.mem), 1))
	for i := 0; i < count; i++ {
		a := (addr + uint32(i)) % size
		b := otherAddr + uint32(i)
		switch {
		case toOther && zeroFill:
			other.PutWord(b, 0)
		case toOther:
			other.PutWord(b, s.GetWord(a))
		case zeroFill:
			s.PutWord(a, 0)
		default:
			s.PutWord(a, other.GetWord(b))
		}
	}
}

// Load replaces the store's contents from a persistent backing blob: one
// little-endian 8-byte word per slot. A blob whose length does not match
// the store exactly (short or long) is not zero-extended or truncated:
// the store is cleared to zero and a warning is logged, mirroring the
// teacher's attach-time "read a backing file, validate, and proceed"
// pattern used for tape and disk images, generalized to whole-memory
// persistence since the S/370 teacher has no such feature for CM itself.
func (s *Store) Load(r io.Reader) error {
	br := bufio.NewReader(r)
	var buf [8]byte
	words := make([]word.CpWord, len(s.mem))
	for i := range words {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				slog.Warn("memory: backing file shorter than store, clearing memory",
					"words", len(s.mem), "got", i)
				clear(s.mem)
				return nil
			}
			return fmt.Errorf("memory: load: %w", err)
		}
		words[i] = binary.LittleEndian.Uint64(buf[:]) & word.Mask60Bits
	}
	if _, err := br.Peek(1); err == nil {
		slog.Warn("memory: backing file longer than store, clearing memory", "words", len(s.mem))
		clear(s.mem)
		return nil
	}
	copy(s.mem, words)
	return nil
}

// Save writes the store's contents to w as one little-endian 8-byte word
// per slot.
func (s *Store) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var buf [8]byte
	for _, v := range s.mem {
		binary.LittleEndian.PutUint64(buf[:], v)
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("memory: save: %w", err)
		}
	}
	return bw.Flush()
}

// LoadFile opens path and loads it into the store, per Load's semantics.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("memory: open %s: %w", path, err)
	}
	defer f.Close()
	return s.Load(f)
}

// SaveFile writes the store's contents to path, truncating or creating it.
func (s *Store) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("memory: create %s: %w", path, err)
	}
	defer f.Close()
	return s.Save(f)
}
