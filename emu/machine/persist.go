/*
 * CyberCore - CM/EM/PP persistent store load and save
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

package machine

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/rcornwell/cyber-core/emu/word"
)

// Paths names the files a Machine's persistent state is checkpointed
// to and restored from: CM and EM as raw little-endian 8-bytes-per-word
// blobs (memory.Store.SaveFile/LoadFile already speak that format), and
// one flat file per PP holding its 4096-word private memory.
type Paths struct {
	CM  string
	EM  string
	PPs []string // one path per PP, indexed the same as Machine.PPs; empty entries are skipped
}

// Save writes CM, EM, and every named PP memory to the files paths
// names. A zero-value path (empty string) in CM, EM, or a PPs slot is
// skipped rather than treated as an error, so a caller can checkpoint a
// subset of state.
func (m *Machine) Save(paths Paths) error {
	if paths.CM != "" {
		if err := m.CM.SaveFile(paths.CM); err != nil {
			return fmt.Errorf("save CM: %w", err)
		}
	}
	if paths.EM != "" {
		if err := m.EM.SaveFile(paths.EM); err != nil {
			return fmt.Errorf("save EM: %w", err)
		}
	}
	for i, path := range paths.PPs {
		if path == "" || i >= len(m.PPs) {
			continue
		}
		if err := savePPMemory(path, m.PPs[i].Mem[:]); err != nil {
			return fmt.Errorf("save PP %d: %w", i, err)
		}
	}
	return nil
}

// Load restores CM, EM, and every named PP memory from the files paths
// names, the inverse of Save. A CM or EM file whose length does not match
// the store is handled as memory.Store.Load does: the store is cleared
// and a warning logged. A PP memory file of the wrong length is an error.
func (m *Machine) Load(paths Paths) error {
	if paths.CM != "" {
		if err := m.CM.LoadFile(paths.CM); err != nil {
			return fmt.Errorf("load CM: %w", err)
		}
	}
	if paths.EM != "" {
		if err := m.EM.LoadFile(paths.EM); err != nil {
			return fmt.Errorf("load EM: %w", err)
		}
	}
	for i, path := range paths.PPs {
		if path == "" || i >= len(m.PPs) {
			continue
		}
		if err := loadPPMemory(path, m.PPs[i].Mem[:]); err != nil {
			return fmt.Errorf("load PP %d: %w", i, err)
		}
	}
	return nil
}

// savePPMemory writes mem as raw little-endian 2-bytes-per-word, the PP
// analogue of memory.Store.SaveFile's CM/EM format.
func savePPMemory(path string, mem []word.PpWord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 2*len(mem))
	for i, w := range mem {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(w))
	}
	_, err = f.Write(buf)
	return err
}

// loadPPMemory reads a file written by savePPMemory back into mem. The
// file must be exactly len(mem) words; anything else is a BadConfiguration-
// style attach error, not a silent partial load.
func loadPPMemory(path string, mem []word.PpWord) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(buf) != 2*len(mem) {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrBadConfiguration, path, len(buf), 2*len(mem))
	}
	for i := range mem {
		mem[i] = word.PpWord(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return nil
}
