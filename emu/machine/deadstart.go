/*
 * CyberCore - Deadstart loader
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
	"fmt"

	"github.com/rcornwell/cyber-core/emu/cpu"
	"github.com/rcornwell/cyber-core/emu/ppu"
	"github.com/rcornwell/cyber-core/emu/word"
)

// ErrPanelTooLarge is returned by LoadPanel when the supplied deadstart
// panel image does not fit in PP 0's private memory.
var ErrPanelTooLarge = fmt.Errorf("deadstart panel exceeds PP memory")

// Deadstart resets every register in every PP and the CPU to zero, the
// same "arm a well-known starting microstate" operation the teacher's
// InitializeCPU performs for its single S/370 CPU, generalized here
// across the whole barrel plus the CP, then loads panel into PP 0's
// memory starting at location zero and leaves PP 0's P at zero so the
// first instruction it fetches is the panel's own bootstrap code.
func (m *Machine) Deadstart(panel []word.PpWord) error {
	for i := range m.PPs {
		m.PPs[i] = *ppu.New()
	}
	if err := m.LoadPanel(panel); err != nil {
		return err
	}
	m.CP = *cpu.New(m.CM, m.EM)
	m.CP.Start()
	m.Cycles = 0
	return nil
}

// LoadPanel copies panel into PP 0's private memory without otherwise
// touching machine state; exposed separately so tests (or an external
// operator tool) can load an arbitrary boot deck rather than one
// hard-coded panel image, per the original implementation's support for
// multiple named deadstart panels.
func (m *Machine) LoadPanel(panel []word.PpWord) error {
	if len(panel) > len(m.PPs[0].Mem) {
		return fmt.Errorf("%w: %d words, PP memory holds %d", ErrPanelTooLarge, len(panel), len(m.PPs[0].Mem))
	}
	copy(m.PPs[0].Mem[:], panel)
	return nil
}
