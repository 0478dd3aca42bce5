/*
 * CyberCore - Operator control surface
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
	"strings"

	"github.com/rcornwell/cyber-core/util/hex"
)

// dumpWords is how many leading CM words RequestDump renders; a full
// memory dump belongs to a file-attach postmortem tool, not this narrow
// operator surface.
const dumpWords = 16

// Pause stops the CPU in place; PPs keep running (they model independent
// processors), matching a real deadstart panel's CP-only stop switch.
func (m *Machine) Pause() {
	m.CP.Stopped = true
}

// Resume restarts the CPU from its current P without re-arming a fresh
// fetch boundary, the same effect as CPU.Start.
func (m *Machine) Resume() {
	m.CP.Start()
}

// RequestDump renders the CPU's program address and the leading words of
// CM as a hex string, satisfying OperatorControl's narrow postmortem
// hook. It is deliberately not a full-memory dump tool.
func (m *Machine) RequestDump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "P=%06o stopped=%v cycles=%d\n", m.CP.P, m.CP.Stopped, m.Cycles)

	n := dumpWords
	if n > m.CM.Size() {
		n = m.CM.Size()
	}
	for addr := 0; addr < n; addr++ {
		w := m.CM.GetWord(uint32(addr))
		hex.FormatWord(&b, []uint32{uint32(w >> 32), uint32(w)})
		b.WriteByte('\n')
	}
	return b.String()
}
