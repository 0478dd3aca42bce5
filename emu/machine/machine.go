/*
 * CyberCore - Machine: the explicit, singleton-free owning struct
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

// Package machine wires C1-C11 together into one owning struct: central
// memory and extended memory, the PP barrel, the central processor, the
// channel fabric, and the event scheduler they all share. Tick() is the
// single per-cycle driver; it is the only place machine state mutates.
package machine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcornwell/cyber-core/emu/channel"
	"github.com/rcornwell/cyber-core/emu/cpu"
	"github.com/rcornwell/cyber-core/emu/device"
	"github.com/rcornwell/cyber-core/emu/event"
	"github.com/rcornwell/cyber-core/emu/memory"
	"github.com/rcornwell/cyber-core/emu/ppu"
	"github.com/rcornwell/cyber-core/emu/word"
)

// Config names the dimensions config/configparser resolves from a config
// file: central/extended memory size in 60-bit words, PP count, and
// channel count. A Machine's PP and channel slices are sized from it
// once, at New, rather than fixed array constants, since spec.md's model
// table names several Cyber models with different PP/channel counts.
type Config struct {
	Model        string
	CMWords      int
	EMWords      int
	PPCount      int
	ChannelCount int
}

// ErrBadConfiguration is the one error kind New returns: a Config whose
// dimensions cannot build a working machine (zero/negative sizes, no
// PPs, no channels).
var ErrBadConfiguration = errors.New("bad configuration")

// Machine owns every piece of architectural state: no package-level
// mutable globals exist anywhere in emu/, a deliberate departure from
// the teacher's package-global cpu/memory state, required so multiple
// machines (or repeated test runs) never share state through a global.
type Machine struct {
	CM    *memory.Store
	EM    *memory.Store
	PPs   []ppu.PP
	CP    cpu.CPU
	Channels []channel.Channel
	Sched *event.Scheduler

	Cycles uint64
}

// New validates cfg and builds a Machine with freshly zeroed CM, EM, PP,
// CPU, and channel state. The CPU starts stopped; Deadstart (see
// deadstart.go) arms it.
func New(cfg Config) (*Machine, error) {
	if cfg.CMWords <= 0 || cfg.EMWords < 0 || cfg.PPCount <= 0 || cfg.ChannelCount <= 0 {
		return nil, fmt.Errorf("%w: model %q needs positive CM/PP/channel sizes, got CM=%d EM=%d PPs=%d channels=%d",
			ErrBadConfiguration, cfg.Model, cfg.CMWords, cfg.EMWords, cfg.PPCount, cfg.ChannelCount)
	}

	cm := memory.New(cfg.CMWords, memory.Wrap)
	em := memory.New(cfg.EMWords, memory.Wrap)

	m := &Machine{
		CM:       cm,
		EM:       em,
		PPs:      make([]ppu.PP, cfg.PPCount),
		CP:       *cpu.New(cm, em),
		Channels: make([]channel.Channel, cfg.ChannelCount),
		Sched:    event.NewScheduler(),
	}
	for i := range m.PPs {
		m.PPs[i] = *ppu.New()
	}
	for i := range m.Channels {
		m.Channels[i] = *channel.New()
	}
	slog.Info("machine configured", "model", cfg.Model, "cm", cfg.CMWords,
		"em", cfg.EMWords, "pps", cfg.PPCount, "channels", cfg.ChannelCount)
	return m, nil
}

// Tick steps every PP once, the CPU once, every channel's delayed-
// disconnect/status countdown once, and advances the shared event
// scheduler by one cycle. It is the only mutator of CM/EM/PP/CP/channel
// state, matching the teacher's single-goroutine CPU-loop design: one
// driver, called from whatever TickSource an embedder injects.
func (m *Machine) Tick() {
	for i := range m.PPs {
		m.PPs[i].Step(m)
	}
	m.CP.Step()
	for i := range m.Channels {
		m.Channels[i].Step()
	}
	m.Sched.Advance(1)
	m.Cycles++
}

// ReadCM and WriteCM satisfy ppu.Bus, relocation already folded into addr
// by the caller (pp.cmAddress honors R before calling here).
func (m *Machine) ReadCM(addr uint32) word.CpWord   { return m.CM.GetWord(addr) }
func (m *Machine) WriteCM(addr uint32, v word.CpWord) { m.CM.PutWord(addr, v) }

// Channel returns a pointer to the channel slot id names, satisfying
// ppu.Bus. Devices never hold this pointer themselves (see emu/device),
// only the PP opcode handlers that need it for the duration of one call.
func (m *Machine) Channel(id device.ChannelID) *channel.Channel {
	if id < 0 || int(id) >= len(m.Channels) {
		return nil
	}
	return &m.Channels[id]
}

// RequestExchange satisfies ppu.Bus, forwarding to the CPU's own
// RequestExchange (uint32 address; ppu speaks PpWord so the bus boundary
// is where the cast happens, not inside either package).
func (m *Machine) RequestExchange(addr word.PpWord, monitor bool) bool {
	return m.CP.RequestExchange(uint32(addr), monitor)
}

// CPUProgramAddress satisfies ppu.Bus for the RPN opcode; the cast from
// the CPU's native uint32 P register to a 12-bit PpWord happens at this
// bus boundary, not inside emu/cpu, which has no reason to know about
// PP-sized words.
func (m *Machine) CPUProgramAddress() word.PpWord {
	return word.PpWord(m.CP.CPUProgramAddress())
}
