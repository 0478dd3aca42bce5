/*
 * CyberCore - Machine tests
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
	"errors"
	"path/filepath"
	"testing"

	"github.com/rcornwell/cyber-core/emu/word"
)

func testConfig() Config {
	return Config{Model: "test", CMWords: 256, EMWords: 256, PPCount: 2, ChannelCount: 2}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	cases := []Config{
		{Model: "x", CMWords: 0, EMWords: 0, PPCount: 1, ChannelCount: 1},
		{Model: "x", CMWords: 1, EMWords: 0, PPCount: 0, ChannelCount: 1},
		{Model: "x", CMWords: 1, EMWords: 0, PPCount: 1, ChannelCount: 0},
	}
	for _, cfg := range cases {
		if _, err := New(cfg); !errors.Is(err, ErrBadConfiguration) {
			t.Fatalf("New(%+v) error = %v, want ErrBadConfiguration", cfg, err)
		}
	}
}

func TestNewSizesPPsAndChannels(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if len(m.PPs) != 2 || len(m.Channels) != 2 {
		t.Fatalf("got %d PPs, %d channels, want 2, 2", len(m.PPs), len(m.Channels))
	}
}

func TestTickAdvancesCyclesAndScheduler(t *testing.T) {
	m, _ := New(testConfig())
	for i := 0; i < 10; i++ {
		m.Tick()
	}
	if m.Cycles != 10 {
		t.Fatalf("Cycles = %d, want 10", m.Cycles)
	}
}

func TestChannelReturnsNilForOutOfRangeID(t *testing.T) {
	m, _ := New(testConfig())
	if ch := m.Channel(99); ch != nil {
		t.Fatalf("Channel(99) = %v, want nil", ch)
	}
	if ch := m.Channel(0); ch == nil {
		t.Fatalf("Channel(0) = nil, want a valid channel")
	}
}

func TestDeadstartLoadsPanelAndResetsState(t *testing.T) {
	m, _ := New(testConfig())
	m.Cycles = 42
	panel := []word.PpWord{0o1234, 0o5670}

	if err := m.Deadstart(panel); err != nil {
		t.Fatalf("Deadstart() error: %v", err)
	}
	if m.Cycles != 0 {
		t.Fatalf("Cycles after Deadstart = %d, want 0", m.Cycles)
	}
	if m.PPs[0].Mem[0] != panel[0] || m.PPs[0].Mem[1] != panel[1] {
		t.Fatalf("PP 0 memory after Deadstart = %v, want panel loaded at 0", m.PPs[0].Mem[:2])
	}
	if m.CP.Stopped {
		t.Fatalf("CPU should be running after Deadstart")
	}
}

func TestLoadPanelRejectsOversizedImage(t *testing.T) {
	m, _ := New(testConfig())
	huge := make([]word.PpWord, len(m.PPs[0].Mem)+1)
	if err := m.LoadPanel(huge); !errors.Is(err, ErrPanelTooLarge) {
		t.Fatalf("LoadPanel(oversized) error = %v, want ErrPanelTooLarge", err)
	}
}

func TestSaveLoadRoundTripsCM(t *testing.T) {
	m, _ := New(testConfig())
	for i := 0; i < 8; i++ {
		m.CM.PutWord(uint32(i), word.CpWord(i*7+1))
	}
	dir := t.TempDir()
	paths := Paths{CM: filepath.Join(dir, "cm.bin")}
	if err := m.Save(paths); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m2, _ := New(testConfig())
	if err := m2.Load(paths); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	for i := 0; i < 8; i++ {
		if got := m2.CM.GetWord(uint32(i)); got != word.CpWord(i*7+1) {
			t.Fatalf("CM word %d after round trip = %d, want %d", i, got, i*7+1)
		}
	}
}

func TestSaveLoadRoundTripsPPMemory(t *testing.T) {
	m, _ := New(testConfig())
	m.PPs[0].Mem[0] = 0o4321
	m.PPs[1].Mem[5] = 0o17

	dir := t.TempDir()
	paths := Paths{PPs: []string{
		filepath.Join(dir, "pp0.bin"),
		filepath.Join(dir, "pp1.bin"),
	}}
	if err := m.Save(paths); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m2, _ := New(testConfig())
	if err := m2.Load(paths); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m2.PPs[0].Mem[0] != 0o4321 || m2.PPs[1].Mem[5] != 0o17 {
		t.Fatalf("PP memory after round trip = %o, %o, want 4321, 17", m2.PPs[0].Mem[0], m2.PPs[1].Mem[5])
	}
}

func TestRequestDumpReportsProgramAddress(t *testing.T) {
	m, _ := New(testConfig())
	m.CP.P = 0o17
	out := m.RequestDump()
	if out == "" {
		t.Fatalf("RequestDump() returned empty string")
	}
}

func TestPauseResumeTogglesStopped(t *testing.T) {
	m, _ := New(testConfig())
	m.Resume()
	if m.CP.Stopped {
		t.Fatalf("CPU should be running after Resume")
	}
	m.Pause()
	if !m.CP.Stopped {
		t.Fatalf("CPU should be stopped after Pause")
	}
}
