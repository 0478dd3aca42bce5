/*
 * CyberCore - Operator console line reader
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

// Package reader is a narrow, optional operator console: a liner-backed
// prompt accepting "pause", "resume", "dump", and "quit" against
// anything satisfying emu/machine's OperatorControl interface. It is a
// convenience binding a cmd/ entry point may wire in; nothing under
// emu/ imports it.
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peterh/liner"
)

// OperatorControl is the narrow surface this console drives; it matches
// emu/machine.Machine's Pause/Resume/RequestDump methods structurally so
// no adapter type is needed to pass a *machine.Machine in directly.
type OperatorControl interface {
	Pause()
	Resume()
	RequestDump() string
}

var commandNames = []string{"pause", "resume", "dump", "quit", "help"}

// ConsoleReader runs an interactive prompt against ctrl until the
// operator types "quit" or aborts the prompt (Ctrl-D/Ctrl-C).
func ConsoleReader(ctrl OperatorControl) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var matches []string
		for _, name := range commandNames {
			if strings.HasPrefix(name, partial) {
				matches = append(matches, name)
			}
		}
		return matches
	})

	for {
		input, err := line.Prompt("cyber> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("console: error reading line", "error", err)
			return
		}
		line.AppendHistory(input)

		if quit := dispatch(ctrl, strings.TrimSpace(input)); quit {
			return
		}
	}
}

// dispatch runs one command line, returning true when the operator asked
// to quit.
func dispatch(ctrl OperatorControl, cmd string) bool {
	switch strings.ToLower(cmd) {
	case "":
		return false
	case "pause":
		ctrl.Pause()
	case "resume":
		ctrl.Resume()
	case "dump":
		fmt.Println(ctrl.RequestDump())
	case "quit", "exit":
		return true
	case "help":
		fmt.Println("commands: pause, resume, dump, quit")
	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
	return false
}
