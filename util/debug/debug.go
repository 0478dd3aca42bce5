/*
 * CyberCore - Per-device debug option mask parser
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

// Package debug gives every device package a uniform, named debug-option
// mask: a device registers the option names it understands once at init
// time, then exposes its own Debug(name string) error hook (the operator
// console calls it by device) that turns a name into a bit via Parse and
// ORs it into whatever mask field the device checks before logging through
// slog. The registry is global because option names (CMD, DATA, DETAIL,
// STATUS, ...) are shared vocabulary across device kinds, not because any
// state beyond the name table lives here.
package debug

import (
	"fmt"
	"strings"
)

// Mask is a bitset of enabled debug options. A device stores its own Mask
// and checks it directly before emitting a log record; this package never
// holds per-device state.
type Mask uint32

// Common option bits most device packages register; a device that needs
// finer detail is free to Register additional bits of its own starting
// above these.
const (
	Cmd Mask = 1 << iota
	Data
	Detail
	Status
)

// options maps a registered name to its bit.
var options = map[string]Mask{}

func init() {
	Register("CMD", Cmd)
	Register("DATA", Data)
	Register("DETAIL", Detail)
	Register("STATUS", Status)
}

// Register assigns name to bit, so later Parse calls recognize it. Panics
// on a duplicate name: two device packages picking conflicting bit
// assignments for the same vocabulary is a startup-time programming
// error, not a runtime condition to recover from.
func Register(name string, bit Mask) {
	name = strings.ToUpper(name)
	if _, exists := options[name]; exists {
		panic("debug: option " + name + " already registered")
	}
	options[name] = bit
}

// Parse turns a single option name into its registered bit.
func Parse(name string) (Mask, error) {
	bit, ok := options[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("unknown debug option: %s", name)
	}
	return bit, nil
}

// ParseAll turns a comma-or-space separated list of option names into a
// combined mask, the form an operator "debug <device> <names>" command
// line naturally produces.
func ParseAll(names string) (Mask, error) {
	var mask Mask
	for _, field := range strings.FieldsFunc(names, func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		if field == "" {
			continue
		}
		bit, err := Parse(field)
		if err != nil {
			return 0, err
		}
		mask |= bit
	}
	return mask, nil
}
