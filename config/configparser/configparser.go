/*
 * CyberCore - Machine configuration file parser
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

// Package configparser reads a small line-oriented configuration file
// describing a Cyber machine: one "model" line giving CM/EM size and PP
// and channel counts, and one "channel" line per attached device. The
// token scanner (skipSpace/isEOL/getWord, quoted-string values) is the
// teacher's own character-at-a-time style; the grammar above it targets
// this module's much smaller, fixed set of device kinds rather than the
// teacher's per-device-model self-registration system.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// ErrBadConfiguration is returned for any malformed config line: unknown
// directive, missing required field, or a value that fails to parse.
var ErrBadConfiguration = errors.New("bad configuration")

// ModelConfig is the "model" line's fields: machine name and the four
// sizing values emu/machine.Config needs.
type ModelConfig struct {
	Name         string
	CMWords      int
	EMWords      int
	PPCount      int
	ChannelCount int
}

// DeviceAttach is one "channel" line: which channel, what kind of device,
// and its key=value options (file path, geometry, equipment number).
type DeviceAttach struct {
	Channel int
	Kind    string
	Options map[string]string
}

// Config is everything LoadConfigFile extracts from one file.
type Config struct {
	Model   ModelConfig
	Devices []DeviceAttach
}

// LoadConfigFile reads and parses name, returning ErrBadConfiguration
// (wrapped with the offending line number) on any malformed line.
func LoadConfigFile(name string) (*Config, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := &Config{}
	reader := bufio.NewReader(file)
	lineNumber := 0
	for {
		text, err := reader.ReadString('\n')
		lineNumber++
		if len(text) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if parseErr := parseLine(cfg, text, lineNumber); parseErr != nil {
			return nil, parseErr
		}
		if err != nil && errors.Is(err, io.EOF) {
			break
		}
	}
	return cfg, nil
}

// optionLine is the scanner state for one line, in the teacher's own
// style: a position cursor walked forward by getNext/skipSpace rather
// than a regexp or split-on-whitespace pass.
type optionLine struct {
	line string
	pos  int
}

func parseLine(cfg *Config, text string, lineNumber int) error {
	ol := &optionLine{line: text}
	ol.skipSpace()
	if ol.isEOL() {
		return nil
	}

	directive, err := ol.getWord()
	if err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrBadConfiguration, lineNumber, err)
	}

	switch strings.ToLower(directive) {
	case "":
		return nil
	case "model":
		model, err := parseModelLine(ol)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrBadConfiguration, lineNumber, err)
		}
		cfg.Model = *model
	case "channel":
		dev, err := parseChannelLine(ol)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrBadConfiguration, lineNumber, err)
		}
		cfg.Devices = append(cfg.Devices, *dev)
	default:
		return fmt.Errorf("%w: line %d: unknown directive %q", ErrBadConfiguration, lineNumber, directive)
	}
	return nil
}

// parseModelLine parses: model <name> cm=<words> em=<words> pp=<count> channels=<count>
func parseModelLine(ol *optionLine) (*ModelConfig, error) {
	name, err := ol.getWord()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("model line missing model name")
	}

	opts, err := ol.parseOptions()
	if err != nil {
		return nil, err
	}

	model := &ModelConfig{Name: strings.ToUpper(name)}
	for key, value := range opts {
		n, convErr := strconv.Atoi(value)
		switch key {
		case "cm":
			if convErr != nil {
				return nil, fmt.Errorf("cm=%q: %w", value, convErr)
			}
			model.CMWords = n
		case "em":
			if convErr != nil {
				return nil, fmt.Errorf("em=%q: %w", value, convErr)
			}
			model.EMWords = n
		case "pp":
			if convErr != nil {
				return nil, fmt.Errorf("pp=%q: %w", value, convErr)
			}
			model.PPCount = n
		case "channels":
			if convErr != nil {
				return nil, fmt.Errorf("channels=%q: %w", value, convErr)
			}
			model.ChannelCount = n
		default:
			return nil, fmt.Errorf("unknown model option %q", key)
		}
	}
	return model, nil
}

// parseChannelLine parses: channel <id> <kind> key=value ...
func parseChannelLine(ol *optionLine) (*DeviceAttach, error) {
	idWord, err := ol.getWord()
	if err != nil {
		return nil, err
	}
	id, convErr := strconv.Atoi(idWord)
	if convErr != nil {
		return nil, fmt.Errorf("channel id %q: %w", idWord, convErr)
	}

	kind, err := ol.getWord()
	if err != nil {
		return nil, err
	}
	if kind == "" {
		return nil, errors.New("channel line missing device kind")
	}

	opts, err := ol.parseOptions()
	if err != nil {
		return nil, err
	}
	return &DeviceAttach{Channel: id, Kind: strings.ToLower(kind), Options: opts}, nil
}

// skipSpace advances past whitespace.
func (ol *optionLine) skipSpace() {
	for ol.pos < len(ol.line) && unicode.IsSpace(rune(ol.line[ol.pos])) {
		ol.pos++
	}
}

// isEOL reports end of line or a comment starting the rest of the line.
func (ol *optionLine) isEOL() bool {
	return ol.pos >= len(ol.line) || ol.line[ol.pos] == '#'
}

// getWord skips leading space, then reads up to the next space, '=' or
// end of line.
func (ol *optionLine) getWord() (string, error) {
	ol.skipSpace()
	if ol.isEOL() {
		return "", nil
	}
	start := ol.pos
	for !ol.isEOL() && !unicode.IsSpace(rune(ol.line[ol.pos])) && ol.line[ol.pos] != '=' {
		ol.pos++
	}
	return ol.line[start:ol.pos], nil
}

// parseQuotedValue reads a bare or double-quoted value, following the
// teacher's parseQuoteString convention: "" inside a quoted value is a
// literal embedded quote.
func (ol *optionLine) parseQuotedValue() (string, error) {
	if ol.isEOL() {
		return "", nil
	}
	if ol.line[ol.pos] == '"' {
		ol.pos++
		var b strings.Builder
		for {
			if ol.pos >= len(ol.line) {
				return "", errors.New("unterminated quoted value")
			}
			c := ol.line[ol.pos]
			if c == '"' {
				ol.pos++
				if ol.pos < len(ol.line) && ol.line[ol.pos] == '"' {
					b.WriteByte('"')
					ol.pos++
					continue
				}
				return b.String(), nil
			}
			b.WriteByte(c)
			ol.pos++
		}
	}
	start := ol.pos
	for !ol.isEOL() && !unicode.IsSpace(rune(ol.line[ol.pos])) {
		ol.pos++
	}
	return ol.line[start:ol.pos], nil
}

// parseOptions reads a run of key=value pairs to end of line.
func (ol *optionLine) parseOptions() (map[string]string, error) {
	opts := map[string]string{}
	for {
		ol.skipSpace()
		if ol.isEOL() {
			return opts, nil
		}
		key, err := ol.getWord()
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, fmt.Errorf("expected option at position %d", ol.pos)
		}
		if ol.isEOL() || ol.line[ol.pos] != '=' {
			return nil, fmt.Errorf("option %q missing =value", key)
		}
		ol.pos++ // skip '='
		value, err := ol.parseQuotedValue()
		if err != nil {
			return nil, err
		}
		opts[strings.ToLower(key)] = value
	}
}
