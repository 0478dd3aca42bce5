/*
 * CyberCore - Card deck file source
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

package main

import (
	"bufio"
	"os"
)

// cardFile reads one line (one card image) per ReadLine call, the
// emu/devices/reader.LineSource contract, from a deck file named in the
// configuration file's "file=" channel option. An empty path yields an
// already-exhausted deck, matching an empty hopper.
type cardFile struct {
	file    *os.File
	scanner *bufio.Scanner
}

func newCardFile(path string) (*cardFile, error) {
	if path == "" {
		return &cardFile{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &cardFile{file: f, scanner: bufio.NewScanner(f)}, nil
}

// ReadLine returns the next card image, or ok=false once the deck file
// is exhausted or no deck was attached.
func (c *cardFile) ReadLine() (string, bool) {
	if c.scanner == nil {
		return "", false
	}
	if !c.scanner.Scan() {
		return "", false
	}
	return c.scanner.Text(), true
}
