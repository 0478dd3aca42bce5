/*
 * CyberCore - 60 bit ones-complement word arithmetic
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

// Package word implements the ones-complement word arithmetic shared by the
// PP and CP interpreters: 12, 18, 24 and 60 bit modular add/subtract, shift,
// mask and the 48-bit-mantissa floating point primitives.
package word

// PpWord holds a 12 bit peripheral processor word in the low bits of a uint16.
type PpWord = uint16

// CpWord holds a 60 bit central processor word in the low bits of a uint64.
type CpWord = uint64

const (
	Mask12 uint32 = 0o7777
	Mask18 uint32 = 0o777777
	Mask21 uint32 = 0o7777777
	Mask24 uint32 = 0o77777777
	Mask30 uint64 = 0o7777777777
)

// Mask60Bits is the 60 one-bits mask for CpWord values (1<<60 - 1).
const Mask60Bits uint64 = (uint64(1) << 60) - 1

const (
	Sign18 uint32 = 1 << 17
	Sign24 uint32 = 1 << 23
	Sign60 uint64 = 1 << 59
)

// Mask returns a 60-bit mask with the upper n bits set (used by the CPU's
// MX instruction and by the floating point normalizer).
func Mask(n int) CpWord {
	if n <= 0 {
		return 0
	}
	if n >= 60 {
		return Mask60Bits
	}
	return (Mask60Bits << (60 - n)) & Mask60Bits
}

// addN computes the ones-complement subtractive-adder sum of a and b within
// the given bit width: (a&m) - (^b&m); if the result borrowed past the top
// of the width, the end-around adjustment subtracts one before masking.
// This is the formula the historical hardware documents and preserves
// negative-zero (all-ones) results rather than folding them to +0.
func addN(a, b uint64, width uint) uint64 {
	m := (uint64(1) << width) - 1
	acc := (a & m) - (^b & m)
	overflow := uint64(1) << width
	if acc&overflow != 0 {
		acc--
	}
	return acc & m
}

// Add18 adds two 18-bit ones-complement values.
func Add18(a, b uint32) uint32 {
	return uint32(addN(uint64(a), uint64(b), 18))
}

// Sub18 subtracts b from a (18-bit ones complement): a + (^b).
func Sub18(a, b uint32) uint32 {
	return Add18(a, uint32(^uint64(b))&Mask18)
}

// Add12 adds two 12-bit ones-complement values (PP address arithmetic).
func Add12(a, b uint16) uint16 {
	return uint16(addN(uint64(a), uint64(b), 12))
}

// Add21 adds two 21-bit ones-complement values (expanded-address RA/FL).
func Add21(a, b uint32) uint32 {
	return uint32(addN(uint64(a), uint64(b), 21))
}

// Add24 adds two 24-bit ones-complement values.
func Add24(a, b uint32) uint32 {
	return uint32(addN(uint64(a), uint64(b), 24))
}

// Add60 adds two 60-bit ones-complement values.
func Add60(a, b CpWord) CpWord {
	return addN(a, b, 60)
}

// Sub60 subtracts b from a (60-bit ones complement).
func Sub60(a, b CpWord) CpWord {
	return Add60(a, (^b)&Mask60Bits)
}

// IsNegative18 reports whether the sign bit of an 18-bit word is set.
func IsNegative18(a uint32) bool {
	return a&Sign18 != 0
}

// IsNegative60 reports whether the sign bit of a 60-bit word is set.
func IsNegative60(a CpWord) bool {
	return a&Sign60 != 0
}

// ShiftLeftCircular rotates a 60-bit word left by n bits (0..59).
func ShiftLeftCircular(x CpWord, n uint) CpWord {
	n %= 60
	if n == 0 {
		return x & Mask60Bits
	}
	x &= Mask60Bits
	return ((x << n) | (x >> (60 - n))) & Mask60Bits
}

// ShiftRightArithmetic shifts a 60-bit word right by n bits, filling from
// the sign bit (bit 59), as the hardware's arithmetic right shift does.
func ShiftRightArithmetic(x CpWord, n uint) CpWord {
	x &= Mask60Bits
	if n == 0 {
		return x
	}
	if n >= 60 {
		n = 60
	}
	if IsNegative60(x) {
		fill := Mask60Bits << (60 - n) & Mask60Bits
		return (x >> n) | fill
	}
	return x >> n
}
