/*
 * CyberCore - 48-bit mantissa floating point primitives
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

package word

// Floating point words hold a 48-bit coefficient in bits 0-47, an 11-bit
// biased exponent in bits 48-58, and a sign in bit 59. unpack/pack return
// and accept the exponent as a single code that folds the sign into bit
// 0o4000 so the four historical sentinel codes can be compared directly:
// indefinite (01777 positive-coded, 06000 negative-coded) and overflow
// (03777 positive-coded, 04000 negative-coded).
const (
	expBits    = 11
	expFieldMk = (1 << expBits) - 1 // 0o3777
	coeffBits  = 48
	coeffMask  = (uint64(1) << coeffBits) - 1
	negCode    = 0o4000

	ExpBias          = 0o2000
	ExpIndefinitePos = 0o1777
	ExpIndefiniteNeg = 0o6000
	ExpOverflowPos   = 0o3777
	ExpOverflowNeg   = 0o4000
)

// Unpack splits a floating point CpWord into its unsigned 48-bit coefficient
// and a signed exponent code (sign folded into the 0o4000 bit).
func Unpack(n CpWord) (coeff uint64, expo int) {
	sign := n&Sign60 != 0
	field := int((n >> coeffBits) & expFieldMk)
	coeff = n & coeffMask
	expo = field
	if sign {
		expo += negCode
	}
	return coeff, expo
}

// Pack reassembles a floating point CpWord from a coefficient and exponent
// code produced by (or compatible with) Unpack.
func Pack(coeff uint64, expo int) CpWord {
	sign := expo >= negCode
	field := expo
	if sign {
		field -= negCode
	}
	var w CpWord
	if sign {
		w |= Sign60
	}
	w |= CpWord(field&expFieldMk) << coeffBits
	w |= coeff & coeffMask
	return w
}

// IsIndefinite reports whether an exponent code is one of the two
// indefinite-operand sentinels.
func IsIndefinite(expo int) bool {
	return expo == ExpIndefinitePos || expo == ExpIndefiniteNeg
}

// IsOverflow reports whether an exponent code is one of the two
// operand-overflow sentinels.
func IsOverflow(expo int) bool {
	return expo == ExpOverflowPos || expo == ExpOverflowNeg
}

// FloatCheck inspects a floating point word and reports whether it carries
// an indefinite or overflow exponent, for the caller to raise the matching
// exit-condition bit.
func FloatCheck(n CpWord) (indefinite, overflow bool) {
	_, expo := Unpack(n)
	return IsIndefinite(expo), IsOverflow(expo)
}

func negative(expo int) bool { return expo >= negCode }

func makeIndefinite(neg bool) CpWord {
	if neg {
		return Pack(0, ExpIndefiniteNeg)
	}
	return Pack(0, ExpIndefinitePos)
}

func makeOverflow(neg bool) CpWord {
	if neg {
		return Pack(0, ExpOverflowNeg)
	}
	return Pack(0, ExpOverflowPos)
}

// Normalize left-shifts a floating point coefficient until bit 47 is set,
// decrementing the exponent by the same count. An exactly-zero coefficient
// yields the all-zero word and a shift count of 48, matching the hardware's
// documented behavior for a zero operand.
func Normalize(n CpWord) (result CpWord, shift int) {
	coeff, expo := Unpack(n)
	if IsIndefinite(expo) || IsOverflow(expo) {
		return n, 0
	}
	if coeff == 0 {
		return Pack(0, 0), coeffBits
	}
	for coeff&(1<<(coeffBits-1)) == 0 {
		coeff <<= 1
		shift++
	}
	expo -= shift
	return Pack(coeff&coeffMask, expo), shift
}

// alignedMagnitudes shifts the smaller-exponent coefficient right so both
// operands share the larger exponent, inserting a rounding bit at bit 47 of
// the shifted-out operand's new top when round is requested. lost carries
// the diff low-order bits shifted off coeffB, the extra precision a
// double-precision result recovers as its low half.
func alignedMagnitudes(coeffA uint64, expA int, coeffB uint64, expB int, round bool) (a, b uint64, expo int, lost uint64, lostWidth int) {
	if expA < expB {
		coeffA, coeffB = coeffB, coeffA
		expA, expB = expB, expA
	}
	diff := expA - expB
	if diff > 0 {
		if diff >= 64 {
			lost, lostWidth = coeffB, coeffBits
			coeffB = 0
		} else {
			lost = coeffB & ((uint64(1) << uint(diff)) - 1)
			lostWidth = diff
			if lostWidth > coeffBits { // coeffB only has coeffBits meaningful bits
				lostWidth = coeffBits
			}
			coeffB >>= uint(diff)
			if round && lost != 0 {
				coeffB |= 1
			}
		}
	}
	return coeffA, coeffB, expA, lost, lostWidth
}

// FloatAdd performs 48-bit-mantissa floating addition. The double variant
// returns the low half of the 96-bit intermediate result (used by the DX
// family); the single variant returns the normalized high half.
func FloatAdd(wa, wb CpWord, round, double bool) CpWord {
	ca, ea := Unpack(wa)
	cb, eb := Unpack(wb)

	switch {
	case IsIndefinite(ea) || IsIndefinite(eb):
		return makeIndefinite(false)
	case IsOverflow(ea) && IsOverflow(eb):
		if negative(ea) != negative(eb) {
			return makeIndefinite(false) // +inf + -inf
		}
		return makeOverflow(negative(ea))
	case IsOverflow(ea):
		return makeOverflow(negative(ea))
	case IsOverflow(eb):
		return makeOverflow(negative(eb))
	}

	signA, signB := negative(ea), negative(eb)
	alignedA, alignedB, commonExp, lost, lostWidth := alignedMagnitudes(ca, unbiasedField(ea), cb, unbiasedField(eb), round)

	var sumLo uint64
	var resultSign bool
	if signA == signB {
		sumLo = alignedA + alignedB
		resultSign = signA
		if sumLo&(uint64(1)<<(coeffBits)) != 0 { // carry out of bit 47 into bit 48
			roundBit := sumLo & 1
			sumLo >>= 1
			if round && roundBit != 0 {
				sumLo |= 1
			}
			commonExp++
		}
	} else {
		if alignedA >= alignedB {
			sumLo = alignedA - alignedB
			resultSign = signA
		} else {
			sumLo = alignedB - alignedA
			resultSign = signB
		}
	}

	if commonExp >= expFieldMk {
		return makeOverflow(resultSign)
	}

	if double {
		// The DX family's low word is the precision the single-word sum
		// discarded when the smaller operand was shifted into alignment:
		// left-justify those lost bits into their own 48-bit coefficient,
		// scaled coeffBits+lostWidth below the high word's exponent.
		if lostWidth <= 0 {
			return Pack(0, commonExp-coeffBits)
		}
		lowCoeff := (lost << uint(coeffBits-lostWidth)) & coeffMask
		lowResult := Pack(lowCoeff, commonExp-lostWidth)
		if resultSign {
			lowResult |= Sign60
		}
		return lowResult
	}

	result := Pack(sumLo&coeffMask, commonExp)
	if resultSign {
		result |= Sign60
	}
	return result
}

func unbiasedField(expo int) int {
	if negative(expo) {
		return expo - negCode
	}
	return expo
}

// FloatMultiply multiplies two 48-bit-mantissa floats via four 24x24 partial
// products summed into a 96-bit accumulator, as the hardware's multiplier
// pipeline does; the rounded variant injects a bit at the 22nd position of
// the middle cross product.
func FloatMultiply(wa, wb CpWord, round, double bool) CpWord {
	ca, ea := Unpack(wa)
	cb, eb := Unpack(wb)

	if IsIndefinite(ea) || IsIndefinite(eb) {
		return makeIndefinite(false)
	}
	if IsOverflow(ea) || IsOverflow(eb) {
		return makeOverflow(negative(ea) != negative(eb))
	}

	signA, signB := negative(ea), negative(eb)
	resultSign := signA != signB

	aHi, aLo := ca>>24, ca&0xFFFFFF
	bHi, bLo := cb>>24, cb&0xFFFFFF

	pHH := aHi * bHi
	pHL := aHi * bLo
	pLH := aLo * bHi
	pLL := aLo * bLo

	mid := pHL + pLH
	if round {
		mid += 1 << 22
	}

	// Accumulate: result(96 bit) = pHH<<48 + mid<<24 + pLL
	lowPart := pLL + (mid&0xFFFFFF)<<24
	carry := lowPart >> 48
	lowPart &= (uint64(1) << 48) - 1
	highPart := pHH + (mid >> 24) + carry

	resultExp := unbiasedField(ea) + unbiasedField(eb) - ExpBias

	var coeff uint64
	if highPart != 0 {
		// Overflowed into the high accumulator: shift the mantissa down by
		// 48 bits and bump the exponent, as a carry out of the multiplier
		// array would.
		coeff = highPart
		resultExp += coeffBits
	} else {
		coeff = lowPart
	}

	result := Pack(coeff&coeffMask, resultExp)
	if resultSign {
		result |= Sign60
	}

	bothNormalized := ca&(1<<(coeffBits-1)) != 0 && cb&(1<<(coeffBits-1)) != 0
	if bothNormalized {
		normalized, _ := Normalize(result)
		result = normalized
	}
	_, nexp := Unpack(result)
	if unbiasedField(nexp) >= expFieldMk {
		return makeOverflow(resultSign)
	}
	return result
}

// FloatDivide divides wa by wb using a shift-and-subtract mantissa divide
// producing 48 result bits. The rounded variant alternates injecting 0 and 1
// into the dividend as bits are consumed, equivalent to adding 1/3 of one
// ulp. A divisor whose magnitude is less than half the dividend's yields
// indefinite, matching the documented hardware check.
func FloatDivide(wa, wb CpWord, round bool) CpWord {
	ca, ea := Unpack(wa)
	cb, eb := Unpack(wb)

	if IsIndefinite(ea) || IsIndefinite(eb) {
		return makeIndefinite(false)
	}
	signA, signB := negative(ea), negative(eb)
	resultSign := signA != signB

	if cb == 0 {
		if ca == 0 {
			return makeIndefinite(false)
		}
		return makeOverflow(resultSign)
	}
	if IsOverflow(ea) {
		return makeOverflow(resultSign)
	}
	if IsOverflow(eb) {
		return Pack(0, ExpBias)
	}
	if cb < ca/2 {
		return makeIndefinite(false)
	}

	remainder := ca
	var quotient uint64
	toggle := false
	for i := 0; i < coeffBits; i++ {
		remainder <<= 1
		if round {
			if toggle {
				remainder |= 1
			}
			toggle = !toggle
		}
		quotient <<= 1
		if remainder >= cb {
			remainder -= cb
			quotient |= 1
		}
	}

	resultExp := unbiasedField(ea) - unbiasedField(eb) + ExpBias
	result := Pack(quotient&coeffMask, resultExp)
	if resultSign {
		result |= Sign60
	}
	normalized, _ := Normalize(result)
	_, nexp := Unpack(normalized)
	if unbiasedField(nexp) >= expFieldMk {
		return makeOverflow(resultSign)
	}
	return normalized
}
