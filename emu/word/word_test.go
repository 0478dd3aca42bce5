package word

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

import (
	"testing"
)

func TestAdd18Ones(t *testing.T) {
	tests := []struct {
		a, b, want uint32
	}{
		{0, 0, 0},
		{0o777777, 0o777777, 0o777777}, // -0 + -0 = -0
		{0o000001, 0o777776, 0o000000}, // 1 + (-1): a valid zero representation
		{0o000005, 0o000003, 0o000010},
	}
	for _, tc := range tests {
		if got := Add18(tc.a, tc.b); got != tc.want {
			t.Errorf("Add18(%o, %o) = %o, want %o", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAdd18OnesComplementInverse(t *testing.T) {
	for _, a := range []uint32{0, 1, 0o377777, 0o400000, 0o777776, 0o777777} {
		comp := (^uint64(a)) & uint64(Mask18)
		got := Add18(a, uint32(comp))
		if got != 0 && got != Mask18 {
			t.Errorf("Add18(%o, ~%o) = %o, want 0 or %o", a, a, got, Mask18)
		}
	}
}

func TestAdd60Basic(t *testing.T) {
	if got := Add60(1, 1); got != 2 {
		t.Errorf("Add60(1,1) = %o, want 2", got)
	}
	if got := Add60(Mask60Bits, Mask60Bits); got != Mask60Bits {
		t.Errorf("Add60(-0,-0) = %o, want %o (negative zero)", got, Mask60Bits)
	}
}

func TestSub60(t *testing.T) {
	if got := Sub60(5, 3); got != 2 {
		t.Errorf("Sub60(5,3) = %o, want 2", got)
	}
}

func TestShiftLeftCircular(t *testing.T) {
	if got := ShiftLeftCircular(1, 1); got != 2 {
		t.Errorf("ShiftLeftCircular(1,1) = %o, want 2", got)
	}
	if got := ShiftLeftCircular(Sign60, 1); got != 1 {
		t.Errorf("ShiftLeftCircular(sign,1) = %o, want 1 (wraps to bit 0)", got)
	}
	if got := ShiftLeftCircular(0o5, 60); got != 0o5 {
		t.Errorf("ShiftLeftCircular(5,60) = %o, want 5 (full rotation)", got)
	}
}

func TestShiftRightArithmetic(t *testing.T) {
	if got := ShiftRightArithmetic(2, 1); got != 1 {
		t.Errorf("ShiftRightArithmetic(2,1) = %o, want 1", got)
	}
	if got := ShiftRightArithmetic(Sign60, 1); got != Mask60Bits>>58<<58 {
		t.Errorf("ShiftRightArithmetic(sign,1) = %o, sign fill expected", got)
	}
}

func TestMask(t *testing.T) {
	if got := Mask(0); got != 0 {
		t.Errorf("Mask(0) = %o, want 0", got)
	}
	if got := Mask(60); got != Mask60Bits {
		t.Errorf("Mask(60) = %o, want %o", got, Mask60Bits)
	}
	if got := Mask(12); got != Mask60Bits>>48<<48 {
		t.Errorf("Mask(12) wrong pattern: got %o", got)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct {
		coeff uint64
		expo  int
	}{
		{0, 0},
		{1, ExpBias},
		{0o777777777777, 0o3776},
		{0o123456123456, ExpBias + 100},
	}
	for _, tc := range cases {
		w := Pack(tc.coeff, tc.expo)
		coeff, expo := Unpack(w)
		if coeff != tc.coeff || expo != tc.expo {
			t.Errorf("Pack/Unpack(%o,%o) roundtrip = (%o,%o)", tc.coeff, tc.expo, coeff, expo)
		}
	}
}

func TestFloatSentinels(t *testing.T) {
	if !IsIndefinite(ExpIndefinitePos) || !IsIndefinite(ExpIndefiniteNeg) {
		t.Error("indefinite sentinels not recognized")
	}
	if !IsOverflow(ExpOverflowPos) || !IsOverflow(ExpOverflowNeg) {
		t.Error("overflow sentinels not recognized")
	}
	if IsIndefinite(ExpBias) || IsOverflow(ExpBias) {
		t.Error("ordinary biased exponent misclassified as a sentinel")
	}
}

func TestFloatAddSimple(t *testing.T) {
	a := Pack(1, ExpBias)
	b := Pack(1, ExpBias)
	got := FloatAdd(a, b, false, false)
	want := Pack(2, ExpBias)
	if got != want {
		t.Errorf("FloatAdd(1,1) = %#o, want %#o", got, want)
	}
}

func TestFloatAddIndefinitePropagates(t *testing.T) {
	inf := Pack(0, ExpOverflowPos)
	ninf := Pack(0, ExpOverflowNeg)
	got := FloatAdd(inf, ninf, false, false)
	if ind, _ := FloatCheck(got); !ind {
		t.Errorf("FloatAdd(+inf,-inf) did not yield indefinite, got %#o", got)
	}
}

func TestFloatAddDoubleReturnsLowHalf(t *testing.T) {
	// b's low 4 bits are shifted off when aligned to a's larger exponent;
	// the double/DX result should recover exactly those bits, scaled down,
	// rather than repeating the single-precision high word.
	a := Pack(uint64(1)<<47, ExpBias+4)
	b := Pack(coeffMask, ExpBias)

	single := FloatAdd(a, b, false, false)
	double := FloatAdd(a, b, false, true)

	if double == single {
		t.Fatalf("FloatAdd double variant returned the same word as the single variant: %#o", double)
	}

	wantLowCoeff := uint64(0xF) << (coeffBits - 4)
	gotCoeff, gotExp := Unpack(double)
	if gotCoeff != wantLowCoeff {
		t.Errorf("double coeff = %#o, want %#o", gotCoeff, wantLowCoeff)
	}
	if gotExp != ExpBias {
		t.Errorf("double exponent = %o, want %o", gotExp, ExpBias)
	}
}

func TestFloatAddDoubleZeroWhenExponentsMatch(t *testing.T) {
	// Equal exponents mean no bits were shifted off, so the double/DX
	// result carries no extra precision.
	a := Pack(1, ExpBias)
	b := Pack(1, ExpBias)
	double := FloatAdd(a, b, false, true)
	gotCoeff, _ := Unpack(double)
	if gotCoeff != 0 {
		t.Errorf("double coeff = %#o, want 0 when operands share an exponent", gotCoeff)
	}
}

func TestFloatDivideByZero(t *testing.T) {
	a := Pack(1, ExpBias)
	zero := Pack(0, ExpBias)
	got := FloatDivide(a, zero, false)
	if _, ovf := FloatCheck(got); !ovf {
		t.Errorf("FloatDivide(1,0) did not yield overflow, got %#o", got)
	}
}

func TestFloatDivideZeroByZero(t *testing.T) {
	zero := Pack(0, ExpBias)
	got := FloatDivide(zero, zero, false)
	if ind, _ := FloatCheck(got); !ind {
		t.Errorf("FloatDivide(0,0) did not yield indefinite, got %#o", got)
	}
}

func TestNormalizeZero(t *testing.T) {
	z := Pack(0, ExpBias)
	got, shift := Normalize(z)
	if shift != 48 {
		t.Errorf("Normalize(0) shift = %d, want 48", shift)
	}
	if coeff, _ := Unpack(got); coeff != 0 {
		t.Errorf("Normalize(0) coeff = %o, want 0", coeff)
	}
}

func TestNormalizeShiftsToBit47(t *testing.T) {
	n := Pack(1, ExpBias)
	got, shift := Normalize(n)
	if shift != 47 {
		t.Errorf("Normalize(1) shift = %d, want 47", shift)
	}
	coeff, _ := Unpack(got)
	if coeff&(1<<47) == 0 {
		t.Errorf("Normalize(1) result %o does not have bit 47 set", coeff)
	}
}
