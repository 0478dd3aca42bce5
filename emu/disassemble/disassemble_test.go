package disassemble

import "testing"

func TestDecodeCPShortForm(t *testing.T) {
	// opFm=0o61 (BX add), opI=1, opJ=2, opK=3: header (0o61<<6)|(1<<3)|2, shifted left 3 for opK.
	header := uint32(0o61)<<6 | uint32(1)<<3 | uint32(2)
	parcel := header<<3 | 3
	in := DecodeCP(parcel)
	if in.OpFm != 0o61 || in.OpI != 1 || in.OpJ != 2 || in.OpK != 3 {
		t.Fatalf("DecodeCP = %+v, want opFm=061 opI=1 opJ=2 opK=3", in)
	}
	if got := in.String(); got != "BX   1,2,3" {
		t.Fatalf("String() = %q", got)
	}
}

func TestDecodeCPLongForm(t *testing.T) {
	header := uint32(0o02)<<6 | uint32(3)<<3 | uint32(4)
	parcel := header<<18 | 0o17
	in := DecodeCPLong(parcel)
	if !in.Long || in.OpFm != 0o02 || in.Addr != 0o17 {
		t.Fatalf("DecodeCPLong = %+v, want opFm=02 addr=017 long", in)
	}
}

func TestDecodeCPAllOpcodesNamed(t *testing.T) {
	// emu/cpu assigns a handler to all 64 opFm values; only a
	// construction outside that table could produce the fallback.
	for opFm := 0; opFm < 64; opFm++ {
		in := CPInstruction{OpFm: byte(opFm)}
		if in.String() == "" {
			t.Fatalf("opFm %02o has no rendering", opFm)
		}
	}
}

func TestDecodePP(t *testing.T) {
	w := uint32(0o05)<<12 | 0o1234 // LJM
	in := DecodePP(w)
	if in.Op != 0o05 || in.OpD != 0o1234 {
		t.Fatalf("DecodePP = %+v, want op=05 opD=1234", in)
	}
	if got := in.String(); got != "LJM  1234" {
		t.Fatalf("String() = %q", got)
	}
}

func TestDecodePPAllOpcodesNamed(t *testing.T) {
	// Every PP opcode the machine defines has a mnemonic; only a
	// construction outside emu/ppu's table could produce the fallback.
	for op := 0; op < 64; op++ {
		in := PPInstruction{Op: byte(op)}
		if in.String() == "" {
			t.Fatalf("opcode %02o has no rendering", op)
		}
	}
}
