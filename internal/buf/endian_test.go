package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef, 0, 0, 0, 0}

	if got := U32(data, 0); got != 0x67452301 {
		t.Fatalf("U32 = 0x%x, want 0x67452301", got)
	}
	if got := U32(data, 4); got != 0xefcdab89 {
		t.Fatalf("U32 at 4 = 0x%x, want 0xefcdab89", got)
	}
	if got := U64(data, 0); got != 0xefcdab8967452301 {
		t.Fatalf("U64 = 0x%x, want 0xefcdab8967452301", got)
	}

	PutU32(data, 8, 0x80000010)
	if got := U32(data, 8); got != 0x80000010 {
		t.Fatalf("PutU32 round trip = 0x%x", got)
	}
	if data[11] != 0x80 {
		t.Fatalf("PutU32 should be little endian, high byte = 0x%x", data[11])
	}

	PutU64(data, 4, 42)
	if got := U64(data, 4); got != 42 {
		t.Fatalf("PutU64 round trip = %d", got)
	}
}
