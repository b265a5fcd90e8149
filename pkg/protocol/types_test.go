package protocol

import (
	"bytes"
	"fmt"
	"testing"
)

func TestVarIntWireFormat(t *testing.T) {
	cases := []struct {
		value int32
		wire  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, c := range cases {
		t.Run(fmt.Sprint(c.value), func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := WriteVarInt(&buf, c.value); err != nil {
				t.Fatalf("WriteVarInt: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), c.wire) {
				t.Errorf("WriteVarInt(%d) = %v, want %v", c.value, buf.Bytes(), c.wire)
			}
			if size := VarIntSize(c.value); size != len(c.wire) {
				t.Errorf("VarIntSize(%d) = %d, want %d", c.value, size, len(c.wire))
			}

			got, n, err := ReadVarInt(bytes.NewReader(c.wire))
			if err != nil {
				t.Fatalf("ReadVarInt: %v", err)
			}
			if got != c.value || n != len(c.wire) {
				t.Errorf("ReadVarInt = (%d, %d), want (%d, %d)", got, n, c.value, len(c.wire))
			}
		})
	}
}

func TestVarIntRejectsOverlongEncoding(t *testing.T) {
	// Six continuation bytes can never be a valid VarInt.
	_, _, err := ReadVarInt(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}))
	if err == nil {
		t.Error("ReadVarInt accepted a 6-byte encoding")
	}
}

func TestVarLongRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, 127, 128, 300, -1, 1 << 40, -(1 << 40), 9223372036854775807, -9223372036854775808} {
		var buf bytes.Buffer
		if _, err := WriteVarLong(&buf, v); err != nil {
			t.Fatalf("WriteVarLong(%d): %v", v, err)
		}
		got, _, err := ReadVarLong(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("ReadVarLong(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("VarLong round trip = %d, want %d", got, v)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", "§6VibeShitCraft", "a longer string with spaces"} {
		var buf bytes.Buffer
		if err := WriteString(&buf, s); err != nil {
			t.Fatalf("WriteString(%q): %v", s, err)
		}
		got, err := ReadString(&buf)
		if err != nil {
			t.Fatalf("ReadString(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("String round trip = %q, want %q", got, s)
		}
	}
}

func TestNumericRoundTrips(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteInt32(&buf, -123456); err != nil {
		t.Fatal(err)
	}
	if got, _ := ReadInt32(&buf); got != -123456 {
		t.Errorf("Int32 round trip = %d, want -123456", got)
	}

	buf.Reset()
	if err := WriteFloat64(&buf, 3.14159); err != nil {
		t.Fatal(err)
	}
	if got, _ := ReadFloat64(&buf); got != 3.14159 {
		t.Errorf("Float64 round trip = %v, want 3.14159", got)
	}

	buf.Reset()
	if err := WriteBool(&buf, true); err != nil {
		t.Fatal(err)
	}
	if got, _ := ReadBool(&buf); !got {
		t.Error("Bool round trip lost true")
	}

	buf.Reset()
	if err := WriteInt16(&buf, -42); err != nil {
		t.Fatal(err)
	}
	if got, _ := ReadInt16(&buf); got != -42 {
		t.Errorf("Int16 round trip = %d, want -42", got)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	cases := [][3]int32{
		{0, 0, 0},
		{100, 64, 100},
		{-100, 255, -100},
		{33554431, 4095, 33554431},    // max 26/12/26-bit values
		{-33554432, 0, -33554432},     // min values
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WritePosition(&buf, c[0], c[1], c[2]); err != nil {
			t.Fatalf("WritePosition(%v): %v", c, err)
		}
		x, y, z, err := ReadPosition(&buf)
		if err != nil {
			t.Fatalf("ReadPosition(%v): %v", c, err)
		}
		if x != c[0] || y != c[1] || z != c[2] {
			t.Errorf("Position round trip = (%d,%d,%d), want (%d,%d,%d)", x, y, z, c[0], c[1], c[2])
		}
	}
}

func TestPacketRoundTrip(t *testing.T) {
	original := &Packet{ID: 0x23, Data: []byte{1, 2, 3, 4, 5}}

	var buf bytes.Buffer
	if err := WritePacket(&buf, original); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	got, err := ReadPacket(&buf)
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if got.ID != original.ID {
		t.Errorf("packet ID = %#x, want %#x", got.ID, original.ID)
	}
	if !bytes.Equal(got.Data, original.Data) {
		t.Errorf("packet data = %v, want %v", got.Data, original.Data)
	}
}

func TestMarshalPacket(t *testing.T) {
	pkt := MarshalPacket(0x05, func(w *bytes.Buffer) {
		WriteVarInt(w, 42)
		WriteString(w, "test")
	})
	if pkt.ID != 0x05 {
		t.Errorf("packet ID = %#x, want 0x05", pkt.ID)
	}

	r := bytes.NewReader(pkt.Data)
	if v, _, _ := ReadVarInt(r); v != 42 {
		t.Errorf("first field = %d, want 42", v)
	}
	if s, _ := ReadString(r); s != "test" {
		t.Errorf("second field = %q, want %q", s, "test")
	}
}

func TestSlotDataRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSlotData(&buf, 276, 1, 3); err != nil {
		t.Fatalf("WriteSlotData: %v", err)
	}
	itemID, count, damage, err := ReadSlotData(&buf)
	if err != nil {
		t.Fatalf("ReadSlotData: %v", err)
	}
	if itemID != 276 || count != 1 || damage != 3 {
		t.Errorf("slot round trip = (%d,%d,%d), want (276,1,3)", itemID, count, damage)
	}

	buf.Reset()
	if err := WriteSlotData(&buf, -1, 0, 0); err != nil {
		t.Fatalf("WriteSlotData(empty): %v", err)
	}
	itemID, _, _, err = ReadSlotData(&buf)
	if err != nil {
		t.Fatalf("ReadSlotData(empty): %v", err)
	}
	if itemID != -1 {
		t.Errorf("empty slot item ID = %d, want -1", itemID)
	}
}
