package protocol

import "testing"

func TestCRC16(t *testing.T) {
	testCases := []struct {
		data     []byte
		expected uint16
	}{
		{data: []byte("123456789"), expected: 0x6F91},
		{data: []byte{}, expected: 0xFFFF},
	}

	for i, tc := range testCases {
		result := CRC16(tc.data)
		if result != tc.expected {
			t.Errorf("Test case %d: CRC16(%q) = 0x%04X, expected 0x%04X", i, tc.data, result, tc.expected)
		}
	}
}

func TestCRC16Consistency(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	crc1 := CRC16(data)
	crc2 := CRC16(data)

	if crc1 != crc2 {
		t.Errorf("CRC16 not consistent: first=%04X, second=%04X", crc1, crc2)
	}
}

func TestCRC16DetectsSingleBitFlip(t *testing.T) {
	data := []byte{0x26, 0x01, 0x10, 0x20, 0x30}
	base := CRC16(data)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			data[i] ^= 1 << bit
			if CRC16(data) == base {
				t.Errorf("flip of byte %d bit %d not detected", i, bit)
			}
			data[i] ^= 1 << bit
		}
	}
}

func TestCRC8(t *testing.T) {
	if got := CRC8([]byte("123456789")); got != 0xBC {
		t.Errorf("CRC8 check value = 0x%02X, expected 0xBC", got)
	}
	if got := CRC8(nil); got != 0 {
		t.Errorf("CRC8 of empty input = 0x%02X, expected 0", got)
	}
}
