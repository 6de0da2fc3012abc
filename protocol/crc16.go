package protocol

// CRC16 is CRC-16/MCRF4XX (reflected CCITT polynomial, init 0xFFFF, no final
// xor). It checksums PXX2 style frames.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b = b ^ uint8(crc&0xFF)
		b = b ^ (b << 4)
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

// CRC8 is CRC-8/DVB-S2 (polynomial 0xD5, init 0) as used by Crossfire
// frames. It covers the type byte and the payload.
func CRC8(data []byte) byte {
	crc := byte(0)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0xD5
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
