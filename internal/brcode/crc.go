package brcode

import "fmt"

const (
	crcInit       = 0xFFFF
	crcPolynomial = 0x1021
)

// CRC16 computes the CRC-16/CCITT-FALSE checksum of payload as four
// uppercase hex digits.
func CRC16(payload string) string {
	return fmt.Sprintf("%04X", checksum([]byte(payload)))
}

func checksum(data []byte) uint16 {
	crc := uint16(crcInit)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
