package bigendian

import (
	"encoding/binary"
	"errors"
)

var errBadLength = errors.New("non-negative integer must be 1, 2, 4 or 8 bytes")

// Uint64ToBytes converts uint64 to bytes.
func Uint64ToBytes(n uint64) []byte {
	var res [8]byte
	binary.BigEndian.PutUint64(res[:], n)
	return res[:]
}

// BytesToUint64 converts uint64 from bytes.
func BytesToUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// Uint32ToBytes converts uint32 to bytes.
func Uint32ToBytes(n uint32) []byte {
	var res [4]byte
	binary.BigEndian.PutUint32(res[:], n)
	return res[:]
}

// BytesToUint32 converts uint32 from bytes.
func BytesToUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// NonNegativeIntegerToBytes converts n to the shortest of the 1, 2, 4 or 8 byte
// big-endian forms that can hold it.
func NonNegativeIntegerToBytes(n uint64) []byte {
	switch {
	case n <= 0xff:
		return []byte{byte(n)}
	case n <= 0xffff:
		var res [2]byte
		binary.BigEndian.PutUint16(res[:], uint16(n))
		return res[:]
	case n <= 0xffffffff:
		return Uint32ToBytes(uint32(n))
	default:
		return Uint64ToBytes(n)
	}
}

// BytesToNonNegativeInteger is the inverse of NonNegativeIntegerToBytes.
func BytesToNonNegativeInteger(b []byte) (uint64, error) {
	switch len(b) {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), nil
	case 4:
		return uint64(BytesToUint32(b)), nil
	case 8:
		return BytesToUint64(b), nil
	default:
		return 0, errBadLength
	}
}
