// Package pkcs1 builds and parses PKCS#1 v1.5 block type 1 signature frames:
//
//	00 01 FF..FF 00 DigestInfo-prefix digest
package pkcs1

import (
	"crypto/subtle"

	"github.com/pkg/errors"
)

const (
	blockType = 0x01
	padByte   = 0xff
	// leading zero, block type and separator
	overhead = 3
	// MinPadding is the shortest 0xFF run ParseFrame accepts.
	MinPadding = 8
)

var (
	ErrPaddingLength = errors.New("pkcs1: digest and algorithm identifier do not fit the frame")
	ErrMalformed     = errors.New("pkcs1: malformed frame")
)

// PadLen returns the number of 0xFF bytes a frame of frameLen bytes carries
// for the given identifier and digest lengths. A negative result means the
// combination does not fit.
func PadLen(frameLen, algIDLen, digestLen int) int {
	return frameLen - overhead - algIDLen - digestLen
}

// BuildFrame lays out digest behind algID in a frame of frameLen bytes. The
// result read as a big-endian integer is the message representative that is
// exponentiated when signing.
func BuildFrame(digest, algID []byte, frameLen int) ([]byte, error) {
	padLen := PadLen(frameLen, len(algID), len(digest))
	if padLen < 0 {
		return nil, ErrPaddingLength
	}
	frame := make([]byte, frameLen)
	frame[1] = blockType
	for i := 2; i < 2+padLen; i++ {
		frame[i] = padByte
	}
	// frame[2+padLen] stays zero as the separator
	n := copy(frame[overhead+padLen:], algID)
	copy(frame[overhead+padLen+n:], digest)
	return frame, nil
}

// ParseFrame checks that frame is a block type 1 frame with at least
// MinPadding bytes of padding, carrying algID, and returns a copy of the
// trailing digestLen bytes.
func ParseFrame(frame, algID []byte, digestLen int) ([]byte, error) {
	padLen := PadLen(len(frame), len(algID), digestLen)
	if padLen < MinPadding {
		return nil, ErrMalformed
	}
	ok := subtle.ConstantTimeByteEq(frame[0], 0)
	ok &= subtle.ConstantTimeByteEq(frame[1], blockType)
	for _, b := range frame[2 : 2+padLen] {
		ok &= subtle.ConstantTimeByteEq(b, padByte)
	}
	ok &= subtle.ConstantTimeByteEq(frame[2+padLen], 0)
	ok &= subtle.ConstantTimeCompare(frame[overhead+padLen:overhead+padLen+len(algID)], algID)
	if ok != 1 {
		return nil, ErrMalformed
	}
	digest := make([]byte, digestLen)
	copy(digest, frame[len(frame)-digestLen:])
	return digest, nil
}
