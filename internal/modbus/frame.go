// Package modbus decodes Modbus RTU frames given as hex strings.
package modbus

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sigurn/crc16"
)

// MinFrameLen is device id, function code and the two CRC bytes.
const MinFrameLen = 4

var (
	ErrOddLength  = errors.New("hex string must have even length")
	ErrInvalidHex = errors.New("invalid hex")
	ErrTooShort   = errors.New("frame too short (min 4 bytes)")
)

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// Frame is a decoded RTU frame. Data excludes the address, function code
// and trailing CRC.
type Frame struct {
	DeviceID     uint8
	FunctionCode uint8
	Function     Function
	Data         []byte
	CRC          uint16
	CRCValid     bool
}

// ParseFrame decodes a frame such as "01030000000AC5CD". A CRC mismatch is
// reported through CRCValid, not as an error.
func ParseFrame(frameHex string) (Frame, error) {
	if len(frameHex)%2 != 0 {
		return Frame{}, ErrOddLength
	}

	raw, err := hex.DecodeString(frameHex)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}

	if len(raw) < MinFrameLen {
		return Frame{}, ErrTooShort
	}

	body := raw[:len(raw)-2]
	crc := binary.LittleEndian.Uint16(raw[len(raw)-2:])

	return Frame{
		DeviceID:     raw[0],
		FunctionCode: raw[1],
		Function:     FunctionFor(raw[1]),
		Data:         append([]byte{}, body[2:]...),
		CRC:          crc,
		CRCValid:     crc == Checksum(body),
	}, nil
}

// Checksum computes CRC-16/MODBUS over data.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// Encode appends the CRC to body and returns the frame as upper-case hex.
func Encode(body []byte) string {
	frame := binary.LittleEndian.AppendUint16(append([]byte{}, body...), Checksum(body))

	return fmt.Sprintf("%X", frame)
}
