package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidWAV is returned for data that is not 16-bit PCM WAV.
var ErrInvalidWAV = errors.New("invalid wav data")

// ParseWAV reads a RIFF/WAVE file with 16-bit PCM samples. Chunks other
// than fmt and data are skipped.
func ParseWAV(data []byte) (Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("%w: missing RIFF header", ErrInvalidWAV)
	}

	var clip Clip
	var haveFormat bool

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		end := body + size
		if end > len(data) {
			// Streamed WAV files carry a placeholder data size.
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return Clip{}, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format := binary.LittleEndian.Uint16(data[body:])
			bits := binary.LittleEndian.Uint16(data[body+14:])
			if format != 1 || bits != 16 {
				return Clip{}, fmt.Errorf("%w: format %d with %d bits", ErrInvalidWAV, format, bits)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			haveFormat = true
		case "data":
			if !haveFormat {
				return Clip{}, fmt.Errorf("%w: data before fmt", ErrInvalidWAV)
			}
			clip.PCM = data[body:end]
			return clip, nil
		}

		off = end + size%2
	}

	return Clip{}, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
}

// EncodeWAV wraps a clip in a 44-byte WAV header.
func EncodeWAV(c Clip) []byte {
	var buf bytes.Buffer
	_ = writeWAVHeader(&buf, c, len(c.PCM))
	buf.Write(c.PCM)
	return buf.Bytes()
}

func writeWAVHeader(w io.Writer, c Clip, dataSize int) error {
	blockAlign := c.Channels * 2
	fields := []any{
		[]byte("RIFF"), uint32(36 + dataSize), []byte("WAVE"),
		[]byte("fmt "), uint32(16), uint16(1), uint16(c.Channels),
		uint32(c.SampleRate), uint32(c.SampleRate * blockAlign),
		uint16(blockAlign), uint16(16),
		[]byte("data"), uint32(dataSize),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
