package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// ErrEmptyAudio is returned for clips without samples.
var ErrEmptyAudio = errors.New("audio data is empty")

// Clip is signed 16-bit little endian PCM audio.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration returns the playing time of the clip.
func (c Clip) Duration() time.Duration {
	frame := c.Channels * 2
	if frame <= 0 || c.SampleRate <= 0 {
		return 0
	}
	frames := len(c.PCM) / frame
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Empty reports whether the clip holds no complete sample.
func (c Clip) Empty() bool {
	return len(c.PCM) < 2
}

// Convert returns the clip as mono at the given sample rate.
func (c Clip) Convert(sampleRate int) Clip {
	pcm := Downmix(c.PCM, c.Channels)
	if c.SampleRate != sampleRate {
		pcm = Resample(pcm, c.SampleRate, sampleRate)
	}
	return Clip{PCM: pcm, SampleRate: sampleRate, Channels: 1}
}

// DecodeMP3 decodes an MP3 stream. The result is always stereo.
func DecodeMP3(r io.Reader) (Clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to decode mp3: %w", err)
	}
	if len(pcm) == 0 {
		return Clip{}, ErrEmptyAudio
	}

	return Clip{PCM: pcm, SampleRate: dec.SampleRate(), Channels: 2}, nil
}

// Downmix averages interleaved channels into mono.
func Downmix(pcm []byte, channels int) []byte {
	if channels <= 1 {
		return pcm
	}

	frame := channels * 2
	frames := len(pcm) / frame
	out := make([]byte, frames*2)

	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			sum += int(int16(binary.LittleEndian.Uint16(pcm[i*frame+ch*2:])))
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(sum/channels)))
	}

	return out
}

// Resample converts mono PCM between sample rates using linear
// interpolation.
func Resample(in []byte, from, to int) []byte {
	inSamples := len(in) / 2
	if from == to || inSamples == 0 || from <= 0 || to <= 0 {
		return in
	}

	outSamples := int(int64(inSamples) * int64(to) / int64(from))
	out := make([]byte, outSamples*2)
	ratio := float64(from) / float64(to)

	for i := 0; i < outSamples; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := readSample(in, srcIdx)
		s1 := readSample(in, srcIdx+1)

		sample := int16(float64(s0) + frac*(float64(s1)-float64(s0)))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}

	return out
}

func readSample(buf []byte, idx int) int16 {
	off := idx * 2
	if off+1 >= len(buf) {
		off = len(buf) - 2
	}
	if off < 0 {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(buf[off:]))
}
