package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func samples(vals ...int16) []byte {
	out := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func decode(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestClipDuration(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
		want time.Duration
	}{
		{"one second mono", Clip{PCM: make([]byte, 44100*2), SampleRate: 44100, Channels: 1}, time.Second},
		{"half second stereo", Clip{PCM: make([]byte, 22050*4), SampleRate: 44100, Channels: 2}, 500 * time.Millisecond},
		{"no format", Clip{PCM: make([]byte, 100)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clip.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDownmix(t *testing.T) {
	stereo := samples(100, 300, -200, -400, 32767, 32767)
	got := decode(Downmix(stereo, 2))
	want := []int16{200, -300, 32767}

	if len(got) != len(want) {
		t.Fatalf("Downmix() returned %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	mono := samples(1, 2, 3)
	if !bytes.Equal(Downmix(mono, 1), mono) {
		t.Error("Downmix() changed mono input")
	}
}

func TestResample(t *testing.T) {
	in := samples(0, 100, 200, 300)

	up := decode(Resample(in, 1, 2))
	wantUp := []int16{0, 50, 100, 150, 200, 250, 300, 300}
	if len(up) != len(wantUp) {
		t.Fatalf("upsampled to %d samples, want %d", len(up), len(wantUp))
	}
	for i := range wantUp {
		if up[i] != wantUp[i] {
			t.Errorf("upsampled %d = %d, want %d", i, up[i], wantUp[i])
		}
	}

	down := decode(Resample(in, 2, 1))
	wantDown := []int16{0, 200}
	if len(down) != len(wantDown) {
		t.Fatalf("downsampled to %d samples, want %d", len(down), len(wantDown))
	}
	for i := range wantDown {
		if down[i] != wantDown[i] {
			t.Errorf("downsampled %d = %d, want %d", i, down[i], wantDown[i])
		}
	}

	if !bytes.Equal(Resample(in, 22050, 22050), in) {
		t.Error("Resample() changed input at equal rates")
	}
}

func TestClipConvert(t *testing.T) {
	clip := Clip{PCM: make([]byte, 22050*4), SampleRate: 22050, Channels: 2}
	got := clip.Convert(44100)

	if got.Channels != 1 || got.SampleRate != 44100 {
		t.Fatalf("Convert() format = %d ch @ %d Hz", got.Channels, got.SampleRate)
	}
	if got.Duration() != clip.Duration() {
		t.Errorf("Convert() duration = %v, want %v", got.Duration(), clip.Duration())
	}
}

func TestDecodeMP3Invalid(t *testing.T) {
	if _, err := DecodeMP3(bytes.NewReader([]byte("not an mp3"))); err == nil {
		t.Error("DecodeMP3() error = nil for garbage input")
	}
}

func TestClipEmpty(t *testing.T) {
	if !(Clip{}).Empty() {
		t.Error("zero clip should be empty")
	}
	if (Clip{PCM: samples(1)}).Empty() {
		t.Error("clip with one sample should not be empty")
	}
}
