package audio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/Achu067/speak/pkg/audio"
)

// buildWAV assembles a minimal RIFF/WAVE byte stream with a 16-bit PCM fmt
// chunk and the given sample payload.
func buildWAV(t *testing.T, sampleRate, channels int, samples []int16) []byte {
	t.Helper()

	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))                    // bits

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}

func TestDecodeWAV_Mono16k(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 16000) // 1 second
	wav := buildWAV(t, 16000, 1, samples)

	clip, err := audio.DecodeWAV(bytes.NewReader(wav))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if clip.SampleRate != 16000 || clip.Channels != 1 {
		t.Errorf("clip format = %dHz/%dch, want 16000Hz/1ch", clip.SampleRate, clip.Channels)
	}
	if got := clip.Duration(); got != time.Second {
		t.Errorf("Duration = %s, want 1s", got)
	}
}

func TestDecodeWAV_RejectsNonWAV(t *testing.T) {
	t.Parallel()

	_, err := audio.DecodeWAV(bytes.NewReader([]byte("OggS this is not a wav file")))
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("DecodeWAV(ogg) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestValidate_TooShort(t *testing.T) {
	t.Parallel()

	// 100 ms at 16 kHz mono.
	clip := audio.Clip{PCM: make([]byte, 1600*2), SampleRate: 16000, Channels: 1}
	if err := audio.Validate(clip); !errors.Is(err, audio.ErrTooShort) {
		t.Errorf("Validate(100ms) error = %v, want ErrTooShort", err)
	}

	// Exactly 500 ms passes.
	clip = audio.Clip{PCM: make([]byte, 8000*2), SampleRate: 16000, Channels: 1}
	if err := audio.Validate(clip); err != nil {
		t.Errorf("Validate(500ms) error = %v, want nil", err)
	}
}

func TestNormalize_StereoDownmix(t *testing.T) {
	t.Parallel()

	// Two stereo frames: (100, 300) and (-200, -400).
	pcm := make([]byte, 8)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(int16(100)))
	binary.LittleEndian.PutUint16(pcm[2:], uint16(int16(300)))
	left, right := int16(-200), int16(-400)
	binary.LittleEndian.PutUint16(pcm[4:], uint16(left))
	binary.LittleEndian.PutUint16(pcm[6:], uint16(right))

	out := audio.Normalize(audio.Clip{PCM: pcm, SampleRate: 16000, Channels: 2})
	if out.Channels != 1 || out.SampleRate != 16000 {
		t.Fatalf("Normalize format = %dHz/%dch, want 16000Hz/1ch", out.SampleRate, out.Channels)
	}
	if len(out.PCM) != 4 {
		t.Fatalf("Normalize produced %d bytes, want 4", len(out.PCM))
	}
	first := int16(binary.LittleEndian.Uint16(out.PCM[0:]))
	second := int16(binary.LittleEndian.Uint16(out.PCM[2:]))
	if first != 200 || second != -300 {
		t.Errorf("downmixed samples = (%d, %d), want (200, -300)", first, second)
	}
}

func TestNormalize_Resamples48kTo16k(t *testing.T) {
	t.Parallel()

	// 1 second of 48 kHz mono becomes 1 second of 16 kHz mono.
	clip := audio.Clip{PCM: make([]byte, 48000*2), SampleRate: 48000, Channels: 1}
	out := audio.Normalize(clip)
	if out.SampleRate != audio.TargetSampleRate {
		t.Errorf("SampleRate = %d, want %d", out.SampleRate, audio.TargetSampleRate)
	}
	if got := out.Duration(); got != time.Second {
		t.Errorf("Duration after resample = %s, want 1s", got)
	}
}

func TestNormalize_PassthroughAlreadyTarget(t *testing.T) {
	t.Parallel()

	clip := audio.Clip{PCM: make([]byte, 32000), SampleRate: 16000, Channels: 1}
	out := audio.Normalize(clip)
	if &out.PCM[0] != &clip.PCM[0] {
		t.Error("Normalize copied PCM data for a clip already in target format")
	}
}

func TestFloat32_Range(t *testing.T) {
	t.Parallel()

	pcm := make([]byte, 4)
	maxSample, minSample := int16(32767), int16(-32768)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(maxSample))
	binary.LittleEndian.PutUint16(pcm[2:], uint16(minSample))

	f := audio.Clip{PCM: pcm, SampleRate: 16000, Channels: 1}.Float32()
	if len(f) != 2 {
		t.Fatalf("Float32 returned %d samples, want 2", len(f))
	}
	if f[0] <= 0.99 || f[0] > 1.0 {
		t.Errorf("f[0] = %f, want just under 1.0", f[0])
	}
	if f[1] != -1.0 {
		t.Errorf("f[1] = %f, want -1.0", f[1])
	}
}
