// Package audio handles ingestion of recorded practice audio: WAV decoding,
// duration validation, and normalisation to the 16 kHz mono 16-bit PCM format
// the speech recognizers expect.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	// TargetSampleRate is the sample rate all audio is normalised to before
	// transcription.
	TargetSampleRate = 16000

	// MinDuration is the shortest clip accepted for analysis. Anything below
	// this cannot contain a gradeable utterance.
	MinDuration = 500 * time.Millisecond

	// bitsPerSample is fixed at 16; only 16-bit signed little-endian PCM WAV
	// files are accepted.
	bitsPerSample = 16
)

// ErrTooShort is returned by [Validate] when a clip is shorter than
// [MinDuration].
var ErrTooShort = errors.New("audio: clip too short")

// ErrUnsupportedFormat is returned when a WAV file is not 16-bit integer PCM.
var ErrUnsupportedFormat = errors.New("audio: unsupported WAV format")

// Clip is a decoded audio clip. PCM holds interleaved 16-bit little-endian
// signed samples.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration returns the play length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	samples := len(c.PCM) / 2 / c.Channels
	return time.Duration(samples) * time.Second / time.Duration(c.SampleRate)
}

// Float32 converts the clip's PCM data to mono float32 samples in [-1,1],
// the input format of the whisper.cpp bindings. Stereo input is downmixed.
func (c Clip) Float32() []float32 {
	pcm := c.PCM
	if c.Channels == 2 {
		pcm = StereoToMono(pcm)
	}
	out := make([]float32, len(pcm)/2)
	for i := range out {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}

// DecodeWAV reads a RIFF/WAVE stream and returns its PCM payload. Only
// 16-bit integer PCM is supported; compressed or float WAV files return
// [ErrUnsupportedFormat].
func DecodeWAV(r io.Reader) (Clip, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Clip{}, fmt.Errorf("audio: read RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Clip{}, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}

	var clip Clip
	var haveFmt, haveData bool

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Clip{}, fmt.Errorf("audio: read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return Clip{}, fmt.Errorf("audio: read fmt chunk: %w", err)
			}
			if len(body) < 16 {
				return Clip{}, fmt.Errorf("%w: truncated fmt chunk", ErrUnsupportedFormat)
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			clip.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits := binary.LittleEndian.Uint16(body[14:16])
			if format != 1 || bits != bitsPerSample {
				return Clip{}, fmt.Errorf("%w: format=%d bits=%d, want PCM 16-bit", ErrUnsupportedFormat, format, bits)
			}
			haveFmt = true
		case "data":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return Clip{}, fmt.Errorf("audio: read data chunk: %w", err)
			}
			clip.PCM = body
			haveData = true
		default:
			// Skip unknown chunks (LIST, fact, ...). Chunks are word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return Clip{}, fmt.Errorf("audio: skip %q chunk: %w", id, err)
			}
			continue
		}
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && !errors.Is(err, io.EOF) {
				return Clip{}, fmt.Errorf("audio: skip padding: %w", err)
			}
		}
	}

	if !haveFmt || !haveData {
		return Clip{}, fmt.Errorf("%w: missing fmt or data chunk", ErrUnsupportedFormat)
	}
	if clip.Channels < 1 || clip.Channels > 2 {
		return Clip{}, fmt.Errorf("%w: %d channels, want mono or stereo", ErrUnsupportedFormat, clip.Channels)
	}
	return clip, nil
}

// LoadFile decodes, validates, and normalises the WAV file at path. The
// returned clip is mono at [TargetSampleRate] and at least [MinDuration]
// long.
func LoadFile(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	clip, err := DecodeWAV(f)
	if err != nil {
		return Clip{}, err
	}
	if err := Validate(clip); err != nil {
		return Clip{}, err
	}
	return Normalize(clip), nil
}

// EncodeWAV serialises a clip back into a RIFF/WAVE byte stream, used when a
// hosted recognizer requires a file upload rather than raw PCM.
func EncodeWAV(c Clip) []byte {
	byteRate := c.SampleRate * c.Channels * 2
	blockAlign := c.Channels * 2

	buf := make([]byte, 0, 44+len(c.PCM))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(c.PCM)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // integer PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(c.Channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.SampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, bitsPerSample)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.PCM)))
	buf = append(buf, c.PCM...)
	return buf
}

// Validate checks that a decoded clip is long enough to analyse.
func Validate(c Clip) error {
	if d := c.Duration(); d < MinDuration {
		return fmt.Errorf("%w: %s, minimum %s", ErrTooShort, d, MinDuration)
	}
	return nil
}
