package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Format describes the sample layout of a PCM clip.
type Format struct {
	SampleRate int
	Channels   int
}

// Clip holds decoded 16-bit PCM samples, interleaved by channel.
type Clip struct {
	Format  Format
	Samples []int16
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.Format.SampleRate <= 0 || c.Format.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Format.Channels
	return float64(frames) / float64(c.Format.SampleRate)
}

var (
	// ErrUnsupported marks WAV files outside the 16-bit PCM subset.
	ErrUnsupported = errors.New("wavio: unsupported wav encoding")
	errMalformed   = errors.New("wavio: malformed wav data")
)

const (
	pcmFormatTag  = 1
	bitsPerSample = 16
)

// Decode reads a 16-bit PCM WAV stream. Extension chunks between fmt
// and data are skipped; compressed or float encodings return
// ErrUnsupported.
func Decode(r io.Reader) (*Clip, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("wavio: read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, errMalformed
	}

	var format Format
	sawFmt := false
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, errMalformed
			}
			return nil, fmt.Errorf("wavio: read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, errMalformed
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wavio: read fmt chunk: %w", err)
			}
			tag := binary.LittleEndian.Uint16(body[0:2])
			bits := binary.LittleEndian.Uint16(body[14:16])
			if tag != pcmFormatTag || bits != bitsPerSample {
				return nil, fmt.Errorf("%w: format tag %d, %d bits", ErrUnsupported, tag, bits)
			}
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			if format.Channels <= 0 || format.SampleRate <= 0 {
				return nil, errMalformed
			}
			sawFmt = true
		case "data":
			if !sawFmt {
				return nil, errMalformed
			}
			payload := make([]byte, size)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, fmt.Errorf("wavio: read data chunk: %w", err)
			}
			samples := make([]int16, len(payload)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(payload[2*i:]))
			}
			return &Clip{Format: format, Samples: samples}, nil
		default:
			// Skip LIST, fact, and other metadata chunks. Chunk
			// bodies are word-aligned.
			skip := int64(size)
			if skip%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, errMalformed
			}
		}
	}
}

// Encode writes the clip as a 16-bit PCM WAV stream.
func Encode(w io.Writer, clip *Clip) error {
	if clip == nil || clip.Format.SampleRate <= 0 || clip.Format.Channels <= 0 {
		return errors.New("wavio: invalid clip")
	}

	dataSize := uint32(len(clip.Samples) * 2)
	blockAlign := uint16(clip.Format.Channels * 2)
	byteRate := uint32(clip.Format.SampleRate) * uint32(blockAlign)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], pcmFormatTag)
	binary.LittleEndian.PutUint16(header[22:24], uint16(clip.Format.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(clip.Format.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("wavio: write header: %w", err)
	}

	payload := make([]byte, len(clip.Samples)*2)
	for i, sample := range clip.Samples {
		binary.LittleEndian.PutUint16(payload[2*i:], uint16(sample))
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("wavio: write samples: %w", err)
	}
	return nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile encodes the clip to path, creating or truncating it.
func WriteFile(path string, clip *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, clip); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
