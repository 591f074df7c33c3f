package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// SampleRate is the rate every decoded clip is resampled to.
const SampleRate = 16000

const (
	FormatWAV = "wav"
	FormatMP3 = "mp3"
	FormatOgg = "ogg"
)

var ErrUnsupportedAudio = errors.New("unsupported audio format (want wav, mp3 or ogg vorbis)")

// Clip is an uploaded recording and its mono 16 kHz samples in [-1, 1].
type Clip struct {
	Data    []byte
	Format  string
	Samples []float32
}

func (c *Clip) Duration() time.Duration {
	return time.Duration(len(c.Samples)) * time.Second / SampleRate
}

// MIMEType is the content type of the original upload.
func (c *Clip) MIMEType() string {
	switch c.Format {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	case FormatOgg:
		return "audio/ogg"
	}
	return "application/octet-stream"
}

// Decode sniffs the container of data and decodes it.
func Decode(data []byte) (*Clip, error) {
	format := sniff(data)
	var (
		samples []float32
		err     error
	)
	switch format {
	case FormatWAV:
		samples, err = decodeWAV(bytes.NewReader(data))
	case FormatMP3:
		samples, err = decodeMP3(bytes.NewReader(data))
	case FormatOgg:
		samples, err = decodeOgg(bytes.NewReader(data))
	default:
		return nil, ErrUnsupportedAudio
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	return &Clip{Data: data, Format: format, Samples: samples}, nil
}

func sniff(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 4 && string(data[:4]) == "OggS":
		return FormatOgg
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return ""
}

func decodeWAV(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav header")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil {
		return nil, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	scale := 1.0 / float64(int64(1)<<(depth-1))
	x := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		x[i] = float32(max(-1, min(1, float64(v)*scale)))
	}
	return resample(downmix(x, buf.Format.NumChannels), buf.Format.SampleRate), nil
}

func decodeMP3(r io.Reader) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	ints := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:len(ints)*2]), binary.LittleEndian, ints); err != nil {
		return nil, err
	}
	x := make([]float32, len(ints))
	for i, v := range ints {
		x[i] = float32(v) / 32768
	}
	// go-mp3 always emits interleaved stereo.
	return resample(downmix(x, 2), dec.SampleRate()), nil
}

func decodeOgg(r io.Reader) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid vorbis stream")
	}
	return resample(downmix(pcm, format.Channels), format.SampleRate), nil
}

func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	out := make([]float32, len(in)/channels)
	for i := range out {
		var sum float32
		for c := range channels {
			sum += in[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// resample converts in from rate to SampleRate by linear interpolation.
func resample(in []float32, rate int) []float32 {
	if rate <= 0 || rate == SampleRate || len(in) == 0 {
		return in
	}
	ratio := float64(SampleRate) / float64(rate)
	out := make([]float32, int(math.Ceil(float64(len(in))*ratio)))
	last := len(in) - 1
	for i := range out {
		pos := float64(i) / ratio
		j := int(pos)
		if j >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
