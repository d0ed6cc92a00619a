// Package audio turns uploaded call audio into the canonical mono float
// waveform the spoof model expects.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"

	"github.com/go-audio/wav"
)

// ErrEmptyAudio is returned for zero-length input
var ErrEmptyAudio = errors.New("audio is empty")

// PCM is a decoded waveform with samples normalized to [-1, 1]
type PCM struct {
	SampleRate int
	Channels   int
	// Samples are interleaved when Channels > 1
	Samples []float64
}

// Frames returns the number of sample frames
func (p PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the length in seconds
func (p PCM) Duration() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(p.Frames()) / float64(p.SampleRate)
}

// IsWAV reports whether data carries a RIFF/WAVE header
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// Decoder decodes WAV natively and hands other containers to ffmpeg
type Decoder struct {
	FFmpegPath string
	// TranscodeRate is the sample rate requested from ffmpeg
	TranscodeRate int
}

// NewDecoder creates a decoder; an empty ffmpegPath disables non-WAV input
func NewDecoder(ffmpegPath string, transcodeRate int) *Decoder {
	if transcodeRate <= 0 {
		transcodeRate = 16000
	}
	return &Decoder{FFmpegPath: ffmpegPath, TranscodeRate: transcodeRate}
}

// Decode returns the waveform of data
func (d *Decoder) Decode(ctx context.Context, data []byte) (PCM, error) {
	if len(data) == 0 {
		return PCM{}, ErrEmptyAudio
	}
	if IsWAV(data) {
		return DecodeWAV(data)
	}
	if d.FFmpegPath == "" {
		return PCM{}, fmt.Errorf("non-WAV audio requires ffmpeg")
	}
	return d.transcode(ctx, data)
}

// DecodeWAV decodes a PCM WAV file
func DecodeWAV(data []byte) (PCM, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return PCM{}, fmt.Errorf("invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("failed to read wav samples: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return PCM{}, ErrEmptyAudio
	}

	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = int(dec.BitDepth)
	}
	if depth <= 0 {
		depth = 16
	}
	scale := float64(int64(1) << uint(depth-1))

	// 8-bit WAV is unsigned
	offset := 0.0
	if depth == 8 {
		offset = scale
	}
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = (float64(v) - offset) / scale
	}
	return PCM{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Samples:    samples,
	}, nil
}

// transcode pipes data through ffmpeg and reads mono s16le back
func (d *Decoder) transcode(ctx context.Context, data []byte) (PCM, error) {
	var stdout, stderr bytes.Buffer
	// ffmpeg -i pipe:0 -ac 1 -ar <rate> -f s16le pipe:1
	cmd := exec.CommandContext(ctx, d.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-ac", "1", "-ar", fmt.Sprint(d.TranscodeRate),
		"-f", "s16le",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return PCM{}, fmt.Errorf("ffmpeg: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	raw := stdout.Bytes()
	if len(raw) < 2 {
		return PCM{}, ErrEmptyAudio
	}
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768.0
	}
	return PCM{SampleRate: d.TranscodeRate, Channels: 1, Samples: samples}, nil
}
