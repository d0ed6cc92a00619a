package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// ToMono averages interleaved channels into one
func ToMono(p PCM) PCM {
	if p.Channels <= 1 {
		return PCM{SampleRate: p.SampleRate, Channels: 1, Samples: p.Samples}
	}
	frames := p.Frames()
	mono := make([]float64, frames)
	for f := 0; f < frames; f++ {
		sum := 0.0
		for c := 0; c < p.Channels; c++ {
			sum += p.Samples[f*p.Channels+c]
		}
		mono[f] = sum / float64(p.Channels)
	}
	return PCM{SampleRate: p.SampleRate, Channels: 1, Samples: mono}
}

// Resample converts mono audio to rate
func Resample(p PCM, rate int) (PCM, error) {
	if p.SampleRate == rate || len(p.Samples) == 0 {
		return PCM{SampleRate: rate, Channels: p.Channels, Samples: p.Samples}, nil
	}
	if p.SampleRate <= 0 || rate <= 0 {
		return PCM{}, fmt.Errorf("invalid sample rates %d -> %d", p.SampleRate, rate)
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(p.SampleRate),
		OutputRate: float64(rate),
		Channels:   p.Channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return PCM{}, fmt.Errorf("failed to create resampler: %w", err)
	}
	out, err := rs.Process(p.Samples)
	if err != nil {
		return PCM{}, fmt.Errorf("failed to resample: %w", err)
	}
	return PCM{SampleRate: rate, Channels: p.Channels, Samples: out}, nil
}

// FitLength truncates or zero-pads samples to exactly n
func FitLength(samples []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, samples)
	return out
}

// ToFloat32 narrows samples for the model wire format
func ToFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}
