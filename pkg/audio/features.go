package audio

import (
	"math"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

const (
	energyFrameLength = 2048
	energyHopLength   = 512
	epsilon           = 1e-10
)

// Features computes signal statistics over a mono waveform
func Features(samples []float64) entities.AudioFeatures {
	if len(samples) == 0 {
		return entities.AudioFeatures{}
	}
	return entities.AudioFeatures{
		SNR:             SNR(samples),
		RMSEnergy:       RMS(samples),
		ZeroCrossRate:   ZeroCrossingRate(samples),
		EnergyVariation: EnergyVariation(samples),
	}
}

// SNR is a crude signal-to-noise estimate: mean power over variance, in dB
func SNR(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	mean, power := 0.0, 0.0
	for _, s := range samples {
		mean += s
		power += s * s
	}
	n := float64(len(samples))
	mean /= n
	power /= n
	variance := power - mean*mean
	if variance < 0 {
		variance = 0
	}
	return 10 * math.Log10(power/(variance+epsilon)+epsilon)
}

// RMS is the root mean square amplitude
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// ZeroCrossingRate is the fraction of adjacent sample pairs that change sign
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// EnergyVariation is the coefficient of variation of framed energies
// (2048-sample frames, 512 hop); 0 when the signal is shorter than a frame
func EnergyVariation(samples []float64) float64 {
	if len(samples) < energyFrameLength {
		return 0
	}
	var energies []float64
	for start := 0; start+energyFrameLength <= len(samples); start += energyHopLength {
		e := 0.0
		for _, s := range samples[start : start+energyFrameLength] {
			e += s * s
		}
		energies = append(energies, e)
	}

	mean := 0.0
	for _, e := range energies {
		mean += e
	}
	mean /= float64(len(energies))
	variance := 0.0
	for _, e := range energies {
		d := e - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(energies)))
	return std / (mean + epsilon)
}
