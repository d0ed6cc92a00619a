package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/pkg/audio"
	"github.com/johnquangdev/voice-guard/pkg/config"
	"github.com/johnquangdev/voice-guard/pkg/ready"
)

const (
	spoofDetectionMethod = "AASIST"
	spoofHighRisk        = 0.7
	spoofMediumRisk      = 0.4
	lowSNR               = 10
	goodSNR              = 20
	irregularEnergy      = 2.0
)

// Spoof risk factor tags
const (
	SpoofFactorHighProbability = "high spoof probability detected"
	SpoofFactorLowSNR          = "poor audio quality (low SNR)"
	SpoofFactorIrregularEnergy = "irregular energy distribution"
)

// SpoofClient sends the canonical waveform to an AASIST model server
type SpoofClient struct {
	baseURL     string
	client      *http.Client
	decoder     *audio.Decoder
	sampleRate  int
	sampleCount int
}

// NewSpoofClient creates a spoof detector client
func NewSpoofClient(cfg *config.SpoofConfig, decoder *audio.Decoder) *SpoofClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	sampleCount := cfg.SampleCount
	if sampleCount <= 0 {
		sampleCount = 64600
	}
	return &SpoofClient{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		client:      &http.Client{Timeout: timeout},
		decoder:     decoder,
		sampleRate:  sampleRate,
		sampleCount: sampleCount,
	}
}

type spoofRequest struct {
	SampleRate int       `json:"sample_rate"`
	Samples    []float32 `json:"samples"`
}

type spoofResponse struct {
	SpoofProbability *float64 `json:"spoof_probability"`
}

// DetectSpoof scores audio authenticity. Decode, transport and model errors
// are returned; callers decide whether to fail safe.
func (s *SpoofClient) DetectSpoof(ctx context.Context, data []byte) (entities.SpoofResult, error) {
	pcm, err := s.decoder.Decode(ctx, data)
	if err != nil {
		return entities.SpoofResult{}, fmt.Errorf("decode audio: %w", err)
	}
	mono := audio.ToMono(pcm)
	canonical, err := audio.Resample(mono, s.sampleRate)
	if err != nil {
		return entities.SpoofResult{}, err
	}

	prob, err := s.score(ctx, audio.FitLength(canonical.Samples, s.sampleCount))
	if err != nil {
		return entities.SpoofResult{}, err
	}

	features := audio.Features(canonical.Samples)
	return BuildSpoofResult(prob, features, canonical.Duration()), nil
}

func (s *SpoofClient) score(ctx context.Context, samples []float64) (float64, error) {
	body, err := json.Marshal(spoofRequest{SampleRate: s.sampleRate, Samples: audio.ToFloat32(samples)})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/detect", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("spoof model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("spoof model returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var sr spoofResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode spoof response: %w", err)
	}
	if sr.SpoofProbability == nil {
		return 0, fmt.Errorf("spoof response missing spoof_probability")
	}
	p := *sr.SpoofProbability
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("spoof probability %f out of range", p)
	}
	return p, nil
}

// BuildSpoofResult derives label, level, confidence and factors from the
// model probability and signal features
func BuildSpoofResult(prob float64, features entities.AudioFeatures, duration float64) entities.SpoofResult {
	label := entities.LabelBonafide
	if prob > 0.5 {
		label = entities.LabelSpoof
	}

	level := entities.RiskLow
	switch {
	case prob >= spoofHighRisk:
		level = entities.RiskHigh
	case prob >= spoofMediumRisk:
		level = entities.RiskMedium
	}

	// 0.7 model base, 0.2 for a usable signal analysis, 0.1 for clean audio
	confidence := 0.9
	if features.SNR > goodSNR {
		confidence += 0.1
	}
	if confidence > 1 {
		confidence = 1
	}

	factors := []string{}
	if prob > spoofHighRisk {
		factors = append(factors, SpoofFactorHighProbability)
	}
	if features.SNR < lowSNR {
		factors = append(factors, SpoofFactorLowSNR)
	}
	if features.EnergyVariation > irregularEnergy {
		factors = append(factors, SpoofFactorIrregularEnergy)
	}

	f := features
	return entities.SpoofResult{
		IsAuthentic:      label == entities.LabelBonafide,
		SpoofProbability: prob,
		Label:            label,
		Confidence:       confidence,
		RiskLevel:        level,
		RiskFactors:      factors,
		DetectionMethod:  spoofDetectionMethod,
		AudioDuration:    duration,
		Features:         &f,
	}
}

// Ping checks the model server health endpoint
func (s *SpoofClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spoof model health returned status %d", resp.StatusCode)
	}
	return nil
}

// WaitReady blocks until the model server is healthy; used at startup only
func (s *SpoofClient) WaitReady(ctx context.Context, logger *zap.Logger) error {
	return ready.Wait(ctx, "spoof-model", ready.DefaultOptions(), logger, s.Ping)
}
