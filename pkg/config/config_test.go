package config

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
)

func TestRiskConfigDefaultsMatchEnvconfig(t *testing.T) {
	var fromEnv RiskConfig
	if err := envconfig.Process("RISKTEST", &fromEnv); err != nil {
		t.Fatalf("envconfig: %v", err)
	}
	if fromEnv != DefaultRiskConfig() {
		t.Fatalf("envconfig defaults %+v differ from DefaultRiskConfig %+v", fromEnv, DefaultRiskConfig())
	}
}

func TestRiskConfigOverride(t *testing.T) {
	t.Setenv("RISKTEST_SPOOF_WEIGHT", "0.5")
	t.Setenv("RISKTEST_TURN_MODULUS", "4")
	var r RiskConfig
	if err := envconfig.Process("RISKTEST", &r); err != nil {
		t.Fatalf("envconfig: %v", err)
	}
	if r.SpoofWeight != 0.5 || r.TurnModulus != 4 {
		t.Fatalf("override not applied: %+v", r)
	}
}

func TestRiskConfigValidate(t *testing.T) {
	r := DefaultRiskConfig()
	if err := r.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	r.HighThreshold = 0.3
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error when high <= medium")
	}
	r = DefaultRiskConfig()
	r.BotWeight = 1.5
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for weight out of range")
	}
}

func TestValidateTranscriberKeys(t *testing.T) {
	c := &Config{
		Groq:     GroqConfig{APIKey: "g"},
		OpenAI:   OpenAIConfig{APIKey: "o"},
		Spoof:    SpoofConfig{URL: "http://spoof"},
		Analysis: AnalysisConfig{Transcriber: "assemblyai", Workers: 1},
		Risk:     DefaultRiskConfig(),
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected missing assemblyai key error")
	}
	c.Assembly.APIKey = "a"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Analysis.Transcriber = "kaldi"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected unknown transcriber error")
	}
}
