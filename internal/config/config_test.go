package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might interfere
	envVars := []string{
		"VOICEPAD_PORT", "VOICEPAD_BPM", "VOICEPAD_STEP_DIVISION",
		"VOICEPAD_MASTER_GAIN", "VOICEPAD_TRACKS_FILE", "VOICEPAD_OUTPUT",
		"VOICEPAD_ICE_SERVERS", "VOICEPAD_ADDR",
	}
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.BPM != 92 {
		t.Errorf("BPM = %f, want 92", cfg.BPM)
	}
	if cfg.StepDivision != 2 {
		t.Errorf("StepDivision = %d, want 2", cfg.StepDivision)
	}
	if cfg.MasterGain != 0.22 {
		t.Errorf("MasterGain = %f, want 0.22", cfg.MasterGain)
	}
	if cfg.TracksFile != "" {
		t.Errorf("TracksFile = %q, want empty default", cfg.TracksFile)
	}
	if cfg.Output != OutputStream {
		t.Errorf("Output = %q, want stream", cfg.Output)
	}
	if cfg.ICEServers != nil {
		t.Errorf("ICEServers = %v, want none", cfg.ICEServers)
	}
	if cfg.Addr != "http://localhost:8080" {
		t.Errorf("Addr = %q, want local default", cfg.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VOICEPAD_PORT", "3000")
	t.Setenv("VOICEPAD_BPM", "120")
	t.Setenv("VOICEPAD_STEP_DIVISION", "4")
	t.Setenv("VOICEPAD_MASTER_GAIN", "0.5")
	t.Setenv("VOICEPAD_TRACKS_FILE", "/etc/voicepad/tracks.yaml")
	t.Setenv("VOICEPAD_OUTPUT", "Both")
	t.Setenv("VOICEPAD_ICE_SERVERS", "stun:stun.l.google.com:19302, ,turn:example.org:3478")
	t.Setenv("VOICEPAD_ADDR", "http://pad.local:9000")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.BPM != 120 {
		t.Errorf("BPM = %f, want 120", cfg.BPM)
	}
	if cfg.StepDivision != 4 {
		t.Errorf("StepDivision = %d, want 4", cfg.StepDivision)
	}
	if cfg.MasterGain != 0.5 {
		t.Errorf("MasterGain = %f, want 0.5", cfg.MasterGain)
	}
	if cfg.TracksFile != "/etc/voicepad/tracks.yaml" {
		t.Errorf("TracksFile = %q, want env override", cfg.TracksFile)
	}
	if cfg.Output != OutputBoth {
		t.Errorf("Output = %q, want both", cfg.Output)
	}
	if len(cfg.ICEServers) != 2 || cfg.ICEServers[0] != "stun:stun.l.google.com:19302" || cfg.ICEServers[1] != "turn:example.org:3478" {
		t.Errorf("ICEServers = %v", cfg.ICEServers)
	}
	if cfg.Addr != "http://pad.local:9000" {
		t.Errorf("Addr = %q, want env override", cfg.Addr)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("VOICEPAD_PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8080", cfg.Port)
	}
}

func TestEnvFloatInvalidFallsBack(t *testing.T) {
	t.Setenv("VOICEPAD_BPM", "fast")
	cfg := Load()
	if cfg.BPM != 92 {
		t.Errorf("Invalid float env should fallback to default: got %f", cfg.BPM)
	}
}

func TestOutputTargets(t *testing.T) {
	tests := []struct {
		out            Output
		stream, device bool
	}{
		{OutputStream, true, false},
		{OutputDevice, false, true},
		{OutputBoth, true, true},
	}
	for _, tt := range tests {
		if tt.out.Streams() != tt.stream || tt.out.Device() != tt.device {
			t.Errorf("%s: Streams=%v Device=%v", tt.out, tt.out.Streams(), tt.out.Device())
		}
	}
}

func TestValidate(t *testing.T) {
	os.Unsetenv("VOICEPAD_PORT")
	cfg := Load()
	cfg.Output = "speaker"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown output should fail validation")
	}
	cfg = Load()
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range port should fail validation")
	}
}
