package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Output selects where rendered pad audio goes.
type Output string

const (
	OutputStream Output = "stream" // HTTP and WebRTC listeners only
	OutputDevice Output = "device" // local sound card only
	OutputBoth   Output = "both"
)

// Streams reports whether listeners are served.
func (o Output) Streams() bool { return o == OutputStream || o == OutputBoth }

// Device reports whether the sound card is opened.
func (o Output) Device() bool { return o == OutputDevice || o == OutputBoth }

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Music pad
	BPM          float64
	StepDivision int     // steps per beat
	MasterGain   float64 // peak master level
	TracksFile   string  // YAML track set; empty uses the built-in tracks

	// Output
	Output     Output
	ICEServers []string // STUN/TURN URLs handed to WebRTC peers

	// Addr is the server padctl connects to.
	Addr string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port: envInt("VOICEPAD_PORT", 8080),

		BPM:          envFloat("VOICEPAD_BPM", 92),
		StepDivision: envInt("VOICEPAD_STEP_DIVISION", 2),
		MasterGain:   envFloat("VOICEPAD_MASTER_GAIN", 0.22),
		TracksFile:   envStr("VOICEPAD_TRACKS_FILE", ""),

		Output:     Output(strings.ToLower(envStr("VOICEPAD_OUTPUT", string(OutputStream)))),
		ICEServers: envList("VOICEPAD_ICE_SERVERS", nil),

		Addr: envStr("VOICEPAD_ADDR", "http://localhost:8080"),
	}
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("VOICEPAD_PORT: %d out of range", c.Port)
	}
	switch c.Output {
	case OutputStream, OutputDevice, OutputBoth:
	default:
		return fmt.Errorf("VOICEPAD_OUTPUT: unknown output %q", c.Output)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
