package musicpad

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/satindergrewal/voicepad/internal/audio"
)

// TrackType selects how a track's voices are treated on each step.
type TrackType string

const (
	Pad     TrackType = "pad"
	Sparkle TrackType = "sparkle" // voices get per-step vibrato
	Bass    TrackType = "bass"
)

// TrackDefinition is the static description of one layer of the pad.
type TrackDefinition struct {
	Type     TrackType      `yaml:"type"`
	BaseGain float64        `yaml:"base_gain"`
	Waveform audio.Waveform `yaml:"waveform"`
	Pattern  []float64      `yaml:"pattern,flow"`
	Notes    []float64      `yaml:"notes,flow"` // Hz, one voice per note
}

// Strength returns the pattern intensity for a step. The pattern repeats with
// its own length regardless of how far the step counter has grown.
func (d TrackDefinition) Strength(step int) float64 {
	return d.Pattern[step%len(d.Pattern)]
}

// Validate checks the definition's invariants.
func (d TrackDefinition) Validate() error {
	switch d.Type {
	case Pad, Sparkle, Bass:
	default:
		return fmt.Errorf("type: unknown track type %q", d.Type)
	}
	if d.BaseGain < 0 || d.BaseGain > 1 {
		return fmt.Errorf("base_gain: %v outside [0,1]", d.BaseGain)
	}
	if _, err := audio.ParseWaveform(string(d.Waveform)); err != nil {
		return fmt.Errorf("waveform: %w", err)
	}
	if len(d.Pattern) == 0 {
		return fmt.Errorf("pattern: empty")
	}
	for i, s := range d.Pattern {
		if s < 0 || s > 1 {
			return fmt.Errorf("pattern[%d]: %v outside [0,1]", i, s)
		}
	}
	if len(d.Notes) == 0 {
		return fmt.Errorf("notes: empty")
	}
	for i, f := range d.Notes {
		if f <= 0 {
			return fmt.Errorf("notes[%d]: frequency %v must be positive", i, f)
		}
	}
	return nil
}

// DefaultTracks returns the built-in pad, sparkle and bass layers.
func DefaultTracks() []TrackDefinition {
	return []TrackDefinition{
		{
			Type:     Pad,
			BaseGain: 0.22,
			Waveform: audio.Sine,
			Pattern:  []float64{1, 0.6, 0, 0.6},
			Notes:    []float64{261.63, 329.63, 392},
		},
		{
			Type:     Sparkle,
			BaseGain: 0.12,
			Waveform: audio.Triangle,
			Pattern:  []float64{0, 1, 0, 1, 0, 0, 1, 0},
			Notes:    []float64{523.25, 659.25, 783.99, 659.25},
		},
		{
			Type:     Bass,
			BaseGain: 0.28,
			Waveform: audio.Square,
			Pattern:  []float64{1, 0, 1, 0, 0, 1, 0, 0},
			Notes:    []float64{130.81},
		},
	}
}

type trackFile struct {
	Tracks []TrackDefinition `yaml:"tracks"`
}

// ParseTracks decodes and validates a YAML track list.
func ParseTracks(data []byte) ([]TrackDefinition, error) {
	var f trackFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode tracks: %w", err)
	}
	if len(f.Tracks) == 0 {
		return nil, fmt.Errorf("decode tracks: no tracks defined")
	}
	for i, d := range f.Tracks {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
	}
	return f.Tracks, nil
}

// LoadTracks reads a YAML track file. An empty path yields DefaultTracks.
func LoadTracks(path string) ([]TrackDefinition, error) {
	if path == "" {
		return DefaultTracks(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tracks %s: %w", path, err)
	}
	return ParseTracks(data)
}

// MarshalTracks encodes a track list in the format ParseTracks reads.
func MarshalTracks(tracks []TrackDefinition) ([]byte, error) {
	return yaml.Marshal(trackFile{Tracks: tracks})
}
