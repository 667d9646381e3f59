// Package content holds the static prompts and tips shown next to the pad.
package content

import (
	"strings"
	"time"
)

// Script is a short voice-over prompt.
type Script struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// RecordingState is the browser recorder's status.
type RecordingState string

const (
	Idle       RecordingState = "idle"
	Recording  RecordingState = "recording"
	Processing RecordingState = "processing"
	Ready      RecordingState = "ready"
)

// Label is the status line shown for a recording state.
func (s RecordingState) Label() string {
	switch s {
	case Recording:
		return "Recording… tap stop when you’re ready!"
	case Processing:
		return "Wrapping up your take…"
	case Ready:
		return "Ready to play back or download!"
	}
	return "Microphone is standing by."
}

// RecordingStates lists every recorder state in display order.
var RecordingStates = []RecordingState{Idle, Recording, Processing, Ready}

// DefaultDownloadName is offered before any take has been recorded.
const DefaultDownloadName = "kids-music-voice-over.webm"

// DownloadName names a finished take after the moment it was recorded, with
// the characters browsers reject in file names replaced.
func DownloadName(at time.Time) string {
	stamp := at.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "kids-voice-over-" + stamp + ".webm"
}

// Scripts are the prompt cards.
var Scripts = []Script{
	{
		Title: "Morning Adventure",
		Body:  "“Good morning, Super Explorer! The sun is peeking over Rainbow Ridge and the giggle-birds are chirping hello. Stretch your arms wide, wriggle your toes, and get ready for a sparkle-bright day!”",
	},
	{
		Title: "Space Bounce",
		Body:  "“Put on your moon boots! We’re floating past the marshmallow clouds of planet Puffy-Puff. Bouncy beats keep our spaceship dancing, and every star we pass pops with a happy little ping!”",
	},
	{
		Title: "Underwater Parade",
		Body:  "“Splash into Seafoam City where the jellyfish twirl ribbons of light. The bubble drums go ‘boop-boop’ as we march with our dolphin friends. Wave your fins—it’s parade time!”",
	},
	{
		Title: "Dreamy Wind-Down",
		Body:  "“Close your eyes and drift with the sleepy fireflies. Their glow hums a gentle lullaby while clouds of cotton-candy snowflakes tuck us into the coziest cloudbed.”",
	},
}

// WarmUps are vocal warm-up exercises.
var WarmUps = []string{
	"Bubble hums: blow a silent bubble while humming up and down the scale.",
	"Puppet smiles: big grin, relax, repeat—loosen cheeks for rounder vowels.",
	"Rainbow vowels: “Ah-Ee-Ay-Oh-Oo” like you’re painting colors across the sky.",
	"Soft drum beat taps on your chest to feel rhythm while you speak.",
}

// ProductionTips are mixing and recording hints.
var ProductionTips = []string{
	"Record a room tone of 10 seconds after each take—use it to smooth edits and keep background sounds consistent.",
	"Stack a whisper track underneath your main performance to add airy sparkle without raising volume.",
	"When mixing, duck the backing music by 4–6 dB whenever you speak so your storytelling shines through the melody.",
	"Close with a smile you can feel—it keeps the last syllable bright and friendly for young listeners.",
}

// MicTip is shown while no take is available.
const MicTip = "Tip: Keep the mic 15 cm from your mouth, speak with a smile, and use gestures even when unseen—they add sparkle to your voice!"

// Catalog bundles everything the shell renders.
type Catalog struct {
	Scripts        []Script          `json:"scripts"`
	WarmUps        []string          `json:"warm_ups"`
	ProductionTips []string          `json:"production_tips"`
	MicTip         string            `json:"mic_tip"`
	Labels         map[string]string `json:"recording_labels"`
	DownloadName   string            `json:"download_name"`
}

// Default returns the built-in catalog.
func Default() Catalog {
	labels := make(map[string]string, len(RecordingStates))
	for _, s := range RecordingStates {
		labels[string(s)] = s.Label()
	}
	return Catalog{
		Scripts:        Scripts,
		WarmUps:        WarmUps,
		ProductionTips: ProductionTips,
		MicTip:         MicTip,
		Labels:         labels,
		DownloadName:   DefaultDownloadName,
	}
}
