// Package device plays the music pad through the host's default sound card.
package device

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ebitengine/oto/v3"

	"github.com/satindergrewal/voicepad/internal/audio"
	"github.com/satindergrewal/voicepad/internal/stream"
)

// Output is an opened sound card.
type Output struct {
	ctx *oto.Context
}

// Open initializes the default output device at the pad's sample format and
// waits until it is ready.
func Open(ctx context.Context) (*Output, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   4 * audio.FrameDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Output{ctx: otoCtx}, nil
}

// Play subscribes to b and writes every frame to the device until ctx is
// cancelled.
func (o *Output) Play(ctx context.Context, b *stream.Broadcaster) error {
	listener := b.Subscribe(stream.KindDevice)
	defer b.Unsubscribe(listener)

	player := o.ctx.NewPlayer(NewFrameReader(ctx, listener))
	player.Play()
	log.Println("Audio device output started")

	<-ctx.Done()
	if err := player.Close(); err != nil {
		return fmt.Errorf("close device player: %w", err)
	}
	if err := o.ctx.Err(); err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	return nil
}

// FrameReader adapts a broadcast listener to the byte stream a device player
// pulls from. Read blocks until a frame arrives.
type FrameReader struct {
	ctx      context.Context
	listener *stream.Listener
	pending  []byte
}

// NewFrameReader reads little-endian PCM from l until ctx ends or l is
// unsubscribed, then reports io.EOF.
func NewFrameReader(ctx context.Context, l *stream.Listener) *FrameReader {
	return &FrameReader{ctx: ctx, listener: l}
}

func (r *FrameReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		select {
		case <-r.ctx.Done():
			return 0, io.EOF
		case <-r.listener.Done():
			return 0, io.EOF
		case frame := <-r.listener.C:
			r.pending = audio.SamplesToBytes(frame)
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
