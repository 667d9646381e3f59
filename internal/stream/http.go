package stream

import (
	"context"
	"encoding/binary"
	"io"
	"log"
	"net/http"
	"os/exec"
	"strconv"

	"github.com/satindergrewal/voicepad/internal/audio"
)

// Format is the container an HTTP listener receives.
type Format string

const (
	FormatMP3 Format = "mp3" // encoded by an ffmpeg child process
	FormatWAV Format = "wav" // raw PCM behind an open-ended WAV header
)

// HTTPHandler serves the music pad as a chunked audio stream.
type HTTPHandler struct {
	broadcaster *Broadcaster
	format      Format
}

// NewHTTPHandler creates an HTTP stream handler.
func NewHTTPHandler(b *Broadcaster, format Format) *HTTPHandler {
	return &HTTPHandler{broadcaster: b, format: format}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("ICY-Name", "voicepad music pad")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	switch h.format {
	case FormatWAV:
		w.Header().Set("Content-Type", "audio/wav")
		h.serveWAV(ctx, w, flusher)
	default:
		w.Header().Set("Content-Type", "audio/mpeg")
		h.serveMP3(ctx, w, flusher)
	}
}

func (h *HTTPHandler) serveWAV(ctx context.Context, w io.Writer, flusher http.Flusher) {
	listener := h.broadcaster.Subscribe(KindHTTP)
	defer h.broadcaster.Unsubscribe(listener)

	log.Printf("HTTP WAV listener connected (total: %d)", h.broadcaster.ListenerCount())
	defer log.Printf("HTTP WAV listener disconnected")

	if _, err := w.Write(WAVHeader()); err != nil {
		return
	}
	flusher.Flush()
	pumpFrames(ctx, listener, w, flusher.Flush)
}

func (h *HTTPHandler) serveMP3(ctx context.Context, w io.Writer, flusher http.Flusher) {
	enc := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs()...)
	pcmIn, err := enc.StdinPipe()
	if err != nil {
		log.Printf("HTTP MP3 stream: stdin pipe: %v", err)
		return
	}
	mp3Out, err := enc.StdoutPipe()
	if err != nil {
		log.Printf("HTTP MP3 stream: stdout pipe: %v", err)
		return
	}
	if err := enc.Start(); err != nil {
		log.Printf("HTTP MP3 stream: start ffmpeg: %v", err)
		return
	}
	defer enc.Wait()

	listener := h.broadcaster.Subscribe(KindHTTP)
	defer h.broadcaster.Unsubscribe(listener)

	log.Printf("HTTP MP3 listener connected (total: %d)", h.broadcaster.ListenerCount())
	defer log.Printf("HTTP MP3 listener disconnected")

	go func() {
		defer pcmIn.Close()
		pumpFrames(ctx, listener, pcmIn, nil)
	}()

	_, err = io.CopyBuffer(flushWriter{w: w, f: flusher}, mp3Out, make([]byte, 4096))
	if err != nil && ctx.Err() == nil {
		log.Printf("HTTP MP3 stream: %v", err)
	}
}

const mp3Bitrate = "192k"

// ffmpegArgs encodes raw pad PCM from stdin to MP3 on stdout with minimal
// buffering.
func ffmpegArgs() []string {
	return []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(audio.SampleRate),
		"-ac", strconv.Itoa(audio.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", mp3Bitrate,
		"-f", "mp3",
		"-fflags", "nobuffer",
		"-flush_packets", "1",
		"-loglevel", "error",
		"pipe:1",
	}
}

// pumpFrames writes each frame l receives to w as little-endian PCM until ctx
// ends, l is unsubscribed or a write fails. flush, if set, runs after every
// frame.
func pumpFrames(ctx context.Context, l *Listener, w io.Writer, flush func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.Done():
			return nil
		case frame := <-l.C:
			if _, err := w.Write(audio.SamplesToBytes(frame)); err != nil {
				return err
			}
			if flush != nil {
				flush()
			}
		}
	}
}

// flushWriter pushes every write straight to the client.
type flushWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	fw.f.Flush()
	return n, err
}

// WAVHeader returns a 44-byte RIFF header for an endless 48kHz stereo 16-bit
// stream. The size fields carry the maximum value since the length is unknown.
func WAVHeader() []byte {
	const unknown = 0xFFFFFFFF
	h := make([]byte, 44)
	copy(h[0:], "RIFF")
	binary.LittleEndian.PutUint32(h[4:], unknown)
	copy(h[8:], "WAVE")
	copy(h[12:], "fmt ")
	binary.LittleEndian.PutUint32(h[16:], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:], audio.Channels)
	binary.LittleEndian.PutUint32(h[24:], audio.SampleRate)
	binary.LittleEndian.PutUint32(h[28:], audio.SampleRate*audio.Channels*audio.BitDepth/8)
	binary.LittleEndian.PutUint16(h[32:], audio.Channels*audio.BitDepth/8)
	binary.LittleEndian.PutUint16(h[34:], audio.BitDepth)
	copy(h[36:], "data")
	binary.LittleEndian.PutUint32(h[40:], unknown)
	return h
}
