package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/satindergrewal/voicepad/internal/api"
	"github.com/satindergrewal/voicepad/internal/audio"
	"github.com/satindergrewal/voicepad/internal/config"
	"github.com/satindergrewal/voicepad/internal/content"
	"github.com/satindergrewal/voicepad/internal/device"
	"github.com/satindergrewal/voicepad/internal/musicpad"
	"github.com/satindergrewal/voicepad/internal/stream"
	"github.com/satindergrewal/voicepad/internal/web"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	tracks, err := musicpad.LoadTracks(cfg.TracksFile)
	if err != nil {
		log.Fatalf("Load tracks: %v", err)
	}
	padCfg := musicpad.Config{
		BPM:          cfg.BPM,
		StepDivision: cfg.StepDivision,
		MasterGain:   cfg.MasterGain,
		Tracks:       tracks,
	}
	if err := padCfg.Validate(); err != nil {
		log.Fatalf("Invalid music pad config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("voicepad starting up...")

	// Sound card (optional). Without it and without listeners there is
	// nowhere for audio to go, so the pad reports itself unsupported.
	factory := audio.NewFactory(audio.SampleRate)
	var out *device.Output
	if cfg.Output.Device() {
		openCtx, openCancel := context.WithTimeout(ctx, 5*time.Second)
		out, err = device.Open(openCtx)
		openCancel()
		if err != nil {
			log.Printf("Audio device not available: %v", err)
			if !cfg.Output.Streams() {
				factory = audio.Unsupported(err)
			}
		}
	}

	engine := musicpad.New(padCfg, factory)
	go engine.Run(ctx)

	// Broadcaster: fan-out PCM frames to all listeners
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, engine.Frames())

	if out != nil {
		go func() {
			if err := out.Play(ctx, broadcaster); err != nil {
				log.Printf("Audio device: %v", err)
			}
		}()
	}

	page, err := web.NewPage(web.DefaultData())
	if err != nil {
		log.Fatalf("Web page: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", page)

	apiServer := &api.Server{
		Music:       engine,
		Broadcaster: broadcaster,
		Catalog:     content.Default(),
		Tracks:      tracks,
	}

	var webrtcHandler *stream.WebRTCHandler
	if cfg.Output.Streams() {
		webrtcHandler = stream.NewWebRTCHandler(broadcaster, cfg.ICEServers)
		mux.Handle("/stream", stream.NewHTTPHandler(broadcaster, stream.FormatMP3))
		mux.Handle("/stream.wav", stream.NewHTTPHandler(broadcaster, stream.FormatWAV))
		mux.Handle("/offer", webrtcHandler)
		apiServer.Peers = webrtcHandler.PeerCount
	}
	apiServer.Register(mux)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if webrtcHandler != nil {
			webrtcHandler.Close()
		}
		server.Close()
	}()

	log.Printf("voicepad live on %s (output %s, %.0f bpm)", addr, cfg.Output, cfg.BPM)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}
