/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hdxdeck/internal/audioctx"
	"hdxdeck/internal/config"
	"hdxdeck/internal/ipc"
	"hdxdeck/internal/player"
	"hdxdeck/internal/store"
	"hdxdeck/pkg/spec"

	"github.com/rs/zerolog"
)

const (
	developer_title    = "Developer Hardiyanto"
	developer_subtitle = "Build 27/12/2025 Ebiet Version"
)

func main() {
	cfg := config.Load()
	flag.StringVar(&cfg.Socket, "socket", cfg.Socket, "unix socket path")
	flag.StringVar(&cfg.Output, "output", cfg.Output, "audio output: speaker | null")
	loadPath := flag.String("load", "", "file to load at startup")
	autoplay := flag.Bool("play", false, "start playback after -load")
	flag.Parse()

	fmt.Printf("\n%s V.%d.%d\n", spec.ServerName, spec.VersionMajor, spec.VersionMinor)
	fmt.Printf("%s %s\n", developer_title, developer_subtitle)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.LogLevel).
		With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	actx, err := openOutput(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("output", cfg.Output).Msg("audio output")
	}

	sched := player.NewFrameScheduler(cfg.FrameRate)
	m, err := player.New(actx,
		player.WithLogger(log.With().Str("component", "player").Logger()),
		player.WithBands(cfg.Bands...),
		player.WithScheduler(sched),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("player")
	}
	log.Info().
		Str("output", cfg.Output).
		Dur("tick", sched.Interval()).
		Floats64("bands", cfg.Bands).
		Msg("player ready")
	st := store.New(m, log.With().Str("component", "store").Logger(), cfg.MaxFileBytes)
	srv := ipc.New(st, m, log.With().Str("component", "ipc").Logger())

	if *loadPath != "" {
		if _, err := st.LoadFile(ctx, *loadPath); err != nil {
			log.Error().Err(err).Msg("startup load")
		} else if *autoplay {
			if err := st.Play(ctx); err != nil {
				log.Error().Err(err).Msg("startup play")
			}
		}
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(cfg.Socket) }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errc:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("socket", cfg.Socket).Msg("ipc stopped")
		}
	}

	srv.Close()
	st.Close()
	if err := m.Close(); err != nil {
		log.Warn().Err(err).Msg("close player")
	}
	_ = os.Remove(cfg.Socket)
}

// openOutput membuka speaker, atau output null yang dijalankan jam dinding
func openOutput(ctx context.Context, cfg config.Config) (audioctx.Context, error) {
	if cfg.Output == config.OutputNull {
		out := audioctx.NewOffline(spec.SampleRate)
		go out.Run(ctx, cfg.Buffer)
		return out, nil
	}
	return audioctx.NewSpeaker(spec.SampleRate, cfg.Buffer)
}
