/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"hdxdeck/internal/ipc"
	"hdxdeck/internal/store"
	"hdxdeck/pkg/spec"

	"github.com/chzyer/readline"
)

const (
	version_major      = 1
	version_minor      = 0
	app_name           = "HDX-Remote"
	developer_title    = "Developer Hardiyanto"
	developer_subtitle = "Build 27/12/2025 Ebiet Version"
)

func main() {
	socket := flag.String("socket", spec.SocketFile, "hdx-player unix socket")
	raw := flag.Bool("raw", false, "print EVENT lines without formatting")
	flag.Parse()

	fmt.Printf("\n%s V.%d.%d\n", app_name, version_major, version_minor)
	fmt.Printf("%s %s\n", developer_title, developer_subtitle)

	conn, err := net.Dial("unix", *socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, "CONNECT ERROR:", err)
		os.Exit(1)
	}
	defer conn.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "hdx> ",
		AutoComplete: completer(),
		EOFPrompt:    "QUIT",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "READLINE ERROR:", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("CONNECTED", *socket)
	fmt.Println(`Type IPC command, TAB to complete, "QUIT" to exit`)
	fmt.Println()

	// IPC → STDOUT, readline menjaga prompt tetap utuh
	go func() {
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			line := sc.Text()
			if !*raw && strings.HasPrefix(line, spec.EventPrefix) {
				line = formatEvent(strings.TrimPrefix(line, spec.EventPrefix))
			} else {
				line = "RECV: " + line
			}
			fmt.Fprintln(rl.Stdout(), line)
		}
		fmt.Fprintln(rl.Stdout(), "SOCKET CLOSED")
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			fmt.Println("Bye.")
			return
		}
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			fmt.Println("WRITE ERROR:", err)
			return
		}
	}
}

func completer() *readline.PrefixCompleter {
	paths := readline.PcItemDynamic(func(line string) []string {
		return listFiles(strings.TrimSpace(strings.TrimPrefix(line, "LOAD")))
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("LOAD", paths),
		readline.PcItem("PLAY"),
		readline.PcItem("PAUSE"),
		readline.PcItem("TOGGLE"),
		readline.PcItem("STOP"),
		readline.PcItem("SEEK"),
		readline.PcItem("VOLUME"),
		readline.PcItem("MUTE"),
		readline.PcItem("PAN"),
		readline.PcItem("EQ"),
		readline.PcItem("EQ-RESET"),
		readline.PcItem("STATUS"),
		readline.PcItem("BANDS"),
		readline.PcItem("SPECTRUM"),
		readline.PcItem("SCOPE"),
		readline.PcItem("WAVEFORM"),
		readline.PcItem("ABOUT"),
		readline.PcItem("PING"),
		readline.PcItem("WHOAMI"),
		readline.PcItem("QUIT"),
	)
}

// formatEvent mengubah EVENT json menjadi satu baris yang enak dibaca
func formatEvent(payload string) string {
	var ev ipc.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return "EVENT " + payload
	}
	switch ev.Type {
	case "STATE":
		if ev.State == nil {
			return "STATE"
		}
		st := ev.State
		title := "-"
		if st.Track != nil {
			title = st.Track.Title
		}
		return fmt.Sprintf("STATE %-8s %s/%s vol %s pan %s | %s",
			st.Status, store.FormatTime(st.Position), store.FormatTime(st.Duration),
			store.VolumeLabel(st.Volume), store.PanLabel(st.Pan), title)
	case "TIME":
		if ev.Position == nil {
			return "TIME"
		}
		return "TIME " + store.FormatTime(*ev.Position)
	case "ERROR":
		return "ERROR " + ev.Error
	default:
		return ev.Type
	}
}

func listFiles(prefix string) []string {
	dir := filepath.Dir(prefix)
	if prefix == "" {
		dir = "."
	}
	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		name := filepath.Join(dir, e.Name())
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		names = append(names, name)
	}
	return names
}
