/* SPDX-License-Identifier: GPL-3.0-or-later
 *
 * yt-term
 * Copyright (C) 2025 e1z0 <e1z0@icloud.com>
 *
 * This file is part of yt-term.
 *
 * yt-term is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * yt-term is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with yt-term.  If not, see <https://www.gnu.org/licenses/>.
 */

// Command ytterm plays a YouTube video (or a local MP4) as kitty-protocol
// frames directly in the terminal, with an interactive bubbletea search
// screen when no URL is given. It is the teacher's cmd/camview
// entrypoint's sibling: same Environment/Preferences bootstrap ordering,
// same ScreenGuard-scoped run loop shape, new domain underneath.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/e1z0/yt-term/internal/config"
	"github.com/e1z0/yt-term/internal/demux"
	"github.com/e1z0/yt-term/internal/kittyenc"
	"github.com/e1z0/yt-term/internal/logging"
	"github.com/e1z0/yt-term/internal/pipeline"
	"github.com/e1z0/yt-term/internal/playback"
	"github.com/e1z0/yt-term/internal/screen"
	"github.com/e1z0/yt-term/internal/search"
	"github.com/e1z0/yt-term/internal/source"
	"github.com/e1z0/yt-term/internal/termsize"
	"github.com/e1z0/yt-term/internal/tui"
	"github.com/e1z0/yt-term/internal/ytermerr"
)

var (
	flagURL        string
	flagSearch     string
	flagFile       string
	flagYtDlpPath  string
	flagFfmpegPath string
	flagDebug      bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ytterm",
		Short: "Play YouTube videos as terminal graphics",
	}
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(newPlayCmd())
	root.AddCommand(newSearchCmd())
	return root
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a video, by URL, local file, or interactive search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&flagURL, "url", "", "video URL to play")
	cmd.Flags().StringVar(&flagFile, "file", "", "local MP4 file to play")
	cmd.Flags().StringVar(&flagSearch, "search", "", "search query; play the first result")
	cmd.Flags().StringVar(&flagYtDlpPath, "ytdlp-path", "", "path to yt-dlp binary (default: PATH)")
	cmd.Flags().StringVar(&flagFfmpegPath, "ffmpeg-path", "", "path to ffmpeg binary (default: PATH)")
	cmd.MarkFlagsMutuallyExclusive("url", "file", "search")
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search YouTube and print matching videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchOnly(cmd.Context(), args[0])
		},
	}
	cmd.Flags().StringVar(&flagYtDlpPath, "ytdlp-path", "", "path to yt-dlp binary (default: PATH)")
	return cmd
}

func runSearchOnly(ctx context.Context, query string) error {
	results, err := search.Search(ctx, flagYtDlpPath, query, 20)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-12s %-50s %s\n", r.ID, r.Title, r.Channel)
	}
	return nil
}

func runPlay(ctx context.Context) error {
	env, err := config.Discover()
	if err != nil {
		return err
	}
	if _, err := logging.Init(env.ConfigDir, flagDebug); err != nil {
		return err
	}
	prefs, err := config.Load(env.SettingsFile)
	if err != nil {
		logging.Warn("main: failed to load preferences: %v", err)
	}
	if flagYtDlpPath == "" {
		flagYtDlpPath = prefs.YtDlpPath
	}
	if flagFfmpegPath == "" {
		flagFfmpegPath = prefs.FfmpegPath
	}

	target, err := resolveTarget(ctx, prefs, env)
	if err != nil {
		return err
	}
	if target == "" {
		return nil // user quit the search screen without picking a result
	}

	prefs.LastQuery = flagSearch
	if err := config.Save(env.SettingsFile, prefs); err != nil {
		logging.Warn("main: failed to save preferences: %v", err)
	}

	return playTarget(ctx, target)
}

// resolveTarget figures out what to play: a direct --url/--file, or the
// bubbletea search screen's selection. Returns "" if the user quit the
// search screen with nothing selected.
func resolveTarget(ctx context.Context, prefs config.Preferences, env config.Environment) (string, error) {
	if flagURL != "" {
		return flagURL, nil
	}
	if flagFile != "" {
		return "file:" + flagFile, nil
	}
	if flagSearch != "" {
		results, err := search.Search(ctx, flagYtDlpPath, flagSearch, 1)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "", ytermerr.Unsupported("main.resolveTarget", fmt.Errorf("no results for %q", flagSearch))
		}
		return results[0].URL, nil
	}

	program := tea.NewProgram(tui.New(
		func(ctx context.Context, q string, max int) ([]search.Result, error) {
			return search.Search(ctx, flagYtDlpPath, q, max)
		},
		nil,
	))
	finalModel, err := program.Run()
	if err != nil {
		return "", ytermerr.Device("main.resolveTarget", err)
	}
	m, ok := finalModel.(tui.Model)
	if !ok || m.Selection == nil {
		return "", nil
	}
	return m.Selection.URL, nil
}

// playTarget opens the source pipeline, switches to the alternate screen,
// and runs the demux→playback chain until the stream ends or the user
// interrupts with ctrl-c.
func playTarget(ctx context.Context, target string) error {
	size, err := termsize.Query()
	if err != nil {
		return ytermerr.Device("main.playTarget", err)
	}

	opts := source.Options{YtDlpPath: flagYtDlpPath, FfmpegPath: flagFfmpegPath, Width: 640, Height: 360}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stream *source.Stream
	if len(target) > 5 && target[:5] == "file:" {
		stream, err = source.OpenFile(ctx, target[5:], opts)
	} else {
		stream, err = source.OpenURL(ctx, target, opts)
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	guard, err := screen.Enter(os.Stdout)
	if err != nil {
		return err
	}
	defer guard.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var cancelled atomic.Bool
	go func() {
		<-sigCh
		cancelled.Store(true)
		cancel()
	}()

	videoCh := make(chan pipeline.VideoRawMessage, 4)
	audioCh := make(chan pipeline.AudioRawMessage, 16)

	demuxErrCh := make(chan error, 1)
	go func() {
		demuxErrCh <- demux.Run(stream.Reader, &cancelled, videoCh, audioCh)
	}()

	sink, err := playback.GlobalAudioSink()
	if err != nil {
		logging.Warn("main: audio unavailable, continuing video-only: %v", err)
	}
	var audioAdapter *playback.AudioAdapter
	audioErrCh := make(chan error, 1)
	if sink != nil {
		audioAdapter, err = playback.NewAudioAdapter(sink)
		if err != nil {
			logging.Warn("main: failed to open audio player: %v", err)
		} else {
			defer audioAdapter.Close()
			go func() { audioErrCh <- audioAdapter.Run(audioCh) }()
		}
	}
	if audioAdapter == nil {
		go func() {
			for range audioCh {
			}
			audioErrCh <- nil
		}()
	}

	encodedCh := make(chan pipeline.VideoEncodedMessage, 4)
	go kittyenc.Run(videoCh, encodedCh, size.PixelWidth, size.PixelHeight, size.Cols, size.Rows)

	videoAdapter := playback.NewVideoAdapter(os.Stdout)
	videoErr := videoAdapter.Run(encodedCh)

	if err := <-demuxErrCh; err != nil && !errors.Is(err, ytermerr.ErrCancelled) {
		return err
	}
	<-audioErrCh
	return videoErr
}
