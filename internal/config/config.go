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

// Package config manages the small persisted preference file this player
// keeps in the user's XDG config directory: last search query, preferred
// output size, volume and the yt-dlp/ffmpeg binary overrides. It is a
// direct descendant of the teacher's settings.yml loader, trimmed from a
// multi-camera list down to a single preferences block and re-pointed at a
// new config directory name.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v2"
)

const appName = "yt-term"

// Environment mirrors the teacher's Environment struct: the set of
// directories/paths the app needs, resolved once at startup.
type Environment struct {
	ConfigDir    string
	SettingsFile string
	HomeDir      string
	AppPath      string
	TmpDir       string
	DebugLog     string
	OS           string
}

// Preferences is the persisted YAML document.
type Preferences struct {
	LastQuery      string `yaml:"last_query,omitempty"`
	OutputWidth    int    `yaml:"output_width,omitempty"`
	OutputHeight   int    `yaml:"output_height,omitempty"`
	Volume         int    `yaml:"volume,omitempty"` // 0..100
	YtDlpPath      string `yaml:"ytdlp_path,omitempty"`
	FfmpegPath     string `yaml:"ffmpeg_path,omitempty"`
	PreferredCodec string `yaml:"preferred_codec,omitempty"`
}

var (
	mu  sync.Mutex
	env Environment
)

// Discover resolves the Environment (config dir, settings path, etc) the
// way the teacher's InitializeEnvironment did, without touching disk.
func Discover() (Environment, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Environment{}, err
	}
	configDir := filepath.Join(home, ".config", appName)
	e := Environment{
		ConfigDir:    configDir,
		SettingsFile: filepath.Join(configDir, "settings.yml"),
		HomeDir:      home,
		AppPath:      appPath(),
		TmpDir:       os.TempDir(),
		DebugLog:     filepath.Join(configDir, "debug.log"),
		OS:           runtime.GOOS,
	}
	mu.Lock()
	env = e
	mu.Unlock()
	return e, nil
}

func appPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	realPath, err := filepath.EvalSymlinks(exePath)
	if err != nil {
		return ""
	}
	return filepath.Dir(realPath)
}

// Load reads Preferences from path, returning zero-value Preferences (not
// an error) when the file does not yet exist.
func Load(path string) (Preferences, error) {
	var p Preferences
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, err
	}
	return p, nil
}

// Save writes Preferences to path using the same write-to-tmp-then-rename
// pattern as the teacher's SaveConfig, so a crash mid-write never corrupts
// the previous settings file.
func Save(path string, p Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(&p); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
