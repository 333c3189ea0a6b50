package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type EditorOptions struct {
	ExpandTabs      *bool  `toml:"expand-tabs"`
	CaseSensitive   *bool  `toml:"case-sensitive"`
	ScratchLanguage string `toml:"scratch-language"`
}

type WatchOptions struct {
	Enabled      *bool    `toml:"enabled"`
	PollInterval Duration `toml:"poll-interval"`
	Buffer       int      `toml:"buffer"`
}

type HistoryOptions struct {
	Limit int `toml:"limit"`
}

type SessionOptions struct {
	Enabled          *bool    `toml:"enabled"`
	AutosaveInterval Duration `toml:"autosave-interval"`
}

type LogOptions struct {
	Debug  bool   `toml:"debug"`
	File   string `toml:"file"`
	Append bool   `toml:"append"`
}

type Config struct {
	Editor  EditorOptions  `toml:"editor"`
	Watch   WatchOptions   `toml:"watch"`
	History HistoryOptions `toml:"history"`
	Session SessionOptions `toml:"session"`
	Log     LogOptions     `toml:"log"`
}

// Duration decodes TOML strings such as "500ms" or "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func boolPtr(v bool) *bool { return &v }

func Default() Config {
	return Config{
		Editor: EditorOptions{
			ExpandTabs:      boolPtr(true),
			CaseSensitive:   boolPtr(false),
			ScratchLanguage: "ruby",
		},
		Watch: WatchOptions{
			Enabled:      boolPtr(true),
			PollInterval: Duration{time.Second},
			Buffer:       16,
		},
		History: HistoryOptions{
			Limit: 1000,
		},
		Session: SessionOptions{
			Enabled:          boolPtr(true),
			AutosaveInterval: Duration{15 * time.Second},
		},
	}
}

func (o EditorOptions) TabsExpanded() bool { return o.ExpandTabs == nil || *o.ExpandTabs }
func (o EditorOptions) SearchCaseSensitive() bool { return o.CaseSensitive != nil && *o.CaseSensitive }
func (o WatchOptions) On() bool { return o.Enabled == nil || *o.Enabled }
func (o SessionOptions) On() bool { return o.Enabled == nil || *o.Enabled }

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	if userCfg.Editor.ExpandTabs != nil {
		cfg.Editor.ExpandTabs = userCfg.Editor.ExpandTabs
	}
	if userCfg.Editor.CaseSensitive != nil {
		cfg.Editor.CaseSensitive = userCfg.Editor.CaseSensitive
	}
	if userCfg.Editor.ScratchLanguage != "" {
		cfg.Editor.ScratchLanguage = userCfg.Editor.ScratchLanguage
	}
	if userCfg.Watch.Enabled != nil {
		cfg.Watch.Enabled = userCfg.Watch.Enabled
	}
	if userCfg.Watch.PollInterval.Duration > 0 {
		cfg.Watch.PollInterval = userCfg.Watch.PollInterval
	}
	if userCfg.Watch.Buffer > 0 {
		cfg.Watch.Buffer = userCfg.Watch.Buffer
	}
	if userCfg.History.Limit > 0 {
		cfg.History.Limit = userCfg.History.Limit
	}
	if userCfg.Session.Enabled != nil {
		cfg.Session.Enabled = userCfg.Session.Enabled
	}
	if userCfg.Session.AutosaveInterval.Duration > 0 {
		cfg.Session.AutosaveInterval = userCfg.Session.AutosaveInterval
	}
	cfg.Log = userCfg.Log

	return cfg, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QBUFFER_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qbuffer"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qbuffer"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
