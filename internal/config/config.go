package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"todo/internal/task"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultEnvFileName    = ".env"
	DefaultLogLevel       = "info"
	DefaultHistorySize    = 8

	EnvConfigPath  = "TODO_CONFIG"
	EnvJournalPath = "TODO_JOURNAL_PATH"
	EnvLogPath     = "TODO_LOG_PATH"
	EnvLogLevel    = "TODO_LOG_LEVEL"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Select         string `toml:"select"`
	ClearSelection string `toml:"clear_selection"`
	Complete       string `toml:"complete"`
	Delete         string `toml:"delete"`
	Detail         string `toml:"detail"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	Edit           string `toml:"edit"`
	PriorityUp     string `toml:"priority_up"`
	PriorityDown   string `toml:"priority_down"`
	DueForward     string `toml:"due_forward"`
	DueBack        string `toml:"due_back"`
	History        string `toml:"history"`
}

type Config struct {
	// JournalPath is the SQLite action journal. Empty keeps it in memory.
	JournalPath     string        `toml:"journal_path"`
	LogPath         string        `toml:"log_path"`
	LogLevel        string        `toml:"log_level"`
	DefaultPriority task.Priority `toml:"default_priority"`
	HistorySize     int           `toml:"history_size"`
	Keys            Keymap        `toml:"keys"`
}

// ResolveConfigPath returns $TODO_CONFIG or config.toml under the user
// config directory, falling back to the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "todo", DefaultConfigFileName)
}

// LoadOrCreate reads the TOML config at path, writing the defaults there on
// first launch. Values from a .env beside the file and from the process
// environment override the file.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	fileEnv, err := readEnvFile(filepath.Join(filepath.Dir(path), DefaultEnvFileName))
	if err != nil {
		return cfg, err
	}
	cfg.JournalPath = coalesce(os.Getenv(EnvJournalPath), fileEnv[EnvJournalPath], cfg.JournalPath)
	cfg.LogPath = coalesce(os.Getenv(EnvLogPath), fileEnv[EnvLogPath], cfg.LogPath)
	cfg.LogLevel = coalesce(os.Getenv(EnvLogLevel), fileEnv[EnvLogLevel], cfg.LogLevel, DefaultLogLevel)
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	cfg.Keys = cfg.Keys.withDefaults()
	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration with paths relative to the
// working directory.
func Default() Config {
	return defaultConfig(".")
}

func defaultConfig(dir string) Config {
	return Config{
		LogPath:         filepath.Join(dir, "todo.log"),
		LogLevel:        DefaultLogLevel,
		DefaultPriority: task.Medium,
		HistorySize:     DefaultHistorySize,
		Keys:            defaultKeymap(),
	}
}

func defaultKeymap() Keymap {
	return Keymap{
		Quit:           "q",
		Add:            "a",
		Up:             "k",
		Down:           "j",
		Select:         " ",
		ClearSelection: "u",
		Complete:       "x",
		Delete:         "d",
		Detail:         "i",
		Confirm:        "enter",
		Cancel:         "esc",
		Edit:           "e",
		PriorityUp:     "+",
		PriorityDown:   "-",
		DueForward:     "]",
		DueBack:        "[",
		History:        "H",
	}
}

// withDefaults fills bindings left blank in an older config file.
func (k Keymap) withDefaults() Keymap {
	d := defaultKeymap()
	k.Quit = coalesce(k.Quit, d.Quit)
	k.Add = coalesce(k.Add, d.Add)
	k.Up = coalesce(k.Up, d.Up)
	k.Down = coalesce(k.Down, d.Down)
	k.Select = coalesce(k.Select, d.Select)
	k.ClearSelection = coalesce(k.ClearSelection, d.ClearSelection)
	k.Complete = coalesce(k.Complete, d.Complete)
	k.Delete = coalesce(k.Delete, d.Delete)
	k.Detail = coalesce(k.Detail, d.Detail)
	k.Confirm = coalesce(k.Confirm, d.Confirm)
	k.Cancel = coalesce(k.Cancel, d.Cancel)
	k.Edit = coalesce(k.Edit, d.Edit)
	k.PriorityUp = coalesce(k.PriorityUp, d.PriorityUp)
	k.PriorityDown = coalesce(k.PriorityDown, d.PriorityDown)
	k.DueForward = coalesce(k.DueForward, d.DueForward)
	k.DueBack = coalesce(k.DueBack, d.DueBack)
	k.History = coalesce(k.History, d.History)
	return k
}

func coalesce(args ...string) string {
	for _, s := range args {
		if s != "" {
			return s
		}
	}
	return ""
}
