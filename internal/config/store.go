package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"rmd-knitter/internal/domain"
)

// MaxFileSize limits settings input read from disk.
const MaxFileSize = 1 << 20

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// settingsDocument is the on-disk shape. Absent paths are written as null.
type settingsDocument struct {
	Paths pathsDocument `yaml:"paths"`
}

type pathsDocument struct {
	Converter    *string `yaml:"converter"`
	ScriptEngine *string `yaml:"script_engine"`
}

// YAMLStore persists settings in a single YAML file on disk.
type YAMLStore struct {
	path string
}

// NewYAMLStore creates a YAML-backed settings store.
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// Path returns the settings file location.
func (s *YAMLStore) Path() string {
	return s.path
}

// Load reads settings from disk. A missing file yields an error matching fs.ErrNotExist.
func (s *YAMLStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Settings{}, err
	}
	if len(data) > MaxFileSize {
		return domain.Settings{}, fmt.Errorf("settings file %s exceeds %d bytes", s.path, MaxFileSize)
	}
	if strings.TrimSpace(string(data)) == "" {
		return DefaultSettings(), nil
	}

	var doc settingsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Settings{}, fmt.Errorf("parse settings %s: %w", s.path, err)
	}

	return domain.Settings{
		Paths: domain.ResolvedPaths{
			Converter:    deref(doc.Paths.Converter),
			ScriptEngine: deref(doc.Paths.ScriptEngine),
		},
	}, nil
}

// Save writes settings wholesale and creates parent directories.
func (s *YAMLStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// Encode renders settings in their on-disk YAML form.
func Encode(cfg domain.Settings) ([]byte, error) {
	doc := settingsDocument{
		Paths: pathsDocument{
			Converter:    ref(cfg.Paths.Converter),
			ScriptEngine: ref(cfg.Paths.ScriptEngine),
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// IsNotExist reports whether err means the settings file has not been written yet.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func ref(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
