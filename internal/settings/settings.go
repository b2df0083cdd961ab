// Package settings stores the user's provider selection: provider, model and
// API key. The coordinator only reads it; the local API writes it.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/spf13/viper"
)

const (
	keyProvider = "provider"
	keyModel    = "model"
	keyAPIKey   = "api_key"
)

// Reader gives read-only access to the current configuration.
type Reader interface {
	Load(ctx context.Context) (domain.Configuration, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context) (domain.Configuration, error)

// Load calls f.
func (f ReaderFunc) Load(ctx context.Context) (domain.Configuration, error) {
	return f(ctx)
}

// Update is a partial change. Nil fields are left as they are.
type Update struct {
	Provider *string `json:"provider,omitempty"`
	Model    *string `json:"model,omitempty"`
	APIKey   *string `json:"api_key,omitempty"`
}

// Apply returns cfg with u applied. Choosing a different provider clears the
// model unless u also names one. A non-empty provider must be in the
// catalogue and a non-empty model must be offered by the resulting provider.
func (u Update) Apply(cfg domain.Configuration) (domain.Configuration, error) {
	next := cfg

	if u.Provider != nil {
		name := strings.TrimSpace(*u.Provider)
		if name == "" {
			next.Provider = ""
		} else {
			p, err := domain.ParseProvider(name)
			if err != nil {
				return cfg, fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			next.Provider = string(p)
		}
		if next.Provider != cfg.Provider {
			next.Model = ""
		}
	}

	if u.Model != nil {
		next.Model = strings.TrimSpace(*u.Model)
	}

	if u.APIKey != nil {
		next.APIKey = strings.TrimSpace(*u.APIKey)
	}

	if next.Model != "" {
		if next.Provider == "" {
			return cfg, fmt.Errorf("%w: choose a provider before a model", domain.ErrValidation)
		}
		if !domain.Provider(next.Provider).Offers(next.Model) {
			return cfg, fmt.Errorf("%w: %w: %q for %s", domain.ErrValidation, domain.ErrUnknownModel,
				next.Model, next.Provider)
		}
	}

	return next, nil
}

// FileStore keeps the configuration in a YAML file.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

var _ Reader = (*FileStore)(nil)

// NewFileStore creates a store backed by path. The file need not exist yet.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger.With("component", "settings")}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the file. A missing file yields an empty configuration.
func (s *FileStore) Load(ctx context.Context) (domain.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Save applies u and writes the result.
func (s *FileStore) Save(ctx context.Context, u Update) (domain.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return domain.Configuration{}, err
	}

	next, err := u.Apply(current)
	if err != nil {
		return current, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigPermissions(0o600)
	v.Set(keyProvider, next.Provider)
	v.Set(keyModel, next.Model)
	v.Set(keyAPIKey, next.APIKey)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return current, fmt.Errorf("create settings directory: %w", err)
		}
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return current, fmt.Errorf("write settings: %w", err)
	}

	s.logger.InfoContext(ctx, "settings saved",
		"provider", next.Provider,
		"model", next.Model,
		"api_key_set", next.APIKey != "")
	return next, nil
}

func (s *FileStore) loadLocked(ctx context.Context) (domain.Configuration, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.DebugContext(ctx, "settings file not found, using empty settings", "path", s.path)
			return domain.Configuration{}, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return domain.Configuration{}, nil
		}
		return domain.Configuration{}, fmt.Errorf("read settings: %w", err)
	}

	return domain.Configuration{
		Provider: v.GetString(keyProvider),
		Model:    v.GetString(keyModel),
		APIKey:   v.GetString(keyAPIKey),
	}, nil
}
