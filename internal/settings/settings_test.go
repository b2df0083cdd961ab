package settings_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/flashcard-maker/internal/domain"
	"github.com/phrazzld/flashcard-maker/internal/platform/logger"
	"github.com/phrazzld/flashcard-maker/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestUpdateApply(t *testing.T) {
	t.Parallel()

	configured := domain.Configuration{Provider: "google", Model: "gemini-2.5-flash", APIKey: "k"}

	tests := []struct {
		name    string
		start   domain.Configuration
		update  settings.Update
		want    domain.Configuration
		wantErr error
	}{
		{
			name:   "set provider and model",
			update: settings.Update{Provider: ptr("OpenAI"), Model: ptr("gpt-4.1")},
			want:   domain.Configuration{Provider: "openai", Model: "gpt-4.1"},
		},
		{
			name:   "changing provider clears model",
			start:  configured,
			update: settings.Update{Provider: ptr("openai")},
			want:   domain.Configuration{Provider: "openai", Model: "", APIKey: "k"},
		},
		{
			name:   "same provider keeps model",
			start:  configured,
			update: settings.Update{Provider: ptr("google")},
			want:   configured,
		},
		{
			name:   "api key only",
			start:  configured,
			update: settings.Update{APIKey: ptr("  new-key ")},
			want:   domain.Configuration{Provider: "google", Model: "gemini-2.5-flash", APIKey: "new-key"},
		},
		{
			name:    "unknown provider",
			update:  settings.Update{Provider: ptr("anthropic")},
			wantErr: domain.ErrUnknownProvider,
		},
		{
			name:    "model not offered by provider",
			start:   configured,
			update:  settings.Update{Model: ptr("gpt-4.1")},
			wantErr: domain.ErrUnknownModel,
		},
		{
			name:    "model without provider",
			update:  settings.Update{Model: ptr("gpt-4.1")},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.update.Apply(tc.start)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.start, got, "configuration unchanged on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	log, buf := logger.GetTestLogger(t)
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store, err := settings.NewFileStore(path, log)
	require.NoError(t, err)

	ctx := context.Background()

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Configuration{}, cfg)
	assert.ErrorIs(t, cfg.Validate(), domain.ErrNotConfigured)

	saved, err := store.Save(ctx, settings.Update{
		Provider: ptr("google"),
		Model:    ptr("gemini-2.5-pro"),
		APIKey:   ptr("secret-key-value"),
	})
	require.NoError(t, err)
	assert.NoError(t, saved.Validate())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.NotContains(t, buf.String(), "secret-key-value")
	logger.AssertLogContains(t, buf, `"api_key_set":true`)
}

func TestFileStoreRejectsInvalidUpdate(t *testing.T) {
	t.Parallel()

	store, err := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"), nil)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), settings.Update{Provider: ptr("google"), Model: ptr("gemini-2.5-flash")})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), settings.Update{Model: ptr("gpt-o3")})
	assert.ErrorIs(t, err, domain.ErrUnknownModel)

	cfg, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
}

func TestFileStoreCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unterminated"), 0o600))

	store, err := settings.NewFileStore(path, nil)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := settings.NewFileStore(" ", nil)
	assert.Error(t, err)
}
