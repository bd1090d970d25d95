package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfig_LoadAndSave(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), DefaultFile)
	cfg := Config{
		Source:          "https://example.com/swagger.json",
		Path:            "src/api.ts",
		IncludeTags:     []string{"users"},
		Methods:         []string{"get"},
		UniformOptional: true,
	}
	require.NoError(t, cfg.Save(cfgPath))

	loaded, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestConfig_SaveFormat(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Default().Save(cfgPath))

	content, err := os.ReadFile(cfgPath) //nolint:gosec // test file path
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"source\": \"__REPLACE__\",\n  \"path\": \"lib/types.ts\"\n}\n", string(content))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(content, &raw))
	assert.Len(t, raw, 2)
}

func TestConfig_LoadWeakTypes(t *testing.T) {
	path := write(t, `{"source": "spec.json", "path": "out.ts", "methods": "post", "uniformOptional": "true"}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"post"}, cfg.Methods)
	assert.True(t, cfg.UniformOptional)
}

func TestConfig_LoadYAML(t *testing.T) {
	path := write(t, "source: spec.yaml\npath: out.ts\nexcludeTags: [internal]\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spec.yaml", cfg.Source)
	assert.Equal(t, []string{"internal"}, cfg.ExcludeTags)
}

func TestConfig_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: `{"source": "a", "outDir": "b"}`, wantErr: "outDir"},
		{name: "empty", content: ``, wantErr: "file is empty"},
		{name: "invalid", content: `{"source": [}`, wantErr: "parse config"},
		{name: "wrong type", content: `{"source": {"a": 1}}`, wantErr: "source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Load_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		errText string
	}{
		{name: "valid", cfg: Config{Source: "spec.json", Path: "out.ts"}},
		{name: "default placeholder", cfg: *Default(), wantErr: ErrSourceNotSet},
		{name: "missing source", cfg: Config{Path: "out.ts"}, wantErr: ErrSourceNotSet},
		{name: "missing path", cfg: Config{Source: "spec.json"}, wantErr: ErrPathNotSet},
		{name: "bad method", cfg: Config{Source: "spec.json", Path: "out.ts", Methods: []string{"head"}}, errText: "unsupported method"},
		{name: "method case", cfg: Config{Source: "spec.json", Path: "out.ts", Methods: []string{"GET"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
