package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Accept(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"en.xlsx", true},
		{"EN.XLSX", true},
		{"dir/fr.xlsx", true},
		{"~$en.xlsx", false},
		{"en.xls", false},
		{"notes.txt", false},
		{"xlsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultFilter.Accept(tt.name))
		})
	}
}

func TestLanguageOf(t *testing.T) {
	assert.Equal(t, "en", LanguageOf("/tmp/en.xlsx"))
	assert.Equal(t, "pt-BR", LanguageOf("pt-BR.xlsx"))
	assert.Equal(t, "zh.hans", LanguageOf("zh.hans.xlsx"))
}

func TestFilter_Discover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"fr.xlsx", "en.xlsx", "~$en.xlsx", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xlsx"), 0o755))

	sources, err := DefaultFilter.Discover([]string{dir})
	require.NoError(t, err)

	assert.Equal(t, []Source{
		{Lang: "en", Path: filepath.Join(dir, "en.xlsx")},
		{Lang: "fr", Path: filepath.Join(dir, "fr.xlsx")},
	}, sources)
}

func TestFilter_DiscoverKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	fr := filepath.Join(dir, "fr.xlsx")
	en := filepath.Join(dir, "en.xlsx")
	require.NoError(t, os.WriteFile(fr, nil, 0o644))
	require.NoError(t, os.WriteFile(en, nil, 0o644))

	sources, err := DefaultFilter.Discover([]string{fr, en})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "fr", sources[0].Lang)
	assert.Equal(t, "en", sources[1].Lang)
}

func TestFilter_DiscoverMissing(t *testing.T) {
	_, err := DefaultFilter.Discover([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
