package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/langsheet/internal/schema"
	"github.com/jackzampolin/langsheet/internal/segment"
	"github.com/jackzampolin/langsheet/internal/sheet"
)

func bold(text string) sheet.Row  { return sheet.Row{Text: text, Emphasized: true} }
func plain(text string) sheet.Row { return sheet.Row{Text: text} }

func exampleDoc(lang string) *segment.Document {
	return segment.New(lang, []sheet.Row{bold("Title"), plain("Game X"), bold("RTP"), plain("96%")})
}

func TestBuild_Scenario(t *testing.T) {
	m := schema.NewMapping()
	m.Set("RTP", "rtp")
	r := schema.NewRegistry(schema.Options{})

	doc := Build(exampleDoc("en"), m, r, "Game X")

	assert.Equal(t, "Game X", doc.Header)
	assert.Equal(t, schema.DefaultKeys, doc.Keys())

	rtp, ok := doc.Field("rtp")
	require.True(t, ok)
	assert.Equal(t, Pair{Header: "RTP", Content: "96%"}, rtp.Single)

	game, _ := doc.Field("game")
	assert.Equal(t, Pair{}, game.Single)

	features, _ := doc.Field("features")
	assert.True(t, features.Accumulation)
	assert.NotNil(t, features.List)
	assert.Empty(t, features.List)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"header": "Game X",
		"game": {"header": "", "content": ""},
		"rtp": {"header": "RTP", "content": "96%"},
		"description": {"header": "", "content": ""},
		"wins": {"header": "", "content": ""},
		"wild": {"header": "", "content": ""},
		"scatter": {"header": "", "content": ""},
		"features": []
	}`, string(data))
}

func TestBuild_TitleSegmentExcluded(t *testing.T) {
	m := schema.NewMapping()
	m.Set("Title", "game")
	r := schema.NewRegistry(schema.Options{})

	game, _ := Build(exampleDoc("en"), m, r, "").Field("game")
	assert.Equal(t, Pair{}, game.Single)
}

func TestBuild_Accumulation(t *testing.T) {
	doc := segment.New("en", []sheet.Row{
		bold("T"),
		bold("Free Spins"), plain("fs"),
		bold("RTP"), plain("96%"),
		bold("Bonus"), plain("b"),
		bold("Multiplier"), plain("x2"),
	})
	m := schema.NewMapping()
	m.Set("Free Spins", "features")
	m.Set("Bonus", "features")
	m.Set("Multiplier", "features")
	m.Set("RTP", "rtp")
	r := schema.NewRegistry(schema.Options{})

	want := []Pair{
		{Header: "Free Spins", Content: "fs"},
		{Header: "Bonus", Content: "b"},
		{Header: "Multiplier", Content: "x2"},
	}
	f, _ := Build(doc, m, r, "").Field("features")
	assert.Equal(t, want, f.List)

	r.Reorder(6, 0)
	r.Reorder(1, 5)
	f, _ = Build(doc, m, r, "").Field("features")
	assert.Equal(t, want, f.List, "registry order does not affect accumulation order")
}

func TestBuild_LastSingletonWins(t *testing.T) {
	doc := segment.New("en", []sheet.Row{
		bold("T"),
		bold("Wild"), plain("first"),
		bold("Wild"), plain("second"),
	})
	m := schema.NewMapping()
	m.Set("Wild", "wild")

	f, _ := Build(doc, m, schema.NewRegistry(schema.Options{}), "").Field("wild")
	assert.Equal(t, Pair{Header: "Wild", Content: "second"}, f.Single)
}

func TestBuild_RemovedKeyAbsent(t *testing.T) {
	r := schema.NewRegistry(schema.Options{Essential: []string{}})
	m := schema.NewMapping()
	m.Set("RTP", "rtp")

	r.RestoreDefaults()
	require.NoError(t, r.Remove("scatter", nil))
	m.Set("Scatter", "scatter")

	out := Build(exampleDoc("en"), m, r, "")
	_, ok := out.Field("scatter")
	assert.False(t, ok)
	assert.NotContains(t, out.Keys(), "scatter")

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"scatter"`)
}

func TestBuild_Idempotent(t *testing.T) {
	doc := exampleDoc("en")
	m := schema.NewMapping()
	m.Set("RTP", "rtp")
	r := schema.NewRegistry(schema.Options{})

	a, err := json.Marshal(Build(doc, m, r, "G"))
	require.NoError(t, err)
	b, err := json.Marshal(Build(doc, m, r, "G"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestBuild_ReorderChangesOnlyOrder(t *testing.T) {
	doc := exampleDoc("en")
	m := schema.NewMapping()
	m.Set("RTP", "rtp")
	r := schema.NewRegistry(schema.Options{})

	before, _ := json.Marshal(Build(doc, m, r, "G"))
	r.Reorder(1, 5)
	after, _ := json.Marshal(Build(doc, m, r, "G"))

	assert.NotEqual(t, string(before), string(after))
	assert.JSONEq(t, string(before), string(after))
}

func TestBuild_SharedMappingAcrossLanguages(t *testing.T) {
	en := exampleDoc("en")
	fr := segment.New("fr", []sheet.Row{bold("Titre"), plain("Jeu X"), bold("RTP"), plain("96 %")})
	m := schema.NewMapping()
	m.Set("RTP", "rtp")
	r := schema.NewRegistry(schema.Options{})

	enRTP, _ := Build(en, m, r, "G").Field("rtp")
	frRTP, _ := Build(fr, m, r, "G").Field("rtp")
	assert.Equal(t, "96%", enRTP.Single.Content)
	assert.Equal(t, "96 %", frRTP.Single.Content)
}

func TestDocument_JSONKeyOrder(t *testing.T) {
	r := schema.NewRegistry(schema.Options{Defaults: []string{"wild", "features", "rtp"}})
	data, err := json.Marshal(Build(nil, schema.NewMapping(), r, "G"))
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.Index(s, `"header"`) < strings.Index(s, `"wild"`))
	assert.True(t, strings.Index(s, `"wild"`) < strings.Index(s, `"features"`))
	assert.True(t, strings.Index(s, `"features"`) < strings.Index(s, `"rtp"`))
}

func TestDocument_UnmarshalJSON(t *testing.T) {
	m := schema.NewMapping()
	m.Set("RTP", "rtp")
	orig := Build(exampleDoc("en"), m, schema.NewRegistry(schema.Options{}), "Game X")

	data, err := json.MarshalIndent(orig, "", "  ")
	require.NoError(t, err)

	var got Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, orig, &got)

	assert.Error(t, json.Unmarshal([]byte(`[]`), &got))
}

func TestDocument_MarshalYAML(t *testing.T) {
	m := schema.NewMapping()
	m.Set("RTP", "rtp")
	r := schema.NewRegistry(schema.Options{Defaults: []string{"rtp", "features"}})

	data, err := yaml.Marshal(Build(exampleDoc("en"), m, r, "Game X"))
	require.NoError(t, err)

	assert.Equal(t, `header: Game X
rtp:
    header: RTP
    content: 96%
features: []
`, string(data))
}
