package exchange_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/personakit/personakit/pkg/core"
	"github.com/personakit/personakit/pkg/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zeroTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCSVExampleScenario(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.CreateProfile(ctx, "Sales", "", core.TypeSales)
	require.NoError(t, err)
	_, err = store.AddKnowledge(ctx, "Sales", 1, "hours", "9-6")
	require.NoError(t, err)
	_, err = store.AddDocument(ctx, "Sales", 1, "FAQ", "Ask about returns", "")
	require.NoError(t, err)

	p, _ := store.Profile("Sales")
	var buf bytes.Buffer
	require.NoError(t, exchange.WriteProfileCSV(&buf, p, exchange.Options{}))

	name, ok := exchange.ImportProfileCSV(ctx, store, &buf)
	require.True(t, ok)
	assert.Equal(t, "Sales_1", name)

	v, ok := store.Version(name, 1)
	require.True(t, ok)
	require.Contains(t, v.KnowledgeBase, "hours")
	assert.Equal(t, "9-6", v.KnowledgeBase["hours"].Value)
	require.Len(t, v.Documents, 1)
	assert.Equal(t, "FAQ", v.Documents[0].Name)
	assert.Equal(t, "Ask about returns", v.Documents[0].Content)
}

func TestCSVRoundTrip(t *testing.T) {
	cases := map[string]*core.Version{
		"Empty": {},
		"Prose With Single Pipes In Examples": {
			Instructions: []string{"Greet the customer", "Offer help"},
			Examples:     []string{"Q: size? | A: 42", "Thanks!"},
			Restrictions: []string{"No discounts"},
			KnowledgeBase: map[string]core.KnowledgeEntry{
				"hours":   {Value: "9-6"},
				"address": {Value: "Main St. 1, Lima"},
			},
			Documents: []core.DocumentEntry{
				{Name: "FAQ", Content: "Returns: 30 days.\nShipping: 2 days."},
				{Name: "Policy", Content: "key=value is fine here"},
			},
		},
		"Multi Line Text": {
			SystemPrompt: "Line one,\n\"quoted\" line two",
			Context:      "a, b, c",
			Instructions: []string{"one, with comma"},
		},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			v := core.NewVersion(1, in.CreatedAt.Time)
			v.SystemPrompt = in.SystemPrompt
			v.Context = in.Context
			v.Instructions = append(v.Instructions, in.Instructions...)
			v.Examples = append(v.Examples, in.Examples...)
			v.Restrictions = append(v.Restrictions, in.Restrictions...)
			for k, e := range in.KnowledgeBase {
				v.KnowledgeBase[k] = e
			}
			v.Documents = append(v.Documents, in.Documents...)

			p := &core.Profile{
				Name:          "P",
				Type:          core.TypeSupport,
				ActiveVersion: 1,
				Versions:      map[int]*core.Version{1: v},
				Tags:          []string{"a", "b"},
			}

			var buf bytes.Buffer
			require.NoError(t, exchange.WriteProfileCSV(&buf, p, exchange.Options{Strict: true}))

			got, err := exchange.ReadProfileCSV(&buf)
			require.NoError(t, err)
			gv := got.Versions[1]
			require.NotNil(t, gv)

			assert.Equal(t, "P", got.Name)
			assert.Equal(t, core.TypeSupport, got.Type)
			assert.Equal(t, []string{"a", "b"}, got.Tags)
			assert.Equal(t, v.SystemPrompt, gv.SystemPrompt)
			assert.Equal(t, v.Context, gv.Context)
			assert.Equal(t, v.Instructions, gv.Instructions)
			assert.Equal(t, v.Examples, gv.Examples)
			assert.Equal(t, v.Restrictions, gv.Restrictions)
			assert.Equal(t, v.KnowledgeKeys(), gv.KnowledgeKeys())
			for k, e := range v.KnowledgeBase {
				assert.Equal(t, e.Value, gv.KnowledgeBase[k].Value)
			}
			require.Len(t, gv.Documents, len(v.Documents))
			for i, d := range v.Documents {
				assert.Equal(t, d.Name, gv.Documents[i].Name)
				assert.Equal(t, d.Content, gv.Documents[i].Content)
			}
			assert.Equal(t, v.Tone, gv.Tone)
			assert.Equal(t, v.Language, gv.Language)
		})
	}
}

func TestCSVRowLayout(t *testing.T) {
	v := core.NewVersion(1, zeroTime)
	v.Instructions = []string{"a", "b"}
	v.Examples = []string{"x", "y"}
	v.KnowledgeBase["k2"] = core.KnowledgeEntry{Value: "v2"}
	v.KnowledgeBase["k1"] = core.KnowledgeEntry{Value: "v1"}
	v.Documents = []core.DocumentEntry{{Name: "D1", Content: "c1"}, {Name: "D2", Content: "c2"}}
	p := &core.Profile{Name: "P", ActiveVersion: 1, Versions: map[int]*core.Version{1: v}}

	var buf bytes.Buffer
	require.NoError(t, exchange.WriteProfileCSV(&buf, p, exchange.Options{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	rows := make(map[string]string)
	for _, rec := range records {
		rows[rec[0]] = rec[1]
	}
	assert.Equal(t, "value", rows["field"])
	assert.Equal(t, "a|b", rows["instructions"])
	assert.Equal(t, "x||y", rows["examples"])
	assert.Equal(t, "k1=v1|k2=v2", rows["knowledge_base"])
	assert.Equal(t, "D1::c1||D2::c2", rows["documents"])
}

func TestCSVDiscardsEmptyEntries(t *testing.T) {
	input := "field,value\nname,P\ninstructions,a||b| \nknowledge_base,|k=v||junk|\ndocuments,||D::c||nodelimiter\n"

	p, err := exchange.ReadProfileCSV(strings.NewReader(input))
	require.NoError(t, err)

	v := p.Versions[1]
	assert.Equal(t, []string{"a", "b"}, v.Instructions)
	assert.Equal(t, []string{"k"}, v.KnowledgeKeys())
	require.Len(t, v.Documents, 1)
	assert.Equal(t, "D", v.Documents[0].Name)
	assert.Equal(t, 1, p.ActiveVersion)
}

func TestCSVDelimiterCollision(t *testing.T) {
	collide := func() *core.Profile {
		v := core.NewVersion(1, zeroTime)
		v.Instructions = []string{"choose a|b"}
		return &core.Profile{Name: "P", ActiveVersion: 1, Versions: map[int]*core.Version{1: v}}
	}

	t.Run("Strict Rejects", func(t *testing.T) {
		var buf bytes.Buffer
		err := exchange.WriteProfileCSV(&buf, collide(), exchange.Options{Strict: true})
		assert.ErrorIs(t, err, exchange.ErrDelimiterCollision)
	})

	t.Run("Lenient Writes As Is", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, exchange.WriteProfileCSV(&buf, collide(), exchange.Options{}))

		got, err := exchange.ReadProfileCSV(&buf)
		require.NoError(t, err)
		assert.Equal(t, []string{"choose a", "b"}, got.Versions[1].Instructions)
	})

	t.Run("Knowledge Keys With Equals", func(t *testing.T) {
		v := core.NewVersion(1, zeroTime)
		v.KnowledgeBase["a=b"] = core.KnowledgeEntry{Value: "c"}
		p := &core.Profile{Name: "P", ActiveVersion: 1, Versions: map[int]*core.Version{1: v}}

		var buf bytes.Buffer
		err := exchange.WriteProfileCSV(&buf, p, exchange.Options{Strict: true})
		assert.ErrorIs(t, err, exchange.ErrDelimiterCollision)
	})
}

func TestCSVRequiresName(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	name, ok := exchange.ImportProfileCSV(ctx, store, strings.NewReader("field,value\ndescription,orphan\n"))
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestProfilesCSV(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, _ = store.CreateProfile(ctx, "A", "first", core.TypeSales)
	_, _ = store.CreateProfile(ctx, "B", "second", core.TypeSupport)
	_, _ = store.UpdateVersionContent(ctx, "A", 1, map[string]any{"restrictions": []string{"r1", "r2"}})
	n, _ := store.CreateVersion(ctx, "B", 0)
	_, _ = store.UpdateVersionContent(ctx, "B", n, map[string]any{"system_prompt": "v2 prompt"})
	_, _ = store.ActivateVersion(ctx, "B", n)

	var buf bytes.Buffer
	require.NoError(t, exchange.WriteProfilesCSV(&buf, store.Profiles(), exchange.Options{}))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exchange.ProfilesHeader, records[0])
	assert.Equal(t, "A", records[1][0])
	assert.Equal(t, "B", records[2][0])

	profiles, err := exchange.ReadProfilesCSV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, []string{"r1", "r2"}, profiles[0].Versions[1].Restrictions)
	assert.Equal(t, 2, profiles[1].ActiveVersion)
	assert.Equal(t, "v2 prompt", profiles[1].Versions[2].SystemPrompt)

	names := exchange.ImportProfilesCSV(ctx, store, bytes.NewReader(buf.Bytes()))
	assert.Equal(t, []string{"A_1", "B_1"}, names)

	b1, _ := store.Profile("B_1")
	assert.Equal(t, []int{2}, b1.VersionNumbers())
	assert.Equal(t, 2, b1.ActiveVersion)
}
