package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/personakit/personakit/pkg/core"
)

// Delimiters of the flattened multi-value fields.
const (
	ListSep    = "|"  // instructions, restrictions, tags, knowledge pairs
	ExampleSep = "||" // examples and documents, whose prose may contain "|"
	PairSep    = "="  // knowledge key=value
	DocSep     = "::" // document name::content
)

// Column names, in the order both CSV layouts write them.
const (
	colName          = "name"
	colDescription   = "description"
	colType          = "type"
	colTags          = "tags"
	colActiveVersion = "active_version"
	colSystemPrompt  = "system_prompt"
	colContext       = "context"
	colInstructions  = "instructions"
	colExamples      = "examples"
	colRestrictions  = "restrictions"
	colKnowledge     = "knowledge_base"
	colDocuments     = "documents"
	colTone          = "tone"
	colLanguage      = "language"
)

// ProfilesHeader is the fixed header of the all-profiles CSV.
var ProfilesHeader = []string{
	colName, colDescription, colType, colTags, colActiveVersion,
	colSystemPrompt, colContext, colInstructions, colExamples, colRestrictions,
	colKnowledge, colDocuments, colTone, colLanguage,
}

// singleFields are the rows of the single-profile CSV.
var singleFields = []string{
	colName, colDescription, colType, colTags,
	colSystemPrompt, colContext, colInstructions, colExamples, colRestrictions,
	colKnowledge, colDocuments, colTone, colLanguage,
}

// WriteProfileCSV flattens the active version of p into field,value rows.
func WriteProfileCSV(w io.Writer, p *core.Profile, opts Options) error {
	values, err := encodeProfile(p, opts)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"field", "value"}); err != nil {
		return err
	}
	for _, field := range singleFields {
		if err := cw.Write([]string{field, values[field]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProfileCSV rebuilds a single-version profile from field,value rows.
// Unknown fields are ignored.
func ReadProfileCSV(r io.Reader) (*core.Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid profile csv: %w", err)
	}

	values := make(map[string]string)
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(rec[0]))
		if i == 0 && key == "field" {
			continue
		}
		values[key] = rec[1]
	}
	return decodeProfile(values, time.Now())
}

// ImportProfileCSV reads a single-profile CSV and stores the profile.
func ImportProfileCSV(ctx context.Context, store Store, r io.Reader) (string, bool) {
	p, err := ReadProfileCSV(r)
	if err != nil {
		store.Logger().Warn("csv import failed", "error", err)
		return "", false
	}
	return insert(ctx, store, p, "csv")
}

// WriteProfilesCSV writes one row per profile with its active version.
// Profiles whose active version is missing are skipped.
func WriteProfilesCSV(w io.Writer, profiles []*core.Profile, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProfilesHeader); err != nil {
		return err
	}
	for _, p := range profiles {
		values, err := encodeProfile(p, opts)
		if errors.Is(err, errNoActiveVersion) {
			opts.logger().Warn("profile skipped in csv export", "profile", p.Name, "error", err)
			continue
		}
		if err != nil {
			return err
		}
		row := make([]string, len(ProfilesHeader))
		for i, col := range ProfilesHeader {
			row[i] = values[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProfilesCSV parses a file written by WriteProfilesCSV. Columns are
// matched by header name, so reordered or partial sheets still load.
func ReadProfilesCSV(r io.Reader) ([]*core.Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid profiles csv: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index[colName]; !ok {
		return nil, errors.New("invalid profiles csv: no name column")
	}

	now := time.Now()
	var out []*core.Profile
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("invalid profiles csv line %d: %w", line, err)
		}
		values := make(map[string]string, len(index))
		for col, i := range index {
			if i < len(rec) {
				values[col] = rec[i]
			}
		}
		p, err := decodeProfile(values, now)
		if err != nil {
			return out, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ImportProfilesCSV stores every profile of an all-profiles CSV and returns
// the stored names.
func ImportProfilesCSV(ctx context.Context, store Store, r io.Reader) []string {
	profiles, err := ReadProfilesCSV(r)
	if err != nil {
		store.Logger().Warn("csv import failed", "error", err, "parsed", len(profiles))
	}
	var names []string
	for _, p := range profiles {
		if name, ok := insert(ctx, store, p, "csv"); ok {
			names = append(names, name)
		}
	}
	return names
}

var errNoActiveVersion = errors.New("active version missing")

// encodeProfile flattens p's active version into column values.
func encodeProfile(p *core.Profile, opts Options) (map[string]string, error) {
	v := p.Active()
	if v == nil {
		return nil, fmt.Errorf("%w: profile %q", errNoActiveVersion, p.Name)
	}
	enc := &encoder{opts: opts, profile: p.Name}

	values := map[string]string{
		colName:          p.Name,
		colDescription:   p.Description,
		colType:          p.Type,
		colTags:          enc.list(colTags, p.Tags),
		colActiveVersion: strconv.Itoa(p.ActiveVersion),
		colSystemPrompt:  v.SystemPrompt,
		colContext:       v.Context,
		colInstructions:  enc.list(colInstructions, v.Instructions),
		colExamples:      enc.examples(v.Examples),
		colRestrictions:  enc.list(colRestrictions, v.Restrictions),
		colKnowledge:     enc.knowledge(v),
		colDocuments:     enc.documents(v.Documents),
		colTone:          v.Tone,
		colLanguage:      v.Language,
	}
	if enc.err != nil {
		return nil, enc.err
	}
	return values, nil
}

// encoder joins multi-value fields and checks them for delimiter
// collisions. The first strict failure sticks in err.
type encoder struct {
	opts    Options
	profile string
	err     error
}

func (e *encoder) collide(field, value, delim string) {
	if e.opts.Strict {
		if e.err == nil {
			e.err = fmt.Errorf("%w: profile %q field %s contains %q", ErrDelimiterCollision, e.profile, field, delim)
		}
		return
	}
	e.opts.logger().Warn("csv value contains delimiter, round trip will split it",
		"profile", e.profile, "field", field, "delimiter", delim, "value", value)
}

func (e *encoder) list(field string, items []string) string {
	for _, item := range items {
		if strings.Contains(item, ListSep) {
			e.collide(field, item, ListSep)
		}
	}
	return strings.Join(items, ListSep)
}

func (e *encoder) examples(items []string) string {
	for _, item := range items {
		if strings.Contains(item, ExampleSep) || strings.HasPrefix(item, ListSep) || strings.HasSuffix(item, ListSep) {
			e.collide(colExamples, item, ExampleSep)
		}
	}
	return strings.Join(items, ExampleSep)
}

func (e *encoder) knowledge(v *core.Version) string {
	pairs := make([]string, 0, len(v.KnowledgeBase))
	for _, key := range v.KnowledgeKeys() {
		value := v.KnowledgeBase[key].Value
		if strings.Contains(key, ListSep) {
			e.collide(colKnowledge, key, ListSep)
		}
		if strings.Contains(key, PairSep) {
			e.collide(colKnowledge, key, PairSep)
		}
		if strings.Contains(value, ListSep) {
			e.collide(colKnowledge, value, ListSep)
		}
		pairs = append(pairs, key+PairSep+value)
	}
	return strings.Join(pairs, ListSep)
}

func (e *encoder) documents(docs []core.DocumentEntry) string {
	pairs := make([]string, 0, len(docs))
	for _, d := range docs {
		if strings.Contains(d.Name, DocSep) {
			e.collide(colDocuments, d.Name, DocSep)
		}
		if strings.Contains(d.Name, ListSep) {
			e.collide(colDocuments, d.Name, ListSep)
		}
		if strings.Contains(d.Content, ExampleSep) || strings.HasSuffix(d.Content, ListSep) {
			e.collide(colDocuments, d.Name, ExampleSep)
		}
		pairs = append(pairs, d.Name+DocSep+d.Content)
	}
	return strings.Join(pairs, ExampleSep)
}

// decodeProfile reverses encodeProfile into a profile with one version.
func decodeProfile(values map[string]string, now time.Time) (*core.Profile, error) {
	name := strings.TrimSpace(values[colName])
	if name == "" {
		return nil, errors.New("profile has no name")
	}

	n := 1
	if raw := strings.TrimSpace(values[colActiveVersion]); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}

	v := core.NewVersion(n, now)
	v.SystemPrompt = values[colSystemPrompt]
	v.Context = values[colContext]
	v.Instructions = splitNonEmpty(values[colInstructions], ListSep)
	v.Examples = splitNonEmpty(values[colExamples], ExampleSep)
	v.Restrictions = splitNonEmpty(values[colRestrictions], ListSep)
	for _, pair := range splitNonEmpty(values[colKnowledge], ListSep) {
		key, value, ok := strings.Cut(pair, PairSep)
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		v.KnowledgeBase[key] = core.KnowledgeEntry{Value: value, AddedAt: core.Stamp(now)}
	}
	for _, pair := range splitNonEmpty(values[colDocuments], ExampleSep) {
		docName, content, ok := strings.Cut(pair, DocSep)
		if !ok {
			continue
		}
		v.Documents = append(v.Documents, core.DocumentEntry{
			Name:    docName,
			Content: content,
			Type:    core.DefaultDocType,
			AddedAt: core.Stamp(now),
		})
	}
	if tone := strings.TrimSpace(values[colTone]); tone != "" {
		v.Tone = tone
	}
	if language := strings.TrimSpace(values[colLanguage]); language != "" {
		v.Language = language
	}

	ptype := strings.TrimSpace(values[colType])
	if ptype == "" {
		ptype = core.DefaultType
	}
	return &core.Profile{
		Name:          name,
		Description:   values[colDescription],
		Type:          ptype,
		CreatedAt:     core.Stamp(now),
		LastModified:  core.Stamp(now),
		ActiveVersion: n,
		Versions:      map[int]*core.Version{n: v},
		Tags:          splitNonEmpty(values[colTags], ListSep),
	}, nil
}

// splitNonEmpty splits s on sep and drops blank entries.
func splitNonEmpty(s, sep string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, sep) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}
