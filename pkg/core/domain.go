// Package core holds the profile store domain: the persisted Document, its
// Profiles and Versions, and the Service that mutates them.
package core

import (
	"sort"
	"time"
)

// Profile types. The set is open; values outside it are stored as given.
const (
	TypeGeneral   = "general"
	TypeAssistant = "assistant"
	TypeSupport   = "support"
	TypeSales     = "sales"
	TypeCatalog   = "catalog"
	TypeCustom    = "custom"
)

// Tones and languages a version may declare. Advisory only.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneFormal       = "formal"
	ToneCasual       = "casual"
	ToneTechnical    = "technical"

	LanguageSpanish    = "spanish"
	LanguageEnglish    = "english"
	LanguagePortuguese = "portuguese"
)

// Defaults applied to freshly seeded versions.
const (
	DefaultType     = TypeGeneral
	DefaultTone     = ToneProfessional
	DefaultLanguage = LanguageSpanish
	DefaultDocType  = "text"
)

// ValidTypes lists the known profile types.
var ValidTypes = map[string]bool{
	TypeGeneral:   true,
	TypeAssistant: true,
	TypeSupport:   true,
	TypeSales:     true,
	TypeCatalog:   true,
	TypeCustom:    true,
}

// KnownTypes returns the known profile types in ascending order.
func KnownTypes() []string {
	out := make([]string, 0, len(ValidTypes))
	for t := range ValidTypes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Document is the whole persisted state. It is read once and rewritten in
// full on every mutation.
type Document struct {
	Profiles       map[string]*Profile `json:"profiles"`
	ActiveProfiles []ActiveProfileRef  `json:"active_profiles"`
	// ActiveProfile is the legacy single slot. It mirrors the head of
	// ActiveProfiles whenever that list is non-empty.
	ActiveProfile *string          `json:"active_profile"`
	Metadata      DocumentMetadata `json:"metadata"`
}

// DocumentMetadata carries bookkeeping for the whole document.
type DocumentMetadata struct {
	CreatedAt     Timestamp `json:"created_at"`
	LastModified  Timestamp `json:"last_modified"`
	TotalProfiles int       `json:"total_profiles"`
}

// Profile is a named, independently versioned persona configuration.
type Profile struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Type          string           `json:"type"`
	CreatedAt     Timestamp        `json:"created_at"`
	LastModified  Timestamp        `json:"last_modified"`
	ActiveVersion int              `json:"active_version"`
	Versions      map[int]*Version `json:"versions"`
	Tags          []string         `json:"tags"`
}

// Version is one numbered snapshot of a profile's prompt material.
type Version struct {
	Version       int                       `json:"version"`
	CreatedAt     Timestamp                 `json:"created_at"`
	SystemPrompt  string                    `json:"system_prompt"`
	Context       string                    `json:"context"`
	Documents     []DocumentEntry           `json:"documents"`
	KnowledgeBase map[string]KnowledgeEntry `json:"knowledge_base"`
	Instructions  []string                  `json:"instructions"`
	Examples      []string                  `json:"examples"`
	Restrictions  []string                  `json:"restrictions"`
	Tone          string                    `json:"tone"`
	Language      string                    `json:"language"`
}

// DocumentEntry is a reference document attached to a version.
type DocumentEntry struct {
	Name    string    `json:"name"`
	Content string    `json:"content"`
	Type    string    `json:"type"`
	AddedAt Timestamp `json:"added_at"`
}

// KnowledgeEntry is a single knowledge base fact.
type KnowledgeEntry struct {
	Value   string    `json:"value"`
	AddedAt Timestamp `json:"added_at"`
}

// ActiveProfileRef places a profile in the prioritized active set.
// Lower priority numbers take precedence.
type ActiveProfileRef struct {
	Name        string    `json:"name"`
	Priority    int       `json:"priority"`
	ActivatedAt Timestamp `json:"activated_at"`
}

// NewDocument returns an empty document stamped with now.
func NewDocument(now time.Time) *Document {
	return &Document{
		Profiles:       make(map[string]*Profile),
		ActiveProfiles: []ActiveProfileRef{},
		Metadata: DocumentMetadata{
			CreatedAt:    Stamp(now),
			LastModified: Stamp(now),
		},
	}
}

// NewVersion returns a version with every collection empty and the default
// tone and language.
func NewVersion(n int, now time.Time) *Version {
	return &Version{
		Version:       n,
		CreatedAt:     Stamp(now),
		Documents:     []DocumentEntry{},
		KnowledgeBase: map[string]KnowledgeEntry{},
		Instructions:  []string{},
		Examples:      []string{},
		Restrictions:  []string{},
		Tone:          DefaultTone,
		Language:      DefaultLanguage,
	}
}

// normalize fills nil collections left by older or hand-edited files.
func (d *Document) normalize() {
	if d.Profiles == nil {
		d.Profiles = make(map[string]*Profile)
	}
	if d.ActiveProfiles == nil {
		d.ActiveProfiles = []ActiveProfileRef{}
	}
	for name, p := range d.Profiles {
		if p == nil {
			delete(d.Profiles, name)
			continue
		}
		p.normalize()
	}
	d.Metadata.TotalProfiles = len(d.Profiles)
}

func (p *Profile) normalize() {
	if p.Versions == nil {
		p.Versions = make(map[int]*Version)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	for n, v := range p.Versions {
		if v == nil {
			delete(p.Versions, n)
			continue
		}
		v.Version = n
		v.normalize()
	}
}

func (v *Version) normalize() {
	if v.Documents == nil {
		v.Documents = []DocumentEntry{}
	}
	if v.KnowledgeBase == nil {
		v.KnowledgeBase = map[string]KnowledgeEntry{}
	}
	if v.Instructions == nil {
		v.Instructions = []string{}
	}
	if v.Examples == nil {
		v.Examples = []string{}
	}
	if v.Restrictions == nil {
		v.Restrictions = []string{}
	}
}

// syncLegacyActive re-derives the legacy slot from the head of the sorted
// active list. An empty list leaves the slot empty.
func (d *Document) syncLegacyActive() {
	sort.SliceStable(d.ActiveProfiles, func(i, j int) bool {
		return d.ActiveProfiles[i].Priority < d.ActiveProfiles[j].Priority
	})
	if len(d.ActiveProfiles) == 0 {
		d.ActiveProfile = nil
		return
	}
	head := d.ActiveProfiles[0].Name
	d.ActiveProfile = &head
}

func (d *Document) activeIndex(name string) int {
	for i, ref := range d.ActiveProfiles {
		if ref.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Profiles:       make(map[string]*Profile, len(d.Profiles)),
		ActiveProfiles: append([]ActiveProfileRef{}, d.ActiveProfiles...),
		Metadata:       d.Metadata,
	}
	for name, p := range d.Profiles {
		out.Profiles[name] = p.Clone()
	}
	if d.ActiveProfile != nil {
		name := *d.ActiveProfile
		out.ActiveProfile = &name
	}
	return out
}

// Clone returns a deep copy of the profile, versions included.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.Tags = append([]string{}, p.Tags...)
	out.Versions = make(map[int]*Version, len(p.Versions))
	for n, v := range p.Versions {
		out.Versions[n] = v.Clone()
	}
	return &out
}

// Clone returns a deep copy of the version. Edits to the copy never reach
// the original.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	out := *v
	out.Documents = append([]DocumentEntry{}, v.Documents...)
	out.Instructions = append([]string{}, v.Instructions...)
	out.Examples = append([]string{}, v.Examples...)
	out.Restrictions = append([]string{}, v.Restrictions...)
	out.KnowledgeBase = make(map[string]KnowledgeEntry, len(v.KnowledgeBase))
	for k, e := range v.KnowledgeBase {
		out.KnowledgeBase[k] = e
	}
	return &out
}

// VersionNumbers returns the profile's version numbers in ascending order.
func (p *Profile) VersionNumbers() []int {
	nums := make([]int, 0, len(p.Versions))
	for n := range p.Versions {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Active returns the profile's active version, or nil if the pointer is
// dangling.
func (p *Profile) Active() *Version {
	return p.Versions[p.ActiveVersion]
}

// KnowledgeKeys returns the knowledge base keys in ascending order.
func (v *Version) KnowledgeKeys() []string {
	keys := make([]string, 0, len(v.KnowledgeBase))
	for k := range v.KnowledgeBase {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
