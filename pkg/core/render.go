package core

import (
	"fmt"
	"strings"
)

// Labels are the headings and fixed words of the rendered context.
type Labels struct {
	SystemPrompt      string
	AdditionalContext string
	Context           string
	Instructions      string
	Knowledge         string
	Examples          string
	Restrictions      string
	Documents         string
	Tone              string
	Language          string

	// Banner and block headers of the multi-profile rendering.
	ActiveProfiles string
	Profile        string
	Priority       string

	// Tone and language of freshly seeded versions, also used in the
	// footer of a version that has none.
	DefaultTone     string
	DefaultLanguage string
}

// EnglishLabels is the default label set.
var EnglishLabels = Labels{
	SystemPrompt:      "SYSTEM PROMPT",
	AdditionalContext: "ADDITIONAL CONTEXT",
	Context:           "CONTEXT",
	Instructions:      "INSTRUCTIONS",
	Knowledge:         "KNOWLEDGE BASE",
	Examples:          "EXAMPLES",
	Restrictions:      "RESTRICTIONS",
	Documents:         "REFERENCE DOCUMENTS",
	Tone:              "TONE",
	Language:          "LANGUAGE",
	ActiveProfiles:    "ACTIVE PROFILES",
	Profile:           "PROFILE",
	Priority:          "priority",
	DefaultTone:       DefaultTone,
	DefaultLanguage:   DefaultLanguage,
}

// SpanishLabels renders the context the way Spanish-speaking bots built on
// bot_profiles.json expect it.
var SpanishLabels = Labels{
	SystemPrompt:      "SYSTEM PROMPT",
	AdditionalContext: "CONTEXTO ADICIONAL",
	Context:           "CONTEXTO",
	Instructions:      "INSTRUCCIONES",
	Knowledge:         "BASE DE CONOCIMIENTOS",
	Examples:          "EJEMPLOS",
	Restrictions:      "RESTRICCIONES",
	Documents:         "DOCUMENTOS DE REFERENCIA",
	Tone:              "TONO",
	Language:          "IDIOMA",
	ActiveProfiles:    "PERFILES ACTIVOS",
	Profile:           "PERFIL",
	Priority:          "prioridad",
	DefaultTone:       "profesional",
	DefaultLanguage:   "español",
}

// LabelsFor returns the label set of a locale: "en" or "es", or the
// language names. An empty locale is English.
func LabelsFor(locale string) (Labels, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "", "en", "english":
		return EnglishLabels, nil
	case "es", "spanish", "español", "espanol":
		return SpanishLabels, nil
	default:
		return Labels{}, fmt.Errorf("unknown locale %q", locale)
	}
}

// SetLabels changes the labels used by the render methods and the tone and
// language given to new versions.
func (s *Service) SetLabels(l Labels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = l
}

// RenderContext flattens the active version of the legacy active profile
// into the text handed to the prompt builder. It returns "" when no profile
// is active.
func (s *Service) RenderContext() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return renderSingle(s.doc, s.labels)
}

// RenderMultiContext renders every prioritized active profile, highest
// precedence first. Only the first profile's system prompt is labeled as
// such and only its tone and language close the text. With an empty active
// list it is identical to RenderContext.
func (s *Service) RenderMultiContext() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := s.labels
	if len(s.doc.ActiveProfiles) == 0 {
		return renderSingle(s.doc, l)
	}

	type block struct {
		ref ActiveProfileRef
		v   *Version
	}
	var blocks []block
	for _, ref := range s.doc.ActiveProfiles {
		p, ok := s.doc.Profiles[ref.Name]
		if !ok {
			continue
		}
		v := p.Active()
		if v == nil {
			continue
		}
		blocks = append(blocks, block{ref: ref, v: v})
	}
	if len(blocks) == 0 {
		return ""
	}

	var parts []string
	if len(blocks) > 1 {
		parts = append(parts, fmt.Sprintf("%s (%d):", l.ActiveProfiles, len(blocks)))
		for _, b := range blocks {
			parts = append(parts, fmt.Sprintf("- %s (%s %d)", b.ref.Name, l.Priority, b.ref.Priority))
		}
		parts = append(parts, "")
	}

	for i, b := range blocks {
		parts = append(parts, fmt.Sprintf("=== %s: %s (%s %d) ===", l.Profile, b.ref.Name, l.Priority, b.ref.Priority))
		label := l.SystemPrompt
		if i > 0 {
			label = l.AdditionalContext
		}
		parts = appendSections(parts, b.v, label, l)
	}

	return strings.Join(appendFooter(parts, blocks[0].v, l), "\n")
}

func renderSingle(doc *Document, l Labels) string {
	if doc.ActiveProfile == nil {
		return ""
	}
	p, ok := doc.Profiles[*doc.ActiveProfile]
	if !ok {
		return ""
	}
	v := p.Active()
	if v == nil {
		return ""
	}
	parts := appendSections(nil, v, l.SystemPrompt, l)
	return strings.Join(appendFooter(parts, v, l), "\n")
}

// appendSections adds the non-empty sections of v in their fixed order.
func appendSections(parts []string, v *Version, promptLabel string, l Labels) []string {
	if v.SystemPrompt != "" {
		parts = append(parts, fmt.Sprintf("%s:\n%s\n", promptLabel, v.SystemPrompt))
	}
	if v.Context != "" {
		parts = append(parts, fmt.Sprintf("%s:\n%s\n", l.Context, v.Context))
	}
	if len(v.Instructions) > 0 {
		parts = append(parts, l.Instructions+":")
		for i, instruction := range v.Instructions {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, instruction))
		}
		parts = append(parts, "")
	}
	if len(v.KnowledgeBase) > 0 {
		parts = append(parts, l.Knowledge+":")
		for _, key := range v.KnowledgeKeys() {
			parts = append(parts, fmt.Sprintf("• %s: %s", key, v.KnowledgeBase[key].Value))
		}
		parts = append(parts, "")
	}
	parts = appendBullets(parts, l.Examples, v.Examples)
	parts = appendBullets(parts, l.Restrictions, v.Restrictions)
	if len(v.Documents) > 0 {
		parts = append(parts, l.Documents+":")
		for _, d := range v.Documents {
			parts = append(parts, fmt.Sprintf("\n--- %s ---", d.Name))
			parts = append(parts, d.Content)
		}
		parts = append(parts, "")
	}
	return parts
}

func appendBullets(parts []string, label string, items []string) []string {
	if len(items) == 0 {
		return parts
	}
	parts = append(parts, label+":")
	for _, item := range items {
		parts = append(parts, "• "+item)
	}
	return append(parts, "")
}

func appendFooter(parts []string, v *Version, l Labels) []string {
	tone := v.Tone
	if tone == "" {
		tone = l.DefaultTone
	}
	language := v.Language
	if language == "" {
		language = l.DefaultLanguage
	}
	return append(parts,
		fmt.Sprintf("%s: %s", l.Tone, tone),
		fmt.Sprintf("%s: %s", l.Language, language),
	)
}
