package studio

import (
	"time"

	"github.com/Mas3oood/Bovali/internal/i18n"
	"github.com/Mas3oood/Bovali/internal/prompt"
)

// SlotSnapshot describes an occupied upload slot. The image itself is
// fetched separately through the preview endpoint.
type SlotSnapshot struct {
	PreviewID string `json:"preview_id"`
	MIME      string `json:"mime"`
}

// GeneratorSnapshot is the wire view of the generator workflow.
type GeneratorSnapshot struct {
	RenderShot  *SlotSnapshot      `json:"render_shot,omitempty"`
	Pattern     *SlotSnapshot      `json:"pattern,omitempty"`
	Outline     *SlotSnapshot      `json:"outline,omitempty"`
	Reference   *SlotSnapshot      `json:"reference,omitempty"`
	Materials   []SlotSnapshot     `json:"materials"`
	Surface     prompt.Surface     `json:"surface"`
	Mode        prompt.Mode        `json:"mode"`
	Dimensions  *prompt.Dimensions `json:"dimensions,omitempty"`
	Instruction string             `json:"instruction"`
	Variations  int                `json:"variations"`
	Outputs     []string           `json:"outputs"`
	Selected    int                `json:"selected"`
	Busy        bool               `json:"busy"`
	Error       string             `json:"error,omitempty"`
}

// ExtractorSnapshot is the wire view of the extractor workflow.
type ExtractorSnapshot struct {
	Source      *SlotSnapshot      `json:"source,omitempty"`
	Kind        prompt.ExtractKind `json:"kind"`
	Instruction string             `json:"instruction"`
	Dimensions  *prompt.Dimensions `json:"dimensions,omitempty"`
	Output      string             `json:"output,omitempty"`
	Busy        bool               `json:"busy"`
	Error       string             `json:"error,omitempty"`
}

// StudioSnapshot is the wire view of the pattern studio workflow.
type StudioSnapshot struct {
	Reference   *SlotSnapshot      `json:"reference,omitempty"`
	Description string             `json:"description"`
	Dimensions  *prompt.Dimensions `json:"dimensions,omitempty"`
	Output      string             `json:"output,omitempty"`
	Busy        bool               `json:"busy"`
	Error       string             `json:"error,omitempty"`
}

// Snapshot is the full wire view of a session.
type Snapshot struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Active    Workflow          `json:"active_workflow"`
	Generator GeneratorSnapshot `json:"generator"`
	Extractor ExtractorSnapshot `json:"extractor"`
	Studio    StudioSnapshot    `json:"studio"`
	ChatBusy  bool              `json:"chat_busy"`
}

// Snapshot renders the session state for the wire, localizing any
// workflow error into the request's locale.
func (s *Session) Snapshot(locale i18n.Locale) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &s.generator
	snap := Snapshot{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Active:    s.active,
		ChatBusy:  s.chatBusy,
		Generator: GeneratorSnapshot{
			RenderShot:  slotSnapshot(g.renderShot),
			Pattern:     slotSnapshot(g.pattern),
			Outline:     slotSnapshot(g.outline),
			Reference:   slotSnapshot(g.reference),
			Materials:   make([]SlotSnapshot, 0, len(g.materials)),
			Surface:     g.surface,
			Mode:        g.mode,
			Dimensions:  g.dims,
			Instruction: g.instruction,
			Variations:  g.variations,
			Outputs:     make([]string, 0, len(g.outputs)),
			Selected:    g.selected,
			Busy:        g.busy,
			Error:       renderError(g.lastErr, locale),
		},
		Extractor: ExtractorSnapshot{
			Source:      slotSnapshot(s.extractor.source),
			Kind:        s.extractor.kind,
			Instruction: s.extractor.instruction,
			Dimensions:  s.extractor.dims,
			Output:      s.extractor.output.DataURI(),
			Busy:        s.extractor.busy,
			Error:       renderError(s.extractor.lastErr, locale),
		},
		Studio: StudioSnapshot{
			Reference:   slotSnapshot(s.studio.reference),
			Description: s.studio.description,
			Dimensions:  s.studio.dims,
			Output:      s.studio.output.DataURI(),
			Busy:        s.studio.busy,
			Error:       renderError(s.studio.lastErr, locale),
		},
	}
	for _, m := range g.materials {
		snap.Generator.Materials = append(snap.Generator.Materials, *slotSnapshot(m))
	}
	for _, out := range g.outputs {
		snap.Generator.Outputs = append(snap.Generator.Outputs, out.DataURI())
	}
	return snap
}

func slotSnapshot(h *held) *SlotSnapshot {
	if h == nil {
		return nil
	}
	return &SlotSnapshot{PreviewID: h.previewID, MIME: h.image.MIME}
}

func renderError(e workflowError, locale i18n.Locale) string {
	if e.empty() {
		return ""
	}
	if e.key != "" {
		return i18n.T(locale, e.key)
	}
	return e.detail
}
