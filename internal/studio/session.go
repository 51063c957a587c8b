// Package studio holds the server-side state of one design session: the
// three workflow state machines, their upload slots and previews, the
// per-role history caches, the chat transcript, and the catalogue
// navigator. A Session is the unit the HTTP layer locks around; all
// backend calls happen outside the lock so a slow generation never blocks
// reads of the session state.
package studio

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/catalogue"
	"github.com/Mas3oood/Bovali/internal/history"
	"github.com/Mas3oood/Bovali/internal/i18n"
	"github.com/Mas3oood/Bovali/internal/infra"
	"github.com/Mas3oood/Bovali/internal/prompt"
	"github.com/Mas3oood/Bovali/internal/providers/gemini"
)

// Generator is the one-shot generative backend.
type Generator interface {
	Generate(ctx context.Context, instruction string, images []asset.Image) (*gemini.Result, error)
	EditImage(ctx context.Context, instruction string, img asset.Image) (*asset.Image, string, error)
}

// BatchGenerator fans one instruction out into several variations.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context, instruction string, images []asset.Image, count int) ([]asset.Image, error)
}

// Dialogue is a stateful multi-turn text conversation.
type Dialogue interface {
	Send(ctx context.Context, text string) (string, error)
}

// Backends carries the external services a session drives. A nil field
// means the matching credential is absent; operations that need it fail
// with ErrBackendUnavailable.
type Backends struct {
	Generator   Generator
	Batch       BatchGenerator
	NewDialogue func() Dialogue
	NewCatalog  func() *catalogue.Navigator
}

// ChatTurn is one transcript entry.
type ChatTurn struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

const (
	SpeakerUser = "user"
	SpeakerBot  = "bot"
)

// Session is one browser tab's worth of studio state.
type Session struct {
	ID        string
	CreatedAt time.Time

	backends Backends
	logger   *infra.Logger

	mu        sync.Mutex
	active    Workflow
	generator generatorState
	extractor extractorState
	studio    studioState

	histories *history.Set
	previews  map[string]*asset.Image

	chat     []ChatTurn
	chatBusy bool
	dialogue Dialogue

	navigator *catalogue.Navigator
}

// NewSession builds an empty session starting on the generator workflow.
func NewSession(id string, backends Backends, logger *infra.Logger) *Session {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		backends:  backends,
		logger:    logger,
		active:    WorkflowGenerator,
		generator: newGeneratorState(),
		extractor: newExtractorState(),
		studio:    newStudioState(),
		histories: history.NewSet(),
		previews:  make(map[string]*asset.Image),
	}
	if backends.NewCatalog != nil {
		s.navigator = backends.NewCatalog()
	}
	return s
}

// Histories exposes the per-role history caches.
func (s *Session) Histories() *history.Set { return s.histories }

// Catalog returns the session's catalogue navigator, nil when the Drive
// backend is not configured.
func (s *Session) Catalog() *catalogue.Navigator { return s.navigator }

// Active returns the currently selected workflow.
func (s *Session) Active() Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Preview resolves a preview handle minted by a slot assignment.
func (s *Session) Preview(id string) (*asset.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.previews[id]
	return img, ok
}

// SetSlot places img into the named slot of wf, replacing any previous
// occupant and voiding the workflow's output. It returns the preview
// handle for the stored image.
func (s *Session) SetSlot(wf Workflow, slot string, img *asset.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.slotLocked(wf, slot)
	if err != nil {
		return "", err
	}
	s.releaseLocked(*target)
	id := s.acquireLocked(img)
	*target = &held{image: img, previewID: id}
	s.voidOutputLocked(wf)
	s.recordUploadLocked(slot, img)
	return id, nil
}

// ClearSlot empties the named slot and voids the workflow's output.
func (s *Session) ClearSlot(wf Workflow, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.slotLocked(wf, slot)
	if err != nil {
		return err
	}
	s.releaseLocked(*target)
	*target = nil
	s.voidOutputLocked(wf)
	return nil
}

// AddMaterial appends a material image to the generator's material list.
func (s *Session) AddMaterial(img *asset.Image) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.acquireLocked(img)
	s.generator.materials = append(s.generator.materials, &held{image: img, previewID: id})
	s.voidOutputLocked(WorkflowGenerator)
	s.recordUploadLocked(SlotMaterials, img)
	return id
}

// RemoveMaterial drops the material at index from the generator's list.
func (s *Session) RemoveMaterial(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.generator.materials) {
		return ErrIndexOutOfRange
	}
	s.releaseLocked(s.generator.materials[index])
	s.generator.materials = append(s.generator.materials[:index], s.generator.materials[index+1:]...)
	s.voidOutputLocked(WorkflowGenerator)
	return nil
}

// GeneratorOptions is the full option set of the generator form. The
// client sends its whole form state on every change; a nil Dimensions
// means the size fields are empty.
type GeneratorOptions struct {
	Surface     prompt.Surface
	Mode        prompt.Mode
	Dimensions  *prompt.Dimensions
	Instruction string
	Variations  int
}

// SetGeneratorOptions applies the generator form state. Switching the
// composition mode clears the generator's slots and output, since the
// slot roles change meaning between modes.
func (s *Session) SetGeneratorOptions(opts GeneratorOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Mode != "" && opts.Mode != s.generator.mode {
		s.clearGeneratorInputsLocked()
		s.voidOutputLocked(WorkflowGenerator)
		s.generator.mode = opts.Mode
	}
	if opts.Surface != "" {
		s.generator.surface = opts.Surface
	}
	s.generator.dims = opts.Dimensions
	s.generator.instruction = opts.Instruction
	s.generator.variations = clampVariations(opts.Variations)
}

// ExtractorOptions is the full option set of the extractor form.
type ExtractorOptions struct {
	Kind        prompt.ExtractKind
	Instruction string
	Dimensions  *prompt.Dimensions
}

// SetExtractorOptions applies the extractor form state.
func (s *Session) SetExtractorOptions(opts ExtractorOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Kind != "" {
		s.extractor.kind = opts.Kind
	}
	s.extractor.instruction = opts.Instruction
	s.extractor.dims = opts.Dimensions
}

// StudioOptions is the full option set of the pattern studio form.
type StudioOptions struct {
	Description string
	Dimensions  *prompt.Dimensions
}

// SetStudioOptions applies the pattern studio form state.
func (s *Session) SetStudioOptions(opts StudioOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.studio.description = opts.Description
	s.studio.dims = opts.Dimensions
}

// SwitchWorkflow makes target the active workflow and resets every other
// workflow to its initial state. Switching to the already-active workflow
// is a no-op.
func (s *Session) SwitchWorkflow(target Workflow) error {
	if _, ok := ParseWorkflow(string(target)); !ok {
		return ErrUnknownWorkflow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if target == s.active {
		return nil
	}
	for _, wf := range allWorkflows {
		if wf != target {
			s.resetWorkflowLocked(wf)
		}
	}
	s.active = target
	return nil
}

// SelectOutput picks which generator variation is on the canvas.
func (s *Session) SelectOutput(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.generator.outputs) {
		return ErrIndexOutOfRange
	}
	s.generator.selected = index
	return nil
}

// ActiveOutput returns the image currently on the active workflow's
// canvas, nil when there is none.
func (s *Session) ActiveOutput() *asset.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeOutputLocked()
}

// SendOutputTo copies the active workflow's canvas image into a slot of
// the target workflow and switches to it. The copy is taken before the
// switch resets the source workflow.
func (s *Session) SendOutputTo(target Workflow, slot string) (string, error) {
	if _, ok := ParseWorkflow(string(target)); !ok {
		return "", ErrUnknownWorkflow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	img := s.activeOutputLocked()
	if img == nil {
		return "", ErrNoActiveOutput
	}
	if _, err := s.slotLocked(target, slot); err != nil && !(target == WorkflowGenerator && slot == SlotMaterials) {
		return "", err
	}
	copied := img.Clone()

	for _, wf := range allWorkflows {
		if wf != target {
			s.resetWorkflowLocked(wf)
		}
	}
	s.active = target

	id := s.acquireLocked(copied)
	if target == WorkflowGenerator && slot == SlotMaterials {
		s.generator.materials = append(s.generator.materials, &held{image: copied, previewID: id})
	} else {
		targetSlot, _ := s.slotLocked(target, slot)
		s.releaseLocked(*targetSlot)
		*targetSlot = &held{image: copied, previewID: id}
	}
	s.voidOutputLocked(target)
	s.recordUploadLocked(slot, copied)
	return id, nil
}

// UseFromHistory copies a history entry into a slot of the active
// workflow, touching the entry to the front of its cache.
func (s *Session) UseFromHistory(role history.Role, identity, slot string) (string, error) {
	cache, ok := s.histories.ByRole(role)
	if !ok {
		return "", history.ErrUnknownRole
	}
	img, err := asset.ParseDataURI(identity)
	if err != nil {
		return "", err
	}
	cache.Touch(identity)

	s.mu.Lock()
	wf := s.active
	s.mu.Unlock()
	if wf == WorkflowGenerator && slot == SlotMaterials {
		return s.AddMaterial(img), nil
	}
	return s.SetSlot(wf, slot, img)
}

// Generate runs a generator submission: validate and snapshot under the
// lock, build the instruction, fan the batch out unlocked, then commit
// the outcome. The outcome lands on the generator state even if the user
// switched workflows while the batch ran.
func (s *Session) Generate(ctx context.Context) ([]*asset.Image, error) {
	if s.backends.Batch == nil {
		return nil, ErrBackendUnavailable
	}

	s.mu.Lock()
	images, params, verr := s.generatorRequestLocked()
	if verr != nil {
		s.mu.Unlock()
		return nil, verr
	}
	count := s.generator.variations
	s.generator.busy = true
	s.generator.lastErr = workflowError{}
	s.mu.Unlock()

	instruction := prompt.BuildGeneration(params)
	outputs, err := s.backends.Batch.GenerateBatch(ctx, instruction, images, count)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generator.busy = false
	if err != nil {
		if errors.Is(err, gemini.ErrBatchEmpty) {
			s.generator.lastErr = workflowError{key: i18n.KeyBatchEmpty}
		} else {
			s.generator.lastErr = workflowError{detail: err.Error()}
		}
		return nil, err
	}

	s.generator.outputs = make([]*asset.Image, len(outputs))
	for i := range outputs {
		s.generator.outputs[i] = &outputs[i]
	}
	s.generator.selected = 0
	role := history.RoleRenderShot
	if params.Mode == prompt.ModeFromOutline {
		role = history.RolePattern
	}
	s.recordOutputsLocked(role, s.generator.outputs)
	return s.generator.outputs, nil
}

// Extract runs an extractor submission against the uploaded source photo.
func (s *Session) Extract(ctx context.Context) (*asset.Image, error) {
	if s.backends.Generator == nil {
		return nil, ErrBackendUnavailable
	}

	s.mu.Lock()
	if s.extractor.source == nil {
		s.mu.Unlock()
		return nil, &ValidationError{Key: i18n.KeyUploadSource}
	}
	source := *s.extractor.source.image
	kind := s.extractor.kind
	instruction := prompt.BuildExtraction(kind, s.extractor.instruction, s.extractor.dims)
	s.extractor.busy = true
	s.extractor.lastErr = workflowError{}
	s.mu.Unlock()

	result, err := s.backends.Generator.Generate(ctx, instruction, []asset.Image{source})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractor.busy = false
	if err == nil && result.Image == nil {
		err = &gemini.TextOnlyError{Text: result.Text}
	}
	if err != nil {
		s.extractor.lastErr = workflowError{detail: err.Error()}
		return nil, err
	}

	s.extractor.output = result.Image
	role := history.RolePattern
	if kind == prompt.ExtractMaterial {
		role = history.RoleMaterial
	}
	s.recordOutputsLocked(role, []*asset.Image{result.Image})
	return result.Image, nil
}

// Synthesize runs a pattern-studio submission from the text description
// and optional reference image.
func (s *Session) Synthesize(ctx context.Context) (*asset.Image, error) {
	if s.backends.Generator == nil {
		return nil, ErrBackendUnavailable
	}

	s.mu.Lock()
	if strings.TrimSpace(s.studio.description) == "" {
		s.mu.Unlock()
		return nil, &ValidationError{Key: i18n.KeyDescribePattern}
	}
	var images []asset.Image
	if s.studio.reference != nil {
		images = append(images, *s.studio.reference.image)
	}
	instruction := prompt.BuildSynthesis(s.studio.description, len(images) > 0, s.studio.dims)
	s.studio.busy = true
	s.studio.lastErr = workflowError{}
	s.mu.Unlock()

	result, err := s.backends.Generator.Generate(ctx, instruction, images)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.studio.busy = false
	if err == nil && result.Image == nil {
		err = &gemini.TextOnlyError{Text: result.Text}
	}
	if err != nil {
		s.studio.lastErr = workflowError{detail: err.Error()}
		return nil, err
	}

	s.studio.output = result.Image
	s.recordOutputsLocked(history.RolePattern, []*asset.Image{result.Image})
	return result.Image, nil
}

// generatorRequestLocked validates the generator's inputs for its current
// mode and assembles the ordered image list the instruction refers to.
func (s *Session) generatorRequestLocked() ([]asset.Image, prompt.GenerationParams, error) {
	g := &s.generator
	none := prompt.GenerationParams{}
	var images []asset.Image

	needRender := g.mode != prompt.ModeFromOutline
	if needRender {
		if g.renderShot == nil {
			return nil, none, &ValidationError{Key: i18n.KeyUploadRenderShot}
		}
		images = append(images, *g.renderShot.image)
	}

	switch g.mode {
	case prompt.ModePatternAndMaterial:
		if g.pattern == nil {
			return nil, none, &ValidationError{Key: i18n.KeyUploadPattern}
		}
		if len(g.materials) == 0 {
			return nil, none, &ValidationError{Key: i18n.KeyUploadMaterial}
		}
		images = append(images, *g.pattern.image)
		for _, m := range g.materials {
			images = append(images, *m.image)
		}
	case prompt.ModePatternOnly:
		if g.pattern == nil {
			return nil, none, &ValidationError{Key: i18n.KeyUploadPattern}
		}
		images = append(images, *g.pattern.image)
	case prompt.ModeMaterialOnly:
		if len(g.materials) == 0 {
			return nil, none, &ValidationError{Key: i18n.KeyUploadMaterial}
		}
		for _, m := range g.materials {
			images = append(images, *m.image)
		}
	case prompt.ModeFromOutline:
		if g.outline == nil {
			return nil, none, &ValidationError{Key: i18n.KeyUploadOutline}
		}
		images = append(images, *g.outline.image)
		if g.reference != nil {
			images = append(images, *g.reference.image)
		}
	}

	params := prompt.GenerationParams{
		Surface:       g.surface,
		Mode:          g.mode,
		Dimensions:    g.dims,
		Instruction:   g.instruction,
		MaterialCount: len(g.materials),
	}
	return images, params, nil
}

func (s *Session) activeOutputLocked() *asset.Image {
	switch s.active {
	case WorkflowGenerator:
		if s.generator.selected < len(s.generator.outputs) {
			return s.generator.outputs[s.generator.selected]
		}
	case WorkflowExtractor:
		return s.extractor.output
	case WorkflowStudio:
		return s.studio.output
	}
	return nil
}

// slotLocked resolves a workflow's slot to the field holding it.
func (s *Session) slotLocked(wf Workflow, slot string) (**held, error) {
	switch wf {
	case WorkflowGenerator:
		switch slot {
		case SlotRenderShot:
			return &s.generator.renderShot, nil
		case SlotPattern:
			return &s.generator.pattern, nil
		case SlotOutline:
			return &s.generator.outline, nil
		case SlotReference:
			return &s.generator.reference, nil
		}
	case WorkflowExtractor:
		if slot == SlotSource {
			return &s.extractor.source, nil
		}
	case WorkflowStudio:
		if slot == SlotReference {
			return &s.studio.reference, nil
		}
	}
	return nil, ErrUnknownSlot
}

func (s *Session) acquireLocked(img *asset.Image) string {
	id := uuid.NewString()
	s.previews[id] = img
	return id
}

func (s *Session) releaseLocked(h *held) {
	if h != nil {
		delete(s.previews, h.previewID)
	}
}

// voidOutputLocked discards a workflow's output and error after any input
// change, so the canvas never shows a result the inputs no longer match.
func (s *Session) voidOutputLocked(wf Workflow) {
	switch wf {
	case WorkflowGenerator:
		s.generator.outputs = nil
		s.generator.selected = 0
		s.generator.lastErr = workflowError{}
	case WorkflowExtractor:
		s.extractor.output = nil
		s.extractor.lastErr = workflowError{}
	case WorkflowStudio:
		s.studio.output = nil
		s.studio.lastErr = workflowError{}
	}
}

func (s *Session) clearGeneratorInputsLocked() {
	g := &s.generator
	for _, h := range []*held{g.renderShot, g.pattern, g.outline, g.reference} {
		s.releaseLocked(h)
	}
	for _, h := range g.materials {
		s.releaseLocked(h)
	}
	g.renderShot, g.pattern, g.outline, g.reference, g.materials = nil, nil, nil, nil, nil
}

// resetWorkflowLocked returns a workflow to its initial state, releasing
// every preview it held.
func (s *Session) resetWorkflowLocked(wf Workflow) {
	switch wf {
	case WorkflowGenerator:
		s.clearGeneratorInputsLocked()
		s.generator = newGeneratorState()
	case WorkflowExtractor:
		s.releaseLocked(s.extractor.source)
		s.extractor = newExtractorState()
	case WorkflowStudio:
		s.releaseLocked(s.studio.reference)
		s.studio = newStudioState()
	}
}

// recordUploadLocked files an incoming slot image into the history cache
// matching its role. Outline, reference, and source images are one-off
// context and stay out of history.
func (s *Session) recordUploadLocked(slot string, img *asset.Image) {
	var role history.Role
	switch slot {
	case SlotRenderShot:
		role = history.RoleRenderShot
	case SlotPattern:
		role = history.RolePattern
	case SlotMaterials:
		role = history.RoleMaterial
	default:
		return
	}
	if cache, ok := s.histories.ByRole(role); ok {
		cache.Insert(img)
	}
}

func (s *Session) recordOutputsLocked(role history.Role, outputs []*asset.Image) {
	cache, ok := s.histories.ByRole(role)
	if !ok {
		return
	}
	for _, img := range outputs {
		cache.Insert(img)
	}
}

func clampVariations(n int) int {
	if n < 1 {
		return 1
	}
	if n > 4 {
		return 4
	}
	return n
}
