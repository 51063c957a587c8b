package studio

import (
	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/prompt"
)

// Workflow names one of the three creative modes a session can be in.
type Workflow string

const (
	WorkflowGenerator Workflow = "generator"
	WorkflowExtractor Workflow = "extractor"
	WorkflowStudio    Workflow = "studio"
)

var allWorkflows = []Workflow{WorkflowGenerator, WorkflowExtractor, WorkflowStudio}

// ParseWorkflow maps a wire name onto a Workflow.
func ParseWorkflow(s string) (Workflow, bool) {
	switch Workflow(s) {
	case WorkflowGenerator, WorkflowExtractor, WorkflowStudio:
		return Workflow(s), true
	default:
		return "", false
	}
}

// Slot names understood by SetSlot and ClearSlot. Materials is a list and
// only valid as a SendOutputTo target; uploads go through AddMaterial.
const (
	SlotRenderShot = "render_shot"
	SlotPattern    = "pattern"
	SlotOutline    = "outline"
	SlotReference  = "reference"
	SlotSource     = "source"
	SlotMaterials  = "materials"
)

// held pairs a slot's image with the preview handle minted when the image
// arrived. The handle is released exactly once, when the slot is replaced,
// cleared, or its workflow reset.
type held struct {
	image     *asset.Image
	previewID string
}

// workflowError is a failed submit's record on the workflow state. Either
// key names a catalog message or detail carries the backend's own text;
// rendering picks whichever is set.
type workflowError struct {
	key    string
	detail string
}

func (e workflowError) empty() bool { return e.key == "" && e.detail == "" }

type generatorState struct {
	renderShot *held
	pattern    *held
	outline    *held
	reference  *held
	materials  []*held

	surface     prompt.Surface
	mode        prompt.Mode
	dims        *prompt.Dimensions
	instruction string
	variations  int

	outputs  []*asset.Image
	selected int
	busy     bool
	lastErr  workflowError
}

func newGeneratorState() generatorState {
	return generatorState{
		surface:    prompt.SurfaceFlooring,
		mode:       prompt.ModePatternAndMaterial,
		variations: 1,
	}
}

type extractorState struct {
	source *held

	kind        prompt.ExtractKind
	instruction string
	dims        *prompt.Dimensions

	output  *asset.Image
	busy    bool
	lastErr workflowError
}

func newExtractorState() extractorState {
	return extractorState{kind: prompt.ExtractPattern}
}

type studioState struct {
	reference *held

	description string
	dims        *prompt.Dimensions

	output  *asset.Image
	busy    bool
	lastErr workflowError
}

func newStudioState() studioState {
	return studioState{}
}
