package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

// Surface selects which surface of the render shot receives the design.
type Surface string

const (
	SurfaceFlooring Surface = "flooring"
	SurfaceWalls    Surface = "walls"
)

// Mode is the generator's composition mode. It decides which upload
// slots are required and how the instruction addresses each image.
type Mode string

const (
	ModePatternAndMaterial Mode = "pattern_and_material"
	ModePatternOnly        Mode = "pattern_only"
	ModeMaterialOnly       Mode = "material_only"
	ModeFromOutline        Mode = "from_outline"
)

// ExtractKind selects what the extractor pulls out of a reference photo.
type ExtractKind string

const (
	ExtractPattern  ExtractKind = "pattern"
	ExtractMaterial ExtractKind = "material"
)

// Dimensions carries the physical tile or source size. A nil value means
// the user left the fields empty and the scaling clause is elided.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

func (d *Dimensions) describe() string {
	return fmt.Sprintf("%s x %s %s",
		strconv.FormatFloat(d.Width, 'f', -1, 64),
		strconv.FormatFloat(d.Height, 'f', -1, 64),
		strings.TrimSpace(d.Unit))
}

// GenerationParams are the knobs of one generator submission. The image
// order referenced by the built instruction must match the order the
// caller sends the images in.
type GenerationParams struct {
	Surface       Surface
	Mode          Mode
	Dimensions    *Dimensions
	Instruction   string
	MaterialCount int
}

const preamble = "You are a senior interior visualization artist for Bovali, a premium flooring and wall cladding brand. You produce photorealistic room renders and clean, production-ready design swatches."

const closing = "Return only the final image. Do not add any text, labels, annotations, watermarks, or overlays of any kind."

// BuildGeneration assembles the instruction for a generator submission.
// Each input image is named by its role and ordinal position so the
// model can tell the render shot, pattern, materials, and outline apart.
func BuildGeneration(p GenerationParams) string {
	lines := []string{preamble}

	surface := "floor"
	if p.Surface == SurfaceWalls {
		surface = "walls"
	}

	switch p.Mode {
	case ModePatternAndMaterial:
		lines = append(lines,
			"The first image is the Render Shot of the room.",
			"The second image is the Pattern Image.",
			materialsLine(3, p.MaterialCount),
			fmt.Sprintf("Recreate the layout of the Pattern Image on the %s of the Render Shot, rendering it with the textures from the Material Image(s).", surface),
			"Keep the room's lighting, perspective, furniture, and every other surface untouched.")
	case ModePatternOnly:
		lines = append(lines,
			"The first image is the Render Shot of the room.",
			"The second image is the Pattern Image.",
			fmt.Sprintf("Apply the Pattern Image, with its own colors and materials, onto the %s of the Render Shot.", surface),
			"Keep the room's lighting, perspective, furniture, and every other surface untouched.")
	case ModeMaterialOnly:
		lines = append(lines,
			"The first image is the Render Shot of the room.",
			materialsLine(2, p.MaterialCount),
			fmt.Sprintf("Resurface the %s of the Render Shot with the Material Image(s), laid in a natural format for that material.", surface),
			"Keep the room's lighting, perspective, furniture, and every other surface untouched.")
	case ModeFromOutline:
		lines = append(lines,
			"The first image is the Pattern Outline, a stencil of the design to produce.",
			"If a further image is provided, the last image is the Reference Image; draw the palette and finish from it.",
			"Produce a finished, seamless tile design that follows the Pattern Outline exactly.")
	}

	if p.Dimensions != nil {
		lines = append(lines, fmt.Sprintf("Scale the design so that one tile measures exactly %s in real-world proportions.", p.Dimensions.describe()))
	}

	if instr := strings.TrimSpace(p.Instruction); instr != "" {
		lines = append(lines, "Additional direction: "+instr)
	}

	lines = append(lines, closing)
	return strings.Join(lines, "\n")
}

func materialsLine(startOrdinal, count int) string {
	if count <= 1 {
		return fmt.Sprintf("Image %d is the Material Image.", startOrdinal)
	}
	return fmt.Sprintf("Images %d through %d are the Material Image(s).", startOrdinal, startOrdinal+count-1)
}

// BuildExtraction assembles the instruction for pulling a reusable
// pattern or material swatch out of a reference photo.
func BuildExtraction(kind ExtractKind, instruction string, dims *Dimensions) string {
	lines := []string{preamble, "The provided image is a Reference Image photographed in the field."}

	switch kind {
	case ExtractMaterial:
		lines = append(lines,
			"Isolate the dominant surface material visible in the Reference Image.",
			"Return it as a flat, evenly lit, seamless material swatch with perspective and shadows removed.")
	default:
		lines = append(lines,
			"Isolate the repeating decorative pattern visible in the Reference Image.",
			"Return it as a flat, evenly lit, seamless pattern tile with perspective and shadows removed.")
	}

	if dims != nil {
		lines = append(lines, fmt.Sprintf("The source element measures %s; preserve its proportions.", dims.describe()))
	}
	if instr := strings.TrimSpace(instruction); instr != "" {
		lines = append(lines, "Additional direction: "+instr)
	}

	lines = append(lines, closing)
	return strings.Join(lines, "\n")
}

// BuildSynthesis assembles the pattern-studio instruction for creating a
// brand new pattern from a text description, optionally steered by a
// reference image.
func BuildSynthesis(description string, hasReference bool, dims *Dimensions) string {
	lines := []string{
		preamble,
		"Design a brand new, original surface pattern from scratch based on this description: " + strings.TrimSpace(description),
	}
	if hasReference {
		lines = append(lines, "The provided image is a Reference Image; draw mood, palette, and finish from it without copying it.")
	}
	lines = append(lines, "Render the result as a flat, seamless, production-ready pattern tile.")
	if dims != nil {
		lines = append(lines, fmt.Sprintf("Proportion the tile as %s.", dims.describe()))
	}
	lines = append(lines, closing)
	return strings.Join(lines, "\n")
}

// WrapEdit wraps a free-form chat instruction into the fixed template
// used for edit turns against the currently displayed output.
func WrapEdit(instruction string) string {
	return strings.Join([]string{
		"Edit the provided image according to this instruction: " + strings.TrimSpace(instruction),
		"Stay photorealistic and change nothing the instruction does not ask for.",
		closing,
	}, "\n")
}

// ParseSurface maps the wire value onto a Surface.
func ParseSurface(s string) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SurfaceFlooring), "floor", "floors":
		return SurfaceFlooring, nil
	case string(SurfaceWalls), "wall", "cladding":
		return SurfaceWalls, nil
	default:
		return "", fmt.Errorf("unknown surface %q", s)
	}
}

// ParseMode maps the wire value onto a composition Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModePatternAndMaterial):
		return ModePatternAndMaterial, nil
	case string(ModePatternOnly):
		return ModePatternOnly, nil
	case string(ModeMaterialOnly):
		return ModeMaterialOnly, nil
	case string(ModeFromOutline):
		return ModeFromOutline, nil
	default:
		return "", fmt.Errorf("unknown composition mode %q", s)
	}
}

// ParseExtractKind maps the wire value onto an ExtractKind.
func ParseExtractKind(s string) (ExtractKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ExtractPattern), "":
		return ExtractPattern, nil
	case string(ExtractMaterial):
		return ExtractMaterial, nil
	default:
		return "", fmt.Errorf("unknown extraction kind %q", s)
	}
}
