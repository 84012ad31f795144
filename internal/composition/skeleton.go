package composition

// Slot is a named placeholder in a Skeleton's template.
type Slot struct {
	Name        string  `json:"name"`
	Required    bool    `json:"required"`
	Weight      float64 `json:"weight"`
	Position    string  `json:"position"`     // early, middle, late
	ContentType string  `json:"content_type"` // pool category
}

// Skeleton is a structural blueprint: ordered slots plus literal template
// text. Affinity scores bias skeleton selection per mode and target;
// EntropyTolerance bounds how much selection jitter and slot shuffling this
// skeleton tolerates.
type Skeleton struct {
	Name             string             `json:"name"`
	Slots            []Slot             `json:"slots"`
	Template         string             `json:"template"`
	ModeAffinity     map[string]float64 `json:"mode_affinity"`
	TargetAffinity   map[string]float64 `json:"target_affinity"`
	EntropyTolerance float64            `json:"entropy_tolerance"`
}

// RequiredSlots returns the names of the skeleton's required slots.
func (s Skeleton) RequiredSlots() []string {
	var out []string
	for _, slot := range s.Slots {
		if slot.Required {
			out = append(out, slot.Name)
		}
	}
	return out
}

// Variant is one materialized text output. Immutable once created; carries
// provenance back to the skeleton, the fill map, and the entropy state that
// produced it.
type Variant struct {
	Text             string            `json:"text"`
	SkeletonName     string            `json:"skeleton_name"`
	Fill             map[string]string `json:"fill"`
	EntropySignature string            `json:"entropy_signature"`
}

// Built-in skeletons. Placeholders in braces are either slot names or format
// tokens ({delimiter}, {bracket_open}/{bracket_close}, {nonce:N} open/close
// pairs) substituted at render time.

var skeletonAcademic = Skeleton{
	Name: "academic",
	Slots: []Slot{
		{Name: "context_frame", Required: true, Weight: 0.9, Position: "early", ContentType: "context"},
		{Name: "premise", Required: true, Weight: 1.0, Position: "early", ContentType: "premise"},
		{Name: "background", Required: false, Weight: 0.4, Position: "middle", ContentType: "background"},
		{Name: "elaboration", Required: false, Weight: 0.5, Position: "middle", ContentType: "elaboration"},
		{Name: "supporting_reference", Required: false, Weight: 0.3, Position: "middle", ContentType: "reference"},
		{Name: "primary_query", Required: true, Weight: 1.0, Position: "late", ContentType: "query"},
		{Name: "expected_output", Required: false, Weight: 0.4, Position: "late", ContentType: "directive"},
	},
	Template: `{delimiter}
{bracket_open}CONTEXT{bracket_close}
{context_frame}

{bracket_open}PREMISE{bracket_close}
{premise}

{background}

{elaboration}

{supporting_reference}

{bracket_open}QUESTION{bracket_close}
{primary_query}

{expected_output}
{delimiter}`,
	ModeAffinity:     map[string]float64{"stealth": 0.9, "balanced": 0.7, "aggressive": 0.5, "chaos": 0.3},
	TargetAffinity:   map[string]float64{"study": 0.9, "general": 0.8},
	EntropyTolerance: 0.3,
}

var skeletonConversational = Skeleton{
	Name: "conversational",
	Slots: []Slot{
		{Name: "opening_context", Required: false, Weight: 0.5, Position: "early", ContentType: "context"},
		{Name: "speaker_background", Required: false, Weight: 0.3, Position: "early", ContentType: "background"},
		{Name: "main_query", Required: true, Weight: 1.0, Position: "middle", ContentType: "query"},
		{Name: "contextual_hints", Required: false, Weight: 0.4, Position: "middle", ContentType: "elaboration"},
		{Name: "closing_expectation", Required: false, Weight: 0.4, Position: "late", ContentType: "closing"},
	},
	Template: `{opening_context}

{speaker_background}

{main_query}

{contextual_hints}

{closing_expectation}`,
	ModeAffinity:     map[string]float64{"stealth": 0.95, "balanced": 0.8, "aggressive": 0.4, "chaos": 0.3},
	TargetAffinity:   map[string]float64{"general": 0.9, "study": 0.6},
	EntropyTolerance: 0.6,
}

var skeletonStructured = Skeleton{
	Name: "structured",
	Slots: []Slot{
		{Name: "system_context", Required: true, Weight: 0.9, Position: "early", ContentType: "context"},
		{Name: "constraints", Required: false, Weight: 0.5, Position: "early", ContentType: "directive"},
		{Name: "input_data", Required: true, Weight: 1.0, Position: "middle", ContentType: "premise"},
		{Name: "processing_hints", Required: false, Weight: 0.4, Position: "middle", ContentType: "elaboration"},
		{Name: "reference_data", Required: false, Weight: 0.3, Position: "middle", ContentType: "reference"},
		{Name: "output_spec", Required: false, Weight: 0.5, Position: "late", ContentType: "directive"},
		{Name: "final_query", Required: true, Weight: 1.0, Position: "late", ContentType: "query"},
	},
	Template: `{bracket_open}CONTEXT{bracket_close}
{system_context}

{bracket_open}CONSTRAINTS{bracket_close}
{constraints}

{bracket_open}INPUT{bracket_close}
{input_data}

{bracket_open}NOTES{bracket_close}
{processing_hints}

{bracket_open}REFERENCE{bracket_close}
{reference_data}

{bracket_open}OUTPUT{bracket_close}
{output_spec}

{bracket_open}QUERY{bracket_close}
{final_query}`,
	ModeAffinity:     map[string]float64{"stealth": 0.6, "balanced": 0.85, "aggressive": 0.75, "chaos": 0.5},
	TargetAffinity:   map[string]float64{"study": 0.85, "general": 0.7},
	EntropyTolerance: 0.4,
}

var skeletonMinimal = Skeleton{
	Name: "minimal",
	Slots: []Slot{
		{Name: "context_hint", Required: false, Weight: 0.4, Position: "early", ContentType: "context"},
		{Name: "core_query", Required: true, Weight: 1.0, Position: "middle", ContentType: "query"},
		{Name: "subtle_nudge", Required: false, Weight: 0.3, Position: "late", ContentType: "closing"},
	},
	Template: `{context_hint}

{core_query}

{subtle_nudge}`,
	ModeAffinity:     map[string]float64{"stealth": 1.0, "balanced": 0.6, "aggressive": 0.3, "chaos": 0.2},
	TargetAffinity:   map[string]float64{"general": 0.8, "study": 0.5},
	EntropyTolerance: 0.8,
}

var skeletonLayered = Skeleton{
	Name: "layered",
	Slots: []Slot{
		{Name: "outer_context", Required: true, Weight: 0.9, Position: "early", ContentType: "context"},
		{Name: "layer_premise", Required: true, Weight: 0.8, Position: "early", ContentType: "premise"},
		{Name: "inner_background", Required: false, Weight: 0.4, Position: "middle", ContentType: "background"},
		{Name: "core_content", Required: true, Weight: 1.0, Position: "middle", ContentType: "query"},
		{Name: "inner_reference", Required: false, Weight: 0.3, Position: "middle", ContentType: "reference"},
		{Name: "reinforcement", Required: false, Weight: 0.4, Position: "late", ContentType: "directive"},
		{Name: "outer_close", Required: true, Weight: 0.8, Position: "late", ContentType: "closing"},
	},
	Template: `{nonce_open:outer}
{outer_context}

{nonce_open:layer1}
{layer_premise}

{nonce_open:layer2}
{inner_background}

{core_content}

{inner_reference}
{nonce_close:layer2}

{reinforcement}
{nonce_close:layer1}

{outer_close}
{nonce_close:outer}`,
	ModeAffinity:     map[string]float64{"stealth": 0.4, "balanced": 0.75, "aggressive": 0.95, "chaos": 0.9},
	TargetAffinity:   map[string]float64{"study": 0.7, "general": 0.7},
	EntropyTolerance: 0.5,
}

// builtinSkeletons is the default registry, keyed by skeleton name.
var builtinSkeletons = map[string]Skeleton{
	skeletonAcademic.Name:       skeletonAcademic,
	skeletonConversational.Name: skeletonConversational,
	skeletonStructured.Name:     skeletonStructured,
	skeletonMinimal.Name:        skeletonMinimal,
	skeletonLayered.Name:        skeletonLayered,
}

// SkeletonNames returns the names of the built-in skeletons.
func SkeletonNames() []string {
	out := make([]string, 0, len(builtinSkeletons))
	for name := range builtinSkeletons {
		out = append(out, name)
	}
	return out
}
