package command

import "object-scale-control/scale_state"

// Policy is the step size and clamping applied for one trigger source.
type Policy struct {
	Step   float64
	Bounds scale_state.Bounds
}

const minScale = 0.1

// Per-source policies. Buttons jump in large unbounded steps, voice in small
// unbounded steps, motion in small steps capped at 1.0 so a sustained twist
// cannot grow the object without limit.
var policies = map[Source]Policy{
	SourceButton: {Step: 0.5, Bounds: scale_state.Bounds{Min: minScale}},
	SourceVoice:  {Step: 0.1, Bounds: scale_state.Bounds{Min: minScale}},
	SourceMotion: {Step: 0.1, Bounds: scale_state.Bounds{Min: minScale, Max: 1.0}},
}

// PolicyFor returns the policy for a source. Unknown sources fall back to the
// voice policy, the most conservative unbounded one.
func PolicyFor(source Source) Policy {
	if p, ok := policies[source]; ok {
		return p
	}

	return policies[SourceVoice]
}
