package transcode

import "math"

const (
	MaxAttempts = 6
	ScaleDecay  = 0.75
	FPSDecay    = 0.85
	MinFPS      = 8
)

// Attempt is one re-encode pass at a given scale and frame rate.
type Attempt struct {
	Scale      float64
	FPS        int
	OutputSize int64
	Err        error
}

// Plan returns the shrinking (scale, fps) sequence for initialFPS. Neither
// value ever increases from one attempt to the next.
func Plan(initialFPS int) []Attempt {
	if initialFPS <= 0 {
		initialFPS = MinFPS
	}

	plan := make([]Attempt, 0, MaxAttempts)
	scale, fps := 1.0, initialFPS
	for i := 0; i < MaxAttempts; i++ {
		plan = append(plan, Attempt{Scale: scale, FPS: fps})

		scale *= ScaleDecay
		next := int(math.Floor(float64(fps) * FPSDecay))
		next = max(next, MinFPS)
		fps = min(fps, next)
	}
	return plan
}
