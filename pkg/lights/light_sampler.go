package lights

// UniformLightSampler picks one of n lights with equal probability
type UniformLightSampler struct {
	count int
}

// NewUniformLightSampler creates a sampler over count lights
func NewUniformLightSampler(count int) UniformLightSampler {
	return UniformLightSampler{count: count}
}

// Pick maps u in [0,1) to a light index and its selection probability.
// Returns false when there are no lights.
func (s UniformLightSampler) Pick(u float64) (ID, float64, bool) {
	if s.count == 0 {
		return 0, 0, false
	}
	index := min(int(u*float64(s.count)), s.count-1)
	return ID(index), s.Probability(), true
}

// Probability returns the selection probability of any single light
func (s UniformLightSampler) Probability() float64 {
	if s.count == 0 {
		return 0
	}
	return 1 / float64(s.count)
}

// Count returns the number of lights
func (s UniformLightSampler) Count() int {
	return s.count
}
