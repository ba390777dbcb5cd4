package core

// Numeric tolerances shared by the shading and intersection code.
const (
	// EpsCosine is the smallest cosine treated as above a surface.
	EpsCosine = 1e-6
	// EpsRayGeometry biases queries against triangles and spheres.
	EpsRayGeometry = 1e-4
	// EpsRayField biases queries against distance fields.
	EpsRayField = 1e-2
	// EpsDistField is the convergence threshold of the sphere marcher.
	EpsDistField = 1e-4
	// DeltaGradient is the central difference step for field normals.
	DeltaGradient = 1e-4
	// MaxFieldSteps caps the number of sphere marching iterations.
	MaxFieldSteps = 1024
	// MaxMarchDistance bounds marching when nothing else limits it.
	MaxMarchDistance = 10000.0
	// InfiniteDistance is reported for lights at infinity.
	InfiniteDistance = 1e35
)
