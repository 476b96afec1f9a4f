package graph

const (
	// Edge defaults
	defaultEdgeWidth = 1.5

	// Radius of the identity center when a builder does not set one
	DefaultCenterRadius = 60.0
)
