package scene

// PlacedObject is the renderer-side handle for the object anchored on the
// detected surface. The pipeline only ever writes its scale; placement and
// drawing belong to the renderer.
type PlacedObject interface {
	SetScale(x, y, z float64)
}
