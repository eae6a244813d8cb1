package scale_state

type Interface interface {
	Get() Vector
	Apply(delta float64, bounds Bounds) Vector
}
