package scene

import "log"

// logObject stands in for a real renderer object and logs scale changes. The
// frame loop pushes the scale every frame, so it only logs when the value
// actually moved.
type logObject struct {
	lastX float64
	lastY float64
	lastZ float64
}

func NewLogObject() PlacedObject {
	return &logObject{}
}

func (o *logObject) SetScale(x, y, z float64) {
	if x == o.lastX && y == o.lastY && z == o.lastZ {
		return
	}

	o.lastX, o.lastY, o.lastZ = x, y, z

	log.Printf("object scale -> (%.2f, %.2f, %.2f)", x, y, z)
}
