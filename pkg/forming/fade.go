package forming

import (
	"math"

	"sheetstamp/internal/models"
)

// Fade maps a distance from the nearest mark to a sample of the negative
// form using a raised cosine: 0 at the mark, MaxSample at fadeDistanceMM and
// beyond. The curve is never evaluated outside [0, fadeDistanceMM].
func Fade(distanceMM, fadeDistanceMM float64) uint16 {
	if math.IsNaN(distanceMM) || distanceMM >= fadeDistanceMM {
		return models.MaxSample
	}
	if distanceMM <= 0 {
		return 0
	}
	angle := distanceMM / fadeDistanceMM * math.Pi
	return uint16((math.Cos(angle+math.Pi) + 1) / 2 * models.MaxSample)
}
