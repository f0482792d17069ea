package controller

const (
	STICK_SCALE   = 32768.0
	TRIGGER_SCALE = 255.0
)

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NormalizeStick maps a raw stick reading onto [-1, 1]. Readings outside
// the device's nominal range saturate instead of leaving the interval.
func NormalizeStick(raw int32) float64 {
	return clamp(float64(raw)/STICK_SCALE, -1, 1)
}

// NormalizeTrigger maps a raw trigger reading onto [0, 1].
func NormalizeTrigger(raw int32) float64 {
	return clamp(float64(raw)/TRIGGER_SCALE, 0, 1)
}
