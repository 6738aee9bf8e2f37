package utils

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RPMToDegsPerSec converts revolutions per minute to degrees per second.
func RPMToDegsPerSec(rpm float64) float64 {
	return rpm * 360 / 60
}

// DegsPerSecToRPM converts degrees per second to revolutions per minute.
func DegsPerSecToRPM(degsPerSec float64) float64 {
	return degsPerSec * 60 / 360
}
