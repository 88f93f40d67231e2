package search

import "fmt"

// Energy is the battery and weight model of one drone
type Energy struct {
	InitialWeight   float64 // kg, airframe without batteries
	BatteryWeight   float64 // kg per battery
	BatteryCapacity float64 // Wh per battery
	MinBatteryCount int
	MaxBatteryCount int
}

// Validate checks the model is usable by the search
func (e Energy) Validate() error {
	if e.InitialWeight <= 0 {
		return fmt.Errorf("initial weight must be positive")
	}
	if e.BatteryWeight < 0 {
		return fmt.Errorf("battery weight must not be negative")
	}
	if e.BatteryCapacity <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if e.MinBatteryCount < 1 {
		return fmt.Errorf("min battery count must be at least 1")
	}
	if e.MaxBatteryCount < e.MinBatteryCount {
		return fmt.Errorf("max battery count (%d) is below min battery count (%d)", e.MaxBatteryCount, e.MinBatteryCount)
	}
	return nil
}

// Weight is the total drone weight carrying batteries batteries
func (e Energy) Weight(batteries int) float64 {
	return e.InitialWeight + float64(batteries)*e.BatteryWeight
}

// Consumption is the energy in Wh spent flying for seconds at speed with the given battery count.
// It grows with the square of speed and linearly with the total weight.
func (e Energy) Consumption(seconds, speed float64, batteries int) float64 {
	return seconds / 3600 * speed * speed * e.Weight(batteries) / 2
}

// MinBatteries returns the smallest battery count whose capacity covers a flight of seconds
// at speed. The scan starts at MinBatteryCount, not zero: a drone without batteries has no
// capacity at all. When no count within bounds is enough it returns MaxBatteryCount and false.
func (e Energy) MinBatteries(seconds, speed float64) (int, bool) {
	for b := e.MinBatteryCount; b <= e.MaxBatteryCount; b++ {
		if e.Consumption(seconds, speed, b) <= e.BatteryCapacity*float64(b) {
			return b, true
		}
	}
	return e.MaxBatteryCount, false
}

// Autonomy is the longest flight in seconds a drone carrying the maximum battery count
// can sustain at speed.
func (e Energy) Autonomy(speed float64) float64 {
	b := e.MaxBatteryCount
	return 3600 * e.BatteryCapacity * float64(b) / (speed * speed * e.Weight(b) / 2)
}
