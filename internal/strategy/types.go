package strategy

import "time"

// Direction of a trade signal.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionLong
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	default:
		return "NONE"
	}
}

// Signal is a directional entry signal produced from a confirmed candle.
// It is consumed immediately by the engine and never persisted.
type Signal struct {
	Direction Direction
	Price     float64
	Time      time.Time
}
