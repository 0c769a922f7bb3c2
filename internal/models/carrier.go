package models

import "time"

// Carrier segments, stored as displayed.
const (
	SegmentOnline   = "Loja Virtual"
	SegmentPhysical = "Loja Física"
	SegmentBoth     = "Ambos"
)

var AllSegments = []string{SegmentOnline, SegmentPhysical, SegmentBoth}

func IsKnownSegment(segment string) bool {
	for _, s := range AllSegments {
		if s == segment {
			return true
		}
	}
	return false
}

type Carrier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Segment   string    `json:"segment"`
	Color     string    `json:"color"` // hex, e.g. "#3b82f6"
	CreatedAt time.Time `json:"createdAt"`
}
