package ws

import "sync"

// occupancyFrame is the wire shape for a live occupancy update. Percent is
// not clamped; at_capacity flips at 100%.
type occupancyFrame struct {
	Type       string  `json:"type"`
	LocationID uint    `json:"location_id"`
	Current    int     `json:"current"`
	Capacity   int     `json:"capacity"`
	Percent    float64 `json:"percent"`
	AtCapacity bool    `json:"at_capacity"`
}

// OccupancyHub fans live attendee counts out to every connected client and
// remembers the latest count per location for the initial frame.
type OccupancyHub struct {
	Hub *Hub

	mu     sync.RWMutex
	latest map[uint]occupancyFrame
}

func NewOccupancyHub() *OccupancyHub {
	return &OccupancyHub{
		Hub:    NewHub(),
		latest: make(map[uint]occupancyFrame),
	}
}

// BroadcastOccupancy implements the attendance service's broadcaster hook.
func (h *OccupancyHub) BroadcastOccupancy(locationID uint, current, capacity int) {
	frame := occupancyFrame{
		Type:       "occupancy",
		LocationID: locationID,
		Current:    current,
		Capacity:   capacity,
	}
	if capacity > 0 {
		frame.Percent = float64(current) / float64(capacity) * 100
	}
	frame.AtCapacity = frame.Percent >= 100
	h.mu.Lock()
	h.latest[locationID] = frame
	h.mu.Unlock()
	h.Hub.BroadcastAll(frame)
}

// Snapshot returns the latest frame for every location that has broadcast
// since startup.
func (h *OccupancyHub) Snapshot() []occupancyFrame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	frames := make([]occupancyFrame, 0, len(h.latest))
	for _, f := range h.latest {
		frames = append(frames, f)
	}
	return frames
}
