package nats

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type outletChangedEvent struct {
	OutletID  int64     `json:"outlet_id"`
	ChangedAt time.Time `json:"changed_at"`
}

func encodeOutletChanged(event outletChangedEvent) ([]byte, error) {
	if event.OutletID <= 0 {
		return nil, fmt.Errorf("outlet changed event: invalid outlet id %d", event.OutletID)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal outlet changed event: %w", err)
	}
	return data, nil
}

// decodeOutletChanged also accepts a bare decimal id, which is what
// hand-published events (nats pub outlets.changed 42) look like.
func decodeOutletChanged(data []byte) (outletChangedEvent, error) {
	raw := strings.TrimSpace(string(data))
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if id <= 0 {
			return outletChangedEvent{}, fmt.Errorf("invalid outlet id %d", id)
		}
		return outletChangedEvent{OutletID: id}, nil
	}

	var event outletChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return outletChangedEvent{}, fmt.Errorf("decode outlet changed event: %w", err)
	}
	if event.OutletID <= 0 {
		return outletChangedEvent{}, fmt.Errorf("invalid outlet id %d", event.OutletID)
	}
	return event, nil
}
