package domain

import "time"

// UnknownOutletName is shown when an upstream record carries no name.
const UnknownOutletName = "Unknown"

// Outlet is a snapshot of one directory entry as stored upstream.
// OperatingHours is free text and is the source of truth for opening times.
type Outlet struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	OperatingHours string    `json:"operating_hours,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	WazeLink       string    `json:"waze_link,omitempty"`
	UpdatedAt      time.Time `json:"-"`
}

// DisplayName returns the outlet name or UnknownOutletName when it is blank.
func (o Outlet) DisplayName() string {
	if o.Name == "" {
		return UnknownOutletName
	}
	return o.Name
}
