package qdrant

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

type queryPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func decodeQueryPoints(r io.Reader) ([]queryPoint, error) {
	var resp struct {
		Result struct {
			Points []queryPoint `json:"points"`
		} `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return resp.Result.Points, nil
}

// pointID derives a stable point id so that re-indexing an outlet overwrites it.
func pointID(o domain.Outlet) string {
	key := "outlet:" + strconv.FormatInt(o.ID, 10)
	if o.ID == 0 {
		key = "outlet:" + o.Name + "|" + o.Address
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func outletPayload(o domain.Outlet) map[string]any {
	payload := map[string]any{
		"outlet_id":       o.ID,
		"name":            o.Name,
		"address":         o.Address,
		"operating_hours": o.OperatingHours,
		"waze_link":       o.WazeLink,
	}
	if o.Latitude != nil {
		payload["latitude"] = *o.Latitude
	}
	if o.Longitude != nil {
		payload["longitude"] = *o.Longitude
	}
	return payload
}

// outletFromPayload tolerates missing or mistyped fields.
func outletFromPayload(payload map[string]any) domain.Outlet {
	name := getStringPayload(payload, "name")
	if name == "" {
		name = domain.UnknownOutletName
	}
	return domain.Outlet{
		ID:             getIntPayload(payload, "outlet_id"),
		Name:           name,
		Address:        getStringPayload(payload, "address"),
		OperatingHours: getStringPayload(payload, "operating_hours"),
		Latitude:       getFloatPayload(payload, "latitude"),
		Longitude:      getFloatPayload(payload, "longitude"),
		WazeLink:       getStringPayload(payload, "waze_link"),
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getFloatPayload(payload map[string]any, key string) *float64 {
	switch v := payload[key].(type) {
	case float64:
		return &v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func getIntPayload(payload map[string]any, key string) int64 {
	if f := getFloatPayload(payload, key); f != nil {
		return int64(*f)
	}
	return 0
}
