package domain

import (
	"encoding/json"
	"fmt"
)

// RawLocation is one GPS sample as submitted by a device. Coordinates and
// timestamps arrive as either JSON numbers or strings depending on the
// client, so fields stay raw until validation.
type RawLocation struct {
	Lat          json.RawMessage `json:"lat"`
	Lng          json.RawMessage `json:"lng"`
	Timestamp    json.RawMessage `json:"timestamp"`
	TimestampISO json.RawMessage `json:"timestampIso"`
	Accuracy     json.RawMessage `json:"accuracy"`
	Speed        json.RawMessage `json:"speed"`
}

// LocationRecord is the persisted form of a GPS sample. Each record belongs
// to exactly one (device, UTC calendar date) partition; TSMillis orders
// records within the partition.
type LocationRecord struct {
	DeviceID     string
	Day          string // YYYYMMDD, derived from the point timestamp in UTC
	TSMillis     int64
	Lat          Decimal
	Lng          Decimal
	Accuracy     Decimal // empty when not reported
	Speed        Decimal // empty when not reported
	TimestampISO string
}

// PartitionKey returns the logical partition identifier for the record.
func (r *LocationRecord) PartitionKey() string {
	return fmt.Sprintf("device:%s:date:%s", r.DeviceID, r.Day)
}

// LocationPoint is the query-time projection of a stored record.
type LocationPoint struct {
	Lat       Decimal `json:"lat"`
	Lng       Decimal `json:"lng"`
	Timestamp string  `json:"timestamp"`
	Accuracy  Decimal `json:"accuracy,omitempty"`
	Speed     Decimal `json:"speed,omitempty"`
}

// Project converts a record to its API shape. It reports false for records
// missing coordinates, which are excluded from query output.
func (r *LocationRecord) Project() (LocationPoint, bool) {
	if r.Lat.IsZero() || r.Lng.IsZero() {
		return LocationPoint{}, false
	}
	return LocationPoint{
		Lat:       r.Lat,
		Lng:       r.Lng,
		Timestamp: r.TimestampISO,
		Accuracy:  r.Accuracy,
		Speed:     r.Speed,
	}, true
}

// GeoPoint is a plain float coordinate pair for distance math and synthetic
// data generation. The ingestion path never uses it.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
