// Command locgen generates a realistic synthetic GPS trace (a looped walk
// around a starting point) and posts it through the location ingest API.
// Useful for seeding demo data without a physical tracker.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/medispecs/medispecs-api/internal/pkg/geospatial"
)

const maxBatchSize = 100

type point struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp"`
	Accuracy  float64 `json:"accuracy"`
	Speed     float64 `json:"speed"`
}

func main() {
	apiURL := flag.String("api-url", "http://localhost:8080", "API base URL")
	deviceID := flag.String("device-id", "dev-demo", "device ID to generate for")
	lat := flag.Float64("lat", 43.2630, "starting latitude")
	lng := flag.Float64("lng", -2.9350, "starting longitude")
	date := flag.String("date", "", "trace date YYYY-MM-DD (default today)")
	duration := flag.Int("duration", 30, "walk duration in minutes")
	interval := flag.Int("interval", 60, "seconds between fixes")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	start := time.Now().UTC().Truncate(24 * time.Hour).Add(9 * time.Hour)
	if *date != "" {
		day, err := time.Parse("2006-01-02", *date)
		if err != nil {
			log.Fatalf("invalid date %q: %v", *date, err)
		}
		start = day.Add(9 * time.Hour)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	points := generateWalk(rng, *lat, *lng, start, *duration, *interval)
	log.Printf("generated %d points starting %s", len(points), start.Format(time.RFC3339))

	if err := upload(*apiURL, *deviceID, points); err != nil {
		log.Fatalf("upload: %v", err)
	}
	log.Printf("uploaded %d points for %s", len(points), *deviceID)
}

// generateWalk walks a loop of waypoints around the start at a natural pace,
// with per-fix jitter so traces do not repeat exactly.
func generateWalk(rng *rand.Rand, startLat, startLng float64, start time.Time, durationMin, intervalSec int) []point {
	waypoints := [][2]float64{
		{startLat, startLng},
		{startLat + 0.0015, startLng + 0.0005},
		{startLat + 0.0020, startLng + 0.0015},
		{startLat + 0.0015, startLng + 0.0025},
		{startLat, startLng + 0.0030},
		{startLat - 0.0015, startLng + 0.0025},
		{startLat - 0.0020, startLng + 0.0015},
		{startLat - 0.0015, startLng + 0.0005},
		{startLat, startLng},
	}

	steps := durationMin * 60 / intervalSec
	if steps < 2 {
		steps = 2
	}

	var points []point
	prevLat, prevLng := startLat, startLng
	for i := 0; i < steps; i++ {
		// Interpolate along the loop
		progress := float64(i) / float64(steps-1)
		segPos := progress * float64(len(waypoints)-1)
		seg := int(segPos)
		if seg >= len(waypoints)-1 {
			seg = len(waypoints) - 2
		}
		frac := segPos - float64(seg)

		lat := waypoints[seg][0] + (waypoints[seg+1][0]-waypoints[seg][0])*frac
		lng := waypoints[seg][1] + (waypoints[seg+1][1]-waypoints[seg][1])*frac

		// GPS jitter: a few meters either way
		lat += (rng.Float64() - 0.5) * 0.00008
		lng += (rng.Float64() - 0.5) * 0.00008

		ts := start.Add(time.Duration(i*intervalSec) * time.Second)

		speed := 0.0
		if i > 0 {
			dist := geospatial.Haversine(prevLat, prevLng, lat, lng)
			speed = dist / float64(intervalSec)
		}

		points = append(points, point{
			Lat:       lat,
			Lng:       lng,
			Timestamp: ts.Format(time.RFC3339),
			Accuracy:  5 + rng.Float64()*10,
			Speed:     speed,
		})
		prevLat, prevLng = lat, lng
	}
	return points
}

func upload(apiURL, deviceID string, points []point) error {
	client := &http.Client{Timeout: 30 * time.Second}

	for i := 0; i < len(points); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(points) {
			end = len(points)
		}

		body, err := json.Marshal(map[string]interface{}{
			"deviceId":  deviceID,
			"locations": points[i:end],
		})
		if err != nil {
			return err
		}

		resp, err := client.Post(apiURL+"/v1/locations", "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		if resp.StatusCode != 201 && resp.StatusCode != 207 {
			data, _ := json.Marshal(resp.Status)
			resp.Body.Close()
			return fmt.Errorf("batch %d: %s", i/maxBatchSize+1, data)
		}
		resp.Body.Close()
	}
	return nil
}
