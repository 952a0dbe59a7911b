// Command ingestor uploads GPS history from a CSV file through the location
// ingest API. Expected CSV header: timestamp,lat,lng,accuracy,speed.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const maxBatchSize = 100

type point struct {
	Lat       json.Number `json:"lat"`
	Lng       json.Number `json:"lng"`
	Timestamp string      `json:"timestamp"`
	Accuracy  json.Number `json:"accuracy,omitempty"`
	Speed     json.Number `json:"speed,omitempty"`
}

type ingestPayload struct {
	DeviceID  string  `json:"deviceId"`
	Locations []point `json:"locations"`
}

type ingestResponse struct {
	Message      string   `json:"message"`
	Count        int      `json:"count"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details"`
}

func main() {
	csvPath := flag.String("csv", "", "path to CSV file (required)")
	deviceID := flag.String("device-id", "", "device ID, e.g. dev-0042 (required)")
	apiURL := flag.String("api-url", "http://localhost:8080", "API base URL")
	batchSize := flag.Int("batch-size", maxBatchSize, "points per request (max 100)")
	flag.Parse()

	if *csvPath == "" || *deviceID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *batchSize < 1 || *batchSize > maxBatchSize {
		log.Fatalf("batch-size must be 1-%d", maxBatchSize)
	}

	points, err := parseCSV(*csvPath)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}
	if len(points) == 0 {
		log.Fatal("no usable rows in CSV")
	}
	log.Printf("parsed %d points from %s", len(points), *csvPath)

	client := &http.Client{Timeout: 30 * time.Second}
	uploaded, failed := 0, 0
	for i := 0; i < len(points); i += *batchSize {
		end := i + *batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[i:end]

		count, err := uploadBatch(client, *apiURL, *deviceID, batch)
		if err != nil {
			failed += len(batch)
			log.Printf("batch %d failed: %v", i / *batchSize+1, err)
			continue
		}
		uploaded += count
		failed += len(batch) - count
		log.Printf("batch %d: wrote %d/%d", i / *batchSize+1, count, len(batch))
	}

	log.Printf("done: %d uploaded, %d failed, %d total", uploaded, failed, len(points))
	if failed > 0 {
		os.Exit(1)
	}
}

func parseCSV(path string) ([]point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"lat", "lng"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	var points []point
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		lat := field(row, col, "lat")
		lng := field(row, col, "lng")
		if !isNumber(lat) || !isNumber(lng) {
			continue
		}

		p := point{Lat: json.Number(lat), Lng: json.Number(lng)}

		if ts := field(row, col, "timestamp"); ts != "" {
			p.Timestamp = ts
		} else {
			p.Timestamp = time.Now().UTC().Format(time.RFC3339)
		}
		if acc := field(row, col, "accuracy"); isNumber(acc) {
			p.Accuracy = json.Number(acc)
		}
		if spd := field(row, col, "speed"); isNumber(spd) {
			p.Speed = json.Number(spd)
		}

		points = append(points, p)
	}
	return points, nil
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func uploadBatch(client *http.Client, apiURL, deviceID string, batch []point) (int, error) {
	body, err := json.Marshal(ingestPayload{DeviceID: deviceID, Locations: batch})
	if err != nil {
		return 0, err
	}

	resp, err := client.Post(apiURL+"/v1/locations", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var result ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	switch resp.StatusCode {
	case 201:
		return result.Count, nil
	case 207:
		for _, detail := range result.ErrorDetails {
			log.Printf("  partial: %s", detail)
		}
		return result.Count, nil
	default:
		return 0, fmt.Errorf("status %d: %s", resp.StatusCode, result.Message)
	}
}
