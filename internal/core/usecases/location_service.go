package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/ports"
)

const (
	maxBatchSize      = 100
	defaultQueryLimit = 500
	maxErrorDetails   = 5
	dayFormat         = "20060102"
)

// LocationService validates and writes batches of GPS points into daily
// partitions and answers single-day or multi-day range queries.
type LocationService struct {
	locations ports.LocationRepository
	publisher ports.EventPublisher
	cache     ports.CacheService
}

// NewLocationService creates a new LocationService. publisher and cache may
// be nil; both are best-effort.
func NewLocationService(locations ports.LocationRepository, publisher ports.EventPublisher, cache ports.CacheService) *LocationService {
	return &LocationService{locations: locations, publisher: publisher, cache: cache}
}

// IngestResult accounts for one batch write. Written + len(Errors) equals
// the number of points that survived coordinate validation; Skipped counts
// points dropped silently for missing or unparseable coordinates.
type IngestResult struct {
	Written int
	Skipped int
	Errors  []string
}

// AllFailed reports whether no write succeeded despite valid points.
func (r *IngestResult) AllFailed() bool { return r.Written == 0 && len(r.Errors) > 0 }

// Partial reports whether some but not all writes succeeded.
func (r *IngestResult) Partial() bool { return r.Written > 0 && len(r.Errors) > 0 }

// ErrorDetails returns at most the first five errors, with a trailer noting
// how many were omitted.
func (r *IngestResult) ErrorDetails() []string {
	if len(r.Errors) <= maxErrorDetails {
		return r.Errors
	}
	details := make([]string, maxErrorDetails, maxErrorDetails+1)
	copy(details, r.Errors[:maxErrorDetails])
	return append(details, fmt.Sprintf("... and %d more errors", len(r.Errors)-maxErrorDetails))
}

// TruncatedErrors returns at most the first five errors with no trailer.
// The total-failure response uses this plain form.
func (r *IngestResult) TruncatedErrors() []string {
	if len(r.Errors) <= maxErrorDetails {
		return r.Errors
	}
	return r.Errors[:maxErrorDetails]
}

// Ingest validates a batch of 1-100 raw points and writes each valid point
// as an independent put. A point with missing or unparseable coordinates is
// skipped silently; a failed store write is recorded but never aborts the
// remaining batch.
func (s *LocationService) Ingest(ctx context.Context, deviceID string, points []domain.RawLocation) (*IngestResult, error) {
	if deviceID == "" {
		return nil, domain.Validationf("deviceId is required")
	}
	if len(points) == 0 {
		return nil, domain.Validationf("locations array cannot be empty")
	}
	if len(points) > maxBatchSize {
		return nil, domain.Validationf("maximum %d locations per batch", maxBatchSize)
	}

	now := time.Now().UTC()
	res := &IngestResult{}

	records := make([]*domain.LocationRecord, 0, len(points))
	for _, p := range points {
		rec, ok := buildRecord(deviceID, p, now)
		if !ok {
			res.Skipped++
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, domain.Validationf("no valid locations to write")
	}

	for i, rec := range records {
		if err := s.locations.Put(ctx, rec); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		res.Written++
		if s.publisher != nil {
			_ = s.publisher.PublishLocation(ctx, rec)
		}
	}

	return res, nil
}

// buildRecord converts one raw point into its stored form. It reports false
// when lat or lng is missing or not a number.
func buildRecord(deviceID string, p domain.RawLocation, now time.Time) (*domain.LocationRecord, bool) {
	lat, ok := domain.ParseDecimal(p.Lat)
	if !ok {
		return nil, false
	}
	lng, ok := domain.ParseDecimal(p.Lng)
	if !ok {
		return nil, false
	}

	raw := p.Timestamp
	if len(raw) == 0 {
		raw = p.TimestampISO
	}
	ts := resolveTimestamp(raw, now)

	rec := &domain.LocationRecord{
		DeviceID:     deviceID,
		Day:          ts.Format(dayFormat),
		TSMillis:     ts.UnixMilli(),
		Lat:          lat,
		Lng:          lng,
		TimestampISO: ts.Format(time.RFC3339Nano),
	}

	// Optional fields are dropped, not rejected, when unparseable.
	if acc, ok := domain.ParseDecimal(p.Accuracy); ok {
		rec.Accuracy = acc
	}
	if spd, ok := domain.ParseDecimal(p.Speed); ok {
		rec.Speed = spd
	}
	return rec, true
}

// resolveTimestamp normalizes a raw timestamp value (ISO-8601 string with or
// without a trailing Z, or a numeric epoch in seconds) to a UTC instant,
// falling back to the ingestion instant on any parse failure.
func resolveTimestamp(raw json.RawMessage, now time.Time) time.Time {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return now
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return now
		}
		for _, layout := range []string{
			time.RFC3339Nano,
			"2006-01-02T15:04:05.999999999", // no zone: treated as UTC
			"2006-01-02T15:04:05",
		} {
			if ts, err := time.Parse(layout, str); err == nil {
				return ts.UTC()
			}
		}
		return now
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		ts := time.UnixMilli(int64(secs * 1000)).UTC()
		// Epoch values are seconds. A millisecond epoch pasted in here would
		// land tens of thousands of years out and produce a garbage day
		// partition, so anything outside a plausible window falls back to
		// the ingestion instant.
		if ts.Year() >= 2000 && ts.Year() <= 2100 {
			return ts
		}
	}
	return now
}

// LocationQuery selects one of three query modes: single day when Date is
// set, range when FromDate and ToDate are both set, otherwise the current
// UTC day.
type LocationQuery struct {
	DeviceID string
	Date     string // YYYYMMDD
	FromDate string // YYYYMMDD
	ToDate   string // YYYYMMDD
	Limit    int
}

// Query returns points ordered oldest-first. Range mode fans out one
// partition query per calendar day, each with an even share of the limit,
// then re-sorts the merged result: per-partition order alone does not hold
// across partitions.
func (s *LocationService) Query(ctx context.Context, q LocationQuery) ([]domain.LocationPoint, error) {
	if q.DeviceID == "" {
		return nil, domain.Validationf("deviceId is required")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	switch {
	case q.Date != "":
		return s.queryDay(ctx, q.DeviceID, q.Date, limit)
	case q.FromDate != "" && q.ToDate != "":
		return s.queryRange(ctx, q.DeviceID, q.FromDate, q.ToDate, limit)
	default:
		today := time.Now().UTC().Format(dayFormat)
		return s.queryDay(ctx, q.DeviceID, today, limit)
	}
}

func (s *LocationService) queryDay(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationPoint, error) {
	// Past days are immutable, so their results cache well. Today keeps
	// filling in and is always read from the store.
	today := time.Now().UTC().Format(dayFormat)
	cacheKey := fmt.Sprintf("locations:%s:%s:%d", deviceID, day, limit)
	if s.cache != nil && day != today {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var points []domain.LocationPoint
			if err := json.Unmarshal(data, &points); err == nil {
				return points, nil
			}
		}
	}

	records, err := s.locations.QueryPartition(ctx, deviceID, day, limit)
	if err != nil {
		return nil, fmt.Errorf("query partition %s: %w", day, err)
	}
	points := project(records)

	if s.cache != nil && day != today {
		if data, err := json.Marshal(points); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	return points, nil
}

func (s *LocationService) queryRange(ctx context.Context, deviceID, fromDate, toDate string, limit int) ([]domain.LocationPoint, error) {
	start, err := time.Parse(dayFormat, fromDate)
	if err != nil {
		return nil, domain.Validationf("fromDate and toDate must be YYYYMMDD format")
	}
	end, err := time.Parse(dayFormat, toDate)
	if err != nil {
		return nil, domain.Validationf("fromDate and toDate must be YYYYMMDD format")
	}
	if start.After(end) {
		return nil, domain.Validationf("fromDate must be <= toDate")
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayFormat))
	}
	perDay := limit / len(days)

	// Partition queries are independent; fan out and join before the sort.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		all      []domain.LocationRecord
		queryErr error
	)
	for _, day := range days {
		wg.Add(1)
		go func(day string) {
			defer wg.Done()
			records, err := s.locations.QueryPartition(ctx, deviceID, day, perDay)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if queryErr == nil {
					queryErr = fmt.Errorf("query partition %s: %w", day, err)
				}
				return
			}
			all = append(all, records...)
		}(day)
	}
	wg.Wait()
	if queryErr != nil {
		return nil, queryErr
	}

	sort.Slice(all, func(i, j int) bool { return all[i].TSMillis < all[j].TSMillis })
	return project(all), nil
}

// Latest returns the most recent fix for a device from the cache the stream
// processor maintains under latest:{deviceId}. A miss is a plain not-found:
// the device either never reported or last reported beyond the cache TTL.
func (s *LocationService) Latest(ctx context.Context, deviceID string) (*domain.LocationPoint, error) {
	if deviceID == "" {
		return nil, domain.Validationf("deviceId is required")
	}
	if s.cache == nil {
		return nil, domain.ErrNotFound
	}

	data, err := s.cache.Get(ctx, "latest:"+deviceID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var rec domain.LocationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode latest fix for %s: %w", deviceID, err)
	}
	p, ok := rec.Project()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func project(records []domain.LocationRecord) []domain.LocationPoint {
	points := make([]domain.LocationPoint, 0, len(records))
	for i := range records {
		if p, ok := records[i].Project(); ok {
			points = append(points, p)
		}
	}
	return points
}
