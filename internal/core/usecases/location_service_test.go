package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
)

// --- Mock LocationRepository ---

type mockLocationRepo struct {
	putFn   func(ctx context.Context, rec *domain.LocationRecord) error
	queryFn func(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error)

	puts    []*domain.LocationRecord
	queries []string
}

func (m *mockLocationRepo) Put(ctx context.Context, rec *domain.LocationRecord) error {
	m.puts = append(m.puts, rec)
	if m.putFn != nil {
		return m.putFn(ctx, rec)
	}
	return nil
}

func (m *mockLocationRepo) QueryPartition(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error) {
	m.queries = append(m.queries, day)
	if m.queryFn != nil {
		return m.queryFn(ctx, deviceID, day, limit)
	}
	return nil, nil
}

type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := f.store[key]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	f.store[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func rawPoint(lat, lng, ts string) domain.RawLocation {
	p := domain.RawLocation{}
	if lat != "" {
		p.Lat = json.RawMessage(lat)
	}
	if lng != "" {
		p.Lng = json.RawMessage(lng)
	}
	if ts != "" {
		p.Timestamp = json.RawMessage(ts)
	}
	return p
}

// --- Ingest ---

func TestLocationService_Ingest_FullSuccess(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	points := make([]domain.RawLocation, 10)
	for i := range points {
		points[i] = rawPoint("1.26", "103.84", fmt.Sprintf(`"2024-01-15T08:00:%02dZ"`, i))
	}

	res, err := svc.Ingest(context.Background(), "d_123", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Written != 10 {
		t.Errorf("expected 10 written, got %d", res.Written)
	}
	if len(res.Errors) != 0 || res.Skipped != 0 {
		t.Errorf("expected clean result, got %+v", res)
	}
	if len(repo.puts) != 10 {
		t.Errorf("expected 10 store puts, got %d", len(repo.puts))
	}
}

func TestLocationService_Ingest_MissingDeviceID(t *testing.T) {
	svc := usecases.NewLocationService(&mockLocationRepo{}, nil, nil)
	_, err := svc.Ingest(context.Background(), "", []domain.RawLocation{rawPoint("1", "2", "")})
	if !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLocationService_Ingest_BatchSizeLimits(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	if _, err := svc.Ingest(context.Background(), "d_123", nil); !domain.IsValidation(err) {
		t.Errorf("empty batch: expected validation error, got %v", err)
	}

	big := make([]domain.RawLocation, 101)
	for i := range big {
		big[i] = rawPoint("1.26", "103.84", "")
	}
	if _, err := svc.Ingest(context.Background(), "d_123", big); !domain.IsValidation(err) {
		t.Errorf("oversized batch: expected validation error, got %v", err)
	}
	if len(repo.puts) != 0 {
		t.Errorf("store must not be touched before validation, got %d puts", len(repo.puts))
	}
}

func TestLocationService_Ingest_SkipsBadCoordinates(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	points := []domain.RawLocation{
		rawPoint("1.26", "103.84", ""),
		rawPoint(`"not-a-number"`, "103.84", ""),
		rawPoint("", "103.84", ""), // missing lat
		rawPoint("1.27", "103.85", ""),
	}

	res, err := svc.Ingest(context.Background(), "d_123", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Written != 2 {
		t.Errorf("expected 2 written, got %d", res.Written)
	}
	if res.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", res.Skipped)
	}
	if len(repo.puts) != 2 {
		t.Errorf("skipped points must never reach the store, got %d puts", len(repo.puts))
	}
}

func TestLocationService_Ingest_AllPointsInvalid(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	points := []domain.RawLocation{
		rawPoint(`"x"`, "103.84", ""),
		rawPoint("", "", ""),
	}
	_, err := svc.Ingest(context.Background(), "d_123", points)
	if !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(repo.puts) != 0 {
		t.Errorf("expected no store writes, got %d", len(repo.puts))
	}
}

func TestLocationService_Ingest_AllWritesFail(t *testing.T) {
	repo := &mockLocationRepo{
		putFn: func(ctx context.Context, rec *domain.LocationRecord) error {
			return errors.New("store unavailable")
		},
	}
	svc := usecases.NewLocationService(repo, nil, nil)

	points := make([]domain.RawLocation, 8)
	for i := range points {
		points[i] = rawPoint("1.26", "103.84", "")
	}

	res, err := svc.Ingest(context.Background(), "d_123", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.AllFailed() {
		t.Errorf("expected total failure, got %+v", res)
	}
	if len(res.Errors) != 8 {
		t.Errorf("expected 8 errors, got %d", len(res.Errors))
	}
	if details := res.ErrorDetails(); len(details) != 6 {
		// first 5 plus the "... and N more" trailer
		t.Errorf("expected 6 detail entries, got %d: %v", len(details), details)
	}
	if plain := res.TruncatedErrors(); len(plain) != 5 {
		t.Errorf("expected 5 truncated entries, got %d: %v", len(plain), plain)
	}
}

func TestLocationService_Ingest_PartialSuccess(t *testing.T) {
	n := 0
	repo := &mockLocationRepo{
		putFn: func(ctx context.Context, rec *domain.LocationRecord) error {
			n++
			if n%2 == 0 {
				return errors.New("throttled")
			}
			return nil
		},
	}
	svc := usecases.NewLocationService(repo, nil, nil)

	points := make([]domain.RawLocation, 10)
	for i := range points {
		points[i] = rawPoint("1.26", "103.84", "")
	}

	res, err := svc.Ingest(context.Background(), "d_123", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Partial() {
		t.Fatalf("expected partial success, got %+v", res)
	}
	if res.Written+len(res.Errors) != 10 {
		t.Errorf("written (%d) + errors (%d) must equal valid points (10)", res.Written, len(res.Errors))
	}
}

func TestLocationService_Ingest_MidnightSplitsPartitions(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	points := []domain.RawLocation{
		rawPoint("1.26", "103.84", `"2024-01-15T23:59:59Z"`),
		rawPoint("1.27", "103.85", `"2024-01-16T00:00:01Z"`),
	}
	if _, err := svc.Ingest(context.Background(), "d_123", points); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.puts) != 2 {
		t.Fatalf("expected 2 puts, got %d", len(repo.puts))
	}
	if repo.puts[0].Day != "20240115" || repo.puts[1].Day != "20240116" {
		t.Errorf("expected days 20240115/20240116, got %s/%s", repo.puts[0].Day, repo.puts[1].Day)
	}
	if repo.puts[0].PartitionKey() != "device:d_123:date:20240115" {
		t.Errorf("unexpected partition key %s", repo.puts[0].PartitionKey())
	}
}

func TestLocationService_Ingest_TimestampForms(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	before := time.Now().UTC()
	points := []domain.RawLocation{
		// ISO with Z, ISO without zone, epoch seconds: all resolve to the
		// same instant. Garbage and absent fall back to ingestion time.
		rawPoint("1", "2", `"2024-01-15T08:30:00Z"`),
		rawPoint("1", "2", `"2024-01-15T08:30:00"`),
		rawPoint("1", "2", `1705307400`),
		rawPoint("1", "2", `"yesterday-ish"`),
		rawPoint("1", "2", ""),
	}
	if _, err := svc.Ingest(context.Background(), "d_123", points); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC).UnixMilli()
	for i := 0; i < 3; i++ {
		if repo.puts[i].TSMillis != want {
			t.Errorf("point %d: ts = %d, want %d", i, repo.puts[i].TSMillis, want)
		}
	}
	for i := 3; i < 5; i++ {
		if repo.puts[i].TSMillis < before.UnixMilli() {
			t.Errorf("point %d: fallback timestamp %d predates ingestion", i, repo.puts[i].TSMillis)
		}
	}
}

func TestLocationService_Ingest_MillisecondEpochFallsBack(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	before := time.Now().UTC()
	// 1705307400000 is a millisecond epoch. Read as seconds it lands in the
	// year 56009, which would produce a day partition like "560090115".
	points := []domain.RawLocation{rawPoint("1", "2", `1705307400000`)}
	res, err := svc.Ingest(context.Background(), "d_123", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Written != 1 {
		t.Fatalf("expected point written, got %+v", res)
	}
	rec := repo.puts[0]
	if rec.TSMillis < before.UnixMilli() {
		t.Errorf("ts = %d, want fallback to ingestion instant", rec.TSMillis)
	}
	if len(rec.Day) != 8 || rec.Day != time.UnixMilli(rec.TSMillis).UTC().Format("20060102") {
		t.Errorf("day = %q, want YYYYMMDD of the resolved instant", rec.Day)
	}
}

func TestLocationService_Ingest_SkipsNonFiniteCoordinates(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	// A NaN coordinate must never reach the store: once written it cannot
	// be marshalled back out and every read of that partition fails.
	points := []domain.RawLocation{
		rawPoint(`"NaN"`, "103.84", `"2024-01-15T08:30:00Z"`),
		rawPoint("1.26", `"Inf"`, `"2024-01-15T08:30:00Z"`),
		rawPoint("1.26", "103.84", `"2024-01-15T08:30:00Z"`),
	}
	res, err := svc.Ingest(context.Background(), "d_123", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Written != 1 || res.Skipped != 2 {
		t.Fatalf("written = %d, skipped = %d, want 1 and 2", res.Written, res.Skipped)
	}
	if len(repo.puts) != 1 || repo.puts[0].Lat != "1.26" {
		t.Fatalf("only the finite point should be written, got %d puts", len(repo.puts))
	}
}

func TestLocationService_Ingest_OptionalFieldsDropped(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	p := rawPoint("1.26", "103.84", "")
	p.Accuracy = json.RawMessage(`10.5`)
	p.Speed = json.RawMessage(`"fast"`) // unparseable: dropped, point kept

	res, err := svc.Ingest(context.Background(), "d_123", []domain.RawLocation{p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Written != 1 {
		t.Fatalf("expected point written despite bad speed, got %+v", res)
	}
	if repo.puts[0].Accuracy != "10.5" {
		t.Errorf("accuracy = %q, want 10.5", repo.puts[0].Accuracy)
	}
	if !repo.puts[0].Speed.IsZero() {
		t.Errorf("speed should be absent, got %q", repo.puts[0].Speed)
	}
}

// --- Query ---

func recAt(day string, ts int64) domain.LocationRecord {
	return domain.LocationRecord{
		DeviceID:     "d_123",
		Day:          day,
		TSMillis:     ts,
		Lat:          "1.26",
		Lng:          "103.84",
		TimestampISO: time.UnixMilli(ts).UTC().Format(time.RFC3339Nano),
	}
}

func TestLocationService_Query_SingleDay(t *testing.T) {
	repo := &mockLocationRepo{
		queryFn: func(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error) {
			if day != "20240115" {
				t.Errorf("expected day 20240115, got %s", day)
			}
			if limit != 500 {
				t.Errorf("expected default limit 500, got %d", limit)
			}
			return []domain.LocationRecord{recAt(day, 1000), recAt(day, 2000)}, nil
		},
	}
	svc := usecases.NewLocationService(repo, nil, nil)

	points, err := svc.Query(context.Background(), usecases.LocationQuery{DeviceID: "d_123", Date: "20240115"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Timestamp >= points[1].Timestamp {
		t.Errorf("points not in ascending order: %s, %s", points[0].Timestamp, points[1].Timestamp)
	}
}

func TestLocationService_Query_MissingDeviceID(t *testing.T) {
	svc := usecases.NewLocationService(&mockLocationRepo{}, nil, nil)
	_, err := svc.Query(context.Background(), usecases.LocationQuery{Date: "20240115"})
	if !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLocationService_Query_RangeMergesAndResorts(t *testing.T) {
	// Each partition is internally ascending, but later days hold earlier
	// sort positions once merged; global order must still hold.
	data := map[string][]domain.LocationRecord{
		"20240101": {recAt("20240101", 100), recAt("20240101", 900)},
		"20240102": {recAt("20240102", 86400100), recAt("20240102", 86400200)},
		"20240103": {recAt("20240103", 172800100)},
	}
	repo := &mockLocationRepo{
		queryFn: func(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error) {
			if limit != 500/3 {
				t.Errorf("expected per-day share %d, got %d", 500/3, limit)
			}
			return data[day], nil
		},
	}
	svc := usecases.NewLocationService(repo, nil, nil)

	points, err := svc.Query(context.Background(), usecases.LocationQuery{
		DeviceID: "d_123",
		FromDate: "20240101",
		ToDate:   "20240103",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 merged points, got %d", len(points))
	}
	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp }) {
		t.Errorf("merged range not globally sorted: %v", points)
	}

	sort.Strings(repo.queries)
	wantDays := []string{"20240101", "20240102", "20240103"}
	for i, d := range wantDays {
		if repo.queries[i] != d {
			t.Errorf("expected partition %s queried, got %s", d, repo.queries[i])
		}
	}
}

func TestLocationService_Query_InvalidRange(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	cases := []usecases.LocationQuery{
		{DeviceID: "d_123", FromDate: "2024-01-01", ToDate: "20240103"},
		{DeviceID: "d_123", FromDate: "20240101", ToDate: "garbage"},
		{DeviceID: "d_123", FromDate: "20240103", ToDate: "20240101"}, // inverted
	}
	for _, q := range cases {
		if _, err := svc.Query(context.Background(), q); !domain.IsValidation(err) {
			t.Errorf("%+v: expected validation error, got %v", q, err)
		}
	}
	if len(repo.queries) != 0 {
		t.Errorf("store must not be touched on invalid range, got %d queries", len(repo.queries))
	}
}

func TestLocationService_Query_DefaultsToToday(t *testing.T) {
	repo := &mockLocationRepo{}
	svc := usecases.NewLocationService(repo, nil, nil)

	if _, err := svc.Query(context.Background(), usecases.LocationQuery{DeviceID: "d_123"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	today := time.Now().UTC().Format("20060102")
	if len(repo.queries) != 1 || repo.queries[0] != today {
		t.Errorf("expected single query for %s, got %v", today, repo.queries)
	}
}

func TestLocationService_Query_ReadErrorPropagates(t *testing.T) {
	repo := &mockLocationRepo{
		queryFn: func(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error) {
			return nil, errors.New("store down")
		},
	}
	svc := usecases.NewLocationService(repo, nil, nil)

	_, err := svc.Query(context.Background(), usecases.LocationQuery{DeviceID: "d_123", Date: "20240115"})
	if err == nil || domain.IsValidation(err) {
		t.Errorf("expected internal error, got %v", err)
	}
}

// --- Latest ---

func TestLocationService_Latest_ReadsProcessorCache(t *testing.T) {
	cache := newFakeCache()
	rec := recAt("20240115", 1705307400000)
	data, _ := json.Marshal(rec)
	// Same key shape the stream processor writes.
	cache.store["latest:d_123"] = data

	svc := usecases.NewLocationService(&mockLocationRepo{}, nil, cache)
	p, err := svc.Latest(context.Background(), "d_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != "1.26" || p.Lng != "103.84" {
		t.Errorf("point = %+v", p)
	}
	if p.Timestamp != rec.TimestampISO {
		t.Errorf("timestamp = %q, want %q", p.Timestamp, rec.TimestampISO)
	}
}

func TestLocationService_Latest_MissIsNotFound(t *testing.T) {
	svc := usecases.NewLocationService(&mockLocationRepo{}, nil, newFakeCache())
	if _, err := svc.Latest(context.Background(), "d_silent"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocationService_Latest_NoCacheConfigured(t *testing.T) {
	svc := usecases.NewLocationService(&mockLocationRepo{}, nil, nil)
	if _, err := svc.Latest(context.Background(), "d_123"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocationService_Latest_MissingDeviceID(t *testing.T) {
	svc := usecases.NewLocationService(&mockLocationRepo{}, nil, newFakeCache())
	if _, err := svc.Latest(context.Background(), ""); !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLocationService_Query_DropsRecordsWithoutCoordinates(t *testing.T) {
	repo := &mockLocationRepo{
		queryFn: func(ctx context.Context, deviceID, day string, limit int) ([]domain.LocationRecord, error) {
			broken := recAt(day, 2000)
			broken.Lat = ""
			return []domain.LocationRecord{recAt(day, 1000), broken}, nil
		},
	}
	svc := usecases.NewLocationService(repo, nil, nil)

	points, err := svc.Query(context.Background(), usecases.LocationQuery{DeviceID: "d_123", Date: "20240115"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("expected coordinate-less record excluded, got %d points", len(points))
	}
}
