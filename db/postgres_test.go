package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/cameza/transfer_manager/containers"
	"github.com/cameza/transfer_manager/model"
)

var (
	// A test global db instance to use for all of the tests instead of setting up a new one each time.
	testDB DB

	// the container is kept around so individual tests can open extra
	// connections with their own clock.
	container *containers.DBContainer

	// a counter to generate new transfer ids for each test. To help keep them separated.
	idCtr = int32(0)
)

// TestMain controls the main for the tests and allows for setup and shutdown of the tests
func TestMain(m *testing.M) {
	container = containers.NewDBContainer()

	clock := clock.New()

	defer func() {
		// Catch all panics to make sure the shutdown is successfully run
		if r := recover(); r != nil {
			if container != nil {
				container.Shutdown()
			}
			fmt.Println("panic")
		}
	}()

	var err error
	testDB, err = New(context.Background(), container.ConnectionString(), clock)
	if err != nil {
		fmt.Printf("error connecting to db: %v", err)
		os.Exit(-1)
	}

	code := m.Run()
	container.Shutdown()
	os.Exit(code)
}

func TestDB_saveAndLoad(t *testing.T) {
	ctx := context.Background()
	tr := getTransfer()

	err := testDB.SaveTransfer(ctx, tr)
	assertFatalf(t, err == nil, "error saving transfer: %v", err)
	assertFatalf(t, tr.ID != 0, "expected transfer to get an id on insert")

	res, err := testDB.GetTransferByAPIID(ctx, tr.APITransferID)
	assertFatalf(t, err == nil, "error retrieving transfer: %v", err)

	assertEquals(t, "ID", tr.ID, res.ID)
	assertEquals(t, "APITransferID", tr.APITransferID, res.APITransferID)
	assertEquals(t, "PlayerName", tr.PlayerName, res.PlayerName)
	assertEquals(t, "FromClub", tr.FromClub, res.FromClub)
	assertEquals(t, "ToClub", tr.ToClub, res.ToClub)
	assertEquals(t, "League", tr.League, res.League)
	assertEquals(t, "Type", tr.Type, res.Type)
	assertEquals(t, "FeeCents", tr.FeeCents, res.FeeCents)
	assertEquals(t, "Window", tr.Window, res.Window)
	assertEquals(t, "Season", tr.Season, res.Season)
	assertEquals(t, "Position", model.POS_UNKNOWN, res.Position)
	assertTrue(t, "TransferDate", tr.TransferDate.Equal(res.TransferDate))
	assertTrue(t, "Created", !res.Created.IsZero())

	// The same record via its internal id.
	res2, err := testDB.GetTransfer(ctx, tr.ID)
	assertFatalf(t, err == nil, "error retrieving transfer by id: %v", err)
	assertEquals(t, "APITransferID by id", tr.APITransferID, res2.APITransferID)

	// Update a field and make sure it persists.
	tr.FeeCents = tr.FeeCents + 10_000_000
	err = testDB.SaveTransfer(ctx, tr)
	assertFatalf(t, err == nil, "error saving transfer after update: %v", err)

	res3, err := testDB.GetTransferByAPIID(ctx, tr.APITransferID)
	assertFatalf(t, err == nil, "error getting updated transfer: %v", err)
	assertEquals(t, "FeeCents after update", tr.FeeCents, res3.FeeCents)

	// Lookup a transfer that doesn't exist.
	res4, err := testDB.GetTransferByAPIID(ctx, "NOPE-1")
	assertFatalf(t, err != nil, "should have had an error looking up missing transfer")
	assertEquals(t, "error type", true, errors.Is(err, ErrTransferNotFound))
	if res4 != nil {
		t.Errorf("expected res4 to be nil, but was %v", res4)
	}
}

func TestDB_feedRowDoesNotWipeEnrichment(t *testing.T) {
	ctx := context.Background()
	tr := getTransfer()

	err := testDB.SaveTransfer(ctx, tr)
	assertFatalf(t, err == nil, "error saving transfer: %v", err)

	patch := EnrichmentPatch{
		Position:    model.POS_FW,
		Age:         27,
		Nationality: "SWE",
		PhotoURL:    "https://img.example.com/p.jpg",
	}
	err = testDB.UpdateEnrichment(ctx, tr.ID, patch)
	assertFatalf(t, err == nil, "error updating enrichment: %v", err)

	// Re-save the plain feed row, which carries no enrichment fields.
	feedRow := getTransferWithAPIID(tr.APITransferID)
	err = testDB.SaveTransfer(ctx, feedRow)
	assertFatalf(t, err == nil, "error re-saving feed row: %v", err)

	res, err := testDB.GetTransfer(ctx, tr.ID)
	assertFatalf(t, err == nil, "error retrieving transfer: %v", err)
	assertEquals(t, "Position", model.POS_FW, res.Position)
	assertEquals(t, "Age", 27, res.Age)
	assertEquals(t, "Nationality", "SWE", res.Nationality)
	assertEquals(t, "PhotoURL", "https://img.example.com/p.jpg", res.PhotoURL)
	assertTrue(t, "FullyEnriched", res.FullyEnriched())
}

func TestSyncTx_commitAndRollback(t *testing.T) {
	ctx := context.Background()

	// Work committed through a sync transaction is durable.
	tx, err := testDB.BeginSync(ctx)
	assertFatalf(t, err == nil, "error beginning sync: %v", err)

	committed := getTransfer()
	err = tx.Insert(ctx, committed)
	assertFatalf(t, err == nil, "error inserting in tx: %v", err)

	// The transaction sees its own writes.
	found, err := tx.FindByAPIID(ctx, committed.APITransferID)
	assertFatalf(t, err == nil, "error finding in tx: %v", err)
	assertEquals(t, "PlayerName in tx", committed.PlayerName, found.PlayerName)

	err = tx.Commit(ctx)
	assertFatalf(t, err == nil, "error committing: %v", err)

	_, err = testDB.GetTransferByAPIID(ctx, committed.APITransferID)
	assertFatalf(t, err == nil, "committed transfer not visible: %v", err)

	// Work rolled back is gone entirely.
	tx2, err := testDB.BeginSync(ctx)
	assertFatalf(t, err == nil, "error beginning second sync: %v", err)

	discarded := getTransfer()
	err = tx2.Insert(ctx, discarded)
	assertFatalf(t, err == nil, "error inserting in second tx: %v", err)

	err = tx2.Rollback(ctx)
	assertFatalf(t, err == nil, "error rolling back: %v", err)

	_, err = testDB.GetTransferByAPIID(ctx, discarded.APITransferID)
	assertEquals(t, "rolled back lookup error", true, errors.Is(err, ErrTransferNotFound))
}

func TestSyncTx_updateSkipsUnchangedRows(t *testing.T) {
	ctx := context.Background()
	tr := getTransfer()

	err := testDB.SaveTransfer(ctx, tr)
	assertFatalf(t, err == nil, "error saving transfer: %v", err)

	tx, err := testDB.BeginSync(ctx)
	assertFatalf(t, err == nil, "error beginning sync: %v", err)
	defer tx.Rollback(ctx)

	existing, err := tx.FindByAPIID(ctx, tr.APITransferID)
	assertFatalf(t, err == nil, "error finding transfer: %v", err)

	same := getTransferWithAPIID(tr.APITransferID)
	changed, err := tx.Update(ctx, existing, same)
	assertFatalf(t, err == nil, "error updating unchanged row: %v", err)
	assertEquals(t, "changed for identical row", false, changed)
	assertEquals(t, "id carried over", existing.ID, same.ID)

	different := getTransferWithAPIID(tr.APITransferID)
	different.ToClub = "Another FC"
	changed, err = tx.Update(ctx, existing, different)
	assertFatalf(t, err == nil, "error updating changed row: %v", err)
	assertEquals(t, "changed for modified row", true, changed)
}

func TestSyncTx_failedInsertDoesNotAbortRun(t *testing.T) {
	ctx := context.Background()

	tx, err := testDB.BeginSync(ctx)
	assertFatalf(t, err == nil, "error beginning sync: %v", err)

	first := getTransfer()
	err = tx.Insert(ctx, first)
	assertFatalf(t, err == nil, "error inserting first transfer: %v", err)

	// A duplicate api_transfer_id violates the unique constraint. The
	// failed statement must not poison the transaction for the records
	// that come after it.
	dup := getTransferWithAPIID(first.APITransferID)
	err = tx.Insert(ctx, dup)
	assertFatalf(t, err != nil, "expected unique violation inserting duplicate")

	second := getTransfer()
	_, err = tx.FindByAPIID(ctx, second.APITransferID)
	assertEquals(t, "lookup after failed insert", true, errors.Is(err, ErrTransferNotFound))

	err = tx.Insert(ctx, second)
	assertFatalf(t, err == nil, "error inserting after failed insert: %v", err)

	err = tx.Commit(ctx)
	assertFatalf(t, err == nil, "error committing after failed insert: %v", err)

	// Both good records survived the bad one.
	_, err = testDB.GetTransferByAPIID(ctx, first.APITransferID)
	assertFatalf(t, err == nil, "first transfer not committed: %v", err)
	_, err = testDB.GetTransferByAPIID(ctx, second.APITransferID)
	assertFatalf(t, err == nil, "second transfer not committed: %v", err)
}

func TestGetUnderEnriched(t *testing.T) {
	ctx := context.Background()

	// A season no other test uses keeps this test isolated.
	const season = "8001"

	ids := make([]int64, 0, 4)
	for i := 0; i < 4; i++ {
		tr := getTransfer()
		tr.Season = season
		err := testDB.SaveTransfer(ctx, tr)
		assertFatalf(t, err == nil, "error saving transfer %d: %v", i, err)
		ids = append(ids, tr.ID)
	}

	// Enrich the second record fully; it should drop out of the queue.
	err := testDB.UpdateEnrichment(ctx, ids[1], EnrichmentPatch{
		Position:    model.POS_MF,
		Age:         24,
		Nationality: "FRA",
	})
	assertFatalf(t, err == nil, "error enriching transfer: %v", err)

	under, err := testDB.GetUnderEnriched(ctx, season, 0, 100)
	assertFatalf(t, err == nil, "error querying under-enriched: %v", err)
	assertEquals(t, "under-enriched count", 3, len(under))
	assertEquals(t, "first id", ids[0], under[0].ID)
	assertEquals(t, "second id", ids[2], under[1].ID)
	assertEquals(t, "third id", ids[3], under[2].ID)

	// The cursor resumes strictly after the given id.
	under, err = testDB.GetUnderEnriched(ctx, season, ids[2], 100)
	assertFatalf(t, err == nil, "error querying with cursor: %v", err)
	assertEquals(t, "count after cursor", 1, len(under))
	assertEquals(t, "id after cursor", ids[3], under[0].ID)

	// The limit caps the batch.
	under, err = testDB.GetUnderEnriched(ctx, season, 0, 2)
	assertFatalf(t, err == nil, "error querying with limit: %v", err)
	assertEquals(t, "limited count", 2, len(under))
}

func TestEnrichmentErrorLifecycle(t *testing.T) {
	ctx := context.Background()
	tr := getTransfer()

	err := testDB.SaveTransfer(ctx, tr)
	assertFatalf(t, err == nil, "error saving transfer: %v", err)

	e := &model.EnrichmentError{
		TransferID:    tr.ID,
		APITransferID: tr.APITransferID,
		Message:       "upstream 500",
	}
	err = testDB.AppendEnrichmentError(ctx, e)
	assertFatalf(t, err == nil, "error appending enrichment error: %v", err)
	assertFatalf(t, e.ID != 0, "expected enrichment error to get an id")

	pending, err := testDB.GetUnresolvedEnrichmentErrors(ctx, 3)
	assertFatalf(t, err == nil, "error listing enrichment errors: %v", err)
	assertTrue(t, "pending contains new error", containsError(pending, e.ID))

	// Once the retry count reaches the cap the error is not offered again.
	for i := 0; i < 3; i++ {
		err = testDB.IncrementEnrichmentRetry(ctx, e.ID)
		assertFatalf(t, err == nil, "error incrementing retry count: %v", err)
	}
	pending, err = testDB.GetUnresolvedEnrichmentErrors(ctx, 3)
	assertFatalf(t, err == nil, "error listing enrichment errors: %v", err)
	assertTrue(t, "capped error excluded", !containsError(pending, e.ID))

	// A resolved error is excluded regardless of its retry count.
	e2 := &model.EnrichmentError{TransferID: tr.ID, APITransferID: tr.APITransferID, Message: "flaky"}
	err = testDB.AppendEnrichmentError(ctx, e2)
	assertFatalf(t, err == nil, "error appending second enrichment error: %v", err)

	err = testDB.ResolveEnrichmentError(ctx, e2.ID)
	assertFatalf(t, err == nil, "error resolving enrichment error: %v", err)

	pending, err = testDB.GetUnresolvedEnrichmentErrors(ctx, 3)
	assertFatalf(t, err == nil, "error listing enrichment errors: %v", err)
	assertTrue(t, "resolved error excluded", !containsError(pending, e2.ID))
}

func TestSyncLogs(t *testing.T) {
	ctx := context.Background()

	l := &model.SyncLog{
		Trigger: model.TRIGGER_MANUAL,
		Result: model.SyncResult{
			Strategy:        model.STRATEGY_DEADLINE_DAY,
			TotalProcessed:  10,
			Successful:      9,
			Failed:          1,
			DurationMs:      1234,
			GroupsProcessed: []string{"premier-league", "la-liga"},
			APICallsUsed:    7,
			Errors:          []string{"record TM-9: constraint violation"},
		},
	}
	err := testDB.RecordSyncLog(ctx, l)
	assertFatalf(t, err == nil, "error recording sync log: %v", err)
	assertFatalf(t, l.ID != 0, "expected sync log to get an id")
	assertTrue(t, "created at", !l.CreatedAt.IsZero())
	assertEquals(t, "success", false, l.Success)

	logs, err := testDB.ListSyncLogs(ctx, 50)
	assertFatalf(t, err == nil, "error listing sync logs: %v", err)

	var got *model.SyncLog
	for i := range logs {
		if logs[i].ID == l.ID {
			got = &logs[i]
			break
		}
	}
	assertFatalf(t, got != nil, "recorded sync log not returned by ListSyncLogs")
	assertEquals(t, "trigger", model.TRIGGER_MANUAL, got.Trigger)
	assertEquals(t, "strategy", model.STRATEGY_DEADLINE_DAY, got.Result.Strategy)
	assertEquals(t, "total processed", 10, got.Result.TotalProcessed)
	assertEquals(t, "groups", 2, len(got.Result.GroupsProcessed))
	assertEquals(t, "errors", 1, len(got.Result.Errors))
}

func TestStatsCache(t *testing.T) {
	ctx := context.Background()

	// A mock clock makes the TTL testable; this handle shares the same
	// database as testDB.
	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC))
	db, err := New(ctx, container.ConnectionString(), mockClock)
	assertFatalf(t, err == nil, "error opening db with mock clock: %v", err)

	miss, err := testDB.GetCachedStats(ctx, "CACHE-MISS")
	assertFatalf(t, err == nil, "error on cache miss: %v", err)
	if miss != nil {
		t.Errorf("expected nil on cache miss, got %+v", miss)
	}

	stats := &model.PlayerStats{
		PositionLabels: []string{"Centre-Forward"},
		Age:            27,
		Nationality:    "Sweden",
		PhotoURL:       "https://img.example.com/p.jpg",
	}
	err = db.PutCachedStats(ctx, "CACHE-1", stats)
	assertFatalf(t, err == nil, "error writing stats cache: %v", err)

	got, err := db.GetCachedStats(ctx, "CACHE-1")
	assertFatalf(t, err == nil, "error reading stats cache: %v", err)
	assertFatalf(t, got != nil, "expected a cache hit")
	assertEquals(t, "age", stats.Age, got.Age)
	assertEquals(t, "nationality", stats.Nationality, got.Nationality)
	assertEquals(t, "labels", 1, len(got.PositionLabels))
	assertTrue(t, "fetched at", !got.FetchedAt.IsZero())

	// An entry past its TTL reads as a miss.
	mockClock.Add(25 * time.Hour)
	expired, err := db.GetCachedStats(ctx, "CACHE-1")
	assertFatalf(t, err == nil, "error reading expired cache entry: %v", err)
	if expired != nil {
		t.Errorf("expected nil for expired entry, got %+v", expired)
	}

	// Overwriting refreshes the entry.
	err = db.PutCachedStats(ctx, "CACHE-1", stats)
	assertFatalf(t, err == nil, "error refreshing stats cache: %v", err)
	got, err = db.GetCachedStats(ctx, "CACHE-1")
	assertFatalf(t, err == nil, "error reading refreshed cache entry: %v", err)
	assertFatalf(t, got != nil, "expected a cache hit after refresh")
}

func TestManualSlots(t *testing.T) {
	ctx := context.Background()

	last, err := testDB.GetManualSlot(ctx, "unused-token")
	assertFatalf(t, err == nil, "error reading missing slot: %v", err)
	assertTrue(t, "missing slot is zero time", last.IsZero())

	first := time.Date(2025, time.August, 1, 10, 0, 0, 0, time.UTC)
	err = testDB.UpsertManualSlot(ctx, "team-token", first)
	assertFatalf(t, err == nil, "error upserting slot: %v", err)

	last, err = testDB.GetManualSlot(ctx, "team-token")
	assertFatalf(t, err == nil, "error reading slot: %v", err)
	assertTrue(t, "slot time", last.Equal(first))

	second := first.Add(2 * time.Hour)
	err = testDB.UpsertManualSlot(ctx, "team-token", second)
	assertFatalf(t, err == nil, "error overwriting slot: %v", err)

	last, err = testDB.GetManualSlot(ctx, "team-token")
	assertFatalf(t, err == nil, "error re-reading slot: %v", err)
	assertTrue(t, "overwritten slot time", last.Equal(second))
}

func getTransfer() *model.Transfer {
	id := atomic.AddInt32(&idCtr, 1)
	return getTransferWithAPIID(fmt.Sprintf("TEST-%d", id))
}

func getTransferWithAPIID(apiID string) *model.Transfer {
	return &model.Transfer{
		APITransferID: apiID,
		PlayerName:    "Test Player",
		FromClub:      "Selling FC",
		ToClub:        "Buying FC",
		League:        "Premier League",
		Type:          model.TYPE_PERMANENT,
		FeeCents:      2_500_000_000,
		TransferDate:  time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
		Window:        model.WINDOW_SUMMER,
		Season:        "2025",
	}
}

func containsError(errs []model.EnrichmentError, id int64) bool {
	for _, e := range errs {
		if e.ID == id {
			return true
		}
	}
	return false
}

func assertFatalf(t *testing.T, c bool, f string, args ...any) {
	if !c {
		t.Fatalf(f, args...)
	}
}

func assertEquals(t *testing.T, field string, expected, actual any) {
	if expected != actual {
		t.Errorf("%s - expected: '%v', got: '%v'", field, expected, actual)
	}
}

func assertTrue(t *testing.T, field string, cond bool) {
	if !cond {
		t.Errorf("%s - expected to be true but it was false", field)
	}
}
