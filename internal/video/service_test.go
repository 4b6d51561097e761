package video

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/retakehq/retake/internal/billing"
	"github.com/retakehq/retake/internal/job"
	"github.com/retakehq/retake/internal/sage"
)

// fakeSage is a scriptable sage.Client for service tests.
type fakeSage struct {
	durationMS int64
	infoErr    error

	jobID      string
	processErr error

	statusErr     error
	statusResult  json.RawMessage
	processCalls  int
	statusCalls   int
	lastStatusID  string
	lastProcessID string
}

func (f *fakeSage) VideoInfo(_ context.Context, _, _ string) (sage.VideoInfo, error) {
	if f.infoErr != nil {
		return sage.VideoInfo{}, f.infoErr
	}
	return sage.VideoInfo{Width: 1920, Height: 1080, FPS: 30, DurationMS: f.durationMS}, nil
}

func (f *fakeSage) ProcessVideo(_ context.Context, id, _, _ string) (sage.JobRef, error) {
	f.processCalls++
	f.lastProcessID = id
	if f.processErr != nil {
		return sage.JobRef{}, f.processErr
	}
	return sage.JobRef{ID: f.jobID}, nil
}

func (f *fakeSage) JobStatus(_ context.Context, externalID string) (sage.JobStatus, error) {
	f.statusCalls++
	f.lastStatusID = externalID
	if f.statusErr != nil {
		return sage.JobStatus{}, f.statusErr
	}
	return sage.JobStatus{ID: externalID, Completed: true, Result: f.statusResult}, nil
}

func (f *fakeSage) Result(_ context.Context, videoID string) (sage.VideoResult, error) {
	return sage.VideoResult{ID: videoID}, nil
}

// fakeStorage signs URLs without touching S3.
type fakeStorage struct {
	signErr  error
	lastKey  string
	lastSize int64
}

func (f *fakeStorage) SignedUploadURL(_ context.Context, key, _ string, contentLength int64) (string, error) {
	f.lastKey = key
	f.lastSize = contentLength
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://bucket.s3.us-east-1.amazonaws.com/" + key + "?signed", nil
}

func (f *fakeStorage) FileSize(_ context.Context, _ string) (int64, error) { return 0, nil }

func (f *fakeStorage) URI(key string) string { return "s3://bucket/" + key }

func (f *fakeStorage) URL(key string) string {
	return "https://bucket.s3.us-east-1.amazonaws.com/" + key
}

func (f *fakeStorage) ExtractKey(uri string) string {
	return strings.TrimPrefix(uri, "s3://bucket/")
}

// fixture wires a Service against memory repositories and the fakes.
type fixture struct {
	svc     *Service
	videos  *MemoryRepository
	files   *MemoryFileRepository
	jobs    *job.MemoryRepository
	billing *billing.Service
	ledger  *billing.MemoryRepository
	sage    *fakeSage
	store   *fakeStorage
}

func newFixture() *fixture {
	videos := NewMemoryRepository()
	files := NewMemoryFileRepository()
	jobs := job.NewMemoryRepository()
	ledger := billing.NewMemoryRepository()
	billingSvc := billing.NewService(ledger, nil)
	sg := &fakeSage{jobID: "remote-1"}
	store := &fakeStorage{}

	return &fixture{
		svc:     NewService(videos, files, jobs, billingSvc, sg, store, nil),
		videos:  videos,
		files:   files,
		jobs:    jobs,
		billing: billingSvc,
		ledger:  ledger,
		sage:    sg,
		store:   store,
	}
}

func (f *fixture) credit(t *testing.T, userID string, amount int64) {
	t.Helper()
	if _, err := f.billing.Credit(context.Background(), userID, amount, billing.ReasonDeposit, "p1", ""); err != nil {
		t.Fatalf("credit: %v", err)
	}
}

func (f *fixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	got, err := f.billing.AvailableCredits(context.Background(), userID)
	if err != nil {
		t.Fatalf("available credits: %v", err)
	}
	return got
}

// create runs Create and returns the stored video.
func (f *fixture) create(t *testing.T, userID, fileName string, fileSize int64) *Video {
	t.Helper()
	out, err := f.svc.Create(context.Background(), userID, "test video", fileName, "video/mp4", fileSize)
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	v, err := f.videos.FindByID(context.Background(), out.VideoID)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	return v
}

func TestService_Create(t *testing.T) {
	f := newFixture()

	out, err := f.svc.Create(context.Background(), "user-1", "keynote", "talk.mp4", "video/mp4", 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.VideoID == "" {
		t.Error("expected video ID")
	}
	if out.UploadURL == "" {
		t.Error("expected presigned upload URL")
	}

	wantKey := "videos/" + out.VideoID + "/video.mp4"
	if f.store.lastKey != wantKey {
		t.Errorf("expected signing key %s, got %s", wantKey, f.store.lastKey)
	}
	if f.store.lastSize != 1024 {
		t.Errorf("expected signed content length 1024, got %d", f.store.lastSize)
	}
	if out.FileURL != f.store.URL(wantKey) {
		t.Errorf("expected file URL %s, got %s", f.store.URL(wantKey), out.FileURL)
	}

	v, err := f.videos.FindByID(context.Background(), out.VideoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != StatusCreated {
		t.Errorf("expected status %s, got %s", StatusCreated, v.Status)
	}
	if v.FileID == "" {
		t.Fatal("expected file to be attached")
	}
	file, err := f.files.FindByID(context.Background(), v.FileID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.URI != "s3://bucket/"+wantKey {
		t.Errorf("expected file URI s3://bucket/%s, got %s", wantKey, file.URI)
	}
	if file.ByteSize != 1024 {
		t.Errorf("expected byte size 1024, got %d", file.ByteSize)
	}
}

func TestService_Create_NoExtension(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), "user-1", "clip", "clip", "video/mp4", 1024)
	if !errors.Is(err, ErrInvalidFileExtension) {
		t.Fatalf("expected ErrInvalidFileExtension, got %v", err)
	}
}

func TestService_Create_SizeLimit(t *testing.T) {
	f := newFixture()

	// Exactly 5 GiB is allowed.
	if _, err := f.svc.Create(context.Background(), "user-1", "big", "big.mp4", "video/mp4", 5<<30); err != nil {
		t.Fatalf("expected 5 GiB upload to succeed, got %v", err)
	}

	// One byte over is rejected.
	_, err := f.svc.Create(context.Background(), "user-1", "huge", "huge.mp4", "video/mp4", 5<<30+1)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestService_Process(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)
	f.sage.durationMS = 8 * 60_000

	v := f.create(t, "user-1", "talk.mp4", 1024)

	if err := f.svc.Process(context.Background(), "user-1", v.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := f.videos.FindByID(context.Background(), v.ID)
	if got.Status != StatusProcessing {
		t.Errorf("expected status %s, got %s", StatusProcessing, got.Status)
	}

	j, err := f.jobs.FindByExternalID(context.Background(), "remote-1")
	if err != nil {
		t.Fatalf("expected job to be created: %v", err)
	}
	if j.Cost != 8 {
		t.Errorf("expected cost 8, got %d", j.Cost)
	}
	if j.Settlement != job.SettlementReserved {
		t.Errorf("expected settlement %s, got %s", job.SettlementReserved, j.Settlement)
	}

	// 8 of 10 credits held.
	if got := f.balance(t, "user-1"); got != 2 {
		t.Errorf("expected balance 2, got %d", got)
	}
	if f.sage.lastProcessID != v.ID {
		t.Errorf("expected submission for video %s, got %s", v.ID, f.sage.lastProcessID)
	}
}

func TestService_Process_InsufficientCredits(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)
	f.sage.durationMS = 12 * 60_000

	v := f.create(t, "user-1", "talk.mp4", 1024)

	err := f.svc.Process(context.Background(), "user-1", v.ID)
	if !errors.Is(err, billing.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	// The refusal happens before submission: no job, no hold.
	if f.sage.processCalls != 0 {
		t.Errorf("expected no submission, got %d", f.sage.processCalls)
	}
	if _, err := f.jobs.FindByExternalID(context.Background(), "remote-1"); !errors.Is(err, job.ErrJobNotFound) {
		t.Errorf("expected no job, got %v", err)
	}
	if got := f.balance(t, "user-1"); got != 10 {
		t.Errorf("expected balance 10, got %d", got)
	}
}

func TestService_Process_NotOwner(t *testing.T) {
	f := newFixture()
	v := f.create(t, "user-1", "talk.mp4", 1024)

	err := f.svc.Process(context.Background(), "user-2", v.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestService_Process_MissingFile(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)

	v := New("user-1", "no upload")
	_ = f.videos.Create(context.Background(), v)

	err := f.svc.Process(context.Background(), "user-1", v.ID)
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestService_Process_VideoNotFound(t *testing.T) {
	f := newFixture()

	err := f.svc.Process(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
}

// process is a helper running the full create+process happy path.
func (f *fixture) process(t *testing.T, userID string) *Video {
	t.Helper()
	v := f.create(t, userID, "talk.mp4", 1024)
	if err := f.svc.Process(context.Background(), userID, v.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	return v
}

func TestService_OnJobCompleted_Success(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)
	f.sage.durationMS = 8 * 60_000
	f.sage.statusResult = json.RawMessage(`{"clips":[]}`)

	v := f.process(t, "user-1")

	if err := f.svc.OnJobCompleted(context.Background(), "remote-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Net effect of the whole flow is exactly the cost.
	if got := f.balance(t, "user-1"); got != 2 {
		t.Errorf("expected balance 2, got %d", got)
	}

	got, _ := f.videos.FindByID(context.Background(), v.ID)
	if got.Status != StatusDone {
		t.Errorf("expected status %s, got %s", StatusDone, got.Status)
	}

	j, _ := f.jobs.FindByExternalID(context.Background(), "remote-1")
	if !j.Completed || !j.Successful {
		t.Error("expected job completed and successful")
	}
	if j.Settlement != job.SettlementSettled {
		t.Errorf("expected settlement %s, got %s", job.SettlementSettled, j.Settlement)
	}
	if string(j.Result) != `{"clips":[]}` {
		t.Errorf("expected result payload stored, got %s", j.Result)
	}

	// The ledger records reserve, release and debit for the job.
	entries := f.ledger.Entries("user-1")
	if len(entries) != 4 {
		t.Fatalf("expected 4 ledger entries, got %d", len(entries))
	}
	wantTypes := []billing.ChangeType{billing.ChangeCredit, billing.ChangeReserve, billing.ChangeRelease, billing.ChangeDebit}
	for i, e := range entries {
		if e.ChangeType != wantTypes[i] {
			t.Errorf("entry %d: change type %s, want %s", i, e.ChangeType, wantTypes[i])
		}
	}
}

func TestService_OnJobCompleted_Failure(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)
	f.sage.durationMS = 8 * 60_000

	v := f.process(t, "user-1")

	if err := f.svc.OnJobCompleted(context.Background(), "remote-1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Failed jobs cost nothing: the hold is released without a debit.
	if got := f.balance(t, "user-1"); got != 10 {
		t.Errorf("expected full balance 10, got %d", got)
	}

	got, _ := f.videos.FindByID(context.Background(), v.ID)
	if got.Status != StatusTerminated {
		t.Errorf("expected status %s, got %s", StatusTerminated, got.Status)
	}

	j, _ := f.jobs.FindByExternalID(context.Background(), "remote-1")
	if !j.Completed || j.Successful {
		t.Error("expected job completed and unsuccessful")
	}
}

func TestService_OnJobCompleted_Duplicate(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)
	f.sage.durationMS = 8 * 60_000

	f.process(t, "user-1")

	if err := f.svc.OnJobCompleted(context.Background(), "remote-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	balance := f.balance(t, "user-1")
	entries := len(f.ledger.Entries("user-1"))

	// A redelivered webhook must not touch the ledger again.
	if err := f.svc.OnJobCompleted(context.Background(), "remote-1", true); err != nil {
		t.Fatalf("expected duplicate to be a no-op, got %v", err)
	}
	if got := f.balance(t, "user-1"); got != balance {
		t.Errorf("duplicate delivery changed balance: %d -> %d", balance, got)
	}
	if got := len(f.ledger.Entries("user-1")); got != entries {
		t.Errorf("duplicate delivery appended entries: %d -> %d", entries, got)
	}
}

func TestService_OnJobCompleted_StatusFetchFails(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)
	f.sage.durationMS = 8 * 60_000

	v := f.process(t, "user-1")
	f.sage.statusErr = errors.New("boom")

	err := f.svc.OnJobCompleted(context.Background(), "remote-1", true)
	if !errors.Is(err, ErrJobStatus) {
		t.Fatalf("expected ErrJobStatus, got %v", err)
	}

	// Nothing settled: the hold stands and a retry can succeed.
	if got := f.balance(t, "user-1"); got != 2 {
		t.Errorf("expected held balance 2, got %d", got)
	}
	j, _ := f.jobs.FindByExternalID(context.Background(), "remote-1")
	if j.Settlement != job.SettlementReserved {
		t.Errorf("expected settlement %s, got %s", job.SettlementReserved, j.Settlement)
	}
	if j.Completed {
		t.Error("expected job not completed")
	}

	f.sage.statusErr = nil
	if err := f.svc.OnJobCompleted(context.Background(), "remote-1", true); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	got, _ := f.videos.FindByID(context.Background(), v.ID)
	if got.Status != StatusDone {
		t.Errorf("expected status %s after retry, got %s", StatusDone, got.Status)
	}
}

func TestService_OnJobCompleted_UnknownJob(t *testing.T) {
	f := newFixture()

	err := f.svc.OnJobCompleted(context.Background(), "nope", true)
	if !errors.Is(err, job.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestService_JobStatus(t *testing.T) {
	f := newFixture()
	f.credit(t, "user-1", 10)
	f.sage.durationMS = 60_000

	f.process(t, "user-1")
	j, _ := f.jobs.FindByExternalID(context.Background(), "remote-1")

	status, err := f.svc.JobStatus(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Completed {
		t.Error("expected remote status to be reported")
	}
	if f.sage.lastStatusID != "remote-1" {
		t.Errorf("expected remote lookup by remote-1, got %s", f.sage.lastStatusID)
	}
}

func TestService_ZeroCostProcessesWithoutBalance(t *testing.T) {
	f := newFixture()
	f.sage.durationMS = 20_000 // rounds to zero minutes

	v := f.create(t, "user-1", "short.mp4", 1024)

	if err := f.svc.Process(context.Background(), "user-1", v.ID); err != nil {
		t.Fatalf("expected free processing, got %v", err)
	}
	if got := f.balance(t, "user-1"); got != 0 {
		t.Errorf("expected untouched balance, got %d", got)
	}
}
