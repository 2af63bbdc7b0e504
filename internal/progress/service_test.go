package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/ZennXzy/Puzzle-Quest/internal/firestore"
	"github.com/ZennXzy/Puzzle-Quest/internal/model"
)

// --- モック ---

type mockRemoteStore struct {
	getDocumentFn   func(ctx context.Context, token, docID string) (*firestore.Document, error)
	patchDocumentFn func(ctx context.Context, token, docID string, fields map[string]firestore.Value) error
}

func (m *mockRemoteStore) GetDocument(ctx context.Context, token, docID string) (*firestore.Document, error) {
	if m.getDocumentFn != nil {
		return m.getDocumentFn(ctx, token, docID)
	}
	return nil, firestore.ErrNotFound
}

func (m *mockRemoteStore) PatchDocument(ctx context.Context, token, docID string, fields map[string]firestore.Value) error {
	if m.patchDocumentFn != nil {
		return m.patchDocumentFn(ctx, token, docID, fields)
	}
	return nil
}

// mockProgressRepo はuser_idごとに高々1件のupsertセマンティクスを模したインメモリ実装。
type mockProgressRepo struct {
	rows         map[string]*model.ProgressSnapshot
	findErr      error
	upsertErr    error
	upsertCalled int
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{rows: make(map[string]*model.ProgressSnapshot)}
}

func (m *mockProgressRepo) FindByUserID(ctx context.Context, userID string) (*model.ProgressSnapshot, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.rows[userID], nil
}

func (m *mockProgressRepo) Upsert(ctx context.Context, userID string, snapshot *model.ProgressSnapshot) error {
	m.upsertCalled++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.rows[userID] = snapshot
	return nil
}

type mockMetrics struct {
	remoteFailures int
	localFallbacks int
	backupFailures int
	latencySampled int
}

func (m *mockMetrics) RecordRemoteFailure(op string)       { m.remoteFailures++ }
func (m *mockMetrics) RecordLocalFallback(op string)       { m.localFallbacks++ }
func (m *mockMetrics) RecordBackupWriteFailure()           { m.backupFailures++ }
func (m *mockMetrics) RecordRemoteLatency(d time.Duration) { m.latencySampled++ }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSnapshot() *model.ProgressSnapshot {
	return &model.ProgressSnapshot{
		Email:             "p@example.com",
		CurrentLevel:      3,
		CompletedImageIDs: []string{"lvl1", "lvl2"},
		SavedStates:       map[string]any{},
		BestTimes:         map[string]int64{"lvl1": 42},
		Achievements:      map[string]bool{},
	}
}

// --- テスト ---

// TestService_Load_NoDataReturnsDefault は保存データがないユーザーに
// デフォルトスナップショットが返ることを検証する。
func TestService_Load_NoDataReturnsDefault(t *testing.T) {
	svc := NewService(nil, newMockProgressRepo(), &mockMetrics{}, testLogger())

	got, err := svc.Load(context.Background(), "u-1", "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := model.DefaultSnapshot()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want default %+v", got, want)
	}
}

// TestService_SaveLoad_LocalRoundTrip はトークンなしのsave→loadで
// 同一のスナップショットが返ることを検証する。
func TestService_SaveLoad_LocalRoundTrip(t *testing.T) {
	local := newMockProgressRepo()
	svc := NewService(nil, local, &mockMetrics{}, testLogger())
	snapshot := sampleSnapshot()

	if err := svc.Save(context.Background(), "u-7", snapshot, ""); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := svc.Load(context.Background(), "u-7", "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(got, snapshot) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, snapshot)
	}
}

// TestService_Save_OmittedFieldsFilledWithDefaults はクライアントが省略した
// コレクションが空のデフォルトとして保存されることを検証する。
func TestService_Save_OmittedFieldsFilledWithDefaults(t *testing.T) {
	local := newMockProgressRepo()
	svc := NewService(nil, local, &mockMetrics{}, testLogger())

	partial := &model.ProgressSnapshot{
		CurrentLevel:      3,
		CompletedImageIDs: []string{"lvl1", "lvl2"},
		BestTimes:         map[string]int64{"lvl1": 42},
	}
	if err := svc.Save(context.Background(), "u-7", partial, ""); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := svc.Load(context.Background(), "u-7", "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.SavedStates == nil || len(got.SavedStates) != 0 {
		t.Errorf("SavedStates = %v, want empty map", got.SavedStates)
	}
	if got.Achievements == nil || len(got.Achievements) != 0 {
		t.Errorf("Achievements = %v, want empty map", got.Achievements)
	}
	if got.Email != "" {
		t.Errorf("Email = %q, want empty", got.Email)
	}
	if got.CurrentLevel != 3 {
		t.Errorf("CurrentLevel = %d, want 3", got.CurrentLevel)
	}
}

// TestService_Load_RemotePreferred はトークン供給時にリモートの
// ドキュメントが優先されることを検証する。
func TestService_Load_RemotePreferred(t *testing.T) {
	remote := &mockRemoteStore{
		getDocumentFn: func(ctx context.Context, token, docID string) (*firestore.Document, error) {
			if token != "tok-1" {
				t.Errorf("token = %q, want %q", token, "tok-1")
			}
			return &firestore.Document{
				Fields: map[string]firestore.Value{
					"currentLevel": firestore.IntegerOf(9),
				},
			}, nil
		},
	}
	local := newMockProgressRepo()
	local.rows["u-1"] = sampleSnapshot()

	svc := NewService(remote, local, &mockMetrics{}, testLogger())

	got, err := svc.Load(context.Background(), "u-1", "tok-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.CurrentLevel != 9 {
		t.Errorf("CurrentLevel = %d, want remote value 9", got.CurrentLevel)
	}
}

// TestService_Load_RemoteFailureFallsBackToLocal はリモート障害時に
// ローカルの行が返り、エラーにならないことを検証する。
func TestService_Load_RemoteFailureFallsBackToLocal(t *testing.T) {
	remote := &mockRemoteStore{
		getDocumentFn: func(ctx context.Context, token, docID string) (*firestore.Document, error) {
			return nil, errors.New("network unreachable")
		},
	}
	local := newMockProgressRepo()
	local.rows["u-1"] = sampleSnapshot()
	metrics := &mockMetrics{}

	svc := NewService(remote, local, metrics, testLogger())

	got, err := svc.Load(context.Background(), "u-1", "tok")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(got, local.rows["u-1"]) {
		t.Errorf("got %+v, want local snapshot", got)
	}
	if metrics.remoteFailures != 1 {
		t.Errorf("remoteFailures = %d, want 1", metrics.remoteFailures)
	}
	if metrics.localFallbacks != 1 {
		t.Errorf("localFallbacks = %d, want 1", metrics.localFallbacks)
	}
}

// TestService_Load_RemoteNotFoundIsNotAFailure はリモートにドキュメントが
// 存在しないケースが障害として記録されないことを検証する。
func TestService_Load_RemoteNotFoundIsNotAFailure(t *testing.T) {
	remote := &mockRemoteStore{}
	local := newMockProgressRepo()
	metrics := &mockMetrics{}

	svc := NewService(remote, local, metrics, testLogger())

	got, err := svc.Load(context.Background(), "u-1", "tok")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(got, model.DefaultSnapshot()) {
		t.Errorf("got %+v, want default", got)
	}
	if metrics.remoteFailures != 0 {
		t.Errorf("remoteFailures = %d, want 0", metrics.remoteFailures)
	}
}

// TestService_Load_MissingUserID はuserID欠落がInvalidInputになることを検証する。
func TestService_Load_MissingUserID(t *testing.T) {
	svc := NewService(nil, newMockProgressRepo(), &mockMetrics{}, testLogger())

	_, err := svc.Load(context.Background(), "", "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidInput {
		t.Errorf("err = %v, want InvalidInput", err)
	}
}

// TestService_Save_RemoteSuccessAlsoWritesBackup はリモート成功時に
// ローカルへのバックアップ書き込みも行われることを検証する（dual-write）。
func TestService_Save_RemoteSuccessAlsoWritesBackup(t *testing.T) {
	var patched map[string]firestore.Value
	remote := &mockRemoteStore{
		patchDocumentFn: func(ctx context.Context, token, docID string, fields map[string]firestore.Value) error {
			patched = fields
			return nil
		},
	}
	local := newMockProgressRepo()
	svc := NewService(remote, local, &mockMetrics{}, testLogger())
	snapshot := sampleSnapshot()

	if err := svc.Save(context.Background(), "u-1", snapshot, "tok"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if patched == nil {
		t.Fatal("expected remote PatchDocument to be called")
	}
	if _, ok := patched["updatedAt"]; !ok {
		t.Error("remote document must include updatedAt timestamp")
	}
	if local.upsertCalled != 1 {
		t.Errorf("local upsert called %d times, want 1 (backup write)", local.upsertCalled)
	}
}

// TestService_Save_BackupFailureIsNotFatal はリモート成功後のバックアップ失敗が
// 呼び出しを失敗させず、メトリクスにのみ記録されることを検証する。
func TestService_Save_BackupFailureIsNotFatal(t *testing.T) {
	remote := &mockRemoteStore{}
	local := newMockProgressRepo()
	local.upsertErr = errors.New("disk full")
	metrics := &mockMetrics{}

	svc := NewService(remote, local, metrics, testLogger())

	if err := svc.Save(context.Background(), "u-1", sampleSnapshot(), "tok"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if metrics.backupFailures != 1 {
		t.Errorf("backupFailures = %d, want 1", metrics.backupFailures)
	}
}

// TestService_Save_RemoteFailureFallsBackToLocal はリモート障害時に
// ローカル保存で成功扱いとなり、後続のトークンなしloadで同一データが返ることを検証する。
func TestService_Save_RemoteFailureFallsBackToLocal(t *testing.T) {
	remote := &mockRemoteStore{
		patchDocumentFn: func(ctx context.Context, token, docID string, fields map[string]firestore.Value) error {
			return errors.New("connection refused")
		},
	}
	local := newMockProgressRepo()
	metrics := &mockMetrics{}
	svc := NewService(remote, local, metrics, testLogger())
	snapshot := sampleSnapshot()

	if err := svc.Save(context.Background(), "u-1", snapshot, "tok"); err != nil {
		t.Fatalf("Save should succeed via local fallback, got: %v", err)
	}
	if metrics.remoteFailures != 1 {
		t.Errorf("remoteFailures = %d, want 1", metrics.remoteFailures)
	}
	if metrics.localFallbacks != 1 {
		t.Errorf("localFallbacks = %d, want 1", metrics.localFallbacks)
	}

	got, err := svc.Load(context.Background(), "u-1", "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(got, snapshot) {
		t.Errorf("got %+v, want %+v", got, snapshot)
	}
}

// TestService_Save_RemoteAndLocalFailure は両ストアが失敗した場合に
// RemoteStoreFailureが返ることを検証する。
func TestService_Save_RemoteAndLocalFailure(t *testing.T) {
	remote := &mockRemoteStore{
		patchDocumentFn: func(ctx context.Context, token, docID string, fields map[string]firestore.Value) error {
			return errors.New("connection refused")
		},
	}
	local := newMockProgressRepo()
	local.upsertErr = errors.New("disk full")

	svc := NewService(remote, local, &mockMetrics{}, testLogger())

	err := svc.Save(context.Background(), "u-1", sampleSnapshot(), "tok")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeRemoteStoreFailure {
		t.Errorf("err = %v, want RemoteStoreFailure", err)
	}
}

// TestService_Save_LocalOnlyFailureIsFatal はローカルが唯一の書き込み先で
// 失敗した場合にLocalStoreFailureが返ることを検証する。
func TestService_Save_LocalOnlyFailureIsFatal(t *testing.T) {
	local := newMockProgressRepo()
	local.upsertErr = errors.New("disk full")

	svc := NewService(nil, local, &mockMetrics{}, testLogger())

	err := svc.Save(context.Background(), "u-1", sampleSnapshot(), "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeLocalStoreFailure {
		t.Errorf("err = %v, want LocalStoreFailure", err)
	}
}

// TestService_Save_MissingInput はuserIDまたはsnapshot欠落がInvalidInputになることを検証する。
func TestService_Save_MissingInput(t *testing.T) {
	svc := NewService(nil, newMockProgressRepo(), &mockMetrics{}, testLogger())

	var apiErr *model.APIError

	err := svc.Save(context.Background(), "", sampleSnapshot(), "")
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidInput {
		t.Errorf("missing userID: err = %v, want InvalidInput", err)
	}

	err = svc.Save(context.Background(), "u-1", nil, "")
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidInput {
		t.Errorf("missing snapshot: err = %v, want InvalidInput", err)
	}
}
