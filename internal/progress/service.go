// Package progress はリモート/ローカル両ストアにまたがる進行状況の
// 読み書きとフォールバックポリシーを提供する。
package progress

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ZennXzy/Puzzle-Quest/internal/firestore"
	"github.com/ZennXzy/Puzzle-Quest/internal/model"
	"github.com/ZennXzy/Puzzle-Quest/internal/repository"
)

// RemoteStore はリモートドキュメントストアのインターフェース。
type RemoteStore interface {
	// GetDocument は指定キーのドキュメントを取得する。
	// 存在しない場合はfirestore.ErrNotFoundを返す。
	GetDocument(ctx context.Context, token, docID string) (*firestore.Document, error)

	// PatchDocument はマージセマンティクスのUPSERTを行う。
	PatchDocument(ctx context.Context, token, docID string, fields map[string]firestore.Value) error
}

// MetricsRecorder は同期処理の診断メトリクスを記録するインターフェース。
type MetricsRecorder interface {
	// RecordRemoteFailure はリモートストア障害を操作名（load/save）付きで記録する。
	RecordRemoteFailure(op string)
	// RecordLocalFallback はローカルストアへのフォールバック成立を記録する。
	RecordLocalFallback(op string)
	// RecordBackupWriteFailure はリモート成功後のバックアップ書き込み失敗を記録する。
	// リモートとローカルのコピーがサイレントに乖離した可能性を示す。
	RecordBackupWriteFailure()
	// RecordRemoteLatency はリモートストア呼び出しのレイテンシを記録する。
	RecordRemoteLatency(duration time.Duration)
}

// Service は進行状況の同期サービス。
// トークンが供給された場合はリモートストアを優先し、
// 到達不能時はローカルリレーショナルストアにフォールバックする。
// remoteがnilの場合はローカルのみで動作する。
type Service struct {
	remote  RemoteStore
	local   repository.ProgressRepository
	metrics MetricsRecorder
	logger  *slog.Logger
}

// NewService はServiceを生成する。
func NewService(remote RemoteStore, local repository.ProgressRepository, metrics MetricsRecorder, logger *slog.Logger) *Service {
	return &Service{
		remote:  remote,
		local:   local,
		metrics: metrics,
		logger:  logger,
	}
}

// loadSource はフォールバックチェーンを構成する1つのデータソース。
// found=falseはデータ不存在（次のソースへ）、errは障害（ログの上で次のソースへ）を表す。
type loadSource struct {
	name  string
	fetch func() (snapshot *model.ProgressSnapshot, found bool, err error)
}

// Load は進行状況を読み込む。
// ソースの優先順位はリモート（トークン供給時のみ）→ローカル→デフォルト。
// 各ソースは1回だけ試行され、リトライもバックオフも行わない。
// どのソースにもデータがない場合はデフォルトスナップショットを返し、エラーにはしない。
func (s *Service) Load(ctx context.Context, userID, authToken string) (*model.ProgressSnapshot, error) {
	if userID == "" {
		return nil, model.NewInvalidInputError("User ID is required")
	}

	var sources []loadSource

	if authToken != "" && s.remote != nil {
		sources = append(sources, loadSource{
			name: "remote",
			fetch: func() (*model.ProgressSnapshot, bool, error) {
				start := time.Now()
				doc, err := s.remote.GetDocument(ctx, authToken, userID)
				s.metrics.RecordRemoteLatency(time.Since(start))
				if errors.Is(err, firestore.ErrNotFound) {
					return nil, false, nil
				}
				if err != nil {
					s.metrics.RecordRemoteFailure("load")
					return nil, false, err
				}
				return snapshotFromFields(doc.Fields), true, nil
			},
		})
	}

	sources = append(sources, loadSource{
		name: "local",
		fetch: func() (*model.ProgressSnapshot, bool, error) {
			snapshot, err := s.local.FindByUserID(ctx, userID)
			if err != nil {
				return nil, false, err
			}
			if snapshot == nil {
				return nil, false, nil
			}
			return snapshot, true, nil
		},
	})

	for i, src := range sources {
		snapshot, found, err := src.fetch()
		if err != nil {
			s.logger.Warn("progress source failed, trying next",
				slog.String("source", src.name),
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if found {
			// リモート障害後にローカルが応えた場合のみフォールバック成立
			if src.name == "local" && i > 0 {
				s.metrics.RecordLocalFallback("load")
			}
			return snapshot, nil
		}
	}

	return model.DefaultSnapshot(), nil
}

// Save は進行状況を保存する。
// トークン供給時はリモートへマージUPSERTし、成功時はローカルにもバックアップを書く。
// バックアップ書き込みの失敗は呼び出しを失敗させず、ログとメトリクスのみに残る
// （リモートとローカルが乖離しうる仕様通りの挙動）。
// リモート障害時またはトークン未供給時はローカルのみに書き、その失敗は致命的となる。
func (s *Service) Save(ctx context.Context, userID string, snapshot *model.ProgressSnapshot, authToken string) error {
	if userID == "" || snapshot == nil {
		return model.NewInvalidInputError("User ID and progress data are required")
	}

	snapshot.Normalize()

	if authToken != "" && s.remote != nil {
		fields := snapshotToFields(snapshot)
		fields[fieldUpdatedAt] = firestore.TimestampOf(time.Now().UTC().Format(time.RFC3339))

		start := time.Now()
		err := s.remote.PatchDocument(ctx, authToken, userID, fields)
		s.metrics.RecordRemoteLatency(time.Since(start))

		if err == nil {
			if backupErr := s.local.Upsert(ctx, userID, snapshot); backupErr != nil {
				s.logger.Warn("local backup write failed after remote save",
					slog.String("user_id", userID),
					slog.String("error", backupErr.Error()),
				)
				s.metrics.RecordBackupWriteFailure()
			}
			return nil
		}

		s.logger.Warn("remote save failed, falling back to local store",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordRemoteFailure("save")

		if localErr := s.local.Upsert(ctx, userID, snapshot); localErr != nil {
			s.logger.Error("local fallback save failed",
				slog.String("user_id", userID),
				slog.String("error", localErr.Error()),
			)
			return model.NewRemoteStoreFailureError()
		}
		s.metrics.RecordLocalFallback("save")
		return nil
	}

	if err := s.local.Upsert(ctx, userID, snapshot); err != nil {
		s.logger.Error("local save failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return model.NewLocalStoreFailureError()
	}

	return nil
}
