package progress

import (
	"encoding/json"
	"fmt"

	"github.com/ZennXzy/Puzzle-Quest/internal/firestore"
	"github.com/ZennXzy/Puzzle-Quest/internal/model"
)

// リモートドキュメントのフィールド名
const (
	fieldEmail             = "email"
	fieldCurrentLevel      = "currentLevel"
	fieldCompletedImageIDs = "completedImageIds"
	fieldSavedStates       = "savedStates"
	fieldBestTimes         = "bestTimes"
	fieldAchievements      = "achievements"
	fieldUpdatedAt         = "updatedAt"
)

// snapshotToFields はスナップショットをリモートストアの型付きフィールド表現に変換する。
// completedImageIdsは文字列配列、savedStatesは文字列シリアライズ済みblobのマップ、
// bestTimesは整数マップ、achievementsは真偽値マップとなる。
func snapshotToFields(s *model.ProgressSnapshot) map[string]firestore.Value {
	ids := make([]firestore.Value, 0, len(s.CompletedImageIDs))
	for _, id := range s.CompletedImageIDs {
		ids = append(ids, firestore.StringOf(id))
	}

	saved := make(map[string]firestore.Value, len(s.SavedStates))
	for key, state := range s.SavedStates {
		saved[key] = firestore.StringOf(encodeStateBlob(state))
	}

	times := make(map[string]firestore.Value, len(s.BestTimes))
	for key, duration := range s.BestTimes {
		times[key] = firestore.IntegerOf(duration)
	}

	achievements := make(map[string]firestore.Value, len(s.Achievements))
	for key, unlocked := range s.Achievements {
		achievements[key] = firestore.BooleanOf(unlocked)
	}

	return map[string]firestore.Value{
		fieldEmail:             firestore.StringOf(s.Email),
		fieldCurrentLevel:      firestore.IntegerOf(int64(s.CurrentLevel)),
		fieldCompletedImageIDs: firestore.ArrayOf(ids...),
		fieldSavedStates:       firestore.MapOf(saved),
		fieldBestTimes:         firestore.MapOf(times),
		fieldAchievements:      firestore.MapOf(achievements),
	}
}

// snapshotFromFields はリモートストアの型付きフィールド表現をスナップショットに変換する。
// 欠落フィールドはそのフィールドのデフォルト値（空のコレクション、currentLevel=1）となる。
func snapshotFromFields(fields map[string]firestore.Value) *model.ProgressSnapshot {
	s := model.DefaultSnapshot()

	if v, ok := fields[fieldEmail]; ok {
		if email, ok := v.AsString(); ok {
			s.Email = email
		}
	}
	if v, ok := fields[fieldCurrentLevel]; ok {
		if level, ok := v.AsInteger(); ok && level >= 1 {
			s.CurrentLevel = int(level)
		}
	}
	if v, ok := fields[fieldCompletedImageIDs]; ok {
		if values, ok := v.AsArray(); ok {
			for _, elem := range values {
				if id, ok := elem.AsString(); ok {
					s.CompletedImageIDs = append(s.CompletedImageIDs, id)
				}
			}
		}
	}
	if v, ok := fields[fieldSavedStates]; ok {
		if entries, ok := v.AsMap(); ok {
			for key, elem := range entries {
				if raw, ok := elem.AsString(); ok {
					s.SavedStates[key] = decodeStateBlob(raw)
				}
			}
		}
	}
	if v, ok := fields[fieldBestTimes]; ok {
		if entries, ok := v.AsMap(); ok {
			for key, elem := range entries {
				if duration, ok := elem.AsInteger(); ok {
					s.BestTimes[key] = duration
				}
			}
		}
	}
	if v, ok := fields[fieldAchievements]; ok {
		if entries, ok := v.AsMap(); ok {
			for key, elem := range entries {
				if unlocked, ok := elem.AsBoolean(); ok {
					s.Achievements[key] = unlocked
				}
			}
		}
	}

	return s
}

// encodeStateBlob は途中保存状態をリモート格納用の文字列に変換する。
// 文字列はそのまま、構造化データはJSON文字列としてシリアライズする。
func encodeStateBlob(state any) string {
	if raw, ok := state.(string); ok {
		return raw
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Sprintf("%v", state)
	}
	return string(data)
}

// decodeStateBlob はリモート格納文字列を途中保存状態に復元する。
// JSONとしてデコードできる場合は構造化データを、できない場合は生文字列を返す。
func decodeStateBlob(raw string) any {
	var state any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return raw
	}
	return state
}
