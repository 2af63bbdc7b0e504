package repository

import (
	"database/sql"
	"reflect"
	"testing"
)

// TestEncodeDecodeColumn_RoundTrip はコレクションフィールドのJSONカラム往復を検証する。
func TestEncodeDecodeColumn_RoundTrip(t *testing.T) {
	ids := []string{"lvl1", "lvl2"}

	encoded, err := encodeColumn(ids)
	if err != nil {
		t.Fatalf("encodeColumn returned error: %v", err)
	}

	var decoded []string
	if err := decodeColumn(sql.NullString{String: encoded, Valid: true}, &decoded); err != nil {
		t.Fatalf("decodeColumn returned error: %v", err)
	}

	if !reflect.DeepEqual(decoded, ids) {
		t.Errorf("round trip = %v, want %v", decoded, ids)
	}
}

// TestDecodeColumn_NullKeepsDefault はNULLカラムがデフォルト値を維持することを検証する。
// フィールド追加前に作成された古いスナップショット行の互換性のため。
func TestDecodeColumn_NullKeepsDefault(t *testing.T) {
	dest := map[string]bool{"first_win": true}

	if err := decodeColumn(sql.NullString{Valid: false}, &dest); err != nil {
		t.Fatalf("decodeColumn returned error: %v", err)
	}

	if !reflect.DeepEqual(dest, map[string]bool{"first_win": true}) {
		t.Errorf("dest modified on NULL column: %v", dest)
	}
}

// TestDecodeColumn_EmptyStringKeepsDefault は空文字列カラムがデフォルト値を維持することを検証する。
func TestDecodeColumn_EmptyStringKeepsDefault(t *testing.T) {
	dest := map[string]int64{}

	if err := decodeColumn(sql.NullString{String: "", Valid: true}, &dest); err != nil {
		t.Fatalf("decodeColumn returned error: %v", err)
	}

	if len(dest) != 0 {
		t.Errorf("dest modified on empty column: %v", dest)
	}
}

// TestDecodeColumn_MapValues はマッピング型カラムのデコードを検証する。
func TestDecodeColumn_MapValues(t *testing.T) {
	var times map[string]int64
	col := sql.NullString{String: `{"lvl1":42,"lvl2":97}`, Valid: true}

	if err := decodeColumn(col, &times); err != nil {
		t.Fatalf("decodeColumn returned error: %v", err)
	}

	want := map[string]int64{"lvl1": 42, "lvl2": 97}
	if !reflect.DeepEqual(times, want) {
		t.Errorf("times = %v, want %v", times, want)
	}
}
