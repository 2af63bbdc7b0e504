// Package firestore はFirestore REST APIをリモートドキュメントストアとして
// 利用するためのクライアントと型付き値エンベロープを提供する。
// 認証はメソッド呼び出しごとに渡されるBearerトークンを転送するのみで、
// トークンの発行・検証は行わない。
package firestore

import "strconv"

// Value はFirestoreの型付き値エンベロープを表すタグ付きバリアント。
// ちょうど1つのフィールドのみが非nilであることを前提とする。
// integerValueはREST表現に合わせて10進文字列で保持する。
type Value struct {
	StringValue    *string     `json:"stringValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"`
	BooleanValue   *bool       `json:"booleanValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	ArrayValue     *ArrayValue `json:"arrayValue,omitempty"`
	MapValue       *MapValue   `json:"mapValue,omitempty"`
}

// ArrayValue は型付き値の配列を表す。
type ArrayValue struct {
	Values []Value `json:"values,omitempty"`
}

// MapValue は型付き値のマップを表す。
type MapValue struct {
	Fields map[string]Value `json:"fields,omitempty"`
}

// Document はFirestoreドキュメントを表す。
type Document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]Value `json:"fields,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// StringOf は文字列値を生成する。
func StringOf(s string) Value {
	return Value{StringValue: &s}
}

// IntegerOf は整数値を生成する。
func IntegerOf(i int64) Value {
	s := strconv.FormatInt(i, 10)
	return Value{IntegerValue: &s}
}

// BooleanOf は真偽値を生成する。
func BooleanOf(b bool) Value {
	return Value{BooleanValue: &b}
}

// TimestampOf はRFC3339形式のタイムスタンプ値を生成する。
func TimestampOf(rfc3339 string) Value {
	return Value{TimestampValue: &rfc3339}
}

// ArrayOf は配列値を生成する。
func ArrayOf(values ...Value) Value {
	return Value{ArrayValue: &ArrayValue{Values: values}}
}

// MapOf はマップ値を生成する。
func MapOf(fields map[string]Value) Value {
	return Value{MapValue: &MapValue{Fields: fields}}
}

// AsString は文字列値を取り出す。文字列でない場合はok=falseを返す。
func (v Value) AsString() (string, bool) {
	if v.StringValue == nil {
		return "", false
	}
	return *v.StringValue, true
}

// AsInteger は整数値を取り出す。整数でない、またはパース不能な場合はok=falseを返す。
func (v Value) AsInteger() (int64, bool) {
	if v.IntegerValue == nil {
		return 0, false
	}
	i, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// AsBoolean は真偽値を取り出す。真偽値でない場合はok=falseを返す。
func (v Value) AsBoolean() (bool, bool) {
	if v.BooleanValue == nil {
		return false, false
	}
	return *v.BooleanValue, true
}

// AsArray は配列の要素を取り出す。配列でない場合はok=falseを返す。
func (v Value) AsArray() ([]Value, bool) {
	if v.ArrayValue == nil {
		return nil, false
	}
	return v.ArrayValue.Values, true
}

// AsMap はマップのフィールドを取り出す。マップでない場合はok=falseを返す。
func (v Value) AsMap() (map[string]Value, bool) {
	if v.MapValue == nil {
		return nil, false
	}
	return v.MapValue.Fields, true
}
