// Package model はドメインモデルを定義する。
package model

import "time"

// User はゲーム利用ユーザーを表す。
// PasswordHashはAPIレスポンスに含めない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
