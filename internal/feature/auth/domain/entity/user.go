// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// User is a registered account. PasswordHash is a bcrypt hash, never plaintext.
type User struct {
	ID           uint
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
