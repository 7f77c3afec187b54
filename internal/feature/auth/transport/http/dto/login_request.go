// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は/loginエンドポイントのリクエストボディを表します。
// 必須フィールドとメール形式のバリデーションを含みます。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenRes は/loginの成功レスポンスです。
type TokenRes struct {
	Token string `json:"token"`
}

// MessageRes is a generic {message} body.
type MessageRes struct {
	Message string `json:"message"`
}

// ErrorRes is a generic {error} body.
type ErrorRes struct {
	Error string `json:"error"`
}
