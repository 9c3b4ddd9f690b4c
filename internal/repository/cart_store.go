package repository

import "fruitpack/internal/domain/model"

// CartStore は顧客セッションごとのカート置き場。
// 仕様どおりメモリのみ（プロセス再起動で消える）。DBへは書かない。
// 全操作は同期・全域（失敗パスなし）。
type CartStore interface {
	Lines(userID int64) []model.CartLine

	// 同一ProductIDは数量+1にまとめる
	Add(userID int64, line model.CartLine)

	Remove(userID int64, productID int64)

	// qtyは最低1にクランプ。行を消すのはRemoveだけ。
	SetQuantity(userID int64, productID int64, qty int64)

	Clear(userID int64)

	// Σ price×quantity を毎回計算して返す（キャッシュしない）
	Total(userID int64) int64
}
