package model

// カート行。カートはセッション内メモリのみで、チェックアウト前にDBへ書かない。
// 同一ProductIDの行は最大1つ（追加は数量加算にまとめる）。
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}
