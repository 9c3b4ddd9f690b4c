package repository

import (
	"sync"

	"fruitpack/internal/domain/model"
)

// CartMemoryStore はユーザーIDごとのカートをメモリに持つ。
// 仕様どおり永続化しない（プロセス再起動で消える）。
type CartMemoryStore struct {
	mu    sync.Mutex
	carts map[int64][]model.CartLine
}

func NewCartMemoryStore() *CartMemoryStore {
	return &CartMemoryStore{carts: make(map[int64][]model.CartLine)}
}

func (s *CartMemoryStore) Lines(userID int64) []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out
}

// 同一商品は数量+1、新規は quantity=1 で追加する。
// 行が重複することはない（ProductIDにつき最大1行）。
func (s *CartMemoryStore) Add(userID int64, line model.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity++
			return
		}
	}
	line.Quantity = 1
	s.carts[userID] = append(lines, line)
}

func (s *CartMemoryStore) Remove(userID int64, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

// 0以下は1にクランプ。行削除はRemoveの仕事。
func (s *CartMemoryStore) SetQuantity(userID int64, productID int64, qty int64) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = qty
			return
		}
	}
}

func (s *CartMemoryStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
}

// 毎回畳み込みで計算する。部分更新後の古い合計を返さないため。
func (s *CartMemoryStore) Total(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64 = 0
	for _, l := range s.carts[userID] {
		total += l.UnitPrice * l.Quantity
	}
	return total
}
