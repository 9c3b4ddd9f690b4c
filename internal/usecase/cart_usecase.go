package usecase

import (
	"context"
	"net/http"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"
)

// CartUsecase はセッション内カートの業務ロジック。
// カートはメモリのみで、注文確定までサーバーに永続化しない。
type CartUsecase struct {
	cart        repo.CartStore
	productRepo repo.ProductRepository
}

func NewCartUsecase(cart repo.CartStore, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{cart: cart, productRepo: productRepo}
}

type CartLineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total int64              `json:"total"`
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(userID), nil
}

// AddToCart はカートに追加（同一商品は数量+1）。
// 商品名と単価は商品マスタのスナップショットを積む。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	u.cart.Add(userID, model.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
	})

	return u.buildCartResponse(userID), nil
}

// 数量変更。1未満は1にクランプする（行削除はDeleteで）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	u.cart.SetQuantity(userID, productID, qty)
	return u.buildCartResponse(userID), nil
}

func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	u.cart.Remove(userID, productID)
	return u.buildCartResponse(userID), nil
}

func (u *CartUsecase) buildCartResponse(userID int64) CartResponse {
	lines := u.cart.Lines(userID)

	items := make([]CartLineResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	return CartResponse{Items: items, Total: u.cart.Total(userID)}
}
