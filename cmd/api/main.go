package main

import (
	"log"
	"strconv"
	"time"

	"fruitpack/internal/config"
	"fruitpack/internal/domain/model"
	"fruitpack/internal/handler"
	"fruitpack/internal/infra/db"
	"fruitpack/internal/infra/paystack"
	infraRepo "fruitpack/internal/infra/repository"
	"fruitpack/internal/server"
	"fruitpack/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envはローカル開発用。無くても環境変数があれば動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Claim{},
		&model.Driver{},
		&model.OrderEvent{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	driverRepo := infraRepo.NewDriverGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//カートはメモリのみ（仕様：再起動で消える）
	cartStore := infraRepo.NewCartMemoryStore()

	//Paystack
	payments := paystack.NewClient(cfg.PaystackSecretKey)

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, driverRepo, issuer, 12)
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, cartStore, payments, cfg.PaymentCallbackURL)
	paymentUC := usecase.NewPaymentUsecase(txManager, cartStore, payments)
	orderUC := usecase.NewOrderUsecase(txManager)
	driverOrderUC := usecase.NewDriverOrderUsecase(txManager)
	claimUC := usecase.NewClaimUsecase(txManager)
	driverUC := usecase.NewDriverUsecase(driverRepo)

	//Handler生成
	h := server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC, checkoutUC),
		Order:   handler.NewOrderHandler(orderUC, driverOrderUC),
		Claim:   handler.NewClaimHandler(claimUC),
		Driver:  handler.NewDriverHandler(driverUC),
		Payment: handler.NewPaymentHandler(paymentUC),
	}

	//Server起動
	e := server.New(cfg, h)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(e, addr); err != nil {
		log.Fatal(err)
	}
}
