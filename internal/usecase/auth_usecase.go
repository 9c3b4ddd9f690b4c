package usecase

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"fruitpack/internal/domain/model"
	repo "fruitpack/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// アクセストークンの発行はmain側で組み立てて注入する。
type TokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

type AuthUsecase struct {
	userRepo   repo.UserRepository
	driverRepo repo.DriverRepository
	issuer     TokenIssuer
	bcryptCost int
}

func NewAuthUsecase(userRepo repo.UserRepository, driverRepo repo.DriverRepository, issuer TokenIssuer, bcryptCost int) *AuthUsecase {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthUsecase{
		userRepo:   userRepo,
		driverRepo: driverRepo,
		issuer:     issuer,
		bcryptCost: bcryptCost,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
}

type RegisterOutput struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type LoginOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}
	if strings.TrimSpace(in.Name) == "" {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	role := model.Role(strings.ToUpper(strings.TrimSpace(in.Role)))
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleCustomer && role != model.RoleDriver {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	if _, err := u.userRepo.FindByEmail(ctx, email); err == nil {
		return RegisterOutput{}, NewHTTPError(http.StatusConflict, "email already used")
	} else if err != repo.ErrNotFound {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "hash error")
	}

	now := time.Now()
	userID, err := u.userRepo.Create(ctx, model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// ドライバーはプロフィールも作る（初期状態はoffline）
	if role == model.RoleDriver {
		_, err := u.driverRepo.Create(ctx, model.Driver{
			UserID:    userID,
			Status:    model.DriverStatusOffline,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return RegisterOutput{UserID: userID, Email: email, Role: string(role)}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (LoginOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err == repo.ErrNotFound {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, time.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "token error")
	}

	return LoginOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Role:      string(user.Role),
	}, nil
}
