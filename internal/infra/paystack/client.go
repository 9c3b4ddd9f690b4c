package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.paystack.co"

// Paystackの決済API（initialize / verify）を叩くクライアント。
// 金額はセント単位で渡す。
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(secretKey string) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL はテスト用（httptest.Serverに向ける）。
func NewClientWithBaseURL(secretKey string, baseURL string) *Client {
	c := NewClient(secretKey)
	c.baseURL = baseURL
	return c
}

type InitializeInput struct {
	Email       string
	AmountCents int64
	Reference   string
	CallbackURL string
}

type InitializeOutput struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initialize は取引を作ってホスト型決済ページのURLと
// 埋め込みシート用のaccess_codeを返す。
func (c *Client) Initialize(ctx context.Context, in InitializeInput) (InitializeOutput, error) {
	body, err := json.Marshal(initializeRequest{
		Email:       in.Email,
		Amount:      in.AmountCents,
		Reference:   in.Reference,
		CallbackURL: in.CallbackURL,
	})
	if err != nil {
		return InitializeOutput{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return InitializeOutput{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return InitializeOutput{}, err
	}
	defer resp.Body.Close()

	var out initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return InitializeOutput{}, err
	}
	if resp.StatusCode != http.StatusOK || !out.Status {
		return InitializeOutput{}, fmt.Errorf("paystack initialize failed: %s", out.Message)
	}

	return InitializeOutput{
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
		Reference:        out.Data.Reference,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"` // success / abandoned / failed
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// Verify は取引の最終状態を問い合わせる。
// 入金確定の判断はリダイレクトではなく必ずこちらで行う。
func (c *Client) Verify(ctx context.Context, reference string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK || !out.Status {
		return "", fmt.Errorf("paystack verify failed: %s", out.Message)
	}

	return out.Data.Status, nil
}
