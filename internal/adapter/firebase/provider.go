// Package firebase 通过 Identity Toolkit REST API 调用 Firebase Authentication
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"PenaltyHub/internal/adapter"
	"PenaltyHub/internal/config"
	"PenaltyHub/internal/interfaces"
	"PenaltyHub/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const (
	Name = "firebase"
	// DefaultBaseURL Identity Toolkit 生产环境
	DefaultBaseURL = "https://identitytoolkit.googleapis.com"
)

func init() {
	adapter.Register(Name, New)
}

// Provider Firebase 身份提供方
type Provider struct {
	baseURL     string
	apiKey      string
	accessToken string // lookup/delete 需要服务账号 OAuth token
	httpClient  *http.Client
	logger      *logrus.Logger
}

// New 创建 Firebase 身份提供方
func New(cfg *config.IdentityConfig, _ interfaces.DocumentStore, logger *logrus.Logger) (interfaces.IdentityProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("firebase 身份提供方需要 api_key")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.AccessToken == "" {
		logger.Warn("未配置 FIREBASE_ACCESS_TOKEN，ResolveByEmail/DeleteAccount 不可用")
	}
	return &Provider{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		accessToken: cfg.AccessToken,
		httpClient:  httpclient.NewHTTPClient(cfg, logger),
		logger:      logger,
	}, nil
}

func (p *Provider) GetName() string { return Name }

// apiError Identity Toolkit 错误响应
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type signUpRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type lookupRequest struct {
	Email []string `json:"email"`
}

type lookupResponse struct {
	Users []accountResponse `json:"users"`
}

type deleteRequest struct {
	LocalID string `json:"localId"`
}

func (p *Provider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	var out accountResponse
	req := signUpRequest{Email: email, Password: password, DisplayName: displayName}
	if err := p.post(ctx, "accounts:signUp", false, req, &out); err != nil {
		return "", err
	}
	return out.LocalID, nil
}

func (p *Provider) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	var out accountResponse
	req := signInRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := p.post(ctx, "accounts:signInWithPassword", false, req, &out); err != nil {
		return "", err
	}
	return out.LocalID, nil
}

func (p *Provider) ResolveByEmail(ctx context.Context, email string) (*interfaces.Account, error) {
	var out lookupResponse
	if err := p.post(ctx, "accounts:lookup", true, lookupRequest{Email: []string{email}}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, interfaces.ErrAccountNotFound
	}
	u := out.Users[0]
	return &interfaces.Account{ID: u.LocalID, Email: u.Email, DisplayName: u.DisplayName}, nil
}

func (p *Provider) DeleteAccount(ctx context.Context, accountID string) error {
	return p.post(ctx, "accounts:delete", true, deleteRequest{LocalID: accountID}, nil)
}

func (p *Provider) post(ctx context.Context, method string, admin bool, body, out interface{}) error {
	if admin && p.accessToken == "" {
		return fmt.Errorf("%s 需要 FIREBASE_ACCESS_TOKEN", method)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/v1/%s?key=%s", p.baseURL, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 失败: %w", method, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取 %s 响应失败: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		p.logger.WithFields(logrus.Fields{
			"method": method,
			"status": resp.StatusCode,
			"error":  apiErr.Error.Message,
		}).Debug("identity toolkit 返回错误")
		return mapError(resp.StatusCode, apiErr.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", method, err)
	}
	return nil
}

// mapError 把 Identity Toolkit 错误码映射为通用错误。消息形如 "WEAK_PASSWORD : Password should be ..."
func mapError(status int, message string) error {
	code := message
	if i := strings.IndexAny(code, " :"); i >= 0 {
		code = code[:i]
	}
	switch code {
	case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return fmt.Errorf("%w: %s", interfaces.ErrInvalidCredentials, code)
	case "EMAIL_EXISTS":
		return interfaces.ErrEmailExists
	case "USER_NOT_FOUND":
		return interfaces.ErrAccountNotFound
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("identity toolkit %d: %s", status, message)
}
