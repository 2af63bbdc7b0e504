package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// ErrNotFound は指定キーのドキュメントが存在しないことを表す。
var ErrNotFound = errors.New("document not found")

// ClientConfig はClientの接続設定。
type ClientConfig struct {
	// BaseURL はFirestore REST APIのベースURL（例: "https://firestore.googleapis.com/v1"）。
	BaseURL string
	// ProjectID はGoogle CloudプロジェクトID。
	ProjectID string
	// Collection はユーザー進行状況ドキュメントを格納するコレクション名。
	Collection string
}

// Client はFirestore RESTドキュメントストアのクライアント。
// タイムアウトは注入されるhttp.Client側で設定する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     ClientConfig
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, config ClientConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}
}

// documentURL はドキュメントキーに対応するREST URLを構築する。
func (c *Client) documentURL(docID string) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s/%s",
		c.config.BaseURL, c.config.ProjectID, c.config.Collection, url.PathEscape(docID))
}

// GetDocument は指定キーのドキュメントを取得する。
// tokenはAuthorizationヘッダーにBearerクレデンシャルとしてそのまま転送される。
// ドキュメントが存在しない場合はErrNotFoundを返す。
func (c *Client) GetDocument(ctx context.Context, token, docID string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentURL(docID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build document request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote store fetch failed",
			slog.String("doc_id", docID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("remote store fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("remote store returned error status",
			slog.String("doc_id", docID),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("remote store returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document response: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document response: %w", err)
	}

	return &doc, nil
}

// PatchDocument は指定キーのドキュメントへマージセマンティクスのUPSERTを行う。
// updateMask.fieldPathsに指定したフィールドのみが更新され、
// ドキュメントが存在しない場合は新規作成される。
func (c *Client) PatchDocument(ctx context.Context, token, docID string, fields map[string]Value) error {
	u, err := url.Parse(c.documentURL(docID))
	if err != nil {
		return fmt.Errorf("failed to build document URL: %w", err)
	}

	q := u.Query()
	for name := range fields {
		q.Add("updateMask.fieldPaths", name)
	}
	u.RawQuery = q.Encode()

	payload, err := json.Marshal(Document{Fields: fields})
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build document request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote store upsert failed",
			slog.String("doc_id", docID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("remote store upsert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("remote store returned error status on upsert",
			slog.String("doc_id", docID),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("remote store returned status %d", resp.StatusCode)
	}

	return nil
}
