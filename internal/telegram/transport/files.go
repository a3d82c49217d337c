package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/panel-product-bot/internal/conversation"
	"github.com/futig/panel-product-bot/internal/entity"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

// FileFetcher resolves Telegram file ids and downloads their content
type FileFetcher struct {
	api      API
	token    string
	endpoint string
	maxSize  int64
	conn     *pkghttp.Connector
}

// NewFileFetcher creates a FileFetcher downloading through client.
// endpoint is a format with the bot token and file path, tgbotapi.FileEndpoint
// when empty. Downloads larger than maxSize fail with entity.ErrFileTooLarge,
// a non-positive maxSize disables the limit.
func NewFileFetcher(api API, token, endpoint string, maxSize int64, client *http.Client) *FileFetcher {
	if endpoint == "" {
		endpoint = tgbotapi.FileEndpoint
	}
	return &FileFetcher{
		api:      api,
		token:    token,
		endpoint: endpoint,
		maxSize:  maxSize,
		conn:     pkghttp.NewConnector(&pkghttp.ConnectorConfig{Client: client}),
	}
}

func (f *FileFetcher) Resolve(_ context.Context, photo conversation.PhotoRef) (conversation.RemoteFile, error) {
	file, err := f.api.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
	if err != nil {
		return conversation.RemoteFile{}, fmt.Errorf("get file: %w", err)
	}
	if file.FilePath == "" {
		return conversation.RemoteFile{}, errors.New("get file: empty file path")
	}

	return conversation.RemoteFile{
		Path: file.FilePath,
		Size: int64(file.FileSize),
	}, nil
}

func (f *FileFetcher) Download(ctx context.Context, path string) ([]byte, error) {
	link := fmt.Sprintf(f.endpoint, f.token, path)

	opts := []pkghttp.RequestOpt{pkghttp.WithURL(link)}
	if f.maxSize > 0 {
		opts = append(opts, pkghttp.WithMaxBodySize(f.maxSize))
	}

	resp, err := f.conn.Do(ctx, http.MethodGet, "", nil, "", opts...)
	if errors.Is(err, pkghttp.ErrBodyTooLarge) {
		return nil, fmt.Errorf("download file %s: %w", path, entity.ErrFileTooLarge)
	}
	if err != nil {
		// Download URLs embed the bot token.
		return nil, fmt.Errorf("download file %s: %s", path, strings.ReplaceAll(err.Error(), f.token, "[redacted]"))
	}

	return resp.Body, nil
}
