package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/infra"
)

// Options controls how the Drive catalogue client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Folder is one navigable node of the catalogue tree.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// File is one downloadable image inside a catalogue folder.
type File struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mimeType"`
	ThumbnailLink string `json:"thumbnailLink,omitempty"`
}

// ErrAPIDisabled replaces the upstream "API has not been used" message with
// something a person can act on.
var ErrAPIDisabled = errors.New("the Google Drive API is not enabled for this project; enable it in the Google Cloud console and try again")

const folderMimeType = "application/vnd.google-apps.folder"

// Client provides read-only access to the shared catalogue tree on Drive,
// authenticated by API key only. Nothing here mutates remote state.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type driveItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mimeType"`
	ThumbnailLink string `json:"thumbnailLink"`
}

type driveListResponse struct {
	Files []driveItem `json:"files"`
}

type driveErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Drive client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("drive api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/drive/v3"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}, nil
}

// ListFolders returns the child folders of parentID, ordered by name.
func (c *Client) ListFolders(ctx context.Context, parentID string) ([]Folder, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", parentID, folderMimeType)
	items, err := c.list(ctx, query, "files(id,name)")
	if err != nil {
		return nil, err
	}

	folders := make([]Folder, 0, len(items))
	for _, item := range items {
		folders = append(folders, Folder{ID: item.ID, Name: item.Name})
	}
	return folders, nil
}

// ListImageFiles returns the image files directly inside parentID, ordered by
// name. Non-image children are filtered out server side.
func (c *Client) ListImageFiles(ctx context.Context, parentID string) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType contains 'image/' and trashed = false", parentID)
	items, err := c.list(ctx, query, "files(id,name,mimeType,thumbnailLink)")
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(items))
	for _, item := range items {
		files = append(files, File{
			ID:            item.ID,
			Name:          item.Name,
			MimeType:      item.MimeType,
			ThumbnailLink: item.ThumbnailLink,
		})
	}
	return files, nil
}

// Download fetches the file's raw content and wraps it as an image asset. The
// MIME type comes from the response header, with a sniff fallback when the
// header is missing or generic.
func (c *Client) Download(ctx context.Context, fileID string) (*asset.Image, error) {
	endpoint := fmt.Sprintf("%s/files/%s", c.baseURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("alt", "media")
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if !asset.IsImageMIME(mime) {
		mime = ""
	}
	return asset.FromBytes(blob, mime), nil
}

func (c *Client) list(ctx context.Context, query, fields string) ([]driveItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("fields", fields)
	q.Set("orderBy", "name")
	q.Set("pageSize", "1000")
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	var list driveListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode drive response: %w", err)
	}
	return list.Files, nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var apiErr driveErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		msg := apiErr.Error.Message
		if strings.Contains(msg, "has not been used") || strings.Contains(msg, "is disabled") {
			c.logger.Warn().Str("detail", msg).Msg("drive: api disabled for project")
			return ErrAPIDisabled
		}
		return fmt.Errorf("drive status %d: %s", resp.StatusCode, msg)
	}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		return fmt.Errorf("drive status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return fmt.Errorf("drive status %d", resp.StatusCode)
}
