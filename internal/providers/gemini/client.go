package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
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

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	ChatModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin facade over the Gemini generateContent endpoint. One-shot
// generation and edits are stateless between invocations; multi-turn dialogue
// lives in Chat, which replays its transcript through the same client.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	chatModel  string
	httpClient *http.Client
	logger     *infra.Logger
}

// Result carries the image and/or commentary extracted from one model
// response. At least one of the two fields is set; a response with neither is
// reported as ErrNoOutput instead.
type Result struct {
	Image *asset.Image
	Text  string
}

// ErrNoOutput indicates the model response carried no image and no text.
var ErrNoOutput = errors.New("gemini response contained no output")

// TextOnlyError reports an edit call that produced commentary but no image.
// The model text usually explains the refusal, so it travels with the error.
type TextOnlyError struct {
	Text string
}

func (e *TextOnlyError) Error() string {
	return fmt.Sprintf("gemini returned text instead of an image: %s", e.Text)
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}

	chatModel := strings.TrimSpace(opts.ChatModel)
	if chatModel == "" {
		chatModel = "gemini-2.5-flash"
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
		imageModel: imageModel,
		chatModel:  chatModel,
		httpClient: client,
		logger:     logger,
	}, nil
}

// ImageModel returns the configured image model identifier.
func (c *Client) ImageModel() string {
	return c.imageModel
}

// ChatModel returns the configured chat model identifier.
func (c *Client) ChatModel() string {
	return c.chatModel
}

// Generate issues one generateContent call carrying the reference images as
// leading inline parts, in the given order, and the instruction as the
// trailing text part. The response parts are scanned in order: the first
// inline image becomes Result.Image and later image parts are ignored, the
// first non-empty text becomes Result.Text.
func (c *Client) Generate(ctx context.Context, instruction string, images []asset.Image) (*Result, error) {
	parts := make([]geminiPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: img.MIME,
			Data:     base64.StdEncoding.EncodeToString(img.Bytes),
		}})
	}
	parts = append(parts, geminiPart{Text: instruction})

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, c.imageModel, payload, &response); err != nil {
		return nil, err
	}

	result := collectResult(response)
	if result.Image == nil && result.Text == "" {
		return nil, ErrNoOutput
	}

	c.logger.Debug().
		Str("model", c.imageModel).
		Int("input_images", len(images)).
		Bool("image", result.Image != nil).
		Bool("text", result.Text != "").
		Msg("gemini: generation completed")

	return result, nil
}

// EditImage submits a single-image edit. An edit is expected to come back
// with a replacement image; a text-only reply is returned as *TextOnlyError
// so the caller can surface the model's explanation.
func (c *Client) EditImage(ctx context.Context, instruction string, img asset.Image) (*asset.Image, string, error) {
	result, err := c.Generate(ctx, instruction, []asset.Image{img})
	if err != nil {
		return nil, "", err
	}
	if result.Image == nil {
		return nil, "", &TextOnlyError{Text: result.Text}
	}
	return result.Image, result.Text, nil
}

func collectResult(response geminiGenerateContentResponse) *Result {
	result := &Result{}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				if result.Image != nil {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil || len(data) == 0 {
					continue
				}
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				result.Image = &asset.Image{Bytes: data, MIME: mime}
				continue
			}
			if result.Text == "" && strings.TrimSpace(part.Text) != "" {
				result.Text = part.Text
			}
		}
	}
	return result
}

func (c *Client) invoke(ctx context.Context, model string, payload any, out any) error {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.baseURL, "/"), url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
