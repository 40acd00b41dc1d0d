// Package openrouter talks to the OpenRouter chat-completions API to
// generate images with the Gemini image models. Retry and key-rotation
// policy lives here, callers only hand over a prompt and optional
// reference images.
package openrouter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imroc/req"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/nanopics/NanoBananaBot/internal/errors"
)

// Enabled can be flipped at runtime through the admin api.
var Enabled = true

const (
	DefaultAPIBase = "https://openrouter.ai/api/v1"
	DefaultModel   = "google/gemini-2.5-flash-image-preview:free"
)

type Config struct {
	APIKeys          []string
	Model            string
	APIBase          string
	MaxRetryAttempts int
	DataDir          string
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = 3
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return &Client{cfg: cfg}
}

type GenerateRequest struct {
	Prompt      string
	InputImages []string // base64 payloads without the data: prefix
	Model       string   // optional override of the configured model
	APIBase     string   // optional override of the configured api base
}

type GenerateResult struct {
	URL  string // remote image url, empty when the model returned inline data
	Path string // local file the image was written to
}

func (c *Client) header(key string) req.Header {
	return req.Header{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": fmt.Sprintf("Bearer %s", key),
	}
}

// Generate runs the prompt against the API, rotating through the key
// list on every failed attempt. The last error is surfaced when all
// attempts are exhausted.
func (c *Client) Generate(ctx context.Context, r GenerateRequest) (*GenerateResult, error) {
	if !Enabled {
		return nil, errors.Create(errors.GenerationDisabledError)
	}
	if len(c.cfg.APIKeys) == 0 {
		return nil, errors.Create(errors.NoApiKeyError)
	}
	apiBase := c.cfg.APIBase
	if r.APIBase != "" {
		apiBase = r.APIBase
	}
	body, err := c.requestBody(r)
	if err != nil {
		return nil, err
	}
	var lastErr error
	attempts := c.cfg.MaxRetryAttempts
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := c.cfg.APIKeys[attempt%len(c.cfg.APIKeys)]
		result, err := c.generateOnce(apiBase, key, body)
		if err != nil {
			lastErr = err
			log.Warnf("[openrouter] attempt %d/%d failed: %v", attempt+1, attempts, err)
			continue
		}
		return result, nil
	}
	return nil, lastErr
}

func (c *Client) requestBody(r GenerateRequest) (string, error) {
	model := r.Model
	if model == "" {
		model = c.cfg.Model
	}
	content := []contentPart{{Type: "text", Text: r.Prompt}}
	for _, img := range r.InputImages {
		content = append(content, contentPart{
			Type:     "image_url",
			ImageURL: &imageRef{URL: "data:image/jpeg;base64," + img},
		})
	}
	raw, err := json.Marshal([]message{{Role: "user", Content: content}})
	if err != nil {
		return "", err
	}
	body, _ := sjson.Set("{}", "model", model)
	body, _ = sjson.Set(body, "modalities", []string{"image", "text"})
	body, _ = sjson.SetRaw(body, "messages", string(raw))
	return body, nil
}

func (c *Client) generateOnce(apiBase, key, body string) (*GenerateResult, error) {
	resp, err := req.Post(apiBase+"/chat/completions", c.header(key), body)
	if err != nil {
		return nil, err
	}
	raw := resp.Bytes()
	if resp.Response().StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = resp.Response().Status
		}
		return nil, errors.New(errors.GenerationFailedError, fmt.Errorf("api error: %s", msg))
	}
	ref := extractImageURL(raw)
	if ref == "" {
		return nil, errors.Create(errors.GenerationFailedError)
	}
	path, err := c.saveImage(ref)
	if err != nil {
		return nil, err
	}
	url := ref
	if strings.HasPrefix(ref, "data:") {
		url = ""
	}
	return &GenerateResult{URL: url, Path: path}, nil
}

// extractImageURL digs the generated image out of a chat-completions
// response. Image models attach it to message.images, some return a
// bare data url as the message content.
func extractImageURL(raw []byte) string {
	if url := gjson.GetBytes(raw, "choices.0.message.images.0.image_url.url").String(); url != "" {
		return url
	}
	content := gjson.GetBytes(raw, "choices.0.message.content").String()
	if strings.HasPrefix(content, "data:image/") {
		return content
	}
	return ""
}

// saveImage writes the generated image to the data directory and
// returns the local path. The reference is either a data url or a
// regular http url to download.
func (c *Client) saveImage(ref string) (string, error) {
	var payload []byte
	ext := ".png"
	if strings.HasPrefix(ref, "data:") {
		meta, data, found := strings.Cut(ref, ",")
		if !found {
			return "", fmt.Errorf("malformed data url")
		}
		if strings.Contains(meta, "image/jpeg") {
			ext = ".jpg"
		}
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("could not decode image data: %v", err)
		}
		payload = decoded
	} else {
		resp, err := req.Get(ref)
		if err != nil {
			return "", err
		}
		if resp.Response().StatusCode >= 300 {
			return "", fmt.Errorf("image download failed: %s", resp.Response().Status)
		}
		if e := filepath.Ext(strings.Split(ref, "?")[0]); e != "" {
			ext = e
		}
		payload = resp.Bytes()
	}
	if err := os.MkdirAll(c.cfg.DataDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(c.cfg.DataDir, uuid.NewV4().String()+ext)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
