package openrouter

import (
	"context"
	"fmt"

	"github.com/imroc/req"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/nanopics/NanoBananaBot/internal/errors"
)

// Tool is a function declaration offered to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is the model's decision to invoke one of the offered tools.
type ToolCall struct {
	Name      string
	Arguments gjson.Result
}

// ToolRequest carries a free-text message through tool resolution.
// Model and APIBase override the configured values, like in
// GenerateRequest.
type ToolRequest struct {
	Text    string
	Tools   []Tool
	Model   string
	APIBase string
}

// ResolveToolCall sends free text to the model together with the tool
// declarations and returns the tool call the model picked, or nil when
// the model answered without calling a tool.
func (c *Client) ResolveToolCall(ctx context.Context, r ToolRequest) (*ToolCall, error) {
	if len(c.cfg.APIKeys) == 0 {
		return nil, errors.Create(errors.NoApiKeyError)
	}
	apiBase := c.cfg.APIBase
	if r.APIBase != "" {
		apiBase = r.APIBase
	}
	model := c.cfg.Model
	if r.Model != "" {
		model = r.Model
	}
	declarations := make([]toolDeclaration, 0, len(r.Tools))
	for _, t := range r.Tools {
		declarations = append(declarations, toolDeclaration{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	body, _ := sjson.Set("{}", "model", model)
	body, _ = sjson.Set(body, "messages", []textMessage{{Role: "user", Content: r.Text}})
	body, _ = sjson.Set(body, "tools", declarations)
	body, _ = sjson.Set(body, "tool_choice", "auto")

	var lastErr error
	for attempt, key := range c.cfg.APIKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := req.Post(apiBase+"/chat/completions", c.header(key), body)
		if err != nil {
			lastErr = err
			log.Warnf("[openrouter] tool resolution attempt %d failed: %v", attempt+1, err)
			continue
		}
		raw := resp.Bytes()
		if resp.Response().StatusCode >= 300 {
			msg := gjson.GetBytes(raw, "error.message").String()
			if msg == "" {
				msg = resp.Response().Status
			}
			lastErr = fmt.Errorf("api error: %s", msg)
			log.Warnf("[openrouter] tool resolution attempt %d failed: %v", attempt+1, lastErr)
			continue
		}
		call := gjson.GetBytes(raw, "choices.0.message.tool_calls.0.function")
		if !call.Exists() {
			return nil, nil
		}
		return &ToolCall{
			Name:      call.Get("name").String(),
			Arguments: gjson.Parse(call.Get("arguments").String()),
		}, nil
	}
	return nil, lastErr
}
