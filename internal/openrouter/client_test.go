package openrouter

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExtractImageURL(t *testing.T) {
	raw := []byte(`{"choices":[{"message":{"images":[{"image_url":{"url":"https://img.example/x.png"}}]}}]}`)
	assert.Equal(t, "https://img.example/x.png", extractImageURL(raw))

	raw = []byte(`{"choices":[{"message":{"content":"data:image/png;base64,aGVsbG8="}}]}`)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", extractImageURL(raw))

	raw = []byte(`{"choices":[{"message":{"content":"I cannot draw that."}}]}`)
	assert.Equal(t, "", extractImageURL(raw))
}

func TestGenerateRotatesKeysOnFailure(t *testing.T) {
	pngBytes := []byte("\x89PNG fake image payload")
	var authHeaders []string
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		if len(authHeaders) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
			return
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"images":[{"image_url":{"url":"%s/generated.png"}}]}}]}`, srv.URL)
	})
	mux.HandleFunc("/generated.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	})

	c := NewClient(Config{
		APIKeys:          []string{"key-one", "key-two"},
		APIBase:          srv.URL,
		MaxRetryAttempts: 3,
		DataDir:          t.TempDir(),
	})
	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a banana"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, srv.URL+"/generated.png", res.URL)
	b, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, b)

	require.Len(t, authHeaders, 2)
	assert.Equal(t, "Bearer key-one", authHeaders[0])
	assert.Equal(t, "Bearer key-two", authHeaders[1])
}

func TestGenerateInlineDataURL(t *testing.T) {
	payload := []byte("inline image bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"choices":[{"message":{"images":[{"image_url":{"url":"data:image/jpeg;base64,%s"}}]}}]}`, encoded)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: []string{"k"}, APIBase: srv.URL, DataDir: t.TempDir()})
	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a banana"})
	require.NoError(t, err)

	// inline data has no remote url, only the local file
	assert.Empty(t, res.URL)
	b, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, b)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":{"message":"model unavailable"}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: []string{"k"}, APIBase: srv.URL, MaxRetryAttempts: 2, DataDir: t.TempDir()})
	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a banana"})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestGenerateNoImageInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"no can do"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: []string{"k"}, APIBase: srv.URL, MaxRetryAttempts: 1, DataDir: t.TempDir()})
	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a banana"})
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestGenerateDisabled(t *testing.T) {
	Enabled = false
	defer func() { Enabled = true }()

	c := NewClient(Config{APIKeys: []string{"k"}})
	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a banana"})
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestGenerateNoKeys(t *testing.T) {
	c := NewClient(Config{})
	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "a banana"})
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestResolveToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"tool_calls":[{"function":{"name":"gemini-pic-gen","arguments":"{\"image_description\":\"a cat\",\"use_reference_images\":false}"}}]}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: []string{"k"}, APIBase: srv.URL})
	call, err := c.ResolveToolCall(context.Background(), ToolRequest{Text: "draw me a cat"})
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, "gemini-pic-gen", call.Name)
	assert.Equal(t, "a cat", call.Arguments.Get("image_description").String())
	assert.False(t, call.Arguments.Get("use_reference_images").Bool())
}

func TestResolveToolCallHonorsOverrides(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"just chatting"}}]}`)
	}))
	defer srv.Close()

	// configured base points nowhere, the request override must win
	c := NewClient(Config{APIKeys: []string{"k"}, APIBase: "http://127.0.0.1:1", Model: "default/model"})
	_, err := c.ResolveToolCall(context.Background(), ToolRequest{
		Text:    "draw me a cat",
		Model:   "session/model",
		APIBase: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "session/model", gjson.GetBytes(gotBody, "model").String())
	assert.Equal(t, "draw me a cat", gjson.GetBytes(gotBody, "messages.0.content").String())
}

func TestResolveToolCallNoCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"message":{"content":"just chatting"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKeys: []string{"k"}, APIBase: srv.URL})
	call, err := c.ResolveToolCall(context.Background(), ToolRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Nil(t, call)
}
