package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/baike-api/internal/config"
	"github.com/phrazzld/baike-api/internal/generation"
)

type capturingClient struct {
	lastReq openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	calls   int
}

func (c *capturingClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.calls++
	c.lastReq = req
	return c.resp, nil
}

func reply(content string, finish openai.FinishReason) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: finish,
		}},
	}
}

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{Provider: "openai", APIKey: "sk-test", BaseURL: baseURL, ModelName: "gpt-4o-mini", Temperature: 0.2}
}

func TestComplete_Messages(t *testing.T) {
	cc := &capturingClient{resp: reply("1. Pinyin: hé", openai.FinishReasonStop)}
	c := NewWithClient(cc, testConfig(""), nil)

	out, err := c.Complete(context.Background(), generation.Prompt{System: "sys", User: "usr"})
	require.NoError(t, err)
	assert.Equal(t, "1. Pinyin: hé", out)

	require.Len(t, cc.lastReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, cc.lastReq.Messages[0].Role)
	assert.Equal(t, "sys", cc.lastReq.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, cc.lastReq.Messages[1].Role)
	assert.Equal(t, "gpt-4o-mini", cc.lastReq.Model)
	assert.InDelta(t, 0.2, cc.lastReq.Temperature, 1e-6)
}

func TestComplete_RejectedReplies(t *testing.T) {
	tests := []struct {
		name    string
		resp    openai.ChatCompletionResponse
		wantErr error
	}{
		{name: "no choices", resp: openai.ChatCompletionResponse{}, wantErr: generation.ErrInvalidResponse},
		{name: "blank", resp: reply(" ", openai.FinishReasonStop), wantErr: generation.ErrInvalidResponse},
		{name: "filtered", resp: reply("", openai.FinishReasonContentFilter), wantErr: generation.ErrContentBlocked},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cc := &capturingClient{resp: tc.resp}
			_, err := NewWithClient(cc, testConfig(""), nil).Complete(context.Background(), generation.Prompt{User: "u"})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 1, cc.calls)
		})
	}
}

func TestComplete_OverHTTP(t *testing.T) {
	var gotAuth string
	var gotBody openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply("长城\n百度百科\n<长城>", openai.FinishReasonStop))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL+"/v1/"), nil)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), generation.Prompt{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "长城\n百度百科\n<长城>", out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
}

func TestComplete_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), generation.Prompt{User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")
}

func TestNew_Validation(t *testing.T) {
	cfg := testConfig("")
	cfg.APIKey = ""
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
