package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatRouter(h *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/chat", h.Chat)
	return r
}

func postChat(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatMissingMessage(t *testing.T) {
	h := NewChatHandler("", "http://localhost:11434", "llama3")
	r := chatRouter(h)

	w := postChat(r, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatOllamaFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "When is the career fair?", req.Messages[1].Content)

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: chatMessage{Role: "assistant", Content: "October 2nd, EV Building."},
		})
	}))
	defer upstream.Close()

	h := NewChatHandler("", upstream.URL, "llama3")
	r := chatRouter(h)

	w := postChat(r, `{"message":"When is the career fair?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "October 2nd, EV Building.", response.Reply)
}

func TestChatOpenAIPath(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openAIChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)

		json.NewEncoder(w).Encode(openAIChatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "Hello!"}},
			},
		})
	}))
	defer upstream.Close()

	h := NewChatHandler("sk-test", "http://localhost:11434", "llama3")
	h.openAIURL = upstream.URL
	r := chatRouter(h)

	w := postChat(r, `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello!")
}

func TestChatUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	h := NewChatHandler("sk-test", "http://localhost:11434", "llama3")
	h.openAIURL = upstream.URL
	r := chatRouter(h)

	w := postChat(r, `{"message":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "OpenAI HTTP 429")
}
