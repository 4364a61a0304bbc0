package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"concoevents/internal/helpers"
)

const chatSystemPrompt = "You are a helpful assistant for ConcoEvents."

// ChatHandler proxies the SPA's assistant box to a chat-completion
// backend: OpenAI when an API key is configured, otherwise a local
// Ollama server. Both speak the same wire format for our purposes.
type ChatHandler struct {
	openAIKey   string
	openAIURL   string
	ollamaHost  string
	ollamaModel string
	httpClient  *http.Client
}

func NewChatHandler(openAIKey, ollamaHost, ollamaModel string) *ChatHandler {
	return &ChatHandler{
		openAIKey:   openAIKey,
		openAIURL:   "https://api.openai.com/v1/chat/completions",
		ollamaHost:  ollamaHost,
		ollamaModel: ollamaModel,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []chatMessage `json:"messages"`
}

type ollamaChatResponse struct {
	Message chatMessage `json:"message"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing 'message' in body.")
		return
	}

	messages := []chatMessage{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: req.Message},
	}

	var reply string
	var err error
	if h.openAIKey != "" {
		reply, err = h.completeOpenAI(messages)
	} else {
		reply, err = h.completeOllama(messages)
	}
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *ChatHandler) completeOpenAI(messages []chatMessage) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:    "gpt-3.5-turbo",
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequest(http.MethodPost, h.openAIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+h.openAIKey)

	response, err := h.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("OpenAI error: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return "", fmt.Errorf("OpenAI HTTP %d: %s", response.StatusCode, detail)
	}

	var completion openAIChatResponse
	if err := json.NewDecoder(response.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("OpenAI error: %v", err)
	}
	if len(completion.Choices) == 0 {
		return "(no response)", nil
	}
	return completion.Choices[0].Message.Content, nil
}

func (h *ChatHandler) completeOllama(messages []chatMessage) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    h.ollamaModel,
		Stream:   false,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	response, err := h.httpClient.Post(h.ollamaHost+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("Ollama not reachable at %s", h.ollamaHost)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return "", fmt.Errorf("Ollama HTTP %d: %s", response.StatusCode, detail)
	}

	var completion ollamaChatResponse
	if err := json.NewDecoder(response.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("Ollama error: %v", err)
	}
	if completion.Message.Content == "" {
		return "(no response)", nil
	}
	return completion.Message.Content, nil
}
