package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mailsage/internal/config"
	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/service"
)

type aiClient struct {
	provider   string
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

func NewAIClient(cfg *config.Config, logger *logger.Logger) service.AIClient {
	return newClient(cfg.AIProvider, cfg.AIModel, cfg.AIKey, getBaseURL(cfg.AIProvider), &http.Client{}, logger)
}

func newClient(provider, modelName, apiKey, baseURL string, httpClient *http.Client, logger *logger.Logger) *aiClient {
	if modelName == "" {
		modelName = getModel(provider)
	}
	return &aiClient{
		provider:   provider,
		model:      modelName,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("ai"),
	}
}

// getBaseURL returns the appropriate API base URL based on the provider
func getBaseURL(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "https://api.deepseek.com"
	case ProviderGemini:
		return "https://generativelanguage.googleapis.com/v1beta"
	default:
		return "https://api.openai.com/v1"
	}
}

// getModel returns the default model for the provider
func getModel(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderGemini:
		return "gemini-2.0-flash-lite"
	default:
		return "gpt-4o"
	}
}

// OpenAI/DeepSeek API request/response structures
type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Gemini API request/response structures
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

const summaryPrompt = `You are a smart, conversational executive assistant. Your goal is to help the user "get the gist" of the email quickly without sounding robotic. Use natural language.

Analyze the email context, tone, and intent. Output your response in this EXACT format:

[Write a conversational summary of what happened. Focus on the story and the outcome.]

Action Items
[List specific tasks in bullet points. If none, strictly write: "0 action items"]

Key Links
[Identify up to 3 important links. Do NOT paste raw URLs. Instead, write a short, natural description of what the link is. Format them exactly like this: [Link Description](URL)]`

const assistantPrompt = `You are MailSage, an intelligent email assistant.

You have read-access to the user's current inbox view:
---
%s
---

CAPABILITIES:
1. Answer questions about the emails.
2. Perform actions on emails using specific command codes.

COMMANDS:
If the user asks to PIN an email, find the matching ID from the list above and append this exact code to the end of your response:
[ACTION:PIN:email_id]

EXAMPLE:
User: "Pin the email from Capcom."
You: "I've pinned the Capcom newsletter for you. [ACTION:PIN:184392]"

RULES:
- Be concise and helpful.
- If you can't find an email matching the user's description, ask for clarification.
- Only use the [ACTION] code if the user explicitly asks to perform that action.`

// ContextLines renders the inbox view the assistant may refer to.
func ContextLines(emails []model.ContextEntry) string {
	lines := make([]string, len(emails))
	for i, e := range emails {
		lines[i] = fmt.Sprintf("ID: %s | From: %s (%s) | Subject: %q | Date: %s",
			e.ID, e.Sender.Name, e.Sender.Email, e.Subject, e.Date)
	}
	return strings.Join(lines, "\n")
}

func (a *aiClient) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := a.complete(ctx, summaryPrompt, text)
	if err != nil {
		return "", fmt.Errorf("failed to summarize email: %w", err)
	}
	a.logger.Debug("Summarized email")
	return summary, nil
}

func (a *aiClient) Chat(ctx context.Context, userMessage string, emails []model.ContextEntry) (string, error) {
	reply, err := a.complete(ctx, fmt.Sprintf(assistantPrompt, ContextLines(emails)), userMessage)
	if err != nil {
		return "", fmt.Errorf("failed to chat: %w", err)
	}
	a.logger.Debug("Assistant replied with", len(reply), "chars")
	return reply, nil
}

func (a *aiClient) complete(ctx context.Context, system, user string) (string, error) {
	switch a.provider {
	case ProviderGemini:
		return a.completeWithGemini(ctx, system, user)
	default:
		return a.completeWithOpenAIStyle(ctx, system, user)
	}
}

// completeWithOpenAIStyle handles OpenAI/DeepSeek chat completions
func (a *aiClient) completeWithOpenAIStyle(ctx context.Context, system, user string) (string, error) {
	request := chatCompletionRequest{
		Model: a.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var resp chatCompletionResponse
	url := a.baseURL + "/chat/completions"
	if err := a.post(ctx, url, map[string]string{"Authorization": "Bearer " + a.apiKey}, request, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from AI: %w", service.ErrMalformedResponse)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// completeWithGemini handles the Google Gemini generateContent API
func (a *aiClient) completeWithGemini(ctx context.Context, system, user string) (string, error) {
	request := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: user}}},
		},
	}

	var resp geminiResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", a.baseURL, a.model)
	if err := a.post(ctx, url, map[string]string{"x-goog-api-key": a.apiKey}, request, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini: %w", service.ErrMalformedResponse)
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

// post sends body as JSON and decodes the reply into out. Transport and
// status failures map to ErrUpstreamUnavailable, decode failures to
// ErrMalformedResponse.
func (a *aiClient) post(ctx context.Context, url string, headers map[string]string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		a.logger.Error("AI request failed with status", resp.StatusCode, ":", string(detail))
		return fmt.Errorf("%w: status %d", service.ErrUpstreamUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", service.ErrUpstreamUnavailable, err)
		}
		return fmt.Errorf("%w: %v", service.ErrMalformedResponse, err)
	}
	return nil
}
