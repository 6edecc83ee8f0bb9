package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "tg-smm-bot/internal/infra/openai"
)

const systemPrompt = "Ты - эксперт по созданию контента для социальных сетей. " +
	"Твоя задача - создавать привлекательные и эффективные посты на основе предоставленных примеров и темы."

const exampleRuneLimit = 2000

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI генерирует посты через OpenAI Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

// NewOpenAI создаёт провайдер генерации.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4o"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// GeneratePost строит пост по теме, примерам и дополнительным указаниям.
func (g *OpenAI) GeneratePost(ctx context.Context, theme string, idealPosts []string, extra string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   1000,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: systemPrompt},
			{Role: openai.RoleUser, Content: buildPrompt(theme, idealPosts, extra)},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: пустой ответ")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(theme string, idealPosts []string, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Тема: %s\n\n", theme)

	if len(idealPosts) > 0 {
		b.WriteString("Примеры идеальных постов:\n")
		for i, post := range idealPosts {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, clipRunes(post, exampleRuneLimit))
		}
	}

	if strings.TrimSpace(extra) != "" {
		fmt.Fprintf(&b, "\nДополнительные указания: %s\n", extra)
	} else {
		b.WriteString("\nСоздай новый уникальный пост, используя стиль и структуру примеров, но с новым содержанием.")
	}

	b.WriteString("\nСоздай пост в формате Markdown, который будет соответствовать теме и стилю примеров.")
	return b.String()
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
