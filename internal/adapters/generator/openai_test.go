package generator

import (
	"context"
	"strings"
	"testing"

	openai "tg-smm-bot/internal/infra/openai"
)

type fakeChatClient struct {
	lastReq openai.ChatCompletionRequest
	reply   string
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: f.reply}}},
	}, nil
}

func TestGeneratePostBuildsPrompt(t *testing.T) {
	client := &fakeChatClient{reply: "  готовый пост  "}
	g := NewOpenAI(client, "test-model", 0)

	out, err := g.GeneratePost(context.Background(), "Запуск продукта", []string{"пример один", "пример два"}, "")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "готовый пост" {
		t.Fatalf("ожидали обрезанный ответ, получили %q", out)
	}

	if len(client.lastReq.Messages) != 2 {
		t.Fatalf("ожидали system+user сообщения")
	}
	prompt := client.lastReq.Messages[1].Content
	if !strings.Contains(prompt, "Тема: Запуск продукта") {
		t.Fatalf("в промпте нет темы: %q", prompt)
	}
	if !strings.Contains(prompt, "1. пример один") || !strings.Contains(prompt, "2. пример два") {
		t.Fatalf("в промпте нет нумерованных примеров: %q", prompt)
	}
	if !strings.Contains(prompt, "Создай новый уникальный пост") {
		t.Fatalf("без указаний ожидали инструкцию по умолчанию: %q", prompt)
	}
}

func TestGeneratePostPassesExtraInstructions(t *testing.T) {
	client := &fakeChatClient{reply: "пост"}
	g := NewOpenAI(client, "test-model", 0)

	if _, err := g.GeneratePost(context.Background(), "Тема", nil, "короче и с эмодзи"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	prompt := client.lastReq.Messages[1].Content
	if !strings.Contains(prompt, "Дополнительные указания: короче и с эмодзи") {
		t.Fatalf("указания не попали в промпт: %q", prompt)
	}
	if strings.Contains(prompt, "Создай новый уникальный пост") {
		t.Fatalf("при указаниях инструкция по умолчанию не нужна")
	}
}

func TestGeneratePostClipsLongExamples(t *testing.T) {
	client := &fakeChatClient{reply: "пост"}
	g := NewOpenAI(client, "test-model", 0)

	long := strings.Repeat("ж", exampleRuneLimit+100)
	if _, err := g.GeneratePost(context.Background(), "Тема", []string{long}, ""); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	prompt := client.lastReq.Messages[1].Content
	if strings.Contains(prompt, long) {
		t.Fatalf("пример не был обрезан до лимита")
	}
	if !strings.Contains(prompt, strings.Repeat("ж", exampleRuneLimit)) {
		t.Fatalf("обрезанный пример должен остаться в промпте")
	}
}
