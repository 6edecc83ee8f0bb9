package generator

import (
	"context"
	"fmt"
	"strings"
)

// Static имитирует провайдера генерации. Используется в dev-окружении,
// когда ключ OpenAI не задан.
type Static struct{}

// NewStatic создаёт заглушку.
func NewStatic() *Static {
	return &Static{}
}

// GeneratePost возвращает шаблонный пост по теме.
func (s *Static) GeneratePost(_ context.Context, theme string, idealPosts []string, extra string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", strings.TrimSpace(theme))
	b.WriteString("Черновик поста, сгенерированный заглушкой провайдера.\n")
	if len(idealPosts) > 0 {
		fmt.Fprintf(&b, "Учтено примеров: %d.\n", len(idealPosts))
	}
	if strings.TrimSpace(extra) != "" {
		fmt.Fprintf(&b, "Указания: %s\n", extra)
	}
	return b.String(), nil
}
