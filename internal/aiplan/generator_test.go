package aiplan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/fitlog/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// mockCompleter はCompleter のテスト用モック。
type mockCompleter struct {
	enabled    bool
	completeFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *mockCompleter) Enabled() bool { return m.enabled }

func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.completeFn(ctx, systemPrompt, userPrompt)
}

func TestGenerator_Generate_UsesLLMWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	llm := &mockCompleter{
		enabled: true,
		completeFn: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			if !strings.Contains(userPrompt, "lose_weight") {
				t.Errorf("userPrompt に目標が含まれていない: %s", userPrompt)
			}
			return "生成されたプラン", nil
		},
	}

	g := NewGenerator(llm, newTestLogger(&buf))
	content, source := g.Generate(context.Background(), model.PlanGoalLoseWeight, 70.5)

	if content != "生成されたプラン" {
		t.Errorf("content = %s, want 生成されたプラン", content)
	}
	if source != model.PlanSourceLLM {
		t.Errorf("source = %s, want llm", source)
	}
}

func TestGenerator_Generate_FallsBackOnLLMError(t *testing.T) {
	var buf bytes.Buffer
	llm := &mockCompleter{
		enabled: true,
		completeFn: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("api error")
		},
	}

	g := NewGenerator(llm, newTestLogger(&buf))
	content, source := g.Generate(context.Background(), model.PlanGoalGainMuscle, 0)

	if source != model.PlanSourceTemplate {
		t.Errorf("source = %s, want template", source)
	}
	if !strings.Contains(content, "増量プラン") {
		t.Errorf("テンプレート本文が含まれていない: %s", content)
	}
	if !strings.Contains(buf.String(), "テンプレートを使用します") {
		t.Error("フォールバック時に警告ログが出力されるべき")
	}
}

func TestGenerator_Generate_FallsBackWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	llm := &mockCompleter{enabled: false}

	g := NewGenerator(llm, newTestLogger(&buf))
	content, source := g.Generate(context.Background(), model.PlanGoalMaintain, 65)

	if source != model.PlanSourceTemplate {
		t.Errorf("source = %s, want template", source)
	}
	if !strings.Contains(content, "65.0kg") {
		t.Errorf("最新体重が本文に含まれていない: %s", content)
	}
}

func TestRenderTemplate_UnknownGoalUsesMaintain(t *testing.T) {
	content := RenderTemplate(model.PlanGoal("unknown"), 0)
	if !strings.Contains(content, "維持プラン") {
		t.Errorf("未知の目標はmaintainテンプレートを使うべき: %s", content)
	}
}

func TestClient_Complete_ParsesChatResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("HTTPメソッド = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %s, want Bearer key", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("リクエストのデコードに失敗した: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %s, want gpt-4o-mini", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("メッセージ数 = %d, want 2", len(req.Messages))
		}

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: "plan body"}})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), server.URL, "key", "gpt-4o-mini")

	content, err := c.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete がエラーを返した: %v", err)
	}
	if content != "plan body" {
		t.Errorf("content = %s, want plan body", content)
	}
}

func TestClient_Complete_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), server.URL, "key", "gpt-4o-mini")

	if _, err := c.Complete(context.Background(), "system", "user"); err == nil {
		t.Error("エラーステータスでエラーを返すべき")
	}
}
