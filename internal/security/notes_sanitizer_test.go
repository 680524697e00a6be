package security

import "testing"

func TestNotesSanitizer_RemovesScriptTags(t *testing.T) {
	s := NewNotesSanitizer()

	got := s.Sanitize(`ベンチプレス 3セット<script>alert("xss")</script>`)

	if got != "ベンチプレス 3セット" {
		t.Errorf("Sanitize = %q, want スクリプト除去済みテキスト", got)
	}
}

func TestNotesSanitizer_RemovesAllTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"プレーンテキストはそのまま", "今日は調子が良かった", "今日は調子が良かった"},
		{"装飾タグも除去", "<b>強調</b>と<i>斜体</i>", "強調と斜体"},
		{"リンクはテキストのみ残す", `<a href="https://evil.example">参考</a>`, "参考"},
		{"イベント属性付きタグ", `<img src=x onerror=alert(1)>メモ`, "メモ"},
		{"空文字列", "", ""},
	}

	s := NewNotesSanitizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNotesSanitizer_Idempotent(t *testing.T) {
	s := NewNotesSanitizer()
	in := "スクワット<script>x</script> 5x5"

	once := s.Sanitize(in)
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("冪等ではない: %q != %q", once, twice)
	}
}
