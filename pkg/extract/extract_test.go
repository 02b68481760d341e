package extract

import "testing"

func TestModel(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]any
		want      string
		wantFound bool
	}{
		{
			name:      "direct model member",
			fields:    map[string]any{"Model": "gpt-4o"},
			want:      "gpt-4o",
			wantFound: true,
		},
		{
			name:      "model id nested inside value wrapper",
			fields:    map[string]any{"Value": map[string]any{"ModelId": "gemini-2.5-flash"}},
			want:      "gemini-2.5-flash",
			wantFound: true,
		},
		{
			name:      "empty map",
			fields:    map[string]any{},
			want:      ModelUnknown,
			wantFound: false,
		},
		{
			name:      "model member is not a string",
			fields:    map[string]any{"Model": 42},
			want:      ModelUnknown,
			wantFound: false,
		},
		{
			name:      "snake_case spelling from drained stream",
			fields:    map[string]any{"model": "mistral-large"},
			want:      "mistral-large",
			wantFound: true,
		},
		{
			name: "value wrapper as struct",
			fields: map[string]any{"Value": struct {
				ModelId string
			}{ModelId: "titan-text-express"}},
			want:      "titan-text-express",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Model(tt.fields)
			if got != tt.want || found != tt.wantFound {
				t.Fatalf("Model() = (%q, %v), want (%q, %v)", got, found, tt.want, tt.wantFound)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   TokenUsage
	}{
		{
			name:   "openai official naming",
			fields: map[string]any{"Usage": map[string]any{"InputTokenCount": 10, "OutputTokenCount": 20}},
			want:   TokenUsage{InputTokens: 10, OutputTokens: 20, Complete: true},
		},
		{
			name:   "community sdk naming",
			fields: map[string]any{"Usage": map[string]any{"PromptTokens": 5, "CompletionTokens": 7}},
			want:   TokenUsage{InputTokens: 5, OutputTokens: 7, Complete: true},
		},
		{
			name:   "one-sided usage is incomplete",
			fields: map[string]any{"Usage": map[string]any{"InputTokenCount": 10}},
			want:   TokenUsage{InputTokens: 10, OutputTokens: 0, Complete: false},
		},
		{
			name:   "mixed naming families resolve per direction",
			fields: map[string]any{"Usage": map[string]any{"InputTokenCount": 10, "CompletionTokens": 20}},
			want:   TokenUsage{InputTokens: 10, OutputTokens: 20, Complete: true},
		},
		{
			name:   "earlier family wins within a direction",
			fields: map[string]any{"Usage": map[string]any{"InputTokenCount": 10, "PromptTokens": 99, "CompletionTokens": 20}},
			want:   TokenUsage{InputTokens: 10, OutputTokens: 20, Complete: true},
		},
		{
			name:   "gemini metadata naming",
			fields: map[string]any{"Metadata": map[string]any{"PromptTokenCount": 3, "CandidatesTokenCount": 9}},
			want:   TokenUsage{InputTokens: 3, OutputTokens: 9, Complete: true},
		},
		{
			name:   "empty map",
			fields: map[string]any{},
			want:   TokenUsage{},
		},
		{
			name:   "usage present but empty",
			fields: map[string]any{"Usage": map[string]any{}},
			want:   TokenUsage{},
		},
		{
			name: "usage branch shadows metadata branch",
			fields: map[string]any{
				"Usage":    map[string]any{"InputTokenCount": 1},
				"Metadata": map[string]any{"PromptTokenCount": 3, "CandidatesTokenCount": 9},
			},
			want: TokenUsage{InputTokens: 1, OutputTokens: 0, Complete: false},
		},
		{
			name:   "json-decoded floats and snake_case",
			fields: map[string]any{"usage": map[string]any{"prompt_tokens": float64(15), "completion_tokens": float64(30)}},
			want:   TokenUsage{InputTokens: 15, OutputTokens: 30, Complete: true},
		},
		{
			name: "usage as struct",
			fields: map[string]any{"Usage": struct {
				InputTokenCount  int64
				OutputTokenCount int64
			}{InputTokenCount: 100, OutputTokenCount: 200}},
			want: TokenUsage{InputTokens: 100, OutputTokens: 200, Complete: true},
		},
		{
			name:   "non-numeric counts are misses",
			fields: map[string]any{"Usage": map[string]any{"InputTokenCount": "lots", "OutputTokenCount": true}},
			want:   TokenUsage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.fields)
			if got != tt.want {
				t.Fatalf("Tokens() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"InputTokenCount", "input_token_count"},
		{"Model", "model"},
		{"ModelId", "model_id"},
		{"Usage", "usage"},
		{"CandidatesTokenCount", "candidates_token_count"},
	}

	for _, tt := range tests {
		if got := snakeCase(tt.in); got != tt.want {
			t.Errorf("snakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
