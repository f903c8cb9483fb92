package anyllm

import (
	"errors"
	"strings"
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/intervo/intervo/pkg/provider/llm"
)

// ── construction ─────────────────────────────────────────────────────────────

func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "llama-3.3-70b-versatile")
	if err == nil {
		t.Fatal("expected error for empty provider name")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	_, err := New("groq", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("mainframe", "some-model")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestNew_Groq_WithAPIKey(t *testing.T) {
	p, err := New("groq", "llama-3.3-70b-versatile", anyllmlib.WithAPIKey("gsk-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil Provider")
	}
}

// ── buildParams ──────────────────────────────────────────────────────────────

func TestBuildParams_SystemPromptFirst(t *testing.T) {
	p := &Provider{model: "llama-3.3-70b-versatile"}
	params := p.buildParams(llm.Request{
		SystemPrompt: "You are an expert technical interviewer.",
		Messages: []llm.Message{
			{Role: llm.RoleAssistant, Content: "Welcome, Alex."},
			{Role: llm.RoleUser, Content: "Thanks, glad to be here."},
		},
	})

	if len(params.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("first message role = %q, want system", params.Messages[0].Role)
	}
	if params.Messages[1].Role != llm.RoleAssistant || params.Messages[2].Role != llm.RoleUser {
		t.Error("conversation order not preserved after system prompt")
	}
}

func TestBuildParams_InstructionAppendedLast(t *testing.T) {
	p := &Provider{model: "llama-3.3-70b-versatile"}
	params := p.buildParams(llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "I enjoy refactoring."}},
		Instruction: "Continue the interview.",
	})

	last := params.Messages[len(params.Messages)-1]
	if last.Role != llm.RoleUser || last.Content != "Continue the interview." {
		t.Errorf("last message = %+v, want the transient instruction as user role", last)
	}
}

func TestBuildParams_TemperatureAndMaxTokens(t *testing.T) {
	p := &Provider{model: "llama-3.3-70b-versatile"}
	params := p.buildParams(llm.Request{Temperature: 0.7, MaxTokens: 500})
	if params.Temperature == nil || *params.Temperature != 0.7 {
		t.Error("temperature not forwarded")
	}
	if params.MaxTokens == nil || *params.MaxTokens != 500 {
		t.Error("max tokens not forwarded")
	}
}

func TestBuildParams_ZeroTemperatureOmitted(t *testing.T) {
	p := &Provider{model: "llama-3.3-70b-versatile"}
	params := p.buildParams(llm.Request{})
	if params.Temperature != nil {
		t.Error("zero temperature should use provider default (nil)")
	}
}

// ── analysis prompt and decoding ─────────────────────────────────────────────

func TestBuildAnalysisPrompt_ContainsTranscriptAndRole(t *testing.T) {
	prompt := buildAnalysisPrompt(llm.AnalysisRequest{
		CandidateName: "Alex",
		RoleTitle:     "Backend Engineer",
		Transcript: []string{
			"INTERVIEWER: Tell me about your background.",
			"CANDIDATE: I spent four years building payment systems.",
		},
	})

	for _, want := range []string{
		"CANDIDATE: I spent four years building payment systems.",
		"Backend Engineer position",
		"Return ONLY the JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestDecodeAssessment_ValidJSON(t *testing.T) {
	raw := `{
		"overall_score": 82,
		"recommendation": "hire",
		"suitability": "Well suited.",
		"summary": "Strong interview.",
		"strengths": ["clarity"],
		"improvements": ["depth"],
		"skills": {"communication": 85, "technical": 80, "problem_solving": 78, "confidence": 84},
		"detailed_feedback": "Good examples throughout.",
		"hiring_rationale": "Meets the bar."
	}`
	a, err := decodeAssessment(raw)
	if err != nil {
		t.Fatalf("decodeAssessment: %v", err)
	}
	if a.OverallScore != 82 || a.Recommendation != "hire" {
		t.Errorf("assessment = %+v, want score 82 / hire", a)
	}
	if a.Skills.ProblemSolving != 78 {
		t.Errorf("problem_solving = %d, want 78", a.Skills.ProblemSolving)
	}
}

func TestDecodeAssessment_NonJSON_WrapsErrUnavailable(t *testing.T) {
	_, err := decodeAssessment("Here is my assessment: the candidate did well.")
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("err = %v, want wrapped llm.ErrUnavailable", err)
	}
}

func TestDecodeAssessment_MissingRecommendation_WrapsErrUnavailable(t *testing.T) {
	_, err := decodeAssessment(`{"overall_score": 50}`)
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("err = %v, want wrapped llm.ErrUnavailable", err)
	}
}
