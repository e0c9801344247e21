package adaptive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/llm"
	"github.com/abhisek/neuroscreen/internal/questions"
	"github.com/abhisek/neuroscreen/internal/session"
)

// AdvisorConfig holds configuration for the LLM advisor.
type AdvisorConfig struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64

	// History caps how many recent responses are sent.
	History int

	// OnFallback, when set, observes every advice that fell back to
	// continue because the service failed or replied out of schema.
	OnFallback llm.FallbackFunc
}

// DefaultAdvisorConfig returns sensible defaults.
func DefaultAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{
		Timeout:     3 * time.Second,
		MaxTokens:   200,
		Temperature: 0.2,
		History:     5,
	}
}

// Advice is the advisor's suggested next action.
type Advice struct {
	Action     Action
	Difficulty questions.Difficulty
	Reasoning  string

	// Fallback is set when the advisor could not be consulted and the
	// advice is the default continue.
	Fallback bool
}

// Continue is the advice used whenever no advisor answer is available.
func Continue() Advice {
	return Advice{Action: ActionContinue, Fallback: true}
}

// AdviceRequest is the input for one advisor call.
type AdviceRequest struct {
	SessionID  string
	Age        int
	Difficulty questions.Difficulty
	Focus      questions.Category
	Accuracy   map[questions.Category]session.Accuracy
	Snapshot   session.ModalitySnapshot
	Recent     []session.Response
}

// Advisor asks an LLM for the next adaptive action. It never fails: any
// error, timeout or malformed output yields Continue.
type Advisor struct {
	provider llm.Provider
	cfg      AdvisorConfig
	logger   *zap.Logger
}

// NewAdvisor creates an advisor. A nil provider always advises continue.
func NewAdvisor(provider llm.Provider, cfg AdvisorConfig, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultAdvisorConfig().Timeout
	}
	return &Advisor{provider: provider, cfg: cfg, logger: logger.Named("advisor")}
}

// Enabled reports whether an LLM is configured.
func (a *Advisor) Enabled() bool {
	return a != nil && a.provider != nil
}

type adviceOutput struct {
	Action     string `json:"action"`
	Difficulty string `json:"difficulty"`
	Reasoning  string `json:"reasoning"`
}

// Advise consults the LLM within the configured timeout.
func (a *Advisor) Advise(ctx context.Context, req AdviceRequest) Advice {
	if !a.Enabled() {
		return Continue()
	}

	ctx = llm.WithSession(llm.WithPurpose(ctx, llm.PurposeNextAction), req.SessionID)
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	if n := a.cfg.History; n > 0 && len(req.Recent) > n {
		req.Recent = req.Recent[len(req.Recent)-n:]
	}
	userMsg, err := buildAdviceMessage(req)
	if err != nil {
		a.logger.Warn("build advisor prompt", zap.Error(err))
		return Continue()
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      advisorSystemPrompt,
		Prompt:      userMsg,
		Schema:      NextActionSchema,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		kind := llm.KindOf(err)
		a.logger.Info("advisor unavailable, continuing",
			zap.String("session_id", req.SessionID), zap.String("kind", string(kind)), zap.Error(err))
		return a.fallback(kind)
	}

	var raw adviceOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		a.logger.Info("advisor output unreadable, continuing",
			zap.String("session_id", req.SessionID), zap.Error(err))
		return a.fallback(llm.KindInvalidResponse)
	}

	advice := Advice{
		Action:     Action(raw.Action),
		Difficulty: questions.Difficulty(raw.Difficulty),
		Reasoning:  raw.Reasoning,
	}
	if !advice.Action.Valid() {
		return a.fallback(llm.KindInvalidResponse)
	}
	// adjust_difficulty without a usable tier carries no information.
	if advice.Action == ActionAdjustDifficulty && !advice.Difficulty.Valid() {
		advice.Action = ActionContinue
	}
	return advice
}

func (a *Advisor) fallback(kind llm.Kind) Advice {
	if a.cfg.OnFallback != nil {
		a.cfg.OnFallback(llm.PurposeNextAction, kind)
	}
	return Continue()
}

const advisorSystemPrompt = `You pace an adaptive behavioral screening questionnaire for children.
After each answer you choose what happens next:
- continue: keep the accuracy-driven schedule.
- adjust_difficulty: switch to the tier given in "difficulty" (easy, medium or hard).
- repeat: ask the same question again, e.g. when the answer looks unreliable.
- move_to_next: step up one difficulty tier.

Use the multimodal snapshot (emotion, motion, voice) to judge engagement. Prefer continue unless
there is a clear reason. Keep reasoning to one sentence. You never diagnose.`

var adviceUserTemplate = template.Must(template.New("advice").Funcs(template.FuncMap{
	"pct": func(a session.Accuracy) string {
		if a.Count == 0 {
			return "no answers"
		}
		return fmt.Sprintf("%.0f%% over %d", a.Mean()*100, a.Count)
	},
}).Parse(`Patient age: {{.Age}}
Current difficulty: {{.Difficulty}}
Current focus: {{.Focus}}

Accuracy by category:
{{range $cat, $acc := .Accuracy}}- {{$cat}}: {{pct $acc}}
{{end}}
Multimodal snapshot:
- emotion samples: {{.Snapshot.EmotionTotal}}{{with .Snapshot.LatestEmotion}} (latest {{.}}){{end}}
- motion samples: {{.Snapshot.MotionTotal}} (latest intensity {{printf "%.2f" .Snapshot.LatestIntensity}})
- voice samples: {{.Snapshot.VoiceTotal}} (latest speech rate {{printf "%.2f" .Snapshot.LatestSpeechRate}})

Recent answers (oldest first):
{{range .Recent}}- [{{.Category}}/{{.Difficulty}}] {{.QuestionID}}: "{{.Answer}}" scored {{printf "%.2f" .AnalysisScore}} in {{.ResponseTimeMs}}ms
{{end}}`))

func buildAdviceMessage(req AdviceRequest) (string, error) {
	var buf bytes.Buffer
	if err := adviceUserTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
