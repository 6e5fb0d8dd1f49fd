package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// CompletionRequest is a single text-generation request against a provider.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer is the low-level provider contract. Implementations live in
// the providers subpackage; tests use a scripted mock.
type Completer interface {
	// Name returns the provider name for logging and error messages.
	Name() string

	// Complete sends a completion request and returns the raw model text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ChatReply is the result of interpreting a free-text trip message: the
// assistant's reply plus a field-level spec patch (possibly empty).
type ChatReply struct {
	Text  string          `json:"reply"`
	Patch *trip.SpecPatch `json:"patch,omitempty"`
}

// Gateway is the Generative Planning Gateway: the deterministic core's only
// window onto the non-deterministic text model. Both calls carry the
// configured timeout and report malformed output distinctly from transport
// failure, so the pipeline can choose retry-with-stricter-instructions,
// retry-as-is, or heuristic fallback.
type Gateway interface {
	// Interpret turns a free-text chat message into a reply and a TripSpec
	// patch to merge.
	Interpret(ctx context.Context, message string, spec *trip.TripSpec) (ChatReply, error)

	// GenerateSkeleton requests a structured skeleton payload for days
	// [fromDay, toDay] (zero-based, inclusive). The returned payload is raw
	// JSON; the macro planner schema-validates it. strict requests the
	// stricter-instruction prompt variant used after a malformed response.
	GenerateSkeleton(ctx context.Context, spec *trip.TripSpec, fromDay, toDay int, strict bool) (json.RawMessage, error)
}

// Config holds the gateway's model routing and timeout settings. The chat
// model is typically cheaper and faster than the planning model.
type Config struct {
	ChatModel     string
	PlanningModel string
	Timeout       time.Duration
}

// gateway implements Gateway over a Completer.
type gateway struct {
	completer Completer
	cfg       Config
	logger    *slog.Logger
}

// NewGateway creates a Gateway over the given provider.
func NewGateway(completer Completer, cfg Config, logger *slog.Logger) Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &gateway{
		completer: completer,
		cfg:       cfg,
		logger:    logger.With("component", "llm-gateway"),
	}
}

func (g *gateway) Interpret(ctx context.Context, message string, spec *trip.TripSpec) (ChatReply, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	raw, err := g.completer.Complete(ctx, CompletionRequest{
		Model:       g.cfg.ChatModel,
		System:      interpretSystemPrompt,
		Prompt:      buildInterpretPrompt(message, spec),
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return ChatReply{}, TranslateError(g.completer.Name(), err)
	}

	reply, err := ExtractJSONAs[ChatReply](raw)
	if err != nil {
		g.logger.Warn("interpret response failed to parse", "error", err)
		return ChatReply{}, types.WrapError(types.LLM_MALFORMED_OUTPUT,
			"interpret response is not valid JSON", err)
	}
	if reply.Text == "" {
		return ChatReply{}, types.NewError(types.LLM_MALFORMED_OUTPUT,
			"interpret response is missing a reply")
	}
	return reply, nil
}

func (g *gateway) GenerateSkeleton(ctx context.Context, spec *trip.TripSpec, fromDay, toDay int, strict bool) (json.RawMessage, error) {
	if fromDay < 0 || toDay < fromDay {
		return nil, types.NewError(types.LLM_MALFORMED_OUTPUT,
			fmt.Sprintf("invalid day range %d-%d", fromDay, toDay))
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	raw, err := g.completer.Complete(ctx, CompletionRequest{
		Model:       g.cfg.PlanningModel,
		System:      skeletonSystemPrompt(strict),
		Prompt:      buildSkeletonPrompt(spec, fromDay, toDay),
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		return nil, TranslateError(g.completer.Name(), err)
	}

	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		g.logger.Warn("skeleton response contained no JSON",
			"days", fmt.Sprintf("%d-%d", fromDay, toDay), "strict", strict)
		return nil, types.WrapError(types.LLM_MALFORMED_OUTPUT,
			"skeleton response contained no JSON payload", err)
	}
	return json.RawMessage(jsonStr), nil
}
