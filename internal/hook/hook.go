// Package hook adapts the agent runtime's hook protocol to gate
// evaluations. Each hook invocation reads one JSON payload from stdin and
// writes one JSON decision to stdout.
package hook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gatewright/gatewright/internal/gate"
	"github.com/rs/zerolog/log"
)

// Payload is the hook input the agent runtime sends.
type Payload struct {
	SessionID string    `json:"session_id,omitempty"`
	ToolName  string    `json:"tool_name,omitempty"`
	ToolInput ToolInput `json:"tool_input"`
}

// ToolInput carries the arguments of the gated tool call. Only the file
// path matters here.
type ToolInput struct {
	FilePath string `json:"file_path"`
}

// Response is the hook output the agent runtime consumes.
type Response struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

func allow() Response              { return Response{Decision: "allow"} }
func block(reason string) Response { return Response{Decision: "block", Reason: reason} }

// Decode parses a hook payload. Malformed input reports ok = false; the
// caller allows, since a payload we cannot read is not a payload we can
// have an opinion about.
func Decode(r io.Reader) (Payload, bool) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		log.Debug().Err(err).Msg("undecodable hook payload")
		return Payload{}, false
	}
	return p, true
}

// Write emits the response as a single JSON object.
func Write(w io.Writer, resp Response) error {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("write hook response: %w", err)
	}
	return nil
}

// Handler maps hook verbs onto a gate pipeline.
type Handler struct {
	pipeline *gate.Pipeline
}

// NewHandler wraps a pipeline.
func NewHandler(p *gate.Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// action maps the runtime's tool name onto a gate action. Tools that do
// not mutate files have no mapping.
func action(toolName string) (gate.Action, bool) {
	switch toolName {
	case "Write":
		return gate.ActionWrite, true
	case "Edit", "MultiEdit", "NotebookEdit":
		return gate.ActionEdit, true
	default:
		return "", false
	}
}

// PreToolUse gates a tool call before it runs. Tools we do not track and
// calls without a file path pass through.
func (h *Handler) PreToolUse(ctx context.Context, p Payload) Response {
	act, ok := action(p.ToolName)
	if !ok || p.ToolInput.FilePath == "" {
		return allow()
	}
	decision, err := h.pipeline.EvaluatePreAction(ctx, gate.Request{Action: act, Path: p.ToolInput.FilePath})
	return h.respond(decision, err)
}

// PostToolUse gates the aftermath of a tool call that already ran.
func (h *Handler) PostToolUse(ctx context.Context, p Payload) Response {
	act, ok := action(p.ToolName)
	if !ok || p.ToolInput.FilePath == "" {
		return allow()
	}
	decision, err := h.pipeline.EvaluatePostAction(ctx, gate.Request{Action: act, Path: p.ToolInput.FilePath})
	return h.respond(decision, err)
}

// Stop gates the agent's attempt to finish the session.
func (h *Handler) Stop(ctx context.Context) Response {
	decision, err := h.pipeline.EvaluateCompletion(ctx)
	return h.respond(decision, err)
}

func (h *Handler) respond(decision gate.Decision, err error) Response {
	if errors.Is(err, gate.ErrTerminated) {
		return allow()
	}
	if err != nil {
		// State we cannot read or record is state we cannot vouch for.
		log.Error().Err(err).Msg("gate evaluation failed")
		return block(fmt.Sprintf("gate could not evaluate this action: %v", err))
	}
	if decision.Allowed() {
		resp := allow()
		resp.Reason = decision.Reason
		return resp
	}
	return block(decision.Reason)
}
