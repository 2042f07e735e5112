package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/marta/sleuth/internal/llm"
)

// Phase is the disposition of a run. It moves from running to exactly one
// terminal value.
type Phase string

const (
	PhaseRunning         Phase = "running"
	PhaseCompleted       Phase = "completed"
	PhaseBudgetExhausted Phase = "budget_exhausted"
)

const (
	noSummaryText = "Agent finished without a summary."
	exhaustedText = "Agent reached maximum iterations without completing the task."
)

// Agent drives the investigation loop: model call, tool dispatch, repeat,
// until the model answers in plain text or the iteration budget runs out.
type Agent struct {
	client        llm.Client
	dispatcher    *Dispatcher
	maxIterations int
	verbose       bool
}

func New(client llm.Client, dispatcher *Dispatcher, maxIterations int, verbose bool) *Agent {
	return &Agent{
		client:        client,
		dispatcher:    dispatcher,
		maxIterations: maxIterations,
		verbose:       verbose,
	}
}

// Result describes a finished run.
type Result struct {
	RunID      string
	Phase      Phase
	Summary    string
	Iterations int
	Transcript []llm.Message
	StartedAt  time.Time
	FinishedAt time.Time
}

// PullRequestURL digs through the tool results for the URL of an opened
// pull request. Empty when no create_pull_request call succeeded.
func (r *Result) PullRequestURL() string {
	var url string
	for _, m := range r.Transcript {
		if m.Role != "tool" {
			continue
		}
		if v := gjson.Get(m.Content, "pr_url"); v.Exists() {
			url = v.String()
		}
	}
	return url
}

// Run executes the loop: at most maxIterations model calls, each one either
// ending the run with a plain-text summary or requesting tool calls that are
// dispatched strictly in the order issued. Tool failures become transcript
// entries; the only error Run itself returns is a failed model call, which
// aborts the run. A budget of zero never calls the model and reports
// exhaustion immediately.
func (a *Agent) Run(ctx context.Context, systemPrompt, userPrompt string) (*Result, error) {
	transcript := NewTranscript(systemPrompt, userPrompt)

	res := &Result{
		RunID:     uuid.NewString(),
		Phase:     PhaseRunning,
		StartedAt: time.Now().UTC(),
	}

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		res.Iterations = iteration
		if a.verbose {
			log.Printf("agent: iteration %d/%d (history ~%d tokens)",
				iteration, a.maxIterations, llm.EstimateMessagesTokens(transcript.Snapshot()))
		}

		resp, err := a.client.Chat(ctx, transcript.Snapshot(), llm.InvestigationTools)
		if err != nil {
			return nil, fmt.Errorf("llm chat: %w", err)
		}

		// No tool calls means the model is done and its text is the summary.
		if len(resp.ToolCalls) == 0 {
			summary := resp.Content
			if summary == "" {
				summary = noSummaryText
			}
			transcript.Append(llm.Message{Role: "assistant", Content: summary})
			return a.finish(res, PhaseCompleted, summary, transcript), nil
		}

		transcript.Append(llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Execute the requested tools one at a time, in the order issued;
		// a later call may depend on an earlier one's side effects.
		for _, tc := range resp.ToolCalls {
			log.Printf("agent: [step %d] %s", iteration, tc.Name)
			result := a.dispatcher.Dispatch(ctx, tc.Name, tc.Arguments)
			if a.verbose {
				a.trace(tc, result)
			}
			transcript.Append(llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	return a.finish(res, PhaseBudgetExhausted, exhaustedText, transcript), nil
}

func (a *Agent) finish(res *Result, phase Phase, summary string, transcript *Transcript) *Result {
	res.Phase = phase
	res.Summary = summary
	res.Transcript = transcript.Snapshot()
	res.FinishedAt = time.Now().UTC()
	return res
}

func (a *Agent) trace(tc llm.ToolCall, result string) {
	args := truncate(string(tc.Arguments), 120)
	if e := gjson.Get(result, "error"); e.Exists() {
		log.Printf("agent:   %s(%s) -> error: %s", tc.Name, args, e.String())
		return
	}
	log.Printf("agent:   %s(%s) -> %s: %s",
		tc.Name, args, humanize.Bytes(uint64(len(result))), truncate(result, 200))
}
