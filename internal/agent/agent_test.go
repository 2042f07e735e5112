package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/marta/sleuth/internal/llm"
)

// scriptedClient plays back canned responses, one per Chat call, and
// records what it was sent.
type scriptedClient struct {
	responses []*llm.Response
	err       error

	calls    int
	messages [][]llm.Message
	tools    []llm.Tool
}

func (c *scriptedClient) Chat(_ context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error) {
	c.calls++
	snapshot := make([]llm.Message, len(messages))
	copy(snapshot, messages)
	c.messages = append(c.messages, snapshot)
	c.tools = tools
	if c.err != nil {
		return nil, c.err
	}
	if c.calls > len(c.responses) {
		return &llm.Response{Content: "ran out of scripted responses"}, nil
	}
	return c.responses[c.calls-1], nil
}

func newTestAgent(t *testing.T, client llm.Client, maxIterations int) (*Agent, *fakeLogs, *fakeRepo) {
	t.Helper()
	logs := &fakeLogs{result: "log entries"}
	repo := &fakeRepo{result: "repo result"}
	dispatcher := NewDispatcher(logs, repo, "checkout-api")
	return New(client, dispatcher, maxIterations, false), logs, repo
}

func toolCall(id, name, rawArgs string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: name, Arguments: json.RawMessage(rawArgs)}
}

// --- termination ---

func TestRun_ImmediateCompletion(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: "Done."}}}
	ag, _, _ := newTestAgent(t, client, 15)

	res, err := ag.Run(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Phase != PhaseCompleted {
		t.Errorf("expected phase %q, got %q", PhaseCompleted, res.Phase)
	}
	if res.Summary != "Done." {
		t.Errorf("expected summary %q, got %q", "Done.", res.Summary)
	}
	if res.Iterations != 1 {
		t.Errorf("expected 1 iteration, got %d", res.Iterations)
	}
	if client.calls != 1 {
		t.Errorf("expected exactly 1 model call, got %d", client.calls)
	}
	if len(res.Transcript) != 3 {
		t.Fatalf("expected transcript of 3 (system, user, assistant), got %d", len(res.Transcript))
	}
	if res.Transcript[2].Role != "assistant" || res.Transcript[2].Content != "Done." {
		t.Errorf("unexpected final message: %+v", res.Transcript[2])
	}
	if res.RunID == "" {
		t.Error("expected a run ID")
	}
}

func TestRun_BoundZeroNeverCallsModel(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: "should never be seen"}}}
	ag, _, _ := newTestAgent(t, client, 0)

	res, err := ag.Run(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if client.calls != 0 {
		t.Errorf("expected 0 model calls, got %d", client.calls)
	}
	if res.Phase != PhaseBudgetExhausted {
		t.Errorf("expected phase %q, got %q", PhaseBudgetExhausted, res.Phase)
	}
	if res.Summary != exhaustedText {
		t.Errorf("expected exhaustion summary, got %q", res.Summary)
	}
	if res.Iterations != 0 {
		t.Errorf("expected 0 iterations, got %d", res.Iterations)
	}
	if len(res.Transcript) != 2 {
		t.Errorf("expected only the seed messages, got %d", len(res.Transcript))
	}
}

func TestRun_UnknownToolThenCompletion(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{toolCall("call_1", "foo", `{}`)}},
		{Content: "Fixed."},
	}}
	ag, _, _ := newTestAgent(t, client, 2)

	res, err := ag.Run(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Phase != PhaseCompleted {
		t.Errorf("expected phase %q, got %q", PhaseCompleted, res.Phase)
	}
	if res.Summary != "Fixed." {
		t.Errorf("expected summary %q, got %q", "Fixed.", res.Summary)
	}
	if client.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", client.calls)
	}
	if len(res.Transcript) != 5 {
		t.Fatalf("expected 5 messages (system, user, assistant, tool, assistant), got %d", len(res.Transcript))
	}
	toolMsg := res.Transcript[3]
	if toolMsg.Role != "tool" || toolMsg.ToolCallID != "call_1" {
		t.Errorf("unexpected tool message: %+v", toolMsg)
	}
	if toolMsg.Content != `{"error":"Unknown tool: foo"}` {
		t.Errorf("expected unknown-tool payload, got %s", toolMsg.Content)
	}
}

func TestRun_BudgetExhaustedKeepsToolResult(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{toolCall("call_1", "list_repo_files", `{}`)}},
	}}
	ag, _, repo := newTestAgent(t, client, 1)

	res, err := ag.Run(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected exactly 1 model call, got %d", client.calls)
	}
	if res.Phase != PhaseBudgetExhausted {
		t.Errorf("expected phase %q, got %q", PhaseBudgetExhausted, res.Phase)
	}
	if res.Summary != exhaustedText {
		t.Errorf("expected exhaustion summary, got %q", res.Summary)
	}
	// The dispatched tool result stays in the transcript even though the
	// model never gets to see it.
	if len(res.Transcript) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(res.Transcript))
	}
	if res.Transcript[3].Role != "tool" || res.Transcript[3].Content != "repo result" {
		t.Errorf("expected tool result message, got %+v", res.Transcript[3])
	}
	if len(repo.calls) != 1 {
		t.Errorf("expected the tool to have executed once, got %d", len(repo.calls))
	}
}

// --- transcript shape ---

func TestRun_TranscriptGrowthAndToolOrder(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{
			Content: "investigating",
			ToolCalls: []llm.ToolCall{
				toolCall("call_a", "list_log_entries", `{"hours_ago":6}`),
				toolCall("call_b", "list_repo_files", `{}`),
				toolCall("call_c", "get_file_content", `{"path":"src/app.py"}`),
			},
		},
		{Content: "Done."},
	}}
	ag, logs, repo := newTestAgent(t, client, 5)

	res, err := ag.Run(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 2 seed + (1 assistant + 3 tool) + 1 final assistant
	if len(res.Transcript) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(res.Transcript))
	}
	assistant := res.Transcript[2]
	if assistant.Role != "assistant" || len(assistant.ToolCalls) != 3 {
		t.Fatalf("expected assistant message with 3 tool calls, got %+v", assistant)
	}
	wantIDs := []string{"call_a", "call_b", "call_c"}
	for i, id := range wantIDs {
		msg := res.Transcript[3+i]
		if msg.Role != "tool" {
			t.Errorf("message %d: expected role tool, got %q", 3+i, msg.Role)
		}
		if msg.ToolCallID != id {
			t.Errorf("message %d: expected tool_call_id %q, got %q", 3+i, id, msg.ToolCallID)
		}
	}

	// Handlers ran in the order the model issued the calls.
	if len(logs.recents) != 1 || logs.recents[0].hoursAgo != 6 {
		t.Errorf("expected one log query with hours_ago=6, got %+v", logs.recents)
	}
	wantOps := []string{"list", "content"}
	if len(repo.calls) != len(wantOps) {
		t.Fatalf("expected %d repo calls, got %d", len(wantOps), len(repo.calls))
	}
	for i, op := range wantOps {
		if repo.calls[i].op != op {
			t.Errorf("repo call %d: expected %q, got %q", i, op, repo.calls[i].op)
		}
	}
}

func TestRun_SecondCallSeesToolResults(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{toolCall("call_1", "list_repo_files", `{}`)}},
		{Content: "Done."},
	}}
	ag, _, _ := newTestAgent(t, client, 3)

	if _, err := ag.Run(context.Background(), "sys", "usr"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.messages) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(client.messages))
	}
	if len(client.messages[0]) != 2 {
		t.Errorf("first call should see the 2 seed messages, got %d", len(client.messages[0]))
	}
	second := client.messages[1]
	if len(second) != 4 {
		t.Fatalf("second call should see 4 messages, got %d", len(second))
	}
	if second[2].Role != "assistant" || second[3].Role != "tool" {
		t.Errorf("expected assistant then tool, got %q then %q", second[2].Role, second[3].Role)
	}
}

func TestRun_SendsInvestigationTools(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: "Done."}}}
	ag, _, _ := newTestAgent(t, client, 1)

	if _, err := ag.Run(context.Background(), "sys", "usr"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.tools) != len(llm.InvestigationTools) {
		t.Errorf("expected %d tool contracts, got %d", len(llm.InvestigationTools), len(client.tools))
	}
}

// --- failure handling ---

func TestRun_ModelErrorPropagates(t *testing.T) {
	client := &scriptedClient{err: errors.New("connection refused")}
	ag, _, _ := newTestAgent(t, client, 5)

	_, err := ag.Run(context.Background(), "sys", "usr")
	if err == nil {
		t.Fatal("expected error from failed model call")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected no retry after transport failure, got %d calls", client.calls)
	}
}

func TestRun_HandlerErrorFedBackToModel(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{toolCall("call_1", "create_branch", `{"branch_name":"fix/x"}`)}},
		{Content: "Recovered."},
	}}
	ag, _, repo := newTestAgent(t, client, 3)
	repo.err = errors.New("422 reference already exists")

	res, err := ag.Run(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Phase != PhaseCompleted {
		t.Errorf("expected completion despite tool failure, got %q", res.Phase)
	}
	toolMsg := client.messages[1][3]
	if !strings.Contains(toolMsg.Content, "Tool 'create_branch' failed") {
		t.Errorf("expected the model to see the failure payload, got %s", toolMsg.Content)
	}
}

func TestRun_EmptySummaryFallback(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: ""}}}
	ag, _, _ := newTestAgent(t, client, 2)

	res, err := ag.Run(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary != noSummaryText {
		t.Errorf("expected fallback summary, got %q", res.Summary)
	}
	if res.Transcript[2].Content != noSummaryText {
		t.Errorf("expected fallback written into the transcript, got %q", res.Transcript[2].Content)
	}
}

// --- result inspection ---

func TestResult_PullRequestURL(t *testing.T) {
	res := &Result{Transcript: []llm.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "usr"},
		{Role: "tool", ToolCallID: "a", Content: `{"success":true,"branch":"fix/x","base_sha":"abc"}`},
		{Role: "tool", ToolCallID: "b", Content: `{"success":true,"pr_number":7,"pr_url":"https://github.com/octo/widgets/pull/7","title":"Fix"}`},
		{Role: "assistant", Content: "Done."},
	}}
	if got := res.PullRequestURL(); got != "https://github.com/octo/widgets/pull/7" {
		t.Errorf("expected PR URL, got %q", got)
	}
}

func TestResult_PullRequestURL_NoneOpened(t *testing.T) {
	res := &Result{Transcript: []llm.Message{
		{Role: "tool", ToolCallID: "a", Content: `{"error":"Tool 'create_pull_request' failed: 403"}`},
		{Role: "assistant", Content: "Could not open a PR."},
	}}
	if got := res.PullRequestURL(); got != "" {
		t.Errorf("expected empty URL, got %q", got)
	}
}
