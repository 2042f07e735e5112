package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// LogQuerier is the slice of the Cloud Logging client the dispatcher needs.
type LogQuerier interface {
	Query(ctx context.Context, filter string, limit int) (string, error)
	QueryRecentRequests(ctx context.Context, service string, hoursAgo, limit int) (string, error)
}

// Repository is the slice of the GitHub client the dispatcher needs.
type Repository interface {
	ListFiles(ctx context.Context, path, ref string) (string, error)
	FileContent(ctx context.Context, path, ref string) (string, error)
	CreateBranch(ctx context.Context, branch, base string) (string, error)
	CommitFile(ctx context.Context, branch, path, content, message string) (string, error)
	OpenPullRequest(ctx context.Context, title, body, head, base string) (string, error)
}

// Dispatcher routes tool calls from the model to the log and repository
// clients and folds every failure into the string result. Nothing it
// returns is ever a Go error: unknown tools, bad arguments, and handler
// failures all come back as JSON error payloads that go straight into the
// transcript for the model to react to.
type Dispatcher struct {
	logs    LogQuerier
	repo    Repository
	service string // Cloud Run service under investigation
}

func NewDispatcher(logs LogQuerier, repo Repository, service string) *Dispatcher {
	return &Dispatcher{logs: logs, repo: repo, service: service}
}

// Dispatch executes one tool call. rawArgs is the argument text exactly as
// the model produced it; text that does not parse as a JSON object degrades
// to an empty parameter map, and the tool runs with its declared defaults.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) string {
	params := decodeArgs(rawArgs)

	var result string
	var err error

	switch name {
	case "query_logs":
		filter, ok := getString(params, "filter")
		if !ok {
			err = errMissing("filter")
			break
		}
		limit := getIntOr(params, "limit", 50)
		result, err = d.logs.Query(ctx, filter, int(limit))

	case "list_log_entries":
		hours := getIntOr(params, "hours_ago", 24)
		limit := getIntOr(params, "limit", 50)
		result, err = d.logs.QueryRecentRequests(ctx, d.service, int(hours), int(limit))

	case "list_repo_files":
		path := getStringOr(params, "path", "")
		ref := getStringOr(params, "ref", "main")
		result, err = d.repo.ListFiles(ctx, path, ref)

	case "get_file_content":
		path, ok := getString(params, "path")
		if !ok {
			err = errMissing("path")
			break
		}
		ref := getStringOr(params, "ref", "main")
		result, err = d.repo.FileContent(ctx, path, ref)

	case "create_branch":
		branch, ok := getString(params, "branch_name")
		if !ok {
			err = errMissing("branch_name")
			break
		}
		base := getStringOr(params, "base_branch", "main")
		result, err = d.repo.CreateBranch(ctx, branch, base)

	case "commit_file_change":
		branch, okBranch := getString(params, "branch_name")
		path, okPath := getString(params, "file_path")
		content, okContent := getString(params, "content")
		message, okMessage := getString(params, "commit_message")
		switch {
		case !okBranch:
			err = errMissing("branch_name")
		case !okPath:
			err = errMissing("file_path")
		case !okContent:
			err = errMissing("content")
		case !okMessage:
			err = errMissing("commit_message")
		default:
			result, err = d.repo.CommitFile(ctx, branch, path, content, message)
		}

	case "create_pull_request":
		title, okTitle := getString(params, "title")
		body, okBody := getString(params, "body")
		head, okHead := getString(params, "branch_name")
		switch {
		case !okTitle:
			err = errMissing("title")
		case !okBody:
			err = errMissing("body")
		case !okHead:
			err = errMissing("branch_name")
		default:
			base := getStringOr(params, "base_branch", "main")
			result, err = d.repo.OpenPullRequest(ctx, title, body, head, base)
		}

	default:
		return errorPayload(fmt.Sprintf("Unknown tool: %s", name))
	}

	if err != nil {
		return errorPayload(fmt.Sprintf("Tool '%s' failed: %s", name, err))
	}
	return result
}

// decodeArgs parses the model's argument text. Malformed text yields an
// empty map rather than an error, so the tool still runs with its
// declared defaults.
func decodeArgs(raw json.RawMessage) map[string]any {
	params := make(map[string]any)
	if len(raw) == 0 {
		return params
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return map[string]any{}
	}
	return params
}

func errMissing(key string) error {
	return fmt.Errorf("missing required parameter %q", key)
}

func errorPayload(msg string) string {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return string(b)
}
