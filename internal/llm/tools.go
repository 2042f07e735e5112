package llm

var InvestigationTools = []Tool{
	{
		Name:        "query_logs",
		Description: "Query Google Cloud Logging with a raw filter expression. Returns matching entries as JSON, oldest first.",
		Parameters: objReq(map[string]any{
			"filter": prop("string", `Cloud Logging filter expression, e.g. 'severity>=ERROR resource.type="cloud_run_revision"'`),
			"limit":  prop("integer", "Maximum number of entries to return (default 50)"),
		}, "filter"),
	},
	{
		Name:        "list_log_entries",
		Description: "List recent request logs for the Cloud Run service under investigation. Builds the log filter automatically.",
		Parameters: obj(map[string]any{
			"hours_ago": prop("integer", "How many hours back to look (default 24)"),
			"limit":     prop("integer", "Maximum number of entries to return (default 50)"),
		}),
	},
	{
		Name:        "list_repo_files",
		Description: "List files and directories at a path in the GitHub repository.",
		Parameters: obj(map[string]any{
			"path": prop("string", "Directory path within the repository (default: root)"),
			"ref":  prop("string", "Branch, tag, or commit SHA to read from (default: main)"),
		}),
	},
	{
		Name:        "get_file_content",
		Description: "Read the decoded text content of a single file from the GitHub repository.",
		Parameters: objReq(map[string]any{
			"path": prop("string", "File path within the repository"),
			"ref":  prop("string", "Branch, tag, or commit SHA to read from (default: main)"),
		}, "path"),
	},
	{
		Name:        "create_branch",
		Description: "Create a new branch in the GitHub repository from the tip of a base branch.",
		Parameters: objReq(map[string]any{
			"branch_name": prop("string", "Name for the new branch, e.g. 'fix/null-check-in-handler'"),
			"base_branch": prop("string", "Branch to fork from (default: main)"),
		}, "branch_name"),
	},
	{
		Name:        "commit_file_change",
		Description: "Create or update one file on a branch with a commit message. Supply the complete new file content, not a diff.",
		Parameters: objReq(map[string]any{
			"branch_name":    prop("string", "Branch to commit to (create it first with create_branch)"),
			"file_path":      prop("string", "Path of the file to create or update"),
			"content":        prop("string", "Complete new content of the file"),
			"commit_message": prop("string", "Commit message describing the change"),
		}, "branch_name", "file_path", "content", "commit_message"),
	},
	{
		Name:        "create_pull_request",
		Description: "Open a pull request from a branch. Call this last, after the fix is committed.",
		Parameters: objReq(map[string]any{
			"title":       prop("string", "Pull request title"),
			"body":        prop("string", "Pull request description: the bug, the root cause, and the fix"),
			"branch_name": prop("string", "Head branch containing the fix"),
			"base_branch": prop("string", "Branch to merge into (default: main)"),
		}, "title", "body", "branch_name"),
	},
}

// Helper functions for building JSON Schema objects.

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func obj(properties map[string]any) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

func objReq(properties map[string]any, required ...string) map[string]any {
	s := obj(properties)
	s["required"] = required
	return s
}
