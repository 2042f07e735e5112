package agent

import (
	"fmt"
	"strings"
	"time"
)

// BuildInvestigationPrompt renders the opening user message for a run.
// It names the target service, the project, the repository with the source,
// and the log window to focus on, anchored to the current UTC time so the
// model can reason about "recent".
func BuildInvestigationPrompt(service, projectID, repository string, hours int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Investigate production issues with the Cloud Run service '%s' in GCP project '%s'.\n", service, projectID)
	fmt.Fprintf(&b, "The service's source code lives in the GitHub repository '%s'.\n", repository)
	fmt.Fprintf(&b, "Focus on the last %d hours of request logs. The current time is %s.\n\n",
		hours, time.Now().UTC().Format(time.RFC3339))
	b.WriteString("Check the logs for errors or anomalous behavior, identify the root cause in the code, ")
	b.WriteString("fix it, and open a GitHub pull request with the fix.")
	return b.String()
}
