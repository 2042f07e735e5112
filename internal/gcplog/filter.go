package gcplog

import (
	"fmt"
	"time"
)

// RequestLogFilter builds the Cloud Logging filter for the request logs of
// one Cloud Run service, going back hoursAgo hours from now. Request logs
// live under the run.googleapis.com/requests logName and carry the
// httpRequest field with the full URL and status.
func RequestLogFilter(projectID, service string, hoursAgo int, now time.Time) string {
	past := now.UTC().Add(-time.Duration(hoursAgo) * time.Hour)
	return fmt.Sprintf(
		`resource.type="cloud_run_revision" resource.labels.service_name="%s" logName="projects/%s/logs/run.googleapis.com%%2Frequests" timestamp>="%s"`,
		service, projectID, past.Format(time.RFC3339),
	)
}
