package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `pardiary generates and caches detailed descriptions of the activities recommended by a parallel diary.

Core concepts:
- Activity: a suggested real-world action, identified by a string ID.
- Detail: the generated description (benefits, tips, tags, difficulty, places).
- Status: idle | loading | complete | error, one per activity ID.

Default workflow:
1) Check first: get_activity_status(id). It never triggers generation.
2) Need the detail: generate_activity_detail(id). Cached details return immediately; an in-flight generation is awaited, not repeated.
3) Warm a diary: prefetch_activities(diary_id) before the user browses its activities.
4) On error status, call generate_activity_detail again to retry. Nothing retries automatically.

Docs:
- pardiary://docs/status-model
- pardiary://docs/prefetch
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "pardiary://docs/status-model",
		Name:        "docs_status_model",
		Title:       "Activity status model",
		Description: "The four activity statuses, their transitions and what persists across restarts.",
		Content: `# Activity status model

| Status | Meaning | Persisted |
|---|---|---|
| ` + "`idle`" + ` | nothing generated yet | no |
| ` + "`loading`" + ` | a generation request is in flight | no |
| ` + "`complete`" + ` | the detail is available | yes |
| ` + "`error`" + ` | the last attempt failed; ` + "`error`" + ` holds the message | no |

## Transitions

- ` + "`idle`" + ` or ` + "`error`" + ` → ` + "`loading`" + ` when a generation starts. Only one caller wins this step per activity.
- ` + "`loading`" + ` → ` + "`complete`" + ` or ` + "`error`" + ` when it finishes. Generations that exceed the configured timeout become ` + "`error`" + `.
- ` + "`clear_activity_status`" + ` forgets the in-memory status. A cached detail reappears as ` + "`complete`" + ` on the next read.

## Restarts

Completed details are written through to a durable cache. After a restart the first read of an activity returns ` + "`complete`" + ` without generating again. Loading and error states are not persisted.
`,
	},
	{
		URI:         "pardiary://docs/prefetch",
		Name:        "docs_prefetch",
		Title:       "Prefetching activity details",
		Description: "How batch prefetch selects, runs and reports activities.",
		Content: `# Prefetch

` + "`prefetch_activities`" + ` takes a ` + "`diary_id`" + ` (every recommended activity of its parallel diary) or an explicit ` + "`activities`" + ` list.

- Activities already ` + "`complete`" + ` or ` + "`loading`" + ` are reported under ` + "`skipped`" + `.
- Every other activity is generated in parallel and listed under ` + "`scheduled`" + `.
- A failure affects only its own activity and is listed under ` + "`failed`" + ` with its message.
- Failed activities are retried by the next prefetch, never automatically.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
