package tools

import (
	"context"

	"github.com/cockroachdb/errors"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/everything-mcp/pkg/everything"
)

// SearchInput is the input for everything_search.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"Search text. Prefix with 'regex:' for a regular-expression search."`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum results to return across all pages (default from SEARCH_MAX_RESULTS)"`
	PageSize   int    `json:"page_size,omitempty" jsonschema:"Results per request/reply round trip (default from SEARCH_PAGE_SIZE)"`
	WholeWord  bool   `json:"whole_word,omitempty" jsonschema:"Match whole words only; ignored for regex queries"`
}

// SearchOutput is the output for everything_search.
type SearchOutput struct {
	Results   []everything.Result `json:"results,omitzero"`
	Total     int                 `json:"total"`
	Truncated bool                `json:"truncated,omitempty"`
}

// ToolSearch runs a paginated search against the Everything service.
func ToolSearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
		var opts []everything.SearchOption
		if input.MaxResults > 0 {
			opts = append(opts, everything.WithMaxResults(input.MaxResults))
		}
		if input.PageSize > 0 {
			opts = append(opts, everything.WithPageSize(input.PageSize))
		}
		if input.WholeWord {
			opts = append(opts, everything.WithWholeWord(true))
		}

		resp, err := d.Client.Search(ctx, input.Query, opts...)
		if err != nil {
			return nil, SearchOutput{}, describeSearchError(err)
		}

		out := SearchOutput{
			Results:   resp.Results,
			Total:     resp.Total,
			Truncated: resp.Total > len(resp.Results),
		}
		if out.Results == nil {
			out.Results = []everything.Result{}
		}
		return nil, out, nil
	}
}

// describeSearchError turns client errors into messages with actionable
// guidance for the model.
func describeSearchError(err error) error {
	switch {
	case errors.Is(err, everything.ErrServiceNotRunning):
		return errors.New("the Everything service is not running; ask the user to start Everything and retry")
	case errors.Is(err, everything.ErrInvalidQuery):
		return errors.New("the query text is empty; provide a non-empty query")
	case errors.Is(err, everything.ErrTimeout):
		return errors.New("the Everything service did not answer within the page timeout; it may be busy rebuilding its index")
	default:
		return err
	}
}
