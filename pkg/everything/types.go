package everything

// RegexPrefix marks a query as a regular-expression search. The client
// strips it before transmission and sets the regex wire flag instead.
const RegexPrefix = "regex:"

// Result is one item returned by the service. The query protocol does not
// transmit size or modification time in this mode, so they are always
// absent.
type Result struct {
	Name     string `json:"name"`
	FullPath string `json:"path"`
	IsFolder bool   `json:"is_folder"`
}

// Response is the outcome of one Search call. Total is the service-reported
// match count; it can exceed len(Results) when the caller's maximum
// truncated paging.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}

// BatchFunc observes each decoded page as it arrives: the page's results,
// the service-reported total, and how many results have accumulated so far.
type BatchFunc func(batch []Result, total, accumulated int)

// StatusReason explains a false CheckStatus answer.
type StatusReason int

const (
	// ReasonNone: the service is reachable.
	ReasonNone StatusReason = iota
	// ReasonNotInstalled: no executable at any conventional install path.
	ReasonNotInstalled
	// ReasonServiceNotRunning: installed but not answering.
	ReasonServiceNotRunning
)

func (r StatusReason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonNotInstalled:
		return "not installed"
	case ReasonServiceNotRunning:
		return "service not running"
	default:
		return "unknown"
	}
}
