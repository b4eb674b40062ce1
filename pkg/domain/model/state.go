package model

// FetchStatus is the phase of a catalog fetcher
type FetchStatus string

const (
	// FetchIdle is the initial phase, also reached after a successful load
	FetchIdle FetchStatus = "idle"

	// FetchLoading means a fetch is in flight
	FetchLoading FetchStatus = "loading"

	// FetchFailed means the last fetch or decode failed
	FetchFailed FetchStatus = "failed"
)

// FetchState is the observable state of a catalog fetcher
type FetchState struct {
	Status FetchStatus `json:"status"`
	Reason string      `json:"reason,omitempty"` // Set only when Status is FetchFailed
}

// String returns "idle", "loading" or "failed: <reason>"
func (s FetchState) String() string {
	if s.Status == FetchFailed {
		return string(s.Status) + ": " + s.Reason
	}
	return string(s.Status)
}

// ResourceStatus is the phase of a resource loader
type ResourceStatus string

const (
	ResourceEmpty   ResourceStatus = "empty"
	ResourceLoading ResourceStatus = "loading"
	ResourceLoaded  ResourceStatus = "loaded"
)

// ResourceState is the observable state of a resource loader
type ResourceState struct {
	Status ResourceStatus
	URL    string // Requested URL; empty when Status is ResourceEmpty
	Data   []byte // Payload when loaded. Kept while reloading the same URL.
}

// Available reports whether Data can be shown
func (s ResourceState) Available() bool {
	return len(s.Data) > 0
}
