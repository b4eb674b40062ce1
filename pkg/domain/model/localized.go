package model

// LocalizedEntry is a catalog entry projected onto one preference chain
type LocalizedEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	IconURL     string `json:"icon_url,omitempty"` // Empty when the icon locator cannot be resolved
	DownloadURL string `json:"download_url"`
}

// LocalizedCatalog is the response shape of the catalog endpoint
type LocalizedCatalog struct {
	State   FetchState       `json:"state"`
	Active  bool             `json:"active"`
	Entries []LocalizedEntry `json:"entries"`
}
