package model

// HealthStatus represents the health check status
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Catalog string `json:"catalog"` // FetchState of the catalog, e.g. "failed: timeout"
}
