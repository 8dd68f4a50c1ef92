package health

type healthResponse struct {
	Status    string `json:"status"`    // Health status (ok or unhealthy)
	Timestamp string `json:"timestamp"` // Current server timestamp in RFC3339 format
	Uptime    string `json:"uptime"`    // Server uptime since start
}
