package report

// GeoPoint locates the birth place. The city label is informational only.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
	City      string
}

// Request carries the data the workflow needs to assemble a chart report.
type Request struct {
	BirthDate string
	BirthTime string
	Location  GeoPoint
}

// WebhookResponse is the transient copy of the workflow reply. Both fields
// are optional.
type WebhookResponse struct {
	Report   string
	ReportID string
}

// Result is derived per request and never stored.
type Result struct {
	Acknowledgement string
	ReportBody      string
	ReportID        string
}
