package dispatch

import "context"

// Caller port (interface untuk telephony provider).
type Caller interface {
	Call(ctx context.Context, toNumber, message string) (CallResult, error)
}

// ReportArchive port (interface untuk incident report storage).
type ReportArchive interface {
	StoreReport(ctx context.Context, key string, report IncidentReport) (string, error)
}
