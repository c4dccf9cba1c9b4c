package domain

import "time"

// Payload is a raw feed body as downloaded, with its provenance.
type Payload struct {
	Source    string
	URL       string
	FetchedAt time.Time
	Body      []byte
	Hash      string
}
