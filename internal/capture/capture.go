// Package capture holds the network traffic observed while a page loads.
//
// A Snapshot is produced once per navigation cycle and never changes after
// construction, so consumers can inspect it without coordinating with the
// browser that recorded it.
package capture

import "strings"

// Exchange is one observed request and its response.
type Exchange struct {
	URL      string
	Status   int64
	MIMEType string
	Body     []byte
}

// Snapshot is an immutable, ordered view of the exchanges seen during one
// navigation.
type Snapshot struct {
	exchanges []Exchange
}

// NewSnapshot copies exchanges into a snapshot, preserving order.
func NewSnapshot(exchanges []Exchange) Snapshot {
	copied := make([]Exchange, len(exchanges))
	for i, ex := range exchanges {
		copied[i] = ex.clone()
	}
	return Snapshot{exchanges: copied}
}

// Len reports the number of exchanges.
func (s Snapshot) Len() int { return len(s.exchanges) }

// Select returns copies of the exchanges for which keep reports true.
func (s Snapshot) Select(keep func(Exchange) bool) []Exchange {
	var out []Exchange
	for _, ex := range s.exchanges {
		if keep(ex) {
			out = append(out, ex.clone())
		}
	}
	return out
}

// URLsWithSuffix lists request URLs ending in suffix.
func (s Snapshot) URLsWithSuffix(suffix string) []string {
	var out []string
	for _, ex := range s.exchanges {
		if strings.HasSuffix(ex.URL, suffix) {
			out = append(out, ex.URL)
		}
	}
	return out
}

func (e Exchange) clone() Exchange {
	if e.Body != nil {
		e.Body = append([]byte(nil), e.Body...)
	}
	return e
}
