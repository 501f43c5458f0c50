package feedloader

import (
	"fmt"
	"sort"

	"github.com/travigo/gbfsmap/pkg/gbfs"
)

type Result struct {
	Discovery *gbfs.Discovery
	Payloads  map[string][]byte
	Errors    []*FeedError
	Requested int
}

func (r *Result) Loaded() int {
	return len(r.Payloads)
}

func (r *Result) Summary() string {
	return fmt.Sprintf("%d of %d feeds loaded", r.Loaded(), r.Requested)
}

func (r *Result) Payload(feed string) ([]byte, bool) {
	payload, ok := r.Payloads[feed]
	return payload, ok
}

func (r *Result) sortErrors() {
	sort.Slice(r.Errors, func(i, j int) bool {
		return r.Errors[i].Feed < r.Errors[j].Feed
	})
}
