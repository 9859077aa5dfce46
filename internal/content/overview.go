package content

import (
	"context"

	"github.com/folioadmin/folioadmin/internal/apiclient"
)

// Count is the number of records of one resource. Message is set when the
// count could not be loaded.
type Count struct {
	Resource Resource
	N        int
	Message  string
}

// Overview loads every resource listing concurrently and returns the counts
// in All() order. Requests still running when ctx ends are abandoned.
func (s *Service) Overview(ctx context.Context) []Count {
	scope := apiclient.NewScope(ctx, s.api)
	defer scope.Close()

	resources := All()
	counts := make([]Count, len(resources))
	for i, r := range resources {
		counts[i].Resource = r

		req, res, ok := s.listRequest(r)
		if !ok {
			counts[i].Message = res.Message
			continue
		}
		scope.Go(req, func(res apiclient.Response) {
			listing := decodeList(r, res)
			if !listing.Success {
				counts[i].Message = listing.Message
				return
			}
			counts[i].N = len(listing.Items)
		})
	}
	scope.Wait()

	return counts
}
