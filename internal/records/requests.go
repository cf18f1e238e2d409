package records

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

// AcceptOpenRequests sweeps the user's open review requests and accepts
// each one. Accepting a request removes it from the open set, which
// re-windows the server's pages mid-sweep, so any sweep that accepted
// something restarts from the first page; the loop ends once a full sweep
// accepts nothing new. Individual acceptance failures are logged and counted
// but do not stop the loop. It returns the accepted and failed counts.
func (s *Service) AcceptOpenRequests(ctx context.Context) (int, int, error) {
	extra := url.Values{}
	extra.Set("is_open", "true")
	extra.Set("shared_with_me", "false")

	accepted := 0
	failed := 0
	// Failed requests stay open and keep appearing in later sweeps.
	attempted := map[string]struct{}{}
	for swept := false; !swept; {
		swept = true
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				return accepted, failed, err
			}
			result, err := s.Client.SearchUserRequests(ctx, page, s.pageSize(), extra)
			if err != nil {
				return accepted, failed, services.Wrap(services.ErrHTTP, "records", "accept requests", fmt.Sprintf("search page %d", page), err)
			}
			for _, request := range result.Hits.Hits {
				if !request.IsOpen {
					continue
				}
				id := request.ID.String()
				if id == "" {
					continue
				}
				if _, seen := attempted[id]; seen {
					continue
				}
				attempted[id] = struct{}{}
				s.Logger.Info("accepting request", "request_id", id, "title", request.Title)
				if err := s.Client.AcceptRequest(ctx, id); err != nil {
					s.Logger.Error("accept request failed", "request_id", id, "error", err)
					failed++
					continue
				}
				accepted++
				swept = false
			}
			if result.Links.Next == "" || len(result.Hits.Hits) == 0 {
				break
			}
		}
	}
	s.Logger.Info("request acceptance finished", "accepted", accepted, "failed", failed)
	return accepted, failed, nil
}
