package httpapi

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/samply/prism/internal/stratum"
)

// criteriaRequest is the body of POST /criteria.
type criteriaRequest struct {
	Sites []string `json:"sites"`
}

// criteriaHandler is the read path: for each requested site, either
// return the cached value or record it as pending, then aggregate every
// hit into one response. Always returns 200, even when empty — missing
// sites become refresh demand rather than a client-visible error.
func (s *Server) criteriaHandler(c *echo.Context) error {
	var req criteriaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sites := req.Sites
	if len(sites) == 0 {
		sites = s.initialSites
	}

	acc := stratum.Stratifiers{}
	for _, site := range sites {
		hit, ok := s.cache.GetFresh(site)
		if ok {
			acc = stratum.CombineStratifiers(acc, hit)
			continue
		}
		s.pending.Add(site)
	}

	return c.JSON(http.StatusOK, acc)
}
