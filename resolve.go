package main

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/otiai10/opengraph/v2"
	"go.uber.org/zap"
)

// resolveLinkNames fills in empty link names from the target page's
// OpenGraph title, falling back to the URL host. The input is not modified.
// client bounds every fetch; it must carry a timeout.
func resolveLinkNames(links []Link, client *http.Client, log *zap.Logger) []Link {
	out := make([]Link, len(links))
	copy(out, links)

	for i, l := range out {
		if l.Name != "" {
			continue
		}

		ogp, err := opengraph.Fetch(l.URL, opengraph.Intent{HTTPClient: client})
		if err == nil && strings.TrimSpace(ogp.Title) != "" {
			out[i].Name = strings.TrimSpace(ogp.Title)
			log.Debug("resolved link name", zap.String("url", l.URL), zap.String("name", out[i].Name))
			continue
		}

		if err != nil {
			log.Warn("error while fetching link", zap.String("url", l.URL), zap.Error(err))
		}

		if u, perr := url.Parse(l.URL); perr == nil {
			out[i].Name = u.Host
		}
	}

	return out
}
