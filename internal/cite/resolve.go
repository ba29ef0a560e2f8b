// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/reaction-engine/internal/httputil"
	"github.com/pdiddy/reaction-engine/pkg/types"
)

// doiBase is the resolver endpoint. Declared as a var so tests can
// substitute an httptest server.
var doiBase = "https://doi.org/"

const maxRetries = 4

// ResolveDOI issues a HEAD request against the doi.org resolver and maps
// the outcome to a DOI status. HTTP 429 is retried with exponential
// backoff; any 2xx/3xx means the DOI resolves. Transport errors are
// returned to the caller, which typically records the reference as still
// unresolved and moves on.
func ResolveDOI(ctx context.Context, client *http.Client, cfg types.HTTPConfig, doi string) (types.DOIStatus, error) {
	doi = NormalizeDOI(doi)
	if !IsDOI(doi) {
		return types.DOIUnknown, fmt.Errorf("malformed DOI %q", doi)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, doiBase+doi, nil)
	if err != nil {
		return types.DOIUnknown, err
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return types.DOIUnknown, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 400 {
		return types.DOIResolved, nil
	}
	return types.DOIUnresolved, nil
}
