// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Shreehariballakkuraya/ScanPOS/config"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/validate"
)

// JSON decodes r.Body as JSON into dest and runs validation.
// An empty body decodes as {} so endpoints with all-optional fields accept
// bare POSTs. The body is capped at MAX_BODY_BYTES.
// Returns (errs, nil) on validation failures and (nil, err) when the body is
// malformed or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	if r.Body != nil && r.Body != http.NoBody {
		r.Body = http.MaxBytesReader(nil, r.Body, int64(config.Int("MAX_BODY_BYTES", 1<<20)))

		if err = json.NewDecoder(r.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
			}
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}
