package http

import (
	"net/http"
	"strconv"

	"paws/pkg/config"
	apperrors "paws/pkg/errors"
)

// ExtractLimitOffset reads the paging window of a booking list request.
// A missing or zero limit uses the default page size; larger limits are
// capped. Negative or non-numeric values are rejected.
func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, apperrors.InvalidInput("limit must be a non-negative integer, got " + strconv.Quote(s))
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			return 0, 0, apperrors.InvalidInput("offset must be a non-negative integer, got " + strconv.Quote(s))
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}
