// package services implements typed access to the study backend's REST API
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/studyx/internal/models"
)

// Requester performs one backend request. [*APIClient] is the production implementation.
type Requester interface {
	Do(ctx context.Context, method, path string, body, dest any) error
}

func escape(id models.ID) string {
	return url.PathEscape(id.String())
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return q
}

func requireID(kind string, id models.ID) error {
	if id == "" {
		return fmt.Errorf("%s id is required", kind)
	}
	return nil
}
