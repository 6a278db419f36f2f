// Package supabase talks to the hosted backend: PostgREST for table data
// and the auth admin API for test users.
package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"
	httpclient "legalaid-seeder/internal/common/http"
)

const restPrefix = "/rest/v1/"

// RESTClient reads and writes tables through PostgREST.
type RESTClient struct {
	http *httpclient.Client
}

// NewRESTClient authenticates with apiKey unless WithAuthorization
// overrides the bearer token.
func NewRESTClient(baseURL, apiKey string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		http: httpclient.NewClient(baseURL, timeout).
			WithHeader("apikey", apiKey).
			WithHeader("Authorization", "Bearer "+apiKey),
	}
}

// WithAuthorization returns a client that forwards a caller's
// Authorization header instead of the api key.
func (c *RESTClient) WithAuthorization(authorization string) *RESTClient {
	if authorization == "" {
		return c
	}
	return &RESTClient{http: c.http.WithHeader("Authorization", authorization)}
}

// Insert bulk-inserts rows into table. The whole batch fails if any row is
// rejected. columns pins the column list so rows that omit optional fields
// insert NULL for them.
func (c *RESTClient) Insert(ctx context.Context, table string, columns []string, rows interface{}) error {
	query := url.Values{}
	if len(columns) > 0 {
		query.Set("columns", strings.Join(columns, ","))
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   restPrefix + table,
		Query:  query,
		Header: http.Header{"Prefer": {"return=minimal"}},
		Body:   rows,
	})
	if err != nil {
		return apperrors.NewBackendUnavailableError("insert "+table, err)
	}
	if !resp.OK(http.StatusCreated, http.StatusOK, http.StatusNoContent) {
		return apperrors.NewBackendRequestError("insert "+table, resp.StatusCode, string(resp.Body))
	}
	return nil
}

// DeleteAll deletes every row of table whose key column is set, which is
// every row when key is a non-null column.
func (c *RESTClient) DeleteAll(ctx context.Context, table, key string) error {
	query := url.Values{}
	query.Set(key, "not.is.null")

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   restPrefix + table,
		Query:  query,
		Header: http.Header{"Prefer": {"return=minimal"}},
	})
	if err != nil {
		return apperrors.NewBackendUnavailableError("delete "+table, err)
	}
	if !resp.OK(http.StatusOK, http.StatusNoContent) {
		return apperrors.NewBackendRequestError("delete "+table, resp.StatusCode, string(resp.Body))
	}
	return nil
}

// Select reads every row of table into dest, which must be a pointer to a
// slice.
func (c *RESTClient) Select(ctx context.Context, table string, dest interface{}) error {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   restPrefix + table,
		Query:  url.Values{"select": {"*"}},
	})
	if err != nil {
		return apperrors.NewBackendUnavailableError("select "+table, err)
	}
	if !resp.OK(http.StatusOK) {
		return apperrors.NewBackendRequestError("select "+table, resp.StatusCode, string(resp.Body))
	}
	if err := resp.Decode(dest); err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}
