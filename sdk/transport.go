package desk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vango-go/voicedesk/pkg/auth"
	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/metrics"
	"github.com/vango-go/voicedesk/pkg/state"
)

const maxResponseBytes = 8 << 20

// request describes one REST call. route is the endpoint template used for
// metrics labels ("/agents/{id}"); params fill its placeholders in order.
type request struct {
	method      string
	route       string
	params      []string
	query       url.Values
	body        []byte
	contentType string
	// anonymous requests carry no bearer token and never trigger a refresh.
	anonymous bool
}

func newRequest(method, route string, params ...string) request {
	return request{method: method, route: route, params: params}
}

func (r request) withJSON(payload any) (request, error) {
	if payload == nil {
		return r, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return r, core.NewInvalidRequestError("failed to marshal request body")
	}
	r.body = body
	r.contentType = "application/json"
	return r, nil
}

func (r request) withForm(values url.Values) request {
	r.body = []byte(values.Encode())
	r.contentType = "application/x-www-form-urlencoded"
	return r
}

func (r request) withQuery(values url.Values) request {
	r.query = values
	return r
}

// path expands the route template. Each {placeholder} segment consumes one
// param, path-escaped.
func (r request) path() string {
	if len(r.params) == 0 {
		return r.route
	}
	segments := strings.Split(r.route, "/")
	next := 0
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && next < len(r.params) {
			segments[i] = url.PathEscape(r.params[next])
			next++
		}
	}
	return strings.Join(segments, "/")
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || strings.TrimSpace(base.Scheme) == "" || strings.TrimSpace(base.Host) == "" {
		return "", core.NewInvalidRequestError("invalid backend base URL")
	}
	if base.User != nil {
		return "", core.NewInvalidRequestError("backend base URL must not include credentials")
	}
	base.Fragment = ""
	if err := setEscapedPath(base, strings.TrimSuffix(base.EscapedPath(), "/")+"/"+strings.TrimLeft(path, "/")); err != nil {
		return "", core.NewInvalidRequestError("invalid request path")
	}
	if len(query) > 0 {
		base.RawQuery = query.Encode()
	} else {
		base.RawQuery = ""
	}
	return base.String(), nil
}

// setEscapedPath sets an already-escaped path so escaped separators in ids
// survive.
func setEscapedPath(u *url.URL, escaped string) error {
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return err
	}
	u.Path = unescaped
	u.RawPath = escaped
	return nil
}

func (c *Client) withRequestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline || c.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

// do sends r and decodes a 2xx body into out. Authenticated requests are
// refreshed ahead of time when the access token has expired, and a 401 is
// answered with one refresh and one retry.
func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, cancel := c.withRequestTimeout(ctx)
	defer cancel()

	access := ""
	if !r.anonymous {
		var err error
		access, err = c.freshAccessToken(ctx)
		if err != nil {
			return err
		}
	}

	status, body, err := c.send(ctx, r, access)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && !r.anonymous {
		if access == "" && c.session.State().Tokens.RefreshToken == "" {
			return core.ErrNotAuthenticated
		}
		access, err = c.refreshFrom(ctx, access)
		if err != nil {
			return err
		}
		status, body, err = c.send(ctx, r, access)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return core.FromStatus(r.method, r.path(), status, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &core.Error{
			Type:     core.ErrAPI,
			Message:  fmt.Sprintf("failed to decode %s %s response", r.method, r.path()),
			Method:   r.method,
			Endpoint: r.path(),
			Detail:   err.Error(),
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, r request, access string) (int, []byte, error) {
	endpoint, err := c.endpoint(r.path(), r.query)
	if err != nil {
		return 0, nil, err
	}

	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, reader)
	if err != nil {
		return 0, nil, &TransportError{Method: r.method, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(r.method, r.route, 0, time.Since(start))
		return 0, nil, &TransportError{Method: r.method, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.metrics.RecordRequest(r.method, r.route, resp.StatusCode, elapsed)
	c.logger.Debug("backend request",
		"method", r.method,
		"endpoint", r.path(),
		"status", resp.StatusCode,
		"duration", elapsed,
	)
	if err != nil {
		return 0, nil, &TransportError{Method: r.method, Endpoint: endpoint, Err: err}
	}
	return resp.StatusCode, body, nil
}

// freshAccessToken returns the current access token, refreshing it first
// when its JWT exp has passed.
func (c *Client) freshAccessToken(ctx context.Context) (string, error) {
	tokens := c.session.State().Tokens
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return tokens.AccessToken, nil
	}
	if !auth.Expired(tokens.AccessToken, c.now(), defaultExpirySkew) {
		return tokens.AccessToken, nil
	}
	c.logger.Debug("access token expired, refreshing before request")
	return c.refreshFrom(ctx, tokens.AccessToken)
}

// refreshFrom exchanges the refresh token for a new pair. stale is the
// access token that was rejected; when another caller has already replaced
// it the new token is returned without a second refresh. Concurrent callers
// share one in-flight refresh.
func (c *Client) refreshFrom(ctx context.Context, stale string) (string, error) {
	if current := c.session.State().Tokens.AccessToken; current != "" && current != stale {
		return current, nil
	}
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		if current := c.session.State().Tokens.AccessToken; current != "" && current != stale {
			return current, nil
		}
		tokens, err := c.exchangeRefreshToken(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		return tokens.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) exchangeRefreshToken(ctx context.Context) (auth.Tokens, error) {
	refresh := c.session.State().Tokens.RefreshToken
	if refresh == "" {
		return auth.Tokens{}, c.expireSession(errors.New("no refresh token"))
	}

	ctx, cancel := c.withRequestTimeout(ctx)
	defer cancel()

	r, err := newRequest(http.MethodPost, "/auth/refresh").withJSON(map[string]string{"refresh_token": refresh})
	if err != nil {
		return auth.Tokens{}, err
	}
	r.anonymous = true

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.do(ctx, r, &pair); err != nil {
		var apiErr *core.Error
		if errors.As(err, &apiErr) {
			return auth.Tokens{}, c.expireSession(err)
		}
		// Network failures leave the session intact so a later call can
		// retry the refresh.
		c.metrics.RecordRefresh(metrics.RefreshFailure)
		return auth.Tokens{}, err
	}
	if pair.AccessToken == "" {
		return auth.Tokens{}, c.expireSession(errors.New("refresh response carried no access token"))
	}
	tokens := auth.Tokens{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refresh
	}
	c.storeTokens(tokens)
	c.session.Dispatch(state.TokensRefreshed{Tokens: tokens})
	c.metrics.RecordRefresh(metrics.RefreshSuccess)
	c.logger.Info("access token refreshed")
	return tokens, nil
}

// expireSession forces a logout after a failed refresh.
func (c *Client) expireSession(cause error) error {
	c.metrics.RecordRefresh(metrics.RefreshFailure)
	c.logger.Warn("token refresh failed, logging out", "error", cause)
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn("clear stored tokens", "error", err)
	}
	c.session.Dispatch(state.LoggedOut{Expired: true})
	return core.ErrSessionExpired
}

func (c *Client) storeTokens(tokens auth.Tokens) {
	if err := c.tokens.Save(tokens); err != nil {
		c.logger.Warn("persist tokens", "error", err)
	}
}
