package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/postpilot/postpilot/pkg/core"
	"github.com/postpilot/postpilot/pkg/security"
)

const (
	defaultAPIBaseURL   = "https://api.linkedin.com"
	defaultOAuthBaseURL = "https://www.linkedin.com/oauth/v2"

	// linkedinVersion is the versioned-API header value LinkedIn requires.
	linkedinVersion = "202506"

	restliProtocolVersion = "2.0.0"
)

// shareRefPattern extracts the already-published share URN that LinkedIn
// embeds in the message of a duplicate-content error response.
var shareRefPattern = regexp.MustCompile(`urn:li:share:\d+`)

// LinkedIn implements core.Platform against the LinkedIn REST API.
type LinkedIn struct {
	httpClient   *http.Client
	apiBaseURL   string
	oauthBaseURL string
	clientID     string
	clientSecret string
}

// Option configures a LinkedIn client.
type Option func(*LinkedIn)

// WithHTTPClient sets the HTTP client used for all calls.
func WithHTTPClient(c *http.Client) Option {
	return func(l *LinkedIn) { l.httpClient = c }
}

// WithAPIBaseURL overrides the REST API base URL.
func WithAPIBaseURL(u string) Option {
	return func(l *LinkedIn) { l.apiBaseURL = strings.TrimRight(u, "/") }
}

// WithOAuthBaseURL overrides the OAuth base URL.
func WithOAuthBaseURL(u string) Option {
	return func(l *LinkedIn) { l.oauthBaseURL = strings.TrimRight(u, "/") }
}

// NewLinkedIn creates a LinkedIn platform client. The client credentials are
// only needed for Refresh; Submit and FetchMetrics authenticate with the
// per-account access token.
func NewLinkedIn(clientID, clientSecret string, opts ...Option) *LinkedIn {
	l := &LinkedIn{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		apiBaseURL:   defaultAPIBaseURL,
		oauthBaseURL: defaultOAuthBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// submitRequest is the POST /rest/posts body.
type submitRequest struct {
	Author       string             `json:"author"`
	Commentary   string             `json:"commentary"`
	Visibility   string             `json:"visibility"`
	Distribution submitDistribution `json:"distribution"`
	State        string             `json:"lifecycleState"`
}

type submitDistribution struct {
	FeedDistribution  string   `json:"feedDistribution"`
	TargetEntities    []string `json:"targetEntities"`
	ThirdPartyOutlets []string `json:"thirdPartyDistributionChannels"`
}

// apiErrorBody is the error payload LinkedIn returns on non-2xx responses.
type apiErrorBody struct {
	Message      string `json:"message"`
	ErrorDetails struct {
		InputErrors []struct {
			Code string `json:"code"`
		} `json:"inputErrors"`
	} `json:"errorDetails"`
}

// Submit publishes text on behalf of the account. On success the platform
// returns the new share URN in the x-restli-id response header.
func (l *LinkedIn) Submit(ctx context.Context, text string, account *core.Account) (string, error) {
	body := submitRequest{
		// ExternalAccountID is stored as the full author URN.
		Author:     account.ExternalAccountID,
		Commentary: text,
		Visibility: "PUBLIC",
		Distribution: submitDistribution{
			FeedDistribution:  "MAIN_FEED",
			TargetEntities:    []string{},
			ThirdPartyOutlets: []string{},
		},
		State: "PUBLISHED",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal submit body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiBaseURL+"/rest/posts", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	l.setRESTHeaders(req, account.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", &core.PlatformError{Kind: core.KindOther, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifySubmitError(resp)
	}

	ref := resp.Header.Get("x-restli-id")
	if ref == "" {
		return "", &core.PlatformError{
			Kind:       core.KindOther,
			StatusCode: resp.StatusCode,
			Detail:     "response missing x-restli-id header",
		}
	}
	return ref, nil
}

// classifySubmitError turns a non-2xx submit response into a PlatformError.
// A DUPLICATE_POST input error means the content already exists; the response
// message carries the existing share URN, which the caller records as success.
func classifySubmitError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var body apiErrorBody
	_ = json.Unmarshal(raw, &body)

	for _, ie := range body.ErrorDetails.InputErrors {
		if ie.Code == "DUPLICATE_POST" {
			return &core.PlatformError{
				Kind:        core.KindDuplicate,
				StatusCode:  resp.StatusCode,
				ExistingRef: shareRefPattern.FindString(body.Message),
				Detail:      security.SanitizeErrorMessage(body.Message),
			}
		}
	}

	detail := body.Message
	if detail == "" {
		detail = string(raw)
	}
	return &core.PlatformError{
		Kind:       core.KindOther,
		StatusCode: resp.StatusCode,
		Detail:     security.SanitizeErrorMessage(detail),
	}
}

// metricsResponse is the per-metric aggregation payload.
type metricsResponse struct {
	Elements []struct {
		Count int64 `json:"count"`
	} `json:"elements"`
}

// FetchMetrics reads the current totals for a published share. The analytics
// endpoint exposes one query type per metric, so this makes one call each for
// impressions, reactions, and comments.
func (l *LinkedIn) FetchMetrics(ctx context.Context, externalPostID string, account *core.Account) (core.Metrics, error) {
	impressions, err := l.fetchMetric(ctx, externalPostID, account, "IMPRESSION")
	if err != nil {
		return core.Metrics{}, err
	}
	reactions, err := l.fetchMetric(ctx, externalPostID, account, "REACTION")
	if err != nil {
		return core.Metrics{}, err
	}
	comments, err := l.fetchMetric(ctx, externalPostID, account, "COMMENT")
	if err != nil {
		return core.Metrics{}, err
	}

	return core.Metrics{
		Impressions: impressions,
		Reactions:   reactions,
		Comments:    comments,
	}, nil
}

func (l *LinkedIn) fetchMetric(ctx context.Context, externalPostID string, account *core.Account, queryType string) (int64, error) {
	// The entity parameter is (share:URN) with only the URN escaped, so the
	// query string is assembled by hand.
	endpoint := fmt.Sprintf(
		"%s/rest/memberCreatorPostAnalytics?q=entity&aggregation=TOTAL&entity=(share:%s)&queryType=%s",
		l.apiBaseURL, url.QueryEscape(externalPostID), queryType,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	l.setRESTHeaders(req, account.AccessToken)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return 0, &core.PlatformError{Kind: core.KindOther, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, &core.PlatformError{
			Kind:       core.KindNotFound,
			StatusCode: resp.StatusCode,
			Detail:     "post not found on platform",
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return 0, &core.PlatformError{
			Kind:       core.KindOther,
			StatusCode: resp.StatusCode,
			Detail:     security.SanitizeErrorMessage(string(raw)),
		}
	}

	var body metricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, &core.PlatformError{Kind: core.KindOther, Detail: "decode metrics response: " + err.Error()}
	}
	if len(body.Elements) == 0 {
		return 0, nil
	}
	return body.Elements[0].Count, nil
}

// tokenResponse is the OAuth token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Refresh exchanges a refresh token for a fresh token pair.
func (l *LinkedIn) Refresh(ctx context.Context, refreshToken string) (core.TokenGrant, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {l.clientID},
		"client_secret": {l.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.oauthBaseURL+"/accessToken", strings.NewReader(form.Encode()))
	if err != nil {
		return core.TokenGrant{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return core.TokenGrant{}, &core.PlatformError{Kind: core.KindOther, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return core.TokenGrant{}, &core.PlatformError{
			Kind:       core.KindOther,
			StatusCode: resp.StatusCode,
			Detail:     security.SanitizeErrorMessage(string(raw)),
		}
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.TokenGrant{}, &core.PlatformError{Kind: core.KindOther, Detail: "decode token response: " + err.Error()}
	}

	return core.TokenGrant{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresIn:    body.ExpiresIn,
	}, nil
}

func (l *LinkedIn) setRESTHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("LinkedIn-Version", linkedinVersion)
	req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)
}
