// Package facebook is the Graph API client used for page publishing. It is
// deliberately thin: request building, error classification and a local
// rate-limit guard. Anything stateful (queueing, history) lives elsewhere.
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fbautopost/backend/core/config"
	domainPost "github.com/fbautopost/backend/domains/post"
	pkgError "github.com/fbautopost/backend/pkg/error"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	// BaseURL is overridable for tests; defaults to the public Graph host.
	BaseURL string

	httpClient  *http.Client
	pageID      string
	accessToken string
	limiter     *rateLimiter
}

func NewClient(cfg config.FacebookConfig) *Client {
	return &Client{
		BaseURL:     fmt.Sprintf("https://graph.facebook.com/%s", cfg.GraphVersion),
		httpClient:  &http.Client{Timeout: defaultTimeout},
		pageID:      cfg.PageID,
		accessToken: cfg.PageAccessToken,
		limiter:     newRateLimiter(cfg.RateLimitCalls, cfg.RateLimitWindow),
	}
}

// graphErrorBody is the error envelope every Graph endpoint uses.
type graphErrorBody struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func (c *Client) checkLimit() error {
	if !c.limiter.allow(time.Now()) {
		_, resetTime := c.limiter.usage(time.Now())
		return pkgError.NewRateLimitError(
			fmt.Sprintf("local rate limit reached, resets at %s", resetTime.Format(time.RFC3339)), 0)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("graph api response unreadable: %w", err)
	}

	if resp.StatusCode >= 400 {
		var graphErr graphErrorBody
		if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
			logrus.Warnf("[FACEBOOK] Graph API error %d (%s): %s",
				graphErr.Error.Code, graphErr.Error.Type, graphErr.Error.Message)
			return pkgError.NewGraphError(graphErr.Error.Message, graphErr.Error.Type,
				graphErr.Error.Code, graphErr.Error.Subcode, graphErr.Error.FBTraceID)
		}
		return pkgError.NewGraphError(
			fmt.Sprintf("graph api returned status %d", resp.StatusCode), "http", 0, 0, "")
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("graph api response malformed: %w", err)
		}
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	if err := c.checkLimit(); err != nil {
		return err
	}
	form.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+path, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.checkLimit(); err != nil {
		return err
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// PublishText posts a message, with an optional link attachment, to the
// page feed and returns the created post id.
func (c *Client) PublishText(ctx context.Context, message string, link *string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	if link != nil && *link != "" {
		form.Set("link", *link)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/"+c.pageID+"/feed", form, &result); err != nil {
		return "", err
	}

	logrus.Infof("[FACEBOOK] Published text post %s", result.ID)
	return result.ID, nil
}

// PublishImage uploads the image file to the page photos edge.
func (c *Client) PublishImage(ctx context.Context, message, imagePath string, altText *string) (string, error) {
	if err := c.checkLimit(); err != nil {
		return "", err
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("source", filepath.Base(imagePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	_ = writer.WriteField("message", message)
	if altText != nil && *altText != "" {
		_ = writer.WriteField("alt_text_custom", *altText)
	}
	_ = writer.WriteField("access_token", c.accessToken)
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/"+c.pageID+"/photos", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}

	postID := result.PostID
	if postID == "" {
		postID = result.ID
	}
	logrus.Infof("[FACEBOOK] Published image post %s", postID)
	return postID, nil
}

// DeletePost removes a published post from the page.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if err := c.checkLimit(); err != nil {
		return err
	}

	query := url.Values{}
	query.Set("access_token", c.accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.BaseURL+"/"+postID+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := c.do(req, &result); err != nil {
		return err
	}
	if !result.Success {
		return &pkgError.GraphAPIError{Message: fmt.Sprintf("delete of %s was not confirmed", postID)}
	}
	return nil
}

// PageInfo fetches the page profile fields used by the dashboard.
func (c *Client) PageInfo(ctx context.Context) (domainPost.PageInfo, error) {
	query := url.Values{}
	query.Set("fields", "id,name,category,about,website")

	var info domainPost.PageInfo
	if err := c.get(ctx, "/"+c.pageID, query, &info); err != nil {
		return domainPost.PageInfo{}, err
	}
	return info, nil
}

// RecentPosts lists the latest published page posts. The Graph API caps the
// posts edge at 100 per call, so larger limits are clamped.
func (c *Client) RecentPosts(ctx context.Context, limit int) ([]domainPost.PagePost, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	query := url.Values{}
	query.Set("fields", "id,message,created_time,permalink_url")
	query.Set("limit", strconv.Itoa(limit))

	var result struct {
		Data []domainPost.PagePost `json:"data"`
	}
	if err := c.get(ctx, "/"+c.pageID+"/posts", query, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// ValidateToken asks the Graph API who the token belongs to.
func (c *Client) ValidateToken(ctx context.Context) error {
	var result struct {
		ID string `json:"id"`
	}
	return c.get(ctx, "/me", nil, &result)
}

// Usage reports the local sliding-window consumption.
func (c *Client) Usage() domainPost.APIUsage {
	made, resetTime := c.limiter.usage(time.Now())
	return domainPost.APIUsage{
		CallsMade:      made,
		CallsRemaining: c.limiter.limit - made,
		RateLimit:      c.limiter.limit,
		WindowSeconds:  int(c.limiter.window.Seconds()),
		ResetTime:      resetTime,
	}
}
