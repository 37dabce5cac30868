package gemini

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

	"recycling-helper/config"
	"recycling-helper/llm"
	"recycling-helper/metrics"

	"github.com/apex/log"
)

// The relay does not sniff the image format.
const imageMimeType = "image/png"

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type geminiRequest struct {
	Contents []content `json:"contents"`
}

// Pointers tell a missing field apart from an empty one.
type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// firstText returns candidates[0].content.parts[0].text, or false if any
// element of that path is absent.
func (r *geminiResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return "", false
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil {
		return "", false
	}
	return *parts[0].Text, true
}

type Client struct {
	url   string
	model string
	http  *http.Client
}

// NewClient builds a client for the configured model. The request URL,
// including the API key, is derived once here.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		url:   cfg.GeminiURL(),
		model: cfg.GeminiModel,
		http:  &http.Client{Timeout: cfg.GeminiTimeout},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// AnalyzeImage performs a single generateContent call with the prompt as a
// text part followed by the image as an inline data part. There are no
// retries.
func (c *Client) AnalyzeImage(ctx context.Context, prompt, imageBase64 string) (string, error) {
	reqBody := geminiRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: prompt},
					{InlineData: &inlineData{MimeType: imageMimeType, Data: imageBase64}},
				},
			},
		},
	}

	start := time.Now()
	text, result, err := c.generateContent(ctx, reqBody)
	metrics.UpstreamRequestsTotal.WithLabelValues(result).Inc()
	metrics.UpstreamDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return text, err
}

func (c *Client) generateContent(ctx context.Context, body geminiRequest) (string, string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", metrics.ResultEncodeError, fmt.Errorf("%w: %v", llm.ErrEncode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", metrics.ResultEncodeError, fmt.Errorf("%w: %v", llm.ErrEncode, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the request URL, which holds the API key.
		return "", metrics.ResultTransportError, fmt.Errorf("%w: %w", llm.ErrTransport, unwrapURLError(err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", metrics.ResultTransportError, fmt.Errorf("%w: failed to read response: %v", llm.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", metrics.ResultAPIError, &llm.APIError{
			Provider:   c.SourceName(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	var gr geminiResponse
	if err := json.Unmarshal(bodyBytes, &gr); err != nil {
		return "", metrics.ResultDecodeError, fmt.Errorf("%w: %w", llm.ErrDecode, err)
	}

	text, ok := gr.firstText()
	if !ok {
		log.WithField("model", c.model).Warn("No text part in Gemini response, using fallback")
		return llm.FallbackText, metrics.ResultOK, nil
	}
	return text, metrics.ResultOK, nil
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
