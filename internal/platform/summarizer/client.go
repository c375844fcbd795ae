package summarizer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const pdfContentType = "application/pdf"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// excerptLimit bounds how much of an error body ends up in the returned error.
const excerptLimit = 512

type Client interface {
	Summarize(ctx context.Context, fileName string, pdf []byte) (json.RawMessage, error)
}

type httpClient struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a client for the summarization service upload endpoint.
// A zero timeout leaves the request unbounded.
func NewClient(url string, timeout time.Duration) Client {
	return &httpClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *httpClient) Summarize(ctx context.Context, fileName string, pdf []byte) (json.RawMessage, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(fileName)))
	header.Set("Content-Type", pdfContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("summarizer request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read summarizer response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("summarizer API error: %s - %s", resp.Status, excerpt(respBody))
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("summarizer returned malformed JSON: %s", excerpt(respBody))
	}

	return json.RawMessage(respBody), nil
}

func excerpt(b []byte) string {
	if len(b) > excerptLimit {
		return string(b[:excerptLimit]) + "..."
	}
	return string(b)
}
