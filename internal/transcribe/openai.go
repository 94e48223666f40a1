package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// OpenAIClient calls an OpenAI-compatible /audio/transcriptions endpoint.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// openaiResponse is the JSON response from the transcriptions API.
type openaiResponse struct {
	Text string `json:"text"`
}

// NewOpenAIClient creates a transcription client. baseURL is the API root
// (e.g. "https://api.openai.com/v1") without a trailing slash.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return "openai" }

// Transcribe sends the clip to the transcriptions endpoint and returns the
// trimmed text. Uses multipart/form-data with the clip's own content type so
// the server doesn't have to guess the format from the filename alone.
func (c *OpenAIClient) Transcribe(ctx context.Context, clip Clip, language string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := createClipPart(w, clip)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}

	w.WriteField("model", c.model)
	if language != "" {
		w.WriteField("language", language)
	}
	w.WriteField("response_format", "json")
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result openaiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}

// createClipPart is like multipart.Writer.CreateFormFile but carries the
// clip's MIME type instead of the default application/octet-stream.
func createClipPart(w *multipart.Writer, clip Clip) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(clip.Filename)))
	if clip.MIMEType != "" {
		h.Set("Content-Type", clip.MIMEType)
	}
	return w.CreatePart(h)
}
