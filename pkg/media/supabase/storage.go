package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StorageClient uploads message images to a Supabase storage bucket and
// returns the publicly resolvable URL the chat message carries.
type StorageClient struct {
	BaseURL string
	APIKey  string
	Bucket  string
	HTTP    *http.Client
}

func NewStorageClient(baseURL, apiKey, bucket string) *StorageClient {
	return &StorageClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Bucket:  bucket,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Upload stores the object under the session-scoped name and returns its
// public URL. The bucket must be configured public for the URL to resolve.
func (c *StorageClient) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.BaseURL, c.Bucket, objectName)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage error: status %d, body: %s", resp.StatusCode, string(body))
	}

	return c.PublicURL(objectName), nil
}

func (c *StorageClient) PublicURL(objectName string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.BaseURL, c.Bucket, objectName)
}
