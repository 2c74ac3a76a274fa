package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shikhoron/qna-service/internal/config"
)

// CloudinaryStore talks to a Cloudinary-compatible upload API over plain
// HTTP. Uploads are signed with the account secret; deletes address the
// object by the public id recovered from its URL.
type CloudinaryStore struct {
	baseURL   string
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewCloudinaryStore(cfg config.StorageConfig) *CloudinaryStore {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.cloudinary.com/v1_1"
	}
	return &CloudinaryStore{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the payload to the auto-upload endpoint under folder and
// returns the hosted URL.
func (s *CloudinaryStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	publicID := uuid.New().String()
	if ext := path.Ext(filename); ext != "" {
		publicID += ext
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload payload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read upload payload: %w", err)
	}

	fields := map[string]string{
		"api_key":   s.apiKey,
		"folder":    folder,
		"public_id": publicID,
		"timestamp": timestamp,
		"signature": s.sign(map[string]string{
			"folder":    folder,
			"public_id": publicID,
			"timestamp": timestamp,
		}),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("failed to build upload payload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/auto/upload", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload rejected (%d): %s", resp.StatusCode, result.Error.Message)
	}

	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return result.URL, nil
}

// Delete destroys the object addressed by a previously returned URL. URLs
// that do not belong to this store are ignored.
func (s *CloudinaryStore) Delete(ctx context.Context, fileURL string) error {
	publicID, ok := s.publicIDFromURL(fileURL)
	if !ok {
		return nil
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	form := url.Values{}
	form.Set("api_key", s.apiKey)
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("signature", s.sign(map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("delete rejected (%d): %s", resp.StatusCode, string(data))
	}

	return nil
}

// publicIDFromURL recovers "folder/name" from a hosted URL, stripping the
// delivery prefix and any version segment.
func (s *CloudinaryStore) publicIDFromURL(fileURL string) (string, bool) {
	if !strings.HasPrefix(fileURL, "http") || !strings.Contains(fileURL, "/upload/") {
		return "", false
	}

	_, after, found := strings.Cut(fileURL, "/upload/")
	if !found || after == "" {
		return "", false
	}

	parts := strings.Split(after, "/")
	if len(parts) > 1 && strings.HasPrefix(parts[0], "v") {
		if _, err := strconv.Atoi(parts[0][1:]); err == nil {
			parts = parts[1:]
		}
	}

	publicID := strings.Join(parts, "/")
	if ext := path.Ext(publicID); ext != "" {
		publicID = strings.TrimSuffix(publicID, ext)
	}
	return publicID, publicID != ""
}

// sign produces the SHA1 request signature over sorted parameters.
func (s *CloudinaryStore) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	// Small fixed sets; insertion order is not guaranteed so sort explicitly.
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	sb.WriteString(s.apiSecret)

	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
