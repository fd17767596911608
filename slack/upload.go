package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
)

const webAPIBaseURL = "https://slack.com/api"

// UploaderConfig configures the external upload flow
type UploaderConfig struct {
	BotToken string
	Channel  string        // channel ID the completed upload is shared to
	Timeout  time.Duration // default 60s, uploads carry image payloads
	Client   *http.Client  // override for tests
}

// Uploader pushes files through Slack's three-step external upload flow.
// Web API calls sit behind a shared rate limiter.
type Uploader struct {
	token   string
	channel string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// Upload identifies a completed upload
type Upload struct {
	FileID          string
	Permalink       string
	PermalinkPublic string
}

// NewUploader builds an uploader. The bot token is required.
func NewUploader(cfg UploaderConfig, logger *zap.SugaredLogger) (*Uploader, error) {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return nil, errors.NewConfigError("Slack bot token not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Uploader{
		token:   token,
		channel: strings.TrimSpace(cfg.Channel),
		baseURL: webAPIBaseURL,
		client:  client,
		limiter: rate.NewLimiter(1, 3),
		logger:  logger,
	}, nil
}

// apiEnvelope is the common Web API response wrapper
type apiEnvelope struct {
	OK               bool   `json:"ok"`
	Error            string `json:"error"`
	ResponseMetadata struct {
		Messages []string `json:"messages"`
	} `json:"response_metadata"`
	UploadURL string     `json:"upload_url"`
	FileID    string     `json:"file_id"`
	Files     []fileInfo `json:"files"`
	File      *fileInfo  `json:"file"`
}

type fileInfo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Permalink       string `json:"permalink"`
	PermalinkPublic string `json:"permalink_public"`
}

// UploadFile runs the three-leg external upload: reserve an upload URL,
// POST the bytes to it, then complete the upload so the file exists in
// the workspace (shared to the configured channel when set).
func (u *Uploader) UploadFile(ctx context.Context, filename string, data []byte, title, comment string) (*Upload, error) {
	uploadID := uuid.New().String()
	u.logger.Infow("Uploading file to Slack",
		"upload_id", uploadID, "filename", filename, "bytes", len(data))

	uploadURL, fileID, err := u.getUploadURL(ctx, filename, len(data))
	if err != nil {
		return nil, err
	}

	if err := u.putFile(ctx, uploadURL, filename, data); err != nil {
		return nil, err
	}

	info, err := u.completeUpload(ctx, fileID, title, comment)
	if err != nil {
		return nil, err
	}

	result := &Upload{FileID: fileID}
	if info != nil {
		result.Permalink = info.Permalink
		result.PermalinkPublic = info.PermalinkPublic
	}

	u.logger.Infow("Upload complete",
		"upload_id", uploadID, "file_id", result.FileID, "permalink", result.Permalink)
	return result, nil
}

// SharePublic makes an uploaded file publicly reachable and returns its
// public permalink. Every failure degrades: on an API error the file's
// existing permalink_public is fetched via files.info, and when that
// also fails an empty string is returned rather than an error.
func (u *Uploader) SharePublic(ctx context.Context, fileID string) string {
	env, err := u.postForm(ctx, "files.sharedPublicURL", url.Values{"file": {fileID}})
	if err == nil && env.File != nil && env.File.PermalinkPublic != "" {
		return env.File.PermalinkPublic
	}
	if err != nil {
		u.logger.Warnw("Sharing file publicly failed, falling back to files.info",
			"file_id", fileID, "error", err)
	}

	env, err = u.postForm(ctx, "files.info", url.Values{"file": {fileID}})
	if err != nil {
		u.logger.Warnw("files.info lookup failed, report will omit the public link",
			"file_id", fileID, "error", err)
		return ""
	}
	if env.File == nil {
		return ""
	}
	return env.File.PermalinkPublic
}

// getUploadURL reserves an upload slot (leg 1)
func (u *Uploader) getUploadURL(ctx context.Context, filename string, length int) (string, string, error) {
	env, err := u.postForm(ctx, "files.getUploadURLExternal", url.Values{
		"filename": {filename},
		"length":   {strconv.Itoa(length)},
	})
	if err != nil {
		return "", "", err
	}
	if env.UploadURL == "" || env.FileID == "" {
		return "", "", errors.NewAPIError("files.getUploadURLExternal returned no upload_url or file_id")
	}
	return env.UploadURL, env.FileID, nil
}

// putFile posts the file bytes to the reserved URL (leg 2). The URL is
// pre-authorized, so no auth header and no Web API rate limit apply.
func (u *Uploader) putFile(ctx context.Context, uploadURL, filename string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "create multipart form")
	}
	if _, err := fw.Write(data); err != nil {
		return errors.Wrap(err, "write multipart data")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return errors.Wrap(err, "create upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "upload request failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewHTTPError("file upload returned %s: %s",
			resp.Status, util.TruncateRunes(strings.TrimSpace(string(body)), 200))
	}
	return nil
}

// completeUpload finalizes the upload (leg 3)
func (u *Uploader) completeUpload(ctx context.Context, fileID, title, comment string) (*fileInfo, error) {
	files, err := json.Marshal([]map[string]string{{"id": fileID, "title": title}})
	if err != nil {
		return nil, errors.Wrap(err, "encode files parameter")
	}

	form := url.Values{"files": {string(files)}}
	if u.channel != "" {
		form.Set("channel_id", u.channel)
	}
	if comment != "" {
		form.Set("initial_comment", comment)
	}

	env, err := u.postForm(ctx, "files.completeUploadExternal", form)
	if err != nil {
		return nil, err
	}
	if len(env.Files) > 0 {
		return &env.Files[0], nil
	}
	return nil, nil
}

// postForm sends one rate-limited Web API call and decodes the envelope
func (u *Uploader) postForm(ctx context.Context, method string, form url.Values) (*apiEnvelope, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		u.baseURL+"/"+method, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrapf(err, "create %s request", method)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+u.token)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s request failed", method)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", method)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewHTTPError("%s returned %s: %s",
			method, resp.Status, util.TruncateRunes(strings.TrimSpace(string(body)), 200))
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.WrapParse(err, fmt.Sprintf("decode %s response", method))
	}

	if !env.OK {
		msg := env.Error
		if len(env.ResponseMetadata.Messages) > 0 {
			msg += ": " + strings.Join(env.ResponseMetadata.Messages, "; ")
		}
		return nil, errors.NewAPIError("%s failed: %s", method, msg)
	}

	return &env, nil
}
