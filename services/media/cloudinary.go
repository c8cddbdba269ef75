package mediasvc

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shakhna/portal/core"
)

const uploadURLFmt = "https://api.cloudinary.com/v1_1/%s/auto/upload"

type cloudinaryService struct {
	conf       core.MediaConfig
	logger     core.Logger
	httpClient *http.Client
	uploadURL  string
	nowFunc    func() time.Time
}

var _ core.MediaService = (*cloudinaryService)(nil)

func NewCloudinaryService(conf *core.Config, logger core.Logger) core.MediaService {
	return &cloudinaryService{
		conf:       conf.Media,
		logger:     logger,
		httpClient: http.DefaultClient,
		uploadURL:  fmt.Sprintf(uploadURLFmt, conf.Media.CloudName),
		nowFunc:    time.Now,
	}
}

// Upload pushes the file to the media host and returns its public location.
// Every failure path logs and returns nil; callers never see an error.
func (svc *cloudinaryService) Upload(ctx context.Context, filename string, content io.Reader) *core.UploadedFile {
	publicID := uuid.New().String()
	timestamp := fmt.Sprint(svc.nowFunc().Unix())

	body := new(strings.Builder)
	w := multipart.NewWriter(body)
	fields := map[string]string{
		"api_key":   svc.conf.APIKey,
		"timestamp": timestamp,
		"folder":    svc.conf.Folder,
		"public_id": publicID,
		"signature": svc.signature(timestamp, publicID),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			svc.logger.Error("building upload request", err)
			return nil
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		svc.logger.Error("building upload request", err)
		return nil
	}
	if _, err := io.Copy(part, content); err != nil {
		svc.logger.Error("reading upload content", err)
		return nil
	}
	if err := w.Close(); err != nil {
		svc.logger.Error("building upload request", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.uploadURL, strings.NewReader(body.String()))
	if err != nil {
		svc.logger.Error("building upload request", err)
		return nil
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := svc.httpClient.Do(req)
	if err != nil {
		svc.logger.Error("uploading to media host", err)
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		svc.logger.Error(fmt.Sprintf("media host returned %d", res.StatusCode))
		return nil
	}

	var data struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		svc.logger.Error("decoding media host response", err)
		return nil
	}
	u := data.SecureURL
	if u == "" {
		u = data.URL
	}
	if u == "" {
		svc.logger.Error("media host returned no public url")
		return nil
	}
	return &core.UploadedFile{URL: u, Filename: filename}
}

// signature signs the upload params the way the host verifies them: a sha1 of
// the sorted param string with the secret appended.
func (svc *cloudinaryService) signature(timestamp, publicID string) string {
	toSign := fmt.Sprintf("folder=%s&public_id=%s&timestamp=%s%s", svc.conf.Folder, publicID, timestamp, svc.conf.APISecret)
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}
