package cloudinary

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/google/uuid"
)

// Client uploads listing photos and brand logos.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error)
	Destroy(ctx context.Context, publicID string) error
}

const (
	ImageWidth = 1200
	ThumbWidth = 320
)

// Eager transformation generated at upload time for gallery thumbnails.
const thumbEager = "q_auto,f_auto,w_320,h_240,c_fill"

var eagerAsyncFalse = false

// BuildOptimizedImageURL returns a delivery URL with auto quality and format at the given width.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, width, publicID)
}

// NewPublicID returns a short random public id such as "car_3f2a9c0d1e4b5a67".
func NewPublicID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// FullPublicID is the public ID Cloudinary assigns to an upload of publicID into folder.
func FullPublicID(folder, publicID string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return publicID
	}
	return folder + "/" + publicID
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      thumbEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", "", err
	}
	if result.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	url = result.SecureURL
	if len(result.Eager) > 0 {
		thumbnailURL = result.Eager[0].SecureURL
	}
	if thumbnailURL == "" {
		thumbnailURL = BuildOptimizedImageURL(c.cloudName, result.PublicID, ThumbWidth)
	}
	return url, thumbnailURL, nil
}

func (c *clientImpl) Destroy(ctx context.Context, publicID string) error {
	res, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	return nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cloudName: cloudName, uploader: up}, nil
}
