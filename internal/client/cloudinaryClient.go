package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"decantifume-api/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrImageStoreDisabled = errors.New("image storage is not configured")

// --- INTERFACE ---

type ImageStore interface {
	// Upload stores the image and returns its public https URL.
	Upload(ctx context.Context, name string, r io.Reader) (string, error)

	// Delete removes the image behind a URL previously returned by Upload.
	Delete(ctx context.Context, imageURL string) error
}

// --- IMPLEMENTATION ---

type cloudinaryClientImpl struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryClient returns a store that fails every call when no cloud
// name is configured, so the server can still start without image uploads.
func NewCloudinaryClient(cfg *config.Cloudinary) (ImageStore, error) {
	if cfg.CloudName == "" {
		return disabledImageStore{}, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}

	return &cloudinaryClientImpl{
		cld:    cld,
		folder: cfg.Folder,
	}, nil
}

// --- METHODS ---

func (c *cloudinaryClientImpl) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder: c.folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", name, res.Error.Message)
	}
	return res.SecureURL, nil
}

func (c *cloudinaryClientImpl) Delete(ctx context.Context, imageURL string) error {
	publicID, err := PublicIDFromURL(imageURL, c.folder)
	if err != nil {
		return err
	}

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("delete image %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("delete image %s: %s", publicID, res.Error.Message)
	}
	return nil
}

// PublicIDFromURL takes the last path segment of an image URL, drops its
// extension and prefixes the upload folder.
func PublicIDFromURL(imageURL, folder string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return "", fmt.Errorf("image url %q has no file name", imageURL)
	}
	id := strings.TrimSuffix(base, path.Ext(base))

	if folder == "" {
		return id, nil
	}
	return strings.TrimSuffix(folder, "/") + "/" + id, nil
}

type disabledImageStore struct{}

func (disabledImageStore) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrImageStoreDisabled
}

func (disabledImageStore) Delete(context.Context, string) error {
	return ErrImageStoreDisabled
}
