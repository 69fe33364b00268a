package cloudinary

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/utafrali/ContactsGo/internal/storage"
)

// avatarTransformation crops uploads to the square size served in profiles.
const avatarTransformation = "c_fill,h_250,w_250"

// Storage implements storage.Storage backed by Cloudinary.
type Storage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// New creates a Cloudinary-backed storage client.
func New(cloudName, apiKey, apiSecret, folder string) (*Storage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}

	return &Storage{cld: cld, folder: folder}, nil
}

// Upload sends the file to Cloudinary under the configured folder. The key
// becomes the public ID, so re-uploading the same key overwrites the asset.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	result, err := s.cld.Upload.Upload(ctx, input.Data, uploader.UploadParams{
		PublicID:       input.Key,
		Folder:         s.folder,
		Overwrite:      api.Bool(true),
		ResourceType:   "image",
		Transformation: avatarTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to cloudinary: %w", err)
	}

	return &storage.UploadResult{
		Key: result.PublicID,
		URL: result.SecureURL,
	}, nil
}

// Delete removes the asset with the given public ID.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return fmt.Errorf("destroy cloudinary asset: %w", err)
	}
	return nil
}

// GetURL returns the delivery URL for the given public ID.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	img, err := s.cld.Image(key)
	if err != nil {
		return "", fmt.Errorf("build cloudinary url: %w", err)
	}

	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("render cloudinary url: %w", err)
	}

	return url, nil
}
