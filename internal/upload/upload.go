// Package upload wraps the image-storage collaborator. Uploads for one
// request are independent tasks: every outcome is collected, successes are
// kept and failures are dropped, so a creation proceeds with however many
// images made it (including zero).
package upload

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"licxo/internal/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog/log"
)

const uploadTimeout = 60 * time.Second

type Uploader interface {
	Upload(ctx context.Context, file multipart.File, filename string) (models.Image, error)
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds an uploader from a cloudinary:// URL.
func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}

	return &Cloudinary{cld: cld, folder: `hotels`}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file multipart.File, filename string) (models.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	result, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:           c.folder,
		FilenameOverride: filename,
	})
	if err != nil {
		return models.Image{}, err
	}

	return models.Image{
		PublicId:  result.PublicID,
		URL:       result.SecureURL,
		SecureURL: result.SecureURL,
	}, nil
}

// UploadAll pushes every file independently and returns the images that
// uploaded successfully, in input order. A nil uploader or empty file set
// yields no images and no error.
func UploadAll(ctx context.Context, up Uploader, files []*multipart.FileHeader) []models.Image {
	if up == nil || len(files) == 0 {
		return nil
	}

	results := make([]*models.Image, len(files))

	var wg sync.WaitGroup
	for i, header := range files {
		wg.Add(1)
		go func(i int, header *multipart.FileHeader) {
			defer wg.Done()

			file, err := header.Open()
			if err != nil {
				log.Error().Err(err).Str("file", header.Filename).Msg("Failed to open uploaded file")
				return
			}
			defer file.Close()

			image, err := up.Upload(ctx, file, header.Filename)
			if err != nil {
				log.Error().Err(err).Str("file", header.Filename).Msg("Image upload failed, skipping")
				return
			}

			results[i] = &image
		}(i, header)
	}
	wg.Wait()

	var images []models.Image
	for _, image := range results {
		if image != nil {
			images = append(images, *image)
		}
	}

	return images
}
