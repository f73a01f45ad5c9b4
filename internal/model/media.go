package model

import (
	"io"

	"twii/internal/apperror"
)

const (
	MaxImageSizeBytes  = 5 * 1024 * 1024
	MaxUploadFormBytes = MaxImageSizeBytes + 1024*1024 // room for the other form fields
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	JPEGExt            = ".jpg"
	ImageCacheControl  = "public, max-age=31536000"
	JPEGQuality        = 85
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeGIF:  ".gif",
	ContentTypeWebP: ".webp",
}

var (
	ErrFileTooLarge     = apperror.New(apperror.BadRequest, "Image exceeds 5MB limit")
	ErrInvalidImageType = apperror.New(apperror.BadRequest, "Unsupported image type. Allowed: jpeg, png, gif, webp")
)

// UploadResult is the stored object location. Key is kept for later deletes.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// ImageExt returns the file extension for an allowed content type.
func ImageExt(contentType string) string {
	return allowedImageTypes[contentType]
}

// ImageUpload is an image received from a client, independent of the transport.
type ImageUpload struct {
	Data        io.Reader
	Size        int64
	ContentType string
	Filename    string
}
