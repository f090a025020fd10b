package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/jmoreau/nutritrack/config"
)

// MaxAvatarBytes is the upload size ceiling for profile pictures.
const MaxAvatarBytes = 2 << 20

// DefaultSignedURLTTL is how long avatar links stay valid.
const DefaultSignedURLTTL = time.Hour

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// StorageService handles avatar uploads and signed URL generation against
// a private S3 bucket.
type StorageService struct {
	s3 *config.S3Config
}

// NewStorageService creates a new StorageService instance
func NewStorageService(s3Config *config.S3Config) *StorageService {
	return &StorageService{s3: s3Config}
}

// UploadAvatar stores the image under a fresh key scoped to the user and
// returns that key. Oversized payloads and non-image content types are
// rejected before any network call.
func (s *StorageService) UploadAvatar(ctx context.Context, userID uuid.UUID, body io.Reader, size int64, contentType string) (string, error) {
	if size > MaxAvatarBytes {
		return "", ErrPayloadTooLarge
	}
	ext, ok := avatarExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedMedia
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.New(), ext)
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.s3.BucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return key, nil
}

// AvatarURL returns a signed GET URL for the stored key.
func (s *StorageService) AvatarURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrNotFound
	}
	url, err := s.s3.GeneratePresignedURL(ctx, key, DefaultSignedURLTTL)
	if err != nil {
		if isMissingObject(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to sign avatar URL: %w", err)
	}
	return url, nil
}

// DeleteObject removes a stored object. Best effort: a missing key is not
// an error, the end state is the same.
func (s *StorageService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil && !isMissingObject(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func isMissingObject(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound")
}
