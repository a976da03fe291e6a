package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tastebook/backend/config"
)

// ImageStore accepts an uploaded image payload and returns a stable reference
// URL. Recipes persist only the reference.
type ImageStore interface {
	StoreBase64(ctx context.Context, payload string) (string, error)
}

// ImageService stores recipe images in S3.
type ImageService struct {
	s3Config *config.S3Config
	logger   *zap.Logger
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config, logger *zap.Logger) *ImageService {
	return &ImageService{s3Config: s3Config, logger: logger}
}

// StoreBase64 decodes a base64 image payload (optionally a data URI like
// "data:image/png;base64,...") and uploads it, returning the public URL.
func (s *ImageService) StoreBase64(ctx context.Context, payload string) (string, error) {
	contentType := "image/png"
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("malformed data URI")
		}
		meta := strings.TrimPrefix(parts[0], "data:")
		if i := strings.Index(meta, ";"); i >= 0 {
			contentType = meta[:i]
		}
		payload = parts[1]
	}

	imageData, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	ext := "png"
	if i := strings.Index(contentType, "/"); i >= 0 {
		ext = contentType[i+1:]
	}
	fileName := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)

	return s.upload(ctx, imageData, fileName, contentType)
}

// upload puts image data into S3 and returns the public URL.
func (s *ImageService) upload(ctx context.Context, imageData []byte, fileName, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	s.logger.Info("image uploaded", zap.String("url", publicURL))

	return publicURL, nil
}
