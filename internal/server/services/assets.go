package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/tentech-me/tentech-api/internal/logging"
	sc "github.com/tentech-me/tentech-api/internal/server/config"
)

// PresignValidity is the lifetime of presigned upload URLs.
const PresignValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// AssetService stores user uploads in the configured bucket.
type AssetService struct {
	config *sc.Config
	logger logging.Logger
	now    func() time.Time
}

func NewAssetService(cfg *sc.Config, logger logging.Logger) *AssetService {
	return &AssetService{config: cfg, logger: logger.With("module", "assets"), now: time.Now}
}

// RandomStorageKey returns a fresh key under the user's prefix.
func (s *AssetService) RandomStorageKey(userID int64) string {
	d := s.now()
	return fmt.Sprintf("users/%d/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// storageKey scopes a client supplied key to the user's prefix. Dot
// segments cannot escape it.
func (s *AssetService) storageKey(userID int64, key string) string {
	clean := strings.TrimLeft(path.Clean("/"+key), "/")
	if clean == "" {
		return s.RandomStorageKey(userID)
	}
	return fmt.Sprintf("users/%d/%s", userID, clean)
}

func (s *AssetService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload decodes a base64 attachment, optionally wrapped in a data URL,
// stores it and returns its public URL.
func (s *AssetService) Upload(ctx context.Context, userID int64, key, attachment string) (string, error) {
	data, err := decodeAttachment(attachment)
	if err != nil {
		return "", ErrCannotDecodeBase64
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCannotPutObject, err)
	}

	bucket := s.config.S3Bucket
	storageKey := s.storageKey(userID, key)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &storageKey,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		s.logger.Error(ctx, "put object failed", "key", storageKey, "error", err)
		return "", fmt.Errorf("%w: %v", ErrCannotPutObject, err)
	}

	s.logger.Info(ctx, "asset uploaded", "key", storageKey, "size", len(data))
	return strings.TrimRight(s.config.S3PublicBaseURL, "/") + "/" + storageKey, nil
}

// PresignPut returns a fresh key and a presigned PUT URL for it.
func (s *AssetService) PresignPut(ctx context.Context, userID int64) (string, string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := s.RandomStorageKey(userID)

	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignValidity))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

func decodeAttachment(attachment string) ([]byte, error) {
	if strings.HasPrefix(attachment, "data:") {
		i := strings.Index(attachment, ";base64,")
		if i < 0 {
			return nil, ErrCannotDecodeBase64
		}
		attachment = attachment[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(attachment)
}
