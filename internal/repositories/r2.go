package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rohits-web03/robotutor/internal/config"
)

// AvatarStorage issues presigned URLs for user avatar uploads against an
// R2 (S3-compatible) bucket. The server itself never proxies image bytes.
type AvatarStorage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewAvatarStorage(cfg config.R2Config) *AvatarStorage {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Println("Successfully initialized R2 avatar storage")

	return &AvatarStorage{
		client:        client,
		bucket:        cfg.BucketName,
		publicBaseURL: cfg.PublicBaseURL,
	}
}

// PresignAvatarUpload creates a presigned PUT URL for the given object key.
func (a *AvatarStorage) PresignAvatarUpload(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(a.client)
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// VerifyAvatarExists checks that the client actually uploaded the object
// before the user row is pointed at it.
func (a *AvatarStorage) VerifyAvatarExists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PublicURL returns the public-facing URL for a stored avatar key.
func (a *AvatarStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", a.publicBaseURL, key)
}
