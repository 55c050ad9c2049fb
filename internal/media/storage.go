package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/c50bossio/6fb-booking-sub003/internal/config"
)

// Storage publica objetos no bucket de mídia. Funciona com S3 da AWS
// ou com endpoints compatíveis (MinIO, R2) via S3_ENDPOINT.
type Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewStorage(cfg *config.Config) *Storage {
	if cfg.S3Bucket == "" || cfg.S3AccessKey == "" {
		return nil
	}

	opts := s3.Options{
		Region:      cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}

	return &Storage{
		client:    s3.New(opts),
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
	}
}

// UploadLogo grava o logo já normalizado e devolve a URL pública.
func (s *Storage) UploadLogo(ctx context.Context, shopID uint, data []byte) (string, error) {
	key := fmt.Sprintf("logos/%d.webp", shopID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/webp"),
	})
	if err != nil {
		return "", fmt.Errorf("falha ao enviar logo: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
