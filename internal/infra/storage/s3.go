package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // MinIO e afins
	AccessKey string
	SecretKey string
	PublicURL string // base pública dos arquivos; vazio usa o endpoint do bucket
}

// ObjectAPI é o subconjunto do *s3.Client usado aqui.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ProofStorage guarda comprovativos de pagamento num bucket S3.
type ProofStorage struct {
	client ObjectAPI
	bucket string
	base   string
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewS3ProofStorage(ctx context.Context, cfg S3Config, logger logrus.FieldLogger) (*ProofStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET é obrigatório")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar config AWS: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	logger.WithFields(logrus.Fields{
		"bucket":   cfg.Bucket,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
	}).Info("🪣 S3 configurado para comprovativos")

	return NewProofStorage(s3.NewFromConfig(awsCfg, s3Opts...), cfg, logger), nil
}

func NewProofStorage(client ObjectAPI, cfg S3Config, logger logrus.FieldLogger) *ProofStorage {
	return &ProofStorage{
		client: client,
		bucket: cfg.Bucket,
		base:   publicBase(cfg),
		logger: logger,
		now:    time.Now,
	}
}

func publicBase(cfg S3Config) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

var extensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// UploadProof grava o arquivo e devolve a URL pública.
func (s *ProofStorage) UploadProof(ctx context.Context, file io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("comprovativos/%s/%s%s", s.now().UTC().Format("2006/01"), uuid.New().String(), extensions[contentType])

	// o SDK precisa de um corpo com Seek para assinar o payload
	body, ok := file.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("erro ao ler comprovativo: %w", err)
		}
		body = bytes.NewReader(data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("erro ao enviar comprovativo: %w", err)
	}

	url := s.base + "/" + key
	s.logger.WithField("key", key).Debug("comprovativo enviado")
	return url, nil
}

// DeleteProof remove o objeto de uma URL devolvida por UploadProof.
func (s *ProofStorage) DeleteProof(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.base+"/")
	if !ok || key == "" {
		return fmt.Errorf("url fora do bucket de comprovativos: %s", url)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("erro ao remover comprovativo: %w", err)
	}
	return nil
}
