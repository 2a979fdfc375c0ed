package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/trek-api/internal/application/contract"
	"github.com/jhoicas/trek-api/pkg/config"
)

const pdfContentType = "application/pdf"

var _ contract.Store = (*MinIOStore)(nil)

// MinIOStore guarda documentos como objetos en un bucket S3 compatible.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore construye el cliente. El bucket se valida con EnsureBucket al arrancar.
func NewMinIOStore(cfg config.StorageConfig) (*MinIOStore, error) {
	if cfg.MinIOEndpoint == "" {
		return nil, fmt.Errorf("storage: MINIO_ENDPOINT no configurado")
	}
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: cliente MinIO: %w", err)
	}
	return &MinIOStore{client: client, bucket: cfg.MinIOBucket}, nil
}

// EnsureBucket crea el bucket si no existe.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: verificar bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("storage: crear bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Put sube el documento como application/pdf.
func (s *MinIOStore) Put(ctx context.Context, key string, content []byte) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, k, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: pdfContentType})
	if err != nil {
		return fmt.Errorf("storage: subir %s: %w", k, err)
	}
	return nil
}

// Get descarga el documento. ErrNotFound si el objeto no existe.
func (s *MinIOStore) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, k, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: obtener %s: %w", k, err)
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
		}
		return nil, fmt.Errorf("storage: leer %s: %w", k, err)
	}
	return b, nil
}
