package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bryanwahyu/docsense/internal/domain/documents"
)

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	endpoint   string
}

var _ documents.ArchiveStore = (*Store)(nil)

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, endpoint: cli.EndpointURL().Host}, nil
}

// PutJSON implementasi ArchiveStore; returns the object URL.
func (s *Store) PutJSON(ctx context.Context, key string, payload []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return ObjectURL(s.endpoint, s.bucketName, key), nil
}

// ObjectURL URL publik (jika bucket public), kalau private harus generate presigned URL
func ObjectURL(host, bucket, key string) string {
	return fmt.Sprintf("http://%s/%s/%s", host, bucket, key)
}
