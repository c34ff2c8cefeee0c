package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"lumo/internal/config"
)

// MinIOStore is the hierarchical backend: one bucket, one folder prefix
// per container, so an organizer's photos land under their event folder
// the way a Drive-style destination organizes them. The remote handle is
// "bucket/folder/filename".
type MinIOStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinIOStore{client: cli, bucket: cfg.Bucket}, nil
}

func (m *MinIOStore) EnsureContainer(ctx context.Context, name string) (Container, error) {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", err
		}
	}
	// Folders are implicit in object keys; the prefix is the handle.
	return Container(strings.Trim(name, "/")), nil
}

func (m *MinIOStore) Put(ctx context.Context, c Container, localPath, filename, mimeType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	key := string(c) + "/" + filename
	_, err = m.client.PutObject(ctx, m.bucket, key, f, st.Size(), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return "", err
	}
	return m.bucket + "/" + key, nil
}

func (m *MinIOStore) Get(ctx context.Context, handle, destPath string) error {
	bucket, key, err := splitHandle(handle)
	if err != nil {
		return err
	}

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	return writeToFile(destPath, obj)
}

func (m *MinIOStore) Delete(ctx context.Context, handle string) error {
	bucket, key, err := splitHandle(handle)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func splitHandle(handle string) (bucket, key string, err error) {
	parts := strings.SplitN(handle, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("malformed remote handle")
	}
	return parts[0], parts[1], nil
}

func writeToFile(destPath string, r io.Reader) error {
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
	}
	return err
}
