package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/linxGnu/goseaweedfs"

	"go-zettelkasten/internal/config"
)

// StorageProvider represents the type of storage being used
type StorageProvider string

const (
	Local     StorageProvider = "local"
	SeaweedFS StorageProvider = "seaweedfs"
	S3        StorageProvider = "s3"
)

// Storage is a key-addressed blob store. Keys are generated by the caller
// (the tree engine uses "<author>/<uuid>") and stored on the File row.
type Storage interface {
	Upload(reader io.Reader, key string) error
	UploadBytes(data []byte, key string) error
	Download(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// LocalStorage keeps blobs as plain files under a root directory.
type LocalStorage struct {
	root string
}

func (l *LocalStorage) Upload(reader io.Reader, key string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read blob: %v", err)
	}
	return l.UploadBytes(data, key)
}

func (l *LocalStorage) UploadBytes(data []byte, key string) error {
	path := l.blobPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob: %v", err)
	}
	return nil
}

func (l *LocalStorage) Download(key string) (io.ReadCloser, error) {
	f, err := os.Open(l.blobPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %v", err)
	}
	return f, nil
}

func (l *LocalStorage) Delete(key string) error {
	if err := os.Remove(l.blobPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %v", err)
	}
	return nil
}

func (l *LocalStorage) blobPath(key string) string {
	// Keys are slash separated; never let one escape the root.
	return filepath.Join(l.root, filepath.Clean("/"+key))
}

// S3Storage implements the Storage interface for AWS S3
type S3Storage struct {
	client *s3.Client
	bucket string
}

func (s *S3Storage) Upload(reader io.Reader, key string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read blob: %v", err)
	}
	return s.UploadBytes(data, key)
}

func (s *S3Storage) UploadBytes(data []byte, key string) error {
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Body:   bytes.NewReader(data),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob to S3: %v", err)
	}
	return nil
}

func (s *S3Storage) Download(key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download blob from S3: %v", err)
	}
	return result.Body, nil
}

func (s *S3Storage) Delete(key string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob from S3: %v", err)
	}
	return nil
}

// SeaweedFSStorage implements the Storage interface for SeaweedFS
type SeaweedFSStorage struct {
	client *goseaweedfs.Filer
}

func (s *SeaweedFSStorage) Upload(reader io.Reader, key string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read blob: %v", err)
	}
	return s.UploadBytes(data, key)
}

func (s *SeaweedFSStorage) UploadBytes(data []byte, key string) error {
	if _, err := s.client.Upload(bytes.NewReader(data), int64(len(data)), key, "default", ""); err != nil {
		return fmt.Errorf("failed to upload blob to SeaweedFS: %v", err)
	}
	return nil
}

func (s *SeaweedFSStorage) Download(key string) (io.ReadCloser, error) {
	data, _, err := s.client.Get(key, url.Values{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob from SeaweedFS: %v", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *SeaweedFSStorage) Delete(key string) error {
	if err := s.client.Delete(key, url.Values{}); err != nil {
		return fmt.Errorf("failed to delete blob from SeaweedFS: %v", err)
	}
	return nil
}

var (
	provider Storage
	once     sync.Once
)

// GetProvider returns the storage provider built from the given config.
// The first call wins; subsequent calls reuse the same instance.
func GetProvider(cfg *config.Config) (Storage, error) {
	var err error
	once.Do(func() {
		provider, err = FromConfig(cfg)
	})
	if provider == nil && err == nil {
		err = fmt.Errorf("storage provider not initialized")
	}
	return provider, err
}

// FromConfig creates a storage provider instance from the configuration.
func FromConfig(cfg *config.Config) (Storage, error) {
	switch StorageProvider(strings.ToLower(cfg.Storage.Provider)) {
	case Local:
		return NewLocalStorage(cfg.Storage.Path)
	case S3:
		return NewS3Storage(map[string]string{
			"region":            cfg.Storage.S3.Region,
			"access_key_id":     cfg.Storage.S3.AccessKeyID,
			"secret_access_key": cfg.Storage.S3.SecretAccessKey,
			"bucket":            cfg.Storage.S3.BucketName,
			"endpoint":          cfg.Storage.S3.Endpoint,
			"force_path_style":  fmt.Sprintf("%t", cfg.Storage.S3.ForcePathStyle),
		})
	case SeaweedFS:
		return NewSeaweedFSStorage(map[string]string{
			"master_url": cfg.Storage.SeaweedFS.MasterURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}

// NewLocalStorage creates a filesystem-backed storage instance
func NewLocalStorage(root string) (Storage, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %v", err)
	}
	return &LocalStorage{root: root}, nil
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(config map[string]string) (Storage, error) {
	cfg := aws.Config{
		Region: config["region"],
		Credentials: credentials.NewStaticCredentialsProvider(
			config["access_key_id"],
			config["secret_access_key"],
			"",
		),
	}

	if endpoint := config["endpoint"]; endpoint != "" {
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				SigningRegion:     config["region"],
				HostnameImmutable: true,
			}, nil
		})
		cfg.EndpointResolverWithOptions = customResolver
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = config["force_path_style"] == "true"
	})

	return &S3Storage{
		client: client,
		bucket: config["bucket"],
	}, nil
}

// NewSeaweedFSStorage creates a new SeaweedFS storage instance
func NewSeaweedFSStorage(config map[string]string) (Storage, error) {
	client, err := goseaweedfs.NewFiler(config["master_url"], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SeaweedFS client: %v", err)
	}

	return &SeaweedFSStorage{client: client}, nil
}
