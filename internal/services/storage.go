package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	resumePrefix          = "resumes"
	qualifiedResumePrefix = "qualified_resumes"
)

type StorageService interface {
	SaveFile(ctx context.Context, key string, r io.Reader, size int64) error
	CopyFile(ctx context.Context, srcKey, dstKey string) error
	DeleteFile(ctx context.Context, key string) error
	// CreateTemp writes r to a transient local file; the caller removes it.
	CreateTemp(r io.Reader) (string, int64, error)
	EnsureUploadDir() error
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ResumeKey returns resumes/YYYY/MM/DD/<uuid>_<name>.
func ResumeKey(now time.Time, fileName string) string {
	return datedKey(resumePrefix, now, fmt.Sprintf("%s_%s", uuid.New().String(), SafeFileName(fileName)))
}

// QualifiedResumeKey keeps the base name of the session's stored resume.
func QualifiedResumeKey(now time.Time, resumeKey string) string {
	return datedKey(qualifiedResumePrefix, now, path.Base(resumeKey))
}

func datedKey(prefix string, now time.Time, name string) string {
	return path.Join(prefix, now.Format("2006/01/02"), name)
}

func SafeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(filepath.Base(name), "_")
	if name == "" || name == "." || name == "_" {
		return "resume.pdf"
	}
	return name
}

type tempFiles struct {
	tempPath string
}

func (t tempFiles) CreateTemp(r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(t.tempPath, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create temp directory: %w", err)
	}

	f, err := os.CreateTemp(t.tempPath, "resume-*.pdf")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("failed to write temp file: %w", err)
	}

	return f.Name(), n, nil
}

type storageService struct {
	tempFiles
	uploadPath string
}

func NewStorageService(uploadPath, tempPath string) StorageService {
	return &storageService{
		tempFiles:  tempFiles{tempPath: tempPath},
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) filePath(key string) string {
	return filepath.Join(s.uploadPath, filepath.FromSlash(key))
}

func (s *storageService) SaveFile(ctx context.Context, key string, r io.Reader, size int64) error {
	filePath := s.filePath(key)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

func (s *storageService) CopyFile(ctx context.Context, srcKey, dstKey string) error {
	src, err := os.Open(s.filePath(srcKey))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcKey, err)
	}
	defer src.Close()

	return s.SaveFile(ctx, dstKey, src, 0)
}

func (s *storageService) DeleteFile(ctx context.Context, key string) error {
	if err := os.Remove(s.filePath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

type s3StorageService struct {
	tempFiles
	client *s3.Client
	bucket string
}

// NewS3StorageService stores keys in an S3 bucket. A custom endpoint
// switches to path-style addressing for S3-compatible servers.
func NewS3StorageService(awsCfg aws.Config, bucket, endpoint, tempPath string) StorageService {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3StorageService{
		tempFiles: tempFiles{tempPath: tempPath},
		client:    client,
		bucket:    bucket,
	}
}

func (s *s3StorageService) EnsureUploadDir() error {
	return nil
}

func (s *s3StorageService) SaveFile(ctx context.Context, key string, r io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String("application/pdf"),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *s3StorageService) CopyFile(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", srcKey, err)
	}
	return nil
}

func (s *s3StorageService) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
