package services

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeKeys(t *testing.T) {
	now := time.Date(2024, 2, 7, 15, 4, 5, 0, time.UTC)

	key := ResumeKey(now, "My Resume (final).pdf")
	assert.Regexp(t, regexp.MustCompile(`^resumes/2024/02/07/[0-9a-f-]{36}_My_Resume_final_.pdf$`), key)

	qualified := QualifiedResumeKey(now.AddDate(0, 0, 1), key)
	assert.True(t, strings.HasPrefix(qualified, "qualified_resumes/2024/02/08/"), qualified)
	assert.Equal(t, filepath.Base(key), filepath.Base(qualified))
}

func TestSafeFileName(t *testing.T) {
	tests := map[string]string{
		"resume.pdf":         "resume.pdf",
		"../../etc/passwd":   "passwd",
		"CV – Jane Doe.pdf":  "CV_Jane_Doe.pdf",
		"":                   "resume.pdf",
		"///":                "resume.pdf",
		"résumé 2024-v1.PDF": "r_sum_2024-v1.PDF",
	}

	for in, want := range tests {
		assert.Equal(t, want, SafeFileName(in), in)
	}
}

func TestLocalStorageLifecycle(t *testing.T) {
	uploadDir := t.TempDir()
	storage := NewStorageService(uploadDir, t.TempDir())
	ctx := context.Background()

	require.NoError(t, storage.EnsureUploadDir())

	tempPath, n, err := storage.CreateTemp(strings.NewReader("%PDF-1.7 body"))
	require.NoError(t, err)
	defer os.Remove(tempPath)
	assert.EqualValues(t, 13, n)

	src, err := os.Open(tempPath)
	require.NoError(t, err)
	require.NoError(t, storage.SaveFile(ctx, "resumes/2024/01/01/a.pdf", src, n))
	src.Close()

	require.NoError(t, storage.CopyFile(ctx, "resumes/2024/01/01/a.pdf", "qualified_resumes/2024/01/02/a.pdf"))

	copied, err := os.ReadFile(filepath.Join(uploadDir, "qualified_resumes", "2024", "01", "02", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(copied))

	require.NoError(t, storage.DeleteFile(ctx, "resumes/2024/01/01/a.pdf"))
	_, err = os.Stat(filepath.Join(uploadDir, "resumes", "2024", "01", "01", "a.pdf"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.DeleteFile(ctx, "resumes/missing.pdf"))
	assert.Error(t, storage.CopyFile(ctx, "resumes/missing.pdf", "qualified_resumes/missing.pdf"))
}
