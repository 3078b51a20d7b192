package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/khoahotran/skillpath/pkg/apperror"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	folders []string
	bodies  []string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, folder, publicID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(file)
	f.folders = append(f.folders, folder)
	f.bodies = append(f.bodies, string(b))
	return "https://cdn.example.com/" + folder + "/" + publicID, nil
}

func files(names ...string) []File {
	out := make([]File, len(names))
	for i, n := range names {
		out[i] = File{Name: n, Content: strings.NewReader("content of " + n)}
	}
	return out
}

func TestUploadDocuments_Certificates(t *testing.T) {
	up := &fakeUploader{}
	uc := NewUploadDocumentsUseCase(up, logger.NewNop())

	out, err := uc.Execute(t.Context(), UploadDocumentsInput{Category: CategoryCertificates, Files: files("a.pdf", "b.pdf")})
	require.NoError(t, err)
	require.Len(t, out.URLs, 2)
	assert.Equal(t, []string{"skillpath/certificates", "skillpath/certificates"}, up.folders)
	assert.Equal(t, []string{"content of a.pdf", "content of b.pdf"}, up.bodies)
	assert.True(t, strings.HasPrefix(out.URLs[0], "https://cdn.example.com/skillpath/certificates/"))
}

func TestUploadDocuments_ResumeKeepsFirst(t *testing.T) {
	up := &fakeUploader{}
	uc := NewUploadDocumentsUseCase(up, logger.NewNop())

	out, err := uc.Execute(t.Context(), UploadDocumentsInput{Category: CategoryResumes, Files: files("cv.pdf", "old.pdf")})
	require.NoError(t, err)
	assert.Len(t, out.URLs, 1)
	assert.Equal(t, []string{"skillpath/resumes"}, up.folders)
}

func TestUploadDocuments_FallbackWithoutUploader(t *testing.T) {
	uc := NewUploadDocumentsUseCase(nil, logger.NewNop())

	out, err := uc.Execute(t.Context(), UploadDocumentsInput{Category: CategoryCertificates, Files: files("AWS cert.pdf")})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://fake-url.com/AWS%20cert.pdf"}, out.URLs)
}

func TestUploadDocuments_Errors(t *testing.T) {
	uc := NewUploadDocumentsUseCase(&fakeUploader{err: errors.New("quota")}, logger.NewNop())

	_, err := uc.Execute(t.Context(), UploadDocumentsInput{Category: CategoryResumes, Files: files("cv.pdf")})
	assert.ErrorIs(t, err, apperror.ErrInternal)

	_, err = uc.Execute(t.Context(), UploadDocumentsInput{Category: "photos", Files: files("x.png")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = uc.Execute(t.Context(), UploadDocumentsInput{Category: CategoryResumes})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
