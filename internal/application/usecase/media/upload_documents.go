package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/khoahotran/skillpath/internal/application/service"
	"github.com/khoahotran/skillpath/pkg/apperror"
	"github.com/khoahotran/skillpath/pkg/idgen"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/khoahotran/skillpath/pkg/metrics"
	"go.uber.org/zap"
)

type Category string

const (
	CategoryResumes      Category = "resumes"
	CategoryCertificates Category = "certificates"

	folderRoot = "skillpath"
	// FallbackURLBase stands in for storage when no uploader is configured.
	FallbackURLBase = "https://fake-url.com/"
)

func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case CategoryResumes, CategoryCertificates:
		return c, true
	}
	return "", false
}

type UploadDocumentsUseCase struct {
	uploader service.Uploader
	logger   logger.Logger
}

// NewUploadDocumentsUseCase accepts a nil uploader; uploads then return
// placeholder URLs.
func NewUploadDocumentsUseCase(u service.Uploader, log logger.Logger) *UploadDocumentsUseCase {
	return &UploadDocumentsUseCase{uploader: u, logger: log}
}

type File struct {
	Name    string
	Content io.Reader
}

type UploadDocumentsInput struct {
	Category Category
	Files    []File
}

type UploadDocumentsOutput struct {
	URLs []string
}

// Execute uploads files in order. A resume upload keeps only the first file.
func (uc *UploadDocumentsUseCase) Execute(ctx context.Context, input UploadDocumentsInput) (*UploadDocumentsOutput, error) {
	if _, ok := ParseCategory(string(input.Category)); !ok {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown upload category %q", input.Category), nil)
	}
	files := input.Files
	if len(files) == 0 {
		return nil, apperror.NewInvalidInput("at least one file is required", nil)
	}
	if input.Category == CategoryResumes {
		files = files[:1]
	}

	folder := path.Join(folderRoot, string(input.Category))
	urls := make([]string, 0, len(files))
	for _, f := range files {
		if uc.uploader == nil {
			metrics.Fallback(metrics.ComponentUpload)
			uc.logger.Warn("Uploader not configured, returning placeholder URL", zap.String("file", f.Name))
			urls = append(urls, FallbackURLBase+url.PathEscape(f.Name))
			continue
		}

		u, err := uc.uploader.Upload(ctx, f.Content, folder, idgen.New())
		metrics.ObserveCall("uploader", err)
		if err != nil {
			return nil, apperror.NewInternal("failed to upload document", err)
		}
		uc.logger.Info("Document uploaded", zap.String("folder", folder), zap.String("file", f.Name))
		urls = append(urls, u)
	}
	return &UploadDocumentsOutput{URLs: urls}, nil
}
