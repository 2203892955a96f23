package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/repo/cache"
	"premier-open-group/services/portal/internal/repo/persistent"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	MaxImageSize      = 5 << 20
	MaxFilesPerBatch  = 20
	uploadConcurrency = 4
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image exceeds 5 MB")
	ErrEmptyFile       = errors.New("file is empty")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStorage is the part of pkg/s3.Client uploads need.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	PublicURL(key string) string
}

type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// ValidateImage checks the declared type and size of one file.
func ValidateImage(name, contentType string, size int64) error {
	if _, ok := imageExtensions[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}

type UploadUseCase interface {
	// UploadBatch validates and stores every file. Invalid files are
	// rejected, failed uploads are reported, and neither stops the others.
	UploadBatch(ctx context.Context, userID, bucket string, files []ImageFile) (*entity.BatchResult, error)
	// CommitGalleryBatch inserts all items as gallery rows in one write.
	// Nothing is written if any item is missing a title.
	CommitGalleryBatch(ctx context.Context, items []entity.GalleryItem, settings *entity.GallerySettings) ([]content.Record, error)
}

type uploadUseCase struct {
	storage ObjectStorage
	repo    persistent.ContentRepository
	cache   cache.ContentCache
	logger  *logger.Logger
	now     func() time.Time
	suffix  func() string
}

func NewUploadUseCase(storage ObjectStorage, repo persistent.ContentRepository, contentCache cache.ContentCache, log *logger.Logger) UploadUseCase {
	return &uploadUseCase{
		storage: storage,
		repo:    repo,
		cache:   contentCache,
		logger:  log,
		now:     time.Now,
		suffix:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:10] },
	}
}

func knownBucket(bucket string) bool {
	for _, b := range content.Buckets() {
		if b == bucket {
			return true
		}
	}
	return false
}

// objectKey namespaces by bucket and uploader and keeps the extension.
func (uc *uploadUseCase) objectKey(bucket, userID string, file ImageFile) string {
	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext == "" {
		ext = imageExtensions[strings.ToLower(file.ContentType)]
	}
	return fmt.Sprintf("%s/%s/%d-%s%s", bucket, userID, uc.now().UnixMilli(), uc.suffix(), ext)
}

func (uc *uploadUseCase) UploadBatch(ctx context.Context, userID, bucket string, files []ImageFile) (*entity.BatchResult, error) {
	if !knownBucket(bucket) {
		return nil, invalid("bucket", "unknown bucket "+bucket)
	}
	if len(files) == 0 {
		return nil, invalid("files", "at least one file is required")
	}
	if len(files) > MaxFilesPerBatch {
		return nil, invalid("files", fmt.Sprintf("at most %d files per batch", MaxFilesPerBatch))
	}

	type outcome struct {
		uploaded *entity.UploadedImage
		rejected *entity.RejectedImage
		failed   *entity.RejectedImage
	}
	outcomes := make([]outcome, len(files))

	g := new(errgroup.Group)
	g.SetLimit(uploadConcurrency)
	for i, file := range files {
		if err := ValidateImage(file.Name, file.ContentType, file.Size); err != nil {
			outcomes[i].rejected = &entity.RejectedImage{Name: file.Name, Reason: err.Error()}
			continue
		}

		key := uc.objectKey(bucket, userID, file)
		g.Go(func() error {
			if _, err := uc.storage.Upload(ctx, key, file.Body, file.ContentType); err != nil {
				uc.logger.Error("Failed to upload %s: %v", file.Name, err)
				outcomes[i].failed = &entity.RejectedImage{Name: file.Name, Reason: err.Error()}
				return nil
			}
			outcomes[i].uploaded = &entity.UploadedImage{Name: file.Name, Key: key, URL: uc.storage.PublicURL(key)}
			return nil
		})
	}
	_ = g.Wait()

	result := &entity.BatchResult{
		Uploaded: []entity.UploadedImage{},
		Rejected: []entity.RejectedImage{},
		Failed:   []entity.RejectedImage{},
	}
	for _, o := range outcomes {
		switch {
		case o.uploaded != nil:
			result.Uploaded = append(result.Uploaded, *o.uploaded)
		case o.rejected != nil:
			result.Rejected = append(result.Rejected, *o.rejected)
		case o.failed != nil:
			result.Failed = append(result.Failed, *o.failed)
		}
	}

	uc.logger.Info("Upload batch to %s by %s: %d uploaded, %d rejected, %d failed",
		bucket, userID, len(result.Uploaded), len(result.Rejected), len(result.Failed))
	return result, nil
}

func (uc *uploadUseCase) CommitGalleryBatch(ctx context.Context, items []entity.GalleryItem, settings *entity.GallerySettings) ([]content.Record, error) {
	if len(items) == 0 {
		return nil, invalid("items", "at least one item is required")
	}

	staged := make([]entity.GalleryItem, len(items))
	copy(staged, items)
	if settings != nil {
		for i := range staged {
			staged[i].Category = settings.Category
			staged[i].Published = settings.Published
		}
	}

	missing := &ValidationError{Fields: map[string]string{}}
	for i := range staged {
		staged[i].Title = strings.TrimSpace(staged[i].Title)
		if staged[i].Title == "" {
			missing.Fields[fmt.Sprintf("items[%d].title", i)] = "All items must have a title"
		}
	}
	if len(missing.Fields) > 0 {
		return nil, missing
	}

	schema := content.MustLookup(content.Gallery)
	records := make([]content.Record, len(staged))
	invalidItems := &ValidationError{Fields: map[string]string{}}
	for i, item := range staged {
		record, err := schema.Normalize(map[string]interface{}{
			"title":       item.Title,
			"image_url":   item.ImageURL,
			"description": item.Description,
			"category":    item.Category,
			"published":   item.Published,
		}, false)
		if err != nil {
			var fields content.FieldErrors
			if errors.As(err, &fields) {
				for field, msg := range fields {
					invalidItems.Fields[fmt.Sprintf("items[%d].%s", i, field)] = msg
				}
				continue
			}
			return nil, err
		}
		records[i] = record
	}
	if len(invalidItems.Fields) > 0 {
		return nil, invalidItems
	}

	created, err := uc.repo.CreateBatch(ctx, schema, records)
	if err != nil {
		return nil, fmt.Errorf("insert gallery batch: %w", err)
	}
	if err := uc.cache.Invalidate(ctx, content.Gallery); err != nil {
		uc.logger.Error("Failed to invalidate gallery cache: %v", err)
	}
	uc.logger.Info("Created %d gallery items", len(created))
	return created, nil
}
