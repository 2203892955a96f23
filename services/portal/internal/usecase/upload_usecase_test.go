package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/repo/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUploadUseCase() (*uploadUseCase, *MockObjectStorage, *MockContentRepository) {
	storage := new(MockObjectStorage)
	repo := new(MockContentRepository)
	uc := NewUploadUseCase(storage, repo, cache.NewContentCache(nil, 0), logger.New()).(*uploadUseCase)
	uc.now = func() time.Time { return time.UnixMilli(1717236000000) }
	uc.suffix = func() string { return "abc123" }
	return uc, storage, repo
}

func image(name, contentType string, size int64) ImageFile {
	return ImageFile{Name: name, ContentType: contentType, Size: size, Body: bytes.NewReader([]byte("img"))}
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		want        error
	}{
		{"jpeg", "image/jpeg", 1024, nil},
		{"png", "image/png", MaxImageSize, nil},
		{"webp", "image/webp", 10, nil},
		{"gif upper case", "IMAGE/GIF", 10, nil},
		{"svg", "image/svg+xml", 10, ErrUnsupportedType},
		{"pdf", "application/pdf", 10, ErrUnsupportedType},
		{"too large", "image/jpeg", MaxImageSize + 1, ErrTooLarge},
		{"empty", "image/png", 0, ErrEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.name, tt.contentType, tt.size)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUploadBatch_OversizedFileIsRejectedOthersUploaded(t *testing.T) {
	uc, storage, _ := newUploadUseCase()
	ctx := context.Background()

	storage.On("Upload", ctx, mock.AnythingOfType("string"), mock.Anything, mock.AnythingOfType("string")).
		Return("", nil).Twice()

	files := []ImageFile{
		image("one.jpg", "image/jpeg", 1024),
		image("two.png", "image/png", MaxImageSize+1),
		image("three.webp", "image/webp", 2048),
	}
	result, err := uc.UploadBatch(ctx, "admin-1", "gallery", files)

	require.NoError(t, err)
	require.Len(t, result.Uploaded, 2)
	assert.Equal(t, "one.jpg", result.Uploaded[0].Name)
	assert.Equal(t, "three.webp", result.Uploaded[1].Name)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "two.png", result.Rejected[0].Name)
	assert.Equal(t, ErrTooLarge.Error(), result.Rejected[0].Reason)
	assert.Empty(t, result.Failed)
	storage.AssertNumberOfCalls(t, "Upload", 2)
}

func TestUploadBatch_ObjectKeys(t *testing.T) {
	uc, storage, _ := newUploadUseCase()
	ctx := context.Background()

	storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", nil)

	result, err := uc.UploadBatch(ctx, "admin-1", "member-photos", []ImageFile{
		image("Portrait.JPG", "image/jpeg", 10),
		image("noext", "image/png", 10),
	})

	require.NoError(t, err)
	require.Len(t, result.Uploaded, 2)
	assert.Equal(t, "member-photos/admin-1/1717236000000-abc123.jpg", result.Uploaded[0].Key)
	assert.Equal(t, "member-photos/admin-1/1717236000000-abc123.png", result.Uploaded[1].Key)
	assert.Equal(t, "https://cdn.example/member-photos/admin-1/1717236000000-abc123.jpg", result.Uploaded[0].URL)
}

func TestUploadBatch_DefaultSuffixIsRandom(t *testing.T) {
	uc := NewUploadUseCase(new(MockObjectStorage), new(MockContentRepository), cache.NewContentCache(nil, 0), logger.New()).(*uploadUseCase)

	key := uc.objectKey("gallery", "u-1", image("a.gif", "image/gif", 1))

	assert.Regexp(t, regexp.MustCompile(`^gallery/u-1/\d+-[0-9a-f]{10}\.gif$`), key)
	assert.NotEqual(t, key, uc.objectKey("gallery", "u-1", image("a.gif", "image/gif", 1)))
}

func TestUploadBatch_FailedUploadDoesNotStopOthers(t *testing.T) {
	uc, storage, _ := newUploadUseCase()
	ctx := context.Background()

	storage.On("Upload", ctx, mock.Anything, mock.Anything, "image/png").Return("", errors.New("connection reset")).Once()
	storage.On("Upload", ctx, mock.Anything, mock.Anything, "image/jpeg").Return("", nil).Once()

	result, err := uc.UploadBatch(ctx, "admin-1", "gallery", []ImageFile{
		image("a.png", "image/png", 10),
		image("b.jpg", "image/jpeg", 10),
	})

	require.NoError(t, err)
	require.Len(t, result.Uploaded, 1)
	assert.Equal(t, "b.jpg", result.Uploaded[0].Name)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "a.png", result.Failed[0].Name)
	assert.Contains(t, result.Failed[0].Reason, "connection reset")
}

func TestUploadBatch_Limits(t *testing.T) {
	uc, storage, _ := newUploadUseCase()
	ctx := context.Background()

	files := make([]ImageFile, MaxFilesPerBatch+1)
	for i := range files {
		files[i] = image(fmt.Sprintf("%d.jpg", i), "image/jpeg", 10)
	}
	_, err := uc.UploadBatch(ctx, "admin-1", "gallery", files)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = uc.UploadBatch(ctx, "admin-1", "gallery", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = uc.UploadBatch(ctx, "admin-1", "../etc", files[:1])
	assert.ErrorIs(t, err, ErrValidation)

	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCommitGalleryBatch_EmptyTitleMakesNoInsert(t *testing.T) {
	uc, _, repo := newUploadUseCase()

	_, err := uc.CommitGalleryBatch(context.Background(), []entity.GalleryItem{
		{ImageURL: "https://cdn.example/gallery/a.jpg", Title: "   "},
		{ImageURL: "https://cdn.example/gallery/b.jpg", Title: "Campfire"},
	}, nil)

	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "All items must have a title", verr.Fields["items[0].title"])
	repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommitGalleryBatch_SingleInsertInOrder(t *testing.T) {
	uc, _, repo := newUploadUseCase()
	ctx := context.Background()
	gallery := content.MustLookup(content.Gallery)

	repo.On("CreateBatch", ctx, gallery, mock.MatchedBy(func(records []content.Record) bool {
		return len(records) == 2 &&
			records[0].String("title") == "Campfire" &&
			records[1].String("title") == "Hike" &&
			records[0].String("category") == "Camps" &&
			records[1]["published"] == false
	})).Return([]content.Record{{"id": "g-1"}, {"id": "g-2"}}, nil).Once()

	created, err := uc.CommitGalleryBatch(ctx, []entity.GalleryItem{
		{ImageURL: "https://cdn.example/gallery/a.jpg", Title: " Campfire ", Category: "ignored", Published: true},
		{ImageURL: "https://cdn.example/gallery/b.jpg", Title: "Hike"},
	}, &entity.GallerySettings{Category: "Camps", Published: false})

	require.NoError(t, err)
	assert.Len(t, created, 2)
	repo.AssertNumberOfCalls(t, "CreateBatch", 1)
	repo.AssertExpectations(t)
}

func TestCommitGalleryBatch_InvalidImageURL(t *testing.T) {
	uc, _, repo := newUploadUseCase()

	_, err := uc.CommitGalleryBatch(context.Background(), []entity.GalleryItem{
		{ImageURL: "not a url", Title: "Campfire"},
	}, nil)

	require.ErrorIs(t, err, ErrValidation)
	assert.True(t, strings.Contains(err.Error(), "items[0].image_url"))
	repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommitGalleryBatch_StoreFailure(t *testing.T) {
	uc, _, repo := newUploadUseCase()
	ctx := context.Background()

	repo.On("CreateBatch", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("insert failed")).Once()

	_, err := uc.CommitGalleryBatch(ctx, []entity.GalleryItem{
		{ImageURL: "https://cdn.example/gallery/a.jpg", Title: "Campfire"},
	}, nil)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}
