package file

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/mocks"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/config"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

type memStore struct {
	blobs map[string][]byte
}

func (m *memStore) Save(ctx context.Context, path string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	m.blobs[path] = data
	return nil
}

func (m *memStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := m.blobs[path]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(ctx context.Context, path string) error {
	delete(m.blobs, path)
	return nil
}

type fixture struct {
	store   *memStore
	files   map[string]*domain.File
	saveErr error
	service *Service
}

func newFixture() *fixture {
	f := &fixture{
		store: &memStore{blobs: map[string][]byte{}},
		files: map[string]*domain.File{},
	}
	repo := &mocks.MockFileRepository{
		SaveFunc: func(ctx context.Context, file *domain.File) error {
			if f.saveErr != nil {
				return f.saveErr
			}
			f.files[file.ID] = file
			return nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.File, error) {
			return f.files[id], nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			delete(f.files, id)
			return nil
		},
	}
	f.service = NewService(repo, f.store, config.StorageConfig{
		MaxUploadBytes: 1 << 20,
		AllowedTypes:   []string{"image/jpeg", "image/png", "application/pdf"},
		ThumbnailSize:  64,
	}, newTestLogger())
	return f
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 20, G: 160, B: 90, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestUpload_ImageWithThumbnail(t *testing.T) {
	f := newFixture()
	data := pngBytes(t, 400, 200)

	file, err := f.service.Upload(context.Background(), ports.UploadInput{
		OwnerID:     "user-1",
		FileName:    "station.png",
		ContentType: "application/octet-stream",
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
		Thumbnail:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, int64(len(data)), file.Size)
	assert.True(t, strings.HasSuffix(file.Path, ".png"))
	require.NotNil(t, file.ThumbnailPath)
	assert.Contains(t, f.store.blobs, *file.ThumbnailPath)

	meta, rc, err := f.service.Open(context.Background(), file.ID, true)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/jpeg", meta.ContentType)

	thumb, err := imaging.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 32, thumb.Bounds().Dy())
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.Upload(ctx, ports.UploadInput{OwnerID: "u", Content: strings.NewReader("just some text")})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "text is not an allowed type")

	_, err = f.service.Upload(ctx, ports.UploadInput{OwnerID: "u", Content: strings.NewReader("")})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.service.Upload(ctx, ports.UploadInput{OwnerID: "u"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	big := bytes.Repeat([]byte{0}, (1<<20)+1)
	_, err = f.service.Upload(ctx, ports.UploadInput{OwnerID: "u", Content: bytes.NewReader(big)})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err), "oversized content is rejected even without a declared size")

	assert.Empty(t, f.store.blobs)
}

func TestUpload_RepoFailureRemovesBlobs(t *testing.T) {
	f := newFixture()
	f.saveErr = errors.New("db down")
	data := pngBytes(t, 10, 10)

	_, err := f.service.Upload(context.Background(), ports.UploadInput{OwnerID: "u", Content: bytes.NewReader(data), Thumbnail: true})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Empty(t, f.store.blobs)
}

func TestOpenAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	data := pngBytes(t, 10, 10)

	file, err := f.service.Upload(ctx, ports.UploadInput{OwnerID: "u", Content: bytes.NewReader(data)})
	require.NoError(t, err)

	_, _, err = f.service.Open(ctx, file.ID, true)
	assert.ErrorIs(t, err, domain.ErrFileNotFound, "no thumbnail was requested")

	_, rc, err := f.service.Open(ctx, file.ID, false)
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, data, got)

	require.NoError(t, f.service.Delete(ctx, file.ID))
	assert.Empty(t, f.store.blobs)
	assert.ErrorIs(t, f.service.Delete(ctx, file.ID), domain.ErrFileNotFound)
}
