package util

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeSlug(t *testing.T) {
	assert.Equal(t, "hello-world", MakeSlug("Hello, World!"))
	assert.Equal(t, "post", MakeSlug("!!!"))
}

func TestNextFreeSlug(t *testing.T) {
	assert.Equal(t, "news", NextFreeSlug("news", nil))
	assert.Equal(t, "news-2", NextFreeSlug("news", []string{"news"}))
	assert.Equal(t, "news-3", NextFreeSlug("news", []string{"news", "news-2"}))
	// 删除后留下的空位优先复用
	assert.Equal(t, "news-2", NextFreeSlug("news", []string{"news", "news-3"}))
	// base 空闲时直接使用
	assert.Equal(t, "news", NextFreeSlug("news", []string{"news-2"}))
	// 非数字后缀不影响
	assert.Equal(t, "news-2", NextFreeSlug("news", []string{"news", "news-today"}))
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="x()">Hi <b>there</b></p><script>alert(1)</script>`)
	assert.Equal(t, "<p>Hi <b>there</b></p>", out)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Title body text", PlainText("<h1>Title</h1>\n<p>body <i>text</i></p>"))
}

func TestPagination(t *testing.T) {
	limit, offset := Pagination(0, 0, 20, 100)
	assert.Equal(t, int64(20), limit)
	assert.Equal(t, int64(0), offset)

	limit, offset = Pagination(3, 500, 20, 100)
	assert.Equal(t, int64(100), limit)
	assert.Equal(t, int64(200), offset)
}

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	assert.Equal(t, "blog-images/1700000000000_my-cover.png", ObjectName("blog-images/", "My Cover.PNG", now))
	assert.Equal(t, "videos/u1/1700000000000_file.mp4", ObjectName("videos/u1/", "???.mp4", now))
}

func newPNG(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeImage(t *testing.T) {
	t.Run("downscale wide image", func(t *testing.T) {
		out, err := NormalizeImage(bytes.NewReader(newPNG(t, 400, 200)), "image/png", 100)
		require.NoError(t, err)
		assert.Equal(t, 100, out.Width)
		assert.Equal(t, 50, out.Height)
		assert.Equal(t, "image/png", out.ContentType)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out.Data))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
	})

	t.Run("keep small image", func(t *testing.T) {
		raw := newPNG(t, 50, 20)
		out, err := NormalizeImage(bytes.NewReader(raw), "image/png", 100)
		require.NoError(t, err)
		assert.Equal(t, raw, out.Data)
	})

	t.Run("reject garbage", func(t *testing.T) {
		_, err := NormalizeImage(strings.NewReader("definitely not an image"), "image/png", 100)
		assert.ErrorIs(t, err, ErrNotAnImage)
	})
}

func TestGetSafeContentType(t *testing.T) {
	reader := bytes.NewReader(newPNG(t, 2, 2))
	ct, err := GetSafeContentType(reader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	pos, err := reader.Seek(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestRetryRead(t *testing.T) {
	calls := 0
	res, err := RetryRead(context.Background(), 10*time.Millisecond, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 2, calls)
}

func TestRetryReadStopsOnOtherErrors(t *testing.T) {
	calls := 0
	_, err := RetryRead(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		calls++
		return 0, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestValidateDTO(t *testing.T) {
	type args struct {
		UserID string `validate:"required,max=36"`
		Name   string `validate:"omitempty,max=4"`
	}
	assert.NoError(t, ValidateDTO(&args{UserID: "u1"}))

	err := ValidateDTO(&args{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldInvalid)
	assert.Contains(t, err.Error(), "UserID")

	assert.ErrorIs(t, ValidateDTO(&args{UserID: "u1", Name: "too long"}), ErrFieldInvalid)
}
