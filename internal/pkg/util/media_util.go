package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gosimple/slug"
)

var ErrNotAnImage = errors.New("file is not a decodable image")

// GetSafeContentType 通过文件头嗅探真实类型，读取后将 reader 复位
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", err
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// ObjectName 生成 <prefix><unix-ms>_<slug(文件名)><ext> 形式的对象 key
func ObjectName(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s%d_%s%s", prefix, now.UnixMilli(), base, ext)
}

// ProcessedImage 处理后的图片数据
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// NormalizeImage 解码图片，宽度超过 maxWidth 时等比缩小并重新编码
func NormalizeImage(reader io.Reader, contentType string, maxWidth int) (*ProcessedImage, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotAnImage
	}

	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return &ProcessedImage{Data: raw, ContentType: contentType, Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	format, outType := encodeFormat(contentType)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return &ProcessedImage{
		Data:        buf.Bytes(),
		ContentType: outType,
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
	}, nil
}

// encodeFormat 缩放后只输出 png 或 jpeg
func encodeFormat(contentType string) (imaging.Format, string) {
	if contentType == "image/png" {
		return imaging.PNG, "image/png"
	}
	return imaging.JPEG, "image/jpeg"
}
