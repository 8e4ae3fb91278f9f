package handler

import (
	"Airena/internal/api/dto"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

// openFormFile 取出 multipart 中的文件，字段缺失时返回 nil
func openFormFile(c *gin.Context, field string) (*dto.UploadFile, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return openHeader(header)
}

func openHeader(header *multipart.FileHeader) (*dto.UploadFile, func(), error) {
	reader, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &dto.UploadFile{
		Name:   header.Filename,
		Size:   header.Size,
		Reader: reader,
	}, func() { _ = reader.Close() }, nil
}
