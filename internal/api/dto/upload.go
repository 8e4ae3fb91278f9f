package dto

import "io"

// UploadFile 从 multipart 表单中取出的文件
type UploadFile struct {
	Name   string
	Size   int64
	Reader io.ReadSeeker
}
