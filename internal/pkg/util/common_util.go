package util

// PtrInt 用于将 int 转换为 *int
func PtrInt(i int) *int {
	return &i
}

// PtrInt64 用于将 int64 转换为 *int64
func PtrInt64(i int64) *int64 {
	return &i
}

// PtrBool 用于将 bool 转换为 *bool
func PtrBool(b bool) *bool {
	return &b
}

// PtrStr 用于将 string 转换为 *string，空串返回 nil
func PtrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Pagination 将页码换算为 limit/offset，非法值回落为默认值
func Pagination(page, pageSize, defaultSize, maxSize int) (limit, offset int64) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return int64(pageSize), int64((page - 1) * pageSize)
}
