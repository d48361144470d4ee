package service

import (
	"path/filepath"
	"strings"

	"pdfvault/shared/constants"
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".html": "text/html",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".zip":  "application/zip",
}

// ContentType maps a file name's extension to a content type. Unknown
// extensions are served as generic binary data.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if contentType, ok := contentTypes[ext]; ok {
		return contentType
	}

	return constants.FallbackContentType
}
