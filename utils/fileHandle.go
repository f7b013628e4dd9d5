package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"lms/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SaveUploadedFile stores the upload under config.UploadDir/subDir with a random name
// and returns its public path ("/uploads/<subDir>/<name>").
func SaveUploadedFile(file *multipart.FileHeader, subDir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	destDir := filepath.Join(config.AppConfig.UploadDir, subDir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	newFilename := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return GetFileURL(path.Join(subDir, newFilename)), nil
}

// FormFile saves the multipart field if present. An absent field yields "".
func FormFile(c *fiber.Ctx, field, subDir string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return "", nil
	}
	return SaveUploadedFile(fh, subDir)
}

// RemoveUploadedFile deletes a file previously returned by SaveUploadedFile.
func RemoveUploadedFile(publicPath string) {
	if !strings.HasPrefix(publicPath, "/uploads/") {
		return
	}
	rel := strings.TrimPrefix(publicPath, "/uploads/")
	_ = os.Remove(filepath.Join(config.AppConfig.UploadDir, filepath.FromSlash(rel)))
}

func GetFileURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	return "/uploads/" + filePath
}
