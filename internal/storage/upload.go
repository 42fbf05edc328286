package storage

import (
	"fmt"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"voicetasks/internal/capture"
	"voicetasks/internal/model"
)

// SaveUpload writes an uploaded audio file into dir and describes it as a clip.
func SaveUpload(file *multipart.FileHeader, dir string) (*model.AudioClip, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	name := fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename))
	dst := filepath.Join(dir, name)
	if err := saveMultipartFile(file, dst); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	var size int64
	if info, err := os.Stat(dst); err == nil {
		size = info.Size()
	}

	return &model.AudioClip{
		Locator:   dst,
		MimeType:  uploadMime(file),
		SizeBytes: size,
	}, nil
}

func uploadMime(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt
		}
	}
	return capture.MimeForExt(filepath.Ext(file.Filename))
}

/* helper */
func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.ReadFrom(src)
	return err
}
