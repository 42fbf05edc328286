package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voicetasks/internal/model"
)

// ClipFromFile describes an audio file recorded outside any recorder.
func ClipFromFile(path string) (*model.AudioClip, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, model.ErrEmptyCapture
	}

	return &model.AudioClip{
		Locator:   path,
		MimeType:  MimeForExt(filepath.Ext(path)),
		SizeBytes: info.Size(),
	}, nil
}

// MimeForExt maps an audio file extension to its MIME type.
func MimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".m4a":
		return "audio/m4a"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".aac":
		return "audio/aac"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	case ".caf":
		return "audio/x-caf"
	case ".aiff", ".aif":
		return "audio/aiff"
	default:
		return "application/octet-stream"
	}
}
