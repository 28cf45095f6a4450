// Package upload stores uploaded files below the public uploads directory.
// Incoming data is buffered to a temp file first; the temp file is always removed.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"mentorship-service/pkg/config"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrInvalidImage    = errors.New("file is not a valid image")
)

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true, ".csv": true, ".txt": true, ".md": true,
	".zip": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// Store writes files to Dir and returns URLs below PublicPath
type Store struct {
	dir        string
	publicPath string
	tmpDir     string
	imageSize  int
	maxBytes   int64
}

// New creates the upload directory if needed
func New(cfg config.UploadConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	size := cfg.ProfileImageSize
	if size <= 0 {
		size = 300
	}
	return &Store{
		dir:        cfg.Dir,
		publicPath: "/" + strings.Trim(cfg.PublicPath, "/"),
		tmpDir:     cfg.TmpDir,
		imageSize:  size,
		maxBytes:   cfg.MaxBytes,
	}, nil
}

// SaveFile stores a document under subdir and returns its public URL
func (s *Store) SaveFile(r io.Reader, originalName, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !documentExtensions[ext] {
		return "", ErrUnsupportedType
	}

	tmp, err := s.bufferToTemp(r)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	name := uuid.New().String() + ext
	dst, err := s.destination(subdir, name)
	if err != nil {
		return "", err
	}
	if err := moveFile(tmp, dst); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path.Join(s.publicPath, subdir, name), nil
}

// SaveImage resizes an image to a square of the configured size, re-encodes it as JPEG
// and returns its public URL
func (s *Store) SaveImage(r io.Reader, originalName, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedType
	}

	tmp, err := s.bufferToTemp(r)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	img, err := imaging.Open(tmp, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrInvalidImage
	}
	img = imaging.Fill(img, s.imageSize, s.imageSize, imaging.Center, imaging.Lanczos)

	name := uuid.New().String() + ".jpg"
	dst, err := s.destination(subdir, name)
	if err != nil {
		return "", err
	}
	if err := imaging.Save(img, dst, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return path.Join(s.publicPath, subdir, name), nil
}

// Remove deletes a file previously returned by SaveFile or SaveImage.
// URLs outside the public path are ignored.
func (s *Store) Remove(publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, s.publicPath+"/")
	if !ok || rel == "" {
		return nil
	}
	full := filepath.Join(s.dir, filepath.FromSlash(path.Clean("/" + rel)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MaxBytes returns the per-file upload limit
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

func (s *Store) bufferToTemp(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.tmpDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to buffer upload: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		os.Remove(tmp.Name())
		return "", ErrTooLarge
	}
	return tmp.Name(), nil
}

func (s *Store) destination(subdir, name string) (string, error) {
	dir := filepath.Join(s.dir, filepath.FromSlash(path.Clean("/"+subdir)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// moveFile renames src to dst, copying when they live on different devices
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
