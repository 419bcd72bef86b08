// drive.go - Uploads scanned images to a Google Drive folder

package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// UploadedFile is a stored image and a link a human can open
type UploadedFile struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// DriveUploader stores images in one Drive folder
type DriveUploader struct {
	service  *drive.Service
	folderID string
}

// NewDriveUploader creates an uploader for folderID
func NewDriveUploader(ctx context.Context, folderID string, opts ...option.ClientOption) (*DriveUploader, error) {
	if folderID == "" {
		return nil, fmt.Errorf("drive folder ID is required")
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	return &DriveUploader{service: service, folderID: folderID}, nil
}

// Upload stores the image and returns its link. It returns nil on any failure and when
// the uploader is not configured; callers skip the link in that case.
func (d *DriveUploader) Upload(ctx context.Context, image ai.ImagePayload, fileName string) *UploadedFile {
	if d == nil {
		return nil
	}

	log := logger.WithFields(logrus.Fields{
		"file_name": fileName,
		"folder_id": d.folderID,
	})

	data, err := image.Bytes()
	if err != nil {
		log.WithError(err).Warn("Skipping Drive upload: image is not valid base64")
		return nil
	}

	file, err := d.service.Files.Create(&drive.File{
		Name:    fileName,
		Parents: []string{d.folderID},
	}).
		Media(bytes.NewReader(data), googleapi.ContentType(image.MIMEType)).
		Fields("id, webViewLink, webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		log.WithError(err).Error("Google Drive upload failed")
		return nil
	}

	link := file.WebViewLink
	if link == "" {
		link = file.WebContentLink
	}

	log.WithField("file_id", file.Id).Info("Image uploaded to Google Drive")
	return &UploadedFile{ID: file.Id, Link: link}
}
