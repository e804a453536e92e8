package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"vero/internal/platform/config"
)

// Drive lists PDFs in one Google Drive folder and downloads each to a
// temp file for processing. Cleanup removes the temp file.
type Drive struct {
	svc      *drive.Service
	folderID string
}

func NewDrive(ctx context.Context, cfg config.DriveConfig) (*Drive, error) {
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("drive folder id is required")
	}
	opts := []option.ClientOption{option.WithScopes(drive.DriveReadonlyScope)}
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Drive{svc: svc, folderID: cfg.FolderID}, nil
}

func (d *Drive) Name() string { return "drive:" + d.folderID }

func (d *Drive) List(ctx context.Context) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = 'application/pdf' and trashed = false", d.folderID)
	var out []File
	pageToken := ""
	for {
		call := d.svc.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name)").
			PageSize(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder %s: %w", d.folderID, err)
		}
		for _, f := range resp.Files {
			out = append(out, File{ID: f.Id, Name: f.Name})
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (d *Drive) Fetch(ctx context.Context, file File) (string, func(), error) {
	resp, err := d.svc.Files.Get(file.ID).Context(ctx).Download()
	if err != nil {
		return "", nil, fmt.Errorf("download %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp("", "vero-drive-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("write %s: %w", file.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

var _ Source = (*Drive)(nil)
