package drive

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/pavelc4/lukey-bot/config"
)

// NewService builds a read-only Drive client from either the credentials
// file or the inline JSON credentials. The file wins when both are set.
func NewService(ctx context.Context, cfg config.DriveConfig) (*drive.Service, error) {
	data, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}

func credentialsJSON(cfg config.DriveConfig) ([]byte, error) {
	if cfg.ServiceAccountFile != "" {
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
		return data, nil
	}
	if cfg.ServiceAccountJSON != "" {
		return []byte(cfg.ServiceAccountJSON), nil
	}
	return nil, fmt.Errorf("%w: drive credentials", config.ErrMissing)
}

// URLs builds the public direct-download and preview links for a file id.
type URLs struct {
	DownloadTemplate string
	PreviewTemplate  string
}

func URLsFromConfig(cfg config.DriveConfig) URLs {
	return URLs{
		DownloadTemplate: cfg.DownloadURLTemplate,
		PreviewTemplate:  cfg.PreviewURLTemplate,
	}
}

func (u URLs) Download(id string) string {
	return fmt.Sprintf(u.DownloadTemplate, id)
}

func (u URLs) Preview(id string) string {
	return fmt.Sprintf(u.PreviewTemplate, id)
}
