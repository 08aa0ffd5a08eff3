package drive

import (
	"context"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"

	"github.com/pavelc4/lukey-bot/internal/media"
)

const (
	listFields = "nextPageToken, files(id, name, mimeType, size)"
	pageSize   = 1000
)

// Folder is the metadata of the configured folder.
type Folder struct {
	ID       string
	Name     string
	MimeType string
}

// Lister reads the media entries of one Drive folder.
type Lister struct {
	svc      *drive.Service
	folderID string
}

func NewLister(svc *drive.Service, folderID string) *Lister {
	return &Lister{svc: svc, folderID: folderID}
}

// Query returns the Drive search expression for the supported media types
// directly inside folderID.
func Query(folderID string) string {
	types := make([]string, 0, len(media.SupportedMimeTypes))
	for _, m := range media.SupportedMimeTypes {
		types = append(types, fmt.Sprintf("mimeType = '%s'", m))
	}
	folderID = strings.ReplaceAll(folderID, "'", `\'`)
	return fmt.Sprintf("'%s' in parents and (%s) and trashed = false", folderID, strings.Join(types, " or "))
}

// List follows nextPageToken until the listing is exhausted.
func (l *Lister) List(ctx context.Context) ([]media.Entry, error) {
	var entries []media.Entry

	call := l.svc.Files.List().
		Q(Query(l.folderID)).
		Fields(listFields).
		PageSize(pageSize)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			mt := media.MimeType(f.MimeType)
			if !mt.Supported() {
				continue
			}
			size := f.Size
			if size <= 0 {
				size = -1
			}
			entries = append(entries, media.Entry{
				ID:          f.Id,
				DisplayName: f.Name,
				MimeType:    mt,
				Size:        size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", l.folderID, err)
	}
	return entries, nil
}

func (l *Lister) Folder(ctx context.Context) (Folder, error) {
	f, err := l.svc.Files.Get(l.folderID).Fields("id, name, mimeType").Context(ctx).Do()
	if err != nil {
		return Folder{}, fmt.Errorf("get folder %s: %w", l.folderID, err)
	}
	return Folder{ID: f.Id, Name: f.Name, MimeType: f.MimeType}, nil
}
