package telegram

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/gotd/td/tg"
)

const (
	partSize = 512 << 10
	// files above this must go through the big file methods
	bigFileThreshold = 10 << 20
)

// uploadFile sends path in parts and returns the handle to attach it with.
func uploadFile(ctx context.Context, api API, path string) (tg.InputFileClass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, fmt.Errorf("upload %s: empty file", filepath.Base(path))
	}

	fileID := rand.Int64()
	isBig := size > bigFileThreshold
	totalParts := int((size + partSize - 1) / partSize)

	buf := make([]byte, partSize)
	for part := 0; part < totalParts; part++ {
		n, err := io.ReadFull(f, buf)
		if err != nil && err != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read part %d: %w", part, err)
		}
		if err := uploadPart(ctx, api, fileID, part, totalParts, isBig, buf[:n]); err != nil {
			return nil, err
		}
	}

	name := filepath.Base(path)
	if isBig {
		return &tg.InputFileBig{ID: fileID, Parts: totalParts, Name: name}, nil
	}
	return &tg.InputFile{ID: fileID, Parts: totalParts, Name: name}, nil
}

func uploadPart(ctx context.Context, api API, fileID int64, part, totalParts int, isBig bool, data []byte) error {
	if isBig {
		_, err := api.UploadSaveBigFilePart(ctx, &tg.UploadSaveBigFilePartRequest{
			FileID:         fileID,
			FilePart:       part,
			FileTotalParts: totalParts,
			Bytes:          data,
		})
		if err != nil {
			return fmt.Errorf("upload big part %d failed: %w", part, err)
		}
		return nil
	}

	_, err := api.UploadSaveFilePart(ctx, &tg.UploadSaveFilePartRequest{
		FileID:   fileID,
		FilePart: part,
		Bytes:    data,
	})
	if err != nil {
		return fmt.Errorf("upload small part %d failed: %w", part, err)
	}
	return nil
}
