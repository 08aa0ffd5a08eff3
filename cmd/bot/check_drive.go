package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pavelc4/lukey-bot/internal/drive"
	"github.com/pavelc4/lukey-bot/internal/media"
)

const previewEntries = 10

func newCheckDriveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-drive",
		Short: "Verify Drive credentials and list the media folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateDrive(); err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := drive.NewService(ctx, cfg.Drive)
			if err != nil {
				return err
			}
			lister := drive.NewLister(svc, cfg.Drive.FolderID)

			folder, err := lister.Folder(ctx)
			if err != nil {
				return fmt.Errorf("folder metadata: %w", err)
			}
			entries, err := lister.List(ctx)
			if err != nil {
				return fmt.Errorf("list folder: %w", err)
			}

			printSummary(cmd.OutOrStdout(), folder, entries)
			return nil
		},
	}
}

func printSummary(w io.Writer, folder drive.Folder, entries []media.Entry) {
	fmt.Fprintf(w, "Folder: %s (%s, %s)\n", folder.Name, folder.ID, folder.MimeType)
	fmt.Fprintf(w, "Media files: %d\n", len(entries))

	counts := make(map[media.MimeType]int)
	for _, e := range entries {
		counts[e.MimeType]++
	}
	types := make([]media.MimeType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Fprintf(w, "  %-10s %d\n", t, counts[t])
	}

	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(w, "First entries:")
	for i, e := range entries {
		if i == previewEntries {
			fmt.Fprintf(w, "  ... and %d more\n", len(entries)-previewEntries)
			break
		}
		size := "unknown size"
		if e.Size > 0 {
			size = fmt.Sprintf("%d bytes", e.Size)
		}
		fmt.Fprintf(w, "  - %s [%s] %s (%s)\n", e.DisplayName, e.MimeType, e.ID, size)
	}
}
