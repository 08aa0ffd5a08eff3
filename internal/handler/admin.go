package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pavelc4/lukey-bot/internal/chat"
	"github.com/pavelc4/lukey-bot/internal/stats"
)

type AdminHandler struct {
	sender   chat.Sender
	counters *stats.Counters
	ownerID  string
	tempDir  string
	sysInfo  func(tempDir string) *stats.SystemInfo
}

func NewAdminHandler(sender chat.Sender, counters *stats.Counters, ownerID, tempDir string) *AdminHandler {
	return &AdminHandler{
		sender:   sender,
		counters: counters,
		ownerID:  ownerID,
		tempDir:  tempDir,
		sysInfo:  stats.GetSystemInfo,
	}
}

// HandleStats replies with host and post figures. Other users are ignored.
func (h *AdminHandler) HandleStats(ctx context.Context, cmd chat.Command) error {
	if h.ownerID == "" || cmd.UserID != h.ownerID {
		return nil
	}

	sys := h.sysInfo(h.tempDir)
	snap := h.counters.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "OS Info\n"+
		"├ System : %s\n"+
		"├ Host : %s\n"+
		"└ Uptime : %s\n\n",
		sys.OS, sys.Hostname, sys.SystemUptime.Round(time.Second))
	fmt.Fprintf(&b, "CPU\n"+
		"├ Cores : %d\n"+
		"└ Usage : %.2f%%\n\n",
		sys.CPUCores, sys.CPUUsage)
	fmt.Fprintf(&b, "Memory\n"+
		"├ Used : %s / %s (%.1f%%)\n"+
		"└ Free : %s\n\n",
		stats.FormatBytes(sys.MemUsed), stats.FormatBytes(sys.MemTotal), sys.MemPercent,
		stats.FormatBytes(sys.MemAvailable))
	fmt.Fprintf(&b, "Temp Disk\n"+
		"└ Used : %s / %s (%.1f%%)\n\n",
		stats.FormatBytes(sys.DiskUsed), stats.FormatBytes(sys.DiskTotal), sys.DiskPercent)
	fmt.Fprintf(&b, "Bot Process\n"+
		"├ Uptime : %s\n"+
		"├ PID : %d\n"+
		"├ Mem : %s\n"+
		"├ Routines : %d\n"+
		"└ Go Ver : %s\n\n",
		snap.Uptime.Round(time.Second), sys.ProcessPID, stats.FormatBytes(sys.ProcessMem),
		sys.Goroutines, sys.GoVersion)

	fmt.Fprintf(&b, "Posts\n"+
		"├ Total : %d\n"+
		"├ Re-encoded : %d\n"+
		"└ Uploaded : %s\n",
		snap.Total, snap.Transcoded, stats.FormatBytes(uint64(snap.BytesSent)))

	outcomes := make([]string, 0, len(snap.Outcomes))
	for k := range snap.Outcomes {
		outcomes = append(outcomes, k)
	}
	sort.Strings(outcomes)
	for _, k := range outcomes {
		fmt.Fprintf(&b, "  • %s : %d\n", k, snap.Outcomes[k])
	}

	_, err := h.sender.Send(ctx, cmd.ChannelID, chat.Message{
		Embed: &chat.Embed{
			Title:       "System Status",
			Description: "```\n" + b.String() + "```",
			Color:       0x2ECC71,
		},
	})
	return err
}
