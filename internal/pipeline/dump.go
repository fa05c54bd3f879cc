package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/psouza/gleandesk/internal/glean"
)

// dumpPayload writes the outbound chat request to the dump directory, for
// inspecting exactly what a ticket looked like when it reached Glean.
func (p *Pipeline) dumpPayload(logger *slog.Logger, ev Event, req glean.ChatRequest) {
	if p.opts.DumpDir == "" {
		return
	}
	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		logger.Warn("marshaling payload dump failed", "error", err)
		return
	}
	p.dump(logger, fmt.Sprintf("payload_%s_ticket_%s.json", timestamp(), ev.TicketID), body)
}

// dumpAnswer writes the final rendered answer to the dump directory.
func (p *Pipeline) dumpAnswer(logger *slog.Logger, ev Event, final string) {
	if p.opts.DumpDir == "" {
		return
	}
	p.dump(logger, fmt.Sprintf("answer_ticket_%s.txt", ev.TicketID), []byte(final))
}

func (p *Pipeline) dump(logger *slog.Logger, name string, body []byte) {
	if err := os.MkdirAll(p.opts.DumpDir, 0o755); err != nil {
		logger.Warn("creating dump directory failed", "error", err)
		return
	}
	path := filepath.Join(p.opts.DumpDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		logger.Warn("writing dump file failed", "path", path, "error", err)
		return
	}
	logger.Debug("dump written", "path", path)
}

func timestamp() string {
	return time.Now().Format("2006-01-02_15-04-05")
}
