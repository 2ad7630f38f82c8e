package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-shopscout-be/internal/config"
	"ai-shopscout-be/internal/dto"
	"ai-shopscout-be/pkg/advisor/report"
	"ai-shopscout-be/pkg/advisor/session"
	"ai-shopscout-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IReportService interface {
	Consume(ctx context.Context) error
}

// reportService drains save-report messages off the in-process bus and
// writes the rendered markdown to disk, keeping file IO off the request
// path.
type reportService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	sessions  *session.Store
	dir       string
	enabled   bool
}

func NewReportService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessions *session.Store,
	reportCfg config.ReportConfig,
) IReportService {
	return &reportService{
		pubSub:    pubSub,
		topicName: topicName,
		sessions:  sessions,
		dir:       reportCfg.Dir,
		enabled:   reportCfg.Enabled,
	}
}

func (rs *reportService) Consume(ctx context.Context) error {
	if !rs.enabled {
		log.Printf("[INFO] Report saving disabled (SAVE_REPORTS=false)")
		return nil
	}

	messages, err := rs.pubSub.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			rs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (rs *reportService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SaveReportMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	sess, found := rs.sessions.Load(ctx, payload.SessionID)
	if !found {
		log.Printf("[ERROR] Session not found for report: %s", payload.SessionID)
		msg.Ack() // Session expired? Ack.
		return
	}

	markdown := report.Render(sess)

	if err := os.MkdirAll(rs.dir, 0o755); err != nil {
		log.Printf("[ERROR] Failed to create reports dir %s: %v", rs.dir, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	path := filepath.Join(rs.dir, reportFileName(sess))
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		log.Printf("[ERROR] Failed to write report for session %s: %v", payload.SessionID, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Report saved: %s (session %s)", path, payload.SessionID)
	msg.Ack()
}

func reportFileName(sess *store.SessionState) string {
	category := "product"
	if sess.Requirement.Category != nil && *sess.Requirement.Category != "" {
		category = sanitizeFileToken(*sess.Requirement.Category)
	}
	return fmt.Sprintf("report_%s_%s.md", category, time.Now().Format("20060102_150405"))
}

func sanitizeFileToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
