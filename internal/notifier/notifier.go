// Package notifier announces mined blocks.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/models"
)

const (
	shortHashLen = 16
	maxTitleLen  = 100
)

// Notifier announces a newly mined block
type Notifier interface {
	Notify(ctx context.Context, block *models.Block) error
}

// FormatBlock renders a block as a plain-text announcement
func FormatBlock(block *models.Block) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[BLOCK #%d]\n", block.BlockNumber)
	fmt.Fprintf(&sb, "TIME: %s UTC\n", block.Timestamp.UTC().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&sb, "NEWS: %d\n", len(block.News))
	fmt.Fprintf(&sb, "HASH: %s\n", shortHash(block.BlockHash))
	if prev := block.PreviousHash(); prev != "" {
		fmt.Fprintf(&sb, "PREV: %s\n", shortHash(prev))
	}

	for i, n := range block.News {
		fmt.Fprintf(&sb, "\n%d. %s - %s\n", i+1, n.Source, models.TruncateRunes(n.Title, maxTitleLen))
		if n.Link != "" {
			fmt.Fprintf(&sb, "   > %s\n", n.Link)
		}
		fmt.Fprintf(&sb, "   iHash: %s\n", shortHash(n.IHash))
	}

	return sb.String()
}

func shortHash(h string) string {
	if len(h) <= shortHashLen {
		return h
	}
	return h[:shortHashLen] + "..."
}

// LogNotifier writes announcements to the log
type LogNotifier struct {
	log *logrus.Entry
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	return &LogNotifier{log: logger.OrDefault(log, "notifier")}
}

// Notify logs the formatted block
func (n *LogNotifier) Notify(_ context.Context, block *models.Block) error {
	n.log.WithField("block", block.BlockNumber).Info("\n" + FormatBlock(block))
	return nil
}

// Multi fans a block out to every notifier. All notifiers run; their
// errors are joined.
type Multi []Notifier

// Notify calls every notifier in order
func (m Multi) Notify(ctx context.Context, block *models.Block) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, block); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
