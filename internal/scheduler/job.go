package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/models"
	"github.com/thanhnp/bicle/internal/node"
	"github.com/thanhnp/bicle/internal/notifier"
)

// Miner runs one mining pass over a candidate source
type Miner interface {
	MineFromSource(ctx context.Context, src node.CandidateSource, perFeed, maxNews int) (*models.Block, bool, error)
}

// Job is one mine-and-announce pass
type Job struct {
	miner    Miner
	source   node.CandidateSource
	notifier notifier.Notifier
	perFeed  int
	maxNews  int
	timeout  time.Duration
	log      *logrus.Entry
}

// NewJob creates a Job. notifier may be nil.
func NewJob(miner Miner, source node.CandidateSource, n notifier.Notifier, perFeed, maxNews int, log *logrus.Entry) *Job {
	return &Job{
		miner:    miner,
		source:   source,
		notifier: n,
		perFeed:  perFeed,
		maxNews:  maxNews,
		timeout:  2 * time.Minute,
		log:      logger.OrDefault(log, "miner"),
	}
}

// Run mines once with the job's defaults
func (j *Job) Run(ctx context.Context) (*models.Block, bool, error) {
	return j.RunWith(ctx, j.perFeed, j.maxNews)
}

// RunWith mines once. A mined block is announced; announcement failures
// are logged and do not fail the pass.
func (j *Job) RunWith(ctx context.Context, perFeed, maxNews int) (*models.Block, bool, error) {
	block, ok, err := j.miner.MineFromSource(ctx, j.source, perFeed, maxNews)
	if err != nil {
		j.log.Errorf("Mining pass failed: %v", err)
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	if j.notifier != nil {
		nctx, cancel := context.WithTimeout(ctx, j.timeout)
		defer cancel()
		if err := j.notifier.Notify(nctx, block); err != nil {
			j.log.WithField("block", block.BlockNumber).Warnf("Failed to announce block: %v", err)
		}
	}
	return block, true, nil
}
