// Package pipeline runs uploads through extraction and grammar checking on a
// pool of background workers and installs the result in the review store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/core/review"
	"github.com/Bernard-Otieno/ai-doc-assistant/internal/models"
)

// ErrStopped is returned by Submit once the workers have shut down.
var ErrStopped = errors.New("pipeline: stopped")

type Settings struct {
	QueueSize      int
	JobTimeout     time.Duration // whole job, storage to commit
	CheckTimeout   time.Duration // grammar call only
	MaxCharWarning int
}

// job is one upload waiting for a worker. ctx is cancelled when a newer
// upload of the same session begins.
type job struct {
	ctx        context.Context
	doc        models.Document
	generation uint64
}

// Processor owns the job queue. Submit registers an upload with the store
// and queues it; workers started by Start drain the queue.
type Processor struct {
	db        core.DbClient
	obj       core.ObjectClient
	extractor core.DocumentExtractor
	checker   core.GrammarChecker
	store     *review.Store
	settings  Settings
	logger    *slog.Logger

	mu   sync.RWMutex
	base context.Context // parent of every job context; replaced by Start
	jobs chan job
}

func NewProcessor(db core.DbClient, obj core.ObjectClient, extractor core.DocumentExtractor, checker core.GrammarChecker, store *review.Store, settings Settings, logger *slog.Logger) *Processor {
	if settings.QueueSize <= 0 {
		settings.QueueSize = 64
	}
	if settings.JobTimeout <= 0 {
		settings.JobTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		db: db, obj: obj, extractor: extractor, checker: checker, store: store,
		settings: settings,
		logger:   logger,
		base:     context.Background(),
		jobs:     make(chan job, settings.QueueSize),
	}
}

// Start runs numWorkers goroutines reading from the queue until ctx is done.
// Uploads submitted earlier stay queued until then.
func (p *Processor) Start(ctx context.Context, numWorkers int) {
	p.mu.Lock()
	p.base = ctx
	p.mu.Unlock()
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					p.logger.Debug("worker shutting down", "worker", w)
					return
				case j := <-p.jobs:
					p.logger.Info("processing document", "document_id", j.doc.ID, "session_id", j.doc.SessionID, "generation", j.generation, "worker", w)
					if err := p.processOne(ctx, j); err != nil {
						p.logger.Error("processing document failed", "document_id", j.doc.ID, "error", err)
					}
				}
			}
		}(w)
	}
}

// Submit starts a new review for the document's session and queues the
// document. It returns the generation the result will carry. If the queue
// stays full until ctx is done the session is put into the error state.
func (p *Processor) Submit(ctx context.Context, doc models.Document) (uint64, error) {
	p.mu.RLock()
	base := p.base
	p.mu.RUnlock()
	if base.Err() != nil {
		return 0, ErrStopped
	}
	jobCtx, gen := p.store.Begin(base, doc.SessionID, doc)

	select {
	case p.jobs <- job{ctx: jobCtx, doc: doc, generation: gen}:
		return gen, nil
	case <-ctx.Done():
		p.fail(doc, gen)
		return 0, fmt.Errorf("queue document: %w", ctx.Err())
	}
}

// processOne carries one upload from object storage to a committed review.
func (p *Processor) processOne(workerCtx context.Context, j job) error {
	ctx, cancel := context.WithTimeout(j.ctx, p.settings.JobTimeout)
	defer cancel()
	stop := context.AfterFunc(workerCtx, cancel)
	defer stop()

	doc := j.doc
	p.setStatus(doc.ID, models.DocumentProcessing)

	data, err := p.obj.GetFile(ctx, doc.StorageKey)
	if err != nil {
		p.fail(doc, j.generation)
		return fmt.Errorf("get object: %w", err)
	}

	extracted, err := p.extractor.Extract(ctx, data, doc.ContentType)
	if err != nil {
		p.fail(doc, j.generation)
		return fmt.Errorf("extract: %w", err)
	}

	checkCtx := ctx
	if p.settings.CheckTimeout > 0 {
		var cancelCheck context.CancelFunc
		checkCtx, cancelCheck = context.WithTimeout(ctx, p.settings.CheckTimeout)
		defer cancelCheck()
	}
	matches, checkErr := p.checker.Check(checkCtx, extracted.Text)
	if checkErr != nil {
		p.logger.Warn("grammar check failed", "document_id", doc.ID, "error", checkErr)
	}

	r := models.Review{
		Status:      models.StatusReady,
		DocumentID:  doc.ID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Text:        extracted.Text,
		Warning:     review.SizeWarning(extracted.Text, p.settings.MaxCharWarning),
		PreviewHTML: extracted.PreviewHTML,
		Segments:    review.Outcome(extracted.Text, matches, checkErr),
	}
	if checkErr != nil {
		r.Status = models.StatusError
	}

	if !p.store.Commit(doc.SessionID, j.generation, r) {
		p.logger.Info("discarding overtaken review", "document_id", doc.ID, "generation", j.generation)
		p.setStatus(doc.ID, models.DocumentSuperseded)
		return nil
	}
	if checkErr != nil {
		p.setStatus(doc.ID, models.DocumentFailed)
		return nil
	}
	p.setStatus(doc.ID, models.DocumentReady)
	return nil
}

// fail installs the error notice for generation, unless it was overtaken.
func (p *Processor) fail(doc models.Document, generation uint64) {
	committed := p.store.Commit(doc.SessionID, generation, models.Review{
		Status:      models.StatusError,
		DocumentID:  doc.ID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Segments:    []models.Segment{review.Notice(review.CheckFailedMessage)},
	})
	if committed {
		p.setStatus(doc.ID, models.DocumentFailed)
	} else {
		p.setStatus(doc.ID, models.DocumentSuperseded)
	}
}

func (p *Processor) setStatus(id, status string) {
	// The job context may already be cancelled; the record still needs updating.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.db.UpdateDocumentStatus(ctx, id, status); err != nil {
		p.logger.Warn("update document status", "document_id", id, "status", status, "error", err)
	}
}
