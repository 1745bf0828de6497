package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/avirshuk-alt/Contract-Management/model"
	"github.com/avirshuk-alt/Contract-Management/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// MaxStoredTextLen bounds the extracted text persisted per version.
const MaxStoredTextLen = 100_000

// ExtractionPipeline runs the extraction state machine for document
// versions: fetch bytes, extract text, run the heuristic scans, persist.
type ExtractionPipeline struct {
	store     Store
	storage   Storage
	extractor TextExtractor

	// one writer per version; concurrent runs on the same version serialize
	locksMu sync.Mutex
	locks   map[string]*versionLock
}

// versionLock is refcounted so the map entry can be dropped once the last
// runner for that version releases it.
type versionLock struct {
	mu   sync.Mutex
	refs int
}

func NewExtractionPipeline(store Store, storage Storage, extractor TextExtractor) *ExtractionPipeline {
	return &ExtractionPipeline{
		store:     store,
		storage:   storage,
		extractor: extractor,
		locks:     make(map[string]*versionLock),
	}
}

func (p *ExtractionPipeline) acquireVersionLock(versionID string) *versionLock {
	p.locksMu.Lock()
	lock, ok := p.locks[versionID]
	if !ok {
		lock = &versionLock{}
		p.locks[versionID] = lock
	}
	lock.refs++
	p.locksMu.Unlock()

	lock.mu.Lock()
	return lock
}

func (p *ExtractionPipeline) releaseVersionLock(versionID string, lock *versionLock) {
	lock.mu.Unlock()

	p.locksMu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(p.locks, versionID)
	}
	p.locksMu.Unlock()
}

// Run executes one extraction for the version: PENDING/FAILED -> PROCESSING,
// then -> DONE on success or -> FAILED on any error, with the error returned
// to the caller. Clause and obligation sets are fully replaced, never
// appended, so re-running is safe.
func (p *ExtractionPipeline) Run(ctx context.Context, versionID string) (*model.DocumentVersion, error) {
	lock := p.acquireVersionLock(versionID)
	defer p.releaseVersionLock(versionID, lock)

	ctx = logger.ContextWithVersion(ctx, versionID)

	version, err := p.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load version: %w", err)
	}

	doc, err := p.store.GetDocument(ctx, version.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	if err := p.store.UpdateVersionStatus(ctx, versionID, model.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("failed to mark version processing: %w", err)
	}

	logger.Info(ctx, "extraction started",
		"document_id", doc.ID,
		"storage_path", doc.StoragePath,
	)

	data, err := p.extract(ctx, doc)
	if err != nil {
		if stErr := p.store.UpdateVersionStatus(ctx, versionID, model.StatusFailed, err.Error()); stErr != nil {
			logger.Error(ctx, "failed to record extraction failure", "error", stErr)
		}
		logger.Error(ctx, "extraction failed", "error", err)
		return nil, err
	}

	if err := p.store.SaveExtraction(ctx, versionID, data); err != nil {
		if stErr := p.store.UpdateVersionStatus(ctx, versionID, model.StatusFailed, err.Error()); stErr != nil {
			logger.Error(ctx, "failed to record extraction failure", "error", stErr)
		}
		return nil, fmt.Errorf("failed to persist extraction: %w", err)
	}

	logger.Info(ctx, "extraction completed",
		"pages", data.PageCount,
		"clauses", len(data.Clauses),
		"obligations", len(data.Obligations),
	)

	return p.store.GetVersion(ctx, versionID)
}

// extract performs the fallible middle of the pipeline: byte fetch, text
// extraction and the three heuristic scans. The scans read the same
// immutable text and write disjoint outputs, so they run concurrently.
func (p *ExtractionPipeline) extract(ctx context.Context, doc *model.ContractDocument) (*ExtractionData, error) {
	exists, err := p.storage.Exists(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check document storage: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("document not found in storage: %s", doc.StoragePath)
	}

	raw, err := p.storage.ReadBytes(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	text, pageCount, err := p.extractor.Extract(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	data := &ExtractionData{
		Text:      truncate(text, MaxStoredTextLen),
		PageCount: pageCount,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		data.Derived = DeriveFields(text)
		return nil
	})
	g.Go(func() error {
		data.Clauses = ExtractClauses(text)
		return nil
	})
	g.Go(func() error {
		data.Obligations = ExtractObligations(text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return data, nil
}
