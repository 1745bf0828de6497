package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/avirshuk-alt/Contract-Management/config"
	"github.com/avirshuk-alt/Contract-Management/model"
)

// ErrNotFound is returned when a contract, document or version does not exist.
var ErrNotFound = errors.New("not found")

// ExtractionData is everything one successful extraction run persists for a
// version. SaveExtraction applies it atomically: text, derived fields and
// the full replacement of the clause and obligation sets commit together or
// not at all.
type ExtractionData struct {
	Text        string
	PageCount   int
	Derived     *model.DerivedFields
	Clauses     []*model.Clause
	Obligations []*model.Obligation
}

// Store is the persistence collaborator. Implementations: MemoryStore for
// demo/tests, GormStore for sqlite/postgres.
type Store interface {
	CreateContract(ctx context.Context, contract *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	ListContracts(ctx context.Context, tenant string) ([]*model.Contract, error)
	DeleteContract(ctx context.Context, id string) error

	CreateDocument(ctx context.Context, doc *model.ContractDocument) error
	GetDocument(ctx context.Context, id string) (*model.ContractDocument, error)

	// CreateVersion assigns the next monotonic version number for the document.
	CreateVersion(ctx context.Context, version *model.DocumentVersion) error
	GetVersion(ctx context.Context, id string) (*model.DocumentVersion, error)
	// LatestVersion returns the most recently created version across the
	// contract's documents.
	LatestVersion(ctx context.Context, contractID string) (*model.DocumentVersion, error)
	UpdateVersionStatus(ctx context.Context, versionID, status, errMsg string) error

	// SaveExtraction marks the version done and replaces its clause and
	// obligation sets in a single atomic step.
	SaveExtraction(ctx context.Context, versionID string, data *ExtractionData) error
	ListClauses(ctx context.Context, versionID string) ([]*model.Clause, error)
	ListObligations(ctx context.Context, versionID string) ([]*model.Obligation, error)
}

// MemoryStore is an in-memory Store for demos and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	contracts    map[string]*model.Contract
	documents    map[string]*model.ContractDocument
	versions     map[string]*model.DocumentVersion
	clauses      map[string][]*model.Clause
	obligations  map[string][]*model.Obligation
	maxContracts int // Maximum contracts to keep, 0 = unlimited
}

func NewMemoryStore(cfg *config.StoreConfig) *MemoryStore {
	maxContracts := 0
	if cfg != nil && cfg.MaxContracts > 0 {
		maxContracts = cfg.MaxContracts
	}
	return &MemoryStore{
		contracts:    make(map[string]*model.Contract),
		documents:    make(map[string]*model.ContractDocument),
		versions:     make(map[string]*model.DocumentVersion),
		clauses:      make(map[string][]*model.Clause),
		obligations:  make(map[string][]*model.Obligation),
		maxContracts: maxContracts,
	}
}

func (s *MemoryStore) CreateContract(ctx context.Context, contract *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract.UpdatedAt = time.Now()
	s.contracts[contract.ID] = contract

	s.cleanupIfNeeded()
	return nil
}

func (s *MemoryStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Attach documents and their versions for the detail view
	result := *contract
	result.Documents = nil
	for _, doc := range s.documents {
		if doc.ContractID != id {
			continue
		}
		d := *doc
		d.Versions = s.versionsForDocument(doc.ID)
		result.Documents = append(result.Documents, &d)
	}
	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].CreatedAt.Before(result.Documents[j].CreatedAt)
	})
	return &result, nil
}

// versionsForDocument returns the document's versions sorted by version
// number. Must be called with lock held.
func (s *MemoryStore) versionsForDocument(documentID string) []*model.DocumentVersion {
	var versions []*model.DocumentVersion
	for _, v := range s.versions {
		if v.DocumentID == documentID {
			vc := *v
			versions = append(versions, &vc)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber < versions[j].VersionNumber
	})
	return versions
}

func (s *MemoryStore) ListContracts(ctx context.Context, tenant string) ([]*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Contract
	for _, c := range s.contracts {
		if c.Tenant == tenant {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[id]; !ok {
		return ErrNotFound
	}
	s.deleteContractLocked(id)
	return nil
}

// deleteContractLocked removes a contract and everything hanging off it.
// Must be called with lock held.
func (s *MemoryStore) deleteContractLocked(id string) {
	delete(s.contracts, id)
	for docID, doc := range s.documents {
		if doc.ContractID != id {
			continue
		}
		for versionID, v := range s.versions {
			if v.DocumentID == docID {
				delete(s.versions, versionID)
				delete(s.clauses, versionID)
				delete(s.obligations, versionID)
			}
		}
		delete(s.documents, docID)
	}
}

func (s *MemoryStore) CreateDocument(ctx context.Context, doc *model.ContractDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[doc.ContractID]; !ok {
		return ErrNotFound
	}
	s.documents[doc.ID] = doc
	return nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, id string) (*model.ContractDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *MemoryStore) CreateVersion(ctx context.Context, version *model.DocumentVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[version.DocumentID]; !ok {
		return ErrNotFound
	}

	next := 1
	for _, v := range s.versions {
		if v.DocumentID == version.DocumentID && v.VersionNumber >= next {
			next = v.VersionNumber + 1
		}
	}
	version.VersionNumber = next
	if version.Status == "" {
		version.Status = model.StatusPending
	}
	version.UpdatedAt = time.Now()
	s.versions[version.ID] = version
	return nil
}

func (s *MemoryStore) GetVersion(ctx context.Context, id string) (*model.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so readers never race with in-place status updates
	vc := *v
	return &vc, nil
}

func (s *MemoryStore) LatestVersion(ctx context.Context, contractID string) (*model.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.DocumentVersion
	for _, v := range s.versions {
		doc, ok := s.documents[v.DocumentID]
		if !ok || doc.ContractID != contractID {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	vc := *latest
	return &vc, nil
}

func (s *MemoryStore) UpdateVersionStatus(ctx context.Context, versionID, status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.versions[versionID]
	if !ok {
		return ErrNotFound
	}
	v.Status = status
	v.ErrorMsg = errMsg
	v.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SaveExtraction(ctx context.Context, versionID string, data *ExtractionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.versions[versionID]
	if !ok {
		return ErrNotFound
	}

	v.ExtractedText = data.Text
	v.PageCount = data.PageCount
	v.Derived = data.Derived
	v.Status = model.StatusDone
	v.ErrorMsg = ""
	v.UpdatedAt = time.Now()

	// Replace, never append
	s.clauses[versionID] = data.Clauses
	s.obligations[versionID] = data.Obligations
	for _, c := range data.Clauses {
		c.VersionID = versionID
	}
	for _, o := range data.Obligations {
		o.VersionID = versionID
	}
	return nil
}

func (s *MemoryStore) ListClauses(ctx context.Context, versionID string) ([]*model.Clause, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clauses[versionID], nil
}

func (s *MemoryStore) ListObligations(ctx context.Context, versionID string) ([]*model.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obligations[versionID], nil
}

// cleanupIfNeeded removes oldest contracts if the store exceeds
// maxContracts. Must be called with lock held.
func (s *MemoryStore) cleanupIfNeeded() {
	if s.maxContracts <= 0 {
		return // Unlimited
	}

	if len(s.contracts) <= s.maxContracts {
		return
	}

	contracts := make([]*model.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		contracts = append(contracts, c)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.Before(contracts[j].CreatedAt)
	})

	removeCount := len(contracts) - s.maxContracts
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old contract",
			"contract_id", contracts[i].ID,
			"created_at", contracts[i].CreatedAt,
		)
		s.deleteContractLocked(contracts[i].ID)
	}
}

// Count returns the number of contracts in the store
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}
