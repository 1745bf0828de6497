package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/avirshuk-alt/Contract-Management/middleware"
	"github.com/avirshuk-alt/Contract-Management/model"
	"github.com/avirshuk-alt/Contract-Management/pkg/logger"
	"github.com/avirshuk-alt/Contract-Management/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContractHandler struct {
	store    service.Store
	storage  service.Storage
	pipeline *service.ExtractionPipeline
}

func NewContractHandler(store service.Store, storage service.Storage, pipeline *service.ExtractionPipeline) *ContractHandler {
	return &ContractHandler{
		store:    store,
		storage:  storage,
		pipeline: pipeline,
	}
}

// Upload handles contract file upload: stores the PDF, creates the
// contract/document/version records and kicks off extraction.
func (h *ContractHandler) Upload(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	contractName := c.PostForm("name")
	if contractName == "" {
		contractName = strings.TrimSuffix(header.Filename, ext)
	}

	contractID := uuid.New().String()
	documentID := uuid.New().String()
	versionID := uuid.New().String()
	storagePath := fmt.Sprintf("%s/%s/%s", tenant, contractID, header.Filename)

	err = h.storage.Save(c.Request.Context(), storagePath, file, header.Size, "application/pdf")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file: " + err.Error()})
		return
	}

	now := time.Now()
	contract := &model.Contract{
		ID:        contractID,
		Name:      contractName,
		Tenant:    tenant,
		CreatedAt: now,
	}
	if err := h.store.CreateContract(c.Request.Context(), contract); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contract: " + err.Error()})
		return
	}

	doc := &model.ContractDocument{
		ID:          documentID,
		ContractID:  contractID,
		Filename:    header.Filename,
		StoragePath: storagePath,
		MimeType:    "application/pdf",
		Size:        header.Size,
		CreatedAt:   now,
	}
	if err := h.store.CreateDocument(c.Request.Context(), doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document: " + err.Error()})
		return
	}

	version := &model.DocumentVersion{
		ID:         versionID,
		DocumentID: documentID,
		Status:     model.StatusPending,
		CreatedAt:  now,
	}
	if err := h.store.CreateVersion(c.Request.Context(), version); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create version: " + err.Error()})
		return
	}

	// Run extraction in the background; status is polled via the status
	// endpoint, and a failed run can be retried through the extract endpoint.
	go func() {
		ctx := logger.ContextWithVersion(context.Background(), versionID)
		if _, err := h.pipeline.Run(ctx, versionID); err != nil {
			logger.Error(ctx, "background extraction failed",
				"contract_id", contractID,
				"error", err,
			)
		}
	}()

	c.JSON(http.StatusOK, gin.H{
		"id":          contractID,
		"document_id": documentID,
		"version_id":  versionID,
		"filename":    header.Filename,
		"status":      model.StatusPending,
	})
}

// List returns all contracts for the current tenant
func (h *ContractHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	contracts, err := h.store.ListContracts(c.Request.Context(), tenant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contracts: " + err.Error()})
		return
	}

	result := make([]gin.H, len(contracts))
	for i, contract := range contracts {
		result[i] = gin.H{
			"id":         contract.ID,
			"name":       contract.Name,
			"created_at": contract.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at": contract.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"contracts": result})
}

// Get returns a single contract with its documents, versions and the
// latest version's clauses and obligations.
func (h *ContractHandler) Get(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	contract, err := h.getTenantContract(c.Request.Context(), id, tenant)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	// Only the newest version carries the full clause/obligation payload
	if latest, err := h.store.LatestVersion(c.Request.Context(), id); err == nil {
		clauses, _ := h.store.ListClauses(c.Request.Context(), latest.ID)
		obligations, _ := h.store.ListObligations(c.Request.Context(), latest.ID)
		for _, doc := range contract.Documents {
			for _, v := range doc.Versions {
				if v.ID == latest.ID {
					v.Clauses = clauses
					v.Obligations = obligations
				}
			}
		}
	}

	c.JSON(http.StatusOK, contract)
}

// GetStatus returns the processing status of the contract's latest version
func (h *ContractHandler) GetStatus(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	if _, err := h.getTenantContract(c.Request.Context(), id, tenant); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	version, err := h.store.LatestVersion(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No versions for contract"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         id,
		"version_id": version.ID,
		"status":     version.Status,
		"error_msg":  version.ErrorMsg,
	})
}

// Delete deletes a contract
func (h *ContractHandler) Delete(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	if _, err := h.getTenantContract(c.Request.Context(), id, tenant); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	if err := h.store.DeleteContract(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contract: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}

// Extract re-runs the extraction pipeline for a version synchronously and
// returns the updated version. Valid for pending, failed and done versions
// alike; clause and obligation sets are replaced, not appended.
func (h *ContractHandler) Extract(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	versionID := c.Param("id")

	if err := h.checkVersionTenant(c.Request.Context(), versionID, tenant); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
		return
	}

	version, err := h.pipeline.Run(c.Request.Context(), versionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Extraction failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, version)
}

// DownloadFile streams the stored document back to the caller
func (h *ContractHandler) DownloadFile(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	documentID := c.Param("id")

	doc, err := h.store.GetDocument(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if _, err := h.getTenantContract(c.Request.Context(), doc.ContractID, tenant); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	data, err := h.storage.ReadBytes(c.Request.Context(), doc.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read document: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.MimeType, data)
}

// getTenantContract loads a contract and verifies tenant ownership.
func (h *ContractHandler) getTenantContract(ctx context.Context, id, tenant string) (*model.Contract, error) {
	contract, err := h.store.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Tenant != tenant {
		return nil, service.ErrNotFound
	}
	return contract, nil
}

// checkVersionTenant verifies that a version's owning contract belongs to
// the tenant.
func (h *ContractHandler) checkVersionTenant(ctx context.Context, versionID, tenant string) error {
	version, err := h.store.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	doc, err := h.store.GetDocument(ctx, version.DocumentID)
	if err != nil {
		return err
	}
	if _, err := h.getTenantContract(ctx, doc.ContractID, tenant); err != nil {
		return errors.New("version not owned by tenant")
	}
	return nil
}
