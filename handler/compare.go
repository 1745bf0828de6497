package handler

import (
	"net/http"

	"github.com/avirshuk-alt/Contract-Management/middleware"
	"github.com/avirshuk-alt/Contract-Management/service"
	"github.com/gin-gonic/gin"
)

type CompareHandler struct {
	store service.Store
}

func NewCompareHandler(store service.Store) *CompareHandler {
	return &CompareHandler{store: store}
}

// Compare diffs the extracted text of a base version against either another
// version or another contract's latest version. Versions without extracted
// text diff as empty; version IDs outside the caller's tenant are rejected.
func (h *CompareHandler) Compare(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	contractID := c.Param("id")

	baseVersionID := c.Query("baseVersion")
	otherVersionID := c.Query("otherVersion")
	otherContractID := c.Query("otherContract")

	if baseVersionID == "" || (otherVersionID == "" && otherContractID == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Provide baseVersion and either otherVersion or otherContract",
		})
		return
	}

	contract, err := h.store.GetContract(c.Request.Context(), contractID)
	if err != nil || contract.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}

	baseText, ok := h.versionText(c, baseVersionID, tenant)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
		return
	}

	var otherText string
	if otherVersionID != "" {
		otherText, ok = h.versionText(c, otherVersionID, tenant)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
			return
		}
	} else {
		other, err := h.store.GetContract(c.Request.Context(), otherContractID)
		if err != nil || other.Tenant != tenant {
			c.JSON(http.StatusNotFound, gin.H{"error": "Other contract not found"})
			return
		}
		if latest, err := h.store.LatestVersion(c.Request.Context(), otherContractID); err == nil {
			otherVersionID = latest.ID
			otherText = latest.ExtractedText
		}
	}

	result := service.ComputeDiff(baseText, otherText)

	c.JSON(http.StatusOK, gin.H{
		"base_version_id":   baseVersionID,
		"other_version_id":  otherVersionID,
		"other_contract_id": otherContractID,
		"diff":              result.Unified,
		"changes":           result.Segments,
	})
}

// versionText resolves a version's extracted text, walking its document to
// the owning contract to verify tenancy. A missing or unextracted version
// yields "" (diffs as empty); a version owned by another tenant yields
// ok=false so its text never reaches a diff.
func (h *CompareHandler) versionText(c *gin.Context, versionID, tenant string) (string, bool) {
	ctx := c.Request.Context()

	version, err := h.store.GetVersion(ctx, versionID)
	if err != nil {
		return "", true
	}
	doc, err := h.store.GetDocument(ctx, version.DocumentID)
	if err != nil {
		return "", true
	}
	contract, err := h.store.GetContract(ctx, doc.ContractID)
	if err != nil || contract.Tenant != tenant {
		return "", false
	}
	return version.ExtractedText, true
}
