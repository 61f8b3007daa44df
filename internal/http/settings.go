package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/settingsstore"
)

// SettingsController exposes the runtime sync tuning knobs.
type SettingsController struct {
	settings *settingsstore.SettingsStore
	audit    *audit.Service
}

func NewSettingsController(settings *settingsstore.SettingsStore, auditService *audit.Service) *SettingsController {
	return &SettingsController{settings: settings, audit: auditService}
}

// SyncSettingsRequest updates a subset of the tuning values. Omitted
// fields keep their current value.
type SyncSettingsRequest struct {
	FuzzyThreshold    *int  `json:"fuzzy_threshold"`
	BatchSize         *int  `json:"batch_size"`
	BatchPauseSeconds *int  `json:"batch_pause_seconds"`
	SkipZeroInventory *bool `json:"skip_zero_inventory"`
	HistoryCap        *int  `json:"history_cap"`
}

// GetSyncSettings returns the effective tuning values with their sources
// GET /api/settings/sync
func (sc *SettingsController) GetSyncSettings(c *gin.Context) {
	c.JSON(http.StatusOK, sc.settings.GetSyncTuningInfo())
}

// UpdateSyncSettings stores database overrides for the provided fields
// PUT /api/settings/sync
func (sc *SettingsController) UpdateSyncSettings(c *gin.Context) {
	var req SyncSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	var changed []string
	if req.FuzzyThreshold != nil {
		if err := sc.settings.SetFuzzyThreshold(*req.FuzzyThreshold); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		changed = append(changed, fmt.Sprintf("fuzzy_threshold=%d", *req.FuzzyThreshold))
	}
	if req.BatchSize != nil {
		if err := sc.settings.SetBatchSize(*req.BatchSize); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		changed = append(changed, fmt.Sprintf("batch_size=%d", *req.BatchSize))
	}
	if req.BatchPauseSeconds != nil {
		if err := sc.settings.SetBatchPauseSeconds(*req.BatchPauseSeconds); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		changed = append(changed, fmt.Sprintf("batch_pause_seconds=%d", *req.BatchPauseSeconds))
	}
	if req.SkipZeroInventory != nil {
		if err := sc.settings.SetSkipZeroInventory(*req.SkipZeroInventory); err != nil {
			respondInternalError(c, err, "update settings")
			return
		}
		changed = append(changed, fmt.Sprintf("skip_zero_inventory=%t", *req.SkipZeroInventory))
	}
	if req.HistoryCap != nil {
		if err := sc.settings.SetHistoryCap(*req.HistoryCap); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		changed = append(changed, fmt.Sprintf("history_cap=%d", *req.HistoryCap))
	}

	if len(changed) == 0 {
		respondBadRequest(c, "no settings provided")
		return
	}

	sc.logSettingsAudit("settings_update", "Updated sync tuning: "+strings.Join(changed, ", "))
	c.JSON(http.StatusOK, sc.settings.GetSyncTuningInfo())
}

// ResetSyncSettings removes every database override
// POST /api/settings/sync/reset
func (sc *SettingsController) ResetSyncSettings(c *gin.Context) {
	if err := sc.settings.ResetSyncTuning(); err != nil {
		respondInternalError(c, err, "reset settings")
		return
	}
	sc.logSettingsAudit("settings_reset", "Reset sync tuning to environment/default values")
	c.JSON(http.StatusOK, sc.settings.GetSyncTuningInfo())
}

func (sc *SettingsController) logSettingsAudit(action, description string) {
	if sc.audit == nil {
		return
	}
	sc.audit.LogSettings(action, description)
}
