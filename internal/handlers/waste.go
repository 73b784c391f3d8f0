package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Vihanga-02/EcoLife/internal/auth"
	"github.com/Vihanga-02/EcoLife/internal/billing"
	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/rewards"
	"github.com/Vihanga-02/EcoLife/internal/store"
	"github.com/Vihanga-02/EcoLife/internal/waste"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type wasteLogReq struct {
	WasteType string   `json:"wasteType" binding:"required"`
	Quantity  *float64 `json:"quantity" binding:"required,gte=0"`
	Unit      string   `json:"unit"`
	ImageURL  string   `json:"imageUrl"`
	Notes     string   `json:"notes"`
}

// logWaste records a waste entry, derives its environmental metrics and
// awards the logger's green score. Updates never re-award.
func (h *Handlers) logWaste(c *gin.Context) {
	var req wasteLogReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "wasteType and quantity are required")
		return
	}
	wasteType, err := models.ParseWasteType(req.WasteType)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := models.ParseWasteUnit(req.Unit)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user := auth.CurrentUser(c)
	log := models.WasteLog{
		UserID:    user.ID,
		WasteType: wasteType,
		Quantity:  *req.Quantity,
		Unit:      unit,
		ImageURL:  req.ImageURL,
		Notes:     req.Notes,
		Date:      h.now(),
	}
	waste.Apply(&log)

	err = store.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
		return rewards.Award(tx, user.ID, rewards.WasteLogged, 0)
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Waste logged successfully", "log": log})
}

func (h *Handlers) getMyWasteLogs(c *gin.Context) {
	page, pageSize := pageParams(c, 20)

	q := store.GetDB().Model(&models.WasteLog{}).Where("user_id = ?", auth.CurrentUser(c).ID)
	if v := c.Query("wasteType"); v != "" {
		q = q.Where("waste_type = ?", v)
	}
	if v := c.Query("startDate"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			q = q.Where("date >= ?", ts)
		}
	}
	if v := c.Query("endDate"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			q = q.Where("date <= ?", ts)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	var logs []models.WasteLog
	if err := q.Order("date desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": total, "logs": logs})
}

func (h *Handlers) getWasteAnalytics(c *gin.Context) {
	var logs []models.WasteLog
	if err := store.GetDB().Where("user_id = ?", auth.CurrentUser(c).ID).Find(&logs).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	totalByType := map[models.WasteType]float64{}
	var totalCarbon float64
	recyclable := 0
	biodegradable := 0
	for _, log := range logs {
		totalByType[log.WasteType] += log.Quantity
		totalCarbon += log.CarbonEquivalent
		if log.IsRecyclable {
			recyclable++
		}
		if log.IsBiodegradable {
			biodegradable++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"totalLogs":             len(logs),
		"totalByType":           totalByType,
		"totalCarbonEquivalent": billing.Round(totalCarbon, 3),
		"recyclableItems":       recyclable,
		"biodegradableItems":    biodegradable,
	})
}

func (h *Handlers) getWasteLogByID(c *gin.Context) {
	var log models.WasteLog
	err := store.GetDB().
		Where("id = ? AND user_id = ?", c.Param("id"), auth.CurrentUser(c).ID).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Waste log not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "log": log})
}

type wasteLogUpdateReq struct {
	WasteType string   `json:"wasteType"`
	Quantity  *float64 `json:"quantity"`
	Unit      string   `json:"unit"`
	Notes     *string  `json:"notes"`
}

func (h *Handlers) updateWasteLog(c *gin.Context) {
	var req wasteLogUpdateReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	db := store.GetDB()
	var log models.WasteLog
	err := db.Where("id = ? AND user_id = ?", c.Param("id"), auth.CurrentUser(c).ID).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Waste log not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if req.WasteType != "" {
		wasteType, err := models.ParseWasteType(req.WasteType)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		log.WasteType = wasteType
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			fail(c, http.StatusBadRequest, "quantity must not be negative")
			return
		}
		log.Quantity = *req.Quantity
	}
	if req.Unit != "" {
		unit, err := models.ParseWasteUnit(req.Unit)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Unit = unit
	}
	if req.Notes != nil {
		log.Notes = *req.Notes
	}

	// Derived fields always follow their source fields.
	waste.Apply(&log)

	if err := db.Save(&log).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Waste log updated successfully", "log": log})
}

func (h *Handlers) deleteWasteLog(c *gin.Context) {
	res := store.GetDB().
		Where("id = ? AND user_id = ?", c.Param("id"), auth.CurrentUser(c).ID).
		Delete(&models.WasteLog{})
	if res.Error != nil {
		fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Waste log not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Waste log deleted"})
}

func (h *Handlers) adminGetAllWasteLogs(c *gin.Context) {
	var logs []models.WasteLog
	if err := store.GetDB().Order("date desc").Find(&logs).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(logs), "logs": logs})
}
