package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Vihanga-02/EcoLife/internal/auth"
	"github.com/Vihanga-02/EcoLife/internal/billing"
	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func billCacheKey(userID uint) string { return fmt.Sprintf("ecolife:bill:%d", userID) }

type applianceReq struct {
	Name         string  `json:"name" binding:"required"`
	Wattage      float64 `json:"wattage" binding:"required,gte=0"`
	Category     string  `json:"category"`
	HoursPerDay  float64 `json:"hoursPerDay" binding:"gte=0"`
	DaysPerMonth float64 `json:"daysPerMonth" binding:"gte=0"`
}

func (h *Handlers) addAppliance(c *gin.Context) {
	var req applianceReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Name and wattage are required")
		return
	}
	category, err := models.ParseApplianceCategory(req.Category)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	appliance := models.Appliance{
		UserID:       auth.CurrentUser(c).ID,
		Name:         req.Name,
		Wattage:      req.Wattage,
		Category:     category,
		Status:       models.ApplianceOff,
		HoursPerDay:  req.HoursPerDay,
		DaysPerMonth: req.DaysPerMonth,
	}
	if err := store.GetDB().Create(&appliance).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Appliance added", "appliance": appliance})
}

func (h *Handlers) getMyAppliances(c *gin.Context) {
	var appliances []models.Appliance
	err := store.GetDB().
		Preload("UsageSessions").
		Where("user_id = ?", auth.CurrentUser(c).ID).
		Order("created_at desc").
		Find(&appliances).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(appliances), "appliances": appliances})
}

func (h *Handlers) updateAppliance(c *gin.Context) {
	var req applianceReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	category, err := models.ParseApplianceCategory(req.Category)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	db := store.GetDB()
	var appliance models.Appliance
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), auth.CurrentUser(c).ID).First(&appliance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Appliance not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	appliance.Name = req.Name
	appliance.Wattage = req.Wattage
	appliance.Category = category
	appliance.HoursPerDay = req.HoursPerDay
	appliance.DaysPerMonth = req.DaysPerMonth
	if err := db.Save(&appliance).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.cache.Invalidate(c.Request.Context(), billCacheKey(appliance.UserID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appliance updated", "appliance": appliance})
}

func (h *Handlers) deleteAppliance(c *gin.Context) {
	user := auth.CurrentUser(c)
	res := store.GetDB().Where("id = ? AND user_id = ?", c.Param("id"), user.ID).Delete(&models.Appliance{})
	if res.Error != nil {
		fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Appliance not found")
		return
	}
	h.cache.Invalidate(c.Request.Context(), billCacheKey(user.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appliance deleted"})
}

// toggleAppliance flips the on/off state. Turning off closes the usage
// session opened by the matching turn-on and accrues its kWh. Both
// directions gate the write on the status observed at read time, so a
// concurrent toggle surfaces as a conflict instead of a lost session.
func (h *Handlers) toggleAppliance(c *gin.Context) {
	user := auth.CurrentUser(c)
	now := h.now()
	db := store.GetDB()

	var result models.Appliance
	err := db.Transaction(func(tx *gorm.DB) error {
		var appliance models.Appliance
		if err := tx.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&appliance).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("Appliance not found")
			}
			return err
		}

		var updates map[string]interface{}
		if appliance.Status == models.ApplianceOff {
			updates = map[string]interface{}{
				"status":          models.ApplianceOn,
				"last_start_time": now,
			}
		} else {
			updates = map[string]interface{}{
				"status":          models.ApplianceOff,
				"last_start_time": nil,
			}
			if appliance.LastStartTime != nil {
				kwh := billing.SessionKwh(appliance.Wattage, *appliance.LastStartTime, now)
				session := models.UsageSession{
					ApplianceID: appliance.ID,
					StartTime:   *appliance.LastStartTime,
					EndTime:     now,
					KwhUsed:     kwh,
				}
				if err := tx.Create(&session).Error; err != nil {
					return err
				}
				updates["total_kwh_this_month"] = billing.Round(appliance.TotalKwhThisMonth+kwh, 4)
			}
		}

		res := tx.Model(&models.Appliance{}).
			Where("id = ? AND status = ?", appliance.ID, appliance.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidTransitionErr("Appliance was toggled concurrently, please retry")
		}
		return tx.Preload("UsageSessions").First(&result, appliance.ID).Error
	})
	if err != nil {
		failFrom(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), billCacheKey(user.ID))
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Appliance turned %s", result.Status),
		"appliance": result,
	})
}

// resetApplianceUsage zeroes the accrued kWh counter and drops recorded
// sessions. There is no scheduled monthly rollover; the counter means
// "since creation or last reset" and resetting is an explicit owner action.
func (h *Handlers) resetApplianceUsage(c *gin.Context) {
	user := auth.CurrentUser(c)
	db := store.GetDB()

	var result models.Appliance
	err := db.Transaction(func(tx *gorm.DB) error {
		var appliance models.Appliance
		if err := tx.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&appliance).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("Appliance not found")
			}
			return err
		}
		if appliance.Status == models.ApplianceOn {
			return invalidTransitionErr("Turn the appliance off before resetting usage")
		}
		if err := tx.Where("appliance_id = ?", appliance.ID).Delete(&models.UsageSession{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&appliance).UpdateColumn("total_kwh_this_month", 0).Error; err != nil {
			return err
		}
		return tx.Preload("UsageSessions").First(&result, appliance.ID).Error
	})
	if err != nil {
		failFrom(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), billCacheKey(user.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Usage reset", "appliance": result})
}

func loadActiveTariffBlocks(db *gorm.DB) ([]billing.Block, error) {
	var tariffs []models.Tariff
	if err := db.Where("is_active = ?", true).Order("min_units asc").Find(&tariffs).Error; err != nil {
		return nil, err
	}
	blocks := make([]billing.Block, 0, len(tariffs))
	for _, t := range tariffs {
		blocks = append(blocks, billing.Block{
			Name:        t.BlockName,
			MinUnits:    t.MinUnits,
			MaxUnits:    t.MaxUnits,
			UnitRate:    t.UnitRate,
			FixedCharge: t.FixedCharge,
		})
	}
	return blocks, nil
}

type billEstimateResp struct {
	Success       bool    `json:"success"`
	TotalKwh      float64 `json:"totalKwh"`
	EstimatedBill float64 `json:"estimatedBill"`
	Appliances    int     `json:"appliances"`
	TariffApplied string  `json:"tariffApplied"`
}

func (h *Handlers) estimateBill(c *gin.Context) {
	user := auth.CurrentUser(c)
	ctx := c.Request.Context()

	var cached billEstimateResp
	if h.cache.GetJSON(ctx, billCacheKey(user.ID), &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	db := store.GetDB()
	var appliances []models.Appliance
	if err := db.Where("user_id = ?", user.ID).Find(&appliances).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	blocks, err := loadActiveTariffBlocks(db)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	var totalKwh float64
	for _, a := range appliances {
		totalKwh += a.TotalKwhThisMonth
	}
	est := billing.EstimateUsageBill(blocks, totalKwh)

	resp := billEstimateResp{
		Success:       true,
		TotalKwh:      est.TotalKwh,
		EstimatedBill: est.EstimatedBill,
		Appliances:    len(appliances),
		TariffApplied: est.TariffApplied,
	}
	h.cache.SetJSON(ctx, billCacheKey(user.ID), resp)
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) estimateScheduleBill(c *gin.Context) {
	db := store.GetDB()
	var appliances []models.Appliance
	if err := db.Where("user_id = ?", auth.CurrentUser(c).ID).Find(&appliances).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	blocks, err := loadActiveTariffBlocks(db)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	loads := make([]billing.ApplianceLoad, 0, len(appliances))
	for _, a := range appliances {
		loads = append(loads, billing.ApplianceLoad{
			ID:           a.ID,
			Name:         a.Name,
			Wattage:      a.Wattage,
			HoursPerDay:  a.HoursPerDay,
			DaysPerMonth: a.DaysPerMonth,
		})
	}
	est := billing.EstimateScheduleBill(blocks, loads)
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"totalEstimatedKwh": est.TotalEstimatedKwh,
		"estimatedBill":     est.EstimatedBill,
		"tariffApplied":     est.TariffApplied,
		"appliances":        est.Appliances,
	})
}

type tariffReq struct {
	BlockName   string   `json:"blockName" binding:"required"`
	MinUnits    float64  `json:"minUnits" binding:"gte=0"`
	MaxUnits    *float64 `json:"maxUnits"`
	UnitRate    float64  `json:"unitRate" binding:"gte=0"`
	FixedCharge float64  `json:"fixedCharge" binding:"gte=0"`
	IsActive    *bool    `json:"isActive"`
}

func (h *Handlers) createTariff(c *gin.Context) {
	var req tariffReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.MaxUnits != nil && *req.MaxUnits < req.MinUnits {
		fail(c, http.StatusBadRequest, "maxUnits must not be below minUnits")
		return
	}
	tariff := models.Tariff{
		BlockName:   req.BlockName,
		MinUnits:    req.MinUnits,
		MaxUnits:    req.MaxUnits,
		UnitRate:    req.UnitRate,
		FixedCharge: req.FixedCharge,
		IsActive:    true,
	}
	if req.IsActive != nil {
		tariff.IsActive = *req.IsActive
	}
	if err := store.GetDB().Create(&tariff).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Tariff created", "tariff": tariff})
}

func (h *Handlers) getTariffs(c *gin.Context) {
	var tariffs []models.Tariff
	if err := store.GetDB().Order("min_units asc").Find(&tariffs).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tariffs": tariffs})
}

func (h *Handlers) updateTariff(c *gin.Context) {
	var req tariffReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.MaxUnits != nil && *req.MaxUnits < req.MinUnits {
		fail(c, http.StatusBadRequest, "maxUnits must not be below minUnits")
		return
	}

	db := store.GetDB()
	var tariff models.Tariff
	if err := db.First(&tariff, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Tariff not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	tariff.BlockName = req.BlockName
	tariff.MinUnits = req.MinUnits
	tariff.MaxUnits = req.MaxUnits
	tariff.UnitRate = req.UnitRate
	tariff.FixedCharge = req.FixedCharge
	if req.IsActive != nil {
		tariff.IsActive = *req.IsActive
	}
	if err := db.Save(&tariff).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tariff updated", "tariff": tariff})
}

func (h *Handlers) deleteTariff(c *gin.Context) {
	res := store.GetDB().Delete(&models.Tariff{}, c.Param("id"))
	if res.Error != nil {
		fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Tariff not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tariff deleted"})
}
