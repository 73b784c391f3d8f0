package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/Vihanga-02/EcoLife/internal/auth"
	"github.com/Vihanga-02/EcoLife/internal/geo"
	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/rewards"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handlers) getAllCenters(c *gin.Context) {
	db := store.GetDB()
	q := db.Where("is_active = ?", true)
	if v := c.Query("city"); v != "" {
		q = q.Where("city LIKE ?", "%"+v+"%")
	}

	var centers []models.RecyclingCenter
	if err := q.Order("name asc").Find(&centers).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	// Accepted materials live in a JSON column, so the material filter is
	// applied after loading.
	if material := c.Query("material"); material != "" {
		filtered := centers[:0]
		for _, center := range centers {
			for _, m := range center.AcceptMaterials {
				if m == material {
					filtered = append(filtered, center)
					break
				}
			}
		}
		centers = filtered
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(centers), "centers": centers})
}

type nearbyCenter struct {
	models.RecyclingCenter
	DistanceMeters float64 `json:"distanceMeters"`
}

func (h *Handlers) getNearbyCenters(c *gin.Context) {
	lngStr, latStr := c.Query("lng"), c.Query("lat")
	if lngStr == "" || latStr == "" {
		fail(c, http.StatusBadRequest, "Longitude and latitude are required")
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid longitude")
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid latitude")
		return
	}
	maxDist := 10000.0
	if v := c.Query("maxDist"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			maxDist = parsed
		}
	}

	var centers []models.RecyclingCenter
	if err := store.GetDB().Where("is_active = ?", true).Find(&centers).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	nearby := make([]nearbyCenter, 0, len(centers))
	for _, center := range centers {
		d := geo.DistanceMeters(lat, lng, center.Latitude, center.Longitude)
		if d <= maxDist {
			nearby = append(nearby, nearbyCenter{RecyclingCenter: center, DistanceMeters: d})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceMeters < nearby[j].DistanceMeters })

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(nearby), "centers": nearby})
}

func (h *Handlers) getCenterByID(c *gin.Context) {
	var center models.RecyclingCenter
	if err := store.GetDB().First(&center, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Recycling center not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "center": center})
}

type centerReq struct {
	Name            string   `json:"name" binding:"required"`
	City            string   `json:"city" binding:"required"`
	Address         string   `json:"address" binding:"required"`
	Longitude       *float64 `json:"longitude" binding:"required"`
	Latitude        *float64 `json:"latitude" binding:"required"`
	AcceptMaterials []string `json:"acceptMaterials"`
	ContactNumber   string   `json:"contactNumber"`
	OperatingHours  string   `json:"operatingHours"`
	IsActive        *bool    `json:"isActive"`
}

func (h *Handlers) createCenter(c *gin.Context) {
	var req centerReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name, city, address, longitude, latitude are required")
		return
	}

	center := models.RecyclingCenter{
		Name:            req.Name,
		City:            req.City,
		Address:         req.Address,
		Longitude:       *req.Longitude,
		Latitude:        *req.Latitude,
		AcceptMaterials: req.AcceptMaterials,
		ContactNumber:   req.ContactNumber,
		OperatingHours:  req.OperatingHours,
		IsActive:        true,
	}
	if err := store.GetDB().Create(&center).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Recycling center created", "center": center})
}

func (h *Handlers) updateCenter(c *gin.Context) {
	var req centerReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	db := store.GetDB()
	var center models.RecyclingCenter
	if err := db.First(&center, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Center not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	center.Name = req.Name
	center.City = req.City
	center.Address = req.Address
	center.Longitude = *req.Longitude
	center.Latitude = *req.Latitude
	if req.AcceptMaterials != nil {
		center.AcceptMaterials = req.AcceptMaterials
	}
	center.ContactNumber = req.ContactNumber
	center.OperatingHours = req.OperatingHours
	if req.IsActive != nil {
		center.IsActive = *req.IsActive
	}
	if err := db.Save(&center).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Center updated", "center": center})
}

func (h *Handlers) deleteCenter(c *gin.Context) {
	res := store.GetDB().Delete(&models.RecyclingCenter{}, c.Param("id"))
	if res.Error != nil {
		fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Center not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Center deleted"})
}

type submissionReq struct {
	CenterID        uint     `json:"centerId" binding:"required"`
	MaterialType    string   `json:"materialType" binding:"required"`
	EstimatedWeight *float64 `json:"estimatedWeight" binding:"required,gt=0"`
}

func (h *Handlers) createSubmission(c *gin.Context) {
	var req submissionReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "centerId, materialType, estimatedWeight required")
		return
	}

	db := store.GetDB()
	var center models.RecyclingCenter
	if err := db.Where("id = ? AND is_active = ?", req.CenterID, true).First(&center).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Recycling center not found or inactive")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	submission := models.RecyclingSubmission{
		UserID:          auth.CurrentUser(c).ID,
		CenterID:        req.CenterID,
		MaterialType:    req.MaterialType,
		EstimatedWeight: *req.EstimatedWeight,
		Unit:            models.UnitKg,
		Status:          models.SubmissionPending,
		SubmittedAt:     h.now(),
	}
	if err := db.Create(&submission).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Submission created", "submission": submission})
}

func (h *Handlers) getMySubmissions(c *gin.Context) {
	var submissions []models.RecyclingSubmission
	err := store.GetDB().
		Where("user_id = ?", auth.CurrentUser(c).ID).
		Order("submitted_at desc").
		Find(&submissions).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(submissions), "submissions": submissions})
}

func (h *Handlers) getAllSubmissions(c *gin.Context) {
	q := store.GetDB().Order("submitted_at desc")
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	var submissions []models.RecyclingSubmission
	if err := q.Find(&submissions).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(submissions), "submissions": submissions})
}

type reviewSubmissionReq struct {
	Status      string `json:"status" binding:"required"`
	ReviewNotes string `json:"reviewNotes"`
}

// reviewSubmission decides a pending submission. Approval pays out green
// score proportional to the estimated weight. Either decision is terminal;
// a second review conflicts rather than double-awarding.
func (h *Handlers) reviewSubmission(c *gin.Context) {
	var req reviewSubmissionReq
	if err := c.BindJSON(&req); err != nil ||
		(req.Status != string(models.SubmissionApproved) && req.Status != string(models.SubmissionRejected)) {
		fail(c, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}

	reviewer := auth.CurrentUser(c)
	now := h.now()
	db := store.GetDB()

	var submission models.RecyclingSubmission
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&submission, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("Submission not found")
			}
			return err
		}

		res := tx.Model(&models.RecyclingSubmission{}).
			Where("id = ? AND status = ?", submission.ID, models.SubmissionPending).
			Updates(map[string]interface{}{
				"status":       req.Status,
				"reviewed_by":  reviewer.ID,
				"reviewed_at":  now,
				"review_notes": req.ReviewNotes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidTransitionErr("Submission has already been reviewed")
		}

		if req.Status == string(models.SubmissionApproved) {
			if err := rewards.Award(tx, submission.UserID, rewards.RecyclingApproved, submission.EstimatedWeight); err != nil {
				return err
			}
		}

		submission.Status = models.SubmissionStatus(req.Status)
		submission.ReviewedBy = &reviewer.ID
		submission.ReviewedAt = &now
		submission.ReviewNotes = req.ReviewNotes
		return nil
	})
	if err != nil {
		failFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("Submission %s", submission.Status),
		"submission": submission,
	})
}
