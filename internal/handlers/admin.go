package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const statsCacheKey = "ecolife:admin:stats"

type dashboardStats struct {
	TotalUsers            int64 `json:"totalUsers"`
	ActiveUsers           int64 `json:"activeUsers"`
	TotalMarketItems      int64 `json:"totalMarketItems"`
	CompletedTransactions int64 `json:"completedTransactions"`
	TotalWasteLogs        int64 `json:"totalWasteLogs"`
	ActiveCenters         int64 `json:"activeCenters"`
	PendingSubmissions    int64 `json:"pendingSubmissions"`
}

type wasteTypeTotal struct {
	WasteType models.WasteType `json:"wasteType"`
	Total     float64          `json:"total"`
}

type dashboardResp struct {
	Success     bool              `json:"success"`
	Stats       dashboardStats    `json:"stats"`
	TopUsers    []models.User     `json:"topUsers"`
	RecentWaste []models.WasteLog `json:"recentWaste"`
	WasteByType []wasteTypeTotal  `json:"wasteByType"`
}

func (h *Handlers) getDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	var cached dashboardResp
	if h.cache.GetJSON(ctx, statsCacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	db := store.GetDB()
	var resp dashboardResp
	resp.Success = true

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&resp.Stats.TotalUsers, db.Model(&models.User{}).Where("role = ?", models.RoleUser)},
		{&resp.Stats.ActiveUsers, db.Model(&models.User{}).Where("role = ? AND is_active = ?", models.RoleUser, true)},
		{&resp.Stats.TotalMarketItems, db.Model(&models.MarketItem{})},
		{&resp.Stats.CompletedTransactions, db.Model(&models.MarketTransaction{}).Where("status = ?", models.TransactionCompleted)},
		{&resp.Stats.TotalWasteLogs, db.Model(&models.WasteLog{})},
		{&resp.Stats.ActiveCenters, db.Model(&models.RecyclingCenter{}).Where("is_active = ?", true)},
		{&resp.Stats.PendingSubmissions, db.Model(&models.RecyclingSubmission{}).Where("status = ?", models.SubmissionPending)},
	}
	for _, cnt := range counts {
		if err := cnt.query.Count(cnt.dest).Error; err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := db.Where("role = ?", models.RoleUser).Order("green_score desc").Limit(5).Find(&resp.TopUsers).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := db.Order("date desc").Limit(5).Find(&resp.RecentWaste).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	err := db.Model(&models.WasteLog{}).
		Select("waste_type, SUM(quantity) as total").
		Group("waste_type").
		Scan(&resp.WasteByType).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.cache.SetJSON(ctx, statsCacheKey, resp)
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) getAllUsers(c *gin.Context) {
	page, pageSize := pageParams(c, 20)

	q := store.GetDB().Model(&models.User{})
	if v := c.Query("role"); v != "" {
		q = q.Where("role = ?", v)
	}
	if v := c.Query("search"); v != "" {
		like := "%" + v + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	var users []models.User
	if err := q.Order("created_at desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": total, "users": users})
}

func (h *Handlers) getUserByID(c *gin.Context) {
	db := store.GetDB()
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	var wasteCount, marketItems, transactions, submissions int64
	activity := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&wasteCount, db.Model(&models.WasteLog{}).Where("user_id = ?", user.ID)},
		{&marketItems, db.Model(&models.MarketItem{}).Where("owner_id = ?", user.ID)},
		{&transactions, db.Model(&models.MarketTransaction{}).Where("buyer_id = ? OR seller_id = ?", user.ID, user.ID)},
		{&submissions, db.Model(&models.RecyclingSubmission{}).Where("user_id = ?", user.ID)},
	}
	for _, cnt := range activity {
		if err := cnt.query.Count(cnt.dest).Error; err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"activity": gin.H{
			"wasteCount":   wasteCount,
			"marketItems":  marketItems,
			"transactions": transactions,
			"submissions":  submissions,
		},
	})
}

func (h *Handlers) toggleUserStatus(c *gin.Context) {
	db := store.GetDB()
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if user.Role == models.RoleAdmin {
		fail(c, http.StatusBadRequest, "Cannot deactivate admin accounts")
		return
	}

	user.IsActive = !user.IsActive
	if err := db.Model(&user).UpdateColumn("is_active", user.IsActive).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	state := "deactivated"
	if user.IsActive {
		state = "activated"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("User %s", state), "user": user})
}
