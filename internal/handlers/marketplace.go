package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Vihanga-02/EcoLife/internal/auth"
	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/rewards"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type itemCreateReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	ImageURL    string `json:"imageUrl"`
	Condition   string `json:"condition"`
	ListingType string `json:"listingType"`
}

func (h *Handlers) createItem(c *gin.Context) {
	var req itemCreateReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Title and category are required")
		return
	}
	condition, err := models.ParseItemCondition(req.Condition)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	listingType, err := models.ParseListingType(req.ListingType)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	item := models.MarketItem{
		OwnerID:     auth.CurrentUser(c).ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Condition:   condition,
		ListingType: listingType,
		Status:      models.ItemAvailable,
	}
	if err := store.GetDB().Create(&item).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Item listed successfully", "item": item})
}

func (h *Handlers) getAllItems(c *gin.Context) {
	page, pageSize := pageParams(c, 12)

	db := store.GetDB()
	q := db.Model(&models.MarketItem{}).Where("status = ?", models.ItemAvailable)
	if v := c.Query("category"); v != "" {
		q = q.Where("category = ?", v)
	}
	if v := c.Query("condition"); v != "" {
		q = q.Where("condition = ?", v)
	}
	if v := c.Query("listingType"); v != "" {
		q = q.Where("listing_type = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	var items []models.MarketItem
	if err := q.Order("created_at desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"page":    page,
		"pages":   pages,
		"items":   items,
	})
}

func (h *Handlers) getItemByID(c *gin.Context) {
	var item models.MarketItem
	if err := store.GetDB().First(&item, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Item not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

func (h *Handlers) getMyItems(c *gin.Context) {
	var items []models.MarketItem
	err := store.GetDB().
		Where("owner_id = ?", auth.CurrentUser(c).ID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "items": items})
}

func (h *Handlers) updateItem(c *gin.Context) {
	var req itemCreateReq
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	condition, err := models.ParseItemCondition(req.Condition)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	listingType, err := models.ParseListingType(req.ListingType)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	db := store.GetDB()
	var item models.MarketItem
	if err := db.Where("id = ? AND owner_id = ?", c.Param("id"), auth.CurrentUser(c).ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Item not found or not yours")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	item.Title = req.Title
	item.Description = req.Description
	item.Category = req.Category
	if req.ImageURL != "" {
		item.ImageURL = req.ImageURL
	}
	item.Condition = condition
	item.ListingType = listingType
	if err := db.Save(&item).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item updated", "item": item})
}

func (h *Handlers) deleteItem(c *gin.Context) {
	res := store.GetDB().
		Where("id = ? AND owner_id = ?", c.Param("id"), auth.CurrentUser(c).ID).
		Delete(&models.MarketItem{})
	if res.Error != nil {
		fail(c, http.StatusInternalServerError, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Item not found or not yours")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item deleted"})
}

// claimItem moves an available item to reserved and opens a pending
// transaction for the buyer. The reservation is gated on the item still
// being available at write time, so two racing claims cannot both win.
func (h *Handlers) claimItem(c *gin.Context) {
	buyer := auth.CurrentUser(c)
	db := store.GetDB()

	var transaction models.MarketTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var item models.MarketItem
		if err := tx.First(&item, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("Item not found")
			}
			return err
		}
		if item.Status != models.ItemAvailable {
			return invalidTransitionErr("Item is no longer available")
		}
		if item.OwnerID == buyer.ID {
			return forbiddenErr("You cannot claim your own item")
		}

		var pending int64
		err := tx.Model(&models.MarketTransaction{}).
			Where("item_id = ? AND buyer_id = ? AND status = ?", item.ID, buyer.ID, models.TransactionPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return invalidTransitionErr("You already have a pending request for this item")
		}

		res := tx.Model(&models.MarketItem{}).
			Where("id = ? AND status = ?", item.ID, models.ItemAvailable).
			Updates(map[string]interface{}{
				"status":     models.ItemReserved,
				"claimed_by": buyer.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidTransitionErr("Item is no longer available")
		}

		transaction = models.MarketTransaction{
			Reference: uuid.New().String(),
			ItemID:    item.ID,
			SellerID:  item.OwnerID,
			BuyerID:   buyer.ID,
			Status:    models.TransactionPending,
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		failFrom(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Claim request sent", "transaction": transaction})
}

type reviewTransactionReq struct {
	Action string `json:"action" binding:"required"`
}

// reviewTransaction lets the seller decide a pending claim. Approval
// completes the trade, pays out green score to both parties and bumps their
// transaction counters; rejection releases the item back to available.
// Decided transactions are terminal.
func (h *Handlers) reviewTransaction(c *gin.Context) {
	var req reviewTransactionReq
	if err := c.BindJSON(&req); err != nil || (req.Action != "approve" && req.Action != "reject") {
		fail(c, http.StatusBadRequest, "Action must be approve or reject")
		return
	}

	seller := auth.CurrentUser(c)
	now := h.now()
	db := store.GetDB()

	var transaction models.MarketTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&transaction, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("Transaction not found")
			}
			return err
		}
		if transaction.SellerID != seller.ID {
			return forbiddenErr("Only the seller can review this request")
		}

		next := models.TransactionRejected
		updates := map[string]interface{}{"status": models.TransactionRejected}
		if req.Action == "approve" {
			next = models.TransactionCompleted
			updates = map[string]interface{}{"status": models.TransactionCompleted, "completed_at": now}
		}

		// A transition only fires from pending; re-reviewing a decided
		// transaction conflicts instead of double-awarding points.
		res := tx.Model(&models.MarketTransaction{}).
			Where("id = ? AND status = ?", transaction.ID, models.TransactionPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidTransitionErr("Transaction has already been reviewed")
		}

		// The referenced item may have been deleted; the transaction still
		// gets decided, the item step is skipped.
		if req.Action == "approve" {
			if err := tx.Model(&models.MarketItem{}).
				Where("id = ?", transaction.ItemID).
				Update("status", models.ItemCompleted).Error; err != nil {
				return err
			}
			if err := rewards.Award(tx, transaction.SellerID, rewards.TradeSellerPayout, 0); err != nil {
				return err
			}
			if err := rewards.Award(tx, transaction.BuyerID, rewards.TradeBuyerPayout, 0); err != nil {
				return err
			}
			err := tx.Model(&models.User{}).
				Where("id IN ?", []uint{transaction.SellerID, transaction.BuyerID}).
				UpdateColumn("total_transactions", gorm.Expr("total_transactions + 1")).Error
			if err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.MarketItem{}).
				Where("id = ?", transaction.ItemID).
				Updates(map[string]interface{}{
					"status":     models.ItemAvailable,
					"claimed_by": nil,
				}).Error; err != nil {
				return err
			}
		}

		transaction.Status = next
		if next == models.TransactionCompleted {
			transaction.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		failFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Transaction %sd", req.Action),
		"transaction": transaction,
	})
}

func (h *Handlers) getMyTransactions(c *gin.Context) {
	user := auth.CurrentUser(c)
	var transactions []models.MarketTransaction
	err := store.GetDB().
		Where("buyer_id = ? OR seller_id = ?", user.ID, user.ID).
		Order("created_at desc").
		Find(&transactions).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(transactions), "transactions": transactions})
}

func (h *Handlers) adminGetAllItems(c *gin.Context) {
	var items []models.MarketItem
	if err := store.GetDB().Order("created_at desc").Find(&items).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "items": items})
}
