package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/stretchr/testify/require"
)

func seedTariffs(t *testing.T) {
	t.Helper()
	max := 100.0
	require.NoError(t, store.GetDB().Create(&models.Tariff{
		BlockName: "Block 1", MinUnits: 0, MaxUnits: &max, UnitRate: 5, FixedCharge: 50, IsActive: true,
	}).Error)
	require.NoError(t, store.GetDB().Create(&models.Tariff{
		BlockName: "Block 2", MinUnits: 100, UnitRate: 8, FixedCharge: 100, IsActive: true,
	}).Error)
}

func TestApplianceCRUD(t *testing.T) {
	r, h := setupTest(t)
	_, token := makeUser(t, h, "Nimal", models.RoleUser)

	w := httpDo(r, "POST", "/api/energy/appliances", token, map[string]interface{}{
		"name": "Fridge", "wattage": 300, "category": "Kitchen",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	appliance := decode(t, w)["appliance"].(map[string]interface{})
	require.Equal(t, "off", appliance["status"])
	id := uint(appliance["id"].(float64))

	// Missing wattage is rejected.
	w = httpDo(r, "POST", "/api/energy/appliances", token, map[string]interface{}{"name": "Broken"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown category is rejected, not defaulted.
	w = httpDo(r, "POST", "/api/energy/appliances", token, map[string]interface{}{
		"name": "X", "wattage": 10, "category": "Garage",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httpDo(r, "GET", "/api/energy/appliances", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(1), decode(t, w)["count"])

	w = httpDo(r, "PUT", fmt.Sprintf("/api/energy/appliances/%d", id), token, map[string]interface{}{
		"name": "Fridge XL", "wattage": 400, "category": "Kitchen",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, "DELETE", fmt.Sprintf("/api/energy/appliances/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, "GET", "/api/energy/appliances", token, nil)
	require.Equal(t, float64(0), decode(t, w)["count"])
}

func TestToggleAccruesUsage(t *testing.T) {
	r, h := setupTest(t)
	user, token := makeUser(t, h, "Kamala", models.RoleUser)

	appliance := models.Appliance{UserID: user.ID, Name: "Heater", Wattage: 2000, Status: models.ApplianceOff}
	require.NoError(t, store.GetDB().Create(&appliance).Error)
	path := fmt.Sprintf("/api/energy/appliances/%d/toggle", appliance.ID)

	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return t0 }

	// Turn on: activation recorded, nothing accrued yet.
	w := httpDo(r, "PATCH", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["appliance"].(map[string]interface{})
	require.Equal(t, "on", got["status"])
	require.NotNil(t, got["lastStartTime"])
	require.Equal(t, float64(0), got["totalKwhThisMonth"])
	require.Empty(t, got["usageSessions"])

	// Turn off after 3 hours: 2000W * 3h = 6 kWh in one closed session.
	h.now = func() time.Time { return t0.Add(3 * time.Hour) }
	w = httpDo(r, "PATCH", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode(t, w)["appliance"].(map[string]interface{})
	require.Equal(t, "off", got["status"])
	require.Nil(t, got["lastStartTime"])
	require.Equal(t, 6.0, got["totalKwhThisMonth"])
	sessions := got["usageSessions"].([]interface{})
	require.Len(t, sessions, 1)
	require.Equal(t, 6.0, sessions[0].(map[string]interface{})["kwhUsed"])

	// Immediate on/off accrues ~0, never negative, and total never drops.
	w = httpDo(r, "PATCH", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = httpDo(r, "PATCH", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode(t, w)["appliance"].(map[string]interface{})
	require.Equal(t, 6.0, got["totalKwhThisMonth"])
	require.Len(t, got["usageSessions"].([]interface{}), 2)
}

func TestToggleNotOwned(t *testing.T) {
	r, h := setupTest(t)
	owner, _ := makeUser(t, h, "Owner", models.RoleUser)
	_, otherToken := makeUser(t, h, "Intruder", models.RoleUser)

	appliance := models.Appliance{UserID: owner.ID, Name: "Fan", Wattage: 50}
	require.NoError(t, store.GetDB().Create(&appliance).Error)

	w := httpDo(r, "PATCH", fmt.Sprintf("/api/energy/appliances/%d/toggle", appliance.ID), otherToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetUsage(t *testing.T) {
	r, h := setupTest(t)
	user, token := makeUser(t, h, "Resetter", models.RoleUser)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	appliance := models.Appliance{
		UserID: user.ID, Name: "AC", Wattage: 1200,
		Status: models.ApplianceOn, LastStartTime: &start, TotalKwhThisMonth: 12.5,
	}
	require.NoError(t, store.GetDB().Create(&appliance).Error)
	path := fmt.Sprintf("/api/energy/appliances/%d/reset-usage", appliance.ID)

	// Resetting a running appliance is refused.
	w := httpDo(r, "POST", path, token, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	h.now = func() time.Time { return start.Add(time.Hour) }
	httpDo(r, "PATCH", fmt.Sprintf("/api/energy/appliances/%d/toggle", appliance.ID), token, nil)

	w = httpDo(r, "POST", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["appliance"].(map[string]interface{})
	require.Equal(t, float64(0), got["totalKwhThisMonth"])
	require.Empty(t, got["usageSessions"])
}

func TestEstimateBillUsageBased(t *testing.T) {
	r, h := setupTest(t)
	seedTariffs(t)
	user, token := makeUser(t, h, "Biller", models.RoleUser)

	db := store.GetDB()
	require.NoError(t, db.Create(&models.Appliance{UserID: user.ID, Name: "A", Wattage: 100, TotalKwhThisMonth: 50}).Error)
	require.NoError(t, db.Create(&models.Appliance{UserID: user.ID, Name: "B", Wattage: 100, TotalKwhThisMonth: 30}).Error)

	w := httpDo(r, "GET", "/api/energy/estimate-bill", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, 80.0, resp["totalKwh"])
	require.Equal(t, 450.0, resp["estimatedBill"]) // 50 + 80*5
	require.Equal(t, "Block 1", resp["tariffApplied"])
	require.Equal(t, float64(2), resp["appliances"])

	// Push the total into the unbounded block.
	require.NoError(t, db.Create(&models.Appliance{UserID: user.ID, Name: "C", Wattage: 100, TotalKwhThisMonth: 70}).Error)
	w = httpDo(r, "GET", "/api/energy/estimate-bill", token, nil)
	resp = decode(t, w)
	require.Equal(t, 150.0, resp["totalKwh"])
	require.Equal(t, 1300.0, resp["estimatedBill"]) // 100 + 150*8
	require.Equal(t, "Block 2", resp["tariffApplied"])
}

func TestEstimateBillNoMatchingTariff(t *testing.T) {
	r, h := setupTest(t)
	user, token := makeUser(t, h, "Unmatched", models.RoleUser)
	require.NoError(t, store.GetDB().Create(&models.Appliance{UserID: user.ID, Name: "A", Wattage: 100, TotalKwhThisMonth: 10}).Error)

	// No tariffs configured: zero bill is a reported outcome, not an error.
	w := httpDo(r, "GET", "/api/energy/estimate-bill", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, 0.0, resp["estimatedBill"])
	require.Equal(t, "No matching tariff", resp["tariffApplied"])
}

func TestEstimateScheduleBased(t *testing.T) {
	r, h := setupTest(t)
	seedTariffs(t)
	user, token := makeUser(t, h, "Planner", models.RoleUser)

	db := store.GetDB()
	require.NoError(t, db.Create(&models.Appliance{UserID: user.ID, Name: "AC", Wattage: 1000, HoursPerDay: 5, DaysPerMonth: 30}).Error)
	require.NoError(t, db.Create(&models.Appliance{UserID: user.ID, Name: "TV", Wattage: 500, HoursPerDay: 2, DaysPerMonth: 30}).Error)
	require.NoError(t, db.Create(&models.Appliance{UserID: user.ID, Name: "Lamp", Wattage: 60}).Error)

	w := httpDo(r, "GET", "/api/energy/estimate-usage", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, 180.0, resp["totalEstimatedKwh"])
	require.Equal(t, 1540.0, resp["estimatedBill"]) // 100 + 180*8
	require.Equal(t, "Block 2", resp["tariffApplied"])

	appliances := resp["appliances"].([]interface{})
	require.Len(t, appliances, 3)
	byName := map[string]map[string]interface{}{}
	for _, a := range appliances {
		m := a.(map[string]interface{})
		byName[m["name"].(string)] = m
	}
	require.Equal(t, 150.0, byName["AC"]["estimatedKwh"])
	require.InDelta(t, 1283.33, byName["AC"]["estimatedCost"].(float64), 0.001)
	require.InDelta(t, 256.67, byName["TV"]["estimatedCost"].(float64), 0.001)
	// Unconfigured appliance contributes nothing.
	require.Equal(t, 0.0, byName["Lamp"]["estimatedKwh"])
	require.Equal(t, 0.0, byName["Lamp"]["estimatedCost"])
}

func TestTariffAdminCRUD(t *testing.T) {
	r, h := setupTest(t)
	_, userToken := makeUser(t, h, "Plain", models.RoleUser)
	_, adminToken := makeUser(t, h, "Boss", models.RoleAdmin)

	body := map[string]interface{}{"blockName": "Base", "minUnits": 0, "unitRate": 5, "fixedCharge": 50}
	w := httpDo(r, "POST", "/api/energy/tariffs", userToken, body)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httpDo(r, "POST", "/api/energy/tariffs", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)["tariff"].(map[string]interface{})
	id := uint(created["id"].(float64))

	// Inverted range is rejected.
	w = httpDo(r, "POST", "/api/energy/tariffs", adminToken, map[string]interface{}{
		"blockName": "Bad", "minUnits": 100, "maxUnits": 50, "unitRate": 1, "fixedCharge": 0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httpDo(r, "GET", "/api/energy/tariffs", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["tariffs"].([]interface{}), 1)

	w = httpDo(r, "PUT", fmt.Sprintf("/api/energy/tariffs/%d", id), adminToken, map[string]interface{}{
		"blockName": "Base v2", "minUnits": 0, "unitRate": 6, "fixedCharge": 55,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(r, "DELETE", fmt.Sprintf("/api/energy/tariffs/%d", id), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = httpDo(r, "DELETE", fmt.Sprintf("/api/energy/tariffs/%d", id), adminToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
