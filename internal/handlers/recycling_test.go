package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Vihanga-02/EcoLife/internal/models"
	"github.com/Vihanga-02/EcoLife/internal/store"

	"github.com/stretchr/testify/require"
)

func makeCenter(t *testing.T, name string, lat, lng float64, active bool) models.RecyclingCenter {
	t.Helper()
	center := models.RecyclingCenter{
		Name:            name,
		City:            "Colombo",
		Address:         "1 Main St",
		Latitude:        lat,
		Longitude:       lng,
		AcceptMaterials: []string{"Plastic", "Glass"},
		IsActive:        active,
	}
	require.NoError(t, store.GetDB().Create(&center).Error)
	return center
}

func TestNearbyCenters(t *testing.T) {
	r, _ := setupTest(t)
	near := makeCenter(t, "Near", 6.9271, 79.8612, true)
	far := makeCenter(t, "Far", 6.9771, 79.8612, true)        // ~5.5 km north
	makeCenter(t, "Inactive", 6.9272, 79.8612, false)         // right next door, but inactive
	makeCenter(t, "Remote", 7.2906, 80.6337, true)            // Kandy, ~95 km

	w := httpDo(r, "GET", "/api/recycling/centers/nearby?lat=6.9271&lng=79.8612&maxDist=10000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, float64(2), resp["count"])
	centers := resp["centers"].([]interface{})
	first := centers[0].(map[string]interface{})
	second := centers[1].(map[string]interface{})
	require.Equal(t, near.Name, first["name"])
	require.Equal(t, far.Name, second["name"])
	require.Less(t, first["distanceMeters"].(float64), second["distanceMeters"].(float64))

	// Tighter radius trims the list.
	w = httpDo(r, "GET", "/api/recycling/centers/nearby?lat=6.9271&lng=79.8612&maxDist=1000", "", nil)
	require.Equal(t, float64(1), decode(t, w)["count"])

	// Coordinates are mandatory.
	w = httpDo(r, "GET", "/api/recycling/centers/nearby?lat=6.9271", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCenterFiltersAndAdminGuard(t *testing.T) {
	r, h := setupTest(t)
	_, userToken := makeUser(t, h, "Plain", models.RoleUser)
	_, adminToken := makeUser(t, h, "Boss", models.RoleAdmin)

	body := map[string]interface{}{
		"name": "Greenway", "city": "Galle", "address": "2 Beach Rd",
		"longitude": 80.217, "latitude": 6.0329,
		"acceptMaterials": []string{"Paper"},
	}
	w := httpDo(r, "POST", "/api/recycling/centers", userToken, body)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httpDo(r, "POST", "/api/recycling/centers", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code)
	makeCenter(t, "Colombo Hub", 6.9271, 79.8612, true)

	w = httpDo(r, "GET", "/api/recycling/centers?city=galle", "", nil)
	resp := decode(t, w)
	require.Equal(t, float64(1), resp["count"])

	w = httpDo(r, "GET", "/api/recycling/centers?material=Paper", "", nil)
	resp = decode(t, w)
	require.Equal(t, float64(1), resp["count"])
	require.Equal(t, "Greenway", resp["centers"].([]interface{})[0].(map[string]interface{})["name"])
}

func TestSubmissionApproveAwardsOnce(t *testing.T) {
	r, h := setupTest(t)
	user, userToken := makeUser(t, h, "Recycler", models.RoleUser)
	admin, adminToken := makeUser(t, h, "Reviewer", models.RoleAdmin)
	center := makeCenter(t, "Hub", 6.9271, 79.8612, true)

	w := httpDo(r, "POST", "/api/recycling/submissions", userToken, map[string]interface{}{
		"centerId": center.ID, "materialType": "Plastic", "estimatedWeight": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["submission"].(map[string]interface{})["id"].(float64))

	w = httpDo(r, "PATCH", fmt.Sprintf("/api/recycling/submissions/%d/review", id), adminToken,
		map[string]interface{}{"status": "approved", "reviewNotes": "weighed on site"})
	require.Equal(t, http.StatusOK, w.Code)
	submission := decode(t, w)["submission"].(map[string]interface{})
	require.Equal(t, "approved", submission["status"])
	require.Equal(t, float64(admin.ID), submission["reviewedBy"])
	require.NotNil(t, submission["reviewedAt"])

	// round(4 * 3) = 12, granted exactly once.
	require.Equal(t, 12, reloadUser(t, user.ID).GreenScore)

	w = httpDo(r, "PATCH", fmt.Sprintf("/api/recycling/submissions/%d/review", id), adminToken,
		map[string]interface{}{"status": "approved"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 12, reloadUser(t, user.ID).GreenScore)
}

func TestSubmissionRejectAwardsNothing(t *testing.T) {
	r, h := setupTest(t)
	user, userToken := makeUser(t, h, "Hopeful", models.RoleUser)
	_, adminToken := makeUser(t, h, "Reviewer", models.RoleAdmin)
	center := makeCenter(t, "Hub", 6.9271, 79.8612, true)

	w := httpDo(r, "POST", "/api/recycling/submissions", userToken, map[string]interface{}{
		"centerId": center.ID, "materialType": "Glass", "estimatedWeight": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["submission"].(map[string]interface{})["id"].(float64))

	w = httpDo(r, "PATCH", fmt.Sprintf("/api/recycling/submissions/%d/review", id), adminToken,
		map[string]interface{}{"status": "rejected", "reviewNotes": "not verifiable"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, reloadUser(t, user.ID).GreenScore)

	// Rejected is terminal too.
	w = httpDo(r, "PATCH", fmt.Sprintf("/api/recycling/submissions/%d/review", id), adminToken,
		map[string]interface{}{"status": "approved"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 0, reloadUser(t, user.ID).GreenScore)
}

func TestSubmissionRequiresActiveCenter(t *testing.T) {
	r, h := setupTest(t)
	_, token := makeUser(t, h, "Eager", models.RoleUser)
	inactive := makeCenter(t, "Closed", 6.9, 79.8, false)

	w := httpDo(r, "POST", "/api/recycling/submissions", token, map[string]interface{}{
		"centerId": inactive.ID, "materialType": "Paper", "estimatedWeight": 1,
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httpDo(r, "POST", "/api/recycling/submissions", token, map[string]interface{}{
		"centerId": 4242, "materialType": "Paper", "estimatedWeight": 1,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMySubmissions(t *testing.T) {
	r, h := setupTest(t)
	_, token := makeUser(t, h, "Mine", models.RoleUser)
	_, otherToken := makeUser(t, h, "Theirs", models.RoleUser)
	center := makeCenter(t, "Hub", 6.9, 79.8, true)

	w := httpDo(r, "POST", "/api/recycling/submissions", token, map[string]interface{}{
		"centerId": center.ID, "materialType": "E-waste", "estimatedWeight": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = httpDo(r, "GET", "/api/recycling/submissions/my", token, nil)
	require.Equal(t, float64(1), decode(t, w)["count"])
	w = httpDo(r, "GET", "/api/recycling/submissions/my", otherToken, nil)
	require.Equal(t, float64(0), decode(t, w)["count"])
}
