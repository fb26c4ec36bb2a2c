package controller

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/service"
	apperrors "github.com/ikkim/dietprefs-client/internal/errors"
	"github.com/ikkim/dietprefs-client/internal/export"
	"github.com/ikkim/dietprefs-client/internal/middleware"
)

type SessionController struct {
	coordinator *service.SearchCoordinator
	detail      *service.VendorDetailSession
	display     service.DisplayService
	location    service.LocationProvider
	exporter    *export.XLSXExporter
}

func NewSessionController(
	coordinator *service.SearchCoordinator,
	detail *service.VendorDetailSession,
	display service.DisplayService,
	location service.LocationProvider,
	exporter *export.XLSXExporter,
) *SessionController {
	return &SessionController{
		coordinator: coordinator,
		detail:      detail,
		display:     display,
		location:    location,
		exporter:    exporter,
	}
}

type TogglePreferenceRequest struct {
	User       int    `json:"user" binding:"required,oneof=1 2"`
	Preference string `json:"preference" binding:"required"`
	Search     bool   `json:"search"`
}

type SetPriceRequest struct {
	User     int      `json:"user" binding:"required,oneof=1 2"`
	MaxPrice *float64 `json:"max_price"`
	Search   bool     `json:"search"`
}

type SortRequest struct {
	Column string `json:"column" binding:"required"`
}

type QueryRequest struct {
	Text string `json:"text"`
}

type LocationRequest struct {
	Latitude  *float64 `json:"lat" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"lng" binding:"omitempty,min=-180,max=180"`
}

type VisibleRangeRequest struct {
	Start int `json:"start" binding:"min=0"`
	End   int `json:"end" binding:"min=0"`
}

type SelectedIndexRequest struct {
	Index int `json:"index"`
}

type VoteRequest struct {
	Vote string `json:"vote" binding:"required"`
}

// GetSnapshot returns the session state
// GET /api/v1/session
func (ctrl *SessionController) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.coordinator.Snapshot())
}

// TogglePreference toggles one tag for a user
// POST /api/v1/session/preferences/toggle
func (ctrl *SessionController) TogglePreference(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req TogglePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"body": err.Error()})
		return
	}

	pref, ok := model.PreferenceByWireName(req.Preference)
	if !ok {
		pref, ok = model.PreferenceFromDisplay(req.Preference)
	}
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationUnknownTag, "Unknown dietary preference: "+req.Preference)
		return
	}

	selected, err := ctrl.coordinator.TogglePreference(model.UserSlot(req.User), pref)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "")
		return
	}
	if req.Search {
		ctrl.coordinator.ScheduleSearch()
	}

	log.Debug("Preference toggled", map[string]interface{}{
		"user":       req.User,
		"preference": pref.WireName,
		"selected":   selected,
	})
	c.JSON(http.StatusOK, gin.H{
		"selected": selected,
		"session":  ctrl.coordinator.Snapshot(),
	})
}

// SetMaxPrice sets or clears a user's price cap
// PUT /api/v1/session/price
func (ctrl *SessionController) SetMaxPrice(c *gin.Context) {
	var req SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"body": err.Error()})
		return
	}

	if err := ctrl.coordinator.SetMaxPrice(model.UserSlot(req.User), req.MaxPrice); err != nil {
		apperrors.RespondWithParsedError(c, err, "")
		return
	}
	if req.Search {
		ctrl.coordinator.ScheduleSearch()
	}

	c.JSON(http.StatusOK, ctrl.coordinator.Snapshot())
}

// ClearAll resets both users' filters and the search text
// POST /api/v1/session/clear
func (ctrl *SessionController) ClearAll(c *gin.Context) {
	ctrl.coordinator.ClearAll()
	c.JSON(http.StatusOK, ctrl.coordinator.Snapshot())
}

// SetSort selects a sort column
// PUT /api/v1/session/sort
func (ctrl *SessionController) SetSort(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"column": err.Error()})
		return
	}

	column, err := model.ParseSortColumn(req.Column)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "")
		return
	}

	applied := ctrl.coordinator.SetSortColumn(column)
	c.JSON(http.StatusOK, gin.H{
		"applied": applied,
		"session": ctrl.coordinator.Snapshot(),
	})
}

// SetQuery stores the search text and schedules a debounced search
// PUT /api/v1/session/query
func (ctrl *SessionController) SetQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"text": err.Error()})
		return
	}

	ctrl.coordinator.SetSearchText(req.Text)
	ctrl.coordinator.ScheduleSearch()

	c.JSON(http.StatusAccepted, ctrl.coordinator.Snapshot())
}

// Search runs a search now
// POST /api/v1/session/search
func (ctrl *SessionController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.coordinator.Search(c.Request.Context()); err != nil {
		log.Warn("Search failed", map[string]interface{}{"error": err.Error()})
		apperrors.RespondWithParsedError(c, err, "search")
		return
	}

	c.JSON(http.StatusOK, ctrl.coordinator.Snapshot())
}

// NextPage exposes or fetches the next page
// POST /api/v1/session/next-page
func (ctrl *SessionController) NextPage(c *gin.Context) {
	if err := ctrl.coordinator.LoadNextPage(c.Request.Context()); err != nil {
		apperrors.RespondWithParsedError(c, err, "next page")
		return
	}

	c.JSON(http.StatusOK, ctrl.coordinator.Snapshot())
}

// SetLocation sets the searcher's location; an empty body clears it
// PUT /api/v1/session/location
func (ctrl *SessionController) SetLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"location": err.Error()})
		return
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "lat and lng must be given together")
		return
	}

	if req.Latitude == nil {
		ctrl.coordinator.SetLocation(nil)
	} else {
		ctrl.coordinator.SetLocation(&model.Location{Latitude: *req.Latitude, Longitude: *req.Longitude})
	}
	c.JSON(http.StatusOK, ctrl.coordinator.Snapshot())
}

// RefreshLocation asks the configured provider for the device location
// POST /api/v1/session/location/refresh
func (ctrl *SessionController) RefreshLocation(c *gin.Context) {
	ctrl.coordinator.RefreshLocation(c.Request.Context(), ctrl.location)
	c.JSON(http.StatusOK, gin.H{
		"location": ctrl.coordinator.Location(),
	})
}

// UpdateVisibleRange records which rows are on screen
// PUT /api/v1/session/visible-range
func (ctrl *SessionController) UpdateVisibleRange(c *gin.Context) {
	var req VisibleRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"range": err.Error()})
		return
	}

	ctrl.coordinator.UpdateVisibleRange(req.Start, req.End)
	c.Status(http.StatusNoContent)
}

// ClearError dismisses the session and detail errors
// DELETE /api/v1/session/error
func (ctrl *SessionController) ClearError(c *gin.Context) {
	ctrl.coordinator.ClearError()
	ctrl.detail.ClearError()
	c.Status(http.StatusNoContent)
}

// OpenVendor selects a vendor from the results and loads its menu
// POST /api/v1/session/vendors/:id/open
func (ctrl *SessionController) OpenVendor(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid vendor ID")
		return
	}

	vendor, err := ctrl.coordinator.SelectVendor(id)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "menu items")
		return
	}

	if err := ctrl.detail.Open(c.Request.Context(), vendor, ctrl.coordinator.ItemCriteria()); err != nil {
		log.Warn("Failed to open vendor", map[string]interface{}{
			"vendor_id": id,
			"error":     err.Error(),
		})
		apperrors.RespondWithParsedError(c, err, "menu items")
		return
	}

	c.JSON(http.StatusOK, ctrl.detail.Snapshot())
}

// GetDetail returns the open vendor's menu
// GET /api/v1/session/detail
func (ctrl *SessionController) GetDetail(c *gin.Context) {
	if _, err := ctrl.coordinator.SelectedVendor(); err != nil {
		apperrors.RespondWithParsedError(c, err, "menu items")
		return
	}
	c.JSON(http.StatusOK, ctrl.detail.Snapshot())
}

// UpdateSelectedIndex follows the detail scroll position
// PUT /api/v1/session/detail/selected
func (ctrl *SessionController) UpdateSelectedIndex(c *gin.Context) {
	var req SelectedIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"index": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selected_index": ctrl.detail.UpdateSelectedIndex(req.Index),
	})
}

// Vote votes on a menu item of the open vendor
// POST /api/v1/session/items/:id/vote
func (ctrl *SessionController) Vote(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil || itemID <= 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid item ID")
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"vote": err.Error()})
		return
	}
	vote, err := model.ParseVoteType(req.Vote)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "vote")
		return
	}

	if err := ctrl.detail.Vote(c.Request.Context(), itemID, vote); err != nil {
		if !errors.Is(err, service.ErrItemNotFound) {
			log.Warn("Vote failed", map[string]interface{}{
				"item_id": itemID,
				"error":   err.Error(),
			})
		}
		apperrors.RespondWithParsedError(c, err, "vote")
		return
	}

	c.JSON(http.StatusOK, ctrl.detail.Snapshot())
}

// Export downloads the visible results (and open menu) as XLSX
// GET /api/v1/session/export.xlsx
func (ctrl *SessionController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	snap := ctrl.coordinator.Snapshot()
	wb := export.Workbook{
		User1Filters: snap.User1.DisplayText,
		User2Filters: snap.User2.DisplayText,
		SearchQuery:  snap.SearchQuery,
		Sort:         snap.Sort,
		TotalResults: snap.TotalResults,
		Vendors:      snap.Vendors,
	}
	if c.Query("all") == "true" {
		wb.Vendors = ctrl.coordinator.AllResults()
	}
	if snap.SelectedVendor != nil {
		detail := ctrl.detail.Snapshot()
		if detail.Vendor != nil && detail.Vendor.ID == snap.SelectedVendor.ID {
			wb.MenuVendor = detail.Vendor.Name
			wb.MenuItems = detail.Items
		}
	}

	var buf bytes.Buffer
	if err := ctrl.exporter.Export(&buf, wb); err != nil {
		log.Error("Failed to export results", err, nil)
		apperrors.RespondWithParsedError(c, err, "export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ListPreferences returns the selectable tags with their current labels
// GET /api/v1/preferences
func (ctrl *SessionController) ListPreferences(c *gin.Context) {
	prefs := model.AllPreferences()
	out := make([]gin.H, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, gin.H{
			"wire_name":    p.WireName,
			"display_name": ctrl.display.DisplayName(p),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"preferences": out,
		"count":       len(out),
	})
}
