package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fooddb/diet-service/internal/profiles"
)

// SaveProfileRequest stores a named profile. Config is kept opaque and
// round-tripped to the client unchanged.
type SaveProfileRequest struct {
	Name      string              `json:"name"`
	Config    json.RawMessage     `json:"config" binding:"required"`
	Menu      []profiles.MenuItem `json:"menu"`
	Overwrite bool                `json:"overwrite"`
}

// SaveStateRequest autosaves the current working state.
type SaveStateRequest struct {
	Config json.RawMessage     `json:"config" binding:"required"`
	Menu   []profiles.MenuItem `json:"menu"`
}

// SetLastProfileRequest marks a profile as the last active one.
type SetLastProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListProfiles returns profile summaries and the last active profile
// GET /profiles
func ListProfiles(c *gin.Context) {
	entries, last, err := profileStore.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var lastOut any
	if last != "" {
		lastOut = last
	}
	c.JSON(http.StatusOK, gin.H{
		"profiles":     entries,
		"last_profile": lastOut,
	})
}

// GetProfile returns one stored profile
// GET /profile/:name
func GetProfile(c *gin.Context) {
	p, err := profileStore.Get(c.Request.Context(), c.Param("name"))
	if errors.Is(err, profiles.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// SaveProfile stores a profile and marks it as last active
// POST /profiles
func SaveProfile(c *gin.Context) {
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		req.Name = "My Profile"
	}

	p, err := profileStore.Save(c.Request.Context(), req.Name, req.Config, req.Menu, req.Overwrite)
	if errors.Is(err, profiles.ErrExists) {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Profile '%s' already exists", req.Name)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved", "name": p.Name})
}

// DeleteProfile removes a profile; deleting a missing one succeeds
// DELETE /profile/:name
func DeleteProfile(c *gin.Context) {
	if err := profileStore.Delete(c.Request.Context(), c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// SetLastProfile marks a profile as last active
// POST /profile/last
func SetLastProfile(c *gin.Context) {
	var req SetLastProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := profileStore.SetLast(c.Request.Context(), req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "last_profile": req.Name})
}

// GetLatestState returns the autosaved working state
// GET /state/latest
func GetLatestState(c *gin.Context) {
	st, err := profileStore.LatestState(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

// SaveLatestState autosaves the current working state
// POST /state/latest
func SaveLatestState(c *gin.Context) {
	var req SaveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := profileStore.SaveLatestState(c.Request.Context(), req.Config, req.Menu); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "State autosaved"})
}

// ExportUserData returns the whole user data store as one document
// GET /userdata
func ExportUserData(c *gin.Context) {
	raw, err := profileStore.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
