package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/app"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// Handlers is the REST surface for the out-of-process collaborators:
// the session status source, the enrollment authority's management
// side, and the attendance/audit inspection endpoints.
type Handlers struct {
	Gw          *app.Gateway
	Enrollments *app.EnrollmentStore
}

type updateStatusBody struct {
	Status domain.EventStatus `json:"status" binding:"required,oneof=scheduled live finished"`
}

// UpdateEventStatus is the hook the event status source calls. A
// transition to live or finished triggers the lifecycle broadcast;
// the notifier absorbs duplicate calls. Finishing an event also
// finalizes attendance while the memberships are still alive.
func (h *Handlers) UpdateEventStatus(c *gin.Context) {
	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	eventID := domain.EventID(c.Param("id"))

	announced := false
	switch body.Status {
	case domain.StatusLive:
		announced = h.Gw.Notifier.MarkStarted(eventID)
	case domain.StatusFinished:
		announced = h.Gw.Notifier.MarkEnded(eventID)
		h.Gw.Attendance.Finalize(eventID)
	case domain.StatusScheduled:
		// Nothing to announce before the event goes live.
	}

	log.Info().Str("module", "adapters.http").
		Str("event_id", string(eventID)).
		Str("status", string(body.Status)).
		Bool("announced", announced).
		Msg("event status update")
	c.JSON(http.StatusOK, gin.H{
		"eventId":   eventID,
		"status":    body.Status,
		"announced": announced,
	})
}

func (h *Handlers) ListMembers(c *gin.Context) {
	eventID := domain.EventID(c.Param("id"))
	members := h.Gw.Registry.Members(eventID)
	c.JSON(http.StatusOK, gin.H{
		"eventId":        eventID,
		"connectedCount": len(members),
		"members":        members,
	})
}

func (h *Handlers) EventAttendance(c *gin.Context) {
	eventID := domain.EventID(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"eventId":    eventID,
		"attendance": h.Gw.Attendance.ByEvent(eventID),
	})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Gw.Registry.Rooms()})
}

func (h *Handlers) QueryAudit(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries := h.Gw.Audit.Query(
		domain.ParticipantID(c.Query("participantId")),
		c.Query("action"),
		limit,
	)
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type createEnrollmentBody struct {
	ParticipantID string                  `json:"participantId" binding:"required"`
	EventID       string                  `json:"eventId" binding:"required"`
	Status        domain.EnrollmentStatus `json:"status" binding:"omitempty,oneof=pending approved rejected"`
}

func (h *Handlers) CreateEnrollment(c *gin.Context) {
	var body createEnrollmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment"})
		return
	}
	e, err := h.Enrollments.Create(
		domain.ParticipantID(body.ParticipantID),
		domain.EventID(body.EventID),
		body.Status,
	)
	if errors.Is(err, app.ErrEnrollmentExists) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, e)
}

type updateEnrollmentBody struct {
	Status domain.EnrollmentStatus `json:"status" binding:"required,oneof=pending approved rejected"`
}

func (h *Handlers) UpdateEnrollmentStatus(c *gin.Context) {
	var body updateEnrollmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	e, err := h.Enrollments.UpdateStatus(c.Param("id"), body.Status)
	if errors.Is(err, app.ErrEnrollmentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handlers) EventEnrollments(c *gin.Context) {
	eventID := domain.EventID(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"eventId":     eventID,
		"enrollments": h.Enrollments.ByEvent(eventID),
	})
}
