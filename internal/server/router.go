package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iux-juridico/invitaciones/backend/internal/confirmations"
	"github.com/iux-juridico/invitaciones/backend/internal/events"
	"github.com/iux-juridico/invitaciones/backend/internal/guests"
	"github.com/iux-juridico/invitaciones/backend/internal/invitations"
	"go.uber.org/zap"
)

const (
	adminTokenHeader = "X-Admin-Token"
	serviceVersion   = "1.0.0"
)

var (
	errMissingConfirmations = errors.New("confirmations service dependency required")
	errMissingInvitations   = errors.New("invitations service dependency required")
	errMissingGuests        = errors.New("guests service dependency required")
	errMissingEvents        = errors.New("events service dependency required")
)

// Dependencies wires the HTTP surface to the domain services.
type Dependencies struct {
	Confirmations *confirmations.Service
	Invitations   *invitations.Service
	Guests        *guests.Service
	Events        *events.Service
	// AdminToken, when non-empty, gates the administrative endpoints.
	// When empty those endpoints are open.
	AdminToken string
	Logger     *zap.Logger
}

// NewHTTPHandler assembles the gin router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Confirmations == nil {
		return nil, errMissingConfirmations
	}
	if deps.Invitations == nil {
		return nil, errMissingInvitations
	}
	if deps.Guests == nil {
		return nil, errMissingGuests
	}
	if deps.Events == nil {
		return nil, errMissingEvents
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", adminTokenHeader},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		confirmations: deps.Confirmations,
		invitations:   deps.Invitations,
		guests:        deps.Guests,
		events:        deps.Events,
		adminToken:    deps.AdminToken,
		logger:        logger,
	}

	router.GET("/health", handler.handleHealth)

	api := router.Group("/api")
	api.POST("/confirmations", handler.handleSubmitConfirmation)
	api.GET("/confirmations/folio/:folio", handler.handleConfirmationByFolio)
	api.POST("/confirmations/send-pass-email", handler.handleSendPassEmail)
	api.GET("/events", handler.handleListEvents)
	api.GET("/events/:id", handler.handleGetEvent)
	api.GET("/invitations/token/:token", handler.handleInvitationByToken)

	admin := api.Group("/")
	admin.Use(handler.requireAdminToken)
	admin.GET("/confirmations", handler.handleListConfirmations)
	admin.POST("/events", handler.handleCreateEvent)
	admin.GET("/guests", handler.handleListGuests)
	admin.POST("/guests", handler.handleCreateGuest)
	admin.GET("/guests/:id", handler.handleGetGuest)
	admin.PUT("/guests/:id", handler.handleUpdateGuest)
	admin.DELETE("/guests/:id", handler.handleDeleteGuest)
	admin.GET("/invitations", handler.handleListInvitations)
	admin.POST("/invitations", handler.handleCreateInvitation)
	admin.POST("/invitations/:id/send", handler.handleSendInvitation)

	return router, nil
}

type httpHandler struct {
	confirmations *confirmations.Service
	invitations   *invitations.Service
	guests        *guests.Service
	events        *events.Service
	adminToken    string
	logger        *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": serviceVersion})
}

// requireAdminToken gates administrative endpoints behind the configured
// token. An unconfigured token leaves them open.
func (h *httpHandler) requireAdminToken(c *gin.Context) {
	if h.adminToken == "" {
		c.Next()
		return
	}
	supplied := c.GetHeader(adminTokenHeader)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(h.adminToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token de administrador inválido"})
		return
	}
	c.Next()
}

type confirmationRequestPayload struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone"`
	WillAttend    bool   `json:"will_attend"`
	Guests        int    `json:"guests" binding:"gte=0"`
	PrivacyAccept bool   `json:"privacy_accept"`
	PassImage     string `json:"pass_image"`
}

func (h *httpHandler) handleSubmitConfirmation(c *gin.Context) {
	var request confirmationRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solicitud inválida"})
		return
	}

	record, err := h.confirmations.SubmitConfirmation(c.Request.Context(), c.ClientIP(), confirmations.SubmissionInput{
		Name:          request.Name,
		Email:         request.Email,
		Phone:         request.Phone,
		WillAttend:    request.WillAttend,
		Guests:        request.Guests,
		PrivacyAccept: request.PrivacyAccept,
		PassImage:     request.PassImage,
	})
	if err != nil {
		h.writeSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) writeSubmissionError(c *gin.Context, err error) {
	var duplicate *confirmations.DuplicateError
	switch {
	case errors.Is(err, confirmations.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Demasiadas solicitudes, intenta de nuevo en un minuto",
		})
	case errors.Is(err, confirmations.ErrConsentRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Debes aceptar el aviso de privacidad",
		})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Ya existe una confirmación para " + duplicate.Email,
		})
	default:
		h.logger.Error("confirmation submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo guardar la confirmación"})
	}
}

func (h *httpHandler) handleListConfirmations(c *gin.Context) {
	c.JSON(http.StatusOK, h.confirmations.ListConfirmations())
}

func (h *httpHandler) handleConfirmationByFolio(c *gin.Context) {
	record, err := h.confirmations.ConfirmationByFolio(c.Param("folio"))
	if errors.Is(err, confirmations.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "confirmación no encontrada"})
		return
	}
	c.JSON(http.StatusOK, record)
}

type passEmailRequestPayload struct {
	Folio     string `json:"folio" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name" binding:"required"`
	PassImage string `json:"pass_image"`
}

func (h *httpHandler) handleSendPassEmail(c *gin.Context) {
	var request passEmailRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solicitud inválida"})
		return
	}

	result, err := h.confirmations.DispatchPassEmail(c.Request.Context(), request.Folio, request.Email, request.Name, request.PassImage)
	if errors.Is(err, confirmations.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "confirmación no encontrada"})
		return
	}
	if err != nil {
		h.logger.Error("pass email dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo enviar el pase"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type eventRequestPayload struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	MaxGuests   int       `json:"max_guests"`
}

func (h *httpHandler) handleCreateEvent(c *gin.Context) {
	var request eventRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solicitud inválida"})
		return
	}

	event, err := h.events.Create(events.CreateInput{
		Title:       request.Title,
		Description: request.Description,
		EventDate:   request.EventDate,
		Location:    request.Location,
		MaxGuests:   request.MaxGuests,
	})
	if err != nil {
		h.logger.Error("event creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo crear el evento"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *httpHandler) handleListEvents(c *gin.Context) {
	list, err := h.events.List()
	if err != nil {
		h.logger.Error("event listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron obtener los eventos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

func (h *httpHandler) handleGetEvent(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	event, err := h.events.Get(id)
	if errors.Is(err, events.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "evento no encontrado"})
		return
	}
	if err != nil {
		h.logger.Error("event lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo obtener el evento"})
		return
	}
	c.JSON(http.StatusOK, event)
}

type guestRequestPayload struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Notes     string `json:"notes"`
}

func (h *httpHandler) handleCreateGuest(c *gin.Context) {
	var request guestRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solicitud inválida"})
		return
	}

	guest, err := h.guests.Create(guests.CreateInput{
		Email:     request.Email,
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     request.Phone,
		Company:   request.Company,
		Notes:     request.Notes,
	})
	if errors.Is(err, guests.ErrDuplicateEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe un invitado con este email"})
		return
	}
	if err != nil {
		h.logger.Error("guest creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo crear el invitado"})
		return
	}
	c.JSON(http.StatusCreated, guest)
}

func (h *httpHandler) handleListGuests(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	list, err := h.guests.List(offset, limit)
	if err != nil {
		h.logger.Error("guest listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron obtener los invitados"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) handleGetGuest(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	guest, err := h.guests.Get(id)
	if errors.Is(err, guests.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitado no encontrado"})
		return
	}
	if err != nil {
		h.logger.Error("guest lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo obtener el invitado"})
		return
	}
	c.JSON(http.StatusOK, guest)
}

type guestUpdatePayload struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Notes     *string `json:"notes"`
}

func (h *httpHandler) handleUpdateGuest(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	var request guestUpdatePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solicitud inválida"})
		return
	}

	guest, err := h.guests.Update(id, guests.UpdateInput{
		Email:     request.Email,
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Phone:     request.Phone,
		Company:   request.Company,
		Notes:     request.Notes,
	})
	switch {
	case errors.Is(err, guests.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invitado no encontrado"})
	case errors.Is(err, guests.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe un invitado con este email"})
	case err != nil:
		h.logger.Error("guest update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo actualizar el invitado"})
	default:
		c.JSON(http.StatusOK, guest)
	}
}

func (h *httpHandler) handleDeleteGuest(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	err = h.guests.Delete(id)
	if errors.Is(err, guests.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitado no encontrado"})
		return
	}
	if err != nil {
		h.logger.Error("guest deletion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo eliminar el invitado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitado eliminado correctamente"})
}

type invitationRequestPayload struct {
	EventID    int    `json:"event_id" binding:"required"`
	GuestName  string `json:"guest_name" binding:"required"`
	GuestEmail string `json:"guest_email" binding:"required,email"`
}

func (h *httpHandler) handleCreateInvitation(c *gin.Context) {
	var request invitationRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solicitud inválida"})
		return
	}

	record, err := h.invitations.Create(invitations.CreateInput{
		EventID:    request.EventID,
		GuestName:  request.GuestName,
		GuestEmail: request.GuestEmail,
	})
	switch {
	case errors.Is(err, invitations.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "evento no encontrado"})
	case errors.Is(err, invitations.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ya existe una invitación para este invitado en este evento"})
	case err != nil:
		h.logger.Error("invitation creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo crear la invitación"})
	default:
		c.JSON(http.StatusCreated, record)
	}
}

func (h *httpHandler) handleListInvitations(c *gin.Context) {
	c.JSON(http.StatusOK, h.invitations.List())
}

func (h *httpHandler) handleInvitationByToken(c *gin.Context) {
	record, info, err := h.invitations.ByToken(c.Param("token"))
	if errors.Is(err, invitations.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitación no encontrada"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invitation": record,
		"event":      gin.H{"id": info.ID, "title": info.Title},
	})
}

func (h *httpHandler) handleSendInvitation(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	record, err := h.invitations.MarkSent(int(id))
	if errors.Is(err, invitations.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invitación no encontrada"})
		return
	}
	if err != nil {
		h.logger.Error("invitation send failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo enviar la invitación"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitación enviada correctamente", "invitation": record})
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
