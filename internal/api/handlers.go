package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skufu/MedValidator/internal/ocr"
	"github.com/Skufu/MedValidator/internal/prescription"
	"github.com/Skufu/MedValidator/internal/triage"
)

type handlers struct {
	logger zerolog.Logger
	chat   *triage.Store
	ocr    ocr.Extractor
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Prescriptions []prescription.MedicationEntry `json:"prescriptions"`
}

// validateRequest mirrors the prescription form. When Text is filled in it is
// parsed and replaces Prescriptions.
type validateRequest struct {
	Diagnosis     string                         `json:"diagnosis"`
	PatientInfo   prescription.PatientInfo       `json:"patientInfo"`
	Prescriptions []prescription.MedicationEntry `json:"prescriptions"`
	Text          string                         `json:"text"`
}

type validateResponse struct {
	prescription.ValidationReport
	Prescriptions []prescription.MedicationEntry `json:"prescriptions"`
}

type ocrResponse struct {
	Text          string                         `json:"text"`
	Prescriptions []prescription.MedicationEntry `json:"prescriptions"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	Reply   triage.Message `json:"reply"`
	Session triage.Session `json:"session"`
}

func (h *handlers) parsePrescription(c *gin.Context) {
	var payload parseRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	c.JSON(http.StatusOK, parseResponse{Prescriptions: prescription.Parse(payload.Text)})
}

func (h *handlers) validatePrescription(c *gin.Context) {
	var payload validateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	meds := payload.Prescriptions
	if strings.TrimSpace(payload.Text) != "" {
		meds = prescription.Parse(payload.Text)
	}
	if meds == nil {
		meds = []prescription.MedicationEntry{}
	}

	report := prescription.Validate(payload.Diagnosis, payload.PatientInfo, meds)
	h.logger.Debug().
		Str("request_id", c.GetString("request_id")).
		Str("overall", string(report.Overall)).
		Int("items", len(report.Items)).
		Msg("prescription validated")

	c.JSON(http.StatusOK, validateResponse{ValidationReport: report, Prescriptions: meds})
}

func (h *handlers) ocrPrescription(c *gin.Context) {
	if h.ocr == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ocr disabled"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image"})
		return
	}
	defer src.Close()

	text, err := h.ocr.Extract(c.Request.Context(), src)
	if err != nil {
		if errors.Is(err, ocr.ErrEmptyImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is empty"})
			return
		}
		h.logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("ocr failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "ocr failed"})
		return
	}

	c.JSON(http.StatusOK, ocrResponse{
		Text:          text,
		Prescriptions: ocr.ToEntries(ocr.ParseLines(text)),
	})
}

func (h *handlers) createSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.chat.Create())
}

func (h *handlers) getSession(c *gin.Context) {
	session, err := h.chat.Get(c.Param("id"))
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handlers) deleteSession(c *gin.Context) {
	if err := h.chat.Delete(c.Param("id")); err != nil {
		writeChatError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) sendMessage(c *gin.Context) {
	var payload messageRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	reply, session, err := h.chat.Send(c.Param("id"), payload.Content)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Reply: reply, Session: session})
}

func writeChatError(c *gin.Context, err error) {
	if errors.Is(err, triage.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
