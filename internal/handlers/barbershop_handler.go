package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/c50bossio/6fb-booking-sub003/internal/httperr"
	"github.com/c50bossio/6fb-booking-sub003/internal/media"
	"github.com/c50bossio/6fb-booking-sub003/internal/middleware"
	"github.com/c50bossio/6fb-booking-sub003/internal/models"
)

type BarbershopHandler struct {
	db      *gorm.DB
	storage *media.Storage
}

func NewBarbershopHandler(db *gorm.DB, storage *media.Storage) *BarbershopHandler {
	return &BarbershopHandler{db: db, storage: storage}
}

type UpdateBarbershopConfigRequest struct {
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
	Timezone          *string `json:"timezone"`

	// regras de remarcação
	BufferMinutes *int  `json:"buffer_minutes"`
	WorkDayStart  *int  `json:"work_day_start"`
	WorkDayEnd    *int  `json:"work_day_end"`
	AllowAdjacent *bool `json:"allow_adjacent"`
	RiskThreshold *int  `json:"risk_threshold"`
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
		return
	}

	c.JSON(http.StatusOK, shop)
}

func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
		return
	}

	var req UpdateBarbershopConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
			return
		}
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			httperr.BadRequest(c, "invalid_timezone", "Timezone inválido.")
			return
		}
		shop.Timezone = *req.Timezone
	}

	if req.BufferMinutes != nil {
		if *req.BufferMinutes < 0 || *req.BufferMinutes > 120 {
			httperr.BadRequest(c, "invalid_buffer", "Intervalo entre atendimentos inválido.")
			return
		}
		shop.BufferMinutes = *req.BufferMinutes
	}

	if req.WorkDayStart != nil {
		shop.WorkDayStart = *req.WorkDayStart
	}
	if req.WorkDayEnd != nil {
		shop.WorkDayEnd = *req.WorkDayEnd
	}
	if shop.WorkDayStart < 0 || shop.WorkDayEnd > 24 || shop.WorkDayStart >= shop.WorkDayEnd {
		httperr.BadRequest(c, "invalid_work_window", "Janela de funcionamento inválida.")
		return
	}

	if req.AllowAdjacent != nil {
		shop.AllowAdjacent = *req.AllowAdjacent
	}

	if req.RiskThreshold != nil {
		if *req.RiskThreshold < 0 || *req.RiskThreshold > 100 {
			httperr.BadRequest(c, "invalid_risk_threshold", "Limiar de risco deve estar entre 0 e 100.")
			return
		}
		shop.RiskThreshold = *req.RiskThreshold
	}

	if err := h.db.Save(&shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_barbershop", "Erro ao salvar as configurações da barbearia.")
		return
	}

	c.JSON(http.StatusOK, shop)
}

// UploadLogo recebe o arquivo multipart, normaliza para WebP e guarda
// a URL pública na barbearia.
func (h *BarbershopHandler) UploadLogo(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	if h.storage == nil {
		httperr.Internal(c, "storage_unconfigured", "Upload de imagens não está configurado.")
		return
	}

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		httperr.NotFound(c, "barbershop_not_found", "Barbearia não encontrada.")
		return
	}

	file, err := c.FormFile("logo")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Arquivo de logo obrigatório.")
		return
	}

	src, err := file.Open()
	if err != nil {
		httperr.Internal(c, "failed_to_read_file", "Erro ao ler o arquivo.")
		return
	}
	defer src.Close()

	normalized, err := media.NormalizeLogo(src)
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Imagem inválida.")
		return
	}

	url, err := h.storage.UploadLogo(c.Request.Context(), barbershopID, normalized)
	if err != nil {
		httperr.Internal(c, "failed_to_upload", "Erro ao enviar o logo.")
		return
	}

	shop.LogoURL = url
	if err := h.db.Save(&shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_barbershop", "Erro ao salvar as configurações da barbearia.")
		return
	}

	c.JSON(http.StatusOK, shop)
}
