package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"xe-rate-service/internal/domain/model"
	"xe-rate-service/internal/domain/ports"
	"xe-rate-service/internal/service"
	"xe-rate-service/pkg/logger"
	"xe-rate-service/pkg/utils"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Handler struct {
	service ports.ExchangeService
	log     *logger.Logger
}

func NewHandler(service ports.ExchangeService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func currencyParams(r *http.Request) (model.Currency, model.Currency) {
	query := r.URL.Query()
	return model.NormalizeCurrency(query.Get("from")), model.NormalizeCurrency(query.Get("to"))
}

func (h *Handler) GetRateHandler(w http.ResponseWriter, r *http.Request) {
	from, to := currencyParams(r)
	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	rate, err := h.service.GetRate(r.Context(), from, to)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, rate)
}

func (h *Handler) GetRatesHandler(w http.ResponseWriter, r *http.Request) {
	from := model.NormalizeCurrency(r.URL.Query().Get("from"))
	codes := utils.SplitCodes(r.URL.Query().Get("to"))
	if from == "" || len(codes) == 0 {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	to := make([]model.Currency, len(codes))
	for i, code := range codes {
		to[i] = model.NormalizeCurrency(code)
	}

	rates, err := h.service.GetRates(r.Context(), from, to)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, rates)
}

func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	from, to := currencyParams(r)
	amountStr := r.URL.Query().Get("amount")

	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	amount := decimal.NewFromInt(1)
	if amountStr != "" {
		var err error
		amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			h.sendErrorResponse(w, http.StatusBadRequest, "invalid amount parameter")
			return
		}
	}

	request := model.ConversionRequest{
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       amount,
	}

	result, err := h.service.ConvertCurrency(r.Context(), request)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, result)
}

// FlushRatesHandler drops a single pair when from and to are given, otherwise
// the whole cache.
func (h *Handler) FlushRatesHandler(w http.ResponseWriter, r *http.Request) {
	from, to := currencyParams(r)

	if from == "" && to == "" {
		count := h.service.FlushRates(r.Context())
		h.sendSuccessResponse(w, map[string]int{"flushed": count})
		return
	}

	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "both from and to are required to flush a single rate")
		return
	}

	rate, found := h.service.FlushRate(r.Context(), from, to)
	if !found {
		h.sendErrorResponse(w, http.StatusNotFound, "exchange rate not cached")
		return
	}

	h.sendSuccessResponse(w, map[string]interface{}{
		"base_currency":   from,
		"target_currency": to,
		"rate":            rate,
	})
}

func (h *Handler) ExpireRatesHandler(w http.ResponseWriter, r *http.Request) {
	expired := h.service.ExpireRates(r.Context())
	h.sendSuccessResponse(w, map[string]bool{"expired": expired})
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	var fetchErr *model.FetchError
	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid currency"
	case errors.Is(err, service.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid amount"
	case errors.As(err, &fetchErr):
		statusCode = http.StatusBadGateway
		errorMessage = fetchErr.Message
		if fetchErr.Kind == model.KindTransport {
			statusCode = http.StatusServiceUnavailable
			errorMessage = "external API failure"
		}
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode)
	h.sendErrorResponse(w, statusCode, errorMessage)
}
