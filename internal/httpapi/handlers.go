package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/domain"
)

const (
	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateBytes    = 1 << 20
	maxSearchLimit    = 50
)

type errorBody struct {
	Error string `json:"error"`
}

type dataBody struct {
	Data any `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, dataBody{Data: v})
}

// writeDomainError maps a shop error onto a status code; unexpected errors are logged and hidden.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.CodeNotFound:
			msg := "not found"
			if de.Entity != "" {
				msg = de.Entity + " not found"
			}
			writeError(w, http.StatusNotFound, msg)
			return
		case domain.CodeForbidden:
			writeError(w, http.StatusForbidden, de.Error())
			return
		default:
			writeError(w, http.StatusBadRequest, de.Error())
			return
		}
	}
	logger.Error(r.Context(), logger.CompHTTP, "handler.error",
		slog.String("path", r.URL.Path),
		slog.Any("err", err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// Webhook decodes a Telegram update and processes it synchronously.
func Webhook(p UpdateProcessor, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret != "" {
			got := r.Header.Get(secretTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				logger.Warn(r.Context(), logger.CompHTTP, "webhook.unauthorized")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}

		var upd tele.Update
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
		if err := dec.Decode(&upd); err != nil {
			logger.Warn(r.Context(), logger.CompHTTP, "webhook.bad_json", slog.Any("err", err))
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		ctx := logger.WithUpdateMeta(r.Context(), upd.ID, 0, 0)
		if err := p.Process(ctx, upd); err != nil {
			logger.Warn(ctx, logger.CompHTTP, "webhook.process_failed", slog.Any("err", err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// Health reports storage reachability.
func Health(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c != nil {
			if err := c.Ping(r.Context()); err != nil {
				logger.Warn(r.Context(), logger.CompHTTP, "health.fail", slog.Any("err", err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func ListCategories(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := c.ListCategories(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if cats == nil {
			cats = []domain.Category{}
		}
		writeData(w, cats)
	}
}

func ListProducts(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "categoryId")
		if !ok {
			return
		}
		products, err := c.ListProducts(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		writeData(w, products)
	}
}

func GetProduct(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "productId")
		if !ok {
			return
		}
		p, err := c.Product(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeData(w, p)
	}
}

// SearchProducts matches titles against ?q=, capped by ?limit=.
func SearchProducts(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = min(n, maxSearchLimit)
		}
		products, err := c.SearchProducts(r.Context(), q, limit)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		writeData(w, products)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+key)
		return 0, false
	}
	return id, true
}
