package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/service"
	"github.com/niksmo/onboarding/internal/core/validate"
)

// GET|PUT v1/registration/tasker JSON (200 OK, 422 Unprocessable, 503 not saved)
// GET|PUT v1/registration/seller JSON (200 OK, 422 Unprocessable, 503 not saved)
// GET v1/registration/products (200 OK)
// PUT v1/registration/products/target JSON {"quantity": "30"} (200 OK, 400 Bad request)
// POST v1/registration/products JSON (201 Created, 409 full, 422 Unprocessable)
// DELETE v1/registration/products/{index} (200 OK, 404 Not found)
// POST v1/registration/submit (200 OK, 409, 413 too large, 422 rejected, 429 busy, 502 network)

type TaskerScreen interface {
	Resume(context.Context) domain.TaskerDetails
	Confirm(context.Context, domain.TaskerDetails) (validate.FieldErrors, error)
}

type SellerScreen interface {
	Resume(context.Context) domain.SellerDetails
	Confirm(context.Context, domain.SellerDetails) (validate.FieldErrors, error)
}

type ProductsScreen interface {
	Snapshot() service.ProductsSnapshot
	SetTarget(domain.Quantity) error
	Add(context.Context, domain.ProductDetails) (validate.FieldErrors, error)
	Remove(context.Context, int) error
	Submit(context.Context) error
	Message(error) string
}

type RegistrationHandler struct {
	tasker   TaskerScreen
	seller   SellerScreen
	products ProductsScreen
}

func RegisterRegistration(
	mux *http.ServeMux,
	tasker TaskerScreen, seller SellerScreen, products ProductsScreen,
) {
	h := RegistrationHandler{tasker, seller, products}
	mux.HandleFunc("GET /v1/registration/tasker", h.GetTasker)
	mux.HandleFunc("PUT /v1/registration/tasker", h.PutTasker)
	mux.HandleFunc("GET /v1/registration/seller", h.GetSeller)
	mux.HandleFunc("PUT /v1/registration/seller", h.PutSeller)
	mux.HandleFunc("GET /v1/registration/products", h.GetProducts)
	mux.HandleFunc("PUT /v1/registration/products/target", h.PutTarget)
	mux.HandleFunc("POST /v1/registration/products", h.PostProduct)
	mux.HandleFunc("DELETE /v1/registration/products/{index}", h.DeleteProduct)
	mux.HandleFunc("POST /v1/registration/submit", h.PostSubmit)
}

func (h RegistrationHandler) GetTasker(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tasker.Resume(r.Context()))
}

func (h RegistrationHandler) PutTasker(w http.ResponseWriter, r *http.Request) {
	const op = "RegistrationHandler.PutTasker"
	log := slog.With("op", op)

	var v domain.TaskerDetails
	if !decodeJSON(w, r, &v, log) {
		return
	}

	errs, err := h.tasker.Confirm(r.Context(), v)
	h.writeConfirm(w, errs, err, v, log)
}

func (h RegistrationHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.seller.Resume(r.Context()))
}

func (h RegistrationHandler) PutSeller(w http.ResponseWriter, r *http.Request) {
	const op = "RegistrationHandler.PutSeller"
	log := slog.With("op", op)

	var v domain.SellerDetails
	if !decodeJSON(w, r, &v, log) {
		return
	}

	errs, err := h.seller.Confirm(r.Context(), v)
	h.writeConfirm(w, errs, err, v, log)
}

func (h RegistrationHandler) writeConfirm(
	w http.ResponseWriter,
	errs validate.FieldErrors, err error, v any, log *slog.Logger,
) {
	switch {
	case err != nil:
		log.Error("failed to save draft", "err", err)
		writeJSON(w, http.StatusServiceUnavailable,
			MessageResponse{h.products.Message(err)})
	case !errs.Valid():
		writeJSON(w, http.StatusUnprocessableEntity, FieldErrorsResponse{errs})
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func (h RegistrationHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.productsResponse())
}

func (h RegistrationHandler) PutTarget(w http.ResponseWriter, r *http.Request) {
	const op = "RegistrationHandler.PutTarget"
	log := slog.With("op", op)

	var req TargetRequest
	if !decodeJSON(w, r, &req, log) {
		return
	}

	if err := h.products.SetTarget(req.Quantity); err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		log.Warn("rejected quantity", "quantity", req.Quantity)
		return
	}
	writeJSON(w, http.StatusOK, h.productsResponse())
}

func (h RegistrationHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "RegistrationHandler.PostProduct"
	log := slog.With("op", op)

	var p domain.ProductDetails
	if !decodeJSON(w, r, &p, log) {
		return
	}

	errs, err := h.products.Add(r.Context(), p)
	switch {
	case err != nil:
		h.writeError(w, err, log)
	case !errs.Valid():
		writeJSON(w, http.StatusUnprocessableEntity, FieldErrorsResponse{errs})
	default:
		writeJSON(w, http.StatusCreated, h.productsResponse())
	}
}

func (h RegistrationHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "RegistrationHandler.DeleteProduct"
	log := slog.With("op", op)

	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid product index", http.StatusBadRequest)
		return
	}

	if err := h.products.Remove(r.Context(), i); err != nil {
		h.writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, h.productsResponse())
}

func (h RegistrationHandler) PostSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "RegistrationHandler.PostSubmit"
	log := slog.With("op", op)

	if err := h.products.Submit(r.Context()); err != nil {
		h.writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{h.products.Message(nil)})
	log.Info("registration submitted")
}

func (h RegistrationHandler) productsResponse() ProductsResponse {
	s := h.products.Snapshot()
	return ProductsResponse{
		Products:   s.Products,
		Candidate:  s.Candidate,
		Target:     s.Target,
		Quantities: domain.Quantities(),
		Done:       s.Done,
		Total:      s.Total,
		State:      s.State.String(),
	}
}

func (h RegistrationHandler) writeError(
	w http.ResponseWriter, err error, log *slog.Logger,
) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	} else {
		log.Warn("request refused", "err", err)
	}
	writeJSON(w, status, MessageResponse{h.products.Message(err)})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrTargetNotReached),
		errors.Is(err, domain.ErrTargetReached),
		errors.Is(err, domain.ErrIncompleteDraft):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProductIndex):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotSaved):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(
	w http.ResponseWriter, r *http.Request, v any, log *slog.Logger,
) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}
