package merchant

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alovak/brcode-playground/internal/amount"
	"github.com/alovak/brcode-playground/internal/brcode"
	"github.com/alovak/brcode-playground/internal/datefmt"
	"github.com/alovak/brcode-playground/merchant/models"
	"github.com/go-chi/chi/v5"
)

// API is a HTTP API for the merchant service
type API struct {
	merchant *Service
}

func NewAPI(merchant *Service) *API {
	return &API{
		merchant: merchant,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", a.getProfile)
		r.Put("/", a.saveProfile)
	})
	r.Route("/payloads", func(r chi.Router) {
		r.Post("/", a.createPayload)
		r.Post("/verify", a.verifyPayload)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", a.getTransactions)
		r.Route("/{transactionID}", func(r chi.Router) {
			r.Get("/", a.getTransaction)
			r.Get("/qr.png", a.getTransactionQR)
		})
	})
}

// transactionView augments a transaction with display strings.
type transactionView struct {
	*models.Transaction
	DisplayAmount string `json:"display_amount"`
	DisplayDate   string `json:"display_date"`
}

func newTransactionView(t *models.Transaction) transactionView {
	return transactionView{
		Transaction:   t,
		DisplayAmount: amount.Format(t.Amount),
		DisplayDate:   datefmt.DisplayISO(t.Date),
	}
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := a.merchant.GetProfile(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (a *API) saveProfile(w http.ResponseWriter, r *http.Request) {
	req := models.Profile{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := a.merchant.SaveProfile(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileIncomplete):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, brcode.ErrFieldTooLong):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (a *API) createPayload(w http.ResponseWriter, r *http.Request) {
	create := models.CreatePayload{}
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := a.merchant.Generate(r.Context(), create)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileIncomplete):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, brcode.ErrFieldTooLong):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, newTransactionView(transaction))
}

func (a *API) verifyPayload(w http.ResponseWriter, r *http.Request) {
	req := models.VerifyPayload{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := a.merchant.Verify(req.BRCode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

func (a *API) getTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	transactions, err := a.merchant.ListTransactions(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]transactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, newTransactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) getTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	transaction, err := a.merchant.GetTransaction(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, newTransactionView(transaction))
}

func (a *API) getTransactionQR(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	png, err := a.merchant.TransactionQR(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
