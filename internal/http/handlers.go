package http

import (
	"context"
	"log/slog"
	"net/http"

	"networth/internal/core"
)

type authFlowRequest struct {
	Email string `json:"email"`
}

// handleAuthFlow creates (or reuses) the email's upstream customer and
// returns a fresh account-linking session.
func (s *Server) handleAuthFlow(w http.ResponseWriter, r *http.Request) {
	var req authFlowRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := s.customers.HandleAuthFlow(r.Context(), sanitizeInput(req.Email))
	if err != nil {
		writeServiceError(w, r, err, "auth flow failed")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.recon.ListAccounts(r.Context(), r.PathValue("customerID"))
	if err != nil {
		writeServiceError(w, r, err, "list accounts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// handleListAccountsByEmail resolves the email to its customer and lists
// that customer's accounts.
func (s *Server) handleListAccountsByEmail(w http.ResponseWriter, r *http.Request) {
	customer, err := s.customers.LookupCustomer(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err, "customer lookup failed")
		return
	}

	accounts, err := s.recon.ListAccounts(r.Context(), customer.CustomerID)
	if err != nil {
		writeServiceError(w, r, err, "list accounts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer_id": customer.CustomerID,
		"accounts":    accounts,
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.recon.GetAccount(r.Context(), r.PathValue("accountID"))
	if err != nil {
		writeServiceError(w, r, err, "get account failed")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDisconnectAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.recon.DisconnectAccount(r.Context(), r.PathValue("accountID")); err != nil {
		writeServiceError(w, r, err, "disconnect failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.recon.GetTransaction(r.Context(), r.PathValue("transactionID"))
	if err != nil {
		writeServiceError(w, r, err, "get transaction failed")
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

type transactionDataRequest struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email,omitempty"`
	Range      string `json:"range,omitempty"`
}

// handleTransactionData serves the reconciled per-customer view. Results
// are cached briefly per customer and range; the omission set is loaded
// from the email when one is supplied.
func (s *Server) handleTransactionData(w http.ResponseWriter, r *http.Request) {
	var req transactionDataRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rng := core.TimeRange(req.Range)
	if req.Range == "" {
		rng = core.DefaultRange
	}

	key := dataCacheKey(req.CustomerID, req.Email, rng)
	if data, ok := s.dataCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Transaction data cache hit",
			"customer_id", req.CustomerID,
			"range", string(rng))
		writeJSON(w, http.StatusOK, data)
		return
	}

	var omitted []string
	if req.Email != "" {
		var err error
		omitted, err = s.customers.OmittedAccounts(r.Context(), req.Email)
		if err != nil {
			writeServiceError(w, r, err, "omitted accounts lookup failed")
			return
		}
	}

	data, err := s.recon.GetTransactionData(r.Context(), req.CustomerID, rng, omitted)
	if err != nil {
		writeServiceError(w, r, err, "transaction data failed")
		return
	}

	s.dataCache.Set(key, data)
	writeJSON(w, http.StatusOK, data)
}

type toggleOmitRequest struct {
	Email     string `json:"email"`
	AccountID string `json:"account_id"`
}

func (s *Server) handleToggleOmit(w http.ResponseWriter, r *http.Request) {
	var req toggleOmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = sanitizeInput(req.Email)
	req.AccountID = sanitizeInput(req.AccountID)
	omitted, err := s.customers.ToggleOmittedAccount(r.Context(), req.Email, req.AccountID)
	if err != nil {
		writeServiceError(w, r, err, "omission toggle failed")
		return
	}

	// A changed omission set invalidates every cached view for this user.
	s.invalidateTransactionData(r.Context(), req.Email)

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": req.AccountID,
		"omitted":    omitted,
	})
}

func (s *Server) handleListOmitted(w http.ResponseWriter, r *http.Request) {
	email := sanitizeInput(r.URL.Query().Get("email"))
	ids, err := s.customers.OmittedAccounts(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err, "omitted accounts lookup failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"omitted_accounts": ids})
}

func dataCacheKey(customerID, email string, rng core.TimeRange) string {
	return customerID + "|" + email + "|" + string(rng)
}

func (s *Server) invalidateTransactionData(ctx context.Context, email string) {
	customer, err := s.customers.LookupCustomer(ctx, email)
	if err != nil {
		return
	}
	for _, rng := range []core.TimeRange{
		core.RangeWeek, core.RangeMonth, core.RangeThreeMonth,
		core.RangeSixMonth, core.RangeYear, core.RangeAll,
	} {
		s.dataCache.Delete(dataCacheKey(customer.CustomerID, email, rng))
	}
}
