package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/filter"
	"github.com/communis/ledger/internal/ledger/service"
	apperrors "github.com/communis/ledger/internal/platform/errors"
)

type currencyResponse struct {
	Symbol     string    `json:"symbol"`
	Issuer     string    `json:"issuer"`
	Type       string    `json:"type"`
	Supply     string    `json:"supply"`
	MaxSupply  string    `json:"max_supply"`
	MinBalance string    `json:"min_balance"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func currencyJSON(stats domain.CurrencyStats) currencyResponse {
	return currencyResponse{
		Symbol:     stats.Symbol.String(),
		Issuer:     stats.Issuer,
		Type:       string(stats.Type),
		Supply:     stats.Supply.String(),
		MaxSupply:  stats.MaxSupply.String(),
		MinBalance: stats.MinBalance.String(),
		CreatedAt:  stats.CreatedAt,
		UpdatedAt:  stats.UpdatedAt,
	}
}

type balanceResponse struct {
	Account      string    `json:"account"`
	Balance      string    `json:"balance"`
	Currency     string    `json:"currency"`
	LastActivity time.Time `json:"last_activity"`
}

func balanceJSON(balance domain.AccountBalance) balanceResponse {
	return balanceResponse{
		Account:      balance.Account,
		Balance:      balance.Balance.String(),
		Currency:     balance.Balance.Symbol.Code,
		LastActivity: balance.LastActivity,
	}
}

type policyResponse struct {
	Currency            string `json:"currency"`
	NaturalPeriodSecs   uint32 `json:"natural_period_secs"`
	JuridicalPeriodSecs uint32 `json:"juridical_period_secs"`
	RenovationAmount    string `json:"renovation_amount"`
}

func (h *Handler) createCurrency(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Issuer     string `json:"issuer"`
		MaxSupply  string `json:"max_supply"`
		MinBalance string `json:"min_balance"`
		Type       string `json:"type"`
	}
	if !decode(w, r, &body) {
		return
	}

	maxSupply, err := domain.ParseAmount(body.MaxSupply)
	if err != nil {
		writeError(w, r, err)
		return
	}
	minBalance, err := domain.ParseAmount(body.MinBalance)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.svc.Create(r.Context(), service.CreateRequest{
		Issuer:     body.Issuer,
		MaxSupply:  maxSupply,
		MinBalance: minBalance,
		Type:       domain.CurrencyType(body.Type),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, currencyJSON(stats))
}

func (h *Handler) getCurrency(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CurrencyStats(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, currencyJSON(stats))
}

func (h *Handler) updateCurrency(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MaxSupply  string `json:"max_supply"`
		MinBalance string `json:"min_balance"`
	}
	if !decode(w, r, &body) {
		return
	}

	maxSupply, err := domain.ParseAmount(body.MaxSupply)
	if err != nil {
		writeError(w, r, err)
		return
	}
	minBalance, err := domain.ParseAmount(body.MinBalance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if code := r.PathValue("code"); maxSupply.Symbol.Code != code {
		writeError(w, r, apperrors.New(apperrors.CodeSymbolMismatch,
			"limits do not match the currency in the request path"))
		return
	}

	stats, err := h.svc.Update(r.Context(), service.UpdateRequest{
		MaxSupply:  maxSupply,
		MinBalance: minBalance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, currencyJSON(stats))
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To       string `json:"to"`
		Quantity string `json:"quantity"`
		Memo     string `json:"memo"`
	}
	if !decode(w, r, &body) {
		return
	}

	quantity, err := domain.ParseAmount(body.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if code := r.PathValue("code"); quantity.Symbol.Code != code {
		writeError(w, r, apperrors.New(apperrors.CodeSymbolMismatch,
			"quantity does not match the currency in the request path"))
		return
	}
	err = h.svc.Issue(r.Context(), service.IssueRequest{
		To:       body.To,
		Quantity: quantity,
		Memo:     body.Memo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Quantity string `json:"quantity"`
		Memo     string `json:"memo"`
	}
	if !decode(w, r, &body) {
		return
	}

	quantity, err := domain.ParseAmount(body.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = h.svc.Transfer(r.Context(), service.TransferRequest{
		From:     body.From,
		To:       body.To,
		Quantity: quantity,
		Memo:     body.Memo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) retire(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserType string `json:"user_type"`
		Memo     string `json:"memo"`
	}
	if !decode(w, r, &body) {
		return
	}

	stats, err := h.svc.CurrencyStats(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = h.svc.Retire(r.Context(), service.RetireRequest{
		Currency: stats.Symbol,
		UserType: domain.UserType(body.UserType),
		Memo:     body.Memo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) initAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Account string `json:"account"`
		Inviter string `json:"inviter"`
	}
	if !decode(w, r, &body) {
		return
	}

	stats, err := h.svc.CurrencyStats(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = h.svc.InitAccount(r.Context(), service.InitAccountRequest{
		Currency: stats.Symbol,
		Account:  body.Account,
		Inviter:  body.Inviter,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setExpiry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NaturalPeriodSecs   uint32 `json:"natural_period_secs"`
		JuridicalPeriodSecs uint32 `json:"juridical_period_secs"`
		RenovationAmount    string `json:"renovation_amount"`
	}
	if !decode(w, r, &body) {
		return
	}

	renovation, err := domain.ParseAmount(body.RenovationAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := h.svc.CurrencyStats(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	policy, err := h.svc.SetExpiry(r.Context(), service.SetExpiryRequest{
		Currency:            stats.Symbol,
		NaturalPeriodSecs:   body.NaturalPeriodSecs,
		JuridicalPeriodSecs: body.JuridicalPeriodSecs,
		Renovation:          renovation,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policyResponse{
		Currency:            policy.Symbol.Code,
		NaturalPeriodSecs:   policy.NaturalPeriodSecs,
		JuridicalPeriodSecs: policy.JuridicalPeriodSecs,
		RenovationAmount:    policy.RenovationAmount.String(),
	})
}

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.svc.Policy(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policyResponse{
		Currency:            policy.Symbol.Code,
		NaturalPeriodSecs:   policy.NaturalPeriodSecs,
		JuridicalPeriodSecs: policy.JuridicalPeriodSecs,
		RenovationAmount:    policy.RenovationAmount.String(),
	})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.Balance(r.Context(), r.PathValue("account"), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceJSON(balance))
}

func (h *Handler) listBalances(w http.ResponseWriter, r *http.Request) {
	query, err := filter.ParseBalanceFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": "INVALID_FILTER", "message": err.Error()},
		})
		return
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			writeError(w, r, apperrors.New(apperrors.CodeInvalidAmount, "page_size must be a non-negative integer"))
			return
		}
		query.Limit = size
	}

	balances, err := h.svc.ListBalances(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := make([]balanceResponse, 0, len(balances))
	for _, balance := range balances {
		response = append(response, balanceJSON(balance))
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": response})
}
