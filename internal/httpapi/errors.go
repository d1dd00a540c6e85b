package httpapi

import (
	"errors"
	"net/http"

	"github.com/hasbulkhan45/MoneyManager/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// insufficientFundsResponse carries the numeric context of a failed
// sufficiency check. Advisory failures can be retried with "confirm": true.
type insufficientFundsResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	Account        string `json:"account"`
	RequestedMinor int64  `json:"requested_minor"`
	BalanceMinor   int64  `json:"balance_minor"`
	DeficitMinor   int64  `json:"deficit_minor"`
	Advisory       bool   `json:"advisory"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg, "validation_error")
}

// writeDomainErr maps service errors onto HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	var short *errs.InsufficientFunds
	switch {
	case errors.As(err, &short):
		ru, _ := short.Requested.MinorUnits()
		bu, _ := short.Balance.MinorUnits()
		du, _ := short.Deficit.MinorUnits()
		toJSON(w, http.StatusUnprocessableEntity, insufficientFundsResponse{
			Error:          short.Error(),
			Code:           "insufficient_funds",
			Account:        short.Account,
			RequestedMinor: ru,
			BalanceMinor:   bu,
			DeficitMinor:   du,
			Advisory:       short.Advisory,
		})
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "not_found")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, "already exists", "conflict")
	case errors.Is(err, errs.ErrInvalid):
		badRequest(w, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "")
	}
}
