package httpapi

import (
	"context"
	"net/http"

	chi "github.com/go-chi/chi/v5"
)

// listRegistry, addRegistry and removeRegistry fold the three label
// registries (categories, wallets, savings vehicles) into one handler shape.

func (s *Server) listRegistry(list func(context.Context) ([]string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := list(r.Context())
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		out := make([]registryResponse, 0, len(names))
		for _, n := range names {
			out = append(out, registryResponse{Name: n})
		}
		toJSON(w, http.StatusOK, out)
	}
}

func (s *Server) addRegistry(add func(context.Context, string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registryRequest
		if err := decode(r, &req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		name, err := add(r.Context(), req.Name)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		toJSON(w, http.StatusCreated, registryResponse{Name: name})
	}
}

func (s *Server) removeRegistry(remove func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := remove(r.Context(), chi.URLParam(r, "name")); err != nil {
			writeDomainErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listWallets extends the plain registry listing with each wallet's balance,
// which is what the single-screen client renders.
func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	names, err := s.store.ListWallets(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]balanceResponse, 0, len(names))
	for _, n := range names {
		balance, err := s.svc.WalletBalance(ctx, n)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		units, _ := balance.MinorUnits()
		out = append(out, balanceResponse{Name: n, BalanceMinor: units})
	}
	toJSON(w, http.StatusOK, out)
}
