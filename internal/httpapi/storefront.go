package httpapi

import (
	"net/http"

	"pizzeria-be/internal/cart"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/order"
	"pizzeria-be/internal/pricing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	sections, err := h.Catalog.Menu(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (h *Handler) modifiers(w http.ResponseWriter, r *http.Request) {
	mods, err := h.Catalog.AvailableModifiers(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, mods)
}

func (h *Handler) lookupAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := h.Addresses.Lookup(r.Context(), chi.URLParam(r, "cep"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *Handler) cashbackBalance(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Customers.Account(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": pricing.Display(acc.Balance)})
}

// cartAction runs fn with the request's session and writes the resulting view.
func (h *Handler) cartAction(w http.ResponseWriter, r *http.Request, fn func(sessionID string) (*cart.View, error)) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	view, err := fn(sid)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.View(r.Context(), sid)
	})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := h.Carts.Clear(r.Context(), sid); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var in cart.AddItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.AddItem(r.Context(), sid, in)
	})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.UpdateQuantity(r.Context(), sid, chi.URLParam(r, "itemID"), body.Quantity)
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.RemoveItem(r.Context(), sid, chi.URLParam(r, "itemID"))
	})
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.ApplyCoupon(r.Context(), sid, body.Code)
	})
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.RemoveCoupon(r.Context(), sid)
	})
}

func (h *Handler) setCashback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Use   bool   `json:"use"`
		Phone string `json:"phone"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.SetCashback(r.Context(), sid, body.Use, body.Phone)
	})
}

func (h *Handler) setFulfillment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fulfillment pricing.Fulfillment `json:"fulfillment"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.SetFulfillment(r.Context(), sid, body.Fulfillment)
	})
}

func (h *Handler) chooseGift(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"product_id"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	h.cartAction(w, r, func(sid string) (*cart.View, error) {
		return h.Carts.ChooseGift(r.Context(), sid, body.ProductID)
	})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "checkout"))

	sid, err := sessionID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var in order.CheckoutInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.Orders.Checkout(ctx, sid, in)
	if err != nil {
		log.Warn("checkout failed", zap.Error(err))
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}
