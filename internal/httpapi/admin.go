package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"pizzeria-be/internal/auth"
	"pizzeria-be/internal/catalog"
	"pizzeria-be/internal/customer"
	"pizzeria-be/internal/order"
	"pizzeria-be/internal/promotion"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// -- Session --

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	token, expiresAt, err := h.Auth.Login(r.Context(), body.Password)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/admin",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "expires_at": expiresAt})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// -- Catalog --

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	cat, err := h.Catalog.CreateCategory(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.Catalog.ListProducts(r.Context(), catalog.ProductQueryOptions{
		CategoryID:    q.Get("category_id"),
		Search:        q.Get("search"),
		OnlyAvailable: q.Get("available") == "true",
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	p, err := h.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	p, err := h.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Available bool `json:"available"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := h.Catalog.SetAvailability(r.Context(), chi.URLParam(r, "productID"), body.Available); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listModifiers(w http.ResponseWriter, r *http.Request) {
	mods, err := h.Catalog.ListModifiers(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, mods)
}

func (h *Handler) createModifier(w http.ResponseWriter, r *http.Request) {
	var in catalog.ModifierInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	m, err := h.Catalog.CreateModifier(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) updateModifier(w http.ResponseWriter, r *http.Request) {
	var in catalog.ModifierInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	m, err := h.Catalog.UpdateModifier(r.Context(), chi.URLParam(r, "modifierID"), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteModifier(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteModifier(r.Context(), chi.URLParam(r, "modifierID")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Promotions --

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Promotions.ListCoupons(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var in promotion.CouponInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	c, err := h.Promotions.CreateCoupon(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) setCouponActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := h.Promotions.SetCouponActive(r.Context(), chi.URLParam(r, "couponID"), body.Active); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.Promotions.DeleteCoupon(r.Context(), chi.URLParam(r, "couponID")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Promotions.GetRule(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request) {
	var in promotion.GiftRule
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	snap, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	rule, err := h.Promotions.UpdateRule(r.Context(), in, snap)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// -- Orders --

func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errBadRequest
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func queryInt(raw string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(raw))
	return n
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"), false)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	to, err := parseDate(q.Get("to"), true)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	orders, err := h.Orders.List(r.Context(), order.ListFilter{
		Status:   order.Status(strings.ToUpper(q.Get("status"))),
		Search:   q.Get("search"),
		DateFrom: from,
		DateTo:   to,
		Page:     queryInt(q.Get("page")),
		Limit:    queryInt(q.Get("limit")),
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status order.Status `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), body.Status)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// -- Customers --

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customers, err := h.Customers.List(r.Context(), customer.ListFilter{
		Search: q.Get("search"),
		Limit:  queryInt(q.Get("limit")),
		Offset: queryInt(q.Get("offset")),
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Get(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) adjustCashback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta decimal.Decimal `json:"delta"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	c, err := h.Customers.AdjustBalance(r.Context(), chi.URLParam(r, "customerID"), body.Delta)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Metrics.Snapshot())
}
