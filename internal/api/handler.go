package api

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"slowteabar/m/domain"
	"slowteabar/m/internal/cartkey"
	"slowteabar/m/internal/catalog"
	"slowteabar/m/internal/migrations"
	"slowteabar/m/internal/sales"
	"slowteabar/m/internal/seed"
	"slowteabar/m/internal/session"
)

type ctxKey string

const ctxSessionID ctxKey = "sessionID"

const (
	sessionCookie = "pos_session"
	adminCookie   = "admin_token"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db        *sqlx.DB
	catalog   *catalog.Store
	sales     *sales.Store
	carts     *session.Manager
	secret    string
	adminHash []byte
}

// New constructs a Handler. The shared admin password is kept only as a
// bcrypt hash.
func New(db *sqlx.DB, carts *session.Manager, secret, adminPassword string) *Handler {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("unable to secure admin password: %v", err)
	}
	cat := catalog.New(db)
	return &Handler{
		db:        db,
		catalog:   cat,
		sales:     sales.New(db, cat),
		carts:     carts,
		secret:    secret,
		adminHash: hash,
	}
}

// Router wires up the HTTP surface.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.withSession)

	r.Get("/", h.pos)
	r.Get("/init", h.initDB)

	r.Route("/cart", func(r chi.Router) {
		r.Post("/add", h.cartAdd)
		r.Post("/inc", h.cartInc)
		r.Post("/dec", h.cartDec)
		r.Post("/clear", h.cartClear)
	})
	r.Post("/checkout", h.checkout)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", h.adminLoginForm)
		r.Post("/login", h.adminLogin)
		r.Get("/logout", h.adminLogout)
		r.Group(func(gated chi.Router) {
			gated.Use(h.adminOnly)
			gated.Get("/", h.adminHome)
			gated.Get("/beverages", h.adminBeverages)
			gated.Post("/beverages", h.adminCreateBeverage)
			gated.Post("/beverages/{id}", h.adminUpdateBeverage)
			gated.Get("/sales", h.adminSales)
			gated.Get("/sales/{id}", h.adminSaleDetail)
		})
	})

	return r
}

// Session middleware

func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			sid = c.Value
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
			})
		}
		ctx := context.WithValue(r.Context(), ctxSessionID, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(ctxSessionID).(string)
	return sid
}

// Admin gate

type adminClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

func (h *Handler) generateAdminToken() (string, error) {
	claims := adminClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) isAdmin(r *http.Request) bool {
	c, err := r.Cookie(adminCookie)
	if err != nil || c.Value == "" {
		return false
	}
	token, err := jwt.ParseWithClaims(c.Value, &adminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.secret), nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(*adminClaims)
	return ok && claims.Admin
}

// adminOnly redirects to the login prompt, preserving the requested
// destination for post-login redirect.
func (h *Handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isAdmin(r) {
			http.Redirect(w, r, "/admin/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// POS handlers

type cartLine struct {
	Key       string
	Name      string
	Size      string
	Sugar     string
	Ice       string
	Qty       int
	UnitPrice int64
	LineTotal int64
}

type posData struct {
	Beverages []domain.Beverage
	Lines     []cartLine
	Total     int64
	Sizes     []string
	Levels    []string
}

func (h *Handler) pos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	beverages, err := h.catalog.Active(ctx)
	if err != nil {
		http.Error(w, "unable to load catalog", http.StatusInternalServerError)
		return
	}
	cart, err := h.carts.Cart(ctx, sessionID(ctx))
	if err != nil {
		http.Error(w, "unable to load cart", http.StatusInternalServerError)
		return
	}
	byID, err := h.catalog.ByID(ctx)
	if err != nil {
		http.Error(w, "unable to load catalog", http.StatusInternalServerError)
		return
	}

	keys := make([]string, 0, len(cart))
	for key := range cart {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	data := posData{Beverages: beverages, Sizes: cartkey.Sizes, Levels: cartkey.Levels}
	for _, key := range keys {
		sel, err := cartkey.Decode(key)
		if err != nil {
			continue
		}
		bev, ok := byID[sel.BeverageID]
		if !ok || !bev.Active {
			// Stale reference, treated as already removed.
			continue
		}
		qty := cart[key]
		unitPrice := catalog.PriceFor(bev, sel.Size)
		lineTotal := unitPrice * int64(qty)
		data.Lines = append(data.Lines, cartLine{
			Key:       key,
			Name:      bev.Name,
			Size:      sel.Size,
			Sugar:     sel.Sugar,
			Ice:       sel.Ice,
			Qty:       qty,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
		data.Total += lineTotal
	}

	h.render(w, http.StatusOK, "pos.html", data)
}

func (h *Handler) cartAdd(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.FormValue("beverage_id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid beverage id", http.StatusBadRequest)
		return
	}
	key := cartkey.Encode(id, r.FormValue("size"), r.FormValue("sugar"), r.FormValue("ice"))
	ctx := r.Context()
	if err := h.carts.Increment(ctx, sessionID(ctx), key); err != nil {
		http.Error(w, "unable to update cart", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) cartInc(w http.ResponseWriter, r *http.Request) {
	key := r.FormValue("key")
	if _, err := cartkey.Decode(key); err != nil {
		http.Error(w, "invalid cart key", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if err := h.carts.Increment(ctx, sessionID(ctx), key); err != nil {
		http.Error(w, "unable to update cart", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) cartDec(w http.ResponseWriter, r *http.Request) {
	key := r.FormValue("key")
	if _, err := cartkey.Decode(key); err != nil {
		http.Error(w, "invalid cart key", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if err := h.carts.Decrement(ctx, sessionID(ctx), key); err != nil {
		http.Error(w, "unable to update cart", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) cartClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.carts.Clear(ctx, sessionID(ctx)); err != nil {
		http.Error(w, "unable to clear cart", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := sessionID(ctx)

	cart, err := h.carts.Cart(ctx, sid)
	if err != nil {
		http.Error(w, "unable to load cart", http.StatusInternalServerError)
		return
	}
	if _, err := h.sales.Checkout(ctx, cart, r.FormValue("payment_method")); err != nil {
		// Cart left untouched so the user can retry.
		log.Printf("checkout failed: %v", err)
		http.Error(w, "checkout failed", http.StatusInternalServerError)
		return
	}
	if err := h.carts.Clear(ctx, sid); err != nil {
		log.Printf("unable to clear cart after checkout: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) initDB(w http.ResponseWriter, r *http.Request) {
	if err := migrations.Run(h.db); err != nil {
		http.Error(w, "unable to initialize schema", http.StatusInternalServerError)
		return
	}
	if err := seed.Beverages(h.db); err != nil {
		http.Error(w, "unable to seed catalog", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("DB initialized. Go to /"))
}

// Admin handlers

type loginData struct {
	Next  string
	Error string
}

func (h *Handler) adminLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "admin_login.html", loginData{Next: r.URL.Query().Get("next")})
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	next := r.FormValue("next")
	if bcrypt.CompareHashAndPassword(h.adminHash, []byte(r.FormValue("password"))) != nil {
		h.render(w, http.StatusUnauthorized, "admin_login.html", loginData{Next: next, Error: "wrong password"})
		return
	}
	token, err := h.generateAdminToken()
	if err != nil {
		http.Error(w, "unable to generate token", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

// safeNext only honors local paths for post-login redirect.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/admin/beverages"
}

func (h *Handler) adminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) adminHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/beverages", http.StatusSeeOther)
}

func (h *Handler) adminBeverages(w http.ResponseWriter, r *http.Request) {
	beverages, err := h.catalog.All(r.Context())
	if err != nil {
		http.Error(w, "unable to list beverages", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "admin_beverages.html", map[string]any{"Beverages": beverages})
}

func parsePrice(raw string) (int64, error) {
	price, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || price <= 0 {
		return 0, errors.New("price must be a positive integer")
	}
	return price, nil
}

func (h *Handler) adminCreateBeverage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	priceRegular, errRegular := parsePrice(r.FormValue("price_regular"))
	priceLarge, errLarge := parsePrice(r.FormValue("price_large"))
	if name == "" || errRegular != nil || errLarge != nil {
		http.Error(w, "name, price_regular and price_large are required", http.StatusBadRequest)
		return
	}
	if _, err := h.catalog.Create(r.Context(), name, priceRegular, priceLarge); err != nil {
		http.Error(w, "unable to create beverage", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/beverages", http.StatusSeeOther)
}

func (h *Handler) adminUpdateBeverage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid beverage id", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	priceRegular, errRegular := parsePrice(r.FormValue("price_regular"))
	priceLarge, errLarge := parsePrice(r.FormValue("price_large"))
	if name == "" || errRegular != nil || errLarge != nil {
		http.Error(w, "name, price_regular and price_large are required", http.StatusBadRequest)
		return
	}
	active := r.FormValue("active") == "on"
	if err := h.catalog.Update(r.Context(), id, name, priceRegular, priceLarge, active); err != nil {
		http.Error(w, "unable to update beverage", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/beverages", http.StatusSeeOther)
}

func (h *Handler) adminSales(w http.ResponseWriter, r *http.Request) {
	list, err := h.sales.Recent(r.Context(), 100)
	if err != nil {
		http.Error(w, "unable to list sales", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "admin_sales.html", map[string]any{"Sales": list})
}

func (h *Handler) adminSaleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid sale id", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	sale, err := h.sales.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "sale not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "unable to load sale", http.StatusInternalServerError)
		return
	}
	lines, err := h.sales.Lines(ctx, id)
	if err != nil {
		http.Error(w, "unable to load sale lines", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "admin_sale.html", map[string]any{"Sale": sale, "Lines": lines})
}
