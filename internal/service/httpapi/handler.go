// Package httpapi публикует страницу корзины как JSON API поверх gin.
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/domain"
	"github.com/vladislavdragonenkov/basket/internal/service/cartpage"
)

// Handler обслуживает маршруты /api/cart.
type Handler struct {
	page   *cartpage.Page
	badge  *cartpage.Badge
	events cartpage.Subscriber
	logger *log.Entry
}

// NewHandler создаёт обработчики. badge и events могут быть nil:
// тогда соответствующие маршруты отвечают 503.
func NewHandler(page *cartpage.Page, badge *cartpage.Badge, events cartpage.Subscriber, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{
		page:   page,
		badge:  badge,
		events: events,
		logger: logger,
	}
}

type addItemRequest struct {
	ID int64 `json:"id"`
}

type promoRequest struct {
	Code *string `json:"code"`
}

type mutationResponse struct {
	Changed bool          `json:"changed"`
	Cart    cartpage.View `json:"cart"`
}

type promoResponse struct {
	Applied bool                `json:"applied"`
	Outcome domain.PromoOutcome `json:"outcome"`
	Cart    cartpage.View       `json:"cart"`
}

// Register подключает маршруты к роутеру.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api/cart")
	api.GET("", h.getCart)
	api.POST("/reload", h.reload)
	api.POST("/items", h.addItem)
	api.POST("/items/:id/increment", h.increment)
	api.POST("/items/:id/decrement", h.decrement)
	api.PUT("/promo-input", h.setPromoInput)
	api.POST("/promo", h.submitPromo)
	api.GET("/badge", h.getBadge)
	api.GET("/events", h.streamEvents)
}

func (h *Handler) view(c *gin.Context) cartpage.View {
	return h.page.View(queryInt(c, "limit"), queryInt(c, "page"))
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.view(c))
}

func (h *Handler) reload(c *gin.Context) {
	h.page.Mount(c.Request.Context())
	c.JSON(http.StatusOK, h.view(c))
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	changed, err := h.page.AddProduct(c.Request.Context(), req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mutationResponse{Changed: changed, Cart: h.view(c)})
}

func (h *Handler) increment(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	changed := h.page.IncrementProduct(c.Request.Context(), id)
	c.JSON(http.StatusOK, mutationResponse{Changed: changed, Cart: h.view(c)})
}

func (h *Handler) decrement(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	changed := h.page.DecrementProduct(c.Request.Context(), id)
	c.JSON(http.StatusOK, mutationResponse{Changed: changed, Cart: h.view(c)})
}

func (h *Handler) setPromoInput(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}
	h.page.SetPromoInput(*req.Code)
	c.JSON(http.StatusOK, gin.H{"promo_input": h.page.PromoInput()})
}

func (h *Handler) submitPromo(c *gin.Context) {
	// Тело необязательно: без него применяется уже введённое значение поля.
	var req promoRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if req.Code != nil {
		h.page.SetPromoInput(*req.Code)
	}

	outcome := h.page.SubmitPromo(c.Request.Context())
	c.JSON(http.StatusOK, promoResponse{
		Applied: outcome == domain.PromoApplied,
		Outcome: outcome,
		Cart:    h.view(c),
	})
}

func (h *Handler) getBadge(c *gin.Context) {
	if h.badge == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "badge is not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": h.badge.Count()})
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidProductID.Error()})
		return 0, false
	}
	return id, true
}

// queryInt возвращает 0 для отсутствующего или нечислового параметра,
// страница сама подставит значение по умолчанию.
func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}
