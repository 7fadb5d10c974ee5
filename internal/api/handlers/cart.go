package handlers

import (
	"html"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/aaravmahajanofficial/cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/cart-service/internal/errors"
	"github.com/aaravmahajanofficial/cart-service/internal/models"
	service "github.com/aaravmahajanofficial/cart-service/internal/services"
	"github.com/aaravmahajanofficial/cart-service/internal/utils"
	"github.com/aaravmahajanofficial/cart-service/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	v := validator.New()

	// report json field names in validation messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &CartHandler{
		cartService: cartService,
		validator:   v,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// RegisterRoutes mounts the cart endpoints behind the given authentication wrapper.
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.HandlerFunc) {
	mux.Handle("GET /api/v1/cart", auth(h.GetOrCreateCart()))
	mux.Handle("POST /api/v1/cart/merge", auth(h.MergeGuestCart()))
	mux.Handle("GET /api/v1/cart/{cartId}", auth(h.GetCart()))
	mux.Handle("DELETE /api/v1/cart/{cartId}", auth(h.DeleteCart()))
	mux.Handle("POST /api/v1/cart/{cartId}/items", auth(h.AddItem()))
	mux.Handle("PUT /api/v1/cart/{cartId}/items", auth(h.UpdateItemQuantity()))
	mux.Handle("DELETE /api/v1/cart/{cartId}/items/{productId}", auth(h.RemoveItem()))
}

func (h *CartHandler) GetOrCreateCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		principal, logger, ok := h.authenticated(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetOrCreateCart(r.Context(), principal)
		if err != nil {
			logger.Error("Failed to get or create cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, h.cartService.FormatCartResponse(cart))
	}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		principal, logger, ok := h.authenticated(w, r)
		if !ok {
			return
		}

		cartID, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCartByID(r.Context(), cartID, principal)
		if err != nil {
			logger.Warn("Failed to get cart", slog.String("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, h.cartService.FormatCartResponse(cart))
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		principal, logger, ok := h.authenticated(w, r)
		if !ok {
			return
		}

		cartID, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		// strip markup but store the name as plain text
		name := strings.TrimSpace(html.UnescapeString(h.sanitizer.Sanitize(req.Name)))
		if name == "" {
			response.Error(w, errors.AddValidationError("name", "must contain text"))
			return
		}

		item := models.CartItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     req.Price,
			Name:      name,
		}

		cart, err := h.cartService.AddItem(r.Context(), cartID, principal, item)
		if err != nil {
			logger.Error("Failed to add item", slog.String("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.String("cartId", cartID), slog.String("productId", item.ProductID))
		response.Success(w, http.StatusOK, h.cartService.FormatCartResponse(cart))
	}
}

func (h *CartHandler) UpdateItemQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		principal, logger, ok := h.authenticated(w, r)
		if !ok {
			return
		}

		cartID, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		var req models.UpdateItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update item input")
			return
		}

		cart, err := h.cartService.UpdateItemQuantity(r.Context(), cartID, principal, req.ProductID, req.Quantity)
		if err != nil {
			logger.Error("Failed to update item quantity", slog.String("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, h.cartService.FormatCartResponse(cart))
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		principal, logger, ok := h.authenticated(w, r)
		if !ok {
			return
		}

		cartID, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		productID, err := utils.PathParam(r, "productId")
		if err != nil {
			response.Error(w, errors.BadRequestError("Product ID is required"))
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), cartID, principal, productID)
		if err != nil {
			logger.Error("Failed to remove item", slog.String("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item removed from cart", slog.String("cartId", cartID), slog.String("productId", productID))
		response.Success(w, http.StatusOK, h.cartService.FormatCartResponse(cart))
	}
}

func (h *CartHandler) DeleteCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		principal, logger, ok := h.authenticated(w, r)
		if !ok {
			return
		}

		cartID, ok := h.cartID(w, r, logger)
		if !ok {
			return
		}

		if err := h.cartService.DeleteCart(r.Context(), cartID, principal); err != nil {
			logger.Error("Failed to delete cart", slog.String("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart deleted", slog.String("cartId", cartID))
		response.NoContent(w)
	}
}

// MergeGuestCart is called by a registered principal right after login.
func (h *CartHandler) MergeGuestCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		principal, logger, ok := h.authenticated(w, r)
		if !ok {
			return
		}

		if principal.OwnerKind() != models.OwnerKindRegistered {
			logger.Warn("Guest principal attempted a cart merge")
			response.Error(w, errors.ForbiddenError("Only registered users can merge a guest cart"))
			return
		}

		var req models.MergeCartRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid merge input")
			return
		}

		cart, err := h.cartService.MergeGuestCart(r.Context(), principal.Sub, req.GuestSessionID)
		if err != nil {
			logger.Error("Failed to merge guest cart", slog.String("guestSessionId", req.GuestSessionID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, h.cartService.FormatCartResponse(cart))
	}
}

func (h *CartHandler) authenticated(w http.ResponseWriter, r *http.Request) (models.Principal, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		logger.Warn("Unauthorized cart access attempt: missing principal")
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return models.Principal{}, logger, false
	}

	return principal, logger, true
}

func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	cartID, err := utils.PathParam(r, "cartId")
	if err != nil {
		logger.Warn("Missing cart id")
		response.Error(w, errors.BadRequestError("Cart ID is required"))
		return "", false
	}

	return cartID, true
}
