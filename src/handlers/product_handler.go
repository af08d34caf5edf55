// backend/src/handlers/product_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/sellerledger/backend/src/database"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/model"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/utils"
)

type ProductHandler struct{}

func NewProductHandler() *ProductHandler {
	return &ProductHandler{}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	products, err := model.ListProductsByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list products", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	product.SKU = strings.TrimSpace(product.SKU)
	if product.SKU == "" {
		utils.SendJSONError(w, "SKU is required", http.StatusBadRequest)
		return
	}
	product.UserID = userID
	product.Name = validation.SanitizeText(strings.TrimSpace(product.Name))
	if product.UnitCost < 0 {
		utils.SendJSONError(w, "Unit cost cannot be negative", http.StatusBadRequest)
		return
	}

	if err := model.CreateProduct(database.DB, &product); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
			utils.SendJSONError(w, "A product with this SKU already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Failed to create product", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	product.ID = productID
	product.UserID = userID
	product.Name = validation.SanitizeText(strings.TrimSpace(product.Name))
	if product.UnitCost < 0 {
		utils.SendJSONError(w, "Unit cost cannot be negative", http.StatusBadRequest)
		return
	}

	if err := model.UpdateProduct(database.DB, &product); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			utils.SendJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update product", "userID", userID, "productID", productID, "error", err)
		utils.SendJSONError(w, "Failed to update product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	if err := model.DeleteProduct(database.DB, productID, userID); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			utils.SendJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete product", "userID", userID, "productID", productID, "error", err)
		utils.SendJSONError(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
