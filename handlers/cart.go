package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amirhose1n/miropet-server/database"
	"github.com/amirhose1n/miropet-server/middleware"
	"github.com/amirhose1n/miropet-server/models"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func mongoFindOneNewest() *options.FindOneOptions {
	return options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// resolveCart returns the single cart owned by the request identity,
// creating one when needed. Authenticated requests get the user cart; guests
// are keyed by the Cart-Session-Id header, minted here when absent.
func resolveCart(ctx context.Context, c echo.Context) (*models.Cart, error) {
	carts := database.DB.Collection("carts")

	if userID, ok := middleware.UserID(c); ok {
		var cart models.Cart
		err := carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
		if err == nil {
			return &cart, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}

		cart = models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{}}
		if err := cart.Prepare(); err != nil {
			return nil, err
		}
		if _, err := carts.InsertOne(ctx, cart); err != nil {
			return nil, err
		}
		return &cart, nil
	}

	sessionID := c.Request().Header.Get("Cart-Session-Id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var cart models.Cart
	err := carts.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&cart)
	if err == nil {
		return &cart, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	cart = models.Cart{ID: primitive.NewObjectID(), SessionID: sessionID, Items: []models.CartItem{}}
	if err := cart.Prepare(); err != nil {
		return nil, err
	}
	if _, err := carts.InsertOne(ctx, cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// saveCart recomputes totals and replaces the cart document.
func saveCart(ctx context.Context, cart *models.Cart) error {
	if err := cart.Prepare(); err != nil {
		return err
	}
	_, err := database.DB.Collection("carts").ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	return err
}

type cartItemView struct {
	ID         string      `json:"id"`
	Product    interface{} `json:"product"`
	Variation  interface{} `json:"variation"`
	Quantity   int         `json:"quantity"`
	UnitPrice  float64     `json:"unitPrice"`
	TotalPrice float64     `json:"totalPrice"`
	AddedAt    time.Time   `json:"addedAt"`
}

// GetCart renders the cart against current product data: items whose product
// or variation vanished are dropped from the view, prices reflect current
// discounts, and totals are recomputed from what is shown.
func GetCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cart, err := resolveCart(ctx, c)
	if err != nil {
		return utils.Internal(c, "Failed to retrieve cart", err)
	}

	productIDs := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	productsByID := map[primitive.ObjectID]models.Product{}
	if len(productIDs) > 0 {
		cursor, err := database.DB.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": productIDs}})
		if err != nil {
			return utils.Internal(c, "Failed to retrieve cart", err)
		}
		defer cursor.Close(ctx)
		for cursor.Next(ctx) {
			var p models.Product
			if err := cursor.Decode(&p); err != nil {
				return utils.Internal(c, "Failed to retrieve cart", err)
			}
			productsByID[p.ID] = p
		}
	}

	items := make([]cartItemView, 0, len(cart.Items))
	totalItems := 0
	totalPrice := 0.0
	for _, item := range cart.Items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			continue
		}
		variation := product.VariationAt(item.VariationIndex)
		if variation == nil {
			continue
		}

		unitPrice := variation.FinalPrice()
		items = append(items, cartItemView{
			ID: fmt.Sprintf("%s-%d", product.ID.Hex(), item.VariationIndex),
			Product: echo.Map{
				"id":       product.ID,
				"name":     product.Name,
				"brand":    product.Brand,
				"category": product.Category,
			},
			Variation: echo.Map{
				"index":    item.VariationIndex,
				"color":    variation.Color,
				"size":     variation.Size,
				"weight":   variation.Weight,
				"price":    variation.Price,
				"discount": variation.Discount,
				"stock":    variation.Stock,
				"images":   variation.Images,
			},
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice * float64(item.Quantity),
			AddedAt:    item.AddedAt,
		})
		totalItems += item.Quantity
		totalPrice += unitPrice * float64(item.Quantity)
	}

	return utils.OK(c, http.StatusOK, "Cart retrieved successfully", echo.Map{
		"cart": echo.Map{
			"id":         cart.ID,
			"items":      items,
			"totalItems": totalItems,
			"totalPrice": totalPrice,
			"createdAt":  cart.CreatedAt,
			"updatedAt":  cart.UpdatedAt,
		},
		"sessionId": cart.SessionID,
	})
}

type AddToCartRequest struct {
	ProductID      string `json:"productId"`
	VariationIndex *int   `json:"variationIndex"`
	Quantity       int    `json:"quantity"`
}

func AddToCart(c echo.Context) error {
	var req AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.ProductID == "" || req.VariationIndex == nil {
		return utils.Fail(c, http.StatusBadRequest, "Product ID and variation index are required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return utils.Fail(c, http.StatusBadRequest, "Quantity must be at least 1")
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var product models.Product
	err = database.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Product not found")
	}

	variation := product.VariationAt(*req.VariationIndex)
	if variation == nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid variation index")
	}

	if variation.Stock < quantity {
		return utils.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("Insufficient stock. Available: %d", variation.Stock))
	}

	cart, err := resolveCart(ctx, c)
	if err != nil {
		return utils.Internal(c, "Failed to add item to cart", err)
	}

	if idx := cart.FindItem(productID, *req.VariationIndex); idx >= 0 {
		newQuantity := cart.Items[idx].Quantity + quantity
		if newQuantity > variation.Stock {
			return utils.Fail(c, http.StatusBadRequest,
				fmt.Sprintf("Cannot add %d items. Maximum available: %d",
					quantity, variation.Stock-cart.Items[idx].Quantity))
		}
		cart.Items[idx].Quantity = newQuantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:      productID,
			VariationIndex: *req.VariationIndex,
			Quantity:       quantity,
			Price:          variation.FinalPrice(),
			AddedAt:        time.Now(),
		})
	}

	if err := saveCart(ctx, cart); err != nil {
		return utils.Internal(c, "Failed to add item to cart", err)
	}

	return utils.OK(c, http.StatusOK, "Item added to cart successfully", echo.Map{
		"cart": echo.Map{
			"totalItems": cart.TotalItems,
			"totalPrice": cart.TotalPrice,
		},
		"sessionId": cart.SessionID,
	})
}

type UpdateCartItemRequest struct {
	ProductID      string `json:"productId"`
	VariationIndex *int   `json:"variationIndex"`
	Quantity       int    `json:"quantity"`
}

func UpdateCartItem(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.ProductID == "" || req.VariationIndex == nil || req.Quantity == 0 {
		return utils.Fail(c, http.StatusBadRequest, "Product ID, variation index, and quantity are required")
	}
	if req.Quantity < 1 {
		return utils.Fail(c, http.StatusBadRequest, "Quantity must be at least 1")
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cart, err := resolveCart(ctx, c)
	if err != nil {
		return utils.Internal(c, "Failed to update cart item", err)
	}

	idx := cart.FindItem(productID, *req.VariationIndex)
	if idx == -1 {
		return utils.Fail(c, http.StatusNotFound, "Item not found in cart")
	}

	var product models.Product
	err = database.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Product or variation not found")
	}
	variation := product.VariationAt(*req.VariationIndex)
	if variation == nil {
		return utils.Fail(c, http.StatusNotFound, "Product or variation not found")
	}

	if req.Quantity > variation.Stock {
		return utils.Fail(c, http.StatusBadRequest,
			fmt.Sprintf("Insufficient stock. Available: %d", variation.Stock))
	}

	cart.Items[idx].Quantity = req.Quantity
	cart.Items[idx].Price = variation.FinalPrice()

	if err := saveCart(ctx, cart); err != nil {
		return utils.Internal(c, "Failed to update cart item", err)
	}

	return utils.OK(c, http.StatusOK, "Cart item updated successfully", echo.Map{
		"cart": echo.Map{
			"totalItems": cart.TotalItems,
			"totalPrice": cart.TotalPrice,
		},
	})
}

type RemoveFromCartRequest struct {
	ProductID      string `json:"productId"`
	VariationIndex *int   `json:"variationIndex"`
}

func RemoveFromCart(c echo.Context) error {
	var req RemoveFromCartRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.ProductID == "" || req.VariationIndex == nil {
		return utils.Fail(c, http.StatusBadRequest, "Product ID and variation index are required")
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cart, err := resolveCart(ctx, c)
	if err != nil {
		return utils.Internal(c, "Failed to remove item from cart", err)
	}

	idx := cart.FindItem(productID, *req.VariationIndex)
	if idx == -1 {
		return utils.Fail(c, http.StatusNotFound, "Item not found in cart")
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := saveCart(ctx, cart); err != nil {
		return utils.Internal(c, "Failed to remove item from cart", err)
	}

	return utils.OK(c, http.StatusOK, "Item removed from cart successfully", echo.Map{
		"cart": echo.Map{
			"totalItems": cart.TotalItems,
			"totalPrice": cart.TotalPrice,
		},
	})
}

func ClearCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cart, err := resolveCart(ctx, c)
	if err != nil {
		return utils.Internal(c, "Failed to clear cart", err)
	}

	cart.Items = []models.CartItem{}

	if err := saveCart(ctx, cart); err != nil {
		return utils.Internal(c, "Failed to clear cart", err)
	}

	return utils.OK(c, http.StatusOK, "Cart cleared successfully", echo.Map{
		"cart": echo.Map{
			"totalItems": 0,
			"totalPrice": 0,
		},
	})
}

type MergeCartRequest struct {
	SessionID string `json:"sessionId"`
}

// MergeCart folds a guest cart into the authenticated user's cart.
func MergeCart(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req MergeCartRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.SessionID == "" {
		return utils.Fail(c, http.StatusBadRequest, "Session ID is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	merged, err := mergeGuestCart(ctx, userID, req.SessionID)
	if err != nil {
		return utils.Internal(c, "Failed to merge cart", err)
	}
	if !merged {
		return utils.OK(c, http.StatusOK, "No guest cart items to merge", nil)
	}

	var userCart models.Cart
	if err := database.DB.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&userCart); err != nil {
		return utils.Internal(c, "Failed to merge cart", err)
	}

	return utils.OK(c, http.StatusOK, "Cart merged successfully", echo.Map{
		"cart": echo.Map{
			"totalItems": userCart.TotalItems,
			"totalPrice": userCart.TotalPrice,
		},
	})
}

// mergeGuestCart moves items from the session-keyed cart into the user cart,
// summing quantities on matching lines, then deletes the guest cart. Returns
// false when there was nothing to merge.
func mergeGuestCart(ctx context.Context, userID primitive.ObjectID, sessionID string) (bool, error) {
	carts := database.DB.Collection("carts")

	var guestCart models.Cart
	err := carts.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&guestCart)
	if err == mongo.ErrNoDocuments || (err == nil && len(guestCart.Items) == 0) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var userCart models.Cart
	err = carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&userCart)
	if err == mongo.ErrNoDocuments {
		userCart = models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{}}
		if err := userCart.Prepare(); err != nil {
			return false, err
		}
		if _, err := carts.InsertOne(ctx, userCart); err != nil {
			return false, err
		}
	} else if err != nil {
		return false, err
	}

	for _, guestItem := range guestCart.Items {
		if idx := userCart.FindItem(guestItem.ProductID, guestItem.VariationIndex); idx >= 0 {
			userCart.Items[idx].Quantity += guestItem.Quantity
		} else {
			userCart.Items = append(userCart.Items, guestItem)
		}
	}

	if err := saveCart(ctx, &userCart); err != nil {
		return false, err
	}

	if _, err := carts.DeleteOne(ctx, bson.M{"sessionId": sessionID}); err != nil {
		return false, err
	}
	return true, nil
}
