package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/amirhose1n/miropet-server/database"
	"github.com/amirhose1n/miropet-server/middleware"
	"github.com/amirhose1n/miropet-server/models"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Gateway is the payment collaborator used at checkout. Swappable so tests
// and a future real bank adapter can replace the simulator.
var Gateway utils.PaymentGateway = utils.NewSimulatedGateway()

type CheckoutRequest struct {
	ShippingAddressID string `json:"shippingAddressId"`
	BillingAddressID  string `json:"billingAddressId,omitempty"`
	DeliveryMethodID  string `json:"deliveryMethodId,omitempty"`
	PaymentMethod     string `json:"paymentMethod,omitempty"`
	CustomerNotes     string `json:"customerNotes,omitempty"`
}

// reserveStock takes stock for every order line with conditional writes.
// Each decrement only applies while the variation still holds enough stock,
// so two concurrent checkouts cannot both take the last unit. On a failed
// line it returns the already-reserved prefix for compensation.
func reserveStock(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	products := database.DB.Collection("products")

	reserved := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		stockField := fmt.Sprintf("variations.%d.stock", item.VariationIndex)
		res, err := products.UpdateOne(ctx,
			bson.M{"_id": item.ProductID, stockField: bson.M{"$gte": item.Quantity}},
			bson.M{"$inc": bson.M{stockField: -item.Quantity}},
		)
		if err != nil {
			return reserved, err
		}
		if res.ModifiedCount == 0 {
			return reserved, fmt.Errorf("insufficient stock for %s", item.ProductName)
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

// releaseStock undoes reservations, item by item.
func releaseStock(ctx context.Context, items []models.OrderItem) {
	products := database.DB.Collection("products")
	for _, item := range items {
		stockField := fmt.Sprintf("variations.%d.stock", item.VariationIndex)
		if _, err := products.UpdateOne(ctx,
			bson.M{"_id": item.ProductID},
			bson.M{"$inc": bson.M{stockField: item.Quantity}},
		); err != nil {
			log.Printf("Failed to release stock for %s: %v", item.ProductID.Hex(), err)
		}
	}
}

// Checkout snapshots the cart into an order, reserves stock, takes payment
// and finalizes. The order document is persisted before payment so an audit
// record survives either outcome.
func Checkout(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.ShippingAddressID == "" {
		return utils.Fail(c, http.StatusBadRequest, "Shipping address ID is required")
	}

	shippingAddressID, err := primitive.ObjectIDFromHex(req.ShippingAddressID)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid shipping address")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	addresses := database.DB.Collection("addresses")

	var shippingAddress models.Address
	err = addresses.FindOne(ctx, bson.M{"_id": shippingAddressID, "userId": userID}).Decode(&shippingAddress)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid shipping address")
	}

	var billingAddressID primitive.ObjectID
	if req.BillingAddressID != "" {
		billingAddressID, err = primitive.ObjectIDFromHex(req.BillingAddressID)
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid billing address")
		}
		err = addresses.FindOne(ctx, bson.M{"_id": billingAddressID, "userId": userID}).Err()
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid billing address")
		}
	}

	var deliveryMethod *models.DeliveryMethod
	deliveryMethodPrice := 0.0
	if req.DeliveryMethodID != "" {
		deliveryMethodID, err := primitive.ObjectIDFromHex(req.DeliveryMethodID)
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid delivery method")
		}
		var dm models.DeliveryMethod
		err = database.DB.Collection("deliverymethods").FindOne(ctx, bson.M{"_id": deliveryMethodID}).Decode(&dm)
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid delivery method")
		}
		if !dm.IsEnabled {
			return utils.Fail(c, http.StatusBadRequest, "Selected delivery method is not available")
		}
		deliveryMethod = &dm
		deliveryMethodPrice = dm.Price
	}

	carts := database.DB.Collection("carts")

	var cart models.Cart
	err = carts.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil || len(cart.Items) == 0 {
		return utils.Fail(c, http.StatusBadRequest, "Cart is empty")
	}

	// Validate every line against current product data and build the
	// immutable snapshot. Any violation aborts with no order created.
	productsColl := database.DB.Collection("products")
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	subtotal := 0.0

	for _, cartItem := range cart.Items {
		var product models.Product
		err := productsColl.FindOne(ctx, bson.M{"_id": cartItem.ProductID}).Decode(&product)
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid product in cart")
		}

		variation := product.VariationAt(cartItem.VariationIndex)
		if variation == nil {
			return utils.Fail(c, http.StatusBadRequest,
				fmt.Sprintf("Invalid variation for product %s", product.Name))
		}

		if variation.Stock < cartItem.Quantity {
			return utils.Fail(c, http.StatusBadRequest,
				fmt.Sprintf("Insufficient stock for %s. Available: %d", product.Name, variation.Stock))
		}

		unitPrice := variation.FinalPrice()
		lineTotal := unitPrice * float64(cartItem.Quantity)
		subtotal += lineTotal

		orderItems = append(orderItems, models.OrderItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			ProductBrand:   product.Brand,
			VariationIndex: cartItem.VariationIndex,
			VariationDetails: models.VariationDetails{
				Color:  variation.Color,
				Size:   variation.Size,
				Weight: variation.Weight,
			},
			Quantity:   cartItem.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
	}

	// Reserve stock before payment. The conditional writes close the window
	// where two concurrent checkouts both pass the read-time stock check.
	reserved, err := reserveStock(ctx, orderItems)
	if err != nil {
		releaseStock(ctx, reserved)
		return utils.Fail(c, http.StatusBadRequest, err.Error())
	}

	shippingCost := models.CalculateShipping(subtotal, deliveryMethodPrice)
	tax := 0.0 // Reserved for future use.
	discount := 0.0
	totalAmount := subtotal + shippingCost + tax - discount

	now := time.Now()
	order := models.Order{
		ID:                primitive.NewObjectID(),
		UserID:            userID,
		OrderNumber:       models.NewOrderNumber(),
		Items:             orderItems,
		Subtotal:          subtotal,
		ShippingCost:      shippingCost,
		Tax:               tax,
		Discount:          discount,
		TotalAmount:       totalAmount,
		ShippingAddressID: shippingAddressID,
		BillingAddressID:  billingAddressID,
		PaymentMethod:     req.PaymentMethod,
		CustomerNotes:     req.CustomerNotes,
		Status:            models.OrderStatusSubmitted,
		PaymentStatus:     models.PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if deliveryMethod != nil {
		order.DeliveryMethodID = deliveryMethod.ID
		order.DeliveryMethodName = deliveryMethod.Name
		order.DeliveryMethodPrice = deliveryMethodPrice
	}

	orders := database.DB.Collection("orders")
	if _, err := orders.InsertOne(ctx, order); err != nil {
		releaseStock(ctx, reserved)
		return utils.Internal(c, "Failed to process checkout", err)
	}
	utils.OrdersCreated.Inc()

	var user models.User
	if err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		log.Printf("Failed to load user %s for payment: %v", userID.Hex(), err)
	}

	paymentResult, err := Gateway.ProcessPayment(ctx, utils.PaymentRequest{
		OrderID:       order.ID,
		Amount:        totalAmount,
		PaymentMethod: req.PaymentMethod,
		UserID:        userID,
		Email:         user.Email,
	})
	if err != nil {
		paymentResult = utils.PaymentResult{Success: false, Error: err.Error()}
	}

	if !paymentResult.Success {
		utils.PaymentsProcessed.WithLabelValues("failed").Inc()

		// Failed payment: return the reserved stock, keep the cart, and
		// leave the failed order behind for retry or inspection.
		releaseStock(ctx, reserved)
		order.PaymentStatus = models.PaymentStatusFailed
		order.UpdatedAt = time.Now()
		if _, err := orders.UpdateOne(ctx, bson.M{"_id": order.ID},
			bson.M{"$set": bson.M{"paymentStatus": order.PaymentStatus, "updatedAt": order.UpdatedAt}}); err != nil {
			log.Printf("Failed to mark order %s payment failed: %v", order.OrderNumber, err)
		}

		return utils.FailWithData(c, http.StatusBadRequest, "Payment failed", echo.Map{
			"order": echo.Map{
				"id":            order.ID,
				"orderNumber":   order.OrderNumber,
				"status":        order.Status,
				"paymentStatus": order.PaymentStatus,
			},
			"payment": echo.Map{
				"error": paymentResult.Error,
			},
		})
	}

	utils.PaymentsProcessed.WithLabelValues("paid").Inc()

	order.PaymentStatus = models.PaymentStatusPaid
	order.ApplyStatus(models.OrderStatusInProgress)
	if _, err := orders.UpdateOne(ctx, bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"paymentStatus": order.PaymentStatus,
			"status":        order.Status,
			"confirmedAt":   order.ConfirmedAt,
			"updatedAt":     order.UpdatedAt,
		}}); err != nil {
		log.Printf("Failed to finalize order %s: %v", order.OrderNumber, err)
	}

	cart.Items = []models.CartItem{}
	if err := saveCart(ctx, &cart); err != nil {
		log.Printf("Failed to clear cart after order %s: %v", order.OrderNumber, err)
	}

	return utils.OK(c, http.StatusCreated, "سفارش با موفقیت ثبت شد", echo.Map{
		"order": echo.Map{
			"id":            order.ID,
			"orderNumber":   order.OrderNumber,
			"totalAmount":   order.TotalAmount,
			"status":        order.Status,
			"paymentStatus": order.PaymentStatus,
			"createdAt":     order.CreatedAt,
		},
		"payment": echo.Map{
			"transactionId": paymentResult.TransactionID,
			"status":        "completed",
		},
	})
}

func intQuery(c echo.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return fallback
}

// GetOrders lists all orders with filters and pagination. Admin only.
func GetOrders(c echo.Context) error {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if paymentStatus := c.QueryParam("paymentStatus"); paymentStatus != "" {
		filter["paymentStatus"] = paymentStatus
	}
	if userID := c.QueryParam("userId"); userID != "" {
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid user ID")
		}
		filter["userId"] = objID
	}
	if orderNumber := c.QueryParam("orderNumber"); orderNumber != "" {
		filter["orderNumber"] = bson.M{"$regex": orderNumber, "$options": "i"}
	}

	createdAt := bson.M{}
	if startDate := c.QueryParam("startDate"); startDate != "" {
		if t, err := time.Parse(time.RFC3339, startDate); err == nil {
			createdAt["$gte"] = t
		}
	}
	if endDate := c.QueryParam("endDate"); endDate != "" {
		if t, err := time.Parse(time.RFC3339, endDate); err == nil {
			createdAt["$lte"] = t
		}
	}
	if len(createdAt) > 0 {
		filter["createdAt"] = createdAt
	}

	sortBy := c.QueryParam("sortBy")
	if sortBy == "" {
		sortBy = "createdAt"
	}
	sortDir := -1
	if c.QueryParam("sortOrder") == "asc" {
		sortDir = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := database.DB.Collection("orders")

	findOpts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortDir}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := orders.Find(ctx, filter, findOpts)
	if err != nil {
		return utils.Internal(c, "Failed to fetch orders", err)
	}
	defer cursor.Close(ctx)

	results := []models.Order{}
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Internal(c, "Failed to fetch orders", err)
	}

	totalOrders, err := orders.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Internal(c, "Failed to fetch orders", err)
	}
	totalPages := (totalOrders + int64(limit) - 1) / int64(limit)

	return utils.OK(c, http.StatusOK, "Orders retrieved successfully", echo.Map{
		"orders": results,
		"pagination": echo.Map{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalOrders": totalOrders,
			"hasNextPage": int64(page) < totalPages,
			"hasPrevPage": page > 1,
		},
	})
}

// GetUserOrders lists the authenticated user's orders.
func GetUserOrders(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := bson.M{"userId": userID}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if paymentStatus := c.QueryParam("paymentStatus"); paymentStatus != "" {
		filter["paymentStatus"] = paymentStatus
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := database.DB.Collection("orders")

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := orders.Find(ctx, filter, findOpts)
	if err != nil {
		return utils.Internal(c, "Failed to fetch user orders", err)
	}
	defer cursor.Close(ctx)

	results := []models.Order{}
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Internal(c, "Failed to fetch user orders", err)
	}

	totalOrders, err := orders.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Internal(c, "Failed to fetch user orders", err)
	}

	return utils.OK(c, http.StatusOK, "Orders retrieved successfully", echo.Map{
		"orders": results,
		"pagination": echo.Map{
			"currentPage": page,
			"totalPages":  (totalOrders + int64(limit) - 1) / int64(limit),
			"totalOrders": totalOrders,
		},
	})
}

func GetOrderByID(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid order ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = database.DB.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Order not found")
		}
		return utils.Internal(c, "Failed to fetch order", err)
	}

	return utils.OK(c, http.StatusOK, "Order retrieved successfully", echo.Map{"order": order})
}

type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CancelOrder cancels an order before it ships, marks paid orders refunded
// and restores stock for every line item exactly once.
func CancelOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid order ID")
	}

	var req CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := database.DB.Collection("orders")

	var order models.Order
	err = orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Order not found")
		}
		return utils.Internal(c, "Failed to cancel order", err)
	}

	if err := order.CanCancel(); err != nil {
		return utils.Fail(c, http.StatusBadRequest, err.Error())
	}

	reason := req.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	order.ApplyStatus(models.OrderStatusCanceled)
	order.AdminNotes = "Canceled: " + reason
	if order.PaymentStatus == models.PaymentStatusPaid {
		// Refund stub: no gateway call happens here yet.
		order.PaymentStatus = models.PaymentStatusRefunded
	}

	if _, err := orders.UpdateOne(ctx, bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"status":        order.Status,
			"paymentStatus": order.PaymentStatus,
			"adminNotes":    order.AdminNotes,
			"updatedAt":     order.UpdatedAt,
		}}); err != nil {
		return utils.Internal(c, "Failed to cancel order", err)
	}

	releaseStock(ctx, order.Items)
	utils.OrdersCanceled.Inc()

	return utils.OK(c, http.StatusOK, "Order canceled successfully", echo.Map{"order": order})
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status"`
	AdminNotes     string `json:"adminNotes,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

// UpdateOrderStatus moves an order along its lifecycle, stamping the
// milestone timestamps. Admin only.
func UpdateOrderStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid order ID")
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}

	status := models.OrderStatus(req.Status)
	if !models.ValidOrderStatus(status) {
		return utils.Fail(c, http.StatusBadRequest, "Invalid status")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := database.DB.Collection("orders")

	var order models.Order
	err = orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Order not found")
		}
		return utils.Internal(c, "Failed to update order status", err)
	}

	order.ApplyStatus(status)
	if req.AdminNotes != "" {
		order.AdminNotes = req.AdminNotes
	}
	if req.TrackingNumber != "" {
		order.TrackingNumber = req.TrackingNumber
	}

	update := bson.M{
		"status":    order.Status,
		"updatedAt": order.UpdatedAt,
	}
	if order.ConfirmedAt != nil {
		update["confirmedAt"] = order.ConfirmedAt
	}
	if order.ShippedAt != nil {
		update["shippedAt"] = order.ShippedAt
	}
	if order.DeliveredAt != nil {
		update["deliveredAt"] = order.DeliveredAt
	}
	if req.AdminNotes != "" {
		update["adminNotes"] = order.AdminNotes
	}
	if req.TrackingNumber != "" {
		update["trackingNumber"] = order.TrackingNumber
	}

	if _, err := orders.UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": update}); err != nil {
		return utils.Internal(c, "Failed to update order status", err)
	}

	return utils.OK(c, http.StatusOK, "Order status updated successfully", echo.Map{"order": order})
}

type statGroup struct {
	ID          string  `bson:"_id" json:"status"`
	Count       int64   `bson:"count" json:"count"`
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"`
}

// GetOrderStats aggregates order counts and revenue by status. Admin only.
func GetOrderStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := database.DB.Collection("orders")

	groupBy := func(field string) ([]statGroup, error) {
		cursor, err := orders.Aggregate(ctx, mongo.Pipeline{
			{{Key: "$group", Value: bson.M{
				"_id":         "$" + field,
				"count":       bson.M{"$sum": 1},
				"totalAmount": bson.M{"$sum": "$totalAmount"},
			}}},
		})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)
		groups := []statGroup{}
		if err := cursor.All(ctx, &groups); err != nil {
			return nil, err
		}
		return groups, nil
	}

	orderStats, err := groupBy("status")
	if err != nil {
		return utils.Internal(c, "Failed to fetch order statistics", err)
	}
	paymentStats, err := groupBy("paymentStatus")
	if err != nil {
		return utils.Internal(c, "Failed to fetch order statistics", err)
	}

	totalOrders, err := orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		return utils.Internal(c, "Failed to fetch order statistics", err)
	}

	revenueCursor, err := orders.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": models.PaymentStatusPaid}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	})
	if err != nil {
		return utils.Internal(c, "Failed to fetch order statistics", err)
	}
	defer revenueCursor.Close(ctx)

	totalRevenue := 0.0
	var revenue []struct {
		Total float64 `bson:"total"`
	}
	if err := revenueCursor.All(ctx, &revenue); err != nil {
		return utils.Internal(c, "Failed to fetch order statistics", err)
	}
	if len(revenue) > 0 {
		totalRevenue = revenue[0].Total
	}

	return utils.OK(c, http.StatusOK, "Order statistics retrieved successfully", echo.Map{
		"orderStats":   orderStats,
		"paymentStats": paymentStats,
		"totalOrders":  totalOrders,
		"totalRevenue": totalRevenue,
	})
}
