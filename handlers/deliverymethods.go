package handlers

import (
	"context"
	"net/http"
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

// GetDeliveryMethods lists the enabled delivery options for customers,
// cheapest first.
func GetDeliveryMethods(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("deliverymethods").Find(ctx,
		bson.M{"isEnabled": true},
		options.Find().
			SetSort(bson.D{{Key: "price", Value: 1}}).
			SetProjection(bson.M{"name": 1, "subtitle": 1, "price": 1, "validationDesc": 1}),
	)
	if err != nil {
		return utils.Internal(c, "Failed to retrieve delivery methods", err)
	}
	defer cursor.Close(ctx)

	methods := []models.DeliveryMethod{}
	if err := cursor.All(ctx, &methods); err != nil {
		return utils.Internal(c, "Failed to retrieve delivery methods", err)
	}

	return utils.OK(c, http.StatusOK, "Delivery methods retrieved successfully", echo.Map{
		"deliveryMethods": methods,
		"total":           len(methods),
	})
}

// GetAllDeliveryMethodsAdmin lists every delivery method, disabled ones
// included, with search and pagination. Admin only.
func GetAllDeliveryMethodsAdmin(c echo.Context) error {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := bson.M{}
	if search := c.QueryParam("search"); search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{{"name": regex}, {"subtitle": regex}}
	}
	if isEnabled := c.QueryParam("isEnabled"); isEnabled != "" {
		filter["isEnabled"] = isEnabled == "true"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	methods := database.DB.Collection("deliverymethods")

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := methods.Find(ctx, filter, findOpts)
	if err != nil {
		return utils.Internal(c, "Failed to retrieve delivery methods", err)
	}
	defer cursor.Close(ctx)

	results := []models.DeliveryMethod{}
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Internal(c, "Failed to retrieve delivery methods", err)
	}

	total, err := methods.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Internal(c, "Failed to retrieve delivery methods", err)
	}

	return utils.OK(c, http.StatusOK, "Delivery methods retrieved successfully", echo.Map{
		"deliveryMethods": results,
		"pagination": echo.Map{
			"currentPage":  page,
			"totalPages":   (total + int64(limit) - 1) / int64(limit),
			"totalItems":   total,
			"itemsPerPage": limit,
		},
	})
}

func GetDeliveryMethodByID(c echo.Context) error {
	methodID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var method models.DeliveryMethod
	err = database.DB.Collection("deliverymethods").FindOne(ctx, bson.M{"_id": methodID}).Decode(&method)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
		}
		return utils.Internal(c, "Failed to retrieve delivery method", err)
	}

	return utils.OK(c, http.StatusOK, "Delivery method retrieved successfully", echo.Map{"deliveryMethod": method})
}

type DeliveryMethodRequest struct {
	Name           string   `json:"name"`
	Subtitle       string   `json:"subtitle"`
	Price          *float64 `json:"price"`
	ValidationDesc string   `json:"validationDesc"`
	IsEnabled      *bool    `json:"isEnabled"`
}

// CreateDeliveryMethod adds a delivery option with a unique name. Admin only.
func CreateDeliveryMethod(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req DeliveryMethodRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" || req.Subtitle == "" || req.Price == nil || *req.Price < 0 {
		return utils.Fail(c, http.StatusBadRequest, "Validation failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	methods := database.DB.Collection("deliverymethods")

	if err := methods.FindOne(ctx, bson.M{"name": req.Name}).Err(); err == nil {
		return utils.Fail(c, http.StatusBadRequest, "Delivery method with this name already exists")
	} else if err != mongo.ErrNoDocuments {
		return utils.Internal(c, "Failed to create delivery method", err)
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	now := time.Now()
	method := models.DeliveryMethod{
		ID:             primitive.NewObjectID(),
		Name:           req.Name,
		Subtitle:       req.Subtitle,
		Price:          *req.Price,
		ValidationDesc: req.ValidationDesc,
		IsEnabled:      isEnabled,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      adminID,
		UpdatedBy:      adminID,
	}

	if _, err := methods.InsertOne(ctx, method); err != nil {
		return utils.Internal(c, "Failed to create delivery method", err)
	}

	return utils.OK(c, http.StatusCreated, "Delivery method created successfully", echo.Map{"deliveryMethod": method})
}

// UpdateDeliveryMethod changes the provided fields only. Admin only.
func UpdateDeliveryMethod(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	methodID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
	}

	var req DeliveryMethodRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	methods := database.DB.Collection("deliverymethods")

	var method models.DeliveryMethod
	err = methods.FindOne(ctx, bson.M{"_id": methodID}).Decode(&method)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
		}
		return utils.Internal(c, "Failed to update delivery method", err)
	}

	if req.Name != "" && req.Name != method.Name {
		if err := methods.FindOne(ctx, bson.M{"name": req.Name}).Err(); err == nil {
			return utils.Fail(c, http.StatusBadRequest, "Delivery method with this name already exists")
		} else if err != mongo.ErrNoDocuments {
			return utils.Internal(c, "Failed to update delivery method", err)
		}
		method.Name = req.Name
	}
	if req.Subtitle != "" {
		method.Subtitle = req.Subtitle
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return utils.Fail(c, http.StatusBadRequest, "Validation failed")
		}
		method.Price = *req.Price
	}
	if req.ValidationDesc != "" {
		method.ValidationDesc = req.ValidationDesc
	}
	if req.IsEnabled != nil {
		method.IsEnabled = *req.IsEnabled
	}
	method.UpdatedBy = adminID
	method.UpdatedAt = time.Now()

	if _, err := methods.ReplaceOne(ctx, bson.M{"_id": method.ID}, method); err != nil {
		return utils.Internal(c, "Failed to update delivery method", err)
	}

	return utils.OK(c, http.StatusOK, "Delivery method updated successfully", echo.Map{"deliveryMethod": method})
}

// DeleteDeliveryMethod removes a delivery option. Admin only.
func DeleteDeliveryMethod(c echo.Context) error {
	methodID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("deliverymethods").DeleteOne(ctx, bson.M{"_id": methodID})
	if err != nil {
		return utils.Internal(c, "Failed to delete delivery method", err)
	}
	if res.DeletedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
	}

	return utils.OK(c, http.StatusOK, "Delivery method deleted successfully", nil)
}

// ToggleDeliveryMethodStatus flips the enabled flag. Admin only.
func ToggleDeliveryMethodStatus(c echo.Context) error {
	adminID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	methodID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	methods := database.DB.Collection("deliverymethods")

	var method models.DeliveryMethod
	err = methods.FindOne(ctx, bson.M{"_id": methodID}).Decode(&method)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Delivery method not found")
		}
		return utils.Internal(c, "Failed to toggle delivery method status", err)
	}

	method.IsEnabled = !method.IsEnabled
	method.UpdatedBy = adminID
	method.UpdatedAt = time.Now()

	if _, err := methods.UpdateOne(ctx, bson.M{"_id": method.ID},
		bson.M{"$set": bson.M{
			"isEnabled": method.IsEnabled,
			"updatedBy": method.UpdatedBy,
			"updatedAt": method.UpdatedAt,
		}}); err != nil {
		return utils.Internal(c, "Failed to toggle delivery method status", err)
	}

	message := "Delivery method disabled successfully"
	if method.IsEnabled {
		message = "Delivery method enabled successfully"
	}
	return utils.OK(c, http.StatusOK, message, echo.Map{"deliveryMethod": method})
}
