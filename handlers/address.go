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

type AddressRequest struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	IsDefault  bool   `json:"isDefault"`
}

func (r *AddressRequest) validate() string {
	if r.FullName == "" || r.Phone == "" || r.Address == "" || r.City == "" || r.PostalCode == "" {
		return "Validation failed"
	}
	return ""
}

// unsetOtherDefaults clears the default flag on every other address of the
// user, keeping at most one default per user.
func unsetOtherDefaults(ctx context.Context, userID, keep primitive.ObjectID) error {
	_, err := database.DB.Collection("addresses").UpdateMany(ctx,
		bson.M{"userId": userID, "_id": bson.M{"$ne": keep}},
		bson.M{"$set": bson.M{"isDefault": false, "updatedAt": time.Now()}},
	)
	return err
}

// GetUserAddresses lists the user's addresses, default first, newest next.
func GetUserAddresses(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("addresses").Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return utils.Internal(c, "Failed to retrieve addresses", err)
	}
	defer cursor.Close(ctx)

	addresses := []models.Address{}
	if err := cursor.All(ctx, &addresses); err != nil {
		return utils.Internal(c, "Failed to retrieve addresses", err)
	}

	return utils.OK(c, http.StatusOK, "Addresses retrieved successfully", echo.Map{"addresses": addresses})
}

func GetAddressByID(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Address not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var address models.Address
	err = database.DB.Collection("addresses").FindOne(ctx,
		bson.M{"_id": addressID, "userId": userID}).Decode(&address)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Address not found")
		}
		return utils.Internal(c, "Failed to retrieve address", err)
	}

	return utils.OK(c, http.StatusOK, "Address retrieved successfully", echo.Map{"address": address})
}

// CreateAddress adds an address. The user's first address always becomes the
// default, and an explicit default demotes the others.
func CreateAddress(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if msg := req.validate(); msg != "" {
		return utils.Fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addresses := database.DB.Collection("addresses")

	isDefault := req.IsDefault
	if !isDefault {
		count, err := addresses.CountDocuments(ctx, bson.M{"userId": userID})
		if err != nil {
			return utils.Internal(c, "Failed to create address", err)
		}
		if count == 0 {
			isDefault = true
		}
	}

	now := time.Now()
	address := models.Address{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		IsDefault:  isDefault,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := addresses.InsertOne(ctx, address); err != nil {
		return utils.Internal(c, "Failed to create address", err)
	}

	if isDefault {
		if err := unsetOtherDefaults(ctx, userID, address.ID); err != nil {
			return utils.Internal(c, "Failed to create address", err)
		}
	}

	return utils.OK(c, http.StatusCreated, "Address created successfully", echo.Map{"address": address})
}

// UpdateAddress replaces the editable fields of an owned address.
func UpdateAddress(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Address not found")
	}

	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	if msg := req.validate(); msg != "" {
		return utils.Fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addresses := database.DB.Collection("addresses")

	var address models.Address
	err = addresses.FindOne(ctx, bson.M{"_id": addressID, "userId": userID}).Decode(&address)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Address not found")
		}
		return utils.Internal(c, "Failed to update address", err)
	}

	address.FullName = req.FullName
	address.Phone = req.Phone
	address.Address = req.Address
	address.City = req.City
	address.PostalCode = req.PostalCode
	address.IsDefault = req.IsDefault
	address.UpdatedAt = time.Now()

	if _, err := addresses.ReplaceOne(ctx, bson.M{"_id": address.ID}, address); err != nil {
		return utils.Internal(c, "Failed to update address", err)
	}

	if address.IsDefault {
		if err := unsetOtherDefaults(ctx, userID, address.ID); err != nil {
			return utils.Internal(c, "Failed to update address", err)
		}
	}

	return utils.OK(c, http.StatusOK, "Address updated successfully", echo.Map{"address": address})
}

// DeleteAddress removes an owned address. When the default is deleted,
// another address (if any) is promoted so the user keeps a default.
func DeleteAddress(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Address not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addresses := database.DB.Collection("addresses")

	var address models.Address
	err = addresses.FindOne(ctx, bson.M{"_id": addressID, "userId": userID}).Decode(&address)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Address not found")
		}
		return utils.Internal(c, "Failed to delete address", err)
	}

	if address.IsDefault {
		if _, err := addresses.UpdateOne(ctx,
			bson.M{"userId": userID, "_id": bson.M{"$ne": addressID}},
			bson.M{"$set": bson.M{"isDefault": true, "updatedAt": time.Now()}},
		); err != nil {
			return utils.Internal(c, "Failed to delete address", err)
		}
	}

	if _, err := addresses.DeleteOne(ctx, bson.M{"_id": addressID}); err != nil {
		return utils.Internal(c, "Failed to delete address", err)
	}

	return utils.OK(c, http.StatusOK, "Address deleted successfully", nil)
}

// SetDefaultAddress marks an owned address as the single default.
func SetDefaultAddress(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
	}

	addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "Address not found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addresses := database.DB.Collection("addresses")

	var address models.Address
	err = addresses.FindOneAndUpdate(ctx,
		bson.M{"_id": addressID, "userId": userID},
		bson.M{"$set": bson.M{"isDefault": true, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&address)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "Address not found")
		}
		return utils.Internal(c, "Failed to update default address", err)
	}

	if err := unsetOtherDefaults(ctx, userID, address.ID); err != nil {
		return utils.Internal(c, "Failed to update default address", err)
	}

	return utils.OK(c, http.StatusOK, "Default address updated successfully", echo.Map{"address": address})
}
