package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/amirhose1n/miropet-server/database"
	"github.com/amirhose1n/miropet-server/models"
	"github.com/amirhose1n/miropet-server/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var productSortFields = map[string]bool{
	"createdAt": true,
	"name":      true,
	"updatedAt": true,
}

// GetAllProducts is the public catalog listing with category filter,
// free-text search over name/description/brand, sorting and pagination.
func GetAllProducts(c echo.Context) error {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	filter := bson.M{}
	if params := c.QueryParams()["category"]; len(params) > 0 {
		filter["category"] = bson.M{"$in": params}
	}
	if search := c.QueryParam("search"); search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": regex},
			{"description": regex},
			{"brand": regex},
		}
	}

	sortBy := c.QueryParam("sortBy")
	if !productSortFields[sortBy] {
		sortBy = "createdAt"
	}
	sortDir := -1
	if c.QueryParam("sortOrder") == "asc" {
		sortDir = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products := database.DB.Collection("products")

	findOpts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortDir}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := products.Find(ctx, filter, findOpts)
	if err != nil {
		return utils.Internal(c, "دریافت محصولات ناموفق بود", err)
	}
	defer cursor.Close(ctx)

	results := []models.Product{}
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Internal(c, "دریافت محصولات ناموفق بود", err)
	}

	totalCount, err := products.CountDocuments(ctx, filter)
	if err != nil {
		return utils.Internal(c, "دریافت محصولات ناموفق بود", err)
	}
	totalPages := (totalCount + int64(limit) - 1) / int64(limit)

	return utils.OK(c, http.StatusOK, "محصولات با موفقیت دریافت شد", echo.Map{
		"products": results,
		"pagination": echo.Map{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalCount":  totalCount,
			"limit":       limit,
			"hasNextPage": int64(page) < totalPages,
			"hasPrevPage": page > 1,
		},
	})
}

func GetProductByID(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "محصول یافت نشد")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var product models.Product
	err = database.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "محصول یافت نشد")
		}
		return utils.Internal(c, "دریافت محصول ناموفق بود", err)
	}

	return utils.OK(c, http.StatusOK, "محصول با موفقیت دریافت شد", echo.Map{"product": product})
}

type ProductRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    []string           `json:"category"`
	Brand       string             `json:"brand"`
	Variations  []models.Variation `json:"variations"`
	IsFeatured  bool               `json:"isFeatured"`
}

// CreateProduct adds a catalog product with at least one valid variation.
// Admin only.
func CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}

	if req.Name == "" || len(req.Category) == 0 {
		return utils.Fail(c, http.StatusBadRequest, "اعتبارسنجی ناموفق بود")
	}
	if err := models.ValidateVariations(req.Variations); err != nil {
		return utils.Fail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products := database.DB.Collection("products")

	// SKUs are derived from name and brand, deduplicated against existing ones.
	var existing []string
	cursor, err := products.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"sku": 1}))
	if err == nil {
		var docs []struct {
			SKU string `bson:"sku"`
		}
		if err := cursor.All(ctx, &docs); err == nil {
			for _, doc := range docs {
				existing = append(existing, doc.SKU)
			}
		}
	}

	now := time.Now()
	product := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		SKU:         utils.GenerateUniqueSKU(req.Name, req.Brand, existing),
		Variations:  req.Variations,
		IsFeatured:  req.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := products.InsertOne(ctx, product); err != nil {
		return utils.Internal(c, "ایجاد محصول ناموفق بود", err)
	}

	return utils.OK(c, http.StatusCreated, "محصول با موفقیت ایجاد شد", echo.Map{"product": product})
}

// UpdateProduct applies a partial update. Variations, when present, replace
// the whole slice and are re-validated. Admin only.
func UpdateProduct(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "محصول یافت نشد")
	}

	var body map[string]interface{}
	if err := c.Bind(&body); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
	}
	delete(body, "_id")
	delete(body, "createdAt")

	if raw, ok := body["variations"]; ok {
		// Round-trip through bson to get typed variations for validation.
		data, err := bson.Marshal(bson.M{"variations": raw})
		if err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
		}
		var wrapper struct {
			Variations []models.Variation `bson:"variations"`
		}
		if err := bson.Unmarshal(data, &wrapper); err != nil {
			return utils.Fail(c, http.StatusBadRequest, "Invalid request format")
		}
		if err := models.ValidateVariations(wrapper.Variations); err != nil {
			return utils.Fail(c, http.StatusBadRequest, err.Error())
		}
	}

	body["updatedAt"] = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var product models.Product
	err = database.DB.Collection("products").FindOneAndUpdate(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": body},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return utils.Fail(c, http.StatusNotFound, "محصول یافت نشد")
		}
		return utils.Internal(c, "به‌روزرسانی محصول ناموفق بود", err)
	}

	return utils.OK(c, http.StatusOK, "محصول با موفقیت به‌روزرسانی شد", echo.Map{"product": product})
}

// DeleteProduct removes a product. Admin only.
func DeleteProduct(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return utils.Fail(c, http.StatusNotFound, "محصول یافت نشد")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := database.DB.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		return utils.Internal(c, "حذف محصول ناموفق بود", err)
	}
	if res.DeletedCount == 0 {
		return utils.Fail(c, http.StatusNotFound, "محصول یافت نشد")
	}

	return utils.OK(c, http.StatusOK, "محصول با موفقیت حذف شد", nil)
}
