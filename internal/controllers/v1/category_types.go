package v1

import (
	"fmt"
	"time"

	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/services"
	ez_uuid "github.com/finanzas/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryEditable represents all user configurable parameters
type CategoryEditable struct {
	Name          string              `json:"name" example:"Alimentación" default:""`                     // Name of the category
	Type          models.CategoryType `json:"type" example:"expense"`                                     // Category type, income or expense. Inherited from the parent for subcategories.
	Color         string              `json:"color" example:"#FF5252" default:""`                         // Display color
	Icon          string              `json:"icon" example:"coffee" default:""`                           // Display icon
	IsSubcategory bool                `json:"isSubcategory" example:"false" default:"false"`              // Is this a subcategory?
	ParentID      *uuid.UUID          `json:"parentId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`    // ID of the parent category. Must be set for subcategories and unset for top level categories.
}

func (editable CategoryEditable) model() models.Category {
	return models.Category{
		Name:          editable.Name,
		Type:          editable.Type,
		Color:         editable.Color,
		Icon:          editable.Icon,
		IsSubcategory: editable.IsSubcategory,
		ParentID:      editable.ParentID,
	}
}

type CategoryLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91d71772f"`                // The category itself
	Aggregate string `json:"aggregate" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91d71772f/aggregate"` // Budget aggregate for the category
}

type Category struct {
	models.DefaultModel
	CategoryEditable
	Links CategoryLinks `json:"links"`

	// These fields are computed
	Subcategories []Category `json:"subcategories"` // Subcategories of the category
}

func newCategory(c *gin.Context, db *gorm.DB, model models.Category) (Category, error) {
	url := c.GetString(string(models.DBContextURL))

	category := Category{
		DefaultModel: model.DefaultModel,
		CategoryEditable: CategoryEditable{
			Name:          model.Name,
			Type:          model.Type,
			Color:         model.Color,
			Icon:          model.Icon,
			IsSubcategory: model.IsSubcategory,
			ParentID:      model.ParentID,
		},
		Links: CategoryLinks{
			Self:      fmt.Sprintf("%s/v1/categories/%s", url, model.ID),
			Aggregate: fmt.Sprintf("%s/v1/categories/%s/aggregate", url, model.ID),
		},
		Subcategories: []Category{},
	}

	// Subcategories do not nest further
	if model.IsSubcategory {
		return category, nil
	}

	subcategories, err := model.Subcategories(db)
	if err != nil {
		return Category{}, err
	}

	for _, subcategory := range subcategories {
		child, err := newCategory(c, db, subcategory)
		if err != nil {
			return Category{}, err
		}
		category.Subcategories = append(category.Subcategories, child)
	}

	return category, nil
}

type CategoryListResponse struct {
	Data       []Category  `json:"data"`                                                          // List of Categories
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type CategoryCreateResponse struct {
	Data  []CategoryResponse `json:"data"`                                                          // List of the created Categories or their respective error
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (c *CategoryCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	c.Data = append(c.Data, CategoryResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type CategoryResponse struct {
	Data  *Category `json:"data"`                                                          // Data for the Category
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type CategoryQueryFilter struct {
	Name          string       `form:"name" filterField:"false"`   // By name
	Type          string       `form:"type"`                       // By type, income or expense
	IsSubcategory bool         `form:"isSubcategory"`              // Only subcategories or only top level categories
	ParentID      ez_uuid.UUID `form:"parent"`                     // By ID of the parent category
	Offset        uint         `form:"offset" filterField:"false"` // The offset of the first Category returned. Defaults to 0.
	Limit         int          `form:"limit" filterField:"false"`  // Maximum number of Categories to return. Defaults to 50.
}

func (f CategoryQueryFilter) model() (models.Category, error) {
	var parentID *uuid.UUID
	if f.ParentID.UUID != uuid.Nil {
		parentID = &f.ParentID.UUID
	}

	return models.Category{
		Type:          models.CategoryType(f.Type),
		IsSubcategory: f.IsSubcategory,
		ParentID:      parentID,
	}, nil
}

type AggregateQuery struct {
	PeriodType string    `form:"periodType" example:"monthly"`                                        // Period type to aggregate. Defaults to monthly.
	Date       time.Time `form:"date" time_format:"2006-01-02" time_utc:"1" example:"2025-03-07"` // Date inside the period. Defaults to today.
}

// AggregateResponse wraps the rolled up budget state of a category.
type AggregateResponse struct {
	Data  *services.CategoryAggregate `json:"data"`                                                          // The aggregate
	Error *string                     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}
