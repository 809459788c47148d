package transport

import (
	"time"

	"storeroom_backend/internal/domain"
)

type CreateItemRequest struct {
	CustomerID          string  `json:"customerId,omitempty" validate:"omitempty,max=64"`
	Name                string  `json:"name" validate:"required,min=1,max=200"`
	LengthIn            float64 `json:"lengthIn" validate:"gte=0,lte=240"`
	WidthIn             float64 `json:"widthIn" validate:"gte=0,lte=240"`
	HeightIn            float64 `json:"heightIn" validate:"gte=0,lte=240"`
	WeightLbs           float64 `json:"weightLbs" validate:"gte=0,lte=2000"`
	EstimatedValueCents int64   `json:"estimatedValueCents" validate:"gte=0"`
	Category            string  `json:"category,omitempty" validate:"omitempty,max=100"`
	ContainerType       string  `json:"containerType,omitempty" validate:"omitempty,max=100"`
}

type UpdateItemRequest struct {
	Name                *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	LengthIn            *float64 `json:"lengthIn,omitempty" validate:"omitempty,gte=0,lte=240"`
	WidthIn             *float64 `json:"widthIn,omitempty" validate:"omitempty,gte=0,lte=240"`
	HeightIn            *float64 `json:"heightIn,omitempty" validate:"omitempty,gte=0,lte=240"`
	WeightLbs           *float64 `json:"weightLbs,omitempty" validate:"omitempty,gte=0,lte=2000"`
	EstimatedValueCents *int64   `json:"estimatedValueCents,omitempty" validate:"omitempty,gte=0"`
	Category            *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	ContainerType       *string  `json:"containerType,omitempty" validate:"omitempty,max=100"`
	Status              *string  `json:"status,omitempty" validate:"omitempty,oneof=at_home in_transit in_storage"`
}

type ListItemsRequest struct {
	CustomerID string `form:"customerId" validate:"omitempty,max=64"`
	Status     string `form:"status" validate:"omitempty,oneof=at_home in_transit in_storage"`
}

type ItemResponse struct {
	ID                  string            `json:"id"`
	CustomerID          string            `json:"customerId"`
	Name                string            `json:"name"`
	LengthIn            float64           `json:"lengthIn"`
	WidthIn             float64           `json:"widthIn"`
	HeightIn            float64           `json:"heightIn"`
	WeightLbs           float64           `json:"weightLbs"`
	CubicFeet           float64           `json:"cubicFeet"`
	EstimatedValueCents int64             `json:"estimatedValueCents"`
	Category            string            `json:"category,omitempty"`
	ContainerType       string            `json:"containerType,omitempty"`
	Status              domain.ItemStatus `json:"status"`
	PhotoURLs           []string          `json:"photoUrls"`
	ReturnVisitID       string            `json:"returnVisitId,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
}

type ItemListResponse struct {
	Items          []ItemResponse `json:"items"`
	TotalCubicFeet float64        `json:"totalCubicFeet"`
	Total          int            `json:"total"`
}

// PhotoUpload is one file taken from a multipart request.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type PhotoFailure struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

type PhotoUploadResponse struct {
	Item     ItemResponse   `json:"item"`
	Uploaded []string       `json:"uploaded"`
	Failed   []PhotoFailure `json:"failed"`
}

// Partial reports whether some but not all files were stored.
func (r PhotoUploadResponse) Partial() bool {
	return len(r.Failed) > 0 && len(r.Uploaded) > 0
}
