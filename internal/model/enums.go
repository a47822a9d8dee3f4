package model

import (
	"fmt"
)

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	StatusActive  ProductStatus = "ACTIVE"
	StatusSold    ProductStatus = "SOLD"
	StatusRemoved ProductStatus = "REMOVED"
)

var productStatuses = []ProductStatus{StatusActive, StatusSold, StatusRemoved}

// ParseProductStatus looks up a canonical status name.
func ParseProductStatus(s string) (ProductStatus, error) {
	for _, v := range productStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown product status %q", s)
}

// Category is the closed set of product categories.
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryFashion     Category = "FASHION"
	CategoryHome        Category = "HOME"
	CategorySports      Category = "SPORTS"
	CategoryBooks       Category = "BOOKS"
	CategoryToys        Category = "TOYS"
	CategoryVehicles    Category = "VEHICLES"
	CategoryOther       Category = "OTHER"
)

var categories = []Category{
	CategoryElectronics, CategoryFashion, CategoryHome, CategorySports,
	CategoryBooks, CategoryToys, CategoryVehicles, CategoryOther,
}

// Categories returns every known category in declaration order.
func Categories() []Category { return append([]Category(nil), categories...) }

// ParseCategory looks up a canonical category name.
func ParseCategory(s string) (Category, error) {
	for _, v := range categories {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// RequestStatus is the state of a contact request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// ParseRequestStatus looks up a canonical request status name.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestPending, RequestAccepted, RequestRejected:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}
