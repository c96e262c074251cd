package model

import "strings"

type Category string

const (
	CategoryERP       Category = "ERP"
	CategoryCRM       Category = "CRM"
	CategoryAdmin     Category = "Admin"
	CategoryTracking  Category = "Tracking"
	CategoryECommerce Category = "E-Commerce"
	CategorySaaS      Category = "SaaS"
	CategoryOther     Category = "Other"
	CategoryAll       Category = "all"
)

const defaultCategoryTag = "tag"

var categories = []Category{
	CategoryERP,
	CategoryCRM,
	CategoryAdmin,
	CategoryTracking,
	CategoryECommerce,
	CategorySaaS,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryAll:       "All",
	CategoryERP:       "ERP Systems",
	CategoryCRM:       "CRM Solutions",
	CategoryAdmin:     "Admin Dashboards",
	CategoryTracking:  "Tracking Systems",
	CategoryECommerce: "E-Commerce",
	CategorySaaS:      "SaaS Products",
	CategoryOther:     "Other",
}

// Categories returns the closed set of catalog categories in display order.
// The "all" filter sentinel is not part of it.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory normalizes a wire value. Anything outside the known set,
// including the "all" sentinel, becomes CategoryOther.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.Known() {
		return c
	}
	return CategoryOther
}

func (c Category) Known() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Tag is the style token used when rendering a category badge.
func (c Category) Tag() string {
	switch c {
	case CategoryOther, "":
		return defaultCategoryTag
	case CategoryECommerce:
		return "category-ecommerce"
	}
	if !c.Known() {
		return defaultCategoryTag
	}
	return "category-" + strings.ToLower(string(c))
}
