package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies one operation type and the directory its outputs
// are written to.
type Category struct {
	Name   string
	Dir    string
	Prefix string
	Ext    string
}

// Operation categories. Directory names and filename prefixes match the
// public URL layout the web client already links to.
var (
	CategoryMerge    = Category{Name: "merge", Dir: "merged", Prefix: "merged", Ext: "pdf"}
	CategoryCompress = Category{Name: "compress", Dir: "compressed", Prefix: "compressed", Ext: "pdf"}
	CategorySplit    = Category{Name: "split", Dir: "split", Prefix: "split", Ext: "pdf"}
	CategoryConvert  = Category{Name: "convert", Dir: "pdf", Prefix: "jpgToPdf", Ext: "pdf"}
	CategoryProtect  = Category{Name: "protect", Dir: "protected", Prefix: "protected", Ext: "pdf"}
)

// AllCategories lists every category in a fixed order.
func AllCategories() []Category {
	return []Category{CategoryMerge, CategoryCompress, CategorySplit, CategoryConvert, CategoryProtect}
}

// CategoryByName looks up a category by its operation name.
func CategoryByName(name string) (Category, error) {
	for _, c := range AllCategories() {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("unknown category: %s", name)
}

// Artifact is a persisted output product.
type Artifact struct {
	Category  Category
	Name      string
	Size      int64
	CreatedAt time.Time
}

// Path returns the URL path the artifact is served under.
func (a Artifact) Path() string {
	return "/" + a.Category.Dir + "/" + a.Name
}

// Orientation of pages produced from images.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// ParseOrientation coerces anything other than "landscape" to portrait.
func ParseOrientation(s string) Orientation {
	if strings.EqualFold(strings.TrimSpace(s), string(OrientationLandscape)) {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// PageSize is a physical page size in points (1/72 inch).
type PageSize struct {
	Width  float64
	Height float64
}

// RetentionPolicy controls how long artifacts live. It is fixed at startup.
type RetentionPolicy struct {
	MaxAge        time.Duration
	SweepInterval time.Duration
	Categories    []Category
}

// DefaultRetentionPolicy returns the 30 minute / 10 minute policy over all categories.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		MaxAge:        30 * time.Minute,
		SweepInterval: 10 * time.Minute,
		Categories:    AllCategories(),
	}
}
